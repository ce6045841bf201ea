package models

import "time"

// Record is a single vault entry belonging to exactly one owner.
//
// The same struct carries the entry through both halves of its life:
// on the client, attribute fields hold plaintext; everywhere past the
// field cipher they hold base64-encoded ciphertext. The store never
// distinguishes the two — every attribute is an opaque string to it.
//
// ID, OwnerID, CreatedAt and UpdatedAt are never encrypted: they carry
// no confidential content and must stay queryable and sortable.
type Record struct {
	// ID is the store-assigned unique identifier of the record.
	ID string `json:"id"`

	// OwnerID scopes the record to a single tenant. Supplied by the
	// authentication layer, never by the caller's request body.
	OwnerID string `json:"owner"`

	// Title is the display name of the entry. Mandatory: a record with
	// an empty title is rejected by the store.
	Title string `json:"title"`

	// Username is the optional account name attribute.
	Username string `json:"username,omitempty"`

	// Secret is the optional confidential value (password, key, token).
	Secret string `json:"secretValue,omitempty"`

	// Locator is the optional resource reference (URL, host, path).
	Locator string `json:"locator,omitempty"`

	// Notes is optional free text.
	Notes string `json:"notes,omitempty"`

	// CreatedAt is assigned by the store on create.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is assigned by the store on create and every update.
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the name of the database table
// associated with the Record model.
func (r *Record) TableName() string {
	return "records"
}
