package models

import "time"

// Verifier is the master-secret verification record of one owner.
//
// It stores only a one-way hash of the owner's master secret, so the
// server can confirm "this is the same secret as before" without ever
// learning the secret itself. At most one verifier exists per owner;
// once set it changes only through an explicit rekey.
type Verifier struct {
	// OwnerID identifies the tenant this verifier belongs to.
	OwnerID string `json:"-"`

	// SecretHash is the bcrypt hash of the master secret.
	// It MUST never contain the secret in any recoverable form.
	SecretHash string `json:"-"`

	// CreatedAt is the timestamp of first-time setup.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last rekey (equals CreatedAt
	// until the first rekey).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Verifier model.
func (v Verifier) TableName() string {
	return "verifiers"
}
