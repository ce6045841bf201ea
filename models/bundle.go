package models

import "time"

// BundleVersion is the current wire-format version tag written into
// every export bundle. Parsers accept only versions they know.
const BundleVersion = "1"

// ExportBundle is a portable, point-in-time snapshot of an owner's
// decrypted record set.
//
// All attribute strings in Items are PLAINTEXT: export happens after
// decryption, and consumers must treat exported files as sensitive.
// The bundle is transient — it is never persisted by the vault itself.
type ExportBundle struct {
	// Version is the wire-format version tag, see BundleVersion.
	Version string `json:"version"`

	// ExportedAt is the snapshot timestamp (RFC 3339 / ISO-8601).
	ExportedAt time.Time `json:"exportedAt"`

	// ItemCount duplicates len(Items) for forward-compatible parsing
	// and truncation detection.
	ItemCount int `json:"itemCount"`

	// Items is the decrypted record set.
	Items []Record `json:"items"`
}
