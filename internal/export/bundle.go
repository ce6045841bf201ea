// SPDX-License-Identifier: Apache-2.0

// Package export encodes vault records as a portable plaintext bundle and
// parses such bundles back. The bundle is deliberately plaintext: it is
// the owner's escape hatch out of the vault, so it carries decrypted
// attribute values and must be treated as sensitive material by whoever
// holds the file.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/askarin/fieldvault/models"
)

// NewBundle wraps the given plaintext records in a versioned bundle
// stamped with the current time. The records slice is used as-is; callers
// decrypt before exporting.
func NewBundle(records []models.Record) models.ExportBundle {
	if records == nil {
		records = []models.Record{}
	}
	return models.ExportBundle{
		Version:    models.BundleVersion,
		ExportedAt: time.Now().UTC(),
		ItemCount:  len(records),
		Items:      records,
	}
}

// Marshal renders the bundle as indented JSON, suitable for writing to a
// file the owner will keep or feed to another tool.
func Marshal(bundle models.ExportBundle) ([]byte, error) {
	raw, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export bundle: %w", err)
	}
	return raw, nil
}

// ParseBundle decodes and validates raw bundle bytes. Anything that is
// not a well-formed bundle of a supported version fails with
// [ErrMalformedBundle]; the items themselves are returned untouched for
// the importer to re-encrypt.
func ParseBundle(raw []byte) (models.ExportBundle, error) {
	// Decode the envelope loosely first so a wrong-shaped "items" value
	// reports as malformed rather than as a generic JSON type error.
	var probe struct {
		Version string          `json:"version"`
		Items   json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return models.ExportBundle{}, fmt.Errorf("%w: %w", ErrMalformedBundle, err)
	}

	if probe.Version != models.BundleVersion {
		return models.ExportBundle{}, fmt.Errorf("%w: unsupported version %q", ErrMalformedBundle, probe.Version)
	}
	if len(probe.Items) == 0 {
		return models.ExportBundle{}, fmt.Errorf("%w: missing items", ErrMalformedBundle)
	}

	var bundle models.ExportBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return models.ExportBundle{}, fmt.Errorf("%w: %w", ErrMalformedBundle, err)
	}
	if bundle.Items == nil {
		return models.ExportBundle{}, fmt.Errorf("%w: items is not a list", ErrMalformedBundle)
	}

	return bundle, nil
}
