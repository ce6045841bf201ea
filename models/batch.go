package models

// BatchFailure describes one record that could not be processed during
// a multi-record operation (import, rekey re-encryption).
type BatchFailure struct {
	// Index is the position of the item in the source sequence.
	Index int `json:"index"`

	// RecordID is the record identifier, when one exists at the point
	// of failure (empty for import items that were never created).
	RecordID string `json:"record_id,omitempty"`

	// Reason is the human-readable cause of the failure.
	Reason string `json:"reason"`
}

// BatchResult summarises a best-effort multi-record operation. One
// failed item does not abort the batch; callers receive the counts and
// the failed items with reasons instead.
type BatchResult struct {
	// Succeeded is the number of items processed without error.
	Succeeded int `json:"succeeded"`

	// Failed lists every item that could not be processed.
	Failed []BatchFailure `json:"failed,omitempty"`
}

// Ok reports whether the whole batch completed without failures.
func (b BatchResult) Ok() bool {
	return len(b.Failed) == 0
}
