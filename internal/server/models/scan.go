package models

import "time"

// ScanRecord is one accepted code in the ledger. Records are append-only:
// created exactly once per unique CodeValue, never updated or deleted.
// Uniqueness is global across owners, not per owner.
type ScanRecord struct {
	ID         string
	CodeValue  string
	OwnerID    string
	RecordedAt time.Time
}
