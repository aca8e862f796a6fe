package models

import "time"

// ScanRecord is one accepted ledger entry as reported by the server.
type ScanRecord struct {
	ID         string    `json:"id"`
	CodeValue  string    `json:"code_value"`
	OwnerID    string    `json:"owner_id"`
	RecordedAt time.Time `json:"recorded_at"`
}
