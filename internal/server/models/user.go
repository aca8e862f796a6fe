// Package models contains server-side data structures mapped to database rows.
package models

import "time"

// User is a registered principal. ID, Username and Email together form the
// identity referenced by sessions and scan records; they are never mutated
// after registration.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
