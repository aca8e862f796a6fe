// Package models defines the client-side domain types: the authenticated
// identity, the saved session, and ledger scan records.
package models

import "time"

// Identity is the server-confirmed account a session belongs to.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is an authenticated session: the access token plus the identity it
// resolves to. A Session value is only ever constructed from a successful
// login or a successful server-side re-validation.
type Session struct {
	Token    string
	Identity Identity
	IssuedAt time.Time
}
