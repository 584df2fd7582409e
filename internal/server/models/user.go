// Package models defines server-side data models persisted in the database.
package models

import "time"

// DateLayout is the only accepted wire format for dates of birth.
const DateLayout = "2006-01-02"

// Credential is the authentication half of a users row. It is written once on
// register and never changed by the auth flows.
type Credential struct {
	Email        string    `db:"email"`
	PasswordHash string    `db:"hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Profile is the descriptive half of a users row. Fields are empty until the
// owner fills them in.
type Profile struct {
	Email     string
	FirstName string
	LastName  string
	// DOB is formatted with DateLayout, or empty.
	DOB     string
	Address string
}
