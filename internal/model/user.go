// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// The ID is a system-assigned xid string (20 chars, URL-safe, sortable by
// creation time). It is generated once at registration and never changes —
// we deliberately avoid exposing database rowids as public identifiers.
//
// PasswordHash holds the bcrypt hash of the user's password. The plaintext
// is never stored and never leaves the registration/login code paths. The
// `json:"-"` tag guarantees the hash cannot be serialized into a response
// by accident.
//
// Username and Email are both UNIQUE in the database — the store is the
// final arbiter for concurrent registrations (see repository/sqlite).
type User struct {
	ID           string    `json:"user_id"   db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Age          int       `json:"age"       db:"age"`
	Gender       string    `json:"gender"    db:"gender"`
	CreatedAt    time.Time `json:"-"         db:"created_at"`
	UpdatedAt    time.Time `json:"-"         db:"updated_at"`
}
