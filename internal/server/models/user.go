// Package models defines the typed records the relay stores and returns.
package models

import "time"

// User is a stored identity. PasswordHash never leaves the server.
type User struct {
	Username     string
	Email        string
	PasswordHash string
	PublicKey    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the part of a User that may be shown to clients.
type PublicProfile struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Profile returns the public projection of u.
func (u *User) Profile() PublicProfile {
	return PublicProfile{Username: u.Username, Email: u.Email}
}
