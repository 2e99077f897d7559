package model

import "time"

// User is a registered account in the identity store.
//
// PasswordHash is a bcrypt hash, never the plaintext. It is empty for
// accounts provisioned through Google sign-in (GoogleAuth true); those
// users carry no local credential and can only authenticate via Google.
//
// The json tag name "password" matches the snapshot layout on disk; the
// field never reaches API responses because handlers return PublicUser.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	GoogleAuth   bool      `json:"googleAuth,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the client-facing projection returned by the auth
// endpoints: id, username and email only.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}
