package model

// Role identifies the kind of actor behind a request.
type Role int

const (
	RoleAnonymous Role = iota
	RoleUser
	RoleAdmin
)

// Actor is the identity performing a request. It is transient, derived
// from the bearer token on each request and never persisted.
//
// An admin actor is a process-wide credentialed role, not a row in the
// identity store, so ID and Username are empty for admins.
type Actor struct {
	Role     Role
	ID       string
	Username string
}

// Anonymous is the actor for requests without a valid token.
var Anonymous = Actor{Role: RoleAnonymous}

// IsAuthenticated reports whether the actor is a registered user or admin.
func (a Actor) IsAuthenticated() bool { return a.Role != RoleAnonymous }

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
