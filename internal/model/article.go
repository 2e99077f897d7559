// Package model defines the data structures shared across the application.
package model

// Article is a published news article.
//
// The JSON field names match the snapshot layout on disk, so a data file
// written by one store version can be read by another. Date is a display
// string ("Nov 18, 2025") fixed at creation time rather than a time.Time;
// the clients render it verbatim and it never participates in ordering
// (ordering is positional: newest articles sit at the head of the list).
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Author      string `json:"author"`
	Image       string `json:"image"`
	Date        string `json:"date"`

	// UserID links the article to the registered user who submitted it.
	// Empty when the submitting client sent none; ownership then falls
	// back to the author name.
	UserID string `json:"userId,omitempty"`

	// Featured marks an article for the front-page carousel. Only admins
	// may set it.
	Featured bool `json:"featured,omitempty"`

	// IsAdmin records that the article was created or last edited by an
	// admin session.
	IsAdmin bool `json:"isAdmin,omitempty"`
}

// ArticleInput carries the client-supplied fields for create and update.
// A zero-value field means "not provided": updates only overwrite fields
// that arrive non-empty, matching the merge behaviour clients rely on.
type ArticleInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Author      string `json:"author"`
	Image       string `json:"image"`
	UserID      string `json:"userId"`
	Featured    *bool  `json:"featured"`
}
