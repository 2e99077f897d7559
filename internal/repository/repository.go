// Package repository declares the storage interfaces implemented by the
// jsonfile and sqlite backends. Services depend on these interfaces only;
// the concrete driver is chosen at startup from configuration.
package repository

import (
	"context"

	"github.com/arefin/newshub/internal/model"
)

// CategoryAll matches every article in ListByCategory.
const CategoryAll = "all"

// ArticleRepository stores articles in insertion order, newest first.
//
// Create prepends; List returns articles in that order. Update overwrites
// the stored record wholesale; partial-merge semantics live in the service
// layer, not here. Delete returns the removed record.
type ArticleRepository interface {
	List(ctx context.Context) ([]model.Article, error)
	ListByCategory(ctx context.Context, category string) ([]model.Article, error)
	GetByID(ctx context.Context, id string) (*model.Article, error)
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id string) (*model.Article, error)
}

// UserRepository stores registered users. Users are never deleted.
//
// Create must reject a username or email already present with
// apperror.ErrConflict. Lookups return apperror.ErrNotFound when no user
// matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByLogin matches username first, then email; the login form
	// accepts either in a single field.
	GetByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error)
}
