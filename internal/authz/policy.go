// Package authz holds the authorization policy as pure functions over an
// actor and an article. No I/O, no state: callers fetch whatever records
// they need first and then ask the policy.
package authz

import (
	"strings"

	"github.com/arefin/newshub/internal/model"
)

// Action is an operation an actor may attempt on an article.
type Action int

const (
	ActionCreate Action = iota
	ActionEdit
	ActionDelete
	ActionFeature
)

// Owns reports whether the actor owns the article.
//
// Ownership is dual-keyed: the article's userId must match the actor's ID,
// or, for records written before accounts existed and therefore carrying
// no userId, the author name must match the actor's username,
// case-insensitively. The name fallback keeps those legacy records
// editable by their authors.
func Owns(actor model.Actor, article model.Article) bool {
	if actor.Role != model.RoleUser {
		return false
	}
	if article.UserID != "" && article.UserID == actor.ID {
		return true
	}
	return article.Author != "" && strings.EqualFold(article.Author, actor.Username)
}

// CanPerform decides whether the actor may perform the action on the
// article. For ActionCreate the article argument is ignored.
func CanPerform(actor model.Actor, action Action, article model.Article) bool {
	if actor.IsAdmin() {
		return true
	}

	switch action {
	case ActionCreate:
		return actor.IsAuthenticated()
	case ActionEdit, ActionDelete:
		return Owns(actor, article)
	case ActionFeature:
		// Admin only; handled by the IsAdmin short-circuit above.
		return false
	default:
		return false
	}
}
