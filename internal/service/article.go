// Package service contains the business logic layer: validation,
// authorization, and orchestration. Handlers parse HTTP and delegate
// here; repositories only store and retrieve.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/authz"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/repository"
)

// Validation limits enforced at this boundary, not in the repository.
const (
	MaxTitleLength       = 100
	MinDescriptionLength = 50
)

// ArticleService handles business logic for news articles.
type ArticleService struct {
	repo   repository.ArticleRepository
	logger *slog.Logger
}

// NewArticleService creates an ArticleService.
func NewArticleService(repo repository.ArticleRepository, logger *slog.Logger) *ArticleService {
	return &ArticleService{repo: repo, logger: logger}
}

// List returns all articles, newest first.
func (s *ArticleService) List(ctx context.Context) ([]model.Article, error) {
	articles, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list articles", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

// ListByCategory returns articles in the given category; "all" returns
// everything.
func (s *ArticleService) ListByCategory(ctx context.Context, category string) ([]model.Article, error) {
	articles, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Error("failed to list articles by category",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing articles by category: %w", err)
	}
	return articles, nil
}

// ListOwned returns the subset of articles the actor owns, per the
// dual-keyed ownership predicate. Admins are not owners; they manage
// everything through the full list instead.
func (s *ArticleService) ListOwned(ctx context.Context, actor model.Actor) ([]model.Article, error) {
	if !actor.IsAuthenticated() {
		return nil, apperror.Unauthorized("authentication required")
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing owned articles: %w", err)
	}

	owned := make([]model.Article, 0)
	for _, a := range all {
		if authz.Owns(actor, a) {
			owned = append(owned, a)
		}
	}
	return owned, nil
}

// Create validates and persists a new article for the actor.
//
// Title, description, category, and author are all required; the
// description must meet the minimum length the submission forms enforce.
// Featured and admin provenance are only honored for admin actors;
// a user sending featured=true has the flag silently dropped rather than
// rejected, which is what the clients expect.
func (s *ArticleService) Create(ctx context.Context, actor model.Actor, input model.ArticleInput) (*model.Article, error) {
	if !authz.CanPerform(actor, authz.ActionCreate, model.Article{}) {
		return nil, apperror.Unauthorized("authentication required to submit articles")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Author = strings.TrimSpace(input.Author)

	if input.Title == "" || input.Description == "" || input.Category == "" || input.Author == "" {
		return nil, apperror.ValidationFailed("", "Missing required fields")
	}
	if len(input.Title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(input.Description) < MinDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be at least %d characters", MinDescriptionLength))
	}

	article := &model.Article{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Author:      input.Author,
		Image:       input.Image,
		UserID:      input.UserID,
	}

	// UserID stays exactly as the client supplied it: the account area
	// form sends the session's id, older forms send none, and ownership
	// falls back to the author name either way.
	if actor.IsAdmin() {
		article.IsAdmin = true
		if input.Featured != nil {
			article.Featured = *input.Featured
		}
	}

	if err := s.repo.Create(ctx, article); err != nil {
		s.logger.Error("failed to create article",
			slog.String("title", article.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating article: %w", err)
	}

	s.logger.Info("article created",
		slog.String("id", article.ID),
		slog.String("category", article.Category),
		slog.String("author", article.Author),
	)
	return article, nil
}

// Update applies a partial update to an article the actor may edit.
//
// Merge policy: only fields that arrive non-empty overwrite the stored
// value. An empty string means "no change": clients send the full form
// with untouched fields blank, so clearing a field through this endpoint
// is deliberately impossible.
func (s *ArticleService) Update(ctx context.Context, actor model.Actor, id string, input model.ArticleInput) (*model.Article, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanPerform(actor, authz.ActionEdit, *article) {
		return nil, apperror.Forbidden("you do not have permission to edit this article")
	}

	if v := strings.TrimSpace(input.Title); v != "" {
		if len(v) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		article.Title = v
	}
	if v := strings.TrimSpace(input.Description); v != "" {
		if len(v) < MinDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be at least %d characters", MinDescriptionLength))
		}
		article.Description = v
	}
	if input.Category != "" {
		article.Category = input.Category
	}
	if v := strings.TrimSpace(input.Author); v != "" {
		article.Author = v
	}
	if input.Image != "" {
		article.Image = input.Image
	}

	// Featured is admin-only; non-admin attempts are dropped silently.
	if input.Featured != nil && actor.IsAdmin() {
		article.Featured = *input.Featured
	}
	if actor.IsAdmin() {
		article.IsAdmin = true
	}

	if err := s.repo.Update(ctx, article); err != nil {
		s.logger.Error("failed to update article",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating article: %w", err)
	}

	s.logger.Info("article updated", slog.String("id", id))
	return article, nil
}

// Delete removes an article the actor may delete and returns the removed
// record.
func (s *ArticleService) Delete(ctx context.Context, actor model.Actor, id string) (*model.Article, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanPerform(actor, authz.ActionDelete, *article) {
		return nil, apperror.Forbidden("you do not have permission to delete this article")
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("article deleted", slog.String("id", id))
	return removed, nil
}
