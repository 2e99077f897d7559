package jsonfile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/repository"
)

// compile-time check that *ArticleStore implements repository.ArticleRepository
var _ repository.ArticleRepository = (*ArticleStore)(nil)

// ArticleStore persists articles as a single JSON snapshot file.
// Articles are held newest-first; Create prepends.
type ArticleStore struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	articles []model.Article
}

// NewArticleStore opens the snapshot at path, seeding a fresh store with
// the default articles when no snapshot exists. A corrupt or unreadable
// snapshot is logged and replaced by the defaults rather than refusing to
// start.
func NewArticleStore(path string, logger *slog.Logger) *ArticleStore {
	s := &ArticleStore{path: path, logger: logger}

	err := readSnapshot(path, &s.articles)
	switch {
	case err == nil:
		// loaded
	case errors.Is(err, os.ErrNotExist):
		s.articles = defaultArticles()
		if werr := writeSnapshot(path, s.articles); werr != nil {
			logPersistFailure(logger, path, werr)
		}
	default:
		logger.Error("loading article snapshot failed, starting with defaults",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		s.articles = defaultArticles()
	}

	return s
}

// List returns all articles, newest first.
func (s *ArticleStore) List(ctx context.Context) ([]model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Article, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

// ListByCategory returns articles with an exact category match.
// The category "all" returns everything.
func (s *ArticleStore) ListByCategory(ctx context.Context, category string) ([]model.Article, error) {
	if category == repository.CategoryAll {
		return s.List(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Article, 0)
	for _, a := range s.articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetByID returns the article with the given id.
func (s *ArticleStore) GetByID(ctx context.Context, id string) (*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.articles {
		if s.articles[i].ID == id {
			a := s.articles[i]
			return &a, nil
		}
	}
	return nil, apperror.NotFound("article", id)
}

// Create assigns the repository defaults (id, date, placeholder image),
// prepends the article, and rewrites the snapshot before returning.
func (s *ArticleStore) Create(ctx context.Context, article *model.Article) error {
	repository.ApplyArticleDefaults(article, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles = append([]model.Article{*article}, s.articles...)
	s.persistLocked()
	return nil
}

// Update replaces the stored article with the same id.
func (s *ArticleStore) Update(ctx context.Context, article *model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.articles {
		if s.articles[i].ID == article.ID {
			s.articles[i] = *article
			s.persistLocked()
			return nil
		}
	}
	return apperror.NotFound("article", article.ID)
}

// Delete removes the article with the given id and returns the removed
// record.
func (s *ArticleStore) Delete(ctx context.Context, id string) (*model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.articles {
		if s.articles[i].ID == id {
			removed := s.articles[i]
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			s.persistLocked()
			return &removed, nil
		}
	}
	return nil, apperror.NotFound("article", id)
}

// persistLocked rewrites the snapshot. Callers must hold s.mu.
// Write failures are logged; the in-memory state remains authoritative.
func (s *ArticleStore) persistLocked() {
	if err := writeSnapshot(s.path, s.articles); err != nil {
		logPersistFailure(s.logger, s.path, err)
	}
}

// defaultArticles seeds a brand-new installation so the site is not empty
// on first visit.
func defaultArticles() []model.Article {
	now := time.Now()
	seed := []model.Article{
		{
			Title:       "AI Breakthrough: New Model Achieves Human-Level Performance",
			Description: "Researchers announce a groundbreaking artificial intelligence model that matches human cognitive abilities in multiple domains.",
			Category:    "tech",
			Author:      "Sarah Chen",
		},
		{
			Title:       "Stock Market Reaches Record High Amid Economic Growth",
			Description: "Global markets surge as economic indicators show sustained growth and investor confidence remains strong.",
			Category:    "business",
			Author:      "Michael Torres",
		},
		{
			Title:       "Championship League: Team Wins Historic Victory",
			Description: "In an incredible match, the home team secures an unprecedented championship title with a stunning performance.",
			Category:    "sports",
			Author:      "Alex Johnson",
		},
		{
			Title:       "New Study Shows Benefits of Mediterranean Diet",
			Description: "Health researchers confirm that the Mediterranean diet significantly reduces risk of cardiovascular diseases.",
			Category:    "health",
			Author:      "Dr. Emma Wilson",
		},
	}
	for i := range seed {
		repository.ApplyArticleDefaults(&seed[i], now)
	}
	return seed
}
