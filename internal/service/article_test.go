package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/repository"
)

var (
	adminActor = model.Actor{Role: model.RoleAdmin}
	aliceActor = model.Actor{Role: model.RoleUser, ID: "u-alice", Username: "alice"}
	bobActor   = model.Actor{Role: model.RoleUser, ID: "u-bob", Username: "bob"}
)

// mockArticleRepo is an in-memory repository.ArticleRepository mirroring
// the jsonfile store's semantics: newest first, defaults on create.
type mockArticleRepo struct {
	articles []model.Article
	failWith error
}

var _ repository.ArticleRepository = (*mockArticleRepo)(nil)

func (m *mockArticleRepo) List(_ context.Context) ([]model.Article, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.Article, len(m.articles))
	copy(out, m.articles)
	return out, nil
}

func (m *mockArticleRepo) ListByCategory(ctx context.Context, category string) ([]model.Article, error) {
	if category == repository.CategoryAll {
		return m.List(ctx)
	}
	out := make([]model.Article, 0)
	for _, a := range m.articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockArticleRepo) GetByID(_ context.Context, id string) (*model.Article, error) {
	for i := range m.articles {
		if m.articles[i].ID == id {
			a := m.articles[i]
			return &a, nil
		}
	}
	return nil, apperror.NotFound("article", id)
}

func (m *mockArticleRepo) Create(_ context.Context, article *model.Article) error {
	if m.failWith != nil {
		return m.failWith
	}
	repository.ApplyArticleDefaults(article, time.Now())
	m.articles = append([]model.Article{*article}, m.articles...)
	return nil
}

func (m *mockArticleRepo) Update(_ context.Context, article *model.Article) error {
	for i := range m.articles {
		if m.articles[i].ID == article.ID {
			m.articles[i] = *article
			return nil
		}
	}
	return apperror.NotFound("article", article.ID)
}

func (m *mockArticleRepo) Delete(_ context.Context, id string) (*model.Article, error) {
	for i := range m.articles {
		if m.articles[i].ID == id {
			removed := m.articles[i]
			m.articles = append(m.articles[:i], m.articles[i+1:]...)
			return &removed, nil
		}
	}
	return nil, apperror.NotFound("article", id)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestArticleService() (*ArticleService, *mockArticleRepo) {
	repo := &mockArticleRepo{}
	return NewArticleService(repo, quietLogger()), repo
}

func validInput() model.ArticleInput {
	return model.ArticleInput{
		Title:       "T",
		Description: strings.Repeat("x", 50),
		Category:    "tech",
		Author:      "alice",
	}
}

func TestArticleCreate_Success(t *testing.T) {
	svc, repo := newTestArticleService()

	article, err := svc.Create(context.Background(), aliceActor, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if article.ID == "" || article.Date == "" {
		t.Errorf("Create() left defaults unset: %+v", article)
	}
	if !strings.Contains(article.Image, url.QueryEscape("T")) {
		t.Errorf("Image = %q, want generated placeholder", article.Image)
	}
	if article.IsAdmin {
		t.Error("user-created article marked as admin")
	}

	list, _ := repo.List(context.Background())
	if len(list) != 1 || list[0].ID != article.ID {
		t.Errorf("repository state = %+v", list)
	}
}

func TestArticleCreate_NewestFirst(t *testing.T) {
	svc, repo := newTestArticleService()

	older, err := svc.Create(context.Background(), aliceActor, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	in := validInput()
	in.Title = "Newer"
	newer, err := svc.Create(context.Background(), aliceActor, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, _ := repo.List(context.Background())
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("order = [%s, %s], want newest first", list[0].Title, list[1].Title)
	}
}

func TestArticleCreate_MissingFields(t *testing.T) {
	svc, repo := newTestArticleService()

	tests := []struct {
		name   string
		mutate func(*model.ArticleInput)
	}{
		{name: "missing title", mutate: func(in *model.ArticleInput) { in.Title = "" }},
		{name: "missing description", mutate: func(in *model.ArticleInput) { in.Description = "" }},
		{name: "missing category", mutate: func(in *model.ArticleInput) { in.Category = "" }},
		{name: "missing author", mutate: func(in *model.ArticleInput) { in.Author = "" }},
		{name: "whitespace-only title", mutate: func(in *model.ArticleInput) { in.Title = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), aliceActor, in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}

	if len(repo.articles) != 0 {
		t.Errorf("failed creates mutated the repository: %d articles", len(repo.articles))
	}
}

func TestArticleCreate_ShortDescription(t *testing.T) {
	svc, _ := newTestArticleService()

	in := validInput()
	in.Description = "too short"
	if _, err := svc.Create(context.Background(), aliceActor, in); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
}

func TestArticleCreate_AnonymousDenied(t *testing.T) {
	svc, repo := newTestArticleService()

	_, err := svc.Create(context.Background(), model.Anonymous, validInput())
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Create() error = %v, want ErrUnauthorized", err)
	}
	if len(repo.articles) != 0 {
		t.Error("denied create mutated the repository")
	}
}

func TestArticleCreate_FeaturedStrippedForUser(t *testing.T) {
	svc, _ := newTestArticleService()

	featured := true
	in := validInput()
	in.Featured = &featured

	article, err := svc.Create(context.Background(), aliceActor, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if article.Featured {
		t.Error("user-supplied featured flag was honored")
	}

	adminArticle, err := svc.Create(context.Background(), adminActor, in)
	if err != nil {
		t.Fatalf("Create() as admin error = %v", err)
	}
	if !adminArticle.Featured || !adminArticle.IsAdmin {
		t.Errorf("admin create = %+v, want featured and admin provenance", adminArticle)
	}
}

func TestArticleUpdate_TruthyMerge(t *testing.T) {
	svc, _ := newTestArticleService()

	article, err := svc.Create(context.Background(), aliceActor, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Only category provided; every other field must survive untouched.
	updated, err := svc.Update(context.Background(), aliceActor, article.ID, model.ArticleInput{
		Category: "business",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Category != "business" {
		t.Errorf("Category = %q, want %q", updated.Category, "business")
	}
	if updated.Title != article.Title || updated.Description != article.Description ||
		updated.Author != article.Author || updated.Image != article.Image {
		t.Errorf("empty input fields overwrote stored values: %+v", updated)
	}
}

func TestArticleUpdate_NotFound(t *testing.T) {
	svc, _ := newTestArticleService()

	_, err := svc.Update(context.Background(), adminActor, "missing", validInput())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestArticleUpdate_OwnershipEnforced(t *testing.T) {
	svc, _ := newTestArticleService()

	in := validInput()
	in.UserID = aliceActor.ID
	article, err := svc.Create(context.Background(), aliceActor, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// bob owns neither by id nor by author name.
	if _, err := svc.Update(context.Background(), bobActor, article.ID, model.ArticleInput{Title: "hijacked"}); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() by non-owner error = %v, want ErrForbidden", err)
	}

	// admin may edit anything.
	if _, err := svc.Update(context.Background(), adminActor, article.ID, model.ArticleInput{Title: "moderated title"}); err != nil {
		t.Errorf("Update() by admin error = %v", err)
	}
}

func TestArticleUpdate_FeaturedAdminOnly(t *testing.T) {
	svc, _ := newTestArticleService()

	in := validInput()
	in.UserID = aliceActor.ID
	article, err := svc.Create(context.Background(), aliceActor, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	featured := true
	got, err := svc.Update(context.Background(), aliceActor, article.ID, model.ArticleInput{Featured: &featured})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Featured {
		t.Error("owner set featured without admin role")
	}

	got, err = svc.Update(context.Background(), adminActor, article.ID, model.ArticleInput{Featured: &featured})
	if err != nil {
		t.Fatalf("Update() as admin error = %v", err)
	}
	if !got.Featured {
		t.Error("admin could not set featured")
	}
}

func TestArticleDelete(t *testing.T) {
	svc, _ := newTestArticleService()

	in := validInput()
	in.UserID = aliceActor.ID
	article, err := svc.Create(context.Background(), aliceActor, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// a different user is denied.
	if _, err := svc.Delete(context.Background(), bobActor, article.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by non-owner error = %v, want ErrForbidden", err)
	}

	// the owner succeeds and gets the record back.
	removed, err := svc.Delete(context.Background(), aliceActor, article.ID)
	if err != nil {
		t.Fatalf("Delete() by owner error = %v", err)
	}
	if removed.ID != article.ID {
		t.Errorf("Delete() returned %q, want %q", removed.ID, article.ID)
	}

	// second delete: gone.
	if _, err := svc.Delete(context.Background(), aliceActor, article.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestArticleListOwned(t *testing.T) {
	svc, _ := newTestArticleService()

	byID := validInput()
	byID.UserID = aliceActor.ID
	byID.Author = "Anonymous Tipster"
	if _, err := svc.Create(context.Background(), aliceActor, byID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	byName := validInput()
	byName.Author = "Alice" // legacy-style record: author only, no userId
	if _, err := svc.Create(context.Background(), aliceActor, byName); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	foreign := validInput()
	foreign.UserID = bobActor.ID
	foreign.Author = "bob"
	if _, err := svc.Create(context.Background(), bobActor, foreign); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	owned, err := svc.ListOwned(context.Background(), aliceActor)
	if err != nil {
		t.Fatalf("ListOwned() error = %v", err)
	}
	if len(owned) != 2 {
		t.Errorf("ListOwned() returned %d articles, want 2 (id match + name match)", len(owned))
	}

	if _, err := svc.ListOwned(context.Background(), model.Anonymous); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("ListOwned() as anonymous error = %v, want ErrUnauthorized", err)
	}
}

func TestArticleListByCategory_AllEqualsList(t *testing.T) {
	svc, _ := newTestArticleService()

	for _, cat := range []string{"tech", "sports", "tech"} {
		in := validInput()
		in.Category = cat
		if _, err := svc.Create(context.Background(), aliceActor, in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := svc.ListByCategory(context.Background(), "all")
	if err != nil {
		t.Fatalf("ListByCategory(all) error = %v", err)
	}
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != len(list) {
		t.Errorf("ListByCategory(all) = %d articles, List() = %d", len(all), len(list))
	}

	tech, err := svc.ListByCategory(context.Background(), "tech")
	if err != nil {
		t.Fatalf("ListByCategory(tech) error = %v", err)
	}
	if len(tech) != 2 {
		t.Errorf("ListByCategory(tech) = %d articles, want 2", len(tech))
	}
}
