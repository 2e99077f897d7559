package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/newshub/internal/auth"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/service"
)

// ArticleHandler exposes the news catalog over HTTP. Listing routes are
// public; mutations require an authenticated actor, resolved by the auth
// middleware and read back from the request context here.
type ArticleHandler struct {
	articles *service.ArticleService
	logger   *slog.Logger
}

func NewArticleHandler(articles *service.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: logger}
}

// articleRequest is the wire shape shared by create and update. Featured
// is a pointer so "absent" and "false" stay distinguishable.
type articleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Author      string `json:"author"`
	Image       string `json:"image"`
	UserID      string `json:"userId"`
	Featured    *bool  `json:"featured"`
}

func (r articleRequest) input() model.ArticleInput {
	return model.ArticleInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Author:      r.Author,
		Image:       r.Image,
		UserID:      r.UserID,
		Featured:    r.Featured,
	}
}

// HandleList returns every article, newest first.
//
// HTTP: GET /api/news
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context())
	if err != nil {
		h.logger.Error("listing articles", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleListByCategory returns the articles in one category. The
// category "all" returns everything.
//
// HTTP: GET /api/news/category/{category}
func (h *ArticleHandler) HandleListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	articles, err := h.articles.ListByCategory(r.Context(), category)
	if err != nil {
		h.logger.Error("listing articles by category",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleListMine returns the articles owned by the calling user.
//
// HTTP: GET /api/news/mine
// Auth: required
func (h *ArticleHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	articles, err := h.articles.ListOwned(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleCreate adds a new article.
//
// HTTP: POST /api/news
// Auth: required
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	actor := auth.ActorFromContext(r.Context())
	article, err := h.articles.Create(r.Context(), actor, req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "News article added successfully",
		"article": article,
	})
}

// HandleUpdate applies a partial update to an article. Only non-empty
// fields in the body replace the stored values.
//
// HTTP: PUT /api/news/{id}
// Auth: required, owner or admin
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	actor := auth.ActorFromContext(r.Context())
	article, err := h.articles.Update(r.Context(), actor, chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Article updated successfully",
		"article": article,
	})
}

// HandleDelete removes an article and returns the removed record.
//
// HTTP: DELETE /api/news/{id}
// Auth: required, owner or admin
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	article, err := h.articles.Delete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Article deleted successfully",
		"article": article,
	})
}
