package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/repository"
)

// compile-time check that *ArticleDB implements repository.ArticleRepository
var _ repository.ArticleRepository = (*ArticleDB)(nil)

// ArticleDB stores articles in the articles table.
type ArticleDB struct {
	conn *sql.DB
}

const articleColumns = `id, title, description, category, author, image, date, user_id, featured, is_admin`

func scanArticle(row interface{ Scan(...any) error }) (*model.Article, error) {
	var a model.Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Category, &a.Author,
		&a.Image, &a.Date, &a.UserID, &a.Featured, &a.IsAdmin,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all articles, newest first (reverse insertion order).
func (db *ArticleDB) List(ctx context.Context) ([]model.Article, error) {
	return db.listWhere(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY rowid DESC`)
}

// ListByCategory returns articles with an exact category match;
// "all" returns everything.
func (db *ArticleDB) ListByCategory(ctx context.Context, category string) ([]model.Article, error) {
	if category == repository.CategoryAll {
		return db.List(ctx)
	}
	return db.listWhere(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE category = ? ORDER BY rowid DESC`,
		category)
}

func (db *ArticleDB) listWhere(ctx context.Context, query string, args ...any) ([]model.Article, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning article row: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating articles: %w", err)
	}
	return articles, nil
}

// GetByID retrieves a single article.
func (db *ArticleDB) GetByID(ctx context.Context, id string) (*model.Article, error) {
	a, err := scanArticle(db.conn.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("article", id)
		}
		return nil, fmt.Errorf("sqlite: getting article %s: %w", id, err)
	}
	return a, nil
}

// Create assigns the repository defaults and inserts the article.
func (db *ArticleDB) Create(ctx context.Context, article *model.Article) error {
	repository.ApplyArticleDefaults(article, time.Now())

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO articles (`+articleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID, article.Title, article.Description, article.Category,
		article.Author, article.Image, article.Date, article.UserID,
		article.Featured, article.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating article: %w", err)
	}
	return nil
}

// Update replaces the stored article with the same id. The id and rowid
// are untouched, so list position is preserved.
func (db *ArticleDB) Update(ctx context.Context, article *model.Article) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE articles
		 SET title = ?, description = ?, category = ?, author = ?,
		     image = ?, date = ?, user_id = ?, featured = ?, is_admin = ?
		 WHERE id = ?`,
		article.Title, article.Description, article.Category, article.Author,
		article.Image, article.Date, article.UserID, article.Featured,
		article.IsAdmin, article.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating article %s: %w", article.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("article", article.ID)
	}
	return nil
}

// Delete removes the article and returns the removed record. The single
// DELETE ... RETURNING statement guarantees at most one caller sees the
// row when deletes race.
func (db *ArticleDB) Delete(ctx context.Context, id string) (*model.Article, error) {
	a, err := scanArticle(db.conn.QueryRowContext(ctx,
		`DELETE FROM articles WHERE id = ? RETURNING `+articleColumns, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("article", id)
		}
		return nil, fmt.Errorf("sqlite: deleting article %s: %w", id, err)
	}
	return a, nil
}
