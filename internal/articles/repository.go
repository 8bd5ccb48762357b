package articles

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-press/inkwell/internal/shared"
)

const articleColumns = `id, author_id, title, body, premium, published, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	if err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Body, &a.Premium, &a.Published, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create persists a new article.
func (r *Repository) Create(ctx context.Context, authorID int64, input ArticleInput) (*Article, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO articles (author_id, title, body, premium, published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING `+articleColumns,
		authorID, input.Title, input.Body, input.Premium, input.Published, time.Now().UTC())
	return scanArticle(row)
}

// Get fetches an article by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	return scanArticle(row)
}

// ListPublished returns published articles, newest first.
func (r *Repository) ListPublished(ctx context.Context) ([]Article, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+articleColumns+` FROM articles WHERE published ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Body, &a.Premium, &a.Published, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces an article's mutable fields.
func (r *Repository) Update(ctx context.Context, id int64, input ArticleInput) (*Article, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE articles SET title = $2, body = $3, premium = $4, published = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+articleColumns,
		id, input.Title, input.Body, input.Premium, input.Published)
	return scanArticle(row)
}

// Delete removes an article.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
