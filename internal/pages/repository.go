package pages

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arbor-cms/arbor/internal/shared"
)

const pageColumns = `id, path, depth, title, draft_title, slug, content_type, owner_id, live, locked,
locked_by_id, latest_revision_id, live_revision_id, created_at, updated_at`

// Repository reads pages from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the page with the given id or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (Page, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	page, err := scanPage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Page{}, shared.ErrNotFound
		}
		return Page{}, fmt.Errorf("pages: get %d: %w", id, err)
	}
	return page, nil
}

// ByPaths returns the pages stored under the given paths, shallowest first.
func (r *Repository) ByPaths(ctx context.Context, paths []string) ([]Page, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+pageColumns+` FROM pages WHERE path = ANY($1) ORDER BY path`, paths)
	if err != nil {
		return nil, fmt.Errorf("pages: by paths: %w", err)
	}
	defer rows.Close()
	var result []Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("pages: scan: %w", err)
		}
		result = append(result, page)
	}
	return result, rows.Err()
}

// Root returns the tree root.
func (r *Repository) Root(ctx context.Context) (Page, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE depth = $1 ORDER BY path LIMIT 1`, RootDepth)
	page, err := scanPage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Page{}, shared.ErrNotFound
		}
		return Page{}, fmt.Errorf("pages: root: %w", err)
	}
	return page, nil
}

func scanPage(row pgx.Row) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.Path, &p.Depth, &p.Title, &p.DraftTitle, &p.Slug, &p.ContentType, &p.OwnerID,
		&p.Live, &p.Locked, &p.LockedByID, &p.LatestRevisionID, &p.LiveRevisionID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
