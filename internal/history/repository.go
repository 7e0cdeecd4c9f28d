package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arbor-cms/arbor/internal/users"
)

// timelineLimit caps the entries loaded for one workflow timeline.
const timelineLimit = 500

// Repository reads page log entries from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of the entries described by q together with the
// total number of matches.
func (r *Repository) List(ctx context.Context, q Query, limit, offset int) (Result, error) {
	countSQL, countArgs := q.countSQL()
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return Result{}, fmt.Errorf("history: count entries: %w", err)
	}
	if total == 0 {
		return Result{}, nil
	}
	entries, err := r.query(ctx, q, limit, offset)
	if err != nil {
		return Result{}, err
	}
	return Result{Entries: entries, Total: total}, nil
}

// WorkflowTimeline returns the entries recorded for one workflow state of a
// page, oldest first. At most timelineLimit entries are returned, starting
// from the first one recorded.
func (r *Repository) WorkflowTimeline(ctx context.Context, pageID, stateID int64) ([]Entry, error) {
	q := Annotate(Query{PageID: pageID, WorkflowStateID: &stateID, OldestFirst: true})
	return r.query(ctx, q, timelineLimit, 0)
}

// Users lists the users that have log entries on the page.
func (r *Repository) Users(ctx context.Context, pageID int64) ([]users.Choice, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT u.id, u.email, u.first_name, u.last_name
FROM users u
JOIN page_log_entries e ON e.user_id = u.id
WHERE e.page_id = $1
ORDER BY u.email`, pageID)
	if err != nil {
		return nil, fmt.Errorf("history: list users: %w", err)
	}
	defer rows.Close()
	var choices []users.Choice
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("history: scan user: %w", err)
		}
		choices = append(choices, users.Choice{ID: u.ID, Label: u.DisplayName()})
	}
	return choices, rows.Err()
}

func (r *Repository) query(ctx context.Context, q Query, limit, offset int) ([]Entry, error) {
	sql, args := q.listSQL(limit, offset)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list entries: %w", err)
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.UUID, &e.PageID, &e.RevisionID, &e.UserID, &e.Action, &e.Label, &e.Data,
		&e.Timestamp, &e.ContentChanged, &e.Deleted,
		&e.UserName, &e.RevisionIsLatest, &e.RevisionIsLive, &e.RevisionGoLiveAt, &e.RevisionCreatedAt)
	return e, err
}
