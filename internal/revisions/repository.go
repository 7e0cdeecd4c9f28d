package revisions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arbor-cms/arbor/internal/history"
	"github.com/arbor-cms/arbor/internal/platform/db"
	"github.com/arbor-cms/arbor/internal/shared"
)

// ErrNotScheduled is returned when unscheduling a revision that has no
// pending publication.
var ErrNotScheduled = errors.New("revisions: revision is not scheduled")

// Recorder appends log entries inside a transaction.
type Recorder interface {
	RecordWith(ctx context.Context, db history.Execer, e history.Entry) error
}

// Repository reads and updates revisions in PostgreSQL.
type Repository struct {
	pool     *pgxpool.Pool
	recorder Recorder
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool, recorder Recorder) *Repository {
	return &Repository{pool: pool, recorder: recorder}
}

// Get returns a revision of the page, or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, pageID, revisionID int64) (Revision, error) {
	row := r.pool.QueryRow(ctx, `SELECT r.id, r.page_id, r.user_id,
COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email, ''),
r.content, r.created_at, r.approved_go_live_at
FROM revisions r
LEFT JOIN users u ON u.id = r.user_id
WHERE r.id = $1 AND r.page_id = $2`, revisionID, pageID)
	var rev Revision
	err := row.Scan(&rev.ID, &rev.PageID, &rev.UserID, &rev.UserName, &rev.Content, &rev.CreatedAt, &rev.ApprovedGoLiveAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Revision{}, shared.ErrNotFound
		}
		return Revision{}, fmt.Errorf("revisions: get %d: %w", revisionID, err)
	}
	return rev, nil
}

// Unschedule cancels the pending publication of a revision and records the
// cancellation on behalf of userID.
func (r *Repository) Unschedule(ctx context.Context, pageID, revisionID, userID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var goLive *time.Time
		var created time.Time
		err := tx.QueryRow(ctx, `SELECT approved_go_live_at, created_at FROM revisions
WHERE id = $1 AND page_id = $2 FOR UPDATE`, revisionID, pageID).Scan(&goLive, &created)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return fmt.Errorf("revisions: lock %d: %w", revisionID, err)
		}
		if goLive == nil {
			return ErrNotScheduled
		}
		if _, err := tx.Exec(ctx, `UPDATE revisions SET approved_go_live_at = NULL WHERE id = $1`, revisionID); err != nil {
			return fmt.Errorf("revisions: unschedule %d: %w", revisionID, err)
		}
		rev := revisionID
		actor := userID
		return r.recorder.RecordWith(ctx, tx, history.Entry{
			PageID:     pageID,
			RevisionID: &rev,
			UserID:     &actor,
			Action:     history.ActionScheduleCancel,
			Data: map[string]any{
				"revision": map[string]any{
					"id":         revisionID,
					"created":    created.UTC().Format(time.RFC3339),
					"go_live_at": goLive.UTC().Format(time.RFC3339),
				},
			},
		})
	})
}

// PublishDue makes every revision whose go-live time has passed the live
// version of its page. It returns the number of revisions published.
func (r *Repository) PublishDue(ctx context.Context, now time.Time) (int, error) {
	published := 0
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, page_id, user_id, content, created_at, approved_go_live_at
FROM revisions
WHERE approved_go_live_at IS NOT NULL AND approved_go_live_at <= $1
ORDER BY approved_go_live_at, id
FOR UPDATE SKIP LOCKED`, now)
		if err != nil {
			return fmt.Errorf("revisions: select due: %w", err)
		}
		var due []Revision
		for rows.Next() {
			var rev Revision
			if err := rows.Scan(&rev.ID, &rev.PageID, &rev.UserID, &rev.Content, &rev.CreatedAt, &rev.ApprovedGoLiveAt); err != nil {
				rows.Close()
				return fmt.Errorf("revisions: scan due: %w", err)
			}
			due = append(due, rev)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, rev := range due {
			if err := r.publish(ctx, tx, rev, now); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

func (r *Repository) publish(ctx context.Context, tx pgx.Tx, rev Revision, now time.Time) error {
	if _, err := tx.Exec(ctx, `UPDATE pages SET live = TRUE, live_revision_id = $1, title = $2, draft_title = $2, updated_at = $3
WHERE id = $4`, rev.ID, rev.Content.Title, now, rev.PageID); err != nil {
		return fmt.Errorf("revisions: publish %d: %w", rev.ID, err)
	}
	if _, err := tx.Exec(ctx, `UPDATE revisions SET approved_go_live_at = NULL WHERE id = $1`, rev.ID); err != nil {
		return fmt.Errorf("revisions: clear schedule %d: %w", rev.ID, err)
	}
	id := rev.ID
	return r.recorder.RecordWith(ctx, tx, history.Entry{
		PageID:         rev.PageID,
		RevisionID:     &id,
		UserID:         rev.UserID,
		Action:         history.ActionPublish,
		Timestamp:      now,
		ContentChanged: true,
		Data: map[string]any{
			"title":     rev.Content.Title,
			"scheduled": true,
			"revision": map[string]any{
				"id":         rev.ID,
				"created":    rev.CreatedAt.UTC().Format(time.RFC3339),
				"go_live_at": rev.ApprovedGoLiveAt.UTC().Format(time.RFC3339),
			},
		},
	})
}
