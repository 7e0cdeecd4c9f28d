package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement. Both *pgxpool.Pool and pgx.Tx satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder appends entries to page_log_entries.
type Recorder struct {
	db  Execer
	now func() time.Time
}

// NewRecorder returns a Recorder writing through db.
func NewRecorder(db Execer) *Recorder {
	return &Recorder{db: db, now: time.Now}
}

// Record persists the entry outside any transaction.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	if r == nil || r.db == nil {
		return errors.New("history: recorder not initialised")
	}
	return r.RecordWith(ctx, r.db, e)
}

// RecordWith persists the entry through db, typically an open transaction.
func (r *Recorder) RecordWith(ctx context.Context, db Execer, e Entry) error {
	if e.PageID == 0 || e.Action == "" {
		return errors.New("history: entry requires page and action")
	}
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	if e.Label == "" {
		e.Label = ActionLabel(e.Action)
	}
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `INSERT INTO page_log_entries
(uuid, page_id, revision_id, user_id, action, label, data, timestamp, content_changed, deleted)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.UUID, e.PageID, e.RevisionID, e.UserID, e.Action, e.Label, dataJSON, e.Timestamp.UTC(), e.ContentChanged, e.Deleted)
	return err
}
