package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arbor-cms/arbor/internal/shared"
)

const userName = `COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email, '')`

const stateSelect = `SELECT ws.id, ws.page_id, ws.workflow_name, ws.status, ws.requested_by_id, ` + userName + `,
ws.created_at, ws.current_task_state_id, COALESCE(ts.task_name, '')
FROM workflow_states ws
LEFT JOIN users u ON u.id = ws.requested_by_id
LEFT JOIN task_states ts ON ts.id = ws.current_task_state_id`

// Repository reads workflow runs from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CountForPage returns the number of workflow runs of a page.
func (r *Repository) CountForPage(ctx context.Context, pageID int64) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workflow_states WHERE page_id = $1`, pageID).Scan(&total); err != nil {
		return 0, fmt.Errorf("workflow: count states: %w", err)
	}
	return total, nil
}

// ListForPage returns workflow runs of a page, newest first.
func (r *Repository) ListForPage(ctx context.Context, pageID int64, limit, offset int) ([]State, error) {
	rows, err := r.pool.Query(ctx, stateSelect+`
WHERE ws.page_id = $1
ORDER BY ws.created_at DESC, ws.id DESC
LIMIT $2 OFFSET $3`, pageID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("workflow: list states: %w", err)
	}
	defer rows.Close()
	var states []State
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("workflow: scan state: %w", err)
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

// GetForPage returns one workflow run, or shared.ErrNotFound when it does
// not exist or belongs to another page.
func (r *Repository) GetForPage(ctx context.Context, pageID, stateID int64) (State, error) {
	row := r.pool.QueryRow(ctx, stateSelect+`
WHERE ws.id = $1 AND ws.page_id = $2`, stateID, pageID)
	s, err := scanState(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return State{}, shared.ErrNotFound
		}
		return State{}, fmt.Errorf("workflow: get state %d: %w", stateID, err)
	}
	return s, nil
}

// TaskStates returns the task states of a workflow run in start order.
func (r *Repository) TaskStates(ctx context.Context, stateID int64) ([]TaskState, error) {
	rows, err := r.pool.Query(ctx, `SELECT ts.id, ts.workflow_state_id, ts.task_name, ts.status, ts.started_at,
ts.finished_at, ts.finished_by_id, `+userName+`, COALESCE(ts.comment, '')
FROM task_states ts
LEFT JOIN users u ON u.id = ts.finished_by_id
WHERE ts.workflow_state_id = $1
ORDER BY ts.started_at, ts.id`, stateID)
	if err != nil {
		return nil, fmt.Errorf("workflow: list task states: %w", err)
	}
	defer rows.Close()
	var tasks []TaskState
	for rows.Next() {
		var t TaskState
		if err := rows.Scan(&t.ID, &t.WorkflowStateID, &t.TaskName, &t.Status, &t.StartedAt,
			&t.FinishedAt, &t.FinishedByID, &t.FinishedByName, &t.Comment); err != nil {
			return nil, fmt.Errorf("workflow: scan task state: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanState(row pgx.Row) (State, error) {
	var s State
	err := row.Scan(&s.ID, &s.PageID, &s.WorkflowName, &s.Status, &s.RequestedByID, &s.RequestedByName,
		&s.CreatedAt, &s.CurrentTaskStateID, &s.CurrentTaskName)
	return s, err
}
