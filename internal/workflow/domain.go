package workflow

import "time"

// Workflow and task state statuses.
const (
	StatusInProgress   = "in_progress"
	StatusApproved     = "approved"
	StatusRejected     = "rejected"
	StatusCancelled    = "cancelled"
	StatusNeedsChanges = "needs_changes"
)

// State is one run of a workflow on a page.
type State struct {
	ID                 int64
	PageID             int64
	WorkflowName       string
	Status             string
	RequestedByID      *int64
	RequestedByName    string
	CreatedAt          time.Time
	CurrentTaskStateID *int64
	CurrentTaskName    string
}

// InProgress reports whether the workflow is still running.
func (s State) InProgress() bool {
	return s.Status == StatusInProgress || s.Status == StatusNeedsChanges
}

// StatusLabel returns a human label for the workflow status.
func (s State) StatusLabel() string {
	return statusLabel(s.Status)
}

// TaskState is the outcome of one task within a workflow run.
type TaskState struct {
	ID              int64
	WorkflowStateID int64
	TaskName        string
	Status          string
	StartedAt       time.Time
	FinishedAt      *time.Time
	FinishedByID    *int64
	FinishedByName  string
	Comment         string
}

// StatusLabel returns a human label for the task status.
func (t TaskState) StatusLabel() string {
	return statusLabel(t.Status)
}

func statusLabel(status string) string {
	switch status {
	case StatusInProgress:
		return "In progress"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusCancelled:
		return "Cancelled"
	case StatusNeedsChanges:
		return "Needs changes"
	default:
		return status
	}
}
