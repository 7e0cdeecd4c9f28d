package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable row of a page's audit log.
type Entry struct {
	ID             int64
	UUID           uuid.UUID
	PageID         int64
	RevisionID     *int64
	UserID         *int64
	Action         string
	Label          string
	Data           map[string]any
	Timestamp      time.Time
	ContentChanged bool
	Deleted        bool

	// Filled when the query was annotated.
	UserName          string
	RevisionIsLatest  bool
	RevisionIsLive    bool
	RevisionGoLiveAt  *time.Time
	RevisionCreatedAt *time.Time
}

// ActionLabel returns the human label of the entry's action.
func (e Entry) ActionLabel() string {
	return ActionLabel(e.Action)
}

// IsCommenting reports whether the entry records a commenting action.
func (e Entry) IsCommenting() bool {
	return strings.HasPrefix(e.Action, CommentActionPrefix)
}

// Comment returns the free-text comment attached to the entry, if any.
func (e Entry) Comment() string {
	if e.Data == nil {
		return ""
	}
	if c, ok := e.Data["comment"].(string); ok {
		return c
	}
	return ""
}

// Scheduled reports whether the entry's revision waits for publication.
func (e Entry) Scheduled() bool {
	return e.RevisionGoLiveAt != nil
}

// Annotations select the extra columns resolved for each entry.
type Annotations struct {
	Users     bool
	Revisions bool
}

// Query describes a set of log entries. The zero value of every field means
// "no restriction".
type Query struct {
	PageID                int64
	Actions               []string
	UserID                *int64
	After                 time.Time
	Before                time.Time
	WorkflowStateID       *int64
	ExcludeActionPrefixes []string
	Annotations           Annotations
	OldestFirst           bool
}

// ForPage returns the query of every log entry of the page.
func ForPage(pageID int64) Query {
	return Query{PageID: pageID}
}

// Annotate marks q to resolve user names and revision details.
func Annotate(q Query) Query {
	q.Annotations = Annotations{Users: true, Revisions: true}
	return q
}

// ExcludeActionPrefix returns a copy of q that also drops entries whose
// action starts with prefix.
func (q Query) ExcludeActionPrefix(prefix string) Query {
	excluded := make([]string, 0, len(q.ExcludeActionPrefixes)+1)
	excluded = append(excluded, q.ExcludeActionPrefixes...)
	q.ExcludeActionPrefixes = append(excluded, prefix)
	return q
}

// Matches reports whether e belongs to the set q describes. Repositories
// that cannot push the query down to SQL filter with it.
func (q Query) Matches(e Entry) bool {
	if q.PageID != 0 && e.PageID != q.PageID {
		return false
	}
	if len(q.Actions) > 0 {
		found := false
		for _, a := range q.Actions {
			if a == e.Action {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.UserID != nil && (e.UserID == nil || *e.UserID != *q.UserID) {
		return false
	}
	if !q.After.IsZero() && e.Timestamp.Before(q.After) {
		return false
	}
	if !q.Before.IsZero() && !e.Timestamp.Before(q.Before) {
		return false
	}
	for _, prefix := range q.ExcludeActionPrefixes {
		if strings.HasPrefix(e.Action, prefix) {
			return false
		}
	}
	if q.WorkflowStateID != nil {
		id, ok := workflowStateID(e.Data)
		if !ok || id != *q.WorkflowStateID {
			return false
		}
	}
	return true
}

func workflowStateID(data map[string]any) (int64, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data["workflow_state_id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Result is one page of entries.
type Result struct {
	Entries []Entry
	Total   int
}
