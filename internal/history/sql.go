package history

import (
	"strconv"
	"strings"
)

const entryColumns = `e.id, e.uuid, e.page_id, e.revision_id, e.user_id, e.action, e.label, e.data,
e.timestamp, e.content_changed, e.deleted`

// statement accumulates SQL text and positional arguments.
type statement struct {
	where []string
	args  []any
}

func (s *statement) arg(v any) string {
	s.args = append(s.args, v)
	return "$" + strconv.Itoa(len(s.args))
}

func (s *statement) and(clause string) {
	s.where = append(s.where, clause)
}

func (s *statement) whereSQL() string {
	if len(s.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(s.where, " AND ")
}

// escapeLike escapes LIKE metacharacters so prefix matches are literal.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (q Query) filters() *statement {
	st := &statement{}
	if q.PageID != 0 {
		st.and("e.page_id = " + st.arg(q.PageID))
	}
	if len(q.Actions) > 0 {
		st.and("e.action = ANY(" + st.arg(q.Actions) + ")")
	}
	if q.UserID != nil {
		st.and("e.user_id = " + st.arg(*q.UserID))
	}
	if !q.After.IsZero() {
		st.and("e.timestamp >= " + st.arg(q.After))
	}
	if !q.Before.IsZero() {
		st.and("e.timestamp < " + st.arg(q.Before))
	}
	if q.WorkflowStateID != nil {
		st.and("e.data->>'workflow_state_id' = " + st.arg(strconv.FormatInt(*q.WorkflowStateID, 10)))
	}
	for _, prefix := range q.ExcludeActionPrefixes {
		st.and("e.action NOT LIKE " + st.arg(escapeLike(prefix)+"%") + ` ESCAPE '\'`)
	}
	return st
}

// countSQL returns the statement counting the entries of q.
func (q Query) countSQL() (string, []any) {
	st := q.filters()
	return "SELECT COUNT(*) FROM page_log_entries e" + st.whereSQL(), st.args
}

// listSQL returns the statement selecting one window of q, newest first
// unless q.OldestFirst is set.
func (q Query) listSQL(limit, offset int) (string, []any) {
	st := q.filters()

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(entryColumns)
	if q.Annotations.Users {
		b.WriteString(",\nCOALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email, '')")
	} else {
		b.WriteString(",\n''")
	}
	if q.Annotations.Revisions {
		b.WriteString(",\nCOALESCE(p.latest_revision_id = e.revision_id, false), COALESCE(p.live_revision_id = e.revision_id, false), r.approved_go_live_at, r.created_at")
	} else {
		b.WriteString(",\nfalse, false, NULL::timestamptz, NULL::timestamptz")
	}
	b.WriteString("\nFROM page_log_entries e")
	if q.Annotations.Users {
		b.WriteString("\nLEFT JOIN users u ON u.id = e.user_id")
	}
	if q.Annotations.Revisions {
		b.WriteString("\nLEFT JOIN revisions r ON r.id = e.revision_id")
		b.WriteString("\nLEFT JOIN pages p ON p.id = e.page_id")
	}
	b.WriteString(st.whereSQL())
	if q.OldestFirst {
		b.WriteString("\nORDER BY e.timestamp ASC, e.id ASC")
	} else {
		b.WriteString("\nORDER BY e.timestamp DESC, e.id DESC")
	}
	b.WriteString("\nLIMIT " + st.arg(limit) + " OFFSET " + st.arg(offset))
	return b.String(), st.args
}
