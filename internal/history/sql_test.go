package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListSQLExcludesCommentActions(t *testing.T) {
	q := ForPage(12).ExcludeActionPrefix(CommentActionPrefix)

	sql, args := q.listSQL(20, 40)

	assert.Contains(t, sql, "e.page_id = $1")
	assert.Contains(t, sql, `e.action NOT LIKE $2 ESCAPE '\'`)
	assert.Contains(t, sql, "LIMIT $3 OFFSET $4")
	assert.Equal(t, []any{int64(12), "wagtail.comments%", 20, 40}, args)
	assert.NotContains(t, sql, "LEFT JOIN users")
}

func TestListSQLAnnotated(t *testing.T) {
	sql, _ := Annotate(ForPage(1)).listSQL(20, 0)
	assert.Contains(t, sql, "LEFT JOIN users u ON u.id = e.user_id")
	assert.Contains(t, sql, "LEFT JOIN revisions r ON r.id = e.revision_id")
	assert.Contains(t, sql, "ORDER BY e.timestamp DESC, e.id DESC")
}

func TestListSQLOldestFirst(t *testing.T) {
	state := int64(4)
	sql, args := Query{PageID: 2, WorkflowStateID: &state, OldestFirst: true}.listSQL(500, 0)

	assert.Contains(t, sql, "ORDER BY e.timestamp ASC, e.id ASC")
	assert.NotContains(t, sql, "DESC")
	assert.Equal(t, []any{int64(2), "4", 500, 0}, args)
}

func TestCountSQLFilters(t *testing.T) {
	user := int64(5)
	state := int64(9)
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := Query{PageID: 3, Actions: []string{ActionPublish}, UserID: &user, After: after, WorkflowStateID: &state}

	sql, args := q.countSQL()

	assert.Equal(t, "SELECT COUNT(*) FROM page_log_entries e WHERE e.page_id = $1 AND e.action = ANY($2) AND e.user_id = $3 AND e.timestamp >= $4 AND e.data->>'workflow_state_id' = $5", sql)
	assert.Equal(t, []any{int64(3), []string{ActionPublish}, int64(5), after, "9"}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\_b\%c\\`, escapeLike(`a_b%c\`))
}

func TestExcludeActionPrefixDoesNotAlias(t *testing.T) {
	base := ForPage(1).ExcludeActionPrefix("a")
	left := base.ExcludeActionPrefix("b")
	right := base.ExcludeActionPrefix("c")
	assert.Equal(t, []string{"a", "b"}, left.ExcludeActionPrefixes)
	assert.Equal(t, []string{"a", "c"}, right.ExcludeActionPrefixes)
}

func TestQueryMatches(t *testing.T) {
	q := ForPage(1).ExcludeActionPrefix(CommentActionPrefix)
	assert.True(t, q.Matches(Entry{PageID: 1, Action: "wagtail.edit"}))
	assert.False(t, q.Matches(Entry{PageID: 1, Action: "wagtail.comments.create"}))
	assert.False(t, q.Matches(Entry{PageID: 2, Action: "wagtail.edit"}))

	state := int64(4)
	wf := Query{WorkflowStateID: &state}
	assert.True(t, wf.Matches(Entry{Data: map[string]any{"workflow_state_id": float64(4)}}))
	assert.False(t, wf.Matches(Entry{Data: map[string]any{}}))
}
