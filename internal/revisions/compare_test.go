package revisions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareDetectsChangedFields(t *testing.T) {
	a := Revision{Content: Content{Title: "About", Body: "line one\nline two\n"}}
	b := Revision{Content: Content{Title: "About", Body: "line one\nline three\n"}}

	fields := Compare(a, b)
	require.Len(t, fields, 2)

	assert.Equal(t, "title", fields[0].Field)
	assert.False(t, fields[0].Changed())

	assert.True(t, fields[1].Changed())
	var inserted, deleted string
	for _, s := range fields[1].Spans {
		switch s.Kind {
		case SpanInsert:
			inserted += s.Text
		case SpanDelete:
			deleted += s.Text
		}
	}
	assert.Contains(t, inserted, "three")
	assert.Contains(t, deleted, "two")
}

func TestCompareIdentical(t *testing.T) {
	rev := Revision{Content: Content{Title: "Same", Body: "text"}}
	for _, f := range Compare(rev, rev) {
		assert.False(t, f.Changed(), f.Field)
	}
}

func TestRevisionDue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.True(t, Revision{ApprovedGoLiveAt: &past}.Due(now))
	assert.True(t, Revision{ApprovedGoLiveAt: &now}.Due(now))
	assert.False(t, Revision{ApprovedGoLiveAt: &future}.Due(now))
	assert.False(t, Revision{}.Due(now))
	assert.False(t, Revision{}.Scheduled())
}
