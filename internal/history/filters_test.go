package history

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arbor-cms/arbor/internal/users"
)

func TestHistoryFilterSetAppliesValidFields(t *testing.T) {
	values := url.Values{
		"action":           {ActionPublish, "wagtail.edit"},
		"user":             {"7"},
		"timestamp_after":  {"2024-03-01"},
		"timestamp_before": {"2024-03-31"},
	}
	fs := NewHistoryFilterSet(values, []users.Choice{{ID: 7, Label: "Editor"}})

	assert.True(t, fs.Valid())
	assert.True(t, fs.Active())
	q := fs.Filter(ForPage(1))
	assert.Equal(t, []string{ActionPublish, "wagtail.edit"}, q.Actions)
	if assert.NotNil(t, q.UserID) {
		assert.Equal(t, int64(7), *q.UserID)
	}
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), q.After)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), q.Before)
}

func TestHistoryFilterSetSkipsInvalidFields(t *testing.T) {
	values := url.Values{
		"action":           {"not.an.action"},
		"user":             {"abc"},
		"timestamp_after":  {"yesterday"},
		"timestamp_before": {"2024-03-31"},
	}
	fs := NewHistoryFilterSet(values, nil)

	assert.False(t, fs.Valid())
	errs := fs.Errors()
	assert.Equal(t, "Select a valid choice.", errs["action"])
	assert.Equal(t, "Select a valid choice.", errs["user"])
	assert.Equal(t, "Enter a valid date.", errs["timestamp_after"])
	assert.NotContains(t, errs, "timestamp_before")

	q := fs.Filter(ForPage(1))
	assert.Empty(t, q.Actions)
	assert.Nil(t, q.UserID)
	assert.True(t, q.After.IsZero())
	assert.False(t, q.Before.IsZero())
}

func TestHistoryFilterSetUnknownUser(t *testing.T) {
	fs := NewHistoryFilterSet(url.Values{"user": {"3"}}, []users.Choice{{ID: 7}})
	assert.Contains(t, fs.Errors(), "user")
	assert.Nil(t, fs.Filter(ForPage(1)).UserID)
}

func TestHistoryFilterSetEmpty(t *testing.T) {
	fs := NewHistoryFilterSet(url.Values{"action": {""}}, nil)
	assert.True(t, fs.Valid())
	assert.False(t, fs.Active())
	assert.Equal(t, ForPage(4), fs.Filter(ForPage(4)))
}
