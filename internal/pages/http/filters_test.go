package pageshttp

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arbor-cms/arbor/internal/history"
)

func TestCheckboxValue(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"hide_commenting_actions=", false},
		{"hide_commenting_actions=false", false},
		{"hide_commenting_actions=False", false},
		{"hide_commenting_actions=true", true},
		{"hide_commenting_actions=on", true},
		{"hide_commenting_actions=0", true},
		{"hide_commenting_actions=true&hide_commenting_actions=false", false},
	}
	for _, tc := range cases {
		values, err := url.ParseQuery(tc.query)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, checkboxValue(values, HideCommentingActionsParam), tc.query)
	}
}

func TestPageHistoryFilterSetHidesComments(t *testing.T) {
	entries := []history.Entry{
		{ID: 1, PageID: 5, Action: "wagtail.edit"},
		{ID: 2, PageID: 5, Action: "wagtail.comments.create"},
		{ID: 3, PageID: 5, Action: "wagtail.comments.resolve"},
		{ID: 4, PageID: 5, Action: "wagtail.publish"},
	}
	matching := func(q history.Query) []int64 {
		var ids []int64
		for _, e := range entries {
			if q.Matches(e) {
				ids = append(ids, e.ID)
			}
		}
		return ids
	}

	on := NewPageHistoryFilterSet(url.Values{HideCommentingActionsParam: {"true"}}, nil)
	assert.True(t, on.Active())
	assert.Equal(t, []int64{1, 4}, matching(on.Filter(history.ForPage(5))))

	off := NewPageHistoryFilterSet(url.Values{HideCommentingActionsParam: {"false"}}, nil)
	assert.False(t, off.Active())
	assert.Equal(t, history.ForPage(5), off.Filter(history.ForPage(5)))
	assert.Equal(t, []int64{1, 2, 3, 4}, matching(off.Filter(history.ForPage(5))))

	omitted := NewPageHistoryFilterSet(url.Values{}, nil)
	assert.Equal(t, []int64{1, 2, 3, 4}, matching(omitted.Filter(history.ForPage(5))))
}

func TestPageHistoryFilterSetCombinesWithActions(t *testing.T) {
	fs := NewPageHistoryFilterSet(url.Values{
		"action":                   {"wagtail.comments.create", "wagtail.publish"},
		HideCommentingActionsParam: {"on"},
	}, nil)

	q := fs.Filter(history.ForPage(1))
	assert.Equal(t, []string{"wagtail.comments.create", "wagtail.publish"}, q.Actions)
	assert.Equal(t, []string{history.CommentActionPrefix}, q.ExcludeActionPrefixes)
	assert.False(t, q.Matches(history.Entry{PageID: 1, Action: "wagtail.comments.create"}))
	assert.True(t, q.Matches(history.Entry{PageID: 1, Action: "wagtail.publish"}))
}
