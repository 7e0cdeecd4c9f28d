package pageshttp

import (
	"net/url"
	"strings"

	"github.com/arbor-cms/arbor/internal/history"
	"github.com/arbor-cms/arbor/internal/users"
)

// HideCommentingActionsParam is the query parameter of the comment filter.
const HideCommentingActionsParam = "hide_commenting_actions"

// PageHistoryFilterSet extends the generic history filters with an option to
// hide commenting actions.
type PageHistoryFilterSet struct {
	*history.HistoryFilterSet
	HideCommentingActions bool
}

var _ history.FilterSet = (*PageHistoryFilterSet)(nil)

// NewPageHistoryFilterSet binds the page history filters from values.
func NewPageHistoryFilterSet(values url.Values, userChoices []users.Choice) *PageHistoryFilterSet {
	return &PageHistoryFilterSet{
		HistoryFilterSet:      history.NewHistoryFilterSet(values, userChoices),
		HideCommentingActions: checkboxValue(values, HideCommentingActionsParam),
	}
}

// Filter applies the generic filters, then drops commenting actions when
// requested.
func (fs *PageHistoryFilterSet) Filter(q history.Query) history.Query {
	q = fs.HistoryFilterSet.Filter(q)
	if fs.HideCommentingActions {
		q = q.ExcludeActionPrefix(history.CommentActionPrefix)
	}
	return q
}

// Active reports whether any filter is applied.
func (fs *PageHistoryFilterSet) Active() bool {
	return fs.HideCommentingActions || fs.HistoryFilterSet.Active()
}

// checkboxValue reads a checkbox: absent, empty and "false" are off, "true"
// and any other value is on.
func checkboxValue(values url.Values, name string) bool {
	submitted, ok := values[name]
	if !ok || len(submitted) == 0 {
		return false
	}
	v := submitted[len(submitted)-1]
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false", "":
		return false
	default:
		return true
	}
}
