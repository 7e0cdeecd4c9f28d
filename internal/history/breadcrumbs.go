package history

import "github.com/arbor-cms/arbor/internal/shared"

// HistoryLabel labels the last item of every history trail.
const HistoryLabel = "History"

// BreadcrumbItems returns the generic trail of a history view: a link to
// the object's edit view followed by the "History" item.
func BreadcrumbItems(editURL, objectLabel string) []shared.Breadcrumb {
	return []shared.Breadcrumb{
		{URL: editURL, Label: objectLabel},
		{Label: HistoryLabel},
	}
}
