package revisions

import "time"

// Content is the page content captured by a revision.
type Content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Revision is a saved version of a page.
type Revision struct {
	ID               int64
	PageID           int64
	UserID           *int64
	UserName         string
	Content          Content
	CreatedAt        time.Time
	ApprovedGoLiveAt *time.Time
}

// Scheduled reports whether the revision waits for publication.
func (r Revision) Scheduled() bool {
	return r.ApprovedGoLiveAt != nil
}

// Due reports whether a scheduled revision should be live at now.
func (r Revision) Due(now time.Time) bool {
	return r.ApprovedGoLiveAt != nil && !r.ApprovedGoLiveAt.After(now)
}
