package shared

// Breadcrumb is one link of an admin breadcrumb trail. The final item of a
// trail usually has no URL.
type Breadcrumb struct {
	URL   string
	Label string
}
