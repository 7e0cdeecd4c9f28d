package pages

import "time"

// StepLength is the width of one materialised path step.
const StepLength = 4

// RootDepth is the depth of the tree root.
const RootDepth = 1

// Page is a node of the content tree. Path holds one fixed-width step per
// level, so every ancestor's path is a prefix of its descendants' paths.
type Page struct {
	ID               int64
	Path             string
	Depth            int
	Title            string
	DraftTitle       string
	Slug             string
	ContentType      string
	OwnerID          *int64
	Live             bool
	Locked           bool
	LockedByID       *int64
	LatestRevisionID *int64
	LiveRevisionID   *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Type is set by Specific.
	Type Type
}

// IsRoot reports whether the page is the tree root.
func (p Page) IsRoot() bool {
	return p.Depth <= RootDepth
}

// AdminDisplayTitle is the title shown across the admin: the draft title when
// one exists, else the live title. The root node is always "Root".
func (p Page) AdminDisplayTitle() string {
	if p.IsRoot() {
		return "Root"
	}
	if p.DraftTitle != "" {
		return p.DraftTitle
	}
	return p.Title
}

// AncestorPaths returns the paths of every ancestor, root first.
func (p Page) AncestorPaths() []string {
	var paths []string
	for end := StepLength; end < len(p.Path); end += StepLength {
		paths = append(paths, p.Path[:end])
	}
	return paths
}

// IsDescendantOf reports whether p lies below other, or is other when
// inclusive is set.
func (p Page) IsDescendantOf(other Page, inclusive bool) bool {
	if p.Path == other.Path {
		return inclusive
	}
	return len(p.Path) > len(other.Path) && p.Path[:len(other.Path)] == other.Path
}

// OwnedBy reports whether the user owns the page.
func (p Page) OwnedBy(userID int64) bool {
	return p.OwnerID != nil && *p.OwnerID == userID
}
