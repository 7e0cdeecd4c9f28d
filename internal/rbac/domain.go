package rbac

import "time"

// Group collects users that share permissions.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// PagePermission grants a permission codename to a group on a page and all
// of its descendants.
type PagePermission struct {
	GroupID    int64
	PageID     int64
	PagePath   string
	Permission string
}

// Principal describes the authenticated actor.
type Principal interface {
	GetID() int64
	IsSuperUser() bool
	Active() bool
}
