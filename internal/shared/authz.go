package shared

// Global admin permissions, granted to groups.
const (
	PermAdminAccess = "admin.access"
	PermUsersView   = "users.view"
)

// Page permission codenames, granted to groups on a page and inherited by
// every descendant of that page.
const (
	PagePermAdd        = "add"
	PagePermChange     = "change"
	PagePermPublish    = "publish"
	PagePermBulkDelete = "bulk_delete"
	PagePermLock       = "lock"
	PagePermUnlock     = "unlock"
)

// PagePermissionTypes lists every page permission codename.
func PagePermissionTypes() []string {
	return []string{
		PagePermAdd,
		PagePermChange,
		PagePermPublish,
		PagePermBulkDelete,
		PagePermLock,
		PagePermUnlock,
	}
}

// HistoryPermissions lists the page permissions of which any one grants access
// to a page's history.
func HistoryPermissions() []string {
	return PagePermissionTypes()
}
