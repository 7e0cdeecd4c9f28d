package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/arbor-cms/arbor/internal/pages"
	"github.com/arbor-cms/arbor/internal/shared"
)

// PermissionStore loads page permissions granted through group membership.
type PermissionStore interface {
	PagePermissions(ctx context.Context, userID int64) ([]PagePermission, error)
}

// PagePolicy answers page-level authorization questions.
type PagePolicy struct {
	store PermissionStore
}

// NewPagePolicy constructs a PagePolicy.
func NewPagePolicy(store PermissionStore) *PagePolicy {
	return &PagePolicy{store: store}
}

// PermissionsForUser loads the grants of user once so that several pages can
// be tested without further queries.
func (p *PagePolicy) PermissionsForUser(ctx context.Context, user Principal) (*UserPagePermissions, error) {
	perms := &UserPagePermissions{user: user}
	if user == nil || !user.Active() || user.IsSuperUser() {
		return perms, nil
	}
	grants, err := p.store.PagePermissions(ctx, user.GetID())
	if err != nil {
		return nil, fmt.Errorf("rbac: load page permissions: %w", err)
	}
	for _, g := range grants {
		g.Permission = strings.ToLower(strings.TrimSpace(g.Permission))
		perms.grants = append(perms.grants, g)
	}
	return perms, nil
}

// UserHasAnyPermissionForInstance reports whether user holds at least one of
// actions on page, either directly or through an ancestor.
func (p *PagePolicy) UserHasAnyPermissionForInstance(ctx context.Context, user Principal, actions []string, page pages.Page) (bool, error) {
	perms, err := p.PermissionsForUser(ctx, user)
	if err != nil {
		return false, err
	}
	return perms.ForPage(page).HasAny(actions...), nil
}

// UserPagePermissions is the loaded set of page grants for one user.
type UserPagePermissions struct {
	user   Principal
	grants []PagePermission
}

// User returns the principal the grants belong to.
func (u *UserPagePermissions) User() Principal {
	return u.user
}

// ForPage narrows the grants to those that apply to page.
func (u *UserPagePermissions) ForPage(page pages.Page) PagePermissionTester {
	t := PagePermissionTester{user: u.user, page: page, actions: make(map[string]struct{})}
	for _, g := range u.grants {
		if strings.HasPrefix(page.Path, g.PagePath) {
			t.actions[g.Permission] = struct{}{}
		}
	}
	return t
}

// ExplorableRootPath returns the deepest path that covers every grant. The
// bool is false when the user cannot explore any part of the tree. An empty
// path with true means the whole tree.
func (u *UserPagePermissions) ExplorableRootPath() (string, bool) {
	if u.user == nil || !u.user.Active() {
		return "", false
	}
	if u.user.IsSuperUser() {
		return "", true
	}
	if len(u.grants) == 0 {
		return "", false
	}
	prefix := u.grants[0].PagePath
	for _, g := range u.grants[1:] {
		prefix = commonPathPrefix(prefix, g.PagePath)
	}
	return prefix, true
}

func commonPathPrefix(a, b string) string {
	n := 0
	for n+pages.StepLength <= len(a) && n+pages.StepLength <= len(b) && a[n:n+pages.StepLength] == b[n:n+pages.StepLength] {
		n += pages.StepLength
	}
	return a[:n]
}

// PagePermissionTester evaluates permissions for one user on one page.
type PagePermissionTester struct {
	user    Principal
	page    pages.Page
	actions map[string]struct{}
}

func (t PagePermissionTester) active() bool {
	return t.user != nil && t.user.Active()
}

func (t PagePermissionTester) superuser() bool {
	return t.active() && t.user.IsSuperUser()
}

func (t PagePermissionTester) has(action string) bool {
	_, ok := t.actions[action]
	return ok
}

// HasAny reports whether any of actions is granted on the page.
func (t PagePermissionTester) HasAny(actions ...string) bool {
	if !t.active() {
		return false
	}
	if t.superuser() {
		return true
	}
	for _, a := range actions {
		if t.has(strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// CanEdit reports whether the page may be edited. Owners holding "add" may
// edit their own pages.
func (t PagePermissionTester) CanEdit() bool {
	if !t.active() || t.page.IsRoot() {
		return false
	}
	if t.superuser() || t.has(shared.PagePermChange) {
		return true
	}
	return t.has(shared.PagePermAdd) && t.page.OwnedBy(t.user.GetID())
}

// CanPublish reports whether the page may be published.
func (t PagePermissionTester) CanPublish() bool {
	if !t.active() || t.page.IsRoot() {
		return false
	}
	return t.superuser() || t.has(shared.PagePermPublish)
}

// CanUnschedule reports whether a scheduled revision may be cancelled.
func (t PagePermissionTester) CanUnschedule() bool {
	return t.CanPublish()
}

// CanLock reports whether the page may be locked.
func (t PagePermissionTester) CanLock() bool {
	return t.superuser() || (t.active() && t.has(shared.PagePermLock))
}

// CanUnlock reports whether the page may be unlocked. The lock holder may
// always release their own lock.
func (t PagePermissionTester) CanUnlock() bool {
	if t.superuser() || (t.active() && t.has(shared.PagePermUnlock)) {
		return true
	}
	return t.active() && t.page.Locked && t.page.LockedByID != nil && *t.page.LockedByID == t.user.GetID()
}
