package pageshttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arbor-cms/arbor/internal/history"
	"github.com/arbor-cms/arbor/internal/pages"
	"github.com/arbor-cms/arbor/internal/platform/httpx"
	"github.com/arbor-cms/arbor/internal/rbac"
	"github.com/arbor-cms/arbor/internal/revisions"
	"github.com/arbor-cms/arbor/internal/shared"
	"github.com/arbor-cms/arbor/internal/users"
	"github.com/arbor-cms/arbor/internal/view"
	"github.com/arbor-cms/arbor/internal/workflow"
)

// PageStore loads pages of the tree.
type PageStore interface {
	Get(ctx context.Context, id int64) (pages.Page, error)
	ByPaths(ctx context.Context, paths []string) ([]pages.Page, error)
}

// UserSource lists the users that acted on a page.
type UserSource interface {
	Users(ctx context.Context, pageID int64) ([]users.Choice, error)
}

// cacheInvalidator is implemented by cached user sources.
type cacheInvalidator interface {
	Invalidate(ctx context.Context, pageID int64) error
}

// WorkflowStore loads workflow runs of a page.
type WorkflowStore interface {
	CountForPage(ctx context.Context, pageID int64) (int, error)
	ListForPage(ctx context.Context, pageID int64, limit, offset int) ([]workflow.State, error)
	GetForPage(ctx context.Context, pageID, stateID int64) (workflow.State, error)
	TaskStates(ctx context.Context, stateID int64) ([]workflow.TaskState, error)
}

// TimelineStore loads the log entries of one workflow run.
type TimelineStore interface {
	WorkflowTimeline(ctx context.Context, pageID, stateID int64) ([]history.Entry, error)
}

// RevisionStore reads and unschedules revisions.
type RevisionStore interface {
	Get(ctx context.Context, pageID, revisionID int64) (revisions.Revision, error)
	Unschedule(ctx context.Context, pageID, revisionID, userID int64) error
}

// PermissionPolicy resolves page permissions for a user.
type PermissionPolicy interface {
	PermissionsForUser(ctx context.Context, user rbac.Principal) (*rbac.UserPagePermissions, error)
}

// Params groups the dependencies of Handler.
type Params struct {
	Logger    *slog.Logger
	Pages     PageStore
	History   history.Store
	Users     UserSource
	Workflows WorkflowStore
	Timeline  TimelineStore
	Revisions RevisionStore
	Policy    PermissionPolicy
	Templates *view.Engine
	Routes    *httpx.Routes
	CSRF      *shared.CSRFManager
	PageSize  int
}

// Handler serves the page history, workflow history and revision views.
type Handler struct {
	logger    *slog.Logger
	pages     PageStore
	history   *history.Service
	users     UserSource
	workflows WorkflowStore
	timeline  TimelineStore
	revisions RevisionStore
	policy    PermissionPolicy
	templates *view.Engine
	routes    *httpx.Routes
	csrf      *shared.CSRFManager
	now       func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(p Params) *Handler {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	routes := p.Routes
	if routes == nil {
		routes = httpx.NewRoutes()
		RegisterNames(routes, "")
	}
	return &Handler{
		logger:    logger,
		pages:     p.Pages,
		history:   history.NewService(p.History, p.PageSize),
		users:     p.Users,
		workflows: p.Workflows,
		timeline:  p.Timeline,
		revisions: p.Revisions,
		policy:    p.Policy,
		templates: p.Templates,
		routes:    routes,
		csrf:      p.CSRF,
		now:       time.Now,
	}
}

var errPermissionDenied = fmt.Errorf("pages: %w", httpx.ErrForbidden)

// pageRequest carries the state resolved for one request on one page.
type pageRequest struct {
	h           *Handler
	ctx         context.Context
	user        rbac.Principal
	page        pages.Page
	perms       *rbac.UserPagePermissions
	tester      rbac.PagePermissionTester
	breadcrumbs []shared.Breadcrumb
	crumbsDone  bool
}

// loadPage resolves the page_id URL parameter and the user's permissions
// on it. Unknown ids yield shared.ErrNotFound.
func (h *Handler) loadPage(r *http.Request) (*pageRequest, error) {
	pageID, err := int64Param(r, "page_id")
	if err != nil {
		return nil, err
	}
	page, err := h.pages.Get(r.Context(), pageID)
	if err != nil {
		return nil, err
	}
	page = page.Specific()

	user := rbac.PrincipalFromContext(r.Context())
	if user == nil {
		return nil, errPermissionDenied
	}
	perms, err := h.policy.PermissionsForUser(r.Context(), user)
	if err != nil {
		return nil, err
	}
	return &pageRequest{
		h:      h,
		ctx:    r.Context(),
		user:   user,
		page:   page,
		perms:  perms,
		tester: perms.ForPage(page),
	}, nil
}

// pageBreadcrumbs computes the page trail once per request.
func (pr *pageRequest) pageBreadcrumbs() ([]shared.Breadcrumb, error) {
	if pr.crumbsDone {
		return pr.breadcrumbs, nil
	}
	items, err := pages.BreadcrumbsForPage(pr.ctx, pr.h.pages, pr.page, pr.perms, func(p pages.Page) string {
		return pr.h.routes.URL(RouteExplore, p.ID)
	})
	if err != nil {
		return nil, err
	}
	pr.breadcrumbs = items
	pr.crumbsDone = true
	return items, nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data view.TemplateData) {
	sess := shared.SessionFromContext(r.Context())
	if h.csrf != nil && sess != nil {
		data.CSRFToken, _ = h.csrf.EnsureToken(r.Context(), sess)
	}
	if data.Flash == nil {
		data.Flash = shared.PopFlash(r.Context())
	}
	data.CurrentPath = r.URL.Path
	if err := h.templates.Render(w, name, data); err != nil {
		h.handleServerError(w, "render "+name, err)
	}
}

// fail answers not-found and permission errors with their status, anything
// else with a logged 500.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.handleServerError(w, message, err)
		return
	}
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
