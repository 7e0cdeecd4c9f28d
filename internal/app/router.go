package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arbor-cms/arbor/internal/auth"
	"github.com/arbor-cms/arbor/internal/observability"
	"github.com/arbor-cms/arbor/internal/pages"
	pageshttp "github.com/arbor-cms/arbor/internal/pages/http"
	"github.com/arbor-cms/arbor/internal/platform/httpx"
	"github.com/arbor-cms/arbor/internal/rbac"
	"github.com/arbor-cms/arbor/internal/shared"
	"github.com/arbor-cms/arbor/internal/view"
	"github.com/arbor-cms/arbor/jobs"
)

// AdminPrefix mounts every admin view.
const AdminPrefix = "/admin"

// RootLoader returns the root of the page tree for the dashboard.
type RootLoader interface {
	Root(ctx context.Context) (pages.Page, error)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Routes         *httpx.Routes
	AuthHandler    *auth.Handler
	PagesHandler   *pageshttp.Handler
	JobHandler     *jobs.Handler
	RBACMiddleware rbac.Middleware
	Pages          RootLoader
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with the admin defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, AdminPrefix+"/", http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route(AdminPrefix, func(ar chi.Router) {
		ar.Use(params.AuthHandler.RequireUser)
		ar.Use(params.RBACMiddleware.RequireAny(shared.PermAdminAccess))
		ar.Get("/", dashboard(params))
		params.PagesHandler.MountRoutes(ar)
		if params.JobHandler != nil {
			ar.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	mountStatic(r, params.Logger)

	return r
}

type dashboardData struct {
	Root    *pages.Page
	RootURL string
}

func dashboard(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data dashboardData
		if params.Pages != nil {
			root, err := params.Pages.Root(r.Context())
			switch {
			case err == nil:
				data.Root = &root
				if params.Routes != nil {
					data.RootURL = params.Routes.URL(pageshttp.RouteHistory, root.ID)
				}
			case errors.Is(err, shared.ErrNotFound):
			default:
				params.Logger.Error("load root page", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
		viewData := view.TemplateData{
			Title:       "Dashboard",
			CSRFToken:   csrfToken,
			Flash:       shared.PopFlash(r.Context()),
			CurrentPath: r.URL.Path,
			Data:        data,
		}
		if err := params.Templates.Render(w, "pages/home.html", viewData); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
