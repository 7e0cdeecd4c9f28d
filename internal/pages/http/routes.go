package pageshttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/arbor-cms/arbor/internal/platform/httpx"
	"github.com/arbor-cms/arbor/internal/rbac"
)

// Route names.
const (
	RouteExplore               = "pages:explore"
	RouteEdit                  = "pages:edit"
	RouteHistory               = "pages:history"
	RouteHistoryResults        = "pages:history_results"
	RouteWorkflowHistory       = "pages:workflow_history"
	RouteWorkflowHistoryDetail = "pages:workflow_history_detail"
	RouteRevisionsView         = "pages:revisions_view"
	RouteRevisionsCompare      = "pages:revisions_compare"
	RouteRevisionsRevert       = "pages:revisions_revert"
	RouteRevisionsUnschedule   = "pages:revisions_unschedule"
)

var patterns = map[string]string{
	RouteExplore:               "/pages/{page_id}/",
	RouteEdit:                  "/pages/{page_id}/edit/",
	RouteHistory:               "/pages/{page_id}/history/",
	RouteHistoryResults:        "/pages/{page_id}/history/results/",
	RouteWorkflowHistory:       "/pages/{page_id}/workflow_history/",
	RouteWorkflowHistoryDetail: "/pages/{page_id}/workflow_history/detail/{workflow_state_id}/",
	RouteRevisionsView:         "/pages/{page_id}/revisions/{revision_id}/view/",
	RouteRevisionsCompare:      "/pages/{page_id}/revisions/compare/{revision_id_a}/{revision_id_b}/",
	RouteRevisionsRevert:       "/pages/{page_id}/revisions/{revision_id}/revert/",
	RouteRevisionsUnschedule:   "/pages/{page_id}/revisions/{revision_id}/unschedule/",
}

const rateLimit = 30
const rateWindow = time.Minute

// RegisterNames names every page route below prefix, including the explorer,
// editor and revert routes served elsewhere.
func RegisterNames(routes *httpx.Routes, prefix string) {
	for name, pattern := range patterns {
		routes.Name(name, prefix+pattern)
	}
}

// MountRoutes registers the history endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
	r.Get(patterns[RouteHistory], h.handleHistory)
	r.Get(patterns[RouteWorkflowHistory], h.handleWorkflowHistory)
	r.Get(patterns[RouteWorkflowHistoryDetail], h.handleWorkflowHistoryDetail)
	r.Get(patterns[RouteRevisionsView], h.handleRevisionView)
	r.Post(patterns[RouteRevisionsUnschedule], h.handleRevisionUnschedule)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get(patterns[RouteHistoryResults], h.handleHistoryResults)
		gr.Get(patterns[RouteRevisionsCompare], h.handleRevisionCompare)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if user := rbac.PrincipalFromContext(r.Context()); user != nil {
		return "user:" + strconv.FormatInt(user.GetID(), 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
