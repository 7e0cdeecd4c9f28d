package pageshttp

import (
	"log/slog"
	"net/http"

	"github.com/arbor-cms/arbor/internal/history"
	"github.com/arbor-cms/arbor/internal/pages"
	"github.com/arbor-cms/arbor/internal/shared"
	"github.com/arbor-cms/arbor/internal/view"
)

const (
	historyTemplate        = "pages/history.html"
	historyResultsTemplate = "partials/history_results.html"
	historyIcon            = "history"
)

// EntryRow is a log entry with the links the listing offers for it.
type EntryRow struct {
	history.Entry
	ViewURL       string
	CompareURL    string
	RevertURL     string
	UnscheduleURL string
}

// HistoryViewModel is rendered by the page history templates.
type HistoryViewModel struct {
	Page              pages.Page
	Icon              string
	Rows              []EntryRow
	Pagination        shared.Pagination
	PrevURL           string
	NextURL           string
	Filters           *PageHistoryFilterSet
	UserCanUnschedule bool
	HistoryURL        string
	ResultsURL        string
	EditURL           string
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r, historyTemplate)
}

func (h *Handler) handleHistoryResults(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r, historyResultsTemplate)
}

func (h *Handler) serveHistory(w http.ResponseWriter, r *http.Request, template string) {
	pr, err := h.loadPage(r)
	if err != nil {
		h.fail(w, "load page", err)
		return
	}
	if !pr.tester.HasAny(shared.HistoryPermissions()...) {
		h.fail(w, "authorize history", errPermissionDenied)
		return
	}

	userChoices, err := h.users.Users(r.Context(), pr.page.ID)
	if err != nil {
		h.handleServerError(w, "load history users", err)
		return
	}
	filters := NewPageHistoryFilterSet(r.URL.Query(), userChoices)
	q := filters.Filter(history.Annotate(history.ForPage(pr.page.ID)))

	listing, err := h.history.Page(r.Context(), q, shared.PageFromQuery(r.URL.Query()))
	if err != nil {
		h.handleServerError(w, "load history", err)
		return
	}

	breadcrumbs, err := h.historyBreadcrumbs(pr)
	if err != nil {
		h.handleServerError(w, "build breadcrumbs", err)
		return
	}

	vm := h.historyViewModel(r, pr, filters, listing)
	h.logger.Debug("page history",
		slog.Int64("page_id", pr.page.ID),
		slog.Int("entries", len(listing.Entries)),
		slog.Bool("hide_commenting_actions", filters.HideCommentingActions),
	)
	h.render(w, r, template, view.TemplateData{
		Title:       "History",
		Subtitle:    pr.page.AdminDisplayTitle(),
		Breadcrumbs: breadcrumbs,
		Data:        vm,
	})
}

// historyBreadcrumbs joins the page trail with the final "History" item of
// the generic history trail. The generic edit link is dropped so the trail
// follows the page explorer.
func (h *Handler) historyBreadcrumbs(pr *pageRequest) ([]shared.Breadcrumb, error) {
	items, err := pr.pageBreadcrumbs()
	if err != nil {
		return nil, err
	}
	generic := history.BreadcrumbItems(h.routes.URL(RouteEdit, pr.page.ID), pr.page.AdminDisplayTitle())
	trail := make([]shared.Breadcrumb, 0, len(items)+1)
	trail = append(trail, items...)
	return append(trail, generic[len(generic)-1]), nil
}

func (h *Handler) historyViewModel(r *http.Request, pr *pageRequest, filters *PageHistoryFilterSet, listing history.Listing) HistoryViewModel {
	page := pr.page
	canUnschedule := pr.tester.CanUnschedule()
	canEdit := pr.tester.CanEdit()

	rows := make([]EntryRow, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		row := EntryRow{Entry: e}
		if e.RevisionID != nil {
			rev := *e.RevisionID
			row.ViewURL = h.routes.URL(RouteRevisionsView, page.ID, rev)
			if page.LiveRevisionID != nil && *page.LiveRevisionID != rev {
				row.CompareURL = h.routes.URL(RouteRevisionsCompare, page.ID, compareLive, rev)
			}
			if canEdit && !e.RevisionIsLatest {
				row.RevertURL = h.routes.URL(RouteRevisionsRevert, page.ID, rev)
			}
			if canUnschedule && e.Scheduled() {
				row.UnscheduleURL = h.routes.URL(RouteRevisionsUnschedule, page.ID, rev)
			}
		}
		rows = append(rows, row)
	}

	historyURL := h.routes.URL(RouteHistory, page.ID)
	resultsURL := h.routes.URL(RouteHistoryResults, page.ID)
	vm := HistoryViewModel{
		Page:              page,
		Icon:              historyIcon,
		Rows:              rows,
		Pagination:        listing.Pagination,
		Filters:           filters,
		UserCanUnschedule: canUnschedule,
		HistoryURL:        historyURL,
		ResultsURL:        resultsURL,
		EditURL:           h.routes.URL(RouteEdit, page.ID),
	}
	query := r.URL.Query()
	if listing.Pagination.HasPrev() {
		vm.PrevURL = historyURL + "?" + shared.PageQuery(query, listing.Pagination.PrevPage())
	}
	if listing.Pagination.HasNext() {
		vm.NextURL = historyURL + "?" + shared.PageQuery(query, listing.Pagination.NextPage())
	}
	return vm
}
