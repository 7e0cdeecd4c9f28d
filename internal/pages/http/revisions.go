package pageshttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arbor-cms/arbor/internal/pages"
	"github.com/arbor-cms/arbor/internal/revisions"
	"github.com/arbor-cms/arbor/internal/shared"
	"github.com/arbor-cms/arbor/internal/view"
)

const (
	revisionViewTemplate    = "pages/revision_view.html"
	revisionCompareTemplate = "pages/revision_compare.html"

	compareLive   = "live"
	compareLatest = "latest"
)

// RevisionViewModel is rendered by the revision preview.
type RevisionViewModel struct {
	Page       pages.Page
	Revision   revisions.Revision
	HistoryURL string
}

// CompareViewModel is rendered by the revision comparison.
type CompareViewModel struct {
	Page       pages.Page
	From       revisions.Revision
	To         revisions.Revision
	Fields     []revisions.FieldComparison
	HistoryURL string
}

func (h *Handler) historyGate(r *http.Request) (*pageRequest, error) {
	pr, err := h.loadPage(r)
	if err != nil {
		return nil, err
	}
	if !pr.tester.HasAny(shared.HistoryPermissions()...) {
		return nil, errPermissionDenied
	}
	return pr, nil
}

func (h *Handler) handleRevisionView(w http.ResponseWriter, r *http.Request) {
	pr, err := h.historyGate(r)
	if err != nil {
		h.fail(w, "authorize revision view", err)
		return
	}
	revisionID, err := int64Param(r, "revision_id")
	if err != nil {
		h.fail(w, "parse revision", err)
		return
	}
	rev, err := h.revisions.Get(r.Context(), pr.page.ID, revisionID)
	if err != nil {
		h.fail(w, "load revision", err)
		return
	}
	historyURL := h.routes.URL(RouteHistory, pr.page.ID)
	crumbs, err := pr.pageBreadcrumbs()
	if err != nil {
		h.handleServerError(w, "build breadcrumbs", err)
		return
	}
	h.render(w, r, revisionViewTemplate, view.TemplateData{
		Title:       fmt.Sprintf("Revision %d", rev.ID),
		Subtitle:    pr.page.AdminDisplayTitle(),
		Breadcrumbs: append(crumbs, shared.Breadcrumb{URL: historyURL, Label: "History"}, shared.Breadcrumb{Label: "Revision"}),
		Data:        RevisionViewModel{Page: pr.page, Revision: rev, HistoryURL: historyURL},
	})
}

func (h *Handler) handleRevisionCompare(w http.ResponseWriter, r *http.Request) {
	pr, err := h.historyGate(r)
	if err != nil {
		h.fail(w, "authorize revision compare", err)
		return
	}
	from, err := h.compareSide(r, pr.page, "revision_id_a")
	if err != nil {
		h.fail(w, "load revision a", err)
		return
	}
	to, err := h.compareSide(r, pr.page, "revision_id_b")
	if err != nil {
		h.fail(w, "load revision b", err)
		return
	}
	historyURL := h.routes.URL(RouteHistory, pr.page.ID)
	crumbs, err := pr.pageBreadcrumbs()
	if err != nil {
		h.handleServerError(w, "build breadcrumbs", err)
		return
	}
	h.render(w, r, revisionCompareTemplate, view.TemplateData{
		Title:       "Compare revisions",
		Subtitle:    pr.page.AdminDisplayTitle(),
		Breadcrumbs: append(crumbs, shared.Breadcrumb{URL: historyURL, Label: "History"}, shared.Breadcrumb{Label: "Compare"}),
		Data: CompareViewModel{
			Page:       pr.page,
			From:       from,
			To:         to,
			Fields:     revisions.Compare(from, to),
			HistoryURL: historyURL,
		},
	})
}

// compareSide resolves a compare parameter: a revision id, "live" or
// "latest".
func (h *Handler) compareSide(r *http.Request, page pages.Page, param string) (revisions.Revision, error) {
	raw := chi.URLParam(r, param)
	var id *int64
	switch raw {
	case compareLive:
		id = page.LiveRevisionID
	case compareLatest:
		id = page.LatestRevisionID
	default:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return revisions.Revision{}, shared.ErrNotFound
		}
		id = &parsed
	}
	if id == nil {
		return revisions.Revision{}, shared.ErrNotFound
	}
	return h.revisions.Get(r.Context(), page.ID, *id)
}

func (h *Handler) handleRevisionUnschedule(w http.ResponseWriter, r *http.Request) {
	pr, err := h.loadPage(r)
	if err != nil {
		h.fail(w, "load page", err)
		return
	}
	if !pr.tester.CanUnschedule() {
		h.fail(w, "authorize unschedule", errPermissionDenied)
		return
	}
	revisionID, err := int64Param(r, "revision_id")
	if err != nil {
		h.fail(w, "parse revision", err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	err = h.revisions.Unschedule(r.Context(), pr.page.ID, revisionID, pr.user.GetID())
	switch {
	case errors.Is(err, revisions.ErrNotScheduled):
		addFlash(sess, shared.FlashWarning, fmt.Sprintf("Revision %d of %q is not scheduled.", revisionID, pr.page.AdminDisplayTitle()))
	case err != nil:
		h.fail(w, "unschedule revision", err)
		return
	default:
		h.logger.Info("revision unscheduled",
			slog.Int64("page_id", pr.page.ID),
			slog.Int64("revision_id", revisionID),
			slog.Int64("user_id", pr.user.GetID()),
		)
		if inv, ok := h.users.(cacheInvalidator); ok {
			if err := inv.Invalidate(r.Context(), pr.page.ID); err != nil {
				h.logger.Warn("invalidate history users", slog.Any("error", err))
			}
		}
		addFlash(sess, shared.FlashSuccess, fmt.Sprintf("Revision %d of %q unscheduled.", revisionID, pr.page.AdminDisplayTitle()))
	}
	http.Redirect(w, r, h.routes.URL(RouteHistory, pr.page.ID), http.StatusSeeOther)
}

func addFlash(sess *shared.Session, kind, message string) {
	if sess == nil {
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
}
