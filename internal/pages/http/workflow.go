package pageshttp

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/arbor-cms/arbor/internal/history"
	"github.com/arbor-cms/arbor/internal/pages"
	"github.com/arbor-cms/arbor/internal/shared"
	"github.com/arbor-cms/arbor/internal/view"
	"github.com/arbor-cms/arbor/internal/workflow"
)

const (
	workflowHistoryTemplate       = "pages/workflow_history.html"
	workflowHistoryDetailTemplate = "pages/workflow_history_detail.html"
	workflowIcon                  = "doc-empty-inverse"
)

// WorkflowRow is a workflow run with its detail link.
type WorkflowRow struct {
	workflow.State
	DetailURL string
}

// WorkflowHistoryViewModel is rendered by the workflow history listing.
type WorkflowHistoryViewModel struct {
	Page       pages.Page
	Icon       string
	Rows       []WorkflowRow
	Pagination shared.Pagination
	PrevURL    string
	NextURL    string
	HistoryURL string
}

// WorkflowDetailViewModel is rendered by the workflow history detail view.
type WorkflowDetailViewModel struct {
	Page       pages.Page
	Icon       string
	State      workflow.State
	Tasks      []workflow.TaskState
	Timeline   []history.Entry
	ListingURL string
}

// workflowGate resolves the page and requires edit permission on it.
func (h *Handler) workflowGate(r *http.Request) (*pageRequest, error) {
	pr, err := h.loadPage(r)
	if err != nil {
		return nil, err
	}
	if !pr.tester.CanEdit() {
		return nil, errPermissionDenied
	}
	return pr, nil
}

func (h *Handler) handleWorkflowHistory(w http.ResponseWriter, r *http.Request) {
	pr, err := h.workflowGate(r)
	if err != nil {
		h.fail(w, "authorize workflow history", err)
		return
	}
	ctx := r.Context()

	total, err := h.workflows.CountForPage(ctx, pr.page.ID)
	if err != nil {
		h.handleServerError(w, "count workflow states", err)
		return
	}
	pagination := shared.NewPagination(shared.PageFromQuery(r.URL.Query()), h.history.PageSize(), total)
	if pagination.Page > pagination.TotalPages {
		pagination = shared.NewPagination(pagination.TotalPages, pagination.PerPage, total)
	}
	states, err := h.workflows.ListForPage(ctx, pr.page.ID, pagination.PerPage, pagination.Offset())
	if err != nil {
		h.handleServerError(w, "list workflow states", err)
		return
	}

	rows := make([]WorkflowRow, 0, len(states))
	for _, s := range states {
		rows = append(rows, WorkflowRow{State: s, DetailURL: h.routes.URL(RouteWorkflowHistoryDetail, pr.page.ID, s.ID)})
	}
	listURL := h.routes.URL(RouteWorkflowHistory, pr.page.ID)
	vm := WorkflowHistoryViewModel{
		Page:       pr.page,
		Icon:       workflowIcon,
		Rows:       rows,
		Pagination: pagination,
		HistoryURL: h.routes.URL(RouteHistory, pr.page.ID),
	}
	if pagination.HasPrev() {
		vm.PrevURL = listURL + "?" + shared.PageQuery(r.URL.Query(), pagination.PrevPage())
	}
	if pagination.HasNext() {
		vm.NextURL = listURL + "?" + shared.PageQuery(r.URL.Query(), pagination.NextPage())
	}

	crumbs, err := pr.pageBreadcrumbs()
	if err != nil {
		h.handleServerError(w, "build breadcrumbs", err)
		return
	}
	h.render(w, r, workflowHistoryTemplate, view.TemplateData{
		Title:       "Workflow history",
		Subtitle:    pr.page.AdminDisplayTitle(),
		Breadcrumbs: append(crumbs, shared.Breadcrumb{Label: "Workflow history"}),
		Data:        vm,
	})
}

func (h *Handler) handleWorkflowHistoryDetail(w http.ResponseWriter, r *http.Request) {
	pr, err := h.workflowGate(r)
	if err != nil {
		h.fail(w, "authorize workflow history detail", err)
		return
	}
	stateID, err := int64Param(r, "workflow_state_id")
	if err != nil {
		h.fail(w, "parse workflow state", err)
		return
	}
	state, err := h.workflows.GetForPage(r.Context(), pr.page.ID, stateID)
	if err != nil {
		h.fail(w, "load workflow state", err)
		return
	}

	var (
		tasks    []workflow.TaskState
		timeline []history.Entry
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		tasks, err = h.workflows.TaskStates(gctx, state.ID)
		return err
	})
	g.Go(func() error {
		var err error
		timeline, err = h.timeline.WorkflowTimeline(gctx, pr.page.ID, state.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.handleServerError(w, "load workflow detail", err)
		return
	}

	listURL := h.routes.URL(RouteWorkflowHistory, pr.page.ID)
	crumbs, err := pr.pageBreadcrumbs()
	if err != nil {
		h.handleServerError(w, "build breadcrumbs", err)
		return
	}
	crumbs = append(crumbs,
		shared.Breadcrumb{URL: listURL, Label: "Workflow history"},
		shared.Breadcrumb{Label: state.WorkflowName},
	)
	h.render(w, r, workflowHistoryDetailTemplate, view.TemplateData{
		Title:       "Workflow progress",
		Subtitle:    pr.page.AdminDisplayTitle(),
		Breadcrumbs: crumbs,
		Data: WorkflowDetailViewModel{
			Page:       pr.page,
			Icon:       workflowIcon,
			State:      state,
			Tasks:      tasks,
			Timeline:   timeline,
			ListingURL: listURL,
		},
	})
}
