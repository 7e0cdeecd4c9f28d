package pageshttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/arbor-cms/arbor/internal/history"
	"github.com/arbor-cms/arbor/internal/pages"
	"github.com/arbor-cms/arbor/internal/platform/httpx"
	"github.com/arbor-cms/arbor/internal/rbac"
	"github.com/arbor-cms/arbor/internal/revisions"
	"github.com/arbor-cms/arbor/internal/shared"
	"github.com/arbor-cms/arbor/internal/users"
	"github.com/arbor-cms/arbor/internal/view"
	"github.com/arbor-cms/arbor/internal/workflow"
	_ "github.com/arbor-cms/arbor/testing"
)

type stubPages struct {
	mu      sync.Mutex
	pages   map[int64]pages.Page
	byPaths int
}

func (s *stubPages) Get(ctx context.Context, id int64) (pages.Page, error) {
	p, ok := s.pages[id]
	if !ok {
		return pages.Page{}, shared.ErrNotFound
	}
	return p, nil
}

func (s *stubPages) ByPaths(ctx context.Context, paths []string) ([]pages.Page, error) {
	s.mu.Lock()
	s.byPaths++
	s.mu.Unlock()
	var out []pages.Page
	for _, path := range paths {
		for _, p := range s.pages {
			if p.Path == path {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type memoryHistory struct {
	entries []history.Entry
	last    history.Query
}

func (m *memoryHistory) List(ctx context.Context, q history.Query, limit, offset int) (history.Result, error) {
	m.last = q
	var matched []history.Entry
	for _, e := range m.entries {
		if q.Matches(e) {
			matched = append(matched, e)
		}
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return history.Result{Entries: matched[offset:end], Total: total}, nil
}

func (m *memoryHistory) WorkflowTimeline(ctx context.Context, pageID, stateID int64) ([]history.Entry, error) {
	res, err := m.List(ctx, history.Query{PageID: pageID, WorkflowStateID: &stateID}, 500, 0)
	return res.Entries, err
}

type stubUsers struct {
	invalidated []int64
}

func (s *stubUsers) Users(ctx context.Context, pageID int64) ([]users.Choice, error) {
	return []users.Choice{{ID: 1, Label: "Ada Admin"}}, nil
}

func (s *stubUsers) Invalidate(ctx context.Context, pageID int64) error {
	s.invalidated = append(s.invalidated, pageID)
	return nil
}

type stubWorkflows struct {
	states []workflow.State
	tasks  map[int64][]workflow.TaskState
}

func (s *stubWorkflows) CountForPage(ctx context.Context, pageID int64) (int, error) {
	n := 0
	for _, st := range s.states {
		if st.PageID == pageID {
			n++
		}
	}
	return n, nil
}

func (s *stubWorkflows) ListForPage(ctx context.Context, pageID int64, limit, offset int) ([]workflow.State, error) {
	var out []workflow.State
	for _, st := range s.states {
		if st.PageID == pageID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *stubWorkflows) GetForPage(ctx context.Context, pageID, stateID int64) (workflow.State, error) {
	for _, st := range s.states {
		if st.ID == stateID && st.PageID == pageID {
			return st, nil
		}
	}
	return workflow.State{}, shared.ErrNotFound
}

func (s *stubWorkflows) TaskStates(ctx context.Context, stateID int64) ([]workflow.TaskState, error) {
	return s.tasks[stateID], nil
}

type unscheduleCall struct {
	pageID, revisionID, userID int64
}

type stubRevisions struct {
	revisions   map[int64]revisions.Revision
	unscheduled []unscheduleCall
	err         error
}

func (s *stubRevisions) Get(ctx context.Context, pageID, revisionID int64) (revisions.Revision, error) {
	rev, ok := s.revisions[revisionID]
	if !ok || rev.PageID != pageID {
		return revisions.Revision{}, shared.ErrNotFound
	}
	return rev, nil
}

func (s *stubRevisions) Unschedule(ctx context.Context, pageID, revisionID, userID int64) error {
	if s.err != nil {
		return s.err
	}
	s.unscheduled = append(s.unscheduled, unscheduleCall{pageID, revisionID, userID})
	return nil
}

type stubGrants map[int64][]rbac.PagePermission

func (s stubGrants) PagePermissions(ctx context.Context, userID int64) ([]rbac.PagePermission, error) {
	return s[userID], nil
}

const (
	rootPath  = "0001"
	homePath  = "00010001"
	aboutPath = "000100010001"
	newsPath  = "000100010002"
)

type testEnv struct {
	pages     *stubPages
	history   *memoryHistory
	users     *stubUsers
	workflows *stubWorkflows
	revisions *stubRevisions
	grants    stubGrants
	handler   *Handler
	router    http.Handler
}

func int64Ptr(v int64) *int64 { return &v }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	goLive := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	env := &testEnv{
		pages: &stubPages{pages: map[int64]pages.Page{
			1: {ID: 1, Path: rootPath, Depth: 1, Title: "Root"},
			2: {ID: 2, Path: homePath, Depth: 2, Title: "Home"},
			3: {ID: 3, Path: aboutPath, Depth: 3, Title: "About", DraftTitle: "About Us", LiveRevisionID: int64Ptr(10), LatestRevisionID: int64Ptr(11)},
			4: {ID: 4, Path: newsPath, Depth: 3, Title: "News"},
		}},
		history: &memoryHistory{entries: []history.Entry{
			{ID: 1, PageID: 3, Action: "wagtail.edit", RevisionID: int64Ptr(11), Timestamp: time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC), RevisionGoLiveAt: &goLive, RevisionIsLatest: true},
			{ID: 2, PageID: 3, Action: "wagtail.comments.create", Timestamp: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), Data: map[string]any{"comment": "Looks good"}},
			{ID: 3, PageID: 3, Action: "wagtail.publish", RevisionID: int64Ptr(10), Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), UserName: "Ada Admin", RevisionIsLive: true},
			{ID: 4, PageID: 3, Action: "wagtail.workflow.start", Timestamp: time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC), Data: map[string]any{"workflow_state_id": float64(7)}},
		}},
		users: &stubUsers{},
		workflows: &stubWorkflows{
			states: []workflow.State{
				{ID: 7, PageID: 3, WorkflowName: "Moderators approval", Status: workflow.StatusInProgress, CreatedAt: time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC)},
				{ID: 8, PageID: 4, WorkflowName: "News review", Status: workflow.StatusApproved},
			},
			tasks: map[int64][]workflow.TaskState{
				7: {{ID: 70, WorkflowStateID: 7, TaskName: "Moderator review", Status: workflow.StatusInProgress}},
			},
		},
		revisions: &stubRevisions{revisions: map[int64]revisions.Revision{
			10: {ID: 10, PageID: 3, Content: revisions.Content{Title: "About", Body: "We plant trees.\n"}},
			11: {ID: 11, PageID: 3, Content: revisions.Content{Title: "About Us", Body: "We plant forests.\n"}, ApprovedGoLiveAt: &goLive},
		}},
		grants: stubGrants{},
	}

	templates, err := view.NewEngine()
	require.NoError(t, err)
	routes := httpx.NewRoutes()
	RegisterNames(routes, "/admin")
	env.handler = NewHandler(Params{
		Pages:     env.pages,
		History:   env.history,
		Users:     env.users,
		Workflows: env.workflows,
		Timeline:  env.history,
		Revisions: env.revisions,
		Policy:    rbac.NewPagePolicy(env.grants),
		Templates: templates,
		Routes:    routes,
	})
	r := chi.NewRouter()
	r.Route("/admin", env.handler.MountRoutes)
	env.router = r
	return env
}

func (env *testEnv) grant(userID int64, path, permission string) {
	env.grants[userID] = append(env.grants[userID], rbac.PagePermission{PagePath: path, Permission: permission})
}

func (env *testEnv) do(method, path string, user rbac.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != nil {
		req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func superuser() *users.User {
	return &users.User{ID: 1, Email: "ada@example.com", IsActive: true, IsSuperuser: true}
}

func editor(id int64) *users.User {
	return &users.User{ID: id, Email: "editor@example.com", IsActive: true}
}

func breadcrumbNav(t *testing.T, body string) string {
	t.Helper()
	start := strings.Index(body, `<nav class="breadcrumbs"`)
	require.GreaterOrEqual(t, start, 0, "breadcrumbs missing")
	end := strings.Index(body[start:], "</nav>")
	require.Greater(t, end, 0)
	return body[start : start+end]
}
