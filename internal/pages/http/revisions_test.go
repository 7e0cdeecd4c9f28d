package pageshttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-cms/arbor/internal/rbac"
	"github.com/arbor-cms/arbor/internal/revisions"
	"github.com/arbor-cms/arbor/internal/shared"
)

func TestRevisionView(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/admin/pages/3/revisions/10/view/", superuser())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "We plant trees.")

	rec = env.do(http.MethodGet, "/admin/pages/3/revisions/99/view/", superuser())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/admin/pages/3/revisions/10/view/", editor(9))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRevisionCompareWithLive(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/admin/pages/3/revisions/compare/live/11/", superuser())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<ins>")
	assert.Contains(t, body, "<del>")
	assert.Contains(t, body, "forests")

	rec = env.do(http.MethodGet, "/admin/pages/4/revisions/compare/live/11/", superuser())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRevisionUnschedule(t *testing.T) {
	env := newTestEnv(t)
	env.grant(6, homePath, shared.PagePermPublish)

	rec := env.do(http.MethodPost, "/admin/pages/3/revisions/11/unschedule/", editor(6))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/pages/3/history/", rec.Header().Get("Location"))
	require.Len(t, env.revisions.unscheduled, 1)
	assert.Equal(t, unscheduleCall{pageID: 3, revisionID: 11, userID: 6}, env.revisions.unscheduled[0])
	assert.Equal(t, []int64{3}, env.users.invalidated)
}

func TestRevisionUnscheduleRequiresPublish(t *testing.T) {
	env := newTestEnv(t)
	env.grant(5, homePath, shared.PagePermChange)

	rec := env.do(http.MethodPost, "/admin/pages/3/revisions/11/unschedule/", editor(5))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.revisions.unscheduled)
}

func TestRevisionUnscheduleFlashesWhenNotScheduled(t *testing.T) {
	env := newTestEnv(t)
	env.revisions.err = revisions.ErrNotScheduled

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodPost, "/admin/pages/3/revisions/10/unschedule/", nil)
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = rbac.ContextWithPrincipal(ctx, superuser())
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	committed := httptest.NewRecorder()
	require.NoError(t, sessions.Commit(ctx, committed, req, sess))

	reload := httptest.NewRequest(http.MethodGet, "/admin/pages/3/history/", nil)
	for _, c := range committed.Result().Cookies() {
		reload.AddCookie(c)
	}
	stored, err := sessions.Load(context.Background(), reload)
	require.NoError(t, err)
	flash := stored.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashWarning, flash.Kind)
	assert.Contains(t, flash.Message, "not scheduled")
}
