package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-cms/arbor/internal/shared"
)

func newTestSessions(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "arbor_session", "secret", time.Hour, false)
}

func TestSessionsCommitBeforeFirstWrite(t *testing.T) {
	manager := newTestSessions(t)
	handler := sessions(manager, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shared.SessionFromContext(r.Context()).Set("seen", "yes")
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "arbor_session", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "yes", sess.Get("seen"))
}

func TestSessionsCommitWithoutBody(t *testing.T) {
	manager := newTestSessions(t)
	handler := sessions(manager, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestVerifyCSRF(t *testing.T) {
	manager := newTestSessions(t)
	csrf := shared.NewCSRFManager("csrf")

	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), seed)
	require.NoError(t, err)
	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	seedRec := httptest.NewRecorder()
	require.NoError(t, manager.Commit(context.Background(), seedRec, seed, sess))
	cookie := seedRec.Result().Cookies()[0]

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := sessions(manager, slog.Default())(verifyCSRF(csrf, slog.Default())(ok))

	cases := []struct {
		name   string
		method string
		form   url.Values
		header string
		want   int
	}{
		{name: "safe method", method: http.MethodGet, want: http.StatusNoContent},
		{name: "form token", method: http.MethodPost, form: url.Values{shared.CSRFFormField: {token}}, want: http.StatusNoContent},
		{name: "header token", method: http.MethodPost, header: token, want: http.StatusNoContent},
		{name: "missing token", method: http.MethodPost, want: http.StatusForbidden},
		{name: "wrong token", method: http.MethodPost, header: "forged", want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/admin/pages/2/revisions/7/unschedule/", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.header != "" {
				req.Header.Set(shared.CSRFHeader, tc.header)
			}
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := secureHeaders(&Config{AppEnv: "test"}, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
}
