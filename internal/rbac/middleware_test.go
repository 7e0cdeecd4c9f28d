package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubReader struct {
	perms []string
}

func (s stubReader) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.perms, nil
}

func serveWith(m Middleware, p Principal, perms ...string) int {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	m.RequireAny(perms...)(next).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAny(t *testing.T) {
	m := Middleware{Service: stubReader{perms: []string{"admin.access"}}}

	assert.Equal(t, http.StatusForbidden, serveWith(m, nil, "admin.access"))
	assert.Equal(t, http.StatusNoContent, serveWith(m, testPrincipal{id: 2}, "ADMIN.access"))
	assert.Equal(t, http.StatusForbidden, serveWith(m, testPrincipal{id: 2}, "users.view"))
	assert.Equal(t, http.StatusNoContent, serveWith(m, testPrincipal{id: 1, superuser: true}, "users.view"))
	assert.Equal(t, http.StatusForbidden, serveWith(m, testPrincipal{id: 2, inactive: true}, "admin.access"))
}
