package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/arbor-cms/arbor/internal/rbac"
	"github.com/arbor-cms/arbor/internal/shared"
)

// RequireUser loads the signed-in user into the request context. Anonymous
// requests are redirected to the login page with the original path as next.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		user, err := h.service.CurrentUser(r.Context(), sess)
		if err != nil {
			if !errors.Is(err, shared.ErrSessionMissing) {
				h.logger.Error("load current user", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		ctx := rbac.ContextWithPrincipal(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
