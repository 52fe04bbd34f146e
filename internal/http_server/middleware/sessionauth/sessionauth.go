// Package sessionauth gates protected routes on the server-side session.
package sessionauth

import (
	"context"
	"net/http"
	"net/url"

	resp "vetline/internal/lib/api/response"
	"vetline/internal/session"

	"github.com/go-chi/render"
)

type ctxKey struct{}

// FromContext returns the session placed by RequireUser/RequireAdmin.
func FromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ctxKey{}).(*session.Session)
	return sess
}

// RequireUser rejects anonymous requests with 401 and a login redirect hint
// carrying the originally requested path as the return destination.
func RequireUser(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sm.Get(r)
			if sess == nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, loginRedirect(r.URL.RequestURI()))

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// RequireAdmin additionally denies authenticated non-admin sessions.
func RequireAdmin(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sm.Get(r)
			if sess == nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, loginRedirect(r.URL.RequestURI()))

				return
			}

			if !sess.IsAdmin() {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("access denied"))

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

type redirectResponse struct {
	resp.Response
	RedirectTo string `json:"redirect_to"`
}

func loginRedirect(target string) redirectResponse {
	return redirectResponse{
		Response:   resp.Error("login required"),
		RedirectTo: "/auth/login?return_url=" + url.QueryEscape(target),
	}
}
