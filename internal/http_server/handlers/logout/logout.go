package logout

import (
	"log/slog"
	"net/http"

	resp "vetline/internal/lib/api/response"
	"vetline/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

// New destroys the caller's session unconditionally. Logging out twice is
// fine.
func New(log *slog.Logger, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessions.Destroy(w, r)

		log.Info("user logged out")

		render.JSON(w, r, resp.OK())
	}
}
