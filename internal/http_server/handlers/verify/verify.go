package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vetline/internal/auth"
	resp "vetline/internal/lib/api/response"
	sl "vetline/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Message    string `json:"message,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// New completes a verification link. Requires no session: the endpoint is
// hit straight from the mailed URL.
func New(log *slog.Logger, authService *auth.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := r.URL.Query().Get("token")
		if token == "" {
			log.Warn("missing verification token")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("missing token"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		outcome, err := authService.CompleteVerification(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrLinkInvalid) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("verification link invalid or expired, request a new one"))

				return
			}
			if errors.Is(err, auth.ErrUserMismatch) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("user not found"))

				return
			}

			log.Error("failed to complete verification", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		if outcome == auth.AlreadyVerified {
			render.JSON(w, r, Response{
				Response:   resp.OK(),
				Message:    "email already verified",
				RedirectTo: "/auth/login",
			})

			return
		}

		log.Info("email verified")

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			Message:    "email verified, you can now log in",
			RedirectTo: "/auth/login",
		})
	}
}
