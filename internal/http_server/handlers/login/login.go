package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vetline/internal/auth"
	resp "vetline/internal/lib/api/response"
	sl "vetline/internal/lib/logger"
	"vetline/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
	Pass  string `json:"password" validate:"required"`
}

type Response struct {
	resp.Response
	RedirectTo string `json:"redirect_to"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	sessions *session.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := authService.Login(ctx, req.Email, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("invalid email or password"))

				return
			}
			if errors.Is(err, auth.ErrEmailNotVerified) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, notVerifiedResponse())

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		if _, err := sessions.Create(w, user); err != nil {
			log.Error("failed to create session", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		// Admins always land in the back-office; everyone else returns to
		// where they were headed, if that is a same-origin path.
		redirectTo := "/admin"
		if !user.IsAdmin {
			redirectTo = sanitizeReturnURL(r.URL.Query().Get("return_url"))
		}

		log.Info("user logged in")

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			RedirectTo: redirectTo,
		})
	}
}

// sanitizeReturnURL keeps only same-origin paths; anything absolute or
// protocol-relative falls back to home. Open-redirect guard.
func sanitizeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}

	return raw
}

type notVerified struct {
	resp.Response
	ResendAvailable bool `json:"resend_available"`
}

func notVerifiedResponse() notVerified {
	return notVerified{
		Response:        resp.Error("email not verified"),
		ResendAvailable: true,
	}
}
