package resendEmail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vetline/internal/auth"
	resp "vetline/internal/lib/api/response"
	sl "vetline/internal/lib/logger"
	"vetline/internal/lib/verification"
	"vetline/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// New re-issues a verification link for an unconfirmed account. Earlier
// links stay valid until their own expiry; nothing is revoked.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	mailer verification.Mailer,
	verificationTokenTTL time.Duration,
	verificationTokenSecret string,
	baseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resendVerificationEmail.New"

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

		userID, isVerified, err := authService.CheckUserVerification(ctx, req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Info("user not found")

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("user not found"))

				return
			}

			log.Error("failed to check user verification", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		if !isVerified {
			err = verification.SendVerificationEmail(
				ctx, log, mailer,
				verificationTokenTTL, verificationTokenSecret,
				userID, baseURL, req.Email,
			)
			if err != nil {
				log.Error("failed to send verification email", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("failed to send email, try again later"))

				return
			}
		}

		log.Info("verification email resent", slog.Int64("uid", userID))

		render.JSON(w, r, resp.OK())
	}
}
