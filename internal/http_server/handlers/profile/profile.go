package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vetline/internal/auth"
	"vetline/internal/http_server/middleware/sessionauth"
	resp "vetline/internal/lib/api/response"
	sl "vetline/internal/lib/logger"
	"vetline/internal/lib/verification"
	"vetline/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	resp.Response
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
}

func Get(log *slog.Logger, authService *auth.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.Get"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		user, err := authService.Profile(r.Context(), sess.UserID)
		if err != nil {
			log.Error("failed to load profile", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:      resp.OK(),
			Email:         user.Email,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Phone:         user.Phone,
			EmailVerified: user.EmailVerified,
			IsAdmin:       user.IsAdmin,
		})
	}
}

type UpdateRequest struct {
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Phone           string `json:"phone"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateResponse struct {
	resp.Response
	EmailChanged         bool `json:"email_changed"`
	VerificationRequired bool `json:"verification_required"`
}

// Update edits the account. Changing the email resets the verified flag and
// mails a fresh link to the new address; changing the password requires the
// current one.
func Update(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	sessions *session.Manager,
	mailer verification.Mailer,
	verificationTokenTTL time.Duration,
	verificationTokenSecret string,
	baseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		var req UpdateRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, emailChanged, err := authService.UpdateProfile(ctx, sess.UserID, auth.ProfileUpdate{
			Email:           req.Email,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Phone:           req.Phone,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("email already registered"))

				return
			}
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("current password is wrong"))

				return
			}

			log.Error("failed to update profile", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		sessions.Update(r, user)

		if emailChanged {
			if err := verification.SendVerificationEmail(
				ctx, log, mailer,
				verificationTokenTTL, verificationTokenSecret,
				user.ID, baseURL, user.Email,
			); err != nil {
				log.Error("failed to send verification email", sl.Err(err))
			}
		}

		render.JSON(w, r, UpdateResponse{
			Response:             resp.OK(),
			EmailChanged:         emailChanged,
			VerificationRequired: emailChanged,
		})
	}
}
