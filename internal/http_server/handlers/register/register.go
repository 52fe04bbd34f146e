package register

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

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
	Pass      string `json:"password" validate:"required,min=6"`
}

type Response struct {
	resp.Response
	UserID    int64 `json:"user_id"`
	EmailSent bool  `json:"email_sent"`
}

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
		const op = "handlers.register.New"

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

		userID, err := authService.RegisterNewUser(ctx, req.Email, req.FirstName, req.LastName, req.Phone, req.Pass)
		if err != nil {
			// "already registered" is deliberately informative here, unlike
			// the generic login failure.
			if errors.Is(err, auth.ErrUserExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("email already registered"))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		log.Info("user registered", slog.Int64("id", userID))

		// Delivery failure does not undo the registration; the account just
		// stays unconfirmed until the user asks for a resend.
		emailSent := true
		if err := verification.SendVerificationEmail(
			ctx, log, mailer,
			verificationTokenTTL, verificationTokenSecret,
			userID, baseURL, req.Email,
		); err != nil {
			log.Error("failed to send verification email", sl.Err(err))
			emailSent = false
		}

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			UserID:    userID,
			EmailSent: emailSent,
		})
	}
}
