package reviews

import (
	"log/slog"
	"net/http"
	"time"

	"vetline/internal/clinic"
	"vetline/internal/http_server/middleware/sessionauth"
	resp "vetline/internal/lib/api/response"
	sl "vetline/internal/lib/logger"
	"vetline/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Review struct {
	ID       int64     `json:"id"`
	Author   string    `json:"author"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"posted_at"`
}

type ListResponse struct {
	resp.Response
	Reviews []Review `json:"reviews"`
}

// List is public: reviews show on the contact page.
func List(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reviews.List"

		reviews, err := clinicService.Reviews(r.Context())
		if err != nil {
			log.Error("failed to list reviews", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]Review, 0, len(reviews))
		for _, rev := range reviews {
			out = append(out, Review{
				ID:       rev.ID,
				Author:   rev.Author,
				Message:  rev.Message,
				PostedAt: rev.PostedAt,
			})
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Reviews: out})
	}
}

type CreateRequest struct {
	Message string `json:"message" validate:"required"`
}

func Create(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reviews.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		var req CreateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(err.(validator.ValidationErrors)))

			return
		}

		if _, err := clinicService.AddReview(r.Context(), models.Review{
			UserID:   sess.UserID,
			Message:  req.Message,
			PostedAt: time.Now().UTC(),
		}); err != nil {
			log.Error("failed to add review", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, resp.OK())
	}
}
