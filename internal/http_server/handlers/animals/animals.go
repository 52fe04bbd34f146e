package animals

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"vetline/internal/clinic"
	"vetline/internal/http_server/middleware/sessionauth"
	resp "vetline/internal/lib/api/response"
	sl "vetline/internal/lib/logger"
	"vetline/internal/models"
	"vetline/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Animal struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Breed     string     `json:"breed,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

type ListResponse struct {
	resp.Response
	Animals []Animal `json:"animals"`
}

func List(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.animals.List"

		sess := sessionauth.FromContext(r.Context())

		animals, err := clinicService.MyAnimals(r.Context(), sess.UserID)
		if err != nil {
			log.Error("failed to list animals", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]Animal, 0, len(animals))
		for _, a := range animals {
			out = append(out, fromModel(a))
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Animals: out})
	}
}

type CreateRequest struct {
	Name      string     `json:"name" validate:"required"`
	Type      string     `json:"type" validate:"required"`
	Breed     string     `json:"breed"`
	Gender    string     `json:"gender"`
	BirthDate *time.Time `json:"birth_date"`
}

type CreateResponse struct {
	resp.Response
	AnimalID int64 `json:"animal_id"`
}

func Create(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.animals.Create"

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

		id, err := clinicService.AddAnimal(r.Context(), models.Animal{
			OwnerID:   sess.UserID,
			Name:      req.Name,
			Type:      req.Type,
			Breed:     req.Breed,
			Gender:    req.Gender,
			BirthDate: req.BirthDate,
		})
		if err != nil {
			log.Error("failed to add animal", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, CreateResponse{Response: resp.OK(), AnimalID: id})
	}
}

func Update(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.animals.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		id, err := idParam(r)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid id"))

			return
		}

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

		err = clinicService.UpdateAnimal(r.Context(), sess.UserID, models.Animal{
			ID:        id,
			Name:      req.Name,
			Type:      req.Type,
			Breed:     req.Breed,
			Gender:    req.Gender,
			BirthDate: req.BirthDate,
		})
		if err != nil {
			writeClinicError(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

func Delete(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.animals.Delete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		id, err := idParam(r)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid id"))

			return
		}

		if err := clinicService.RemoveAnimal(r.Context(), sess.UserID, id); err != nil {
			if errors.Is(err, storage.ErrAnimalInUse) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("animal has appointments and cannot be deleted"))

				return
			}

			writeClinicError(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

func fromModel(a models.Animal) Animal {
	return Animal{
		ID:        a.ID,
		Name:      a.Name,
		Type:      a.Type,
		Breed:     a.Breed,
		Gender:    a.Gender,
		BirthDate: a.BirthDate,
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeClinicError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("not found"))
	case errors.Is(err, clinic.ErrNotOwner):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, resp.Error("access denied"))
	default:
		log.Error("clinic operation failed", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("internal error"))
	}
}
