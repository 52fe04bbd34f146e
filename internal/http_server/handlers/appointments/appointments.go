package appointments

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

type Appointment struct {
	ID        int64     `json:"id"`
	AnimalID  int64     `json:"animal_id"`
	ServiceID *int64    `json:"service_id,omitempty"`
	At        time.Time `json:"at"`
	Complaint string    `json:"complaint,omitempty"`
}

type ListResponse struct {
	resp.Response
	Appointments []Appointment `json:"appointments"`
}

func List(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.List"

		sess := sessionauth.FromContext(r.Context())

		appointments, err := clinicService.MyAppointments(r.Context(), sess.UserID)
		if err != nil {
			log.Error("failed to list appointments", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]Appointment, 0, len(appointments))
		for _, ap := range appointments {
			out = append(out, fromModel(ap))
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Appointments: out})
	}
}

type BookRequest struct {
	AnimalID  int64     `json:"animal_id" validate:"required"`
	ServiceID *int64    `json:"service_id"`
	At        time.Time `json:"at" validate:"required"`
	Complaint string    `json:"complaint"`
}

type BookResponse struct {
	resp.Response
	AppointmentID int64 `json:"appointment_id"`
}

func Book(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.Book"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		var req BookRequest
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

		id, err := clinicService.BookAppointment(r.Context(), models.Appointment{
			UserID:    sess.UserID,
			AnimalID:  req.AnimalID,
			ServiceID: req.ServiceID,
			At:        req.At,
			Complaint: req.Complaint,
		})
		if err != nil {
			writeClinicError(w, r, log, err)

			return
		}

		render.JSON(w, r, BookResponse{Response: resp.OK(), AppointmentID: id})
	}
}

func Update(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid id"))

			return
		}

		var req BookRequest
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

		err = clinicService.UpdateAppointment(r.Context(), sess.UserID, models.Appointment{
			ID:        id,
			AnimalID:  req.AnimalID,
			ServiceID: req.ServiceID,
			At:        req.At,
			Complaint: req.Complaint,
		})
		if err != nil {
			writeClinicError(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

func Cancel(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.Cancel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessionauth.FromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid id"))

			return
		}

		if err := clinicService.CancelAppointment(r.Context(), sess.UserID, id); err != nil {
			writeClinicError(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

func fromModel(ap models.Appointment) Appointment {
	return Appointment{
		ID:        ap.ID,
		AnimalID:  ap.AnimalID,
		ServiceID: ap.ServiceID,
		At:        ap.At,
		Complaint: ap.Complaint,
	}
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
