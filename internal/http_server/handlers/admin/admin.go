// Package admin is the back-office: dashboard stats, user management and
// the product catalog. Every route here sits behind RequireAdmin.
package admin

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

type StatsResponse struct {
	resp.Response
	Stats models.Stats `json:"stats"`
}

func Stats(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Stats"

		stats, err := clinicService.Stats(r.Context())
		if err != nil {
			log.Error("failed to load stats", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, StatsResponse{Response: resp.OK(), Stats: stats})
	}
}

type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
	EmailVerified bool   `json:"email_verified"`
}

type UsersResponse struct {
	resp.Response
	Users []User `json:"users"`
}

func Users(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Users"

		users, err := clinicService.AllUsers(r.Context())
		if err != nil {
			log.Error("failed to list users", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]User, 0, len(users))
		for _, u := range users {
			// the password hash never leaves the storage layer boundary
			out = append(out, User{
				ID:            u.ID,
				Email:         u.Email,
				FirstName:     u.FirstName,
				LastName:      u.LastName,
				Phone:         u.Phone,
				IsAdmin:       u.IsAdmin,
				EmailVerified: u.EmailVerified,
			})
		}

		render.JSON(w, r, UsersResponse{Response: resp.OK(), Users: out})
	}
}

func DeleteUser(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.DeleteUser"

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

		if err := clinicService.DeleteUser(r.Context(), sess.UserID, id); err != nil {
			switch {
			case errors.Is(err, storage.ErrUserNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("user not found"))
			case errors.Is(err, clinic.ErrAdminUndeletable):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("admin accounts cannot be deleted"))
			case errors.Is(err, clinic.ErrSelfDelete):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("cannot delete your own account"))
			default:
				log.Error("failed to delete user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("internal error"))
			}

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

type Animal struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Breed   string `json:"breed,omitempty"`
}

type AnimalsResponse struct {
	resp.Response
	Animals []Animal `json:"animals"`
}

func Animals(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Animals"

		list, err := clinicService.AllAnimals(r.Context())
		if err != nil {
			log.Error("failed to list animals", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]Animal, 0, len(list))
		for _, a := range list {
			out = append(out, Animal{
				ID:      a.ID,
				OwnerID: a.OwnerID,
				Name:    a.Name,
				Type:    a.Type,
				Breed:   a.Breed,
			})
		}

		render.JSON(w, r, AnimalsResponse{Response: resp.OK(), Animals: out})
	}
}

type Appointment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	AnimalID  int64     `json:"animal_id"`
	ServiceID *int64    `json:"service_id,omitempty"`
	At        time.Time `json:"at"`
	Complaint string    `json:"complaint,omitempty"`
}

type AppointmentsResponse struct {
	resp.Response
	Appointments []Appointment `json:"appointments"`
}

func Appointments(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Appointments"

		list, err := clinicService.AllAppointments(r.Context())
		if err != nil {
			log.Error("failed to list appointments", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]Appointment, 0, len(list))
		for _, ap := range list {
			out = append(out, Appointment{
				ID:        ap.ID,
				UserID:    ap.UserID,
				AnimalID:  ap.AnimalID,
				ServiceID: ap.ServiceID,
				At:        ap.At,
				Complaint: ap.Complaint,
			})
		}

		render.JSON(w, r, AppointmentsResponse{Response: resp.OK(), Appointments: out})
	}
}

type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AnimalType  string `json:"animal_type"`
	Brand       string `json:"brand"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
}

type ProductResponse struct {
	resp.Response
	ProductID int64 `json:"product_id"`
}

func CreateProduct(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.CreateProduct"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ProductRequest
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

		id, err := clinicService.AddProduct(r.Context(), models.Product{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			AnimalType:  req.AnimalType,
			Brand:       req.Brand,
			Stock:       req.Stock,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			log.Error("failed to create product", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, ProductResponse{Response: resp.OK(), ProductID: id})
	}
}

func UpdateProduct(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateProduct"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid id"))

			return
		}

		var req ProductRequest
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

		err = clinicService.UpdateProduct(r.Context(), models.Product{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			AnimalType:  req.AnimalType,
			Brand:       req.Brand,
			Stock:       req.Stock,
		})
		if err != nil {
			writeProductError(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

type StockRequest struct {
	Stock int `json:"stock" validate:"min=0"`
}

func UpdateStock(log *slog.Logger, validate *validator.Validate, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateStock"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid id"))

			return
		}

		var req StockRequest
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

		if err := clinicService.UpdateStock(r.Context(), id, req.Stock); err != nil {
			writeProductError(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

func DeleteProduct(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.DeleteProduct"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid id"))

			return
		}

		if err := clinicService.RemoveProduct(r.Context(), id); err != nil {
			writeProductError(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

func writeProductError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("product not found"))

		return
	}

	log.Error("product operation failed", sl.Err(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, resp.Error("internal error"))
}
