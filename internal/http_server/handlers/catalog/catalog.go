package catalog

import (
	"log/slog"
	"net/http"

	"vetline/internal/clinic"
	resp "vetline/internal/lib/api/response"
	sl "vetline/internal/lib/logger"
	"vetline/internal/models"

	"github.com/go-chi/render"
)

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	AnimalType  string `json:"animal_type,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url,omitempty"`
}

type ProductsResponse struct {
	resp.Response
	Products []Product `json:"products"`
}

func Products(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.Products"

		products, err := clinicService.Products(r.Context())
		if err != nil {
			log.Error("failed to list products", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]Product, 0, len(products))
		for _, p := range products {
			out = append(out, FromModel(p))
		}

		render.JSON(w, r, ProductsResponse{Response: resp.OK(), Products: out})
	}
}

type Service struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description,omitempty"`
	Details          string `json:"details,omitempty"`
}

type ServicesResponse struct {
	resp.Response
	Services []Service `json:"services"`
}

func Services(log *slog.Logger, clinicService *clinic.Clinic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.Services"

		services, err := clinicService.Services(r.Context())
		if err != nil {
			log.Error("failed to list services", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		out := make([]Service, 0, len(services))
		for _, s := range services {
			out = append(out, Service{
				ID:               s.ID,
				Title:            s.Title,
				ShortDescription: s.ShortDescription,
				Details:          s.Details,
			})
		}

		render.JSON(w, r, ServicesResponse{Response: resp.OK(), Services: out})
	}
}

func FromModel(p models.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		AnimalType:  p.AnimalType,
		Brand:       p.Brand,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}
