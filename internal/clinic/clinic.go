// Package clinic is the record layer behind the session gate: pets,
// appointments, reviews, the product catalog and the admin back-office.
// No scheduling logic lives here; appointments are plain records.
package clinic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "vetline/internal/lib/logger"
	"vetline/internal/models"
	"vetline/internal/storage"
)

var (
	ErrNotOwner         = errors.New("record belongs to another user")
	ErrAdminUndeletable = errors.New("admin accounts cannot be deleted")
	ErrSelfDelete       = errors.New("cannot delete own account")
)

type Clinic struct {
	log  *slog.Logger
	repo Repository
}

type Repository interface {
	AnimalsByOwner(ctx context.Context, ownerID int64) ([]models.Animal, error)
	AnimalByID(ctx context.Context, id int64) (models.Animal, error)
	SaveAnimal(ctx context.Context, a models.Animal) (int64, error)
	UpdateAnimal(ctx context.Context, a models.Animal) error
	DeleteAnimal(ctx context.Context, id int64) error

	AppointmentsByUser(ctx context.Context, userID int64) ([]models.Appointment, error)
	AppointmentByID(ctx context.Context, id int64) (models.Appointment, error)
	SaveAppointment(ctx context.Context, ap models.Appointment) (int64, error)
	UpdateAppointment(ctx context.Context, ap models.Appointment) error
	DeleteAppointment(ctx context.Context, id int64) error

	Reviews(ctx context.Context) ([]models.Review, error)
	SaveReview(ctx context.Context, r models.Review) (int64, error)

	Products(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id int64) (models.Product, error)
	SaveProduct(ctx context.Context, p models.Product) (int64, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	UpdateProductStock(ctx context.Context, id int64, stock int) error
	DeleteProduct(ctx context.Context, id int64) error

	Services(ctx context.Context) ([]models.Service, error)

	Users(ctx context.Context) ([]models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	Stats(ctx context.Context) (models.Stats, error)

	AllAnimals(ctx context.Context) ([]models.Animal, error)
	AllAppointments(ctx context.Context) ([]models.Appointment, error)
}

func New(log *slog.Logger, repo Repository) *Clinic {
	return &Clinic{log: log, repo: repo}
}

func (c *Clinic) MyAnimals(ctx context.Context, ownerID int64) ([]models.Animal, error) {
	return c.repo.AnimalsByOwner(ctx, ownerID)
}

func (c *Clinic) AddAnimal(ctx context.Context, a models.Animal) (int64, error) {
	const op = "clinic.AddAnimal"

	id, err := c.repo.SaveAnimal(ctx, a)
	if err != nil {
		c.log.Error("failed to save animal", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (c *Clinic) UpdateAnimal(ctx context.Context, ownerID int64, a models.Animal) error {
	const op = "clinic.UpdateAnimal"

	stored, err := c.repo.AnimalByID(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if stored.OwnerID != ownerID {
		return ErrNotOwner
	}

	a.OwnerID = stored.OwnerID
	if err := c.repo.UpdateAnimal(ctx, a); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RemoveAnimal deletes an owned animal. The database refuses the delete when
// an appointment still references the animal; that surfaces as
// storage.ErrAnimalInUse.
func (c *Clinic) RemoveAnimal(ctx context.Context, ownerID, animalID int64) error {
	const op = "clinic.RemoveAnimal"

	stored, err := c.repo.AnimalByID(ctx, animalID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if stored.OwnerID != ownerID {
		return ErrNotOwner
	}

	if err := c.repo.DeleteAnimal(ctx, animalID); err != nil {
		if errors.Is(err, storage.ErrAnimalInUse) {
			return storage.ErrAnimalInUse
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Clinic) MyAppointments(ctx context.Context, userID int64) ([]models.Appointment, error) {
	return c.repo.AppointmentsByUser(ctx, userID)
}

// BookAppointment records a visit request. The animal must belong to the
// booking user; there is no slot-conflict check.
func (c *Clinic) BookAppointment(ctx context.Context, ap models.Appointment) (int64, error) {
	const op = "clinic.BookAppointment"

	animal, err := c.repo.AnimalByID(ctx, ap.AnimalID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if animal.OwnerID != ap.UserID {
		return 0, ErrNotOwner
	}

	id, err := c.repo.SaveAppointment(ctx, ap)
	if err != nil {
		c.log.Error("failed to save appointment", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (c *Clinic) UpdateAppointment(ctx context.Context, userID int64, ap models.Appointment) error {
	const op = "clinic.UpdateAppointment"

	stored, err := c.repo.AppointmentByID(ctx, ap.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if stored.UserID != userID {
		return ErrNotOwner
	}

	ap.UserID = stored.UserID
	if err := c.repo.UpdateAppointment(ctx, ap); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Clinic) CancelAppointment(ctx context.Context, userID, appointmentID int64) error {
	const op = "clinic.CancelAppointment"

	stored, err := c.repo.AppointmentByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if stored.UserID != userID {
		return ErrNotOwner
	}

	if err := c.repo.DeleteAppointment(ctx, appointmentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Clinic) Reviews(ctx context.Context) ([]models.Review, error) {
	return c.repo.Reviews(ctx)
}

func (c *Clinic) AddReview(ctx context.Context, r models.Review) (int64, error) {
	const op = "clinic.AddReview"

	id, err := c.repo.SaveReview(ctx, r)
	if err != nil {
		c.log.Error("failed to save review", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (c *Clinic) Products(ctx context.Context) ([]models.Product, error) {
	return c.repo.Products(ctx)
}

func (c *Clinic) Services(ctx context.Context) ([]models.Service, error) {
	return c.repo.Services(ctx)
}

// --- admin back-office ---

func (c *Clinic) Stats(ctx context.Context) (models.Stats, error) {
	return c.repo.Stats(ctx)
}

func (c *Clinic) AllUsers(ctx context.Context) ([]models.User, error) {
	return c.repo.Users(ctx)
}

func (c *Clinic) AllAnimals(ctx context.Context) ([]models.Animal, error) {
	return c.repo.AllAnimals(ctx)
}

func (c *Clinic) AllAppointments(ctx context.Context) ([]models.Appointment, error) {
	return c.repo.AllAppointments(ctx)
}

// DeleteUser removes an account and, through the schema's cascades, its
// animals, appointments and reviews. Admin accounts are never deletable
// here, and an admin cannot remove their own account.
func (c *Clinic) DeleteUser(ctx context.Context, actorID, userID int64) error {
	const op = "clinic.DeleteUser"

	log := c.log.With(slog.String("op", op), slog.Int64("uid", userID))

	user, err := c.repo.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.IsAdmin {
		return ErrAdminUndeletable
	}
	if user.ID == actorID {
		return ErrSelfDelete
	}

	if err := c.repo.DeleteUser(ctx, userID); err != nil {
		log.Error("failed to delete user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user deleted")

	return nil
}

func (c *Clinic) AddProduct(ctx context.Context, p models.Product) (int64, error) {
	const op = "clinic.AddProduct"

	id, err := c.repo.SaveProduct(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (c *Clinic) UpdateProduct(ctx context.Context, p models.Product) error {
	const op = "clinic.UpdateProduct"

	if _, err := c.repo.ProductByID(ctx, p.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.repo.UpdateProduct(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Clinic) UpdateStock(ctx context.Context, productID int64, stock int) error {
	const op = "clinic.UpdateStock"

	if _, err := c.repo.ProductByID(ctx, productID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.repo.UpdateProductStock(ctx, productID, stock); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Clinic) RemoveProduct(ctx context.Context, productID int64) error {
	const op = "clinic.RemoveProduct"

	if _, err := c.repo.ProductByID(ctx, productID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.repo.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
