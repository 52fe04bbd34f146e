package postgres

import (
	"context"
	"errors"
	"fmt"

	"vetline/internal/models"
	"vetline/internal/storage"

	"github.com/jackc/pgx/v5"
)

const appointmentColumns = `appointment_id, user_id, animal_id, service_id, appointment_datetime, complaint`

func (r *PostgresRepo) SaveAppointment(ctx context.Context, ap models.Appointment) (int64, error) {
	const op = "storage.postgres.SaveAppointment"

	query := `
		INSERT INTO appointments (user_id, animal_id, service_id, appointment_datetime, complaint)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING appointment_id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, ap.UserID, ap.AnimalID, ap.ServiceID, ap.At, ap.Complaint).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) AppointmentByID(ctx context.Context, id int64) (models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE appointment_id = $1;`

	var ap models.Appointment

	err := r.db.QueryRow(ctx, query, id).Scan(
		&ap.ID, &ap.UserID, &ap.AnimalID, &ap.ServiceID, &ap.At, &ap.Complaint,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, storage.ErrNotFound
		}

		return models.Appointment{}, err
	}

	return ap, nil
}

func (r *PostgresRepo) AppointmentsByUser(ctx context.Context, userID int64) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id = $1 ORDER BY appointment_datetime;`

	return r.queryAppointments(ctx, query, userID)
}

func (r *PostgresRepo) AllAppointments(ctx context.Context) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY appointment_datetime;`

	return r.queryAppointments(ctx, query)
}

func (r *PostgresRepo) queryAppointments(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	const op = "storage.postgres.queryAppointments"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		var ap models.Appointment
		if err := rows.Scan(&ap.ID, &ap.UserID, &ap.AnimalID, &ap.ServiceID, &ap.At, &ap.Complaint); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		appointments = append(appointments, ap)
	}

	return appointments, rows.Err()
}

func (r *PostgresRepo) UpdateAppointment(ctx context.Context, ap models.Appointment) error {
	const op = "storage.postgres.UpdateAppointment"

	query := `
		UPDATE appointments
		SET animal_id = $1, service_id = $2, appointment_datetime = $3, complaint = $4
		WHERE appointment_id = $5;
	`

	_, err := r.db.Exec(ctx, query, ap.AnimalID, ap.ServiceID, ap.At, ap.Complaint, ap.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteAppointment(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteAppointment"

	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE appointment_id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}
