package postgres

import (
	"context"
	"errors"
	"fmt"

	"vetline/internal/models"
	"vetline/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func (r *PostgresRepo) SaveUser(ctx context.Context, u models.User) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, first_name, last_name, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, u.Email, u.FirstName, u.LastName, u.Phone, u.PassHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT user_id, email, first_name, last_name, phone, password_hash, is_admin, email_verified
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `
		SELECT user_id, email, first_name, last_name, phone, password_hash, is_admin, email_verified
		FROM users
		WHERE user_id = $1;
	`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.PassHash,
		&u.IsAdmin,
		&u.EmailVerified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

func (r *PostgresRepo) UpdateUser(ctx context.Context, u models.User) error {
	const op = "storage.postgres.UpdateUser"

	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, phone = $4,
		    password_hash = $5, email_verified = $6
		WHERE user_id = $7;
	`

	_, err := r.db.Exec(ctx, query,
		u.Email, u.FirstName, u.LastName, u.Phone, u.PassHash, u.EmailVerified, u.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return storage.ErrUserExists
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) SetEmailVerified(ctx context.Context, userID int64) error {
	query := `UPDATE users SET email_verified = TRUE WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)

	return err
}

func (r *PostgresRepo) Users(ctx context.Context) ([]models.User, error) {
	const op = "storage.postgres.Users"

	query := `
		SELECT user_id, email, first_name, last_name, phone, password_hash, is_admin, email_verified
		FROM users
		ORDER BY first_name, last_name;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.Phone, &u.PassHash, &u.IsAdmin, &u.EmailVerified,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// DeleteUser removes the row; owned animals, appointments and reviews go
// with it through the schema's ON DELETE CASCADE actions.
func (r *PostgresRepo) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteUser"

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}
