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

const animalColumns = `animal_id, user_id, name, type, breed, gender, birth_date`

func (r *PostgresRepo) SaveAnimal(ctx context.Context, a models.Animal) (int64, error) {
	const op = "storage.postgres.SaveAnimal"

	query := `
		INSERT INTO animals (user_id, name, type, breed, gender, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING animal_id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, a.OwnerID, a.Name, a.Type, a.Breed, a.Gender, a.BirthDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) AnimalByID(ctx context.Context, id int64) (models.Animal, error) {
	query := `SELECT ` + animalColumns + ` FROM animals WHERE animal_id = $1;`

	var a models.Animal

	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Breed, &a.Gender, &a.BirthDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Animal{}, storage.ErrNotFound
		}

		return models.Animal{}, err
	}

	return a, nil
}

func (r *PostgresRepo) AnimalsByOwner(ctx context.Context, ownerID int64) ([]models.Animal, error) {
	query := `SELECT ` + animalColumns + ` FROM animals WHERE user_id = $1 ORDER BY name;`

	return r.queryAnimals(ctx, query, ownerID)
}

func (r *PostgresRepo) AllAnimals(ctx context.Context) ([]models.Animal, error) {
	query := `SELECT ` + animalColumns + ` FROM animals ORDER BY name;`

	return r.queryAnimals(ctx, query)
}

func (r *PostgresRepo) queryAnimals(ctx context.Context, query string, args ...any) ([]models.Animal, error) {
	const op = "storage.postgres.queryAnimals"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var animals []models.Animal
	for rows.Next() {
		var a models.Animal
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Breed, &a.Gender, &a.BirthDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		animals = append(animals, a)
	}

	return animals, rows.Err()
}

func (r *PostgresRepo) UpdateAnimal(ctx context.Context, a models.Animal) error {
	const op = "storage.postgres.UpdateAnimal"

	query := `
		UPDATE animals
		SET name = $1, type = $2, breed = $3, gender = $4, birth_date = $5
		WHERE animal_id = $6;
	`

	_, err := r.db.Exec(ctx, query, a.Name, a.Type, a.Breed, a.Gender, a.BirthDate, a.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteAnimal fails with storage.ErrAnimalInUse while an appointment still
// references the animal (the FK is ON DELETE RESTRICT).
func (r *PostgresRepo) DeleteAnimal(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteAnimal"

	tag, err := r.db.Exec(ctx, `DELETE FROM animals WHERE animal_id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return storage.ErrAnimalInUse
		}

		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}
