package postgres

import (
	"context"
	"errors"
	"fmt"

	"vetline/internal/models"
	"vetline/internal/storage"

	"github.com/jackc/pgx/v5"
)

func (r *PostgresRepo) SaveProduct(ctx context.Context, p models.Product) (int64, error) {
	const op = "storage.postgres.SaveProduct"

	query := `
		INSERT INTO products (name, description, category, animal_type, brand, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING product_id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query,
		p.Name, p.Description, p.Category, p.AnimalType, p.Brand, p.Stock, p.ImageURL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) ProductByID(ctx context.Context, id int64) (models.Product, error) {
	query := `
		SELECT product_id, name, description, category, animal_type, brand, stock, image_url
		FROM products
		WHERE product_id = $1;
	`

	var p models.Product

	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.AnimalType, &p.Brand, &p.Stock, &p.ImageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, storage.ErrNotFound
		}

		return models.Product{}, err
	}

	return p, nil
}

func (r *PostgresRepo) Products(ctx context.Context) ([]models.Product, error) {
	const op = "storage.postgres.Products"

	query := `
		SELECT product_id, name, description, category, animal_type, brand, stock, image_url
		FROM products
		ORDER BY name;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Category, &p.AnimalType, &p.Brand, &p.Stock, &p.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *PostgresRepo) UpdateProduct(ctx context.Context, p models.Product) error {
	const op = "storage.postgres.UpdateProduct"

	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, animal_type = $4, brand = $5, stock = $6
		WHERE product_id = $7;
	`

	_, err := r.db.Exec(ctx, query,
		p.Name, p.Description, p.Category, p.AnimalType, p.Brand, p.Stock, p.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	const op = "storage.postgres.UpdateProductStock"

	_, err := r.db.Exec(ctx, `UPDATE products SET stock = $1 WHERE product_id = $2`, stock, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteProduct(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteProduct"

	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (r *PostgresRepo) Services(ctx context.Context) ([]models.Service, error) {
	const op = "storage.postgres.Services"

	query := `
		SELECT service_id, title, short_description, details
		FROM services
		ORDER BY service_id;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.Title, &s.ShortDescription, &s.Details); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		services = append(services, s)
	}

	return services, rows.Err()
}
