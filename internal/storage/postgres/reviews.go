package postgres

import (
	"context"
	"fmt"

	"vetline/internal/models"
)

func (r *PostgresRepo) SaveReview(ctx context.Context, rev models.Review) (int64, error) {
	const op = "storage.postgres.SaveReview"

	query := `
		INSERT INTO user_reviews (user_id, message, review_date)
		VALUES ($1, $2, $3)
		RETURNING review_id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, rev.UserID, rev.Message, rev.PostedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Reviews(ctx context.Context) ([]models.Review, error) {
	const op = "storage.postgres.Reviews"

	query := `
		SELECT rv.review_id, rv.user_id, u.first_name || ' ' || u.last_name, rv.message, rv.review_date
		FROM user_reviews rv
		JOIN users u ON u.user_id = rv.user_id
		ORDER BY rv.review_date DESC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.Author, &rev.Message, &rev.PostedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reviews = append(reviews, rev)
	}

	return reviews, rows.Err()
}

func (r *PostgresRepo) Stats(ctx context.Context) (models.Stats, error) {
	const op = "storage.postgres.Stats"

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM animals),
			(SELECT COUNT(*) FROM appointments),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM appointments WHERE appointment_datetime::date = CURRENT_DATE),
			(SELECT COUNT(*) FROM appointments WHERE appointment_datetime > NOW()),
			(SELECT COUNT(*) FROM products WHERE stock < 10);
	`

	var s models.Stats

	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalUsers,
		&s.TotalAnimals,
		&s.TotalAppointments,
		&s.TotalProducts,
		&s.TodayAppointments,
		&s.PendingAppointments,
		&s.LowStockProducts,
	)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}
