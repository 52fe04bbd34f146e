package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetline/internal/models"
	"vetline/internal/storage"
)

func animalColumnNames() []string {
	return []string{"animal_id", "user_id", "name", "type", "breed", "gender", "birth_date"}
}

func TestSaveAnimal(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	born := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO animals`).
		WithArgs(int64(1), "Rex", "dog", "labrador", "male", &born).
		WillReturnRows(pgxmock.NewRows([]string{"animal_id"}).AddRow(int64(3)))

	id, err := repo.SaveAnimal(context.Background(), models.Animal{
		OwnerID:   1,
		Name:      "Rex",
		Type:      "dog",
		Breed:     "labrador",
		Gender:    "male",
		BirthDate: &born,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnimalByID_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM animals`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.AnimalByID(context.Background(), 9)
	require.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnimalsByOwner(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM animals WHERE user_id`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(animalColumnNames()).
			AddRow(int64(3), int64(1), "Murka", "cat", "", "female", (*time.Time)(nil)).
			AddRow(int64(4), int64(1), "Rex", "dog", "labrador", "male", (*time.Time)(nil)))

	animals, err := repo.AnimalsByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, animals, 2)
	assert.Equal(t, "Murka", animals[0].Name)
	assert.Nil(t, animals[0].BirthDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAnimal_InUse(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM animals`).
		WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	err := repo.DeleteAnimal(context.Background(), 3)
	require.ErrorIs(t, err, storage.ErrAnimalInUse)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAnimal_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM animals`).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteAnimal(context.Background(), 99)
	require.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
