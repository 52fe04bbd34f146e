package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetline/internal/lib/verification"
	"vetline/internal/models"
	"vetline/internal/storage"
)

const testSecret = "unit-test-secret"

// fakeStore is an in-memory UserSaver + UserProvider.
type fakeStore struct {
	nextID int64
	users  map[int64]models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, users: map[int64]models.User{}}
}

func (s *fakeStore) SaveUser(_ context.Context, user models.User) (int64, error) {
	for _, u := range s.users {
		if u.Email == user.Email {
			return 0, storage.ErrUserExists
		}
	}

	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user

	return user.ID, nil
}

func (s *fakeStore) UpdateUser(_ context.Context, user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return storage.ErrUserExists
		}
	}

	s.users[user.ID] = user

	return nil
}

func (s *fakeStore) SetEmailVerified(_ context.Context, uid int64) error {
	u, ok := s.users[uid]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.EmailVerified = true
	s.users[uid] = u

	return nil
}

func (s *fakeStore) User(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *fakeStore) UserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func newTestAuth(t *testing.T) (*Auth, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	a := New(slog.New(slog.NewTextHandler(io.Discard, nil)), store, store, testSecret, time.Hour)

	return a, store
}

func TestRegisterLoginVerifyFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, _ := newTestAuth(t)

	id, err := a.RegisterNewUser(ctx, "owner@example.com", "Jane", "Doe", "+3711234567", "secret-pass")
	require.NoError(t, err)
	require.Positive(t, id)

	// login is closed until the address is verified
	_, err = a.Login(ctx, "owner@example.com", "secret-pass")
	require.ErrorIs(t, err, ErrEmailNotVerified)

	// a bad password on an unverified account still reads as bad credentials,
	// not as "unverified"
	_, err = a.Login(ctx, "owner@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := verification.NewToken(id, "owner@example.com", time.Hour, testSecret)
	require.NoError(t, err)

	outcome, err := a.CompleteVerification(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, Verified, outcome)

	user, err := a.Login(ctx, "owner@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.True(t, user.EmailVerified)
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuth(t)

	_, err := a.Login(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterNewUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, _ := newTestAuth(t)

	_, err := a.RegisterNewUser(ctx, "owner@example.com", "Jane", "Doe", "", "pass-1")
	require.NoError(t, err)

	_, err = a.RegisterNewUser(ctx, "owner@example.com", "John", "Doe", "", "pass-2")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestCompleteVerification_AlreadyVerified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, _ := newTestAuth(t)

	id, err := a.RegisterNewUser(ctx, "owner@example.com", "Jane", "Doe", "", "secret-pass")
	require.NoError(t, err)

	first, err := verification.NewToken(id, "owner@example.com", time.Hour, testSecret)
	require.NoError(t, err)
	second, err := verification.NewToken(id, "owner@example.com", time.Hour, testSecret)
	require.NoError(t, err)

	outcome, err := a.CompleteVerification(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, Verified, outcome)

	// every still-valid link is honored; the second lands on AlreadyVerified
	outcome, err = a.CompleteVerification(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, AlreadyVerified, outcome)
}

func TestCompleteVerification_InvalidToken(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuth(t)

	_, err := a.CompleteVerification(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrLinkInvalid)
}

func TestCompleteVerification_UserGone(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuth(t)

	token, err := verification.NewToken(99, "ghost@example.com", time.Hour, testSecret)
	require.NoError(t, err)

	_, err = a.CompleteVerification(context.Background(), token)
	require.ErrorIs(t, err, ErrUserMismatch)
}

func TestCompleteVerification_EmailChangedSinceIssue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, _ := newTestAuth(t)

	id, err := a.RegisterNewUser(ctx, "old@example.com", "Jane", "Doe", "", "secret-pass")
	require.NoError(t, err)

	token, err := verification.NewToken(id, "old@example.com", time.Hour, testSecret)
	require.NoError(t, err)

	_, _, err = a.UpdateProfile(ctx, id, ProfileUpdate{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "new@example.com",
	})
	require.NoError(t, err)

	// the link is bound to the old address and must not verify the new one
	_, err = a.CompleteVerification(ctx, token)
	require.ErrorIs(t, err, ErrUserMismatch)
}

func TestUpdateProfile_EmailChangeResetsVerified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, store := newTestAuth(t)

	id, err := a.RegisterNewUser(ctx, "old@example.com", "Jane", "Doe", "", "secret-pass")
	require.NoError(t, err)
	require.NoError(t, store.SetEmailVerified(ctx, id))

	user, emailChanged, err := a.UpdateProfile(ctx, id, ProfileUpdate{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "new@example.com",
	})
	require.NoError(t, err)
	assert.True(t, emailChanged)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestUpdateProfile_SameEmailKeepsVerified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, store := newTestAuth(t)

	id, err := a.RegisterNewUser(ctx, "owner@example.com", "Jane", "Doe", "", "secret-pass")
	require.NoError(t, err)
	require.NoError(t, store.SetEmailVerified(ctx, id))

	user, emailChanged, err := a.UpdateProfile(ctx, id, ProfileUpdate{
		FirstName: "Janet",
		LastName:  "Doe",
		Email:     "owner@example.com",
		Phone:     "+3717654321",
	})
	require.NoError(t, err)
	assert.False(t, emailChanged)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, "Janet", user.FirstName)
	assert.Equal(t, "+3717654321", user.Phone)
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, store := newTestAuth(t)

	id, err := a.RegisterNewUser(ctx, "owner@example.com", "Jane", "Doe", "", "old-pass")
	require.NoError(t, err)
	require.NoError(t, store.SetEmailVerified(ctx, id))

	// wrong current password is rejected
	_, _, err = a.UpdateProfile(ctx, id, ProfileUpdate{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "owner@example.com",
		CurrentPassword: "not-the-password",
		NewPassword:     "new-pass",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = a.UpdateProfile(ctx, id, ProfileUpdate{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "owner@example.com",
		CurrentPassword: "old-pass",
		NewPassword:     "new-pass",
	})
	require.NoError(t, err)

	_, err = a.Login(ctx, "owner@example.com", "old-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Login(ctx, "owner@example.com", "new-pass")
	require.NoError(t, err)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, _ := newTestAuth(t)

	_, err := a.RegisterNewUser(ctx, "first@example.com", "A", "A", "", "pass-1")
	require.NoError(t, err)
	id, err := a.RegisterNewUser(ctx, "second@example.com", "B", "B", "", "pass-2")
	require.NoError(t, err)

	_, _, err = a.UpdateProfile(ctx, id, ProfileUpdate{
		FirstName: "B",
		LastName:  "B",
		Email:     "first@example.com",
	})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestCheckUserVerification(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, store := newTestAuth(t)

	id, err := a.RegisterNewUser(ctx, "owner@example.com", "Jane", "Doe", "", "secret-pass")
	require.NoError(t, err)

	gotID, verified, err := a.CheckUserVerification(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.False(t, verified)

	require.NoError(t, store.SetEmailVerified(ctx, id))

	_, verified, err = a.CheckUserVerification(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.True(t, verified)

	_, _, err = a.CheckUserVerification(ctx, "nobody@example.com")
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}
