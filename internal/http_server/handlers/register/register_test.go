package register

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetline/internal/auth"
	"vetline/internal/lib/verification"
	"vetline/internal/models"
	"vetline/internal/storage"
)

const testSecret = "test-secret"

type memStore struct {
	nextID int64
	users  map[string]models.User
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, users: map[string]models.User{}}
}

func (s *memStore) SaveUser(_ context.Context, u models.User) (int64, error) {
	if _, ok := s.users[u.Email]; ok {
		return 0, storage.ErrUserExists
	}
	u.ID = s.nextID
	s.nextID++
	s.users[u.Email] = u
	return u.ID, nil
}

func (s *memStore) UpdateUser(context.Context, models.User) error { return nil }
func (s *memStore) SetEmailVerified(context.Context, int64) error { return nil }

func (s *memStore) User(_ context.Context, email string) (models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) UserByID(_ context.Context, id int64) (models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, storage.ErrUserNotFound
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func newRegisterHandler(t *testing.T, mail verification.Mailer) (http.HandlerFunc, *memStore) {
	t.Helper()

	store := newMemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := auth.New(log, store, store, testSecret, time.Hour)

	handler := New(log, validator.New(), authService, mail,
		time.Hour, testSecret, "http://localhost:8080")

	return handler, store
}

func doRegister(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec
}

const validBody = `{
	"email": "owner@example.com",
	"first_name": "Jane",
	"last_name": "Doe",
	"phone": "+3711234567",
	"password": "secret-pass"
}`

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	mail := &recordingMailer{}
	handler, store := newRegisterHandler(t, mail)

	rec := doRegister(handler, validBody)

	require.Equal(t, http.StatusOK, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Positive(t, got.UserID)
	assert.True(t, got.EmailSent)

	require.Equal(t, []string{"owner@example.com"}, mail.sent)

	u, err := store.User(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.False(t, u.EmailVerified)
	// the digest is stored, never the password
	assert.NotEqual(t, "secret-pass", u.PassHash)
	assert.True(t, auth.VerifyPassword("secret-pass", u.PassHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	handler, _ := newRegisterHandler(t, &recordingMailer{})

	rec := doRegister(handler, validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRegister(handler, validBody)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}

func TestRegister_MailerDown(t *testing.T) {
	t.Parallel()

	mail := &recordingMailer{err: errors.New("smtp down")}
	handler, store := newRegisterHandler(t, mail)

	rec := doRegister(handler, validBody)

	// registration sticks even when the link cannot go out
	require.Equal(t, http.StatusOK, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.EmailSent)

	_, err := store.User(context.Background(), "owner@example.com")
	require.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","first_name":"J","last_name":"D","password":"secret-pass"}`},
		{"short password", `{"email":"a@b.c","first_name":"J","last_name":"D","password":"abc"}`},
		{"missing names", `{"email":"a@b.c","password":"secret-pass"}`},
		{"not json", `first_name=Jane`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, _ := newRegisterHandler(t, &recordingMailer{})
			rec := doRegister(handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
