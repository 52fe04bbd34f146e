package login

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetline/internal/auth"
	"vetline/internal/models"
	"vetline/internal/session"
	"vetline/internal/storage"
)

type fixedUserStore struct {
	user models.User
}

func (s *fixedUserStore) SaveUser(context.Context, models.User) (int64, error) { return 0, nil }
func (s *fixedUserStore) UpdateUser(context.Context, models.User) error        { return nil }
func (s *fixedUserStore) SetEmailVerified(context.Context, int64) error        { return nil }

func (s *fixedUserStore) User(_ context.Context, email string) (models.User, error) {
	if email != s.user.Email {
		return models.User{}, storage.ErrUserNotFound
	}
	return s.user, nil
}

func (s *fixedUserStore) UserByID(_ context.Context, id int64) (models.User, error) {
	if id != s.user.ID {
		return models.User{}, storage.ErrUserNotFound
	}
	return s.user, nil
}

func newLoginHandler(t *testing.T, user models.User) (http.HandlerFunc, *session.Manager) {
	t.Helper()

	store := &fixedUserStore{user: user}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := auth.New(log, store, store, "test-secret", time.Hour)
	sessions := session.NewManager("vetline_session", 30*time.Minute)

	return New(log, validator.New(), authService, sessions), sessions
}

func verifiedUser(t *testing.T, isAdmin bool) models.User {
	t.Helper()

	hash, err := auth.HashPassword("secret-pass")
	require.NoError(t, err)

	return models.User{
		ID:            7,
		Email:         "owner@example.com",
		FirstName:     "Jane",
		LastName:      "Doe",
		PassHash:      hash,
		IsAdmin:       isAdmin,
		EmailVerified: true,
	}
}

func doLogin(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	handler, sessions := newLoginHandler(t, verifiedUser(t, false))

	rec := doLogin(t, handler, "/auth/login",
		`{"email":"owner@example.com","password":"secret-pass"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "/", got.RedirectTo)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "vetline_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookies[0])
	sess := sessions.Get(req)
	require.NotNil(t, sess)
	assert.Equal(t, int64(7), sess.UserID)
}

func TestLogin_AdminRedirect(t *testing.T) {
	t.Parallel()

	handler, _ := newLoginHandler(t, verifiedUser(t, true))

	rec := doLogin(t, handler, "/auth/login?return_url=/products",
		`{"email":"owner@example.com","password":"secret-pass"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "/admin", got.RedirectTo)
}

func TestLogin_ReturnURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		returnURL string
		want      string
	}{
		{"same-origin path", "/animals", "/animals"},
		{"empty", "", "/"},
		{"absolute url", "https://evil.example/phish", "/"},
		{"protocol-relative", "//evil.example", "/"},
		{"no leading slash", "animals", "/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, _ := newLoginHandler(t, verifiedUser(t, false))

			target := "/auth/login"
			if tt.returnURL != "" {
				target += "?return_url=" + url.QueryEscape(tt.returnURL)
			}

			rec := doLogin(t, handler, target,
				`{"email":"owner@example.com","password":"secret-pass"}`)

			require.Equal(t, http.StatusOK, rec.Code)

			var got Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got.RedirectTo)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	handler, _ := newLoginHandler(t, verifiedUser(t, false))

	rec := doLogin(t, handler, "/auth/login",
		`{"email":"owner@example.com","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()

	handler, _ := newLoginHandler(t, verifiedUser(t, false))

	rec := doLogin(t, handler, "/auth/login",
		`{"email":"nobody@example.com","password":"secret-pass"}`)

	// indistinguishable from a wrong password
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestLogin_EmailNotVerified(t *testing.T) {
	t.Parallel()

	user := verifiedUser(t, false)
	user.EmailVerified = false
	handler, _ := newLoginHandler(t, user)

	rec := doLogin(t, handler, "/auth/login",
		`{"email":"owner@example.com","password":"secret-pass"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var got notVerified
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.ResendAvailable)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_BadRequest(t *testing.T) {
	t.Parallel()

	handler, _ := newLoginHandler(t, verifiedUser(t, false))

	rec := doLogin(t, handler, "/auth/login", `{"email":"not-an-email"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSanitizeReturnURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/animals", sanitizeReturnURL("/animals"))
	assert.Equal(t, "/", sanitizeReturnURL(""))
	assert.Equal(t, "/", sanitizeReturnURL("//evil.example"))
	assert.Equal(t, "/", sanitizeReturnURL("https://evil.example"))
	assert.Equal(t, "/", sanitizeReturnURL("animals"))
}
