package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetline/internal/models"
)

const cookieName = "vetline_session"

func testUser() models.User {
	return models.User{
		ID:        42,
		Email:     "owner@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func createSession(t *testing.T, m *Manager, user models.User) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	_, err := m.Create(rec, user)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookies[0])

	return req
}

func TestManager_CreateAndGet(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 30*time.Minute)
	req := createSession(t, m, testUser())

	sess := m.Get(req)
	require.NotNil(t, sess)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, "owner@example.com", sess.Email)
	assert.Equal(t, "Jane Doe", sess.DisplayName)
	assert.False(t, sess.IsAdmin())
}

func TestManager_CookieAttributes(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 30*time.Minute)

	rec := httptest.NewRecorder()
	token, err := m.Create(rec, testUser())
	require.NoError(t, err)
	require.Len(t, token, 64) // 32 random bytes, hex encoded

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, cookieName, c.Name)
	assert.Equal(t, token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
}

func TestManager_GetNoCookie(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 30*time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	assert.Nil(t, m.Get(req))
}

func TestManager_GetUnknownToken(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 30*time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "deadbeef"})
	assert.Nil(t, m.Get(req))
}

func TestManager_IdleExpiry(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 50*time.Millisecond)
	req := createSession(t, m, testUser())

	require.NotNil(t, m.Get(req))

	time.Sleep(80 * time.Millisecond)

	assert.Nil(t, m.Get(req))
}

func TestManager_GetRefreshesIdleDeadline(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 100*time.Millisecond)
	req := createSession(t, m, testUser())

	// keep touching the session more often than the idle TTL
	for i := 0; i < 3; i++ {
		time.Sleep(60 * time.Millisecond)
		require.NotNil(t, m.Get(req))
	}
}

func TestManager_Update(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 30*time.Minute)
	req := createSession(t, m, testUser())

	updated := testUser()
	updated.Email = "new@example.com"
	updated.FirstName = "Janet"
	updated.IsAdmin = true
	m.Update(req, updated)

	sess := m.Get(req)
	require.NotNil(t, sess)
	assert.Equal(t, "new@example.com", sess.Email)
	assert.Equal(t, "Janet Doe", sess.DisplayName)
	assert.True(t, sess.IsAdmin())
}

func TestManager_DestroyIdempotent(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 30*time.Minute)
	req := createSession(t, m, testUser())

	rec := httptest.NewRecorder()
	m.Destroy(rec, req)
	assert.Nil(t, m.Get(req))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	// destroying again is a no-op
	m.Destroy(httptest.NewRecorder(), req)
	assert.Nil(t, m.Get(req))
}

func TestManager_Sweep(t *testing.T) {
	t.Parallel()

	m := NewManager(cookieName, 30*time.Millisecond)
	req := createSession(t, m, testUser())

	time.Sleep(50 * time.Millisecond)
	m.sweep()

	m.mu.Lock()
	remaining := len(m.sessions)
	m.mu.Unlock()
	assert.Zero(t, remaining)

	assert.Nil(t, m.Get(req))
}
