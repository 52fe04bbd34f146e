// Package session holds the server side of the browser session: an
// in-process store keyed by a random token delivered in an HTTP-only
// cookie. Entries expire after a period of inactivity and are swept by a
// background janitor.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"vetline/internal/models"
)

const tokenBytes = 32

type Session struct {
	UserID      int64
	Email       string
	DisplayName string
	Role        models.Role

	lastSeen time.Time
}

func (s *Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

type Manager struct {
	cookieName string
	idleTTL    time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cookieName string, idleTTL time.Duration) *Manager {
	return &Manager{
		cookieName: cookieName,
		idleTTL:    idleTTL,
		sessions:   make(map[string]*Session),
	}
}

// Create establishes a session for the user and sets the cookie. The cookie
// carries nothing but the random key.
func (m *Manager) Create(w http.ResponseWriter, user models.User) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[token] = &Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName(),
		Role:        user.Role(),
		lastSeen:    time.Now(),
	}
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return token, nil
}

// Get resolves the request's session, refreshing its idle deadline. Returns
// nil when there is no cookie, the key is unknown, or the session idled out.
func (m *Manager) Get(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[cookie.Value]
	if !ok {
		return nil
	}

	if time.Since(sess.lastSeen) > m.idleTTL {
		delete(m.sessions, cookie.Value)
		return nil
	}

	sess.lastSeen = time.Now()

	return sess
}

// Update rewrites the identity fields of the live session after a profile
// change, so the displayed name and email stay current.
func (m *Manager) Update(r *http.Request, user models.User) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[cookie.Value]; ok {
		sess.Email = user.Email
		sess.DisplayName = user.DisplayName()
		sess.Role = user.Role()
	}
}

// Destroy drops the session and expires the cookie. Idempotent.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(m.cookieName)
	if err == nil {
		m.mu.Lock()
		delete(m.sessions, cookie.Value)
		m.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// StartJanitor sweeps idled-out sessions until stop is closed.
func (m *Manager) StartJanitor(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(m.idleTTL / 2)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, sess := range m.sessions {
		if time.Since(sess.lastSeen) > m.idleTTL {
			delete(m.sessions, token)
		}
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
