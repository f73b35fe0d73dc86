package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/filevault/backend/internal/infrastructure/logging"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Session maps an opaque bearer token to an authenticated email with a
// fixed expiry.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager is the session store. It is an injected handle, not process-wide
// state: the file store knows nothing about it beyond the Resolve contract.
type Manager struct {
	mu       sync.RWMutex
	byToken  map[string]*Session
	ttl      time.Duration
	snapshot string // JSON snapshot path, empty disables persistence
	log      *logging.Logger
}

// NewManager creates a session manager with the given TTL. If stateDir is
// non-empty, sessions are snapshotted to stateDir/sessions.json and
// reloaded (minus expired entries) at startup.
func NewManager(ttl time.Duration, stateDir string, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		byToken: make(map[string]*Session),
		ttl:     ttl,
		log:     logger,
	}
	if stateDir != "" {
		m.snapshot = filepath.Join(stateDir, "sessions.json")
		m.restore()
	}
	return m
}

// Create issues a new session for email.
func (m *Manager) Create(email string) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:        fmt.Sprintf("sess_%s", ulid.Make().String()),
		Email:     email,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.byToken[token] = s
	m.mu.Unlock()
	m.persist()

	m.log.Debug("Session created", zap.String("session_id", s.ID))
	return s, nil
}

// Resolve maps a token to the email it was issued for. Expired or unknown
// tokens report ok=false; expired entries are dropped on the way out.
func (m *Manager) Resolve(token string) (string, bool) {
	m.mu.RLock()
	s, exists := m.byToken[token]
	m.mu.RUnlock()

	if !exists {
		return "", false
	}
	if time.Now().After(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.byToken, token)
		m.mu.Unlock()
		m.persist()
		return "", false
	}
	return s.Email, true
}

// Revoke removes a session. Unknown tokens are a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	_, existed := m.byToken[token]
	delete(m.byToken, token)
	m.mu.Unlock()
	if existed {
		m.persist()
	}
}

// ActiveCount returns the number of non-expired sessions.
func (m *Manager) ActiveCount() int {
	now := time.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, s := range m.byToken {
		if now.Before(s.ExpiresAt) {
			count++
		}
	}
	return count
}

// restore loads the snapshot, dropping already-expired sessions.
func (m *Manager) restore() {
	data, err := os.ReadFile(m.snapshot)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("Failed to read session snapshot", zap.Error(err))
		}
		return
	}

	var sessions []*Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		m.log.Warn("Failed to parse session snapshot", zap.Error(err))
		return
	}

	now := time.Now()
	m.mu.Lock()
	for _, s := range sessions {
		if now.Before(s.ExpiresAt) {
			m.byToken[s.Token] = s
		}
	}
	m.mu.Unlock()
}

// persist writes the snapshot. Best-effort: a failed write is logged, never
// surfaced to the request path.
func (m *Manager) persist() {
	if m.snapshot == "" {
		return
	}

	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.byToken))
	for _, s := range m.byToken {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		m.log.Warn("Failed to encode session snapshot", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.snapshot), 0o700); err != nil {
		m.log.Warn("Failed to create state directory", zap.Error(err))
		return
	}
	if err := os.WriteFile(m.snapshot, data, 0o600); err != nil {
		m.log.Warn("Failed to write session snapshot", zap.Error(err))
	}
}

// generateToken returns an opaque bearer token. crypto/rand failure is a
// hard error; there is no weak-randomness fallback.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
