package user

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/filevault/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrExists means an account with that email is already registered.
	ErrExists = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so login failures never reveal which half was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Manager holds registered users keyed by email, with a JSON snapshot for
// restarts.
type Manager struct {
	mu       sync.RWMutex
	byEmail  map[string]*User
	snapshot string
	log      *logging.Logger
}

// NewManager creates a user manager. If stateDir is non-empty, users are
// persisted to stateDir/users.json and reloaded at startup.
func NewManager(stateDir string, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		byEmail: make(map[string]*User),
		log:     logger,
	}
	if stateDir != "" {
		m.snapshot = filepath.Join(stateDir, "users.json")
		m.restore()
	}
	return m
}

// Register creates an account. Email matching is case-insensitive.
func (m *Manager) Register(name, email, password string) (*User, error) {
	key := normalizeEmail(email)

	m.mu.Lock()
	if _, exists := m.byEmail[key]; exists {
		m.mu.Unlock()
		return nil, ErrExists
	}
	m.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	m.mu.Lock()
	if _, exists := m.byEmail[key]; exists {
		m.mu.Unlock()
		return nil, ErrExists
	}
	m.byEmail[key] = u
	m.mu.Unlock()
	m.persist()

	m.log.Info("User registered", zap.String("email", email))
	return u, nil
}

// Authenticate verifies email/password and returns the account.
func (m *Manager) Authenticate(email, password string) (*User, error) {
	m.mu.RLock()
	u, exists := m.byEmail[normalizeEmail(email)]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Lookup returns the account registered under email.
func (m *Manager) Lookup(email string) (*User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byEmail[normalizeEmail(email)]
	return u, ok
}

func (m *Manager) restore() {
	data, err := os.ReadFile(m.snapshot)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("Failed to read user snapshot", zap.Error(err))
		}
		return
	}

	var users []*User
	if err := json.Unmarshal(data, &users); err != nil {
		m.log.Warn("Failed to parse user snapshot", zap.Error(err))
		return
	}

	m.mu.Lock()
	for _, u := range users {
		m.byEmail[normalizeEmail(u.Email)] = u
	}
	m.mu.Unlock()
}

func (m *Manager) persist() {
	if m.snapshot == "" {
		return
	}

	m.mu.RLock()
	users := make([]*User, 0, len(m.byEmail))
	for _, u := range m.byEmail {
		users = append(users, u)
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		m.log.Warn("Failed to encode user snapshot", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.snapshot), 0o700); err != nil {
		m.log.Warn("Failed to create state directory", zap.Error(err))
		return
	}
	if err := os.WriteFile(m.snapshot, data, 0o600); err != nil {
		m.log.Warn("Failed to write user snapshot", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
