// Package session хранит токен и пользователя текущей сессии и синхронизирует их
// с долговременным локальным хранилищем.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
)

// Manager - владелец сессии. Создается явно и передается зависимостям.
type Manager struct {
	store  port.KeyValueStore
	logger port.LoggerPort

	initOnce sync.Once

	mu    sync.RWMutex
	token string
	user  *domain.User
}

var _ port.SessionPort = (*Manager)(nil)

func NewManager(store port.KeyValueStore, logger port.LoggerPort) *Manager {
	return &Manager{
		store:  store,
		logger: logger.WithFields(port.Fields{"component": "SessionManager"}),
	}
}

// Initialize читает сохраненную сессию. Выполняется один раз за время жизни менеджера.
// Битые или неполные данные считаются отсутствием сессии и стираются; ошибка наружу не выходит.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.restore(ctx)
	})
}

func (m *Manager) restore(ctx context.Context) {
	token, hasToken, err := m.store.Get(ctx, port.TokenStorageKey)
	if err != nil {
		m.logger.Warn("Failed to read persisted token, starting logged out", port.Fields{"error": err.Error()})
		return
	}
	rawUser, hasUser, err := m.store.Get(ctx, port.UserStorageKey)
	if err != nil {
		m.logger.Warn("Failed to read persisted user, starting logged out", port.Fields{"error": err.Error()})
		return
	}

	if !hasToken && !hasUser {
		m.logger.Debug("No persisted session", nil)
		return
	}
	if !hasToken || !hasUser || token == "" {
		m.logger.Warn("Persisted session is incomplete, clearing it", port.Fields{
			"has_token": hasToken, "has_user": hasUser,
		})
		m.clearPersisted(ctx)
		return
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Warn("Persisted user record is malformed, clearing session", port.Fields{"error": err.Error()})
		m.clearPersisted(ctx)
		return
	}

	m.mu.Lock()
	m.token = token
	m.user = &user
	m.mu.Unlock()

	m.logger.Info("Session restored", port.Fields{"user_id": user.ID, "role": user.Role})
}

func (m *Manager) clearPersisted(ctx context.Context) {
	if err := m.store.Delete(ctx, port.TokenStorageKey, port.UserStorageKey); err != nil {
		m.logger.Error("Failed to clear persisted session", err, nil)
	}
}

// Login сохраняет токен и пользователя и делает сессию активной. Сети не касается.
func (m *Manager) Login(ctx context.Context, token string, user domain.User) error {
	if token == "" {
		return fmt.Errorf("login: empty token")
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("login: failed to encode user: %w", err)
	}
	if err := m.store.Set(ctx, port.TokenStorageKey, token); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := m.store.Set(ctx, port.UserStorageKey, string(rawUser)); err != nil {
		m.clearPersisted(ctx)
		return fmt.Errorf("login: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.user = &user
	m.mu.Unlock()

	m.logger.Info("User logged in", port.Fields{"user_id": user.ID, "role": user.Role})
	return nil
}

// Logout стирает сессию в хранилище и в памяти. Память очищается даже при ошибке хранилища.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	wasLoggedIn := m.user != nil
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, port.TokenStorageKey, port.UserStorageKey); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if wasLoggedIn {
		m.logger.Info("User logged out", nil)
	}
	return nil
}

// IsAuthenticated - true, если в памяти есть пользователь.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// User возвращает текущего пользователя.
func (m *Manager) User() (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return domain.User{}, false
	}
	return *m.user, true
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Session возвращает снимок активной сессии.
func (m *Manager) Session() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return domain.Session{}, false
	}
	return domain.Session{Token: m.token, User: *m.user}, true
}
