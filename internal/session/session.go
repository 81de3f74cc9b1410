// Package session owns the authentication state machine: who is
// logged in, their role and user id, and the persistence of that
// triple across restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/transport"
)

// Manager is the single shared session instance. It implements
// transport.TokenSource so the gateway attaches the bearer token of
// whatever session is current.
type Manager struct {
	mu      sync.RWMutex
	gw      *transport.Gateway
	storage *Storage
	logger  zerolog.Logger
	current model.Session
}

func NewManager(storage *Storage, logger zerolog.Logger) *Manager {
	return &Manager{
		storage: storage,
		logger:  logger.With().Str("component", "session").Logger(),
	}
}

// SetGateway wires the transport after construction; the gateway needs
// the manager as its token source, so the manager is built first.
func (m *Manager) SetGateway(gw *transport.Gateway) {
	m.gw = gw
}

// Token implements transport.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

// Session returns a copy of the current session state.
func (m *Manager) Session() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.LoggedIn
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.IsAdmin()
}

func (m *Manager) IsPractitioner() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.IsPractitioner()
}

// Login authenticates against the backend. On any failure, including a
// response without a token, it logs out so no partial state survives,
// and returns false. Login never returns an error; the diagnostic goes
// to the log.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	var auth model.AuthResponse
	err := m.gw.Post(ctx, "/auth/login", nil,
		model.LoginRequest{Email: email, Password: password}, &auth,
		"login failed")
	if err != nil {
		m.logger.Error().Err(err).Str("email", email).Msg("login failed")
		m.Logout()
		return false
	}
	if auth.Token == "" {
		m.logger.Error().Str("email", email).Msg("login response carried no token")
		m.Logout()
		return false
	}

	m.mu.Lock()
	m.current = model.Session{
		LoggedIn: true,
		Username: email,
		Token:    auth.Token,
		Role:     auth.Role,
		UserID:   auth.UserID,
	}
	m.mu.Unlock()

	if err := m.storage.Save(auth.Token, auth.Role.String(), auth.UserID); err != nil {
		// The live session stands; only restart restoration is lost.
		m.logger.Warn().Err(err).Msg("failed to persist session")
	}
	return true
}

// Logout clears in-memory and persisted state unconditionally.
// Idempotent; never fails.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = model.Session{}
	m.mu.Unlock()

	if err := m.storage.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

// Initialize restores a persisted session, if any, without contacting
// the server. A token the server has since invalidated is discovered
// lazily on the first failing call.
func (m *Manager) Initialize() {
	token, role, userID, ok := m.storage.Load()
	if !ok {
		return
	}
	m.mu.Lock()
	m.current = model.Session{
		LoggedIn: true,
		Token:    token,
		Role:     model.ParseRole(role),
		UserID:   userID,
	}
	m.mu.Unlock()
	m.logger.Debug().Str("role", role).Msg("session restored from storage")
}

// CheckPractitionerProfile reports whether the current practitioner
// user has a completed clinical profile. It never fails: an absent
// user id or any query failure reads as "no profile".
func (m *Manager) CheckPractitionerProfile(ctx context.Context) bool {
	userID := m.Session().UserID
	if userID == "" {
		m.logger.Warn().Msg("no user id on session, cannot check practitioner profile")
		return false
	}
	var profile json.RawMessage
	err := m.gw.Get(ctx, fmt.Sprintf("/practitioners/%s/profile", userID), nil,
		&profile, "failed to check practitioner profile")
	if err != nil {
		m.logger.Debug().Err(err).Str("user_id", userID).Msg("practitioner profile check failed")
		return false
	}
	return len(profile) > 0 && string(profile) != "null"
}
