package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// persistedState is the token/role/userId triple written on login and
// cleared on logout.
type persistedState struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID string `json:"userId"`
}

// Storage persists the session triple in a single file so a restarted
// process can restore its session without re-authenticating.
type Storage struct {
	path string
}

// NewStorage keeps session state under dir. An empty dir selects the
// platform user config directory.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("no user config directory: %w", err)
		}
		dir = filepath.Join(base, "pdaw")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Storage{path: filepath.Join(dir, "session.json")}, nil
}

func (s *Storage) Save(token, role, userID string) error {
	data, err := json.Marshal(persistedState{Token: token, Role: role, UserID: userID})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load reads the persisted triple. ok is false when nothing usable is
// stored.
func (s *Storage) Load() (token, role, userID string, ok bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", "", "", false
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil || state.Token == "" {
		return "", "", "", false
	}
	return state.Token, state.Role, state.UserID, true
}

// Clear removes the persisted state. Idempotent.
func (s *Storage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
