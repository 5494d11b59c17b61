// Package session tracks the one authenticated user between runs. The
// state lives in an env-format preferences file outside the relational
// schema, written whole on every change so login and logout are each a
// single commit.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"budget/internal/core"
)

const (
	keyLoggedIn  = "IS_LOGGED_IN"
	keyUserID    = "USER_ID"
	keyUserName  = "USER_NAME"
	keyUserEmail = "USER_EMAIL"
)

// Session is the durable identity snapshot. The zero value means
// nobody is logged in.
type Session struct {
	LoggedIn  bool
	UserID    int64
	UserName  string
	UserEmail string
}

// Manager reads and writes the preferences file at a fixed path.
type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Create records a login. All four fields land in one file write.
func (m *Manager) Create(u core.User) error {
	return m.commit(map[string]string{
		keyLoggedIn:  "true",
		keyUserID:    strconv.FormatInt(u.ID, 10),
		keyUserName:  u.Name,
		keyUserEmail: u.Email,
	})
}

// Clear records a logout by emptying the whole file in one commit.
func (m *Manager) Clear() error {
	return m.commit(map[string]string{})
}

// Current loads the stored session. A missing file is simply a
// logged-out state, not an error.
func (m *Manager) Current() (Session, error) {
	env, err := godotenv.Read(m.path)
	if os.IsNotExist(err) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session file: %w", err)
	}

	var s Session
	s.LoggedIn = env[keyLoggedIn] == "true"
	if !s.LoggedIn {
		return Session{}, nil
	}
	s.UserID, err = strconv.ParseInt(env[keyUserID], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("parse stored user id %q: %w", env[keyUserID], err)
	}
	s.UserName = env[keyUserName]
	s.UserEmail = env[keyUserEmail]
	return s, nil
}

func (m *Manager) IsLoggedIn() (bool, error) {
	s, err := m.Current()
	if err != nil {
		return false, err
	}
	return s.LoggedIn, nil
}

// commit writes the full map to a temp file and renames it into place,
// so readers never observe a half-written session.
func (m *Manager) commit(env map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := godotenv.Write(env, tmp); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
