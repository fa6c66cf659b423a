// Package clientstate persists the terminal clients' local state between
// runs: the moderator session blob and the student's last selected room.
// One JSON file per key, the way the browser original kept one
// localStorage entry per key.
package clientstate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Storage keys, fixed for compatibility with existing state files.
const (
	SessionKey      = "ebd-professor-auth"
	SelectedRoomKey = "ebd-sala-selecionada"
)

// ErrNotFound is returned when a key has no readable value. Corrupt files
// count as missing: the caller discards and starts fresh.
var ErrNotFound = errors.New("client state not found")

// Session is the persisted moderator session blob. The credential is the
// source of truth; the profile fields are a cache that must be
// revalidated against the directory on load.
type Session struct {
	Credential   string `json:"credential"`
	DisplayName  string `json:"display_name"`
	AssignedRoom string `json:"assigned_room"`
	IsAdmin      bool   `json:"is_admin"`
}

// Store reads and writes state files under a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStore roots the store under the user config directory.
func DefaultStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(base, "perguntas-ebd")), nil
}

// LoadSession returns the persisted session, or ErrNotFound when absent
// or unreadable.
func (s *Store) LoadSession() (*Session, error) {
	var sess Session
	if err := s.load(SessionKey, &sess); err != nil {
		return nil, err
	}
	if sess.Credential == "" {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// SaveSession persists the session blob.
func (s *Store) SaveSession(sess *Session) error {
	return s.save(SessionKey, sess)
}

// ClearSession removes the persisted session (logout or invalidation).
func (s *Store) ClearSession() error {
	return s.remove(SessionKey)
}

// LoadSelectedRoom returns the student's last selected room id.
func (s *Store) LoadSelectedRoom() (string, error) {
	var room string
	if err := s.load(SelectedRoomKey, &room); err != nil {
		return "", err
	}
	if room == "" {
		return "", ErrNotFound
	}
	return room, nil
}

// SaveSelectedRoom persists the student's room selection.
func (s *Store) SaveSelectedRoom(room string) error {
	return s.save(SelectedRoomKey, room)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) load(key string, v interface{}) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrNotFound
	}
	return nil
}

func (s *Store) save(key string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), data, 0o600)
}

func (s *Store) remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
