package clientstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.LoadSession()
	assert.ErrorIs(t, err, ErrNotFound)

	sess := &Session{
		Credential:   "jonatasfaria",
		DisplayName:  "Jonatas Faria",
		AssignedRoom: "verdade-absoluta",
		IsAdmin:      true,
	}
	require.NoError(t, s.SaveSession(sess))

	loaded, err := s.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, sess, loaded)

	require.NoError(t, s.ClearSession())
	_, err = s.LoadSession()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearSessionIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.NoError(t, s.ClearSession())
	assert.NoError(t, s.ClearSession())
}

func TestCorruptSessionTreatedAsMissing(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, SessionKey+".json"), []byte("{not json"), 0o600))

	_, err := s.LoadSession()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectedRoomRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.LoadSelectedRoom()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveSelectedRoom("doutrina"))
	room, err := s.LoadSelectedRoom()
	require.NoError(t, err)
	assert.Equal(t, "doutrina", room)
}
