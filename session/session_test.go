package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/aibanker/go-aibanker/session"
)

func TestSession_TokenLifecycle(t *testing.T) {
	s := session.New(session.NewMemoryStore())

	t.Run("starts anonymous", func(t *testing.T) {
		require.False(t, s.IsAuthenticated())
		access, refresh := s.Read()
		require.Empty(t, access)
		require.Empty(t, refresh)
	})

	t.Run("set then read", func(t *testing.T) {
		require.NoError(t, s.SetTokens("T1", "R1"))
		access, refresh := s.Read()
		require.Equal(t, "T1", access)
		require.Equal(t, "R1", refresh)
		require.True(t, s.IsAuthenticated())
	})

	t.Run("overwrite on rotation", func(t *testing.T) {
		require.NoError(t, s.SetTokens("T2", "R2"))
		access, refresh := s.Read()
		require.Equal(t, "T2", access)
		require.Equal(t, "R2", refresh)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		require.NoError(t, s.Clear())
		require.False(t, s.IsAuthenticated())
		require.NoError(t, s.Clear())
		access, refresh := s.Read()
		require.Empty(t, access)
		require.Empty(t, refresh)
	})
}

func TestSession_AuthenticatedExactlyWhenAccessTokenHeld(t *testing.T) {
	s := session.New(session.NewMemoryStore())

	require.NoError(t, s.SetTokens("", "R1"))
	require.False(t, s.IsAuthenticated(), "a refresh token alone is not an authenticated session")

	require.NoError(t, s.SetTokens("T1", ""))
	require.True(t, s.IsAuthenticated())
}

func TestSession_LoadsPersistedPair(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save("T1", "R1"))

	s := session.New(store)
	require.True(t, s.IsAuthenticated())
	access, refresh := s.Read()
	require.Equal(t, "T1", access)
	require.Equal(t, "R1", refresh)
}

type failingStore struct{}

func (failingStore) Load() (string, string, error) { return "", "", errors.New("disk on fire") }
func (failingStore) Save(string, string) error     { return errors.New("disk on fire") }
func (failingStore) Clear() error                  { return errors.New("disk on fire") }

func TestSession_LoadFailureYieldsAnonymousSession(t *testing.T) {
	s := session.New(failingStore{})
	require.False(t, s.IsAuthenticated())
}

func TestSession_NilStore(t *testing.T) {
	s := session.New(nil)
	require.NoError(t, s.SetTokens("T1", "R1"))
	require.True(t, s.IsAuthenticated())
	require.NoError(t, s.Clear())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := session.NewFileStore(path)

	t.Run("load missing file yields empty pair", func(t *testing.T) {
		access, refresh, err := store.Load()
		require.NoError(t, err)
		require.Empty(t, access)
		require.Empty(t, refresh)
	})

	t.Run("roundtrip", func(t *testing.T) {
		require.NoError(t, store.Save("T1", "R1"))
		access, refresh, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, "T1", access)
		require.Equal(t, "R1", refresh)
	})

	t.Run("file has restrictive permissions", func(t *testing.T) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("clear removes the file and tolerates absence", func(t *testing.T) {
		require.NoError(t, store.Clear())
		_, err := os.Stat(path)
		require.True(t, os.IsNotExist(err))
		require.NoError(t, store.Clear())
	})

	t.Run("session survives restart", func(t *testing.T) {
		first := session.New(store)
		require.NoError(t, first.SetTokens("T2", "R2"))

		second := session.New(session.NewFileStore(path))
		access, refresh := second.Read()
		require.Equal(t, "T2", access)
		require.Equal(t, "R2", refresh)
	})
}

func TestTokenSource_ReflectsRotation(t *testing.T) {
	s := session.New(session.NewMemoryStore())
	require.NoError(t, s.SetTokens("T1", "R1"))

	ts := s.TokenSource()
	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, "T1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)

	require.NoError(t, s.SetTokens("T2", "R2"))
	tok, err = ts.Token()
	require.NoError(t, err)
	require.Equal(t, "T2", tok.AccessToken)
	require.Equal(t, "R2", tok.RefreshToken)
}
