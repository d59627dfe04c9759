package filerepo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/filerepo"
	"github.com/stretchr/testify/require"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "client", "credentials.json")
}

func TestSetGetRoundTrip(t *testing.T) {
	repo := filerepo.New(testPath(t))

	err := repo.Set(&credentials.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"})
	require.NoError(t, err)

	pair, err := repo.Get()
	require.NoError(t, err)
	require.Equal(t, "access-1", pair.AccessToken)
	require.Equal(t, "refresh-1", pair.RefreshToken)
}

func TestGetAbsentFile(t *testing.T) {
	repo := filerepo.New(testPath(t))

	_, err := repo.Get()
	require.ErrorIs(t, err, credentials.NotFoundErr)
}

func TestSurvivesReload(t *testing.T) {
	path := testPath(t)

	err := filerepo.New(path).Set(&credentials.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"})
	require.NoError(t, err)

	// A fresh repo instance simulates a client restart.
	pair, err := filerepo.New(path).Get()
	require.NoError(t, err)
	require.Equal(t, "access-1", pair.AccessToken)
}

func TestClearIsIdempotent(t *testing.T) {
	path := testPath(t)
	repo := filerepo.New(path)

	require.NoError(t, repo.Set(&credentials.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	require.NoError(t, repo.Clear())
	require.NoError(t, repo.Clear())

	_, err := repo.Get()
	require.ErrorIs(t, err, credentials.NotFoundErr)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestFilePermissions(t *testing.T) {
	path := testPath(t)
	repo := filerepo.New(path)

	require.NoError(t, repo.Set(&credentials.Pair{AccessToken: "access-1"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEmptyAccessTokenTreatedAsAbsent(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"","refresh_token":"refresh-1"}`), 0600))

	_, err := filerepo.New(path).Get()
	require.ErrorIs(t, err, credentials.NotFoundErr)
}
