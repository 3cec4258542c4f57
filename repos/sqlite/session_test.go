package sqlite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoka/closing"
	"github.com/restoka/closing/repos/sqlite"
)

func TestSessionRepository(t *testing.T) {
	closing.Initialize()
	t.Setenv("AUTO_MIGRATE", "true")

	db, err := sqlite.Connect("file:sessions_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer db.Close()

	repo := db.NewSessionRepository()

	_, found, err := repo.Find("tok1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Commit("tok1", []byte("data1"), time.Now().Add(time.Hour)))

	data, found, err := repo.Find("tok1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("data1"), data)

	// last write wins
	require.NoError(t, repo.Commit("tok1", []byte("data2"), time.Now().Add(time.Hour)))
	data, found, err = repo.Find("tok1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("data2"), data)

	// expired sessions are invisible
	require.NoError(t, repo.Commit("tok2", []byte("old"), time.Now().Add(-time.Minute)))
	_, found, err = repo.Find("tok2")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Delete("tok1"))
	_, found, err = repo.Find("tok1")
	require.NoError(t, err)
	assert.False(t, found)
}
