package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "client.db"), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "userVote")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "userVote", "accept"))
	require.NoError(t, s.Set(ctx, "userVote", "reject"))

	v, ok, err := s.Get(ctx, "userVote")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "reject", v)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	s, err := Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "userVote", "accept"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "userVote")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "accept", v)
}

func TestSQLiteStoreClosed(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "client.db"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.Set(ctx, "userVote", "accept"))
	_, _, err = s.Get(ctx, "userVote")
	assert.Error(t, err)
}
