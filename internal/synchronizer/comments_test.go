package synchronizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/internal/models"
	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
)

func createdAts(cs []models.Comment) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.CreatedAt
	}
	return out
}

func TestSortCommentsNewestFirst(t *testing.T) {
	cs := []models.Comment{{ID: "a", CreatedAt: 100}, {ID: "b", CreatedAt: 300}, {ID: "c", CreatedAt: 200}}
	SortComments(cs)
	assert.Equal(t, []int64{300, 200, 100}, createdAts(cs))

	// Re-sorting a sorted feed changes nothing.
	SortComments(cs)
	assert.Equal(t, []string{"b", "c", "a"}, []string{cs[0].ID, cs[1].ID, cs[2].ID})
}

func TestSortCommentsTiesKeepArrivalOrder(t *testing.T) {
	cs := []models.Comment{{ID: "1", CreatedAt: 5}, {ID: "2", CreatedAt: 9}, {ID: "3", CreatedAt: 5}, {ID: "4", CreatedAt: 5}}
	SortComments(cs)
	assert.Equal(t, []string{"2", "1", "3", "4"}, []string{cs[0].ID, cs[1].ID, cs[2].ID, cs[3].ID})
}

func TestCommentsResortsEverySnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	remote := store.NewMemoryStore()

	c := NewComments(remote, "comments", zap.NewNop())
	require.NoError(t, c.Start(ctx))
	obs, err := c.Observe(ctx)
	require.NoError(t, err)
	assert.Empty(t, recv(t, obs))

	for _, at := range []int64{100, 300, 200} {
		_, err := remote.AppendUnique(ctx, "comments", models.Comment{
			Type: models.ChoiceAccept, Message: "m", Name: models.AnonymousName, CreatedAt: at,
		}.Fields())
		require.NoError(t, err)
	}

	feed := recv(t, obs)
	for len(feed) < 3 {
		feed = recv(t, obs)
	}
	assert.Equal(t, []int64{300, 200, 100}, createdAts(feed))

	latest, loaded := c.Latest()
	assert.True(t, loaded)
	assert.Equal(t, feed, latest)
	latest[0].Message = "changed"
	again, _ := c.Latest()
	assert.Equal(t, "m", again[0].Message)
}

func TestCommentsSkipsMalformedChildren(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	remote := store.NewMemoryStore()
	_, err := remote.AppendUnique(ctx, "comments", store.Document{"type": "accept", "message": "ok", "createdAt": 1})
	require.NoError(t, err)
	_, err = remote.AppendUnique(ctx, "comments", store.Document{"type": "sideways", "message": "bad"})
	require.NoError(t, err)

	c := NewComments(remote, "comments", zap.NewNop())
	require.NoError(t, c.Start(ctx))
	obs, err := c.Observe(ctx)
	require.NoError(t, err)

	feed := recv(t, obs)
	require.Len(t, feed, 1)
	assert.Equal(t, "ok", feed[0].Message)
	assert.Equal(t, models.AnonymousName, feed[0].Name)
	assert.NotEmpty(t, feed[0].ID)
}

func TestCommentsObserveBeforeStart(t *testing.T) {
	c := NewComments(store.NewMemoryStore(), "comments", zap.NewNop())
	_, err := c.Observe(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}
