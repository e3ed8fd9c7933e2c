// Package synchronizer keeps each client's read-only view of the shared vote totals and comment feed in
// step with the remote store.
package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/internal/models"
	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
)

// UserVoteKey is the local key remembering this client's choice.
const UserVoteKey = "userVote"

var ErrNotStarted = errors.New("synchronizer not started")

// Votes tracks the shared aggregate and this client's own choice.
//
// The choice is read from local storage once, at construction, and afterwards only changes through
// RecordChoice. Remote snapshots never touch it: a reset or slow store must not re-enable voting.
type Votes struct {
	remote store.RemoteStore
	local  store.LocalStore
	path   string
	l      *zap.Logger

	mu      sync.RWMutex
	latest  models.VoteAggregate
	loaded  bool
	started bool
	choice  models.Choice

	hub *hub[models.VoteAggregate]
}

func NewVotes(ctx context.Context, remote store.RemoteStore, local store.LocalStore, path string, l *zap.Logger) *Votes {
	v := &Votes{
		remote: remote,
		local:  local,
		path:   path,
		l:      l,
		hub:    newHub[models.VoteAggregate](),
	}

	raw, ok, err := local.Get(ctx, UserVoteKey)
	switch {
	case err != nil:
		l.Error("failed to read local vote, treating client as not voted", zap.Error(err))
	case ok:
		if c, err := models.ParseChoice(raw); err == nil {
			v.choice = c
		} else {
			l.Warn("ignoring unknown local vote", zap.String("value", raw))
		}
	}
	return v
}

// Start subscribes to the aggregate path and keeps Latest current until ctx ends or the subscription
// is lost. After a loss Latest keeps returning the last known totals.
func (v *Votes) Start(ctx context.Context) error {
	snaps, err := v.remote.Subscribe(ctx, v.path)
	if err != nil {
		return fmt.Errorf("synchronizer: subscribe %s: %w", v.path, err)
	}
	v.mu.Lock()
	v.started = true
	v.mu.Unlock()

	go func() {
		defer v.hub.shutdown()
		for snap := range snaps {
			agg, err := models.DecodeAggregate(snap.Doc)
			if err != nil {
				v.l.Warn("skipping aggregate snapshot", zap.String("path", v.path), zap.Error(err))
				continue
			}
			if !agg.Consistent() {
				v.l.Warn("aggregate total does not match its parts", zap.Any("aggregate", agg))
			}
			v.mu.Lock()
			v.latest = agg
			v.loaded = true
			v.mu.Unlock()

			v.l.Debug("aggregate updated", zap.Any("aggregate", agg))
			v.hub.publish(agg)
		}
		if ctx.Err() == nil {
			v.l.Warn("vote subscription ended, showing last known totals",
				zap.String("path", v.path), zap.Error(models.ErrStoreSubscriptionLost))
		}
	}()
	return nil
}

// Observe returns a stream of aggregates: the current one as soon as it is known, then one per remote
// change. The stream closes when ctx ends or the store subscription is lost.
func (v *Votes) Observe(ctx context.Context) (<-chan models.VoteAggregate, error) {
	v.mu.RLock()
	started := v.started
	v.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	ch, ok := v.hub.add(ctx)
	if !ok {
		return nil, models.ErrStoreSubscriptionLost
	}
	return ch, nil
}

// Latest returns the last aggregate seen and whether any snapshot has arrived yet.
func (v *Votes) Latest() (models.VoteAggregate, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.latest, v.loaded
}

func (v *Votes) CurrentClientChoice() models.Choice {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.choice
}

// RecordChoice marks this client as voted. The in-memory flag is set even if local storage fails,
// so the session cannot vote twice; the error is returned for logging.
func (v *Votes) RecordChoice(ctx context.Context, c models.Choice) error {
	if !c.Valid() {
		return models.ErrInvalidChoice
	}
	v.mu.Lock()
	v.choice = c
	v.mu.Unlock()

	if err := v.local.Set(ctx, UserVoteKey, string(c)); err != nil {
		return fmt.Errorf("synchronizer: persist local vote: %w", err)
	}
	return nil
}

func (v *Votes) Percentage(part int, agg models.VoteAggregate) int {
	return models.Percentage(part, agg)
}
