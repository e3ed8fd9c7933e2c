package synchronizer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/internal/models"
	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
)

// Comments materialises the whole comment collection on every snapshot, newest first.
// Slices handed to observers are shared and must not be modified.
type Comments struct {
	remote store.RemoteStore
	path   string
	l      *zap.Logger

	mu      sync.RWMutex
	latest  []models.Comment
	loaded  bool
	started bool

	hub *hub[[]models.Comment]
}

func NewComments(remote store.RemoteStore, path string, l *zap.Logger) *Comments {
	return &Comments{
		remote: remote,
		path:   path,
		l:      l,
		hub:    newHub[[]models.Comment](),
	}
}

func (c *Comments) Start(ctx context.Context) error {
	snaps, err := c.remote.Subscribe(ctx, c.path)
	if err != nil {
		return fmt.Errorf("synchronizer: subscribe %s: %w", c.path, err)
	}
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	go func() {
		defer c.hub.shutdown()
		for snap := range snaps {
			feed := c.materialize(snap)

			c.mu.Lock()
			c.latest = feed
			c.loaded = true
			c.mu.Unlock()

			c.l.Debug("comment feed updated", zap.Int("comments", len(feed)))
			c.hub.publish(feed)
		}
		if ctx.Err() == nil {
			c.l.Warn("comment subscription ended, showing last known comments",
				zap.String("path", c.path), zap.Error(models.ErrStoreSubscriptionLost))
		}
	}()
	return nil
}

func (c *Comments) materialize(snap store.Snapshot) []models.Comment {
	feed := make([]models.Comment, 0, len(snap.Children))
	for _, child := range snap.Children {
		comment, err := models.DecodeComment(child.ID, child.Doc)
		if err != nil {
			c.l.Warn("skipping comment", zap.String("id", child.ID), zap.Error(err))
			continue
		}
		feed = append(feed, comment)
	}
	SortComments(feed)
	return feed
}

// Observe streams the sorted feed: the current one once known, then one per remote change.
func (c *Comments) Observe(ctx context.Context) (<-chan []models.Comment, error) {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	ch, ok := c.hub.add(ctx)
	if !ok {
		return nil, models.ErrStoreSubscriptionLost
	}
	return ch, nil
}

// Latest returns a copy of the last feed seen and whether any snapshot has arrived yet.
func (c *Comments) Latest() ([]models.Comment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Comment, len(c.latest))
	copy(out, c.latest)
	return out, c.loaded
}

// SortComments orders by CreatedAt, newest first. Equal timestamps keep their store order.
func SortComments(cs []models.Comment) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].CreatedAt > cs[j].CreatedAt
	})
}
