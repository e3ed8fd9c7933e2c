package redishandler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
)

// Read loads the full value at path: a hash becomes Doc, a stream becomes Children in stream order.
func (s *Store) Read(ctx context.Context, path string) (store.Snapshot, error) {
	key := s.key(path)
	snap := store.Snapshot{Path: path}

	typ, err := s.rdb.Type(ctx, key).Result()
	if err != nil {
		return snap, fmt.Errorf("redishandler: type %s: %w", key, err)
	}

	switch typ {
	case "none":
		return snap, nil
	case "hash":
		data, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return snap, fmt.Errorf("redishandler: hgetall %s: %w", key, err)
		}
		snap.Doc = make(store.Document, len(data))
		for k, v := range data {
			snap.Doc[k] = v
		}
	case "stream":
		msgs, err := s.rdb.XRange(ctx, key, "-", "+").Result()
		if err != nil {
			return snap, fmt.Errorf("redishandler: xrange %s: %w", key, err)
		}
		snap.Children = make([]store.Child, 0, len(msgs))
		for _, msg := range msgs {
			snap.Children = append(snap.Children, store.Child{ID: msg.ID, Doc: store.Document(msg.Values)})
		}
	default:
		return snap, fmt.Errorf("redishandler: %s holds a %s: %w", key, typ, ErrUnsupportedType)
	}

	s.l.Debug("snapshot read",
		zap.String("key", key),
		zap.String("type", typ),
		zap.Int("fields", len(snap.Doc)),
		zap.Int("children", len(snap.Children)))
	return snap, nil
}
