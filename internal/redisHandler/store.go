package redishandler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
)

var (
	ErrUnsupportedType = errors.New("unsupported redis type")
	ErrEmptyDocument   = errors.New("empty document")
)

// Store is the shared RemoteStore on Redis. A written path is a hash, an appended path is a stream,
// and every change is announced on a per-path pub/sub channel so subscribers can re-read the path.
type Store struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
	l       *zap.Logger
}

func New(rdb *redis.Client, prefix string, timeout time.Duration, l *zap.Logger) *Store {
	return &Store{
		rdb:     rdb,
		prefix:  prefix,
		timeout: timeout,
		l:       l,
	}
}

func (s *Store) key(path string) string {
	return s.prefix + path
}

func (s *Store) channel(path string) string {
	return s.prefix + "changed:" + path
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Write replaces the hash at path in one MULTI/EXEC so readers never see a half-written document.
func (s *Store) Write(ctx context.Context, path string, doc store.Document) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := s.key(path)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(doc) > 0 {
		pipe.HSet(ctx, key, map[string]interface{}(doc))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.l.Debug("failed to write document", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redishandler: write %s: %w", path, err)
	}
	s.l.Debug("document written", zap.String("key", key), zap.Any("doc", doc))

	s.notify(ctx, path)
	return nil
}

// AppendUnique adds an entry to the stream at path. The stream id is the child id.
func (s *Store) AppendUnique(ctx context.Context, path string, doc store.Document) (string, error) {
	if len(doc) == 0 {
		return "", fmt.Errorf("redishandler: append %s: %w", path, ErrEmptyDocument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := s.key(path)
	id, err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		Values: map[string]interface{}(doc),
	}).Result()
	if err != nil {
		s.l.Debug("failed to append entry", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("redishandler: append %s: %w", path, err)
	}
	s.l.Debug("entry appended", zap.String("key", key), zap.String("id", id))

	s.notify(ctx, path)
	return id, nil
}

// notify runs after the data is committed. A lost notification only delays subscribers until the next
// change, so it is logged rather than returned.
func (s *Store) notify(ctx context.Context, path string) {
	if err := s.rdb.Publish(ctx, s.channel(path), path).Err(); err != nil {
		s.l.Warn("failed to publish change", zap.String("path", path), zap.Error(err))
	}
}

func (s *Store) Subscribe(ctx context.Context, path string) (<-chan store.Snapshot, error) {
	ps := s.rdb.Subscribe(ctx, s.channel(path))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redishandler: subscribe %s: %w", path, err)
	}

	out := make(chan store.Snapshot, 1)
	go s.pump(ctx, path, ps, out)
	return out, nil
}

func (s *Store) pump(ctx context.Context, path string, ps *redis.PubSub, out chan store.Snapshot) {
	defer close(out)
	defer ps.Close()

	s.refresh(ctx, path, out)

	// go-redis resubscribes after a dropped connection; its confirmation triggers a re-read so
	// changes made during the gap show up.
	msgs := ps.ChannelWithSubscriptions()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-msgs:
			if !ok {
				s.l.Warn("pubsub channel closed", zap.String("path", path))
				return
			}
			// Collapse a burst of notifications into one read.
			for drained := false; !drained; {
				select {
				case _, ok := <-msgs:
					if !ok {
						return
					}
				default:
					drained = true
				}
			}
			s.refresh(ctx, path, out)
		}
	}
}

func (s *Store) refresh(ctx context.Context, path string, out chan store.Snapshot) {
	rctx, cancel := s.withTimeout(ctx)
	defer cancel()

	snap, err := s.Read(rctx, path)
	if err != nil {
		if ctx.Err() == nil {
			s.l.Warn("failed to read snapshot", zap.String("path", path), zap.Error(err))
		}
		return
	}
	store.Offer(out, snap)
}
