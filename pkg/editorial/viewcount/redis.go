// Package viewcount buffers public post views in Redis and periodically moves
// them into the repository.
package viewcount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

const (
	// DefaultKeyPrefix namespaces the counter keys
	DefaultKeyPrefix = "editorial:views:"

	flushBatchSize = 500
)

// Store receives flushed view deltas
type Store interface {
	AddViewCount(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

// RedisCounter is an editorial.ViewCounter that INCRs a per-post key and remembers
// the post in a dirty set until the next Flush.
type RedisCounter struct {
	client redis.Cmdable
	store  Store
	prefix string
	logger *slog.Logger
}

var _ editorial.ViewCounter = (*RedisCounter)(nil)

// Option configures a RedisCounter
type Option func(*RedisCounter)

// WithKeyPrefix overrides DefaultKeyPrefix
func WithKeyPrefix(prefix string) Option {
	return func(c *RedisCounter) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger used by Flush
func WithLogger(logger *slog.Logger) Option {
	return func(c *RedisCounter) {
		c.logger = logger
	}
}

// NewRedisCounter creates a counter buffering views in client and flushing them to store
func NewRedisCounter(client redis.Cmdable, store Store, opts ...Option) *RedisCounter {
	c := &RedisCounter{
		client: client,
		store:  store,
		prefix: DefaultKeyPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCounter) countKey(id uuid.UUID) string {
	return c.prefix + id.String()
}

func (c *RedisCounter) dirtyKey() string {
	return c.prefix + "dirty"
}

// Increment records one view. The returned count is the stored count plus the
// views still waiting in Redis.
func (c *RedisCounter) Increment(ctx context.Context, post *editorial.Post) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, c.countKey(post.ID))
		pipe.SAdd(ctx, c.dirtyKey(), post.ID.String())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment view count for post %s: %w", post.ID, err)
	}
	return post.ViewCount + incr.Val(), nil
}

// Pending returns the views of a post not yet flushed
func (c *RedisCounter) Pending(ctx context.Context, id uuid.UUID) (int64, error) {
	n, err := c.client.Get(ctx, c.countKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Flush moves every pending delta into the store and returns the number of posts
// updated. A post removed by the time of the flush drops its views. A failed
// store write puts the delta back for the next flush; the failed post is not
// retried within the same call.
func (c *RedisCounter) Flush(ctx context.Context) (int, error) {
	flushed := 0
	var errs []error
	var failed []pendingViews

	// Deltas of failed writes go back only once the dirty set is drained
	defer func() {
		for _, p := range failed {
			c.restore(context.WithoutCancel(ctx), p.id, p.delta)
		}
	}()

	for {
		// Popping before GETDEL lets a concurrent Increment mark the post dirty again
		members, err := c.client.SPopN(ctx, c.dirtyKey(), flushBatchSize).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			errs = append(errs, fmt.Errorf("pop dirty posts: %w", err))
			return flushed, errors.Join(errs...)
		}
		if len(members) == 0 {
			break
		}

		for _, member := range members {
			id, err := uuid.Parse(member)
			if err != nil {
				c.logger.Warn("dropping malformed view counter member", "member", member)
				continue
			}
			ok, delta, err := c.flushOne(ctx, id)
			if err != nil {
				failed = append(failed, pendingViews{id: id, delta: delta})
				errs = append(errs, err)
				continue
			}
			if ok {
				flushed++
			}
		}

		if len(members) < flushBatchSize {
			break
		}
	}

	if flushed > 0 {
		c.logger.Info("flushed view counts", "posts", flushed)
	}
	return flushed, errors.Join(errs...)
}

type pendingViews struct {
	id    uuid.UUID
	delta int64
}

// flushOne moves the delta of one post. On failure it returns the delta that
// still has to be put back, zero when the counter key was left untouched.
func (c *RedisCounter) flushOne(ctx context.Context, id uuid.UUID) (bool, int64, error) {
	key := c.countKey(id)
	delta, err := c.client.GetDel(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("read pending views of post %s: %w", id, err)
	}
	if delta <= 0 {
		return false, 0, nil
	}

	if _, err := c.store.AddViewCount(ctx, id, delta); err != nil {
		if errors.Is(err, editorial.ErrNotFound) {
			c.logger.Debug("dropping views of deleted post", "post_id", id, "views", delta)
			return false, 0, nil
		}
		return false, delta, fmt.Errorf("store %d views of post %s: %w", delta, id, err)
	}
	return true, 0, nil
}

func (c *RedisCounter) restore(ctx context.Context, id uuid.UUID, delta int64) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if delta > 0 {
			pipe.IncrBy(ctx, c.countKey(id), delta)
		}
		pipe.SAdd(ctx, c.dirtyKey(), id.String())
		return nil
	})
	if err != nil {
		c.logger.Error("lost pending views", "post_id", id, "views", delta, "error", err)
	}
}
