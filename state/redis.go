package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// KeyPrefix namespaces the plugin-state keys. Default "core:plugin".
	KeyPrefix string

	// ConnectTimeout is the maximum time to wait for connection
	// establishment. Default 5s.
	ConnectTimeout time.Duration
}

// RedisStore persists records in Redis. Update uses WATCH-based optimistic
// transactions: a concurrent write to the record key between read and
// commit aborts the pipeline and the transaction retries.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "core:plugin"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, prefix: opts.KeyPrefix}, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

// Update implements Store.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(ctx context.Context, tx Txn) error) error {
	key := s.key(id)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &redisTxn{rtx: rtx, key: key}
			if err := fn(ctx, tx); err != nil {
				return err
			}
			return tx.commit(ctx)
		}, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooManyConflicts
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin state %s: %w", id, err)
	}
	return decodeRecord(data)
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	var out []Record
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisTxn struct {
	rtx     *redis.Tx
	key     string
	put     *Record
	deleted bool
}

func (t *redisTxn) Get(ctx context.Context) (*Record, error) {
	if t.deleted {
		return nil, nil
	}
	if t.put != nil {
		rec := *t.put
		return &rec, nil
	}
	data, err := t.rtx.Get(ctx, t.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

func (t *redisTxn) Put(ctx context.Context, rec Record) error {
	t.put = &rec
	t.deleted = false
	return nil
}

func (t *redisTxn) Delete(ctx context.Context) error {
	t.put = nil
	t.deleted = true
	return nil
}

func (t *redisTxn) commit(ctx context.Context) error {
	if t.put == nil && !t.deleted {
		return nil
	}
	_, err := t.rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if t.deleted {
			pipe.Del(ctx, t.key)
			return nil
		}
		data, err := json.Marshal(t.put)
		if err != nil {
			return fmt.Errorf("failed to marshal plugin state: %w", err)
		}
		pipe.Set(ctx, t.key, data, 0)
		return nil
	})
	return err
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode plugin state: %w", err)
	}
	return &rec, nil
}
