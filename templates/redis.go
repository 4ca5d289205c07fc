package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"captionforge/style"
)

const keyPrefix = "captionforge:template:"
const indexKey = "captionforge:templates"

// RedisStore persists templates in Redis. Write exclusivity per name is
// enforced with an optimistic WATCH transaction on the template key, so
// two interleaved partial updates to the same name cannot both commit.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects a registry to the given Redis address.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) key(name string) string { return keyPrefix + name }

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, t Template) (Template, error) {
	if err := ValidateName(t.Name); err != nil {
		return Template{}, err
	}
	if err := style.Validate(&t.Record); err != nil {
		return Template{}, err
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	b, err := json.Marshal(t)
	if err != nil {
		return Template{}, err
	}
	ok, err := s.rdb.SetNX(ctx, s.key(t.Name), b, 0).Result()
	if err != nil {
		return Template{}, fmt.Errorf("redis create: %w", err)
	}
	if !ok {
		return Template{}, fmt.Errorf("%w: template %q already exists", style.ErrConflict, t.Name)
	}
	if err := s.rdb.SAdd(ctx, indexKey, t.Name).Err(); err != nil {
		return Template{}, fmt.Errorf("redis index: %w", err)
	}
	return t, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, name string) (Template, error) {
	b, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Template{}, fmt.Errorf("%w: template %q", style.ErrNotFound, name)
	}
	if err != nil {
		return Template{}, fmt.Errorf("redis get: %w", err)
	}
	var t Template
	if err := json.Unmarshal(b, &t); err != nil {
		return Template{}, fmt.Errorf("decode template %q: %w", name, err)
	}
	return t, nil
}

// Update implements Store using a WATCH/MULTI round so a concurrent
// writer to the same name forces a retry instead of a torn write.
func (s *RedisStore) Update(ctx context.Context, name string, ov *style.Overrides) (Template, error) {
	var updated Template
	key := s.key(name)

	txn := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: template %q", style.ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		var t Template
		if err := json.Unmarshal(b, &t); err != nil {
			return err
		}
		merged, err := style.Resolve(t.Record, ov)
		if err != nil {
			return err
		}
		t.Record = merged
		t.UpdatedAt = time.Now().UTC()

		out, err := json.Marshal(t)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = t
		}
		return err
	}

	for i := 0; i < 5; i++ {
		err := s.rdb.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Template{}, err
		}
		return updated, nil
	}
	return Template{}, fmt.Errorf("redis update %q: too many conflicts", name)
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if name == DefaultName {
		return fmt.Errorf("%w: the default template cannot be deleted", style.ErrForbidden)
	}
	n, err := s.rdb.Del(ctx, s.key(name)).Result()
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: template %q", style.ErrNotFound, name)
	}
	return s.rdb.SRem(ctx, indexKey, name).Err()
}

// Duplicate implements Store.
func (s *RedisStore) Duplicate(ctx context.Context, source, newName string) (Template, error) {
	if err := ValidateName(newName); err != nil {
		return Template{}, err
	}
	src, err := s.Get(ctx, source)
	if err != nil {
		return Template{}, err
	}
	dup := src
	dup.Name = newName
	dup.IsDefault = false
	dup.CreatedAt = time.Time{}
	return s.Create(ctx, dup)
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context) ([]Template, error) {
	names, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	out := make([]Template, 0, len(names))
	for _, name := range names {
		t, err := s.Get(ctx, name)
		if errors.Is(err, style.ErrNotFound) {
			continue // index entry without a key; skip
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
