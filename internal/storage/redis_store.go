package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// redisStore keeps one key per volunteer with a TTL plus an index set of ids.
// Index members whose key has expired are pruned lazily by Known.
type redisStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func openRedis(opts Options) (Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newRedisStore(rdb, opts), nil
}

func newRedisStore(rdb redis.UniversalClient, opts Options) *redisStore {
	opts = normalizeOptions(opts)
	return &redisStore{rdb: rdb, prefix: opts.RedisPrefix, ttl: opts.SnapshotTTL}
}

func (r *redisStore) key(id int64) string {
	return r.prefix + ":volunteer:" + strconv.FormatInt(id, 10)
}

func (r *redisStore) indexKey() string {
	return r.prefix + ":volunteers"
}

func (r *redisStore) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func (r *redisStore) Snapshot(ctx context.Context, id int64) (Snapshot, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("redis get snapshot %d: %w", id, err)
	}

	var snap Snapshot
	if err := sonic.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot %d: %w", id, err)
	}
	return snap, true, nil
}

func (r *redisStore) Save(ctx context.Context, s Snapshot) error {
	payload, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(s.ID), payload, r.ttl)
		p.SAdd(ctx, r.indexKey(), s.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save snapshot %d: %w", s.ID, err)
	}
	return nil
}

func (r *redisStore) Forget(ctx context.Context, id int64) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.key(id))
		p.SRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis forget snapshot %d: %w", id, err)
	}
	return nil
}

func (r *redisStore) Known(ctx context.Context) ([]int64, error) {
	members, err := r.rdb.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list snapshots: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		n, err := r.rdb.Exists(ctx, r.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis check snapshot %d: %w", id, err)
		}
		if n == 0 {
			r.rdb.SRem(ctx, r.indexKey(), m)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
