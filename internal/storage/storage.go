package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Package storage remembers the last observed state of each volunteer so the
// watcher can tell what changed between polls.

// Snapshot is the stored view of one volunteer.
type Snapshot struct {
	ID          int64     `json:"id"`
	Available   bool      `json:"available"`
	UpdatedAt   string    `json:"updated_at,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	SeenAt      time.Time `json:"seen_at"`
}

// Store persists volunteer snapshots.
type Store interface {
	Close() error
	Snapshot(ctx context.Context, id int64) (Snapshot, bool, error)
	Save(ctx context.Context, s Snapshot) error
	Forget(ctx context.Context, id int64) error
	Known(ctx context.Context) ([]int64, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

const (
	defaultSnapshotTTL     = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
	defaultRedisPrefix     = "handii"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	case "redis":
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, fmt.Errorf("redis storage requires an address")
		}
		return openRedis(opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if strings.TrimSpace(opts.RedisPrefix) == "" {
		opts.RedisPrefix = defaultRedisPrefix
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                           { return nil }
func (noopStore) Snapshot(context.Context, int64) (Snapshot, bool, error) { return Snapshot{}, false, nil }
func (noopStore) Save(context.Context, Snapshot) error                   { return nil }
func (noopStore) Forget(context.Context, int64) error                    { return nil }
func (noopStore) Known(context.Context) ([]int64, error)                 { return nil, nil }
