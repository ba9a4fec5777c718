package storage

import (
	"context"
	"testing"
	"time"
)

func TestBoltStoreSavesAndExpiresSnapshots(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		SnapshotTTL:     1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}
	ctx := context.Background()

	storeRaw, err := openBolt(dir+"/volunteers.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	_, seen, err := store.Snapshot(ctx, 1)
	if err != nil || seen {
		t.Fatalf("expected unknown volunteer, seen=%v err=%v", seen, err)
	}

	want := Snapshot{ID: 1, Available: true, UpdatedAt: "2025-01-01T00:00:00Z", Fingerprint: "abc"}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, seen, err := store.Snapshot(ctx, 1)
	if err != nil || !seen {
		t.Fatalf("expected stored snapshot, seen=%v err=%v", seen, err)
	}
	if got.Fingerprint != "abc" || !got.Available {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	_, seen, err = store.Snapshot(ctx, 1)
	if err != nil {
		t.Fatalf("Snapshot after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestBoltStoreKnownAndForget(t *testing.T) {
	store, err := NewStore("bbolt", t.TempDir()+"/nested/volunteers.db", Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		if err := store.Save(ctx, Snapshot{ID: id}); err != nil {
			t.Fatalf("Save %d: %v", id, err)
		}
	}
	ids, err := store.Known(ctx)
	if err != nil {
		t.Fatalf("Known: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("Known = %v, want [1 2 3]", ids)
	}

	if err := store.Forget(ctx, 2); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	ids, _ = store.Known(ctx)
	if len(ids) != 2 {
		t.Fatalf("Known after forget = %v", ids)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Save(context.Background(), Snapshot{ID: 1}); err != nil {
		t.Fatalf("noop store Save: %v", err)
	}
	if _, seen, _ := store.Snapshot(context.Background(), 1); seen {
		t.Fatalf("noop store must not remember snapshots")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("sqlite", "x", Options{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected missing path error")
	}
}
