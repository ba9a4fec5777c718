package app

import (
	"context"
	"fmt"
	"time"

	"github.com/handii-app/volunteer-directory/internal/config"
	"github.com/handii-app/volunteer-directory/internal/logger"
	"github.com/handii-app/volunteer-directory/internal/storage"
	"github.com/handii-app/volunteer-directory/internal/watcher"
	"github.com/handii-app/volunteer-directory/pkg/hubs"
	"github.com/handii-app/volunteer-directory/pkg/publishers"
)

// Watcher is the change-feed runtime. It polls the directory on an interval,
// diffs against the snapshot store and publishes events through the
// configured publishers.
type Watcher struct {
	cfg      *config.Config
	fanout   *publishers.Fanout
	service  *watcher.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	catalog, err := hubs.LoadCatalog(cfg.HubsFile)
	if err != nil {
		return nil, fmt.Errorf("load hub catalog: %w", err)
	}
	hubIDs := make([]string, 0, len(catalog.All()))
	for _, h := range catalog.All() {
		hubIDs = append(hubIDs, h.ID)
	}
	log.InfoObj("hub catalog loaded", "hubs_meta", map[string]any{
		"count": len(hubIDs),
		"ids":   hubIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		RedisDB:         cfg.RedisDB,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := NewDirectoryClient(cfg, log)
	service := watcher.NewService(client, catalog, fanout, store, log, cfg.WatchLimit)

	return &Watcher{
		cfg:      cfg,
		fanout:   fanout,
		service:  service,
		interval: cfg.WatchInterval,
		log:      log,
		store:    store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	w.log.InfoObj("watch loop starting", "watcher_state", map[string]any{
		"base_url":         w.cfg.DirectoryBaseURL,
		"publishers_count": w.fanout.Size(),
		"watch_interval":   w.interval.String(),
	})

	if err := w.runOnce(ctx); err != nil {
		w.log.ErrorObj("initial watch pass failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watch loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled watch pass failed", "error", err)
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) error {
	start := time.Now()
	res, err := w.service.RunOnce(ctx)
	w.log.DebugObj("watch pass timing", "watch_meta", map[string]any{
		"seen":       res.Seen,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

// close releases publishers and the storage backend, logging failures.
func (w *Watcher) close() {
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publisher close failed", "error", err)
	}
	if w.store == nil {
		return
	}
	if err := w.store.Close(); err != nil {
		w.log.ErrorObj("storage close failed", "error", err)
	}
}
