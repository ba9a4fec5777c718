package app

import (
	"fmt"

	"github.com/handii-app/volunteer-directory/internal/config"
	"github.com/handii-app/volunteer-directory/internal/logger"
	"github.com/handii-app/volunteer-directory/pkg/hubs"
	"github.com/handii-app/volunteer-directory/pkg/volunteers"
)

// Console bundles what the interactive CLI needs: the directory client, the
// hub catalog and a hub finder bound to the client.
type Console struct {
	Client  *volunteers.Client
	Catalog *hubs.Catalog
	Finder  *hubs.Finder
	log     logger.Logger
}

// NewConsole builds a console runtime from config.
func NewConsole(cfg *config.Config, log logger.Logger) (*Console, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	catalog, err := hubs.LoadCatalog(cfg.HubsFile)
	if err != nil {
		return nil, fmt.Errorf("load hub catalog: %w", err)
	}
	log.DebugObj("hub catalog loaded", "hubs_meta", map[string]any{
		"count": len(catalog.All()),
	})

	client := NewDirectoryClient(cfg, log)
	return &Console{
		Client:  client,
		Catalog: catalog,
		Finder:  hubs.NewFinder(client),
		log:     log,
	}, nil
}
