package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/mbsearch/internal/adapters/driven/backend/azure"
	"github.com/custodia-labs/mbsearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mbsearch/internal/adapters/driven/encoding"
	dirsink "github.com/custodia-labs/mbsearch/internal/adapters/driven/sink/dir"
	memsink "github.com/custodia-labs/mbsearch/internal/adapters/driven/sink/memory"
	"github.com/custodia-labs/mbsearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mbsearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
	"github.com/custodia-labs/mbsearch/internal/core/services"
	"github.com/custodia-labs/mbsearch/internal/logger"
)

// bootstrap wires the driven adapters into the core services.
func bootstrap(configDir string) (*cli.Services, error) {
	logger.Section("Bootstrap")

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	logger.Debug("Config: %s", configStore.Path())

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("Settings: %v", err)
	}

	dataDir := ""
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	var (
		ledger     driven.ExportLedger
		closeStore = func() error { return nil }
	)
	if store, err := sqlite.NewStore(dataDir); err != nil {
		logger.Warn("Export history is kept in memory: %v", err)
		ledger = memory.NewExportLedger()
	} else {
		logger.Debug("Export ledger: %s", store.Path())
		ledger = store.ExportLedger()
		closeStore = store.Close
	}

	backend := azure.New(settings.Service)
	planner := services.NewPlanner(settings.Query)

	dates := encoding.NewDates(settings.Export.Timezone)
	encoders := []driven.ExportEncoder{
		encoding.NewCSVEncoder(dates),
		encoding.NewJSONEncoder(dates),
		encoding.NewXLSXEncoder(dates),
		encoding.NewYAMLEncoder(dates),
	}

	fileSink, err := dirsink.NewSink(settings.Export.Dir)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	logger.Debug("Export directory: %s", fileSink.Dir())
	downloads := memsink.NewSink(memsink.DefaultCapacity, func(jobID, filename string) string {
		return httpapi.DownloadPath(jobID, filename)
	})

	gate := services.NewExportGate()
	exportService := services.NewExportService(backend, planner, services.ExportOptions{
		Encoders: encoders,
		Sink:     fileSink,
		Ledger:   ledger,
		Settings: settings.Export,
		NewID:    uuid.NewString,
		Gate:     gate,
	})
	serverExport := services.NewExportService(backend, planner, services.ExportOptions{
		Encoders: encoders,
		Sink:     downloads,
		Ledger:   ledger,
		Settings: settings.Export,
		NewID:    uuid.NewString,
		Gate:     gate,
	})

	searchService := services.NewSearchService(backend, planner)
	itemService := services.NewItemService(backend, planner)

	reload := func() {
		next, err := settingsService.Get()
		if err != nil {
			logger.Warn("Settings reload failed: %v", err)
			return
		}
		backend.Configure(next.Service)
		planner.Configure(next.Query)
		exportService.Configure(next.Export)
		serverExport.Configure(next.Export)
		if err := dates.SetTimezone(next.Export.Timezone); err != nil {
			logger.Warn("Export timezone: %v", err)
		}
		logger.Info("Settings applied")
	}

	return &cli.Services{
		Search:   searchService,
		Session:  services.NewSearchSession(),
		Items:    itemService,
		Export:   exportService,
		Settings: settingsService,
		Server: &httpapi.Ports{
			Search:    searchService,
			Items:     itemService,
			Export:    serverExport,
			Downloads: downloads,
		},
		Watch: func(ctx context.Context) error {
			err := configStore.Watch(ctx, reload)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
		Close: closeStore,
	}, nil
}
