package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/imgscout/internal/adapters/driven/config/file"
	"github.com/custodia-labs/imgscout/internal/adapters/driven/imgur"
	"github.com/custodia-labs/imgscout/internal/adapters/driven/metrics"
	"github.com/custodia-labs/imgscout/internal/adapters/driven/netprobe"
	"github.com/custodia-labs/imgscout/internal/adapters/driven/oauth"
	"github.com/custodia-labs/imgscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/imgscout/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/cli"
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
	"github.com/custodia-labs/imgscout/internal/core/services"
	"github.com/custodia-labs/imgscout/internal/logger"
)

// buildServices is the composition root. It is called once per process.
func buildServices(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	logger.Debug("config: %s", configStore.Path())

	var (
		store      driven.CommentStore
		closeStore func() error
	)
	if opts.Ephemeral {
		store = memory.NewCommentStore()
	} else {
		dir := opts.DataDir
		if dir == "" {
			dir = settings.Storage.DataDir
		}
		sqliteStore, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("opening comment store: %w", err)
		}
		store = sqliteStore
		closeStore = sqliteStore.Close
		logger.Debug("comments: %s", sqliteStore.Path())
	}

	client := imgur.NewClient(imgur.Config{
		BaseURL:           settings.Catalog.BaseURL,
		AccessToken:       settings.Catalog.AccessToken,
		RequestsPerSecond: settings.Catalog.RequestsPerSecond,
	})
	probe := netprobe.New(settings.Network.ProbeAddress)
	probe.Warm()
	recorder := metrics.NewRecorder()

	repo := services.NewRepository(client, store, probe,
		services.WithMetrics(recorder),
		services.WithAuthorization(settings.Catalog.Authorization()),
	)

	watch := func(ctx context.Context) (func(), error) {
		w := file.NewWatcher(configStore, func() {
			applySettings(settingsService, repo, probe)
		})
		if err := w.Start(ctx); err != nil {
			return nil, err
		}
		return func() {
			if err := w.Close(); err != nil {
				logger.Warn("closing config watcher: %v", err)
			}
		}, nil
	}

	return &cli.Services{
		Repository: repo,
		Settings:   settingsService,
		Watch:      watch,
		Metrics:    recorder.Handler(),
		Exchanger: func(catalog domain.CatalogSettings) driven.TokenExchanger {
			return oauth.NewExchanger(catalog)
		},
		Close: func(ctx context.Context) error {
			err := repo.Close(ctx)
			if closeStore != nil {
				err = errors.Join(err, closeStore())
			}
			return err
		},
	}, nil
}

// applySettings pushes reloaded settings into the running repository.
// The catalog endpoint and access token are fixed for the life of the client;
// the Client-ID header and connectivity cache take effect immediately.
func applySettings(settingsService driving.SettingsService, repo *services.Repository, probe *netprobe.Probe) {
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reloading settings: %v", err)
		return
	}
	repo.SetAuthorization(settings.Catalog.Authorization())
	probe.Invalidate()
	logger.Info("config reloaded")
}
