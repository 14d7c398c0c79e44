package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fenilmodi00/lotto-backend/config"
	"github.com/fenilmodi00/lotto-backend/database"
	"github.com/fenilmodi00/lotto-backend/handlers"
	"github.com/fenilmodi00/lotto-backend/services"
	"github.com/fenilmodi00/lotto-backend/shared"
)

// pipeline is the wired ingestion stack for one command run
type pipeline struct {
	fetcher   services.PageFetcher
	ingestion *services.DrawIngestionService
	closers   []func()
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

func newPipeline(ctx context.Context, cfg *shared.UnifiedConfiguration) (*pipeline, error) {
	sink, closeSink, err := newDrawSink(ctx, cfg)
	if err != nil {
		return nil, err
	}

	fetcher := services.NewPageFetcher(cfg.Service)
	p := &pipeline{
		fetcher:   fetcher,
		ingestion: services.NewDrawIngestionService(services.NewDrawExtractor(fetcher, cfg.Service), sink),
		closers:   []func(){closeSink},
	}
	if httpFetcher, ok := fetcher.(*services.HTTPPageFetcher); ok {
		p.closers = append(p.closers, httpFetcher.Cleanup)
	}
	if cfg.Service.EnableMetrics {
		p.closers = append(p.closers, p.ingestion.LogSummary)
	}

	return p, nil
}

// newDrawSink builds the sink selected by --sink / SINK_MODE
func newDrawSink(ctx context.Context, cfg *shared.UnifiedConfiguration) (services.DrawSink, func(), error) {
	switch cfg.Storage.SinkMode {
	case shared.SinkModeRemote:
		store, err := newRemoteStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return services.NewRemoteDrawSink(store), func() {}, nil

	case shared.SinkModePostgres:
		repository, closeDB, err := newDrawRepository(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository, closeDB, nil

	default:
		return services.NewFileDrawStore(cfg.Storage), func() {}, nil
	}
}

// newDrawReader builds the read side for show and serve
func newDrawReader(ctx context.Context, cfg *shared.UnifiedConfiguration) (handlers.DrawReader, handlers.HealthChecker, func(), error) {
	switch cfg.Storage.SinkMode {
	case shared.SinkModePostgres:
		repository, closeDB, err := newDrawRepository(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository, repository.HealthCheck, closeDB, nil

	case shared.SinkModeRemote:
		return nil, nil, nil, shared.NewServiceError(shared.ErrorCategoryConfiguration, "UNSUPPORTED_READ_SINK",
			"the remote sink is write-only here; use 'lotto remote list lottos'", "cmd", "newDrawReader", false, nil)

	default:
		return services.NewFileDrawStore(cfg.Storage), nil, func() {}, nil
	}
}

func newRemoteStore(cfg *shared.UnifiedConfiguration) (*services.RemoteTableStore, error) {
	remote, err := config.NewRemoteStoreConfig(cfg.Remote.URL, cfg.Remote.Key)
	if err != nil {
		return nil, err
	}
	return services.NewRemoteTableStore(remote, cfg.Service), nil
}

func newDrawRepository(_ context.Context, cfg *shared.UnifiedConfiguration) (*database.DrawRepository, func(), error) {
	db, err := database.ConnectWithConfig(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return database.NewDrawRepository(db), func() { database.Close(db) }, nil
}

// parseDrawNo validates a positive draw number argument
func parseDrawNo(arg string) (int, error) {
	drawNo, err := strconv.Atoi(arg)
	if err != nil || drawNo <= 0 {
		return 0, fmt.Errorf("draw number must be a positive integer, got %q", arg)
	}
	return drawNo, nil
}
