package api

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/db/repositories"
	"heli-training/logbook/internal/jobs"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/providers"
	"heli-training/logbook/internal/services"
	"heli-training/logbook/internal/store"
	"heli-training/logbook/internal/workers"
)

type Repositories struct {
	SyncHistory  *repositories.SyncHistoryRepo
	LoginHistory *repositories.LoginHistoryRepo
}

type Services struct {
	Cache      common.CacheInterface
	Remote     *providers.SheetsProvider
	Sync       *services.SyncService
	Validation *services.ValidationService
	Flights    *services.FlightLogService
	Stats      *services.StatsService
	Auth       *services.AuthService
}

type Dependencies struct {
	Config   config.Config
	Roster   config.Roster
	Metrics  *metrics.MetricsRegistry
	SQL      *sqlx.DB
	Store    store.RecordStore
	Repo     *Repositories
	Services *Services
	Workers  *workers.WorkersContainer
	SyncJob  *jobs.LogbookSyncJob

	closers []io.Closer
}

// InitDependencies wires the stores, services and background workers. The
// scheduled sync is not started here; see StartJobs.
func InitDependencies(
	ctx context.Context,
	cfg config.Config,
	roster config.Roster,
	orm *gorm.DB,
	sqlDB *sqlx.DB,
	metricsReg *metrics.MetricsRegistry,
) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Roster:  roster,
		Metrics: metricsReg,
		SQL:     sqlDB,
	}

	cache := newCache(ctx, cfg)
	deps.closers = append(deps.closers, cache)

	inner, err := newRecordStore(cfg, orm)
	if err != nil {
		return nil, err
	}
	if closer, ok := inner.(io.Closer); ok {
		deps.closers = append(deps.closers, closer)
	}
	deps.Store = store.NewCachedStore(inner, cache, cfg.CacheTTL, metricsReg)

	repos := &Repositories{
		SyncHistory:  repositories.NewSyncHistoryRepo(orm),
		LoginHistory: repositories.NewLoginHistoryRepo(sqlDB),
	}

	remote := providers.NewSheetsProvider(cfg.RemoteEndpoint, cfg.RemoteTimeout)
	deps.Workers = workers.InitWorkers(ctx, cfg, remote, metricsReg)
	dispatcher := deps.Workers.Dispatcher

	signer := auth.NewTokenSigner([]byte(cfg.JWTSecret), cfg.JWTTTL, cache)

	syncSvc := services.NewSyncService(remote, deps.Store, cfg.Location(), repos.SyncHistory, metricsReg)
	deps.Repo = repos
	deps.Services = &Services{
		Cache:      cache,
		Remote:     remote,
		Sync:       syncSvc,
		Validation: services.NewValidationService(deps.Store, dispatcher, metricsReg),
		Flights:    services.NewFlightLogService(deps.Store, dispatcher, roster),
		Stats:      services.NewStatsService(deps.Store, roster),
		Auth:       services.NewAuthService(roster, signer, repos.LoginHistory, dispatcher),
	}
	deps.SyncJob = jobs.NewLogbookSyncJob(syncSvc, repos.SyncHistory, cfg.SyncOnStart)

	if cfg.RemoteEndpoint == "" {
		logging.Warn("REMOTE_ENDPOINT is not set: sync and pushes will fail until it is configured")
	}
	return deps, nil
}

// StartJobs launches the scheduled sync.
func (d *Dependencies) StartJobs(ctx context.Context) {
	jobs.InitializeJobs(ctx, d.SyncJob, d.Config.SyncInterval)
}

// Close flushes queued pushes and releases the stores.
func (d *Dependencies) Close() {
	if d.Workers != nil {
		d.Workers.Close()
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			logging.Warn("Failed to close dependency", "error", err)
		}
	}
}

func newCache(ctx context.Context, cfg config.Config) common.CacheInterface {
	if cfg.CacheDriver == config.CacheDriverRedis {
		client, err := common.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			logging.Info("Using Redis cache", "addr", cfg.Redis.Addr())
			return common.NewRedisCacheService(client, "logbook:")
		}
		logging.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
	}
	return common.NewMemoryCache(cfg.CacheTTL, 10*time.Minute)
}

func newRecordStore(cfg config.Config, orm *gorm.DB) (store.RecordStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQL:
		logging.Info("Using SQL record store")
		return repositories.NewFlightLogRepo(orm), nil
	case config.StoreDriverBadger, "":
		s, err := store.OpenBadgerStore(store.DefaultBadgerConfig(cfg.BadgerPath))
		if err != nil {
			return nil, err
		}
		logging.Info("Using Badger record store", "path", cfg.BadgerPath)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
