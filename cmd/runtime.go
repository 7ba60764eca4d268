package cmd

import (
	"context"
	"fmt"
	"io"

	"visit-tracker/core/config"
	"visit-tracker/core/database"
	"visit-tracker/core/lock"
	"visit-tracker/core/logger"
	"visit-tracker/core/storage"
	"visit-tracker/feature/visits"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// connectDatabase opens the visit database; tests swap it to observe the pool.
var connectDatabase = database.Connect

// runtime is the wiring shared by the server and the CLI commands.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   *visits.GormStore
	locker  lock.Locker
	service *visits.Service
}

// newRuntime loads configuration and connects the visit store, the lock
// and, when enabled, the snapshot archive. On failure everything opened so
// far is closed again.
func newRuntime(ctx context.Context) (_ *runtime, err error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logg}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	rt.db, err = connectDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	rt.logger = logg.With(zap.String("driver", cfg.Database.Driver))

	rt.locker, err = lock.New(cfg.Lock, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lock: %w", err)
	}

	rt.store = visits.NewStore(rt.db, cfg.Visits.StoreTimeout())
	opts := []visits.Option{visits.WithCacheTTL(cfg.Visits.CacheTTL())}

	if cfg.Storage.Archive {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		archive := visits.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.ArchivePrefix)
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		opts = append(opts, visits.WithArchive(archive))
		rt.logger.Info("Snapshot archive enabled",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("prefix", cfg.Storage.ArchivePrefix))
	}

	rt.service = visits.NewService(rt.store, rt.locker, rt.logger, opts...)
	return rt, nil
}

// Close releases the lock backend and the database pool.
// Fields that were never opened are skipped.
func (r *runtime) Close() {
	if c, ok := r.locker.(io.Closer); ok {
		if err := c.Close(); err != nil {
			r.logger.Warn("Failed to close lock backend", zap.Error(err))
		}
	}
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				r.logger.Warn("Failed to close database", zap.Error(err))
			}
		}
	}
	_ = r.logger.Sync()
}
