package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-engine/internal/cache"
	"github.com/SAP-F-2025/exam-engine/internal/config"
	"github.com/SAP-F-2025/exam-engine/internal/repositories"
	"github.com/SAP-F-2025/exam-engine/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-engine/internal/repositories/sqlite"
	"github.com/SAP-F-2025/exam-engine/pkg"
)

// openSnapshotStore builds the snapshot repository selected by SNAPSHOT_STORE.
// The returned func releases its connections.
func openSnapshotStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.SnapshotRepository, func(), error) {
	noop := func() {}

	switch cfg.SnapshotStore {
	case config.SnapshotStorePostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, noop, err
		}
		if err := postgres.Migrate(db); err != nil {
			_ = pkg.CloseDatabase(db)
			return nil, noop, fmt.Errorf("failed to migrate snapshot table: %w", err)
		}
		return postgres.NewSnapshotPostgreSQL(db), func() { _ = pkg.CloseDatabase(db) }, nil

	case config.SnapshotStoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.SnapshotStoreRedis:
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		repo := repositories.NewRedisSnapshotRepository(cache.NewRedisCache(client, logger), cfg.SnapshotTTL)
		return repo, func() { _ = client.Close() }, nil

	default:
		logger.Warn("Submitted answers are kept in memory and lost on restart")
		return repositories.NewMemorySnapshotRepository(), noop, nil
	}
}
