package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"cliphub/config"
	"cliphub/internal/domain/lifecycle"
	"cliphub/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	poolStatsInterval = 5 * time.Second
	poolWaitWarnFloor = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the Postgres connection pool through go-lib and binds its
// lifetime to the fx lifecycle: ping on start, close on stop, and a
// background sampler watching for connection-pool contention in between.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}

	// Single-statement writes don't need GORM's implicit transaction;
	// multi-step atomicity goes through txManager.Execute.
	db = db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	samplerCtx, stopSampler := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			pingCtx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(pingCtx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			go samplePoolStats(samplerCtx, params.Logger, sqlDB)

			return nil
		},
		OnStop: func(_ context.Context) error {
			stopSampler()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// samplePoolStats periodically diffs sql.DB pool counters and logs intervals
// where goroutines had to wait for a connection. Quiet intervals log nothing.
func samplePoolStats(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waits := cur.WaitCount - prev.WaitCount
			waited := cur.WaitDuration - prev.WaitDuration
			prev = cur

			if waits == 0 {
				continue
			}

			level := slog.LevelDebug
			if waited >= poolWaitWarnFloor {
				level = slog.LevelWarn
			}
			logger.LogAttrs(ctx, level, "Postgres pool contention",
				slog.Int64("waits", waits),
				slog.Duration("waited", waited),
				slog.Duration("avgWait", waited/time.Duration(waits)),
				slog.Int("open", cur.OpenConnections),
				slog.Int("inUse", cur.InUse),
				slog.Int("idle", cur.Idle),
				slog.Int("maxOpen", cur.MaxOpenConnections),
			)
		}
	}
}
