package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/config"
	"github.com/sells-group/vendor-geo/internal/db"
	"github.com/sells-group/vendor-geo/internal/discovery"
	"github.com/sells-group/vendor-geo/internal/enrich"
	"github.com/sells-group/vendor-geo/internal/insights"
	"github.com/sells-group/vendor-geo/internal/metrics"
	"github.com/sells-group/vendor-geo/internal/postal"
	"github.com/sells-group/vendor-geo/internal/proximity"
	"github.com/sells-group/vendor-geo/internal/resilience"
)

// appEnv holds the wired services for one command invocation.
type appEnv struct {
	Pool      *pgxpool.Pool
	Postal    postal.Loader
	Discovery *discovery.Service
	Insights  *insights.Engine
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Postal != nil {
		_ = e.Postal.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
}

// initEnv validates cfg for mode, connects to Postgres and builds the discovery
// and insights services. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
	if err != nil {
		return nil, err
	}
	env := &appEnv{Pool: pool}

	dir, err := openPostal(ctx, cfg.Postal, pool)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Postal = dir

	env.Discovery = buildDiscovery(pool, cfg)
	env.Insights = insights.NewEngine(insights.NewPostgresStore(pool), dir, cfg.Insights)
	return env, nil
}

// buildDiscovery wires the spatial index behind a circuit breaker, the
// bounding-box fallback and the retrying enrichment joiner.
func buildDiscovery(pool db.Pool, c *config.Config) *discovery.Service {
	breaker := resilience.NewCircuitBreaker("spatial_index", resilience.BreakerFromConfig(c.Resilience))
	if err := metrics.WatchBreaker(prometheus.DefaultRegisterer, "spatial_index", func() float64 {
		return float64(breaker.State())
	}); err != nil {
		zap.L().Warn("breaker state gauge not registered", zap.Error(err))
	}
	nearby := proximity.NewResolver(
		proximity.NewPrimaryQuery(pool, breaker),
		proximity.NewFallbackQuery(pool),
	)
	joiner := enrich.NewJoiner(enrich.NewPostgresStore(pool), resilience.RetryFromConfig(c.Resilience))
	return discovery.NewService(nearby, joiner, c.Discovery)
}

// openPostal opens the configured postal directory. The SQLite file is
// migrated on open; pool may be nil for the sqlite driver.
func openPostal(ctx context.Context, pc config.PostalConfig, pool db.Pool) (postal.Loader, error) {
	switch pc.Driver {
	case "postgres":
		if pool == nil {
			return nil, eris.New("postal: postgres driver requires a database pool")
		}
		return postal.NewPostgres(pool), nil
	case "sqlite", "":
		dir, err := postal.NewSQLite(pc.Path)
		if err != nil {
			return nil, err
		}
		if err := dir.Migrate(ctx); err != nil {
			_ = dir.Close()
			return nil, err
		}
		zap.L().Debug("postal directory opened", zap.String("path", pc.Path))
		return dir, nil
	default:
		return nil, eris.Errorf("postal: unknown driver %q", pc.Driver)
	}
}
