// Package app wires the shared infrastructure used by the server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/platform/cache"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/bizledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Infra holds the long-lived connections.
type Infra struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client // nil when REDIS_URL is empty
	Locker portsrepo.DistributedLocker
	logger *slog.Logger
}

// Open connects to PostgreSQL and, when configured, Redis. Without Redis the sweep lock only
// serialises sweeps inside this process.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infra, error) {
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	infra := &Infra{Pool: pool, logger: logger}

	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, using in-process locks and rate limits")
		infra.Locker = cache.NewLocalLocker()
		return infra, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, err
	}
	infra.Redis = client
	infra.Locker = cache.NewRedisLocker(client, "")
	logger.Info("Connected to Redis")
	return infra, nil
}

// Services builds the service container on top of the pgx repositories.
func (i *Infra) Services(cfg *config.Config) *portssvc.ServiceContainer {
	return services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(i.Pool), i.Locker)
}

// Close releases every connection.
func (i *Infra) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.logger.Error("Error closing Redis client", slog.String("error", err.Error()))
		}
	}
	i.Pool.Close()
}
