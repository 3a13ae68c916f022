// Package postgres stores session snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/config"
)

// connectAttempts bounds the pings made while the server is still starting.
const connectAttempts = 5

// Pool owns the pgx connection pool shared by the session store.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to PostgreSQL, retrying the initial ping with a doubling
// delay.
//
// Precondition: cfg must have passed config validation.
// Postcondition: Returns a pool that answered a ping, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	start := time.Now()
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	delay := 200 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("pinging database after %d attempts: %w", attempt, err)
		}
		logger.Debug("database not ready", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Pool{pool: pool}, nil
}

// Close releases all connections.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
