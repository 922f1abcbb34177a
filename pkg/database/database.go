package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Config содержит настройки подключения к PostgreSQL.
type Config struct {
	DSN         string
	MaxConns    int32
	IdleTimeout time.Duration
}

// NewPool создает пул подключений pgx и проверяет его пингом.
func NewPool(ctx context.Context, cfg Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора строки подключения: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул подключений: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.Int32("maxConns", poolConfig.MaxConns),
		zap.Duration("idleTimeout", poolConfig.MaxConnIdleTime),
	)
	return pool, nil
}
