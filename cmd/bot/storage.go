package main

import (
	"context"
	"fmt"
	"time"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/config"
	"github.com/KirkDiggler/nomic/internal/repositories/game"
	"github.com/KirkDiggler/nomic/internal/repositories/gamelog"
	"github.com/KirkDiggler/nomic/internal/repositories/sqlitedb"
	"github.com/redis/go-redis/v9"
)

// storage is the pair of repositories behind the configured backend
type storage struct {
	games game.Repository
	logs  gamelog.Repository
	close func() error
}

func openStorage(ctx context.Context, cfg *config.Config, clk clock.Clock) (*storage, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		return openRedis(ctx, cfg, clk)
	case config.BackendSQLite:
		return openSQLite(cfg, clk)
	}
	return openFiles(cfg, clk)
}

func openFiles(cfg *config.Config, clk clock.Clock) (*storage, error) {
	games, err := game.NewFile(&game.FileConfig{Dir: cfg.DataDir, Clock: clk})
	if err != nil {
		return nil, fmt.Errorf("failed to create game repository: %w", err)
	}
	logs, err := gamelog.NewFile(&gamelog.FileConfig{Dir: cfg.DataDir})
	if err != nil {
		return nil, fmt.Errorf("failed to create game log repository: %w", err)
	}
	return &storage{games: games, logs: logs, close: func() error { return nil }}, nil
}

func openRedis(ctx context.Context, cfg *config.Config, clk clock.Clock) (*storage, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	games, err := game.NewRedis(&game.Config{RedisClient: redisClient, Clock: clk})
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to create game repository: %w", err)
	}
	logs, err := gamelog.NewRedis(&gamelog.Config{RedisClient: redisClient})
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to create game log repository: %w", err)
	}
	return &storage{games: games, logs: logs, close: redisClient.Close}, nil
}

func openSQLite(cfg *config.Config, clk clock.Clock) (*storage, error) {
	db, err := sqlitedb.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	games, err := game.NewSQLite(&game.SQLiteConfig{DB: db, Clock: clk})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create game repository: %w", err)
	}
	logs, err := gamelog.NewSQLite(&gamelog.SQLiteConfig{DB: db})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create game log repository: %w", err)
	}
	return &storage{games: games, logs: logs, close: db.Close}, nil
}
