package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	gameKeyPrefix = "game:"
	gamesKey      = "games"
)

// Config holds configuration for the Redis game repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Clock stamps backup keys; defaults to the system clock
	Clock clock.Clock
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	clock  clock.Clock
}

// NewRedis creates a new Redis-backed game repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &redisRepository{
		client: cfg.RedisClient,
		clock:  clk,
	}, nil
}

func gameKey(guildID string) string {
	return fmt.Sprintf("%s%s", gameKeyPrefix, guildID)
}

// LoadGame retrieves a guild's game from Redis
func (r *redisRepository) LoadGame(ctx context.Context, input *LoadGameInput) (*LoadGameOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	key := gameKey(input.GuildID)
	gameJSON, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &LoadGameOutput{State: models.NewGameState(input.GuildID)}, nil
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	state, err := decodeGame(input.GuildID, gameJSON)
	if err == nil {
		return &LoadGameOutput{State: state, Found: true}, nil
	}

	backup := fmt.Sprintf("%s:bak:%d", key, r.clock.Now().Unix())
	log.Printf("Unreadable game for guild %s, moving it to %s: %v", input.GuildID, backup, err)
	if err := r.client.Rename(ctx, key, backup).Err(); err != nil {
		return nil, fmt.Errorf("failed to back up game: %w", err)
	}

	return &LoadGameOutput{
		State:     models.NewGameState(input.GuildID),
		Found:     true,
		Recovered: true,
		BackupKey: backup,
	}, nil
}

// SaveGame persists a guild's game to Redis
func (r *redisRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.GuildID == "" {
		return errors.New("input and guild ID cannot be empty")
	}

	gameJSON, err := encodeGame(input.State)
	if err != nil {
		return err
	}

	// The document and the index change together or not at all
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(input.GuildID), gameJSON, 0)
		pipe.SAdd(ctx, gamesKey, input.GuildID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// ListGames returns every guild that has saved a game
func (r *redisRepository) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	ids, err := r.client.SMembers(ctx, gamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	sort.Strings(ids)
	return &ListGamesOutput{GuildIDs: ids}, nil
}
