package gamelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	entryKeyPrefix    = "log_entry:"
	guildLogKeyPrefix = "game_log:"
)

// Config holds configuration for the Redis game log repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed game log repository
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

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func guildLogKey(guildID string, kind models.LogKind) string {
	if kind == "" {
		return fmt.Sprintf("%s%s", guildLogKeyPrefix, guildID)
	}
	return fmt.Sprintf("%s%s:%s", guildLogKeyPrefix, guildID, kind)
}

// AppendEntry stores the entry and indexes it by guild and by kind
func (r *redisRepository) AppendEntry(ctx context.Context, input *AppendEntryInput) error {
	if err := validateEntry(input); err != nil {
		return err
	}
	entry := input.Entry

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	score := float64(entry.Timestamp.UnixMicro())
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, entryKeyPrefix+entry.ID, entryJSON, 0)
	pipe.ZAdd(ctx, guildLogKey(entry.GuildID, ""), redis.Z{Score: score, Member: entry.ID})
	pipe.ZAdd(ctx, guildLogKey(entry.GuildID, entry.Kind), redis.Z{Score: score, Member: entry.ID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// ListEntries reads the newest entries of a guild's log
func (r *redisRepository) ListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	start := int64(0)
	if input.Limit > 0 {
		start = -int64(input.Limit)
	}
	ids, err := r.client.ZRange(ctx, guildLogKey(input.GuildID, input.Kind), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get log entry IDs: %w", err)
	}

	if len(ids) == 0 {
		return &ListEntriesOutput{Entries: []*models.LogEntry{}}, nil
	}

	// Fetch every entry in one round trip, keeping index order
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, entryKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get log entries: %w", err)
	}

	entries := make([]*models.LogEntry, 0, len(ids))
	for i, cmd := range cmds {
		entryJSON, err := cmd.Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get log entry %s: %w", ids[i], err)
		}

		var entry models.LogEntry
		if err := json.Unmarshal(entryJSON, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log entry %s: %w", ids[i], err)
		}
		entries = append(entries, &entry)
	}

	return &ListEntriesOutput{Entries: entries}, nil
}
