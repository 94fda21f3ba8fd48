package gamelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
)

// SQLiteConfig holds configuration for the SQLite game log repository
type SQLiteConfig struct {
	// DB is an open database, see sqlitedb.Open
	DB *sql.DB
}

// sqliteRepository implements the Repository interface with a single table
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed game log repository
func NewSQLite(cfg *SQLiteConfig) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DB == nil {
		return nil, errors.New("database cannot be nil")
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS game_log (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			guild_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS game_log_guild ON game_log (guild_id, kind, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := cfg.DB.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create game log schema: %w", err)
		}
	}

	return &sqliteRepository{db: cfg.DB}, nil
}

// AppendEntry inserts one row
func (r *sqliteRepository) AppendEntry(ctx context.Context, input *AppendEntryInput) error {
	if err := validateEntry(input); err != nil {
		return err
	}
	entry := input.Entry

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_log (id, guild_id, kind, actor_id, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.GuildID, string(entry.Kind), entry.ActorID, entry.Message, entry.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// ListEntries selects the newest rows in insertion order
func (r *sqliteRepository) ListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, actor_id, message, created_at FROM (
			SELECT seq, id, kind, actor_id, message, created_at FROM game_log
			WHERE guild_id = ? AND (? = '' OR kind = ?)
			ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`,
		input.GuildID, string(input.Kind), string(input.Kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.LogEntry{}
	for rows.Next() {
		var (
			entry     models.LogEntry
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.ActorID, &entry.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entry.GuildID = input.GuildID
		entry.Kind = models.LogKind(kind)
		entry.Timestamp = time.Unix(0, createdAt).UTC()
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	return &ListEntriesOutput{Entries: entries}, nil
}
