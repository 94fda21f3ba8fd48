package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/models"
)

// SQLiteConfig holds configuration for the SQLite game repository
type SQLiteConfig struct {
	// DB is an open database, see sqlitedb.Open
	DB *sql.DB

	// Clock stamps backups; defaults to the system clock
	Clock clock.Clock
}

// sqliteRepository implements the Repository interface with one row per guild
type sqliteRepository struct {
	db    *sql.DB
	clock clock.Clock
}

// NewSQLite creates a new SQLite-backed game repository, creating its tables if needed
func NewSQLite(cfg *SQLiteConfig) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DB == nil {
		return nil, errors.New("database cannot be nil")
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			guild_id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS game_backups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			document TEXT NOT NULL,
			backed_up_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := cfg.DB.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create games schema: %w", err)
		}
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &sqliteRepository{
		db:    cfg.DB,
		clock: clk,
	}, nil
}

// LoadGame retrieves a guild's game row
func (r *sqliteRepository) LoadGame(ctx context.Context, input *LoadGameInput) (*LoadGameOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	var document string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM games WHERE guild_id = ?`, input.GuildID).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &LoadGameOutput{State: models.NewGameState(input.GuildID)}, nil
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	state, err := decodeGame(input.GuildID, []byte(document))
	if err == nil {
		return &LoadGameOutput{State: state, Found: true}, nil
	}

	log.Printf("Unreadable game for guild %s, moving it to game_backups: %v", input.GuildID, err)
	backupID, err := r.backup(ctx, input.GuildID, document)
	if err != nil {
		return nil, err
	}

	return &LoadGameOutput{
		State:     models.NewGameState(input.GuildID),
		Found:     true,
		Recovered: true,
		BackupKey: fmt.Sprintf("game_backups:%d", backupID),
	}, nil
}

func (r *sqliteRepository) backup(ctx context.Context, guildID, document string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin backup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO game_backups (guild_id, document, backed_up_at) VALUES (?, ?, ?)`,
		guildID, document, r.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to back up game: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE guild_id = ?`, guildID); err != nil {
		return 0, fmt.Errorf("failed to remove unreadable game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit backup: %w", err)
	}
	return res.LastInsertId()
}

// SaveGame upserts a guild's game row
func (r *sqliteRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.GuildID == "" {
		return errors.New("input and guild ID cannot be empty")
	}

	document, err := encodeGame(input.State)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO games (guild_id, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		input.GuildID, string(document), r.clock.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// ListGames lists every guild with a game row
func (r *sqliteRepository) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT guild_id FROM games ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	out := &ListGamesOutput{GuildIDs: []string{}}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guild ID: %w", err)
		}
		out.GuildIDs = append(out.GuildIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return out, nil
}
