package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/models"
)

const gameFileSuffix = ".json"

// FileConfig holds configuration for the file game repository
type FileConfig struct {
	// Dir is where one <guild>.json document per guild is kept
	Dir string

	// Clock stamps backups; defaults to the system clock
	Clock clock.Clock
}

// fileRepository implements the Repository interface with JSON files
type fileRepository struct {
	dir   string
	clock clock.Clock
}

// NewFile creates a new file-backed game repository
func NewFile(cfg *FileConfig) (*fileRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Dir == "" {
		return nil, errors.New("directory cannot be empty")
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &fileRepository{
		dir:   cfg.Dir,
		clock: clk,
	}, nil
}

func (r *fileRepository) path(guildID string) string {
	return filepath.Join(r.dir, guildID+gameFileSuffix)
}

// LoadGame reads a guild's game document from disk
func (r *fileRepository) LoadGame(ctx context.Context, input *LoadGameInput) (*LoadGameOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	path := r.path(input.GuildID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &LoadGameOutput{State: models.NewGameState(input.GuildID)}, nil
		}
		return nil, fmt.Errorf("failed to read game: %w", err)
	}

	state, err := decodeGame(input.GuildID, data)
	if err == nil {
		return &LoadGameOutput{State: state, Found: true}, nil
	}

	backup := fmt.Sprintf("%s.%d.bak", path, r.clock.Now().Unix())
	log.Printf("Unreadable game for guild %s, moving it to %s: %v", input.GuildID, backup, err)
	if err := os.Rename(path, backup); err != nil {
		return nil, fmt.Errorf("failed to back up game: %w", err)
	}

	return &LoadGameOutput{
		State:     models.NewGameState(input.GuildID),
		Found:     true,
		Recovered: true,
		BackupKey: backup,
	}, nil
}

// SaveGame writes the document to a temp file in the same directory and
// renames it over the old one, so a failed save leaves the old file intact
func (r *fileRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.GuildID == "" {
		return errors.New("input and guild ID cannot be empty")
	}

	data, err := encodeGame(input.State)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(r.path(input.GuildID), data); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// ListGames lists the guilds with a document in the data directory
func (r *fileRepository) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	out := &ListGamesOutput{GuildIDs: []string{}}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, gameFileSuffix) {
			continue
		}
		out.GuildIDs = append(out.GuildIDs, strings.TrimSuffix(name, gameFileSuffix))
	}
	sort.Strings(out.GuildIDs)
	return out, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
