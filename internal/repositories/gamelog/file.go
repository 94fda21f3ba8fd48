package gamelog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
)

// FileConfig holds configuration for the CSV game log repository
type FileConfig struct {
	// Dir is where one <guild>_log.csv file per guild is kept
	Dir string
}

// fileRepository implements the Repository interface with one CSV file per guild
type fileRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFile creates a new CSV-backed game log repository
func NewFile(cfg *FileConfig) (*fileRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Dir == "" {
		return nil, errors.New("directory cannot be empty")
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &fileRepository{dir: cfg.Dir}, nil
}

func (r *fileRepository) path(guildID string) string {
	return filepath.Join(r.dir, guildID+"_log.csv")
}

// AppendEntry appends one CSV row: id, timestamp, kind, actor, message
func (r *fileRepository) AppendEntry(ctx context.Context, input *AppendEntryInput) error {
	if err := validateEntry(input); err != nil {
		return err
	}
	entry := input.Entry

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path(entry.GuildID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write([]string{
		entry.ID,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		string(entry.Kind),
		entry.ActorID,
		entry.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// ListEntries reads the guild's CSV log
func (r *fileRepository) ListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path(input.GuildID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ListEntriesOutput{Entries: []*models.LogEntry{}}, nil
		}
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = 5
	entries := []*models.LogEntry{}
	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read log: %w", err)
		}

		kind := models.LogKind(row[2])
		if input.Kind != "" && kind != input.Kind {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse log timestamp %q: %w", row[1], err)
		}
		entries = append(entries, &models.LogEntry{
			ID:        row[0],
			GuildID:   input.GuildID,
			Kind:      kind,
			ActorID:   row[3],
			Message:   row[4],
			Timestamp: ts,
		})
	}

	return &ListEntriesOutput{Entries: tail(entries, input.Limit)}, nil
}
