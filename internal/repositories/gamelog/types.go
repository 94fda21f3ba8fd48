package gamelog

import (
	"errors"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
)

// AppendEntryInput contains the entry to append
type AppendEntryInput struct {
	Entry *models.LogEntry
}

// ListEntriesInput selects entries from a guild's log
type ListEntriesInput struct {
	GuildID string

	// Kind filters by entry kind; empty means every kind
	Kind models.LogKind

	// Limit keeps only the newest entries; zero means no limit
	Limit int
}

// ListEntriesOutput contains the selected entries, oldest first
type ListEntriesOutput struct {
	Entries []*models.LogEntry
}

func validateEntry(input *AppendEntryInput) error {
	if input == nil || input.Entry == nil {
		return errors.New("input and entry cannot be nil")
	}
	if input.Entry.ID == "" {
		return errors.New("log entry ID cannot be empty")
	}
	if input.Entry.GuildID == "" {
		return errors.New("log entry guild ID cannot be empty")
	}
	if input.Entry.Timestamp.IsZero() {
		input.Entry.Timestamp = time.Now()
	}
	return nil
}

// tail returns the last n entries, or all of them when n <= 0
func tail(entries []*models.LogEntry, n int) []*models.LogEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
