package gamelog

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/nomic/internal/repositories/gamelog Repository

import (
	"context"
)

// Repository is the append-only log of everything that happened in a guild's game
type Repository interface {
	// AppendEntry adds an entry to the end of the guild's log
	AppendEntry(ctx context.Context, input *AppendEntryInput) error

	// ListEntries returns the most recent entries, oldest first
	ListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error)
}
