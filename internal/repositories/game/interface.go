package game

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/nomic/internal/repositories/game Repository

import (
	"context"
)

// Repository persists one game document per guild
type Repository interface {
	// LoadGame retrieves a guild's game. A missing document yields a new default
	// game; an unreadable one is backed up and replaced by a default game.
	LoadGame(ctx context.Context, input *LoadGameInput) (*LoadGameOutput, error)

	// SaveGame atomically replaces a guild's game document
	SaveGame(ctx context.Context, input *SaveGameInput) error

	// ListGames returns the IDs of every guild with a stored game
	ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error)
}
