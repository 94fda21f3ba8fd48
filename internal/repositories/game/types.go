package game

import "github.com/KirkDiggler/nomic/internal/models"

type LoadGameInput struct {
	GuildID string
}

type LoadGameOutput struct {
	State *models.GameState

	// Found is false when no document existed and State is a new game
	Found bool

	// Recovered is true when the stored document was unreadable and was moved to BackupKey
	Recovered bool
	BackupKey string
}

type SaveGameInput struct {
	GuildID string
	State   *models.GameState
}

type ListGamesInput struct {
}

type ListGamesOutput struct {
	GuildIDs []string
}
