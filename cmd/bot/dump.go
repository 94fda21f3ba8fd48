package main

import (
	"context"
	"fmt"
	"io"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/repositories/game"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [guild_id]",
	Short: "Print a guild's game as YAML, or list the stored guilds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := openStorage(cmd.Context(), cfg, clock.New())
		if err != nil {
			return err
		}
		defer store.close()

		if len(args) == 0 {
			return listGuilds(cmd.Context(), cmd.OutOrStdout(), store.games)
		}
		state, err := loadGame(cmd.Context(), store.games, args[0])
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), state)
	},
}

func listGuilds(ctx context.Context, w io.Writer, games game.Repository) error {
	out, err := games.ListGames(ctx, &game.ListGamesInput{})
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	for _, guildID := range out.GuildIDs {
		fmt.Fprintln(w, guildID)
	}
	return nil
}

// loadGame reads a stored game; a guild without one is an error here
func loadGame(ctx context.Context, games game.Repository, guildID string) (*models.GameState, error) {
	out, err := games.LoadGame(ctx, &game.LoadGameInput{GuildID: guildID})
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if !out.Found {
		return nil, fmt.Errorf("no game stored for guild %s", guildID)
	}
	if out.Recovered {
		return nil, fmt.Errorf("game of guild %s was unreadable and moved to %s", guildID, out.BackupKey)
	}
	return out.State, nil
}

func writeYAML(w io.Writer, state *models.GameState) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}
	return enc.Close()
}
