package main

import (
	"fmt"
	"path/filepath"

	"github.com/KirkDiggler/nomic/internal/archive"
	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/repositories/game"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive guild_id",
	Short: "Write a compressed snapshot of a guild's game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		clk := clock.New()
		store, err := openStorage(cmd.Context(), cfg, clk)
		if err != nil {
			return err
		}
		defer store.close()

		state, err := loadGame(cmd.Context(), store.games, args[0])
		if err != nil {
			return err
		}

		now := clk.Now()
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(cfg.DataDir, "archives", archive.FileName(args[0], now))
		}
		if err := archive.WriteFile(out, state, now); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore snapshot_file",
	Short: "Replace a guild's stored game with a snapshot",
	Long: `Replaces the stored game of the snapshot's guild. Stop the bot first;
a running bot keeps its own copy of the game and overwrites the restored one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		snap, err := archive.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		store, err := openStorage(cmd.Context(), cfg, clock.New())
		if err != nil {
			return err
		}
		defer store.close()

		err = store.games.SaveGame(cmd.Context(), &game.SaveGameInput{
			GuildID: snap.Header.GuildID,
			State:   snap.State,
		})
		if err != nil {
			return fmt.Errorf("failed to save game: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored game of guild %s from %s\n",
			snap.Header.GuildID, snap.Header.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

func init() {
	archiveCmd.Flags().String("out", "", "snapshot path (defaults to <data-dir>/archives/<guild>-<time>.json.zst)")
}
