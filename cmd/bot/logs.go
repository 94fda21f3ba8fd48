package main

import (
	"fmt"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/repositories/gamelog"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs guild_id",
	Short: "Print a guild's game log",
	Args:  cobra.ExactArgs(1),
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

		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		out, err := store.logs.ListEntries(cmd.Context(), &gamelog.ListEntriesInput{
			GuildID: args[0],
			Kind:    models.LogKind(kind),
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list log entries: %w", err)
		}

		w := cmd.OutOrStdout()
		for _, e := range out.Entries {
			actor := e.ActorID
			if actor == "" {
				actor = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.UTC().Format("2006-01-02 15:04:05"), e.Kind, actor, e.Message)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().String("kind", "", "only entries of this kind (vote, proposal, transaction, rule, quantity, comment)")
	logsCmd.Flags().Int("limit", 0, "only the newest entries (0 for all)")
}
