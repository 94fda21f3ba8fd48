// Command bot runs the Nomic Discord bot and offers maintenance commands
// for the games it stores.
package main

import (
	"fmt"
	"os"

	"github.com/KirkDiggler/nomic/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Nomic game bot for Discord",
	Long: `Runs the Nomic Discord bot. Without a subcommand the bot connects to
Discord and serves every guild it is in.`,
	SilenceUsage: true,
	RunE:         runBot,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "optional .env file to load")
	rootCmd.PersistentFlags().String("storage", "", "storage backend: file, redis or sqlite (overrides STORAGE_BACKEND)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for file and sqlite storage (overrides DATA_DIR)")

	rootCmd.AddCommand(runCmd, dumpCmd, archiveCmd, restoreCmd, logsCmd)
}

// loadConfig reads the environment and applies the command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	if storage, _ := cmd.Flags().GetString("storage"); storage != "" {
		cfg.StorageBackend = storage
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
