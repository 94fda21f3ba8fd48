package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/common/uuid"
	"github.com/KirkDiggler/nomic/internal/handlers/discord"
	gameService "github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve games (the default)",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateForRun(); err != nil {
		return err
	}

	clk := clock.New()
	uuidGenerator := uuid.New()

	store, err := openStorage(cmd.Context(), cfg, clk)
	if err != nil {
		return err
	}
	defer store.close()
	log.Printf("Using %s storage", cfg.StorageBackend)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	chat, err := messaging.NewDiscord(&messaging.Config{Session: session})
	if err != nil {
		return fmt.Errorf("failed to create messaging service: %w", err)
	}

	manager, err := gameService.NewManager(&gameService.Config{
		GameRepository:    store.games,
		GameLogRepository: store.logs,
		Messaging:         chat,
		Clock:             clk,
		UUID:              uuidGenerator,
	})
	if err != nil {
		return fmt.Errorf("failed to create game manager: %w", err)
	}

	bot, err := discord.New(&discord.Config{
		Session:           session,
		ApplicationID:     cfg.ApplicationID,
		GuildID:           cfg.GuildID,
		Manager:           manager,
		GameLogRepository: store.logs,
		Clock:             clk,
		UUID:              uuidGenerator,
		ConfirmTimeout:    cfg.ConfirmTimeout,
		ActivityDebounce:  cfg.ActivityDebounce,
	})
	if err != nil {
		return fmt.Errorf("failed to create Discord bot: %w", err)
	}

	// Start the bot
	if err := bot.Start(); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Shutdown the bot
	if err := bot.Stop(); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}

	log.Println("Bot has been shut down")
	return nil
}
