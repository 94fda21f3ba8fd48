package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/common/uuid"
	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/repositories/gamelog"
	"github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	manager    *game.Manager
	prompts    *Prompts
	config     *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Session is the Discord session the bot listens on; it is opened by Start
	Session *discordgo.Session

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	Manager           *game.Manager
	GameLogRepository gamelog.Repository
	Clock             clock.Clock
	UUID              uuid.UUID

	// ConfirmTimeout is how long yes/no prompts wait for an answer
	ConfirmTimeout time.Duration

	// ActivityDebounce is the least time between two saved activity updates of a player
	ActivityDebounce time.Duration
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Session == nil {
		return nil, errors.New("discord session cannot be nil")
	}

	if cfg.Manager == nil {
		return nil, errors.New("game manager cannot be nil")
	}

	if cfg.GameLogRepository == nil {
		return nil, errors.New("game log repository cannot be nil")
	}

	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}

	if cfg.UUID == nil {
		return nil, errors.New("UUID generator cannot be nil")
	}

	if cfg.ConfirmTimeout <= 0 {
		return nil, errors.New("confirm timeout must be positive")
	}

	bot := &Bot{
		session:    cfg.Session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		manager:    cfg.Manager,
		prompts:    NewPrompts(cfg.ConfirmTimeout, cfg.UUID),
		config:     cfg,
	}

	bot.session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentMessageContent

	bot.session.AddHandler(bot.handleInteraction)
	bot.session.AddHandler(bot.handleMessageCreate)
	bot.session.AddHandler(bot.handleReactionAdd)
	bot.session.AddHandler(bot.handleGuildDelete)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	commands := []CommandHandler{
		NewProposalCommand(b.manager, b.prompts),
		NewRuleCommand(b.manager, b.prompts),
		NewQuantityCommand(b.manager, b.prompts),
		NewActivityCommand(b.manager, b.config.Clock),
		NewFlagsCommand(b.manager),
		NewChannelCommand(b.manager),
		NewLogCommand(b.manager, b.config.GameLogRepository),
	}
	for _, cmd := range commands {
		if err := b.RegisterCommand(cmd); err != nil {
			return fmt.Errorf("failed to register %s command: %w", cmd.GetName(), err)
		}
	}

	log.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	appID := b.applicationID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			log.Printf("Failed to delete command %s (ID: %s): %v", cmdName, cmdID, err)
		} else {
			log.Printf("Successfully deleted command %s (ID: %s)", cmdName, cmdID)
		}
	}

	return b.session.Close()
}

func (b *Bot) applicationID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	// If guild ID is provided, register command for that specific guild
	// Otherwise, register it globally
	if b.config.GuildID != "" {
		log.Printf("Registering command %s for guild %s", cmd.GetName(), b.config.GuildID)
	} else {
		log.Printf("Registering command %s globally", cmd.GetName())
	}

	createdCmd, err := b.session.ApplicationCommandCreate(b.applicationID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	// Store the command handler and its ID
	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	log.Printf("Registered command: %s with ID: %s", cmd.GetName(), createdCmd.ID)

	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		// Handle slash commands
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			if err := h.Handle(s, i); err != nil {
				log.Printf("Error handling command %s: %v", i.ApplicationCommandData().Name, err)
			}
		}
	case discordgo.InteractionMessageComponent:
		// Buttons only appear on confirmation prompts
		handled, err := b.prompts.HandleButton(s, i)
		if err != nil {
			log.Printf("Error handling component interaction: %v", err)
		}
		if !handled {
			if err := RespondWithError(s, i, fmt.Sprintf("Unknown button: %s", i.MessageComponentData().CustomID)); err != nil {
				log.Printf("Error responding to unknown button: %v", err)
			}
		}
	}
}

// handleMessageCreate tracks activity and turns plain messages in the
// proposals channel into proposals
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	ctx := context.Background()

	session, err := b.manager.GetOrCreate(ctx, m.GuildID)
	if err != nil {
		log.Printf("Error loading game for guild %s: %v", m.GuildID, err)
		return
	}
	snapshot := session.Snapshot()

	b.recordActivity(ctx, session, snapshot, m.Author.ID)

	if m.ChannelID == snapshot.Channels.Proposals && strings.TrimSpace(m.Content) != "" {
		b.submitFromChannel(ctx, s, session, m.Message)
	}
}

// recordActivity marks the player as seen unless that happened recently
func (b *Bot) recordActivity(ctx context.Context, session *game.Session, snapshot *models.GameState, userID string) {
	since, seen := game.SinceLastActivity(snapshot.Activity, userID, b.config.Clock.Now())
	if seen && since < b.config.ActivityDebounce {
		return
	}

	err := session.Do(ctx, func(g *game.Guard) error {
		// another message may have won the race for the lock
		if since, seen := session.Activity.TimeSinceLast(userID); seen && since < b.config.ActivityDebounce {
			return nil
		}
		return session.Activity.RecordActivity(g, userID)
	})
	if err != nil {
		log.Printf("Error recording activity of %s: %v", userID, err)
	}
}

// submitFromChannel asks the author whether a message in the proposals
// channel should become a proposal, and submits it if so
func (b *Bot) submitFromChannel(ctx context.Context, s *discordgo.Session, session *game.Session, m *discordgo.Message) {
	outcome, err := b.prompts.AskInChannel(ctx, s, m, "Submit this as a proposal?")
	if err != nil {
		log.Printf("Error asking to submit message %s: %v", m.ID, err)
		return
	}
	if outcome != Confirmed {
		return
	}

	var prop *models.Proposal
	err = session.Do(ctx, func(g *game.Guard) error {
		var err error
		prop, err = session.Proposals.Submit(ctx, g, &game.SubmitProposalInput{
			AuthorID: m.Author.ID,
			Content:  m.Content,
		})
		return err
	})
	if err != nil {
		if _, sendErr := s.ChannelMessageSendReply(m.ChannelID, errorMessage("submit proposal", err), m.Reference()); sendErr != nil {
			log.Printf("Error reporting failed submission: %v", sendErr)
		}
		return
	}

	log.Printf("Submitted proposal #%d from message %s in guild %s", prop.N, m.ID, session.GuildID())
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		log.Printf("Error deleting submitted message %s: %v", m.ID, err)
	}
}

// reactionKind classifies a reaction on a proposal message
type reactionKind int

const (
	reactionUnknown reactionKind = iota
	reactionVote
	reactionStatus
)

type reactionAction struct {
	kind      reactionKind
	direction models.VoteDirection
	status    models.ProposalStatus
}

func classifyReaction(emoji string) reactionAction {
	if dir, ok := game.VoteReaction(emoji); ok {
		return reactionAction{kind: reactionVote, direction: dir}
	}
	if status, ok := game.StatusReaction(emoji); ok {
		return reactionAction{kind: reactionStatus, status: status}
	}
	return reactionAction{kind: reactionUnknown}
}

// handleReactionAdd applies vote and status reactions on proposal messages.
// The player's reaction is removed afterwards so that only the bot's own
// reactions stay on the message.
func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || (s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID) {
		return
	}
	ctx := context.Background()

	session, err := b.manager.GetOrCreate(ctx, r.GuildID)
	if err != nil {
		log.Printf("Error loading game for guild %s: %v", r.GuildID, err)
		return
	}
	if r.ChannelID != session.Snapshot().Channels.Proposals {
		return
	}

	action := classifyReaction(r.Emoji.Name)
	admin := false
	if action.kind == reactionStatus {
		perms, err := s.UserChannelPermissions(r.UserID, r.ChannelID)
		if err != nil {
			log.Printf("Error reading permissions of %s: %v", r.UserID, err)
		}
		admin = isAdmin(perms)
	}

	isProposal := false
	err = session.Do(ctx, func(g *game.Guard) error {
		prop, err := session.Proposals.ByMessageID(r.MessageID)
		if err != nil {
			return err
		}
		isProposal = true

		switch action.kind {
		case reactionVote:
			if action.direction == models.VoteAbstain {
				_, err = session.Proposals.AbstainOrRemove(ctx, g, prop.N, r.UserID)
				return err
			}
			_, err = session.Proposals.Vote(ctx, g, &game.VoteInput{
				N:         prop.N,
				VoterID:   r.UserID,
				Direction: action.direction,
				Weight:    1,
				ActorID:   r.UserID,
			})
			return err
		case reactionStatus:
			if !admin {
				return nil
			}
			return session.Proposals.SetStatus(ctx, g, &game.SetProposalStatusInput{
				N:       prop.N,
				Status:  action.status,
				ActorID: r.UserID,
			})
		}
		return nil
	})
	if errors.Is(err, game.ErrNotProposalMessage) {
		return
	}
	if err != nil {
		log.Printf("Error applying reaction %s on message %s: %v", r.Emoji.Name, r.MessageID, err)
	}
	if !isProposal {
		return
	}

	if err := s.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID); err != nil {
		log.Printf("Error removing reaction of %s on message %s: %v", r.UserID, r.MessageID, err)
	}
}

// handleGuildDelete forgets the game of a guild the bot was removed from
func (b *Bot) handleGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	// outages also delete guilds, but leave them unavailable
	if g.Guild == nil || g.Unavailable {
		return
	}
	if b.manager.Evict(g.ID) {
		log.Printf("Evicted game of guild %s", g.ID)
	}
}
