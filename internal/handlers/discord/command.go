package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler defines the interface for Discord command handlers
type CommandHandler interface {
	// GetName returns the command name
	GetName() string

	// GetCommand returns the application command definition
	GetCommand() *discordgo.ApplicationCommand

	// Handle processes a Discord interaction
	Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error
}

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
}

// GetName returns the command name
func (c *BaseCommand) GetName() string {
	return c.Name
}

// GetCommand returns the application command definition
func (c *BaseCommand) GetCommand() *discordgo.ApplicationCommand {
	dm := false
	return &discordgo.ApplicationCommand{
		Name:         c.Name,
		Description:  c.Description,
		Options:      c.Options,
		DMPermission: &dm,
	}
}

// Options of one invoked subcommand, by name
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

// subcommand returns the invoked subcommand of a command and its options
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, options) {
	if len(data.Options) == 0 {
		return "", options{}
	}
	sub := data.Options[0]
	opts := make(options, len(sub.Options))
	for _, opt := range sub.Options {
		opts[opt.Name] = opt
	}
	return sub.Name, opts
}

func (o options) String(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) Int(name string, fallback int) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return fallback
}

func (o options) Bool(name string) (bool, bool) {
	if opt, ok := o[name]; ok {
		return opt.BoolValue(), true
	}
	return false, false
}

// UserID returns the ID of a user option
func (o options) UserID(name string) string {
	if opt, ok := o[name]; ok {
		return opt.UserValue(nil).ID
	}
	return ""
}

// ChannelID returns the ID of a channel option
func (o options) ChannelID(name string) string {
	if opt, ok := o[name]; ok {
		return opt.ChannelValue(nil).ID
	}
	return ""
}

// invoker returns the ID of the user behind an interaction
func invoker(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// isAdmin reports whether the member may run structural commands
func isAdmin(permissions int64) bool {
	return permissions&discordgo.PermissionAdministrator != 0
}

func memberIsAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && isAdmin(i.Member.Permissions)
}

// withSession runs fn while holding the guild's session lock
func withSession(ctx context.Context, manager *game.Manager, guildID string, fn func(g *game.Guard) error) error {
	session, err := manager.GetOrCreate(ctx, guildID)
	if err != nil {
		return err
	}
	return session.Do(ctx, fn)
}

// errorMessage turns an error into text safe to show a player
func errorMessage(action string, err error) string {
	var gameErr game.GameError
	if errors.As(err, &gameErr) {
		return fmt.Sprintf("Failed to %s: %s.", action, gameErr)
	}
	log.Printf("Error trying to %s: %v", action, err)
	return fmt.Sprintf("Failed to %s. Please try again.", action)
}

// responder answers a single interaction. The first answer is sent as the
// interaction response, later ones edit it.
type responder struct {
	s            *discordgo.Session
	i            *discordgo.Interaction
	acknowledged bool
}

func newResponder(s *discordgo.Session, i *discordgo.InteractionCreate) *responder {
	return &responder{s: s, i: i.Interaction}
}

// Defer acknowledges the interaction while slow work runs
func (r *responder) Defer() error {
	if r.acknowledged {
		return nil
	}
	r.acknowledged = true
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// Prompt shows an ephemeral message with components
func (r *responder) Prompt(content string, components []discordgo.MessageComponent) error {
	if r.acknowledged {
		_, err := r.s.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{
			Content:    &content,
			Components: &components,
		})
		return err
	}
	r.acknowledged = true
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

// Message shows an ephemeral text answer
func (r *responder) Message(content string) error {
	return r.Prompt(content, []discordgo.MessageComponent{})
}

// Embed shows an ephemeral embed answer
func (r *responder) Embed(embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	if r.acknowledged {
		empty := ""
		_, err := r.s.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{
			Content: &empty,
			Embeds:  &embeds,
		})
		return err
	}
	r.acknowledged = true
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: embeds,
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// Result answers with success on a nil error and a readable failure otherwise
func (r *responder) Result(action string, err error, success string) error {
	if err != nil {
		return r.Message(errorMessage(action, err))
	}
	return r.Message(success)
}

// RespondWithEphemeralMessage sends an ephemeral message response to an interaction
func RespondWithEphemeralMessage(s *discordgo.Session, i *discordgo.InteractionCreate, message string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// RespondWithError sends an ephemeral error embed to an interaction
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errorMessage string) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Error",
		Description: errorMessage,
		Color:       game.ColorError,
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// requireAdmin answers non-admins and reports whether to continue
func requireAdmin(r *responder, i *discordgo.InteractionCreate) bool {
	if memberIsAdmin(i) {
		return true
	}
	if err := r.Message("Only admins can do that."); err != nil {
		log.Printf("Error responding to non-admin: %v", err)
	}
	return false
}
