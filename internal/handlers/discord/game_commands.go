package discord

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/repositories/gamelog"
	"github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

const defaultLogLimit = 15

// ActivityCommand handles the /activity command
type ActivityCommand struct {
	BaseCommand
	manager *game.Manager
	clock   clock.Clock
}

// NewActivityCommand creates a new activity command handler
func NewActivityCommand(manager *game.Manager, clk clock.Clock) *ActivityCommand {
	return &ActivityCommand{
		BaseCommand: BaseCommand{
			Name:        "activity",
			Description: "Show which players are active",
		},
		manager: manager,
		clock:   clk,
	}
}

// Handle processes a Discord interaction for the activity command
func (c *ActivityCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	r := newResponder(s, i)
	session, err := c.manager.GetOrCreate(context.Background(), i.GuildID)
	if err != nil {
		return r.Message(errorMessage("list activity", err))
	}
	return r.Embed(activityEmbed(session.Snapshot(), c.clock.Now()))
}

// FlagsCommand handles the /flags command
type FlagsCommand struct {
	BaseCommand
	manager *game.Manager
}

// NewFlagsCommand creates a new flags command handler
func NewFlagsCommand(manager *game.Manager) *FlagsCommand {
	minCutoff := 0.0
	return &FlagsCommand{
		BaseCommand: BaseCommand{
			Name:        "flags",
			Description: "Show or change the game flags",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the game flags",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Change one or more game flags",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "abstain",
							Description: "Allow abstaining",
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "change",
							Description: "Allow changing a vote",
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "multi",
							Description: "Allow casting more than one vote",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "cutoff",
							Description: "Hours after which a player counts as inactive",
							MinValue:    &minCutoff,
						},
					},
				},
			},
		},
		manager: manager,
	}
}

// Handle processes a Discord interaction for the flags command
func (c *FlagsCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	r := newResponder(s, i)

	name, opts := subcommand(i.ApplicationCommandData())
	if name != "set" {
		session, err := c.manager.GetOrCreate(ctx, i.GuildID)
		if err != nil {
			return r.Message(errorMessage("show flags", err))
		}
		return r.Embed(flagsEmbed(session.Snapshot().Flags))
	}
	if !requireAdmin(r, i) {
		return nil
	}
	if err := r.Defer(); err != nil {
		return err
	}

	var flags models.GameFlags
	err := withSession(ctx, c.manager, i.GuildID, func(g *game.Guard) error {
		session := g.Session()
		flags = applyFlagOptions(session.Flags(), opts)
		return session.SetFlags(ctx, g, flags, invoker(i))
	})
	if err != nil {
		return r.Message(errorMessage("change flags", err))
	}
	return r.Embed(flagsEmbed(flags))
}

// applyFlagOptions overrides the flags given as options
func applyFlagOptions(flags models.GameFlags, opts options) models.GameFlags {
	if v, ok := opts.Bool("abstain"); ok {
		flags.AllowVoteAbstain = v
	}
	if v, ok := opts.Bool("change"); ok {
		flags.AllowVoteChange = v
	}
	if v, ok := opts.Bool("multi"); ok {
		flags.AllowVoteMulti = v
	}
	if _, ok := opts["cutoff"]; ok {
		flags.PlayerActivityCutoff = opts.Int("cutoff", flags.PlayerActivityCutoff)
	}
	return flags
}

// ChannelCommand handles the /channel command
type ChannelCommand struct {
	BaseCommand
	manager *game.Manager
}

// NewChannelCommand creates a new channel command handler
func NewChannelCommand(manager *game.Manager) *ChannelCommand {
	return &ChannelCommand{
		BaseCommand: BaseCommand{
			Name:        "channel",
			Description: "Choose the channels the game posts to",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set or unset one of the game channels",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "kind",
							Description: "Which channel",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "proposals", Value: string(models.ChannelProposals)},
								{Name: "rules", Value: string(models.ChannelRules)},
								{Name: "quantities", Value: string(models.ChannelQuantities)},
								{Name: "logs", Value: string(models.ChannelLogs)},
							},
						},
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "The channel to use; leave empty to unset",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the game channels",
				},
			},
		},
		manager: manager,
	}
}

// Handle processes a Discord interaction for the channel command
func (c *ChannelCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	r := newResponder(s, i)

	name, opts := subcommand(i.ApplicationCommandData())
	if name != "set" {
		session, err := c.manager.GetOrCreate(ctx, i.GuildID)
		if err != nil {
			return r.Message(errorMessage("show channels", err))
		}
		return r.Message(channelsText(session.Snapshot().Channels))
	}
	if !requireAdmin(r, i) {
		return nil
	}
	if err := r.Defer(); err != nil {
		return err
	}

	kind := models.ChannelKind(opts.String("kind"))
	channelID := opts.ChannelID("channel")
	err := withSession(ctx, c.manager, i.GuildID, func(g *game.Guard) error {
		return g.Session().SetChannel(ctx, g, kind, channelID, invoker(i))
	})
	success := fmt.Sprintf("The %s channel is now <#%s>.", kind, channelID)
	if channelID == "" {
		success = fmt.Sprintf("The %s channel is unset.", kind)
	}
	return r.Result("set channel", err, success)
}

// LogCommand handles the /log command
type LogCommand struct {
	BaseCommand
	manager *game.Manager
	logs    gamelog.Repository
}

// NewLogCommand creates a new log command handler
func NewLogCommand(manager *game.Manager, logs gamelog.Repository) *LogCommand {
	maxLimit := 50.0
	minLimit := 1.0
	return &LogCommand{
		BaseCommand: BaseCommand{
			Name:        "log",
			Description: "Read or add to the game log",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "comment",
					Description: "Add a comment to the game log",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "The comment",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "recent",
					Description: "Show the latest log entries",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "kind",
							Description: "Only entries of this kind",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "votes", Value: string(models.LogKindVote)},
								{Name: "proposals", Value: string(models.LogKindProposal)},
								{Name: "transactions", Value: string(models.LogKindTransaction)},
								{Name: "rules", Value: string(models.LogKindRule)},
								{Name: "quantities", Value: string(models.LogKindQuantity)},
								{Name: "comments", Value: string(models.LogKindComment)},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "limit",
							Description: "How many entries to show",
							MinValue:    &minLimit,
							MaxValue:    maxLimit,
						},
					},
				},
			},
		},
		manager: manager,
		logs:    logs,
	}
}

// Handle processes a Discord interaction for the log command
func (c *LogCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	r := newResponder(s, i)

	name, opts := subcommand(i.ApplicationCommandData())
	if name == "comment" {
		if err := r.Defer(); err != nil {
			return err
		}
		err := withSession(ctx, c.manager, i.GuildID, func(g *game.Guard) error {
			return g.Session().Comment(ctx, g, invoker(i), opts.String("text"))
		})
		return r.Result("add comment", err, "Comment added to the game log.")
	}

	out, err := c.logs.ListEntries(ctx, &gamelog.ListEntriesInput{
		GuildID: i.GuildID,
		Kind:    models.LogKind(opts.String("kind")),
		Limit:   opts.Int("limit", defaultLogLimit),
	})
	if err != nil {
		return r.Message(errorMessage("read the game log", err))
	}
	return r.Message(logText(out.Entries))
}
