package discord

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

// RuleCommand handles the /rule command
type RuleCommand struct {
	BaseCommand
	manager *game.Manager
	prompts *Prompts
}

func ruleTagOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func ruleTextOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

// ruleLocationOptions select a place in the tree relative to another rule
func ruleLocationOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "where",
			Description: "Place it before, after or inside the other rule (defaults to inside)",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "inside", Value: game.LocationIn},
				{Name: "before", Value: game.LocationBefore},
				{Name: "after", Value: game.LocationAfter},
			},
		},
		ruleTagOption("of", "Tag of the other rule (defaults to the top level)", false),
	}
}

// NewRuleCommand creates a new rule command handler
func NewRuleCommand(manager *game.Manager, prompts *Prompts) *RuleCommand {
	return &RuleCommand{
		BaseCommand: BaseCommand{
			Name:        "rule",
			Description: "Edit the rules of the game",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a rule",
					Options: append([]*discordgo.ApplicationCommandOption{
						ruleTagOption("tag", "Short unique name of the rule", true),
						ruleTextOption("title", "Title of the rule"),
						ruleTextOption("content", "Text of the rule; [#tag] links to another rule"),
					}, ruleLocationOptions()...),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "move",
					Description: "Move a rule and its subrules",
					Options: append([]*discordgo.ApplicationCommandOption{
						ruleTagOption("tag", "Rule to move", true),
					}, ruleLocationOptions()...),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "retag",
					Description: "Change the tag of a rule",
					Options: []*discordgo.ApplicationCommandOption{
						ruleTagOption("tag", "Rule to retag", true),
						ruleTagOption("new_tag", "New tag", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "retitle",
					Description: "Change the title of a rule",
					Options: []*discordgo.ApplicationCommandOption{
						ruleTagOption("tag", "Rule to retitle", true),
						ruleTextOption("title", "New title"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "edit",
					Description: "Replace the text of a rule",
					Options: []*discordgo.ApplicationCommandOption{
						ruleTagOption("tag", "Rule to edit", true),
						ruleTextOption("content", "New text of the rule"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a rule and all of its subrules",
					Options: []*discordgo.ApplicationCommandOption{
						ruleTagOption("tag", "Rule to remove", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show a rule",
					Options: []*discordgo.ApplicationCommandOption{
						ruleTagOption("tag", "Rule to show", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "repost",
					Description: "Repost every rule message",
				},
			},
		},
		manager: manager,
		prompts: prompts,
	}
}

// Handle processes a Discord interaction for the rule command
func (c *RuleCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	r := newResponder(s, i)
	userID := invoker(i)

	name, opts := subcommand(i.ApplicationCommandData())
	if name == "show" {
		return c.handleShow(ctx, r, i.GuildID, opts.String("tag"))
	}
	if !requireAdmin(r, i) {
		return nil
	}

	tag := opts.String("tag")
	switch name {
	case "add":
		return c.run(ctx, r, i.GuildID, "add rule", func(g *game.Guard) (string, error) {
			rules := g.Session().Rules
			parent, index, err := rules.ResolveLocation(locationOf(opts))
			if err != nil {
				return "", err
			}
			rule, err := rules.Add(ctx, g, &game.AddRuleInput{
				Tag:     tag,
				Parent:  parent,
				Index:   index,
				Title:   opts.String("title"),
				Content: opts.String("content"),
				ActorID: userID,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Added rule %s %s.", rules.Section(rule.Tag), rule.Title), nil
		})
	case "move":
		return c.run(ctx, r, i.GuildID, "move rule", func(g *game.Guard) (string, error) {
			rules := g.Session().Rules
			parent, index, err := rules.ResolveLocation(locationOf(opts))
			if err != nil {
				return "", err
			}
			err = rules.Move(ctx, g, &game.MoveRuleInput{Tag: tag, Parent: parent, Index: index, ActorID: userID})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Rule [#%s] is now section %s", tag, rules.Section(tag)), nil
		})
	case "retag":
		newTag := opts.String("new_tag")
		return c.run(ctx, r, i.GuildID, "retag rule", func(g *game.Guard) (string, error) {
			if err := g.Session().Rules.Retag(ctx, g, tag, newTag, userID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Rule [#%s] is now [#%s].", tag, newTag), nil
		})
	case "retitle":
		return c.run(ctx, r, i.GuildID, "retitle rule", func(g *game.Guard) (string, error) {
			return "Rule retitled.", g.Session().Rules.Retitle(ctx, g, tag, opts.String("title"), userID)
		})
	case "edit":
		return c.run(ctx, r, i.GuildID, "edit rule", func(g *game.Guard) (string, error) {
			return "Rule updated.", g.Session().Rules.SetContent(ctx, g, tag, opts.String("content"), userID)
		})
	case "remove":
		return c.handleRemove(ctx, r, i.GuildID, userID, tag)
	case "repost":
		return c.run(ctx, r, i.GuildID, "repost rules", func(g *game.Guard) (string, error) {
			session := g.Session()
			if session.Channels().Rules == "" {
				return "", errNoChannel
			}
			return "Rules reposted.", session.Rules.RepostAll(ctx, g)
		})
	}
	return r.Message(fmt.Sprintf("Unknown subcommand %q.", name))
}

// locationOf reads the where/of options, defaulting to the end of the top level
func locationOf(opts options) (string, string) {
	where := opts.String("where")
	if where == "" {
		where = game.LocationIn
	}
	of := opts.String("of")
	if of == "" {
		of = models.RootRuleTag
	}
	return where, of
}

// run defers the response, applies fn under the session lock and reports
func (c *RuleCommand) run(ctx context.Context, r *responder, guildID, action string, fn func(g *game.Guard) (string, error)) error {
	if err := r.Defer(); err != nil {
		return err
	}

	var msg string
	err := withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		var err error
		msg, err = fn(g)
		return err
	})
	return r.Result(action, err, msg)
}

func (c *RuleCommand) handleRemove(ctx context.Context, r *responder, guildID, userID, tag string) error {
	outcome, err := c.prompts.Ask(ctx, r, userID, fmt.Sprintf("Remove rule [#%s] and all of its subrules?", tag))
	if err != nil {
		return err
	}
	if outcome != Confirmed {
		return nil
	}

	err = withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		return g.Session().Rules.Remove(ctx, g, tag, userID)
	})
	return r.Result("remove rule", err, fmt.Sprintf("Rule [#%s] removed.", tag))
}

func (c *RuleCommand) handleShow(ctx context.Context, r *responder, guildID, tag string) error {
	session, err := c.manager.GetOrCreate(ctx, guildID)
	if err != nil {
		return r.Message(errorMessage("show rule", err))
	}
	embed, err := ruleEmbed(session.Snapshot(), tag)
	if err != nil {
		return r.Message(errorMessage("show rule", err))
	}
	return r.Embed(embed)
}
