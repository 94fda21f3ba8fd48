package discord

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

const errInvalidAmount game.GameError = "amount must be a positive number"

// QuantityCommand handles the /quantity command
type QuantityCommand struct {
	BaseCommand
	manager *game.Manager
	prompts *Prompts
}

func quantityOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
		MaxLength:   game.MaxQuantityNameLength,
	}
}

func transactionOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		quantityOption("quantity", "Quantity name or alias", true),
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "player",
			Description: "Player whose balance changes",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "amount",
			Description: "Amount, for example 5 or 2.5",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the balance changes",
		},
	}
}

// NewQuantityCommand creates a new quantity command handler
func NewQuantityCommand(manager *game.Manager, prompts *Prompts) *QuantityCommand {
	return &QuantityCommand{
		BaseCommand: BaseCommand{
			Name:        "quantity",
			Description: "Track currencies and other quantities",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Create a quantity",
					Options: []*discordgo.ApplicationCommandOption{
						quantityOption("name", "Name of the quantity", true),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "aliases",
							Description: "Other names, separated by commas or spaces",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Delete a quantity and every balance",
					Options: []*discordgo.ApplicationCommandOption{
						quantityOption("name", "Quantity name or alias", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "rename",
					Description: "Rename a quantity",
					Options: []*discordgo.ApplicationCommandOption{
						quantityOption("name", "Quantity name or alias", true),
						quantityOption("new_name", "New name", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "aliases",
					Description: "Replace the aliases of a quantity",
					Options: []*discordgo.ApplicationCommandOption{
						quantityOption("name", "Quantity name or alias", true),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "aliases",
							Description: "Other names, separated by commas or spaces; empty clears them",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "give",
					Description: "Add to a player's balance",
					Options:     transactionOptions(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "take",
					Description: "Subtract from a player's balance",
					Options:     transactionOptions(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set a player's balance",
					Options:     transactionOptions()[:3],
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Clear every balance of a quantity",
					Options: []*discordgo.ApplicationCommandOption{
						quantityOption("name", "Quantity name or alias", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List quantities, or the balances of one",
					Options: []*discordgo.ApplicationCommandOption{
						quantityOption("name", "Quantity name or alias", false),
					},
				},
			},
		},
		manager: manager,
		prompts: prompts,
	}
}

// Handle processes a Discord interaction for the quantity command
func (c *QuantityCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	r := newResponder(s, i)
	userID := invoker(i)

	name, opts := subcommand(i.ApplicationCommandData())
	if name == "list" {
		return c.handleList(ctx, r, i.GuildID, opts.String("name"))
	}
	if !requireAdmin(r, i) {
		return nil
	}

	quantity := opts.String("name")
	switch name {
	case "add":
		return c.run(ctx, r, i.GuildID, "add quantity", func(g *game.Guard) (string, error) {
			q, err := g.Session().Quantities.Add(ctx, g, &game.AddQuantityInput{
				Name:    quantity,
				Aliases: splitNames(opts.String("aliases")),
				ActorID: userID,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Added quantity %s.", q.Name), nil
		})
	case "remove":
		return c.handleConfirmed(ctx, r, i.GuildID, userID, "remove quantity",
			fmt.Sprintf("Delete quantity %s and every balance of it?", quantity),
			func(g *game.Guard) (string, error) {
				return "Quantity removed.", g.Session().Quantities.Remove(ctx, g, quantity, userID)
			})
	case "rename":
		newName := opts.String("new_name")
		return c.run(ctx, r, i.GuildID, "rename quantity", func(g *game.Guard) (string, error) {
			return fmt.Sprintf("Renamed %s to %s.", quantity, newName), g.Session().Quantities.Rename(ctx, g, quantity, newName, userID)
		})
	case "aliases":
		return c.run(ctx, r, i.GuildID, "set aliases", func(g *game.Guard) (string, error) {
			return "Aliases updated.", g.Session().Quantities.SetAliases(ctx, g, quantity, splitNames(opts.String("aliases")), userID)
		})
	case "give", "take":
		amount, err := positiveAmount(opts.String("amount"))
		if err != nil {
			return r.Message(errorMessage("change balance", err))
		}
		if name == "take" {
			amount = amount.Neg()
		}
		input := &game.TransactInput{
			Quantity: opts.String("quantity"),
			UserID:   opts.UserID("player"),
			Delta:    amount,
			Reason:   opts.String("reason"),
			ActorID:  userID,
		}
		return c.run(ctx, r, i.GuildID, "change balance", func(g *game.Guard) (string, error) {
			balance, err := g.Session().Quantities.Transact(ctx, g, input)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("<@%s> now has %s %s.", input.UserID, game.FormatAmount(balance), input.Quantity), nil
		})
	case "set":
		value, err := game.ParseAmount(opts.String("amount"))
		if err != nil {
			return r.Message(errorMessage("set balance", errInvalidAmount))
		}
		input := &game.SetBalanceInput{
			Quantity: opts.String("quantity"),
			UserID:   opts.UserID("player"),
			Value:    value,
			ActorID:  userID,
		}
		return c.run(ctx, r, i.GuildID, "set balance", func(g *game.Guard) (string, error) {
			return "Balance set.", g.Session().Quantities.Set(ctx, g, input)
		})
	case "reset":
		return c.handleConfirmed(ctx, r, i.GuildID, userID, "reset quantity",
			fmt.Sprintf("Clear every balance of %s?", quantity),
			func(g *game.Guard) (string, error) {
				return "Balances cleared.", g.Session().Quantities.Reset(ctx, g, quantity, userID)
			})
	}
	return r.Message(fmt.Sprintf("Unknown subcommand %q.", name))
}

func (c *QuantityCommand) run(ctx context.Context, r *responder, guildID, action string, fn func(g *game.Guard) (string, error)) error {
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

func (c *QuantityCommand) handleConfirmed(ctx context.Context, r *responder, guildID, userID, action, question string, fn func(g *game.Guard) (string, error)) error {
	outcome, err := c.prompts.Ask(ctx, r, userID, question)
	if err != nil {
		return err
	}
	if outcome != Confirmed {
		return nil
	}
	return c.run(ctx, r, guildID, action, fn)
}

func (c *QuantityCommand) handleList(ctx context.Context, r *responder, guildID, name string) error {
	session, err := c.manager.GetOrCreate(ctx, guildID)
	if err != nil {
		return r.Message(errorMessage("list quantities", err))
	}
	embed, err := quantitiesEmbed(session.Snapshot(), name)
	if err != nil {
		return r.Message(errorMessage("list quantities", err))
	}
	return r.Embed(embed)
}

// splitNames splits a list of names on commas and whitespace
func splitNames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func positiveAmount(s string) (decimal.Decimal, error) {
	v, err := game.ParseAmount(s)
	if err != nil || !v.IsPositive() {
		return decimal.Zero, errInvalidAmount
	}
	return v, nil
}
