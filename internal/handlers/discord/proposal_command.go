package discord

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

const (
	errNotAuthor game.GameError = "only the author or an admin can edit a proposal"
	errNoChannel game.GameError = "that channel has not been set, use /channel set first"
)

// ProposalCommand handles the /proposal command
type ProposalCommand struct {
	BaseCommand
	manager *game.Manager
	prompts *Prompts
}

func proposalNumberOption(description string) *discordgo.ApplicationCommandOption {
	minimum := 1.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "number",
		Description: description,
		Required:    true,
		MinValue:    &minimum,
	}
}

// NewProposalCommand creates a new proposal command handler
func NewProposalCommand(manager *game.Manager, prompts *Prompts) *ProposalCommand {
	minWeight := 1.0
	return &ProposalCommand{
		BaseCommand: BaseCommand{
			Name:        "proposal",
			Description: "Submit, vote on and manage proposals",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "submit",
					Description: "Submit a new proposal",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "content",
							Description: "Text of the proposal",
							Required:    true,
							MaxLength:   game.MaxProposalLength,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "vote",
					Description: "Vote on a proposal",
					Options: []*discordgo.ApplicationCommandOption{
						proposalNumberOption("Proposal to vote on"),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "vote",
							Description: "How to vote",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "for", Value: string(models.VoteFor)},
								{Name: "against", Value: string(models.VoteAgainst)},
								{Name: "abstain", Value: string(models.VoteAbstain)},
								{Name: "remove", Value: string(models.VoteRemove)},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Number of votes to cast (defaults to 1)",
							MinValue:    &minWeight,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "player",
							Description: "Vote on behalf of another player (admin only)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Mark a proposal as passed, failed, deleted or voting",
					Options: []*discordgo.ApplicationCommandOption{
						proposalNumberOption("Proposal to update"),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "status",
							Description: "New status",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "passed", Value: string(models.ProposalStatusPassed)},
								{Name: "failed", Value: string(models.ProposalStatusFailed)},
								{Name: "deleted", Value: string(models.ProposalStatusDeleted)},
								{Name: "voting", Value: string(models.ProposalStatusVoting)},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "edit",
					Description: "Replace the text of a proposal",
					Options: []*discordgo.ApplicationCommandOption{
						proposalNumberOption("Proposal to edit"),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "content",
							Description: "New text of the proposal",
							Required:    true,
							MaxLength:   game.MaxProposalLength,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "purge",
					Description: "Permanently delete the most recent proposal",
					Options: []*discordgo.ApplicationCommandOption{
						proposalNumberOption("Proposal to delete"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "repost",
					Description: "Repost proposal messages",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "from",
							Description: "First proposal to repost (defaults to 1)",
						},
					},
				},
			},
		},
		manager: manager,
		prompts: prompts,
	}
}

// Handle processes a Discord interaction for the proposal command
func (c *ProposalCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	r := newResponder(s, i)
	userID := invoker(i)

	name, opts := subcommand(i.ApplicationCommandData())
	switch name {
	case "submit":
		return c.handleSubmit(ctx, r, i.GuildID, userID, opts.String("content"))
	case "vote":
		voterID := userID
		if player := opts.UserID("player"); player != "" && player != userID {
			if !requireAdmin(r, i) {
				return nil
			}
			voterID = player
		}
		return c.handleVote(ctx, r, i.GuildID, &game.VoteInput{
			N:         opts.Int("number", 0),
			VoterID:   voterID,
			Direction: models.VoteDirection(opts.String("vote")),
			Weight:    opts.Int("amount", 1),
			ActorID:   userID,
		})
	case "status":
		if !requireAdmin(r, i) {
			return nil
		}
		return c.handleStatus(ctx, r, i.GuildID, &game.SetProposalStatusInput{
			N:       opts.Int("number", 0),
			Status:  models.ProposalStatus(opts.String("status")),
			ActorID: userID,
		})
	case "edit":
		return c.handleEdit(ctx, r, i.GuildID, memberIsAdmin(i), &game.SetProposalContentInput{
			N:       opts.Int("number", 0),
			Content: opts.String("content"),
			ActorID: userID,
		})
	case "purge":
		if !requireAdmin(r, i) {
			return nil
		}
		return c.handlePurge(ctx, r, i.GuildID, userID, opts.Int("number", 0))
	case "repost":
		if !requireAdmin(r, i) {
			return nil
		}
		return c.handleRepost(ctx, r, i.GuildID, opts.Int("from", 1))
	}
	return r.Message(fmt.Sprintf("Unknown subcommand %q.", name))
}

func (c *ProposalCommand) handleSubmit(ctx context.Context, r *responder, guildID, userID, content string) error {
	if err := r.Defer(); err != nil {
		return err
	}

	var prop *models.Proposal
	err := withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		var err error
		prop, err = g.Session().Proposals.Submit(ctx, g, &game.SubmitProposalInput{
			AuthorID: userID,
			Content:  content,
		})
		return err
	})
	if err != nil {
		return r.Message(errorMessage("submit proposal", err))
	}
	return r.Message(fmt.Sprintf("Submitted proposal #%d.", prop.N))
}

func (c *ProposalCommand) handleVote(ctx context.Context, r *responder, guildID string, input *game.VoteInput) error {
	if err := r.Defer(); err != nil {
		return err
	}

	var changed bool
	err := withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		var err error
		changed, err = g.Session().Proposals.Vote(ctx, g, input)
		return err
	})
	if err != nil {
		return r.Message(errorMessage("vote", err))
	}
	if !changed {
		return r.Message(fmt.Sprintf("Your vote on proposal #%d was not changed.", input.N))
	}
	return r.Message(fmt.Sprintf("Vote on proposal #%d recorded.", input.N))
}

func (c *ProposalCommand) handleStatus(ctx context.Context, r *responder, guildID string, input *game.SetProposalStatusInput) error {
	if err := r.Defer(); err != nil {
		return err
	}

	err := withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		return g.Session().Proposals.SetStatus(ctx, g, input)
	})
	return r.Result("update proposal", err, fmt.Sprintf("Proposal #%d is now %s.", input.N, input.Status))
}

func (c *ProposalCommand) handleEdit(ctx context.Context, r *responder, guildID string, admin bool, input *game.SetProposalContentInput) error {
	if err := r.Defer(); err != nil {
		return err
	}

	err := withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		proposals := g.Session().Proposals
		prop, err := proposals.Get(input.N)
		if err != nil {
			return err
		}
		if prop.AuthorID != input.ActorID && !admin {
			return errNotAuthor
		}
		return proposals.SetContent(ctx, g, input)
	})
	return r.Result("edit proposal", err, fmt.Sprintf("Proposal #%d updated.", input.N))
}

func (c *ProposalCommand) handlePurge(ctx context.Context, r *responder, guildID, userID string, n int) error {
	outcome, err := c.prompts.Ask(ctx, r, userID, fmt.Sprintf("Permanently delete proposal #%d? This cannot be undone.", n))
	if err != nil {
		return err
	}
	if outcome != Confirmed {
		return nil
	}

	err = withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		return g.Session().Proposals.PermanentlyDelete(ctx, g, n, userID)
	})
	return r.Result("delete proposal", err, fmt.Sprintf("Proposal #%d was permanently deleted.", n))
}

func (c *ProposalCommand) handleRepost(ctx context.Context, r *responder, guildID string, from int) error {
	if err := r.Defer(); err != nil {
		return err
	}

	err := withSession(ctx, c.manager, guildID, func(g *game.Guard) error {
		session := g.Session()
		if session.Channels().Proposals == "" {
			return errNoChannel
		}
		return session.Proposals.Repost(ctx, g, from)
	})
	return r.Result("repost proposals", err, "Proposals reposted.")
}
