package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
)

// MaxProposalLength is the longest proposal content accepted
const MaxProposalLength = 1000

// ProposalStore holds the numbered proposals of a game and keeps their
// messages in the proposals channel in step with them
type ProposalStore struct {
	session   *Session
	proposals []*models.Proposal
}

// SubmitProposalInput contains the new proposal
type SubmitProposalInput struct {
	AuthorID string
	Content  string
}

// VoteInput contains one player's vote on a proposal
type VoteInput struct {
	N         int
	VoterID   string
	Direction models.VoteDirection

	// Weight is how many votes to add; zero means one
	Weight int

	// ActorID is who cast the vote when it differs from the voter
	ActorID string
}

// SetProposalStatusInput contains a status change
type SetProposalStatusInput struct {
	N       int
	Status  models.ProposalStatus
	ActorID string
}

// SetProposalContentInput contains an edit of a proposal's text
type SetProposalContentInput struct {
	N       int
	Content string
	ActorID string
}

func (p *ProposalStore) load(proposals []*models.Proposal) {
	p.proposals = make([]*models.Proposal, 0, len(proposals))
	for _, prop := range proposals {
		p.proposals = append(p.proposals, prop.Clone())
	}
}

func (p *ProposalStore) export() []*models.Proposal {
	out := make([]*models.Proposal, 0, len(p.proposals))
	for _, prop := range p.proposals {
		out = append(out, prop.Clone())
	}
	return out
}

// Count returns the number of proposals; numbers run from 1 to Count
func (p *ProposalStore) Count() int {
	return len(p.proposals)
}

// Get returns a copy of proposal n
func (p *ProposalStore) Get(n int) (*models.Proposal, error) {
	prop, err := p.get(n)
	if err != nil {
		return nil, err
	}
	return prop.Clone(), nil
}

// ByMessageID finds the proposal rendered in a message
func (p *ProposalStore) ByMessageID(messageID string) (*models.Proposal, error) {
	if messageID != "" {
		for _, prop := range p.proposals {
			if prop.MessageID == messageID {
				return prop.Clone(), nil
			}
		}
	}
	return nil, ErrNotProposalMessage
}

func (p *ProposalStore) get(n int) (*models.Proposal, error) {
	if n < 1 || n > len(p.proposals) {
		return nil, fmt.Errorf("%w: #%d", ErrProposalNotFound, n)
	}
	return p.proposals[n-1], nil
}

func (p *ProposalStore) voting() []int {
	out := []int{}
	for _, prop := range p.proposals {
		if prop.Status == models.ProposalStatusVoting {
			out = append(out, prop.N)
		}
	}
	return out
}

func validateProposalContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrProposalEmpty
	}
	if utf8.RuneCountInString(content) > MaxProposalLength {
		return "", ErrProposalTooLong
	}
	return content, nil
}

// Submit appends a new proposal, open for voting, and posts it
func (p *ProposalStore) Submit(ctx context.Context, g *Guard, input *SubmitProposalInput) (*models.Proposal, error) {
	if err := p.session.check(g); err != nil {
		return nil, err
	}
	if input == nil || input.AuthorID == "" {
		return nil, errors.New("input and author ID cannot be empty")
	}
	content, err := validateProposalContent(input.Content)
	if err != nil {
		return nil, err
	}

	prop := &models.Proposal{
		N:         len(p.proposals) + 1,
		AuthorID:  input.AuthorID,
		Content:   content,
		Status:    models.ProposalStatusVoting,
		Votes:     models.NewPlayerLedger[int](),
		Timestamp: p.session.clock.Now().Truncate(time.Second),
	}
	p.proposals = append(p.proposals, prop)
	p.session.touch()
	p.session.record(ctx, models.LogKindProposal, input.AuthorID, "submitted proposal #%d", prop.N)

	if err := p.Repost(ctx, g, prop.N); err != nil {
		return prop.Clone(), err
	}
	return prop.Clone(), nil
}

// Vote applies one vote. It returns false without error when the game's
// flags disallow the vote, and ErrProposalClosed when the proposal is not
// open for voting.
func (p *ProposalStore) Vote(ctx context.Context, g *Guard, input *VoteInput) (bool, error) {
	if err := p.session.check(g); err != nil {
		return false, err
	}
	if input == nil || input.VoterID == "" {
		return false, errors.New("input and voter ID cannot be empty")
	}
	prop, err := p.get(input.N)
	if err != nil {
		return false, err
	}
	if !input.Direction.IsValid() {
		return false, ErrInvalidVote
	}
	weight := input.Weight
	if weight == 0 {
		weight = 1
	}
	if weight < 0 {
		return false, ErrInvalidVoteWeight
	}
	if !prop.Status.IsVoting() {
		return false, fmt.Errorf("%w: #%d is %s", ErrProposalClosed, prop.N, prop.Status)
	}

	old, had := prop.Votes.Get(input.VoterID)
	flags := p.session.flags

	var next int
	remove := false
	switch input.Direction {
	case models.VoteRemove:
		if !had {
			return false, nil
		}
		remove = true
	case models.VoteAbstain:
		if !flags.AllowVoteAbstain {
			return false, nil
		}
		next = 0
	case models.VoteFor:
		if had && old < 0 {
			next = weight
		} else {
			next = old + weight
		}
	case models.VoteAgainst:
		if had && old > 0 {
			next = -weight
		} else {
			next = old - weight
		}
	}

	if !remove && input.Direction != models.VoteAbstain && next == 0 {
		remove = true
	}
	if !remove && !flags.AllowVoteMulti && (next > 1 || next < -1) {
		next = sign(next)
	}

	if (remove && !had) || (!remove && had && next == old) {
		return true, nil
	}
	if had && old != 0 && !remove && !flags.AllowVoteChange {
		return false, nil
	}

	if remove {
		prop.Votes.Delete(input.VoterID)
	} else {
		prop.Votes.Set(input.VoterID, next)
	}
	p.session.touch()

	actor := input.ActorID
	if actor == "" {
		actor = input.VoterID
	}
	if actor == input.VoterID {
		p.session.record(ctx, models.LogKindVote, actor, "voted %s on proposal #%d", describeVote(remove, next), prop.N)
	} else {
		p.session.record(ctx, models.LogKindVote, actor, "recorded a vote %s for <@%s> on proposal #%d", describeVote(remove, next), input.VoterID, prop.N)
	}

	if err := p.Refresh(ctx, g, prop.N); err != nil {
		return true, err
	}
	return true, nil
}

// AbstainOrRemove toggles an abstention: a player without a vote abstains,
// a player with any vote has it removed
func (p *ProposalStore) AbstainOrRemove(ctx context.Context, g *Guard, n int, voterID string) (bool, error) {
	if err := p.session.check(g); err != nil {
		return false, err
	}
	prop, err := p.get(n)
	if err != nil {
		return false, err
	}
	direction := models.VoteAbstain
	if prop.Votes.Has(voterID) {
		direction = models.VoteRemove
	}
	return p.Vote(ctx, g, &VoteInput{N: n, VoterID: voterID, Direction: direction})
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

func describeVote(removed bool, weight int) string {
	switch {
	case removed:
		return "remove"
	case weight > 0:
		return fmt.Sprintf("for (%d)", weight)
	case weight < 0:
		return fmt.Sprintf("against (%d)", -weight)
	}
	return "abstain"
}

// SetStatus forces a proposal's status; setting Voting reopens it
func (p *ProposalStore) SetStatus(ctx context.Context, g *Guard, input *SetProposalStatusInput) error {
	if err := p.session.check(g); err != nil {
		return err
	}
	if input == nil {
		return errors.New("input cannot be nil")
	}
	prop, err := p.get(input.N)
	if err != nil {
		return err
	}
	if !input.Status.IsValid() {
		return ErrInvalidStatus
	}

	if prop.Status != input.Status {
		prop.Status = input.Status
		p.session.touch()
		p.session.record(ctx, models.LogKindProposal, input.ActorID, "set proposal #%d to %s", prop.N, input.Status)
	}
	return p.Refresh(ctx, g, prop.N)
}

// SetContent replaces a proposal's text
func (p *ProposalStore) SetContent(ctx context.Context, g *Guard, input *SetProposalContentInput) error {
	if err := p.session.check(g); err != nil {
		return err
	}
	if input == nil {
		return errors.New("input cannot be nil")
	}
	prop, err := p.get(input.N)
	if err != nil {
		return err
	}
	content, err := validateProposalContent(input.Content)
	if err != nil {
		return err
	}

	if prop.Content != content {
		prop.Content = content
		p.session.touch()
		p.session.record(ctx, models.LogKindProposal, input.ActorID, "edited proposal #%d", prop.N)
	}
	return p.Refresh(ctx, g, prop.N)
}

// PermanentlyDelete removes the most recent proposal and its message.
// Any other proposal is rejected with ErrNotLastProposal so that numbers
// never shift; use the deleted status instead.
func (p *ProposalStore) PermanentlyDelete(ctx context.Context, g *Guard, n int, actorID string) error {
	if err := p.session.check(g); err != nil {
		return err
	}
	prop, err := p.get(n)
	if err != nil {
		return err
	}
	if prop.N != len(p.proposals) {
		return fmt.Errorf("%w: #%d of %d", ErrNotLastProposal, prop.N, len(p.proposals))
	}

	p.proposals = p.proposals[:len(p.proposals)-1]
	p.session.touch()
	p.session.record(ctx, models.LogKindProposal, actorID, "permanently deleted proposal #%d", prop.N)

	channelID := p.session.channels.Proposals
	if channelID == "" || prop.MessageID == "" {
		return nil
	}
	err = p.session.chat.DeleteMessage(ctx, &messaging.DeleteMessageInput{ChannelID: channelID, MessageID: prop.MessageID})
	if err != nil && !errors.Is(err, messaging.ErrMessageNotFound) {
		return err
	}
	return nil
}

func (p *ProposalStore) forgetMessages() {
	for _, prop := range p.proposals {
		prop.MessageID = ""
	}
}

// Refresh brings the messages of the given proposals up to date in place.
// A proposal whose message is missing escalates to Repost from that number.
func (p *ProposalStore) Refresh(ctx context.Context, g *Guard, ns ...int) error {
	if err := p.session.check(g); err != nil {
		return err
	}
	return p.refresh(ctx, ns, true)
}

func (p *ProposalStore) refresh(ctx context.Context, ns []int, mayRepost bool) error {
	channelID := p.session.channels.Proposals
	if channelID == "" {
		return nil
	}

	ns = slices.Clone(ns)
	sort.Ints(ns)
	ns = slices.Compact(ns)

	for _, n := range ns {
		prop, err := p.get(n)
		if err != nil {
			return err
		}

		err = p.refreshOne(ctx, channelID, prop)
		if errors.Is(err, messaging.ErrMessageNotFound) && mayRepost {
			// the repost covers every later proposal too
			return p.repost(ctx, n)
		}
		if err != nil {
			return fmt.Errorf("failed to refresh proposal #%d: %w", n, err)
		}
	}
	return nil
}

func (p *ProposalStore) refreshOne(ctx context.Context, channelID string, prop *models.Proposal) error {
	if prop.MessageID == "" {
		return messaging.ErrMessageNotFound
	}

	fetched, err := p.session.chat.FetchMessage(ctx, &messaging.FetchMessageInput{
		ChannelID: channelID,
		MessageID: prop.MessageID,
	})
	if err != nil {
		return err
	}
	msg := fetched.Message

	content := proposalContent(prop)
	reactions := proposalReactions(prop, p.session.flags)

	if !msg.Content.Equal(content) {
		err := p.session.chat.EditMessage(ctx, &messaging.EditMessageInput{
			ChannelID: channelID,
			MessageID: prop.MessageID,
			Content:   content,
		})
		if err != nil {
			return err
		}
	}

	if slices.Equal(msg.OwnReactions(), reactions) {
		return nil
	}
	if len(msg.Reactions) > 0 {
		err := p.session.chat.ClearReactions(ctx, &messaging.ClearReactionsInput{
			ChannelID: channelID,
			MessageID: prop.MessageID,
		})
		if err != nil {
			return err
		}
	}
	for _, emoji := range reactions {
		err := p.session.chat.AddReaction(ctx, &messaging.AddReactionInput{
			ChannelID: channelID,
			MessageID: prop.MessageID,
			Emoji:     emoji,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Repost deletes the messages of proposals from onward and posts them
// again in order, restoring the channel's sequence
func (p *ProposalStore) Repost(ctx context.Context, g *Guard, from int) error {
	if err := p.session.check(g); err != nil {
		return err
	}
	if _, err := p.get(from); err != nil {
		return err
	}
	return p.repost(ctx, from)
}

func (p *ProposalStore) repost(ctx context.Context, from int) error {
	channelID := p.session.channels.Proposals
	if channelID == "" {
		log.Printf("No proposals channel for guild %s; not posting proposals", p.session.guildID)
		return nil
	}

	tail := p.proposals[from-1:]
	stale := []string{}
	for _, prop := range tail {
		if prop.MessageID != "" {
			stale = append(stale, prop.MessageID)
		}
	}
	if len(stale) > 0 {
		err := p.session.chat.BulkDeleteMessages(ctx, &messaging.BulkDeleteMessagesInput{
			ChannelID:  channelID,
			MessageIDs: stale,
		})
		if err != nil {
			return fmt.Errorf("failed to delete proposal messages: %w", err)
		}
		for _, prop := range tail {
			prop.MessageID = ""
		}
		p.session.touch()
	}

	ns := make([]int, 0, len(tail))
	for _, prop := range tail {
		out, err := p.session.chat.SendMessage(ctx, &messaging.SendMessageInput{
			ChannelID: channelID,
			Content:   proposalPlaceholder(prop.N),
		})
		if err != nil {
			return fmt.Errorf("failed to post proposal #%d: %w", prop.N, err)
		}
		prop.MessageID = out.Message.ID
		p.session.touch()
		ns = append(ns, prop.N)
	}

	return p.refresh(ctx, ns, false)
}
