package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/nomic/internal/common/uuid"
	"github.com/bwmarrin/discordgo"
)

// Outcome is how a confirmation prompt was resolved
type Outcome int

const (
	Confirmed Outcome = iota
	Cancelled
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed out"
	}
	return "unknown"
}

const confirmPrefix = "confirm"

type pendingPrompt struct {
	ownerID string
	answer  chan bool
}

// Prompts tracks open yes/no prompts. A prompt is answered by a button
// click from the user it was shown to, or times out.
//
// Prompts must be resolved before taking a session lock so that a
// forgotten prompt never stalls the game.
type Prompts struct {
	timeout time.Duration
	uuid    uuid.UUID

	mu      sync.Mutex
	pending map[string]*pendingPrompt
}

// NewPrompts creates a prompt registry
func NewPrompts(timeout time.Duration, uuidGenerator uuid.UUID) *Prompts {
	return &Prompts{
		timeout: timeout,
		uuid:    uuidGenerator,
		pending: make(map[string]*pendingPrompt),
	}
}

func (p *Prompts) open(ownerID string) (string, <-chan bool) {
	id := p.uuid.NewUUID()
	prompt := &pendingPrompt{ownerID: ownerID, answer: make(chan bool, 1)}

	p.mu.Lock()
	p.pending[id] = prompt
	p.mu.Unlock()
	return id, prompt.answer
}

func (p *Prompts) close(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

// Resolve answers an open prompt. It returns false if the prompt is gone
// or belongs to someone else.
func (p *Prompts) Resolve(id, userID string, yes bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	prompt, ok := p.pending[id]
	if !ok || prompt.ownerID != userID {
		return false
	}
	delete(p.pending, id)
	prompt.answer <- yes
	return true
}

// wait blocks until the prompt is answered, times out or ctx ends
func (p *Prompts) wait(ctx context.Context, id string, answer <-chan bool) Outcome {
	defer p.close(id)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case yes := <-answer:
		if yes {
			return Confirmed
		}
		return Cancelled
	case <-timer.C:
	case <-ctx.Done():
	}

	// an answer may have raced the timer
	select {
	case yes := <-answer:
		if yes {
			return Confirmed
		}
		return Cancelled
	default:
		return TimedOut
	}
}

// Ask shows an ephemeral yes/no prompt as the answer to an interaction
// and waits for the invoking user to click
func (p *Prompts) Ask(ctx context.Context, r *responder, ownerID, question string) (Outcome, error) {
	id, answer := p.open(ownerID)
	if err := r.Prompt(question, confirmButtons(id)); err != nil {
		p.close(id)
		return Cancelled, fmt.Errorf("failed to show prompt: %w", err)
	}

	outcome := p.wait(ctx, id, answer)
	if outcome != Confirmed {
		if err := r.Message(fmt.Sprintf("%s (%s)", question, outcome)); err != nil {
			log.Printf("Error closing prompt: %v", err)
		}
	}
	return outcome, nil
}

// AskInChannel posts a yes/no prompt replying to a message, waits for its
// author to click and deletes the prompt
func (p *Prompts) AskInChannel(ctx context.Context, s *discordgo.Session, m *discordgo.Message, question string) (Outcome, error) {
	id, answer := p.open(m.Author.ID)
	prompt, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s> %s", m.Author.ID, question),
		Components: confirmButtons(id),
		Reference:  m.Reference(),
	})
	if err != nil {
		p.close(id)
		return Cancelled, fmt.Errorf("failed to post prompt: %w", err)
	}

	outcome := p.wait(ctx, id, answer)
	if err := s.ChannelMessageDelete(prompt.ChannelID, prompt.ID); err != nil {
		log.Printf("Error deleting prompt %s: %v", prompt.ID, err)
	}
	return outcome, nil
}

// HandleButton answers a click on a prompt button; it reports false for
// components that are not prompt buttons
func (p *Prompts) HandleButton(s *discordgo.Session, i *discordgo.InteractionCreate) (bool, error) {
	id, yes, ok := parseConfirmID(i.MessageComponentData().CustomID)
	if !ok {
		return false, nil
	}
	if !p.Resolve(id, invoker(i), yes) {
		return true, RespondWithEphemeralMessage(s, i, "This prompt is not for you or has expired.")
	}
	return true, s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func confirmButtons(id string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Yes",
					Style:    discordgo.SuccessButton,
					CustomID: confirmID(id, true),
				},
				discordgo.Button{
					Label:    "No",
					Style:    discordgo.DangerButton,
					CustomID: confirmID(id, false),
				},
			},
		},
	}
}

func confirmID(id string, yes bool) string {
	answer := "no"
	if yes {
		answer = "yes"
	}
	return strings.Join([]string{confirmPrefix, id, answer}, ":")
}

func parseConfirmID(customID string) (string, bool, bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != confirmPrefix || parts[1] == "" {
		return "", false, false
	}
	switch parts[2] {
	case "yes":
		return parts[1], true, true
	case "no":
		return parts[1], false, true
	}
	return "", false, false
}
