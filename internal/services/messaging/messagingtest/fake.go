// Package messagingtest provides an in-memory chat platform for tests.
package messagingtest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/KirkDiggler/nomic/internal/services/messaging"
)

// Calls counts the side effects the fake has performed
type Calls struct {
	Sends          int
	Edits          int
	Deletes        int
	BulkDeletes    int
	ReactionAdds   int
	ReactionClears int
	Fetches        int
}

// Effects is the number of calls that changed what players can see
func (c Calls) Effects() int {
	return c.Sends + c.Edits + c.Deletes + c.BulkDeletes + c.ReactionAdds + c.ReactionClears
}

// Fake is a messaging.Service that keeps every channel in memory.
// Message IDs are increasing integers so channel order follows send order.
type Fake struct {
	mu       sync.Mutex
	nextID   int
	messages map[string]*messaging.Message
	calls    Calls

	// FailSends makes SendMessage fail with this error when set
	FailSends error
}

// NewFake creates an empty fake chat platform
func NewFake() *Fake {
	return &Fake{
		nextID:   1000,
		messages: make(map[string]*messaging.Message),
	}
}

func key(channelID, messageID string) string {
	return channelID + "/" + messageID
}

// SendMessage stores a new message
func (f *Fake) SendMessage(ctx context.Context, input *messaging.SendMessageInput) (*messaging.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailSends != nil {
		return nil, f.FailSends
	}
	f.calls.Sends++
	f.nextID++
	msg := &messaging.Message{
		ID:        strconv.Itoa(f.nextID),
		ChannelID: input.ChannelID,
		Content:   cloneContent(input.Content),
		Reactions: []messaging.Reaction{},
	}
	f.messages[key(msg.ChannelID, msg.ID)] = msg
	return &messaging.SendMessageOutput{Message: cloneMessage(msg)}, nil
}

// EditMessage replaces a stored message's content
func (f *Fake) EditMessage(ctx context.Context, input *messaging.EditMessageInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[key(input.ChannelID, input.MessageID)]
	if !ok {
		return fmt.Errorf("failed to edit message: %w", messaging.ErrMessageNotFound)
	}
	f.calls.Edits++
	msg.Content = cloneContent(input.Content)
	return nil
}

// DeleteMessage removes a stored message
func (f *Fake) DeleteMessage(ctx context.Context, input *messaging.DeleteMessageInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := key(input.ChannelID, input.MessageID)
	if _, ok := f.messages[k]; !ok {
		return fmt.Errorf("failed to delete message: %w", messaging.ErrMessageNotFound)
	}
	f.calls.Deletes++
	delete(f.messages, k)
	return nil
}

// BulkDeleteMessages removes every listed message that exists
func (f *Fake) BulkDeleteMessages(ctx context.Context, input *messaging.BulkDeleteMessagesInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(input.MessageIDs) == 0 {
		return nil
	}
	f.calls.BulkDeletes++
	for _, id := range input.MessageIDs {
		delete(f.messages, key(input.ChannelID, id))
	}
	return nil
}

// AddReaction records a bot reaction
func (f *Fake) AddReaction(ctx context.Context, input *messaging.AddReactionInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[key(input.ChannelID, input.MessageID)]
	if !ok {
		return fmt.Errorf("failed to add reaction: %w", messaging.ErrMessageNotFound)
	}
	f.calls.ReactionAdds++
	for i := range msg.Reactions {
		if msg.Reactions[i].Emoji == input.Emoji {
			if !msg.Reactions[i].Me {
				msg.Reactions[i].Me = true
				msg.Reactions[i].Count++
			}
			return nil
		}
	}
	msg.Reactions = append(msg.Reactions, messaging.Reaction{Emoji: input.Emoji, Count: 1, Me: true})
	return nil
}

// ClearReactions removes all reactions
func (f *Fake) ClearReactions(ctx context.Context, input *messaging.ClearReactionsInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[key(input.ChannelID, input.MessageID)]
	if !ok {
		return fmt.Errorf("failed to clear reactions: %w", messaging.ErrMessageNotFound)
	}
	f.calls.ReactionClears++
	msg.Reactions = []messaging.Reaction{}
	return nil
}

// FetchMessage returns a copy of a stored message
func (f *Fake) FetchMessage(ctx context.Context, input *messaging.FetchMessageInput) (*messaging.FetchMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls.Fetches++
	msg, ok := f.messages[key(input.ChannelID, input.MessageID)]
	if !ok {
		return nil, fmt.Errorf("failed to fetch message: %w", messaging.ErrMessageNotFound)
	}
	return &messaging.FetchMessageOutput{Message: cloneMessage(msg)}, nil
}

// Remove deletes a message without counting it, as a moderator would
func (f *Fake) Remove(channelID, messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, key(channelID, messageID))
}

// React adds a reaction from a player other than the bot
func (f *Fake) React(channelID, messageID, emoji string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[key(channelID, messageID)]
	if !ok {
		return
	}
	for i := range msg.Reactions {
		if msg.Reactions[i].Emoji == emoji {
			msg.Reactions[i].Count++
			return
		}
	}
	msg.Reactions = append(msg.Reactions, messaging.Reaction{Emoji: emoji, Count: 1})
}

// Message returns a copy of a stored message, or nil
func (f *Fake) Message(channelID, messageID string) *messaging.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[key(channelID, messageID)]
	if !ok {
		return nil
	}
	return cloneMessage(msg)
}

// Channel returns copies of a channel's messages in send order
func (f *Fake) Channel(channelID string) []*messaging.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*messaging.Message{}
	for _, msg := range f.messages {
		if msg.ChannelID == channelID {
			out = append(out, cloneMessage(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a < b
	})
	return out
}

// Calls returns the side effect counters
func (f *Fake) Calls() Calls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ResetCalls zeroes the side effect counters
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = Calls{}
}

func cloneContent(c messaging.Content) messaging.Content {
	out := messaging.Content{Text: c.Text}
	if c.Embed != nil {
		e := *c.Embed
		e.Fields = append([]messaging.EmbedField{}, c.Embed.Fields...)
		out.Embed = &e
	}
	return out
}

func cloneMessage(m *messaging.Message) *messaging.Message {
	out := *m
	out.Content = cloneContent(m.Content)
	out.Reactions = append([]messaging.Reaction{}, m.Reactions...)
	return &out
}
