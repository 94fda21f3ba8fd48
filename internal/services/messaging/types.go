package messaging

import (
	"time"
)

// Content is what a message displays: plain text, an embed or both
type Content struct {
	Text  string
	Embed *Embed
}

// Embed is a rich message card
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
	Timestamp   time.Time
}

// EmbedField is one name/value row of an embed
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Equal reports whether two contents render identically. Embed timestamps
// are compared to the second, the precision Discord keeps.
func (c Content) Equal(other Content) bool {
	if c.Text != other.Text {
		return false
	}
	if c.Embed == nil || other.Embed == nil {
		return c.Embed == nil && other.Embed == nil
	}
	return c.Embed.equal(other.Embed)
}

func (e *Embed) equal(other *Embed) bool {
	if e.Title != other.Title ||
		e.Description != other.Description ||
		e.Color != other.Color ||
		e.Footer != other.Footer ||
		!e.Timestamp.Truncate(time.Second).Equal(other.Timestamp.Truncate(time.Second)) ||
		len(e.Fields) != len(other.Fields) {
		return false
	}
	for i := range e.Fields {
		if e.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// Reaction is one emoji's tally on a message
type Reaction struct {
	Emoji string
	Count int

	// Me is true if the bot itself reacted with this emoji
	Me bool
}

// Message is a posted chat message
type Message struct {
	ID        string
	ChannelID string
	Content   Content
	Reactions []Reaction
}

// OwnReactions lists the emojis the bot has reacted with, in display order
func (m *Message) OwnReactions() []string {
	out := []string{}
	for _, r := range m.Reactions {
		if r.Me {
			out = append(out, r.Emoji)
		}
	}
	return out
}

// SendMessageInput contains parameters for posting a message
type SendMessageInput struct {
	ChannelID string
	Content   Content
}

// SendMessageOutput contains the posted message
type SendMessageOutput struct {
	Message *Message
}

// EditMessageInput contains parameters for editing a message
type EditMessageInput struct {
	ChannelID string
	MessageID string
	Content   Content
}

// DeleteMessageInput identifies a message to delete
type DeleteMessageInput struct {
	ChannelID string
	MessageID string
}

// BulkDeleteMessagesInput identifies the messages of one channel to delete
type BulkDeleteMessagesInput struct {
	ChannelID  string
	MessageIDs []string
}

// AddReactionInput contains parameters for reacting to a message
type AddReactionInput struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// ClearReactionsInput identifies a message whose reactions are removed
type ClearReactionsInput struct {
	ChannelID string
	MessageID string
}

// FetchMessageInput identifies a message to retrieve
type FetchMessageInput struct {
	ChannelID string
	MessageID string
}

// FetchMessageOutput contains the retrieved message
type FetchMessageOutput struct {
	Message *Message
}
