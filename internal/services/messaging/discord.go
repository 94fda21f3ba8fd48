package messaging

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// bulkDeleteLimit is the most messages one bulk delete call accepts
const bulkDeleteLimit = 100

// Config holds configuration for the Discord messaging service
type Config struct {
	Session *discordgo.Session
}

// discordService implements the Service interface on a discordgo session
type discordService struct {
	session *discordgo.Session
}

// NewDiscord creates a messaging service that talks to Discord
func NewDiscord(cfg *Config) (*discordService, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Session == nil {
		return nil, errors.New("discord session cannot be nil")
	}

	return &discordService{
		session: cfg.Session,
	}, nil
}

// SendMessage posts a new message
func (s *discordService) SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	if input == nil || input.ChannelID == "" {
		return nil, errors.New("input and channel ID cannot be empty")
	}

	msg, err := s.session.ChannelMessageSendComplex(input.ChannelID, &discordgo.MessageSend{
		Content: input.Content.Text,
		Embeds:  toDiscordEmbeds(input.Content.Embed),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapError("send message", err)
	}

	return &SendMessageOutput{Message: fromDiscordMessage(msg)}, nil
}

// EditMessage replaces the text and embed of a message
func (s *discordService) EditMessage(ctx context.Context, input *EditMessageInput) error {
	if input == nil || input.ChannelID == "" || input.MessageID == "" {
		return errors.New("input, channel ID and message ID cannot be empty")
	}

	edit := discordgo.NewMessageEdit(input.ChannelID, input.MessageID).
		SetContent(input.Content.Text).
		SetEmbeds(toDiscordEmbeds(input.Content.Embed))
	if _, err := s.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return wrapError("edit message", err)
	}
	return nil
}

// DeleteMessage deletes one message
func (s *discordService) DeleteMessage(ctx context.Context, input *DeleteMessageInput) error {
	if input == nil || input.ChannelID == "" || input.MessageID == "" {
		return errors.New("input, channel ID and message ID cannot be empty")
	}

	if err := s.session.ChannelMessageDelete(input.ChannelID, input.MessageID, discordgo.WithContext(ctx)); err != nil {
		return wrapError("delete message", err)
	}
	return nil
}

// BulkDeleteMessages deletes in batches of up to 100. Discord refuses bulk
// deletes of messages older than two weeks, so a failed batch falls back to
// one call per message.
func (s *discordService) BulkDeleteMessages(ctx context.Context, input *BulkDeleteMessagesInput) error {
	if input == nil || input.ChannelID == "" {
		return errors.New("input and channel ID cannot be empty")
	}

	ids := make([]string, 0, len(input.MessageIDs))
	for _, id := range input.MessageIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}

	for start := 0; start < len(ids); start += bulkDeleteLimit {
		end := min(start+bulkDeleteLimit, len(ids))
		batch := ids[start:end]

		if len(batch) > 1 {
			err := s.session.ChannelMessagesBulkDelete(input.ChannelID, batch, discordgo.WithContext(ctx))
			if err == nil {
				continue
			}
			log.Printf("Bulk delete in channel %s failed, deleting one by one: %v", input.ChannelID, err)
		}

		for _, id := range batch {
			err := s.DeleteMessage(ctx, &DeleteMessageInput{ChannelID: input.ChannelID, MessageID: id})
			if err != nil && !errors.Is(err, ErrMessageNotFound) {
				return err
			}
		}
	}
	return nil
}

// AddReaction reacts to a message with a unicode emoji or a custom name:id emoji
func (s *discordService) AddReaction(ctx context.Context, input *AddReactionInput) error {
	if input == nil || input.ChannelID == "" || input.MessageID == "" || input.Emoji == "" {
		return errors.New("input, channel ID, message ID and emoji cannot be empty")
	}

	if err := s.session.MessageReactionAdd(input.ChannelID, input.MessageID, input.Emoji, discordgo.WithContext(ctx)); err != nil {
		return wrapError("add reaction", err)
	}
	return nil
}

// ClearReactions removes all reactions from a message
func (s *discordService) ClearReactions(ctx context.Context, input *ClearReactionsInput) error {
	if input == nil || input.ChannelID == "" || input.MessageID == "" {
		return errors.New("input, channel ID and message ID cannot be empty")
	}

	if err := s.session.MessageReactionsRemoveAll(input.ChannelID, input.MessageID, discordgo.WithContext(ctx)); err != nil {
		return wrapError("clear reactions", err)
	}
	return nil
}

// FetchMessage retrieves a message from the API
func (s *discordService) FetchMessage(ctx context.Context, input *FetchMessageInput) (*FetchMessageOutput, error) {
	if input == nil || input.ChannelID == "" || input.MessageID == "" {
		return nil, errors.New("input, channel ID and message ID cannot be empty")
	}

	msg, err := s.session.ChannelMessage(input.ChannelID, input.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapError("fetch message", err)
	}
	return &FetchMessageOutput{Message: fromDiscordMessage(msg)}, nil
}

// wrapError maps Discord's unknown-message responses to ErrMessageNotFound
func wrapError(op string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("failed to %s: %w", op, ErrMessageNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMessage
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func toDiscordEmbeds(e *Embed) []*discordgo.MessageEmbed {
	if e == nil {
		return []*discordgo.MessageEmbed{}
	}

	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if e.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if !e.Timestamp.IsZero() {
		embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return []*discordgo.MessageEmbed{embed}
}

func fromDiscordMessage(msg *discordgo.Message) *Message {
	out := &Message{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		Content:   Content{Text: msg.Content},
		Reactions: []Reaction{},
	}

	if len(msg.Embeds) > 0 && msg.Embeds[0] != nil {
		e := msg.Embeds[0]
		embed := &Embed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			if f == nil {
				continue
			}
			embed.Fields = append(embed.Fields, EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Footer != nil {
			embed.Footer = e.Footer.Text
		}
		if e.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
				embed.Timestamp = ts
			}
		}
		out.Content.Embed = embed
	}

	for _, r := range msg.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		out.Reactions = append(out.Reactions, Reaction{
			Emoji: emojiKey(r.Emoji),
			Count: r.Count,
			Me:    r.Me,
		})
	}
	return out
}

// emojiKey is the form used to add a reaction: the character itself for
// unicode emoji, name:id for custom ones
func emojiKey(e *discordgo.Emoji) string {
	if e.ID == "" {
		return e.Name
	}
	return e.APIName()
}
