package messaging

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"
)

type DiscordServiceTestSuite struct {
	suite.Suite
	testTime time.Time
}

func (s *DiscordServiceTestSuite) SetupTest() {
	s.testTime = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func TestDiscordServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DiscordServiceTestSuite))
}

func (s *DiscordServiceTestSuite) TestNewDiscordValidatesConfig() {
	_, err := NewDiscord(nil)
	s.Error(err)

	_, err = NewDiscord(&Config{})
	s.Error(err)
}

func (s *DiscordServiceTestSuite) TestEmbedSurvivesDiscordConversion() {
	content := Content{
		Text: "hello",
		Embed: &Embed{
			Title:       "Proposal #1",
			Description: "Players receive 5 points.",
			Color:       0x3498db,
			Fields:      []EmbedField{{Name: "For", Value: "1", Inline: true}},
			Footer:      "voting",
			Timestamp:   s.testTime,
		},
	}

	msg := fromDiscordMessage(&discordgo.Message{
		ID:        "1",
		ChannelID: "2",
		Content:   content.Text,
		Embeds:    toDiscordEmbeds(content.Embed),
		Reactions: []*discordgo.MessageReactions{
			{Count: 2, Me: true, Emoji: &discordgo.Emoji{Name: "👍"}},
			{Count: 1, Me: false, Emoji: &discordgo.Emoji{Name: "party", ID: "99"}},
		},
	})

	s.True(content.Equal(msg.Content))
	s.Equal([]string{"👍"}, msg.OwnReactions())
	s.Equal("party:99", msg.Reactions[1].Emoji)
}

func (s *DiscordServiceTestSuite) TestSubSecondTimestampSurvivesDiscordConversion() {
	content := Content{Embed: &Embed{
		Title:     "Proposal #1",
		Footer:    "Submitted",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC),
	}}

	embeds := toDiscordEmbeds(content.Embed)
	s.Equal("2026-01-02T03:04:05Z", embeds[0].Timestamp)

	msg := fromDiscordMessage(&discordgo.Message{ID: "1", Embeds: embeds})
	s.True(content.Equal(msg.Content), "an unchanged message must not need an edit")

	later := Content{Embed: &Embed{Title: "Proposal #1", Footer: "Submitted", Timestamp: content.Embed.Timestamp.Add(time.Second)}}
	s.False(later.Equal(msg.Content))
}

func (s *DiscordServiceTestSuite) TestTextOnlyContentHasNoEmbed() {
	s.Empty(toDiscordEmbeds(nil))

	msg := fromDiscordMessage(&discordgo.Message{ID: "1", Content: "text"})
	s.Nil(msg.Content.Embed)
	s.True(Content{Text: "text"}.Equal(msg.Content))
}

func (s *DiscordServiceTestSuite) TestContentEqual() {
	a := Content{Embed: &Embed{Title: "x", Fields: []EmbedField{{Name: "a", Value: "b"}}}}
	b := Content{Embed: &Embed{Title: "x", Fields: []EmbedField{{Name: "a", Value: "c"}}}}

	s.True(a.Equal(a))
	s.False(a.Equal(b))
	s.False(a.Equal(Content{}))
	s.True(Content{Text: "t"}.Equal(Content{Text: "t"}))
}

func (s *DiscordServiceTestSuite) TestWrapErrorMapsUnknownMessage() {
	unknown := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage},
	}
	s.ErrorIs(wrapError("fetch message", unknown), ErrMessageNotFound)

	bare404 := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	s.ErrorIs(wrapError("fetch message", bare404), ErrMessageNotFound)

	unknownChannel := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel},
	}
	s.NotErrorIs(wrapError("fetch message", unknownChannel), ErrMessageNotFound)

	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	err := wrapError("edit message", forbidden)
	s.NotErrorIs(err, ErrMessageNotFound)
	s.True(errors.As(err, new(*discordgo.RESTError)))
}
