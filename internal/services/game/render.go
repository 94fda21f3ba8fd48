package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
)

const (
	messageLinkFormat = "https://discord.com/channels/%s/%s/%s"
	emptyList         = "(none)"
)

func messageLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf(messageLinkFormat, guildID, channelID, messageID)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// proposalPlaceholder is posted to reserve a proposal's place in the channel
func proposalPlaceholder(n int) messaging.Content {
	return messaging.Content{Embed: &messaging.Embed{
		Title: fmt.Sprintf("Preparing proposal #%d...", n),
		Color: ColorTemporary,
	}}
}

// proposalContent renders a proposal as an embed with one field per vote type
func proposalContent(p *models.Proposal) messaging.Content {
	title := fmt.Sprintf("Proposal #%d", p.N)
	if p.Status != models.ProposalStatusVoting {
		title += " - " + capitalize(string(p.Status))
	}

	if p.Status == models.ProposalStatusDeleted {
		return messaging.Content{Embed: &messaging.Embed{
			Title: title,
			Color: ColorDeleted,
		}}
	}

	color := ColorInfo
	switch p.Status {
	case models.ProposalStatusPassed:
		color = ColorSuccess
	case models.ProposalStatusFailed:
		color = ColorError
	}

	embed := &messaging.Embed{
		Title:       title,
		Description: p.Content,
		Color:       color,
		Fields: []messaging.EmbedField{
			{Name: "Author", Value: fmt.Sprintf("<@%s>", p.AuthorID)},
		},
		Footer:    "Submitted",
		Timestamp: p.Timestamp.Truncate(time.Second),
	}

	for _, dir := range []models.VoteDirection{models.VoteFor, models.VoteAgainst, models.VoteAbstain} {
		total := 0
		var value strings.Builder
		for _, voter := range p.Votes.SortedKeys() {
			amount := p.Votes[voter]
			switch dir {
			case models.VoteFor:
				if amount <= 0 {
					continue
				}
			case models.VoteAgainst:
				if amount >= 0 {
					continue
				}
				amount = -amount
			case models.VoteAbstain:
				if amount != 0 {
					continue
				}
				amount = 1
			}
			fmt.Fprintf(&value, "<@%s>", voter)
			if amount > 1 {
				fmt.Fprintf(&value, " (%dx)", amount)
			}
			value.WriteString("\n")
			total += amount
		}

		if dir == models.VoteAbstain && total == 0 {
			continue
		}
		name := capitalize(string(dir))
		if total > 0 {
			name += fmt.Sprintf(" (%d)", total)
		}
		v := strings.TrimSuffix(value.String(), "\n")
		if v == "" {
			v = emptyList
		}
		embed.Fields = append(embed.Fields, messaging.EmbedField{Name: name, Value: v, Inline: true})
	}

	return messaging.Content{Embed: embed}
}

// proposalReactions are the vote affordances a proposal's message should carry
func proposalReactions(p *models.Proposal, flags models.GameFlags) []string {
	if p.Status != models.ProposalStatusVoting {
		return []string{}
	}
	out := []string{EmojiVoteFor, EmojiVoteAgainst}
	if flags.AllowVoteAbstain {
		out = append(out, EmojiVoteAbstain)
	}
	return out
}

// logLine is how a log entry is echoed to the logs channel
func logLine(entry *models.LogEntry) string {
	line := fmt.Sprintf("<t:%d:f> ", entry.Timestamp.Unix())
	if entry.ActorID != "" {
		line += fmt.Sprintf("<@%s> ", entry.ActorID)
	}
	return line + entry.Message
}

// splitText cuts text into chunks shorter than maxLen characters, preferring
// to cut at a blank line, then a line break, then a space
func splitText(text string, maxLen int) []string {
	chunks := []string{}
	for {
		runes := []rune(text)
		if len(runes) < maxLen {
			return append(chunks, text)
		}

		window := string(runes[:maxLen])
		cut := -1
		for _, sep := range []string{"\n\n", "\n", " "} {
			if i := strings.LastIndex(window, sep); i > 0 {
				cut = i
				break
			}
		}
		if cut < 0 {
			cut = len(string(runes[:maxLen-1]))
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
		if text == "" {
			return chunks
		}
	}
}
