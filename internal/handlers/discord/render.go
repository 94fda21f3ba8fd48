package discord

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

const maxEmbedDescription = 4096

// ruleEmbed renders one rule of a snapshot
func ruleEmbed(state *models.GameState, tag string) (*discordgo.MessageEmbed, error) {
	rule, ok := state.Rules[strings.ToLower(strings.TrimSpace(tag))]
	if !ok || rule.IsRoot() {
		return nil, fmt.Errorf("%w: %q", game.ErrRuleNotFound, tag)
	}

	embed := &discordgo.MessageEmbed{
		Title:       strings.TrimSpace(game.SectionNumber(state.Rules, rule.Tag) + " " + rule.Title),
		Description: truncate(rule.Content, maxEmbedDescription),
		Color:       game.ColorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: rule.Tag},
	}
	if len(rule.Children) > 0 {
		subrules := make([]string, 0, len(rule.Children))
		for _, child := range rule.Children {
			if c, ok := state.Rules[child]; ok {
				subrules = append(subrules, fmt.Sprintf("%s %s `[#%s]`", game.SectionNumber(state.Rules, child), c.Title, child))
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Subrules",
			Value: truncate(strings.Join(subrules, "\n"), 1024),
		})
	}
	return embed, nil
}

// quantitiesEmbed lists every quantity, or the balances of one
func quantitiesEmbed(state *models.GameState, name string) (*discordgo.MessageEmbed, error) {
	if name == "" {
		names := make([]string, 0, len(state.Quantities))
		for key := range state.Quantities {
			names = append(names, key)
		}
		sort.Strings(names)

		lines := make([]string, 0, len(names))
		for _, key := range names {
			q := state.Quantities[key]
			line := fmt.Sprintf("**%s**", q.Name)
			if len(q.Aliases) > 0 {
				line += fmt.Sprintf(" (%s)", strings.Join(q.Aliases, ", "))
			}
			lines = append(lines, line)
		}
		return &discordgo.MessageEmbed{
			Title:       "Quantities",
			Description: orNone(truncate(strings.Join(lines, "\n"), maxEmbedDescription)),
			Color:       game.ColorInfo,
		}, nil
	}

	q := findQuantity(state, name)
	if q == nil {
		return nil, fmt.Errorf("%w: %q", game.ErrQuantityNotFound, name)
	}

	users := q.Balances.SortedKeys()
	sort.SliceStable(users, func(i, j int) bool {
		return q.Balances[users[i]].GreaterThan(q.Balances[users[j]])
	})
	lines := make([]string, 0, len(users))
	for _, userID := range users {
		lines = append(lines, fmt.Sprintf("<@%s>: %s", userID, game.FormatAmount(q.Balances[userID])))
	}
	return &discordgo.MessageEmbed{
		Title:       capitalizeFirst(q.Name),
		Description: orNone(truncate(strings.Join(lines, "\n"), maxEmbedDescription)),
		Color:       game.ColorInfo,
	}, nil
}

func findQuantity(state *models.GameState, name string) *models.Quantity {
	name = strings.ToLower(strings.TrimSpace(name))
	if q, ok := state.Quantities[name]; ok {
		return q
	}
	for _, q := range state.Quantities {
		if q.HasName(name) {
			return q
		}
	}
	return nil
}

// activityEmbed splits the players into active and inactive
func activityEmbed(state *models.GameState, now time.Time) *discordgo.MessageEmbed {
	var active, inactive []string
	for _, p := range game.ActivityReport(state.Activity, now, state.Flags.PlayerActivityCutoff) {
		line := fmt.Sprintf("<@%s> <t:%d:R>", p.UserID, p.LastSeen.Unix())
		if p.Active {
			active = append(active, line)
		} else {
			inactive = append(inactive, line)
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "Player activity",
		Description: fmt.Sprintf("Players seen in the last %d hours are active.", state.Flags.PlayerActivityCutoff),
		Color:       game.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("Active (%d)", len(active)), Value: orNone(truncate(strings.Join(active, "\n"), 1024))},
			{Name: fmt.Sprintf("Inactive (%d)", len(inactive)), Value: orNone(truncate(strings.Join(inactive, "\n"), 1024))},
		},
	}
}

func flagsEmbed(flags models.GameFlags) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Game flags",
		Color: game.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Abstaining", Value: allowed(flags.AllowVoteAbstain), Inline: true},
			{Name: "Changing votes", Value: allowed(flags.AllowVoteChange), Inline: true},
			{Name: "Multiple votes", Value: allowed(flags.AllowVoteMulti), Inline: true},
			{Name: "Activity cutoff", Value: fmt.Sprintf("%d hours", flags.PlayerActivityCutoff), Inline: true},
		},
	}
}

func channelsText(channels models.Channels) string {
	kinds := []models.ChannelKind{models.ChannelProposals, models.ChannelRules, models.ChannelQuantities, models.ChannelLogs}
	lines := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		value := "not set"
		if id := channels.Get(kind); id != "" {
			value = fmt.Sprintf("<#%s>", id)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", capitalizeFirst(string(kind)), value))
	}
	return strings.Join(lines, "\n")
}

// logText renders entries newest last, dropping the oldest to fit one message
func logText(entries []*models.LogEntry) string {
	if len(entries) == 0 {
		return "The game log is empty."
	}

	lines := []string{}
	size := 0
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		line := fmt.Sprintf("<t:%d:f> ", e.Timestamp.Unix())
		if e.ActorID != "" {
			line += fmt.Sprintf("<@%s> ", e.ActorID)
		}
		line += e.Message
		if size+len(line)+1 > 2000 {
			break
		}
		size += len(line) + 1
		lines = append(lines, line)
	}

	slices.Reverse(lines)
	return strings.Join(lines, "\n")
}

func allowed(b bool) string {
	if b {
		return "allowed"
	}
	return "not allowed"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
