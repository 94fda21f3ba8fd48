package game

import (
	"testing"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
)

func TestProposalContent(t *testing.T) {
	submitted := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	p := &models.Proposal{
		N:         3,
		AuthorID:  "10",
		Content:   "Everyone gets a point",
		Status:    models.ProposalStatusVoting,
		Votes:     models.PlayerLedger[int]{"20": 2, "9": -1, "100": 0},
		Timestamp: submitted,
	}

	embed := proposalContent(p).Embed
	if embed.Title != "Proposal #3" || embed.Description != p.Content || embed.Color != ColorInfo {
		t.Errorf("unexpected header: %+v", embed)
	}
	if !embed.Timestamp.Equal(submitted) || embed.Footer != "Submitted" {
		t.Errorf("unexpected footer: %q %v", embed.Footer, embed.Timestamp)
	}

	want := [][2]string{
		{"Author", "<@10>"},
		{"For (2)", "<@20> (2x)"},
		{"Against (1)", "<@9>"},
		{"Abstain (1)", "<@100>"},
	}
	if len(embed.Fields) != len(want) {
		t.Fatalf("fields = %+v", embed.Fields)
	}
	for i, w := range want {
		if embed.Fields[i].Name != w[0] || embed.Fields[i].Value != w[1] {
			t.Errorf("field %d = %q: %q, want %q: %q", i, embed.Fields[i].Name, embed.Fields[i].Value, w[0], w[1])
		}
	}

	p.Status = models.ProposalStatusFailed
	if embed := proposalContent(p).Embed; embed.Title != "Proposal #3 - Failed" || embed.Color != ColorError {
		t.Errorf("failed proposal rendered as %q %x", embed.Title, embed.Color)
	}
}

func TestProposalReactions(t *testing.T) {
	p := &models.Proposal{Status: models.ProposalStatusVoting}
	flags := models.DefaultGameFlags()

	if got := proposalReactions(p, flags); len(got) != 2 {
		t.Errorf("reactions = %v, want for and against", got)
	}
	flags.AllowVoteAbstain = true
	if got := proposalReactions(p, flags); len(got) != 3 || got[2] != EmojiVoteAbstain {
		t.Errorf("reactions = %v, want abstain too", got)
	}
	p.Status = models.ProposalStatusPassed
	if got := proposalReactions(p, flags); len(got) != 0 {
		t.Errorf("closed proposal has reactions %v", got)
	}
}

func TestLogLine(t *testing.T) {
	entry := &models.LogEntry{
		ActorID:   "42",
		Message:   "submitted proposal #1",
		Timestamp: time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC),
	}
	if got, want := logLine(entry), "<t:1743847200:f> <@42> submitted proposal #1"; got != want {
		t.Errorf("logLine = %q, want %q", got, want)
	}

	entry.ActorID = ""
	if got, want := logLine(entry), "<t:1743847200:f> submitted proposal #1"; got != want {
		t.Errorf("logLine = %q, want %q", got, want)
	}
}

func TestReactionMaps(t *testing.T) {
	if dir, ok := VoteReaction(EmojiVoteAgainst); !ok || dir != models.VoteAgainst {
		t.Errorf("VoteReaction(against) = %v %t", dir, ok)
	}
	if _, ok := VoteReaction(EmojiPass); ok {
		t.Error("pass is not a vote")
	}
	if status, ok := StatusReaction(EmojiReopen); !ok || status != models.ProposalStatusVoting {
		t.Errorf("StatusReaction(reopen) = %v %t", status, ok)
	}
}
