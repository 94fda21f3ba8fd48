package game

import (
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/shopspring/decimal"
)

// sampleState builds a game that touches every part of the document
func sampleState(guildID string, now time.Time) *models.GameState {
	state := models.NewGameState(guildID)
	state.Flags.AllowVoteMulti = true
	state.Activity.Set("111", now.Unix())
	state.Proposals = append(state.Proposals,
		&models.Proposal{
			N:         1,
			AuthorID:  "111",
			Content:   "Players receive 5 points when their proposal is passed.",
			Status:    models.ProposalStatusPassed,
			MessageID: "900",
			Votes:     models.PlayerLedger[int]{"111": 1, "222": -2, "333": 0},
			Timestamp: now,
		},
		&models.Proposal{
			N:         2,
			AuthorID:  "222",
			Content:   "Gold may be traded.",
			Status:    models.ProposalStatusVoting,
			Votes:     models.NewPlayerLedger[int](),
			Timestamp: now.Add(time.Hour),
		},
	)
	state.Quantities["gold"] = &models.Quantity{
		Name:     "gold",
		Aliases:  []string{"g"},
		Balances: models.PlayerLedger[decimal.Decimal]{"111": decimal.RequireFromString("5"), "222": decimal.RequireFromString("2.5")},
	}
	state.Rules[models.RootRuleTag].Children = []string{"intro"}
	state.Rules["intro"] = &models.Rule{
		Tag:        "intro",
		Title:      "Introduction",
		Content:    "Welcome. See [#intro].",
		Parent:     models.RootRuleTag,
		Children:   []string{},
		MessageIDs: []string{"901", "902"},
	}
	state.Channels.Proposals = "500"
	return state
}
