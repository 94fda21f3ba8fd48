package game

import "github.com/KirkDiggler/nomic/internal/models"

// Reactions shown on and accepted from proposal messages
const (
	EmojiVoteFor     = "👍"
	EmojiVoteAgainst = "👎"
	EmojiVoteAbstain = "🤷"

	EmojiPass   = "✅"
	EmojiFail   = "❌"
	EmojiDelete = "🗑️"
	EmojiReopen = "🔄"
)

// Embed colors
const (
	ColorInfo      = 0x3498db
	ColorSuccess   = 0x2ecc71
	ColorError     = 0xe74c3c
	ColorDeleted   = 0x95a5a6
	ColorTemporary = 0xf1c40f
)

// VoteReaction maps a vote reaction to its direction
func VoteReaction(emoji string) (models.VoteDirection, bool) {
	switch emoji {
	case EmojiVoteFor:
		return models.VoteFor, true
	case EmojiVoteAgainst:
		return models.VoteAgainst, true
	case EmojiVoteAbstain:
		return models.VoteAbstain, true
	}
	return "", false
}

// StatusReaction maps a status reaction to the status it sets
func StatusReaction(emoji string) (models.ProposalStatus, bool) {
	switch emoji {
	case EmojiPass:
		return models.ProposalStatusPassed, true
	case EmojiFail:
		return models.ProposalStatusFailed, true
	case EmojiDelete:
		return models.ProposalStatusDeleted, true
	case EmojiReopen:
		return models.ProposalStatusVoting, true
	}
	return "", false
}
