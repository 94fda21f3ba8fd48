package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotLocked GameError = "game session is not locked by the caller"

	ErrProposalNotFound   GameError = "proposal not found"
	ErrProposalClosed     GameError = "proposal is not open for voting"
	ErrProposalEmpty      GameError = "proposal content cannot be empty"
	ErrProposalTooLong    GameError = "proposal content is too long"
	ErrNotLastProposal    GameError = "only the most recent proposal can be permanently deleted"
	ErrInvalidVote        GameError = "invalid vote direction"
	ErrInvalidVoteWeight  GameError = "vote weight must be at least 1"
	ErrInvalidStatus      GameError = "invalid proposal status"
	ErrNotProposalMessage GameError = "message is not a proposal"

	ErrQuantityNotFound    GameError = "quantity not found"
	ErrInvalidQuantityName GameError = "quantity names must start with a letter, use only a-z, 0-9, - and _ and be at most 32 characters"
	ErrNameInUse           GameError = "name is already used by a quantity"

	ErrRuleNotFound    GameError = "rule not found"
	ErrInvalidRuleTag  GameError = "rule tags may only use a-z, 0-9, - and _"
	ErrRuleTagInUse    GameError = "rule tag is already in use"
	ErrRootRule        GameError = "the root rule cannot be changed this way"
	ErrRuleCycle       GameError = "a rule cannot be moved inside itself"
	ErrInvalidPosition GameError = "rule position is out of range"

	ErrInvalidChannel GameError = "unknown channel kind"
	ErrInvalidCutoff  GameError = "activity cutoff cannot be negative"

	ErrNilConfig        GameError = "config cannot be nil"
	ErrNilGameRepo      GameError = "game repository cannot be nil"
	ErrNilGameLogRepo   GameError = "game log repository cannot be nil"
	ErrNilMessaging     GameError = "messaging service cannot be nil"
	ErrNilClock         GameError = "clock cannot be nil"
	ErrNilUUIDGenerator GameError = "UUID generator cannot be nil"
	ErrEmptyGuildID     GameError = "guild ID cannot be empty"
)
