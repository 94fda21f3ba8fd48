package models

// GameFlags toggles variations on the game mechanics
type GameFlags struct {
	// AllowVoteAbstain lets players record an explicit abstention
	AllowVoteAbstain bool `json:"allow_vote_abstain" yaml:"allow_vote_abstain"`

	// AllowVoteChange lets players change a vote they already cast
	AllowVoteChange bool `json:"allow_vote_change" yaml:"allow_vote_change"`

	// AllowVoteMulti lets a single player cast more than one vote on a proposal
	AllowVoteMulti bool `json:"allow_vote_multi" yaml:"allow_vote_multi"`

	// PlayerActivityCutoff is the number of hours after which a player is inactive
	PlayerActivityCutoff int `json:"player_activity_cutoff" yaml:"player_activity_cutoff"`
}

// DefaultGameFlags returns the flags a new game starts with
func DefaultGameFlags() GameFlags {
	return GameFlags{
		AllowVoteAbstain:     false,
		AllowVoteChange:      true,
		AllowVoteMulti:       false,
		PlayerActivityCutoff: 24,
	}
}
