package models

import (
	"time"
)

// ProposalStatus represents where a proposal is in its lifecycle
type ProposalStatus string

const (
	// ProposalStatusVoting indicates the proposal is open for votes
	ProposalStatusVoting ProposalStatus = "voting"

	// ProposalStatusPassed indicates the proposal was adopted
	ProposalStatusPassed ProposalStatus = "passed"

	// ProposalStatusFailed indicates the proposal was rejected
	ProposalStatusFailed ProposalStatus = "failed"

	// ProposalStatusDeleted indicates the proposal was withdrawn
	ProposalStatusDeleted ProposalStatus = "deleted"
)

// IsValid reports whether the status is one of the known values
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusVoting, ProposalStatusPassed, ProposalStatusFailed, ProposalStatusDeleted:
		return true
	}
	return false
}

// IsVoting reports whether votes are accepted
func (s ProposalStatus) IsVoting() bool {
	return s == ProposalStatusVoting
}

// VoteDirection is the kind of vote a player casts
type VoteDirection string

const (
	VoteFor     VoteDirection = "for"
	VoteAgainst VoteDirection = "against"
	VoteAbstain VoteDirection = "abstain"
	VoteRemove  VoteDirection = "remove"
)

// IsValid reports whether the direction is one of the known values
func (d VoteDirection) IsValid() bool {
	switch d {
	case VoteFor, VoteAgainst, VoteAbstain, VoteRemove:
		return true
	}
	return false
}

// Proposal is a numbered, votable rule change
type Proposal struct {
	// N is the 1-based proposal number
	N int `json:"n" yaml:"n"`

	// AuthorID is the Discord user ID of the player who submitted it
	AuthorID string `json:"author" yaml:"author"`

	// Content is the text of the proposal
	Content string `json:"content" yaml:"content"`

	// Status is the lifecycle status
	Status ProposalStatus `json:"status" yaml:"status"`

	// MessageID is the rendered message in the proposals channel, empty if not posted
	MessageID string `json:"message_id,omitempty" yaml:"message_id,omitempty"`

	// Votes maps voter ID to a signed vote weight.
	// Positive is for, negative is against, zero is an abstention.
	Votes PlayerLedger[int] `json:"votes" yaml:"votes"`

	// Timestamp is when the proposal was submitted
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// VotesFor sums the positive vote weights
func (p *Proposal) VotesFor() int {
	total := 0
	for _, v := range p.Votes {
		if v > 0 {
			total += v
		}
	}
	return total
}

// VotesAgainst sums the magnitude of the negative vote weights
func (p *Proposal) VotesAgainst() int {
	total := 0
	for _, v := range p.Votes {
		if v < 0 {
			total -= v
		}
	}
	return total
}

// VotesAbstain counts the abstentions
func (p *Proposal) VotesAbstain() int {
	total := 0
	for _, v := range p.Votes {
		if v == 0 {
			total++
		}
	}
	return total
}

// Clone returns a deep copy
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	out := *p
	out.Votes = p.Votes.Clone()
	return &out
}
