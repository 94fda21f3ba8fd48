package models

import (
	"time"
)

// LogKind categorizes a game log entry
type LogKind string

const (
	LogKindVote        LogKind = "vote"
	LogKindProposal    LogKind = "proposal"
	LogKindTransaction LogKind = "transaction"
	LogKindRule        LogKind = "rule"
	LogKindQuantity    LogKind = "quantity"
	LogKindComment     LogKind = "comment"
)

// LogEntry is one line in a guild's append-only game log
type LogEntry struct {
	ID        string    `json:"id" yaml:"id"`
	GuildID   string    `json:"guild_id" yaml:"guild_id"`
	Kind      LogKind   `json:"kind" yaml:"kind"`
	ActorID   string    `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	Message   string    `json:"message" yaml:"message"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
