package models

import "github.com/shopspring/decimal"

// Channels holds the designated channels of a game; an empty ID means unset
type Channels struct {
	Proposals  string `json:"proposals,omitempty" yaml:"proposals,omitempty"`
	Rules      string `json:"rules,omitempty" yaml:"rules,omitempty"`
	Quantities string `json:"quantities,omitempty" yaml:"quantities,omitempty"`
	Logs       string `json:"logs,omitempty" yaml:"logs,omitempty"`
}

// ChannelKind names one of the designated channels
type ChannelKind string

const (
	ChannelProposals  ChannelKind = "proposals"
	ChannelRules      ChannelKind = "rules"
	ChannelQuantities ChannelKind = "quantities"
	ChannelLogs       ChannelKind = "logs"
)

// Get returns the channel ID for a kind
func (c Channels) Get(kind ChannelKind) string {
	switch kind {
	case ChannelProposals:
		return c.Proposals
	case ChannelRules:
		return c.Rules
	case ChannelQuantities:
		return c.Quantities
	case ChannelLogs:
		return c.Logs
	}
	return ""
}

// Set assigns the channel ID for a kind and reports whether the kind is known
func (c *Channels) Set(kind ChannelKind, channelID string) bool {
	switch kind {
	case ChannelProposals:
		c.Proposals = channelID
	case ChannelRules:
		c.Rules = channelID
	case ChannelQuantities:
		c.Quantities = channelID
	case ChannelLogs:
		c.Logs = channelID
	default:
		return false
	}
	return true
}

// GameState is the persisted document of one guild's game
type GameState struct {
	// GuildID identifies the guild that owns this game
	GuildID string `json:"guild_id" yaml:"guild_id"`

	Flags GameFlags `json:"flags" yaml:"flags"`

	// Activity maps player ID to last-seen time in seconds since the epoch
	Activity PlayerLedger[int64] `json:"activity" yaml:"activity"`

	// Proposals are ordered by number; Proposals[i].N == i+1
	Proposals []*Proposal `json:"proposals" yaml:"proposals"`

	// Quantities are keyed by canonical name
	Quantities map[string]*Quantity `json:"quantities" yaml:"quantities"`

	// Rules are keyed by tag and always contain the root
	Rules map[string]*Rule `json:"rules" yaml:"rules"`

	Channels Channels `json:"channels" yaml:"channels"`
}

// NewGameState creates the default state of a brand new game
func NewGameState(guildID string) *GameState {
	return &GameState{
		GuildID:    guildID,
		Flags:      DefaultGameFlags(),
		Activity:   NewPlayerLedger[int64](),
		Proposals:  []*Proposal{},
		Quantities: map[string]*Quantity{},
		Rules: map[string]*Rule{
			RootRuleTag: NewRootRule(),
		},
	}
}

// Normalize fills nil collections left by a sparse document so callers never
// need to nil-check them
func (g *GameState) Normalize() {
	if g.Activity == nil {
		g.Activity = NewPlayerLedger[int64]()
	}
	if g.Proposals == nil {
		g.Proposals = []*Proposal{}
	}
	for _, p := range g.Proposals {
		if p.Votes == nil {
			p.Votes = NewPlayerLedger[int]()
		}
	}
	if g.Quantities == nil {
		g.Quantities = map[string]*Quantity{}
	}
	for _, q := range g.Quantities {
		if q.Aliases == nil {
			q.Aliases = []string{}
		}
		if q.Balances == nil {
			q.Balances = NewPlayerLedger[decimal.Decimal]()
		}
	}
	if g.Rules == nil {
		g.Rules = map[string]*Rule{}
	}
	if _, ok := g.Rules[RootRuleTag]; !ok {
		g.Rules[RootRuleTag] = NewRootRule()
	}
	for _, r := range g.Rules {
		if r.Children == nil {
			r.Children = []string{}
		}
		if r.MessageIDs == nil {
			r.MessageIDs = []string{}
		}
	}
}

// Clone returns a deep copy of the state
func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}
	out := &GameState{
		GuildID:    g.GuildID,
		Flags:      g.Flags,
		Activity:   g.Activity.Clone(),
		Proposals:  make([]*Proposal, 0, len(g.Proposals)),
		Quantities: make(map[string]*Quantity, len(g.Quantities)),
		Rules:      make(map[string]*Rule, len(g.Rules)),
		Channels:   g.Channels,
	}
	for _, p := range g.Proposals {
		out.Proposals = append(out.Proposals, p.Clone())
	}
	for name, q := range g.Quantities {
		out.Quantities[name] = q.Clone()
	}
	for tag, r := range g.Rules {
		out.Rules[tag] = r.Clone()
	}
	return out
}
