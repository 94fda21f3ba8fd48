package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ModelsTestSuite struct {
	suite.Suite
	testNow time.Time
}

func (s *ModelsTestSuite) SetupTest() {
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func TestModelsTestSuite(t *testing.T) {
	suite.Run(t, new(ModelsTestSuite))
}

func (s *ModelsTestSuite) TestPlayerLedgerAccessors() {
	l := NewPlayerLedger[int]()
	s.False(l.Has("1"))
	s.Equal(7, l.GetOr("1", 7))

	l.Set("1", 3)
	v, ok := l.Get("1")
	s.True(ok)
	s.Equal(3, v)

	l.Delete("1")
	s.False(l.Has("1"))
}

func (s *ModelsTestSuite) TestPlayerLedgerSortedKeysUsesSnowflakeOrder() {
	l := PlayerLedger[int]{"100": 1, "20": 1, "3": 1, "21": 1}
	s.Equal([]string{"3", "20", "21", "100"}, l.SortedKeys())
}

func (s *ModelsTestSuite) TestPlayerLedgerCloneIsIndependent() {
	l := PlayerLedger[float64]{"1": 2.5}
	c := l.Clone()
	c.Set("1", 9)
	s.Equal(2.5, l.GetOr("1", 0))
}

func (s *ModelsTestSuite) TestProposalTallies() {
	p := &Proposal{
		N:     1,
		Votes: PlayerLedger[int]{"a": 2, "b": -1, "c": -3, "d": 0, "e": 0},
	}
	s.Equal(2, p.VotesFor())
	s.Equal(4, p.VotesAgainst())
	s.Equal(2, p.VotesAbstain())
}

func (s *ModelsTestSuite) TestProposalStatusValidity() {
	s.True(ProposalStatusPassed.IsValid())
	s.False(ProposalStatus("pending").IsValid())
	s.True(ProposalStatusVoting.IsVoting())
	s.False(ProposalStatusFailed.IsVoting())
}

func (s *ModelsTestSuite) TestChannelsGetSet() {
	var c Channels
	s.True(c.Set(ChannelLogs, "42"))
	s.Equal("42", c.Get(ChannelLogs))
	s.False(c.Set(ChannelKind("lobby"), "1"))
	s.Equal("", c.Get(ChannelKind("lobby")))
}

func (s *ModelsTestSuite) TestNewGameStateHasRootAndDefaults() {
	g := NewGameState("guild")
	s.Equal(DefaultGameFlags(), g.Flags)
	s.Require().Contains(g.Rules, RootRuleTag)
	s.True(g.Rules[RootRuleTag].IsRoot())
	s.Empty(g.Proposals)
}

func (s *ModelsTestSuite) TestNormalizeFillsSparseDocument() {
	var g GameState
	s.Require().NoError(json.Unmarshal([]byte(`{"proposals":[{"n":1,"status":"voting"}],"quantities":{"gold":{"name":"gold"}}}`), &g))
	g.Normalize()

	s.NotNil(g.Activity)
	s.NotNil(g.Proposals[0].Votes)
	s.NotNil(g.Quantities["gold"].Balances)
	s.NotNil(g.Quantities["gold"].Aliases)
	s.Contains(g.Rules, RootRuleTag)
}

func (s *ModelsTestSuite) TestCloneIsDeep() {
	g := NewGameState("guild")
	g.Proposals = append(g.Proposals, &Proposal{N: 1, Votes: PlayerLedger[int]{"a": 1}, Timestamp: s.testNow})
	g.Quantities["gold"] = &Quantity{Name: "gold", Aliases: []string{"g"}, Balances: PlayerLedger[decimal.Decimal]{"a": decimal.RequireFromString("1")}}
	g.Rules[RootRuleTag].Children = append(g.Rules[RootRuleTag].Children, "intro")
	g.Rules["intro"] = &Rule{Tag: "intro", Parent: RootRuleTag, Children: []string{}, MessageIDs: []string{"m1"}}

	c := g.Clone()
	c.Proposals[0].Votes.Set("a", -1)
	c.Quantities["gold"].Aliases[0] = "x"
	c.Rules[RootRuleTag].Children[0] = "other"
	c.Rules["intro"].MessageIDs[0] = "m2"

	s.Equal(1, g.Proposals[0].Votes["a"])
	s.Equal("g", g.Quantities["gold"].Aliases[0])
	s.Equal("intro", g.Rules[RootRuleTag].Children[0])
	s.Equal("m1", g.Rules["intro"].MessageIDs[0])
}

func (s *ModelsTestSuite) TestQuantityHasName() {
	q := &Quantity{Name: "gold", Aliases: []string{"g", "au"}}
	s.True(q.HasName("gold"))
	s.True(q.HasName("au"))
	s.False(q.HasName("silver"))
	s.True((&Quantity{Balances: NewPlayerLedger[decimal.Decimal]()}).Balance("x").IsZero())
}

func (s *ModelsTestSuite) TestBalancesEncodeAsExactNumbers() {
	q := &Quantity{
		Name:     "gold",
		Aliases:  []string{},
		Balances: PlayerLedger[decimal.Decimal]{"a": decimal.RequireFromString("3"), "b": decimal.RequireFromString("0.1")},
	}

	data, err := json.Marshal(q)
	s.Require().NoError(err)
	s.JSONEq(`{"name":"gold","aliases":[],"players":{"a":3,"b":0.1}}`, string(data))

	var back Quantity
	s.Require().NoError(json.Unmarshal(data, &back))
	s.True(back.Balance("b").Equal(decimal.RequireFromString("0.1")))
	s.True(back.Balance("a").IsInteger())
}
