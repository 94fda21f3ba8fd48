package game

import (
	"strings"
	"testing"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
	"github.com/stretchr/testify/suite"
)

type RuleTreeTestSuite struct {
	gameTestSuite
}

func (s *RuleTreeTestSuite) add(tag, parent string, index int, title, content string) {
	_, err := s.session.Rules.Add(s.ctx, s.guard, &AddRuleInput{
		Tag:     tag,
		Parent:  parent,
		Index:   index,
		Title:   title,
		Content: content,
		ActorID: testAdminID,
	})
	s.Require().NoError(err)
}

func (s *RuleTreeTestSuite) rule(tag string) *models.Rule {
	rule, err := s.session.Rules.Get(tag)
	s.Require().NoError(err)
	return rule
}

func (s *RuleTreeTestSuite) messages(tag string) []*messaging.Message {
	out := []*messaging.Message{}
	for _, id := range s.rule(tag).MessageIDs {
		msg := s.chat.Message(testRulesChannel, id)
		s.Require().NotNil(msg, "rule %s is missing message %s", tag, id)
		out = append(out, msg)
	}
	return out
}

func (s *RuleTreeTestSuite) link(tag string) string {
	return messageLink(testGuildID, testRulesChannel, s.rule(tag).MessageIDs[0])
}

func (s *RuleTreeTestSuite) TestMoveRejectsCycles() {
	s.add("intro", "", 0, "Intro", "")
	s.add("rules", "", 1, "Rules", "")

	err := s.session.Rules.Move(s.ctx, s.guard, &MoveRuleInput{Tag: "rules", Parent: "intro", Index: -1})
	s.Require().NoError(err)

	s.Equal([]string{"rules"}, s.rule("intro").Children)
	s.Equal([]string{"intro"}, s.rule(models.RootRuleTag).Children)
	s.Equal("intro", s.rule("rules").Parent)

	err = s.session.Rules.Move(s.ctx, s.guard, &MoveRuleInput{Tag: "intro", Parent: "rules", Index: -1})
	s.ErrorIs(err, ErrRuleCycle)
	err = s.session.Rules.Move(s.ctx, s.guard, &MoveRuleInput{Tag: "intro", Parent: "intro", Index: -1})
	s.ErrorIs(err, ErrRuleCycle)
	s.Equal([]string{"intro"}, s.rule(models.RootRuleTag).Children)
}

func (s *RuleTreeTestSuite) TestMoveWithinParent() {
	s.add("a", "", -1, "A", "")
	s.add("b", "", -1, "B", "")
	s.add("c", "", -1, "C", "")

	parent, index, err := s.session.Rules.ResolveLocation(LocationAfter, "c")
	s.Require().NoError(err)
	s.Require().NoError(s.session.Rules.Move(s.ctx, s.guard, &MoveRuleInput{Tag: "a", Parent: parent, Index: index}))
	s.Equal([]string{"b", "c", "a"}, s.rule(models.RootRuleTag).Children)

	parent, index, err = s.session.Rules.ResolveLocation(LocationBefore, "b")
	s.Require().NoError(err)
	s.Require().NoError(s.session.Rules.Move(s.ctx, s.guard, &MoveRuleInput{Tag: "a", Parent: parent, Index: index}))
	s.Equal([]string{"a", "b", "c"}, s.rule(models.RootRuleTag).Children)
}

func (s *RuleTreeTestSuite) TestSectionNumbers() {
	s.add("a", "", -1, "A", "")
	s.add("b", "", -1, "B", "")
	s.add("c", "b", -1, "C", "")
	s.add("d", "b", 0, "D", "")

	s.Equal("1.", s.session.Rules.Section("a"))
	s.Equal("2.", s.session.Rules.Section("b"))
	s.Equal("2.1.", s.session.Rules.Section("d"))
	s.Equal("2.2.", s.session.Rules.Section("c"))
	s.Equal("", s.session.Rules.Section(models.RootRuleTag))
	s.Equal([]string{"a", "b", "d", "c"}, s.session.Rules.Order())
}

func (s *RuleTreeTestSuite) TestAddValidation() {
	s.add("a", "", -1, "A", "")

	_, err := s.session.Rules.Add(s.ctx, s.guard, &AddRuleInput{Tag: "no spaces", Index: -1})
	s.ErrorIs(err, ErrInvalidRuleTag)

	_, err = s.session.Rules.Add(s.ctx, s.guard, &AddRuleInput{Tag: "A", Index: -1})
	s.ErrorIs(err, ErrRuleTagInUse)

	_, err = s.session.Rules.Add(s.ctx, s.guard, &AddRuleInput{Tag: "b", Index: 5})
	s.ErrorIs(err, ErrInvalidPosition)

	_, err = s.session.Rules.Add(s.ctx, s.guard, &AddRuleInput{Tag: "b", Parent: "missing", Index: -1})
	s.ErrorIs(err, ErrRuleNotFound)

	s.Equal([]string{"a"}, s.session.Rules.Order())
}

func (s *RuleTreeTestSuite) TestRemove() {
	s.add("a", "", -1, "A", "")
	s.add("b", "", -1, "B", "")
	s.add("c", "b", -1, "C", "")
	s.add("d", "", -1, "D", "")

	s.ErrorIs(s.session.Rules.Remove(s.ctx, s.guard, models.RootRuleTag, testAdminID), ErrRootRule)

	s.Require().NoError(s.session.Rules.Remove(s.ctx, s.guard, "b", testAdminID))
	_, err := s.session.Rules.Get("c")
	s.ErrorIs(err, ErrRuleNotFound)
	s.Equal([]string{"a", "d"}, s.session.Rules.Order())
	s.Equal("2.", s.session.Rules.Section("d"))
}

func (s *RuleTreeTestSuite) TestResolveLocation() {
	s.add("a", "", -1, "A", "")
	s.add("b", "", -1, "B", "")

	parent, index, err := s.session.Rules.ResolveLocation(LocationBefore, "b")
	s.Require().NoError(err)
	s.Equal(models.RootRuleTag, parent)
	s.Equal(1, index)

	parent, index, err = s.session.Rules.ResolveLocation(LocationIn, "b")
	s.Require().NoError(err)
	s.Equal("b", parent)
	s.Equal(-1, index)

	_, _, err = s.session.Rules.ResolveLocation(LocationAfter, models.RootRuleTag)
	s.ErrorIs(err, ErrRootRule)

	_, _, err = s.session.Rules.ResolveLocation("under", "a")
	s.ErrorIs(err, ErrInvalidPosition)

	_, _, err = s.session.Rules.ResolveLocation(LocationIn, "missing")
	s.ErrorIs(err, ErrRuleNotFound)
}

func (s *RuleTreeTestSuite) TestRendersInDocumentOrder() {
	s.setChannel(models.ChannelRules, testRulesChannel)
	s.add("intro", "", -1, "Intro", "Hello")
	s.add("scoring", "", -1, "Scoring", "See [#intro] and [#nowhere].")

	intro := s.messages("intro")
	s.Require().Len(intro, 1)
	s.Equal("1. Intro", intro[0].Content.Embed.Title)
	s.Equal("Hello", intro[0].Content.Embed.Description)
	s.Equal("intro", intro[0].Content.Embed.Footer)

	scoring := s.messages("scoring")
	s.Require().Len(scoring, 1)
	s.Equal("See [**1. Intro**]("+s.link("intro")+") and [#nowhere].", scoring[0].Content.Embed.Description)

	// inserting at the top renumbers and reposts everything below it
	s.add("preface", "", 0, "Preface", "")
	titles := []string{}
	for _, msg := range s.chat.Channel(testRulesChannel) {
		titles = append(titles, msg.Content.Embed.Title)
	}
	s.Equal([]string{"1. Preface", "2. Intro", "3. Scoring"}, titles)
	s.Equal("See [**2. Intro**]("+s.link("intro")+") and [#nowhere].", s.messages("scoring")[0].Content.Embed.Description)
}

func (s *RuleTreeTestSuite) TestRetagRewritesReferences() {
	s.setChannel(models.ChannelRules, testRulesChannel)
	s.add("intro", "", -1, "Intro", "Hello")
	s.add("scoring", "", -1, "Scoring", "See [#intro].")
	s.add("child", "intro", -1, "Child", "")

	s.Require().NoError(s.session.Rules.Retag(s.ctx, s.guard, "intro", "welcome", testAdminID))

	_, err := s.session.Rules.Get("intro")
	s.ErrorIs(err, ErrRuleNotFound)
	s.Equal("See [#welcome].", s.rule("scoring").Content)
	s.Equal("welcome", s.rule("child").Parent)
	s.Equal([]string{"welcome", "scoring"}, s.rule(models.RootRuleTag).Children)
	s.Equal("welcome", s.messages("welcome")[0].Content.Embed.Footer)

	s.add("other", "", -1, "Other", "")
	s.ErrorIs(s.session.Rules.Retag(s.ctx, s.guard, "other", "scoring", testAdminID), ErrRuleTagInUse)
	s.ErrorIs(s.session.Rules.Retag(s.ctx, s.guard, models.RootRuleTag, "top", testAdminID), ErrRootRule)
}

func (s *RuleTreeTestSuite) TestRetitleRefreshesReferrers() {
	s.setChannel(models.ChannelRules, testRulesChannel)
	s.add("intro", "", -1, "Intro", "Hello")
	s.add("scoring", "", -1, "Scoring", "See [#intro].")

	s.Require().NoError(s.session.Rules.Retitle(s.ctx, s.guard, "intro", "Welcome", testAdminID))

	s.Equal("1. Welcome", s.messages("intro")[0].Content.Embed.Title)
	s.Equal("See [**1. Welcome**]("+s.link("intro")+").", s.messages("scoring")[0].Content.Embed.Description)
}

func (s *RuleTreeTestSuite) TestLongContentIsSplit() {
	s.setChannel(models.ChannelRules, testRulesChannel)
	paragraph := strings.Repeat("x", 900)
	s.add("long", "", -1, "Long", paragraph+"\n\n"+paragraph+"\n\n"+paragraph)
	s.add("after", "", -1, "After", "")

	long := s.messages("long")
	s.Require().Len(long, 2)
	s.Equal("1. Long (1/2)", long[0].Content.Embed.Title)
	s.Equal(paragraph+"\n\n"+paragraph, long[0].Content.Embed.Description)
	s.Equal("1. Long (2/2)", long[1].Content.Embed.Title)
	s.Equal(paragraph, long[1].Content.Embed.Description)

	// shrinking the content changes the message count and reposts from there
	s.Require().NoError(s.session.Rules.SetContent(s.ctx, s.guard, "long", "short", testAdminID))
	long = s.messages("long")
	s.Require().Len(long, 1)
	s.Equal("1. Long", long[0].Content.Embed.Title)

	channel := s.chat.Channel(testRulesChannel)
	s.Require().Len(channel, 2)
	s.Equal(s.rule("long").MessageIDs[0], channel[0].ID)
	s.Equal(s.rule("after").MessageIDs[0], channel[1].ID)
}

func (s *RuleTreeTestSuite) TestRefreshIsIdempotent() {
	s.setChannel(models.ChannelRules, testRulesChannel)
	s.add("a", "", -1, "A", "Alpha")
	s.add("b", "a", -1, "B", "See [#a]")

	s.chat.ResetCalls()
	s.Require().NoError(s.session.Rules.Refresh(s.ctx, s.guard, "a", "b"))
	s.Require().NoError(s.session.Rules.Refresh(s.ctx, s.guard, "b", "a"))
	s.Equal(0, s.chat.Calls().Effects())
}

func (s *RuleTreeTestSuite) TestRefreshRepostsMissingMessage() {
	s.setChannel(models.ChannelRules, testRulesChannel)
	s.add("a", "", -1, "A", "Alpha")
	s.add("b", "", -1, "B", "Beta")
	s.add("c", "", -1, "C", "Gamma")

	a := s.rule("a").MessageIDs[0]
	b := s.rule("b").MessageIDs[0]
	s.chat.Remove(testRulesChannel, b)

	s.Require().NoError(s.session.Rules.Refresh(s.ctx, s.guard, "b"))
	s.Equal(a, s.rule("a").MessageIDs[0])
	s.NotEqual(b, s.rule("b").MessageIDs[0])

	channel := s.chat.Channel(testRulesChannel)
	s.Require().Len(channel, 3)
	s.Equal("2. B", channel[1].Content.Embed.Title)
	s.Equal("3. C", channel[2].Content.Embed.Title)
}

func (s *RuleTreeTestSuite) TestRemoveDeletesMessages() {
	s.setChannel(models.ChannelRules, testRulesChannel)
	s.add("a", "", -1, "A", "Alpha")
	s.add("b", "", -1, "B", "Beta")
	s.add("c", "b", -1, "C", "Gamma")
	s.add("d", "", -1, "D", "Delta")

	s.Require().NoError(s.session.Rules.Remove(s.ctx, s.guard, "b", testAdminID))

	channel := s.chat.Channel(testRulesChannel)
	s.Require().Len(channel, 2)
	s.Equal("1. A", channel[0].Content.Embed.Title)
	s.Equal("2. D", channel[1].Content.Embed.Title)
}

func (s *RuleTreeTestSuite) TestNewRulesChannelRepostsEverything() {
	s.add("a", "", -1, "A", "Alpha")
	s.add("b", "a", -1, "B", "Beta")
	s.Empty(s.rule("a").MessageIDs)

	s.setChannel(models.ChannelRules, testRulesChannel)

	channel := s.chat.Channel(testRulesChannel)
	s.Require().Len(channel, 2)
	s.Equal("1. A", channel[0].Content.Embed.Title)
	s.Equal("1.1. B", channel[1].Content.Embed.Title)
}

func TestRuleTreeSuite(t *testing.T) {
	suite.Run(t, new(RuleTreeTestSuite))
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{name: "empty", text: "", maxLen: 10, want: []string{""}},
		{name: "short", text: "hello", maxLen: 10, want: []string{"hello"}},
		{name: "word boundary", text: "hello world foo", maxLen: 12, want: []string{"hello world", "foo"}},
		{name: "line before word", text: "ab cd\nef gh ij", maxLen: 12, want: []string{"ab cd", "ef gh ij"}},
		{name: "paragraph before line", text: "ab\n\ncd\nef gh ij", maxLen: 14, want: []string{"ab", "cd\nef gh ij"}},
		{name: "hard cut", text: "abcdefghijklmnop", maxLen: 10, want: []string{"abcdefghi", "jklmnop"}},
		{name: "runes", text: "ééééééééééé", maxLen: 10, want: []string{"ééééééééé", "éé"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitText(tt.text, tt.maxLen)
			if len(got) != len(tt.want) {
				t.Fatalf("splitText(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
				if n := len([]rune(got[i])); n >= tt.maxLen {
					t.Errorf("chunk %d has %d characters, limit %d", i, n, tt.maxLen)
				}
			}
		})
	}
}
