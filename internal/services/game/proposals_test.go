package game

import (
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
	"github.com/stretchr/testify/suite"
)

type ProposalStoreTestSuite struct {
	gameTestSuite
}

func (s *ProposalStoreTestSuite) SetupTest() {
	s.gameTestSuite.SetupTest()
	s.setChannel(models.ChannelProposals, testProposalsChannel)
}

func (s *ProposalStoreTestSuite) submit(content string) *models.Proposal {
	p, err := s.session.Proposals.Submit(s.ctx, s.guard, &SubmitProposalInput{AuthorID: testUserID, Content: content})
	s.Require().NoError(err)
	return p
}

func (s *ProposalStoreTestSuite) vote(n int, voter string, direction models.VoteDirection, weight int) bool {
	ok, err := s.session.Proposals.Vote(s.ctx, s.guard, &VoteInput{N: n, VoterID: voter, Direction: direction, Weight: weight})
	s.Require().NoError(err)
	return ok
}

func (s *ProposalStoreTestSuite) get(n int) *models.Proposal {
	p, err := s.session.Proposals.Get(n)
	s.Require().NoError(err)
	return p
}

func (s *ProposalStoreTestSuite) message(n int) *messaging.Message {
	msg := s.chat.Message(testProposalsChannel, s.get(n).MessageID)
	s.Require().NotNil(msg, "proposal #%d has no message", n)
	return msg
}

func (s *ProposalStoreTestSuite) TestSubmit() {
	p := s.submit("Players receive 5 points when their proposal is passed.")

	s.Equal(1, p.N)
	s.Equal(models.ProposalStatusVoting, p.Status)
	s.Empty(p.Votes)
	s.Equal(testUserID, p.AuthorID)
	s.Equal(s.clock.T, p.Timestamp)
	s.Equal(1, s.session.Proposals.Count())

	msg := s.message(1)
	s.True(msg.Content.Equal(proposalContent(p)))
	s.Equal("Proposal #1", msg.Content.Embed.Title)
	s.Equal([]string{EmojiVoteFor, EmojiVoteAgainst}, msg.OwnReactions())
}

func (s *ProposalStoreTestSuite) TestSubmitStampsWholeSeconds() {
	s.clock.T = s.clock.T.Add(250 * time.Millisecond)

	p := s.submit("Timestamps match what Discord shows.")
	s.Equal(0, p.Timestamp.Nanosecond())
	s.Equal(s.clock.T.Truncate(time.Second), p.Timestamp)
}

func (s *ProposalStoreTestSuite) TestSubmitNumbersAreDense() {
	for i := 1; i <= 4; i++ {
		s.Equal(i, s.submit("proposal").N)
	}

	messages := s.chat.Channel(testProposalsChannel)
	s.Require().Len(messages, 4)
	for i, msg := range messages {
		s.Equal(s.get(i+1).MessageID, msg.ID)
	}
}

func (s *ProposalStoreTestSuite) TestSubmitValidation() {
	_, err := s.session.Proposals.Submit(s.ctx, s.guard, &SubmitProposalInput{AuthorID: testUserID, Content: "  \n "})
	s.ErrorIs(err, ErrProposalEmpty)

	_, err = s.session.Proposals.Submit(s.ctx, s.guard, &SubmitProposalInput{AuthorID: testUserID, Content: strings.Repeat("é", MaxProposalLength+1)})
	s.ErrorIs(err, ErrProposalTooLong)

	p := s.submit(strings.Repeat("é", MaxProposalLength))
	s.Equal(1, p.N)
}

func (s *ProposalStoreTestSuite) TestVoteForThenAgainstReplacesTheVote() {
	s.submit("proposal")

	s.True(s.vote(1, testUserID, models.VoteFor, 1))
	s.True(s.vote(1, testUserID, models.VoteAgainst, 1))

	p := s.get(1)
	s.Equal(0, p.VotesFor())
	s.Equal(1, p.VotesAgainst())
}

func (s *ProposalStoreTestSuite) TestVoteWeightIsClampedWithoutMulti() {
	s.submit("proposal")

	s.True(s.vote(1, testUserID, models.VoteFor, 3))
	s.Equal(1, s.get(1).Votes[testUserID])

	// voting the same way again changes nothing
	s.True(s.vote(1, testUserID, models.VoteFor, 1))
	s.Equal(1, s.get(1).Votes[testUserID])
}

func (s *ProposalStoreTestSuite) TestVoteAccumulatesWithMulti() {
	s.setFlags(func(f *models.GameFlags) { f.AllowVoteMulti = true })
	s.submit("proposal")

	s.True(s.vote(1, testUserID, models.VoteFor, 3))
	s.True(s.vote(1, testUserID, models.VoteFor, 2))
	s.Equal(5, s.get(1).Votes[testUserID])

	s.True(s.vote(1, testUserID, models.VoteAgainst, 2))
	s.Equal(-2, s.get(1).Votes[testUserID])

	msg := s.message(1)
	s.Equal("Against (2)", msg.Content.Embed.Fields[2].Name)
	s.Equal("<@"+testUserID+"> (2x)", msg.Content.Embed.Fields[2].Value)
}

func (s *ProposalStoreTestSuite) TestVoteChangeNeedsFlag() {
	s.setFlags(func(f *models.GameFlags) { f.AllowVoteChange = false })
	s.submit("proposal")

	s.True(s.vote(1, testUserID, models.VoteFor, 1))
	s.False(s.vote(1, testUserID, models.VoteAgainst, 1))
	s.Equal(1, s.get(1).Votes[testUserID])

	// removing is always allowed
	s.True(s.vote(1, testUserID, models.VoteRemove, 0))
	s.False(s.get(1).Votes.Has(testUserID))
}

func (s *ProposalStoreTestSuite) TestRemoveWithoutVote() {
	s.submit("proposal")
	s.False(s.vote(1, testUserID, models.VoteRemove, 0))
}

func (s *ProposalStoreTestSuite) TestAbstainNeedsFlag() {
	s.submit("proposal")
	s.False(s.vote(1, testUserID, models.VoteAbstain, 0))
	s.False(s.get(1).Votes.Has(testUserID))

	s.setFlags(func(f *models.GameFlags) { f.AllowVoteAbstain = true })
	s.True(s.vote(1, testUserID, models.VoteAbstain, 0))

	p := s.get(1)
	s.Equal(0, p.Votes[testUserID])
	s.Equal(1, p.VotesAbstain())
	s.Equal("Abstain (1)", s.message(1).Content.Embed.Fields[3].Name)
}

func (s *ProposalStoreTestSuite) TestAbstainOrRemove() {
	s.setFlags(func(f *models.GameFlags) { f.AllowVoteAbstain = true })
	s.submit("proposal")

	ok, err := s.session.Proposals.AbstainOrRemove(s.ctx, s.guard, 1, testUserID)
	s.Require().NoError(err)
	s.True(ok)
	s.True(s.get(1).Votes.Has(testUserID))

	ok, err = s.session.Proposals.AbstainOrRemove(s.ctx, s.guard, 1, testUserID)
	s.Require().NoError(err)
	s.True(ok)
	s.False(s.get(1).Votes.Has(testUserID))
}

func (s *ProposalStoreTestSuite) TestVoteErrors() {
	s.submit("proposal")

	_, err := s.session.Proposals.Vote(s.ctx, s.guard, &VoteInput{N: 2, VoterID: testUserID, Direction: models.VoteFor})
	s.ErrorIs(err, ErrProposalNotFound)

	_, err = s.session.Proposals.Vote(s.ctx, s.guard, &VoteInput{N: 1, VoterID: testUserID, Direction: "sideways"})
	s.ErrorIs(err, ErrInvalidVote)

	_, err = s.session.Proposals.Vote(s.ctx, s.guard, &VoteInput{N: 1, VoterID: testUserID, Direction: models.VoteFor, Weight: -1})
	s.ErrorIs(err, ErrInvalidVoteWeight)

	s.Require().NoError(s.session.Proposals.SetStatus(s.ctx, s.guard, &SetProposalStatusInput{N: 1, Status: models.ProposalStatusPassed}))
	ok, err := s.session.Proposals.Vote(s.ctx, s.guard, &VoteInput{N: 1, VoterID: testUserID, Direction: models.VoteFor})
	s.ErrorIs(err, ErrProposalClosed)
	s.False(ok)
}

func (s *ProposalStoreTestSuite) TestVoteRendersVoters() {
	s.submit("proposal")
	s.True(s.vote(1, testOtherID, models.VoteFor, 1))
	s.True(s.vote(1, testUserID, models.VoteFor, 1))

	fields := s.message(1).Content.Embed.Fields
	s.Require().Len(fields, 3)
	s.Equal("Author", fields[0].Name)
	s.Equal("For (2)", fields[1].Name)
	s.Equal("<@"+testUserID+">\n<@"+testOtherID+">", fields[1].Value)
	s.Equal("Against", fields[2].Name)
	s.Equal(emptyList, fields[2].Value)
}

func (s *ProposalStoreTestSuite) TestSetStatusAndReopen() {
	s.submit("proposal")

	s.Require().NoError(s.session.Proposals.SetStatus(s.ctx, s.guard, &SetProposalStatusInput{N: 1, Status: models.ProposalStatusPassed, ActorID: testAdminID}))
	msg := s.message(1)
	s.Equal("Proposal #1 - Passed", msg.Content.Embed.Title)
	s.Equal(ColorSuccess, msg.Content.Embed.Color)
	s.Empty(msg.OwnReactions())

	s.Require().NoError(s.session.Proposals.SetStatus(s.ctx, s.guard, &SetProposalStatusInput{N: 1, Status: models.ProposalStatusVoting, ActorID: testAdminID}))
	msg = s.message(1)
	s.Equal("Proposal #1", msg.Content.Embed.Title)
	s.Equal([]string{EmojiVoteFor, EmojiVoteAgainst}, msg.OwnReactions())

	s.ErrorIs(s.session.Proposals.SetStatus(s.ctx, s.guard, &SetProposalStatusInput{N: 1, Status: "pending"}), ErrInvalidStatus)
}

func (s *ProposalStoreTestSuite) TestDeletedStatusHidesContent() {
	s.submit("secret plan")
	s.Require().NoError(s.session.Proposals.SetStatus(s.ctx, s.guard, &SetProposalStatusInput{N: 1, Status: models.ProposalStatusDeleted}))

	msg := s.message(1)
	s.Equal("Proposal #1 - Deleted", msg.Content.Embed.Title)
	s.Empty(msg.Content.Embed.Description)
	s.Empty(msg.Content.Embed.Fields)
}

func (s *ProposalStoreTestSuite) TestSetContent() {
	s.submit("first draft")

	s.Require().NoError(s.session.Proposals.SetContent(s.ctx, s.guard, &SetProposalContentInput{N: 1, Content: " second draft "}))
	s.Equal("second draft", s.get(1).Content)
	s.Equal("second draft", s.message(1).Content.Embed.Description)

	s.ErrorIs(s.session.Proposals.SetContent(s.ctx, s.guard, &SetProposalContentInput{N: 1, Content: ""}), ErrProposalEmpty)
}

func (s *ProposalStoreTestSuite) TestPermanentlyDeleteOnlyTheLast() {
	s.submit("one")
	s.submit("two")
	third := s.submit("three")

	s.ErrorIs(s.session.Proposals.PermanentlyDelete(s.ctx, s.guard, 2, testAdminID), ErrNotLastProposal)
	s.Equal(3, s.session.Proposals.Count())

	s.Require().NoError(s.session.Proposals.PermanentlyDelete(s.ctx, s.guard, 3, testAdminID))
	s.Equal(2, s.session.Proposals.Count())
	s.Nil(s.chat.Message(testProposalsChannel, third.MessageID))
	s.Len(s.chat.Channel(testProposalsChannel), 2)

	_, err := s.session.Proposals.Get(3)
	s.ErrorIs(err, ErrProposalNotFound)
}

func (s *ProposalStoreTestSuite) TestPermanentlyDeleteWithMissingMessage() {
	p := s.submit("one")
	s.chat.Remove(testProposalsChannel, p.MessageID)

	s.NoError(s.session.Proposals.PermanentlyDelete(s.ctx, s.guard, 1, testAdminID))
	s.Equal(0, s.session.Proposals.Count())
}

func (s *ProposalStoreTestSuite) TestRefreshIsIdempotent() {
	s.submit("one")
	s.submit("two")
	s.True(s.vote(2, testUserID, models.VoteAgainst, 1))

	s.chat.ResetCalls()
	s.Require().NoError(s.session.Proposals.Refresh(s.ctx, s.guard, 1, 2))
	s.Require().NoError(s.session.Proposals.Refresh(s.ctx, s.guard, 2, 1))

	calls := s.chat.Calls()
	s.Equal(0, calls.Effects())
	s.Equal(4, calls.Fetches)
}

func (s *ProposalStoreTestSuite) TestRefreshIgnoresOtherPlayersReactions() {
	p := s.submit("one")
	s.chat.React(testProposalsChannel, p.MessageID, EmojiVoteFor)
	s.chat.React(testProposalsChannel, p.MessageID, "🎉")

	s.chat.ResetCalls()
	s.Require().NoError(s.session.Proposals.Refresh(s.ctx, s.guard, 1))
	s.Equal(0, s.chat.Calls().Effects())
}

func (s *ProposalStoreTestSuite) TestRefreshRepostsMissingMessage() {
	first := s.submit("one")
	second := s.submit("two")
	third := s.submit("three")

	s.chat.Remove(testProposalsChannel, second.MessageID)
	s.Require().NoError(s.session.Proposals.Refresh(s.ctx, s.guard, 2))

	s.Equal(first.MessageID, s.get(1).MessageID)
	s.NotEqual(second.MessageID, s.get(2).MessageID)
	s.NotEqual(third.MessageID, s.get(3).MessageID)
	s.Nil(s.chat.Message(testProposalsChannel, third.MessageID))

	messages := s.chat.Channel(testProposalsChannel)
	s.Require().Len(messages, 3)
	for i, msg := range messages {
		p := s.get(i + 1)
		s.Equal(p.MessageID, msg.ID)
		s.True(msg.Content.Equal(proposalContent(p)))
	}
}

func (s *ProposalStoreTestSuite) TestAbstainFlagUpdatesReactions() {
	s.submit("one")
	s.Require().NoError(s.session.Proposals.SetStatus(s.ctx, s.guard, &SetProposalStatusInput{N: 1, Status: models.ProposalStatusFailed}))
	s.submit("two")

	s.setFlags(func(f *models.GameFlags) { f.AllowVoteAbstain = true })

	s.Empty(s.message(1).OwnReactions())
	s.Equal([]string{EmojiVoteFor, EmojiVoteAgainst, EmojiVoteAbstain}, s.message(2).OwnReactions())
}

func (s *ProposalStoreTestSuite) TestNewChannelRepostsEverything() {
	s.submit("one")
	s.submit("two")

	s.setChannel(models.ChannelProposals, "new-channel")

	messages := s.chat.Channel("new-channel")
	s.Require().Len(messages, 2)
	s.Equal("Proposal #1", messages[0].Content.Embed.Title)
	s.Equal("Proposal #2", messages[1].Content.Embed.Title)
}

func (s *ProposalStoreTestSuite) TestByMessageID() {
	p := s.submit("one")

	found, err := s.session.Proposals.ByMessageID(p.MessageID)
	s.Require().NoError(err)
	s.Equal(1, found.N)

	_, err = s.session.Proposals.ByMessageID("unknown")
	s.ErrorIs(err, ErrNotProposalMessage)
}

func TestProposalStoreSuite(t *testing.T) {
	suite.Run(t, new(ProposalStoreTestSuite))
}

func TestSubmitWithoutChannel(t *testing.T) {
	s := new(gameTestSuite)
	s.SetT(t)
	s.SetupTest()
	defer s.TearDownTest()

	p, err := s.session.Proposals.Submit(s.ctx, s.guard, &SubmitProposalInput{AuthorID: testUserID, Content: "quiet"})
	if err != nil {
		t.Fatal(err)
	}
	if p.MessageID != "" {
		t.Errorf("message ID = %q, want none without a proposals channel", p.MessageID)
	}
	if calls := s.chat.Calls(); calls.Sends != 0 {
		t.Errorf("sends = %d, want 0", calls.Sends)
	}
}
