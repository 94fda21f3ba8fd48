package archive

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ArchiveTestSuite struct {
	suite.Suite
	testNow time.Time
	state   *models.GameState
}

func (s *ArchiveTestSuite) SetupTest() {
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)

	s.state = models.NewGameState("guild-1")
	s.state.Flags.AllowVoteAbstain = true
	s.state.Activity.Set("111", s.testNow.Unix())
	s.state.Proposals = append(s.state.Proposals, &models.Proposal{
		N:         1,
		AuthorID:  "111",
		Content:   "Gold may be traded.",
		Status:    models.ProposalStatusVoting,
		MessageID: "900",
		Votes:     models.PlayerLedger[int]{"111": 1, "222": 0},
		Timestamp: s.testNow,
	})
	s.state.Quantities["gold"] = &models.Quantity{
		Name:     "gold",
		Aliases:  []string{"g"},
		Balances: models.PlayerLedger[decimal.Decimal]{"111": decimal.RequireFromString("2.5")},
	}
	s.state.Rules[models.RootRuleTag].Children = []string{"intro"}
	s.state.Rules["intro"] = &models.Rule{
		Tag:        "intro",
		Title:      "Introduction",
		Content:    "Welcome",
		Parent:     models.RootRuleTag,
		Children:   []string{},
		MessageIDs: []string{"901"},
	}
}

func (s *ArchiveTestSuite) TestRoundTrip() {
	var buf bytes.Buffer
	s.Require().NoError(Write(&buf, s.state, s.testNow))

	snap, err := Read(&buf)
	s.Require().NoError(err)

	s.Equal(Version, snap.Header.Version)
	s.Equal("guild-1", snap.Header.GuildID)
	s.True(snap.Header.CreatedAt.Equal(s.testNow))
	s.Equal(s.state, snap.State)
}

func (s *ArchiveTestSuite) TestFileRoundTrip() {
	path := filepath.Join(s.T().TempDir(), "archives", FileName("guild-1", s.testNow))
	s.Equal("guild-1-20250405T100000Z.json.zst", filepath.Base(path))

	s.Require().NoError(WriteFile(path, s.state, s.testNow))

	snap, err := ReadFile(path)
	s.Require().NoError(err)
	s.Equal(s.state, snap.State)
}

func (s *ArchiveTestSuite) TestNewerVersionIsRejected() {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	s.Require().NoError(err)
	_, err = enc.Write([]byte(`{"version":99,"guild_id":"guild-1"}` + "\n{}\n"))
	s.Require().NoError(err)
	s.Require().NoError(enc.Close())

	_, err = Read(&buf)
	s.ErrorIs(err, ErrUnsupportedVersion)
}

func (s *ArchiveTestSuite) TestNotASnapshot() {
	_, err := Read(bytes.NewBufferString("plain text"))
	s.Error(err)
}

func TestArchiveSuite(t *testing.T) {
	suite.Run(t, new(ArchiveTestSuite))
}
