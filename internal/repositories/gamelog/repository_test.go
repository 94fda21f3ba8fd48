package gamelog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/repositories/sqlitedb"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

// RepositoryTestSuite runs the same behaviour checks against every backend
type RepositoryTestSuite struct {
	suite.Suite
	newRepo  func(s *RepositoryTestSuite) Repository
	cleanups []func()
	repo     Repository
	testNow  time.Time
}

func (s *RepositoryTestSuite) SetupTest() {
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	s.repo = s.newRepo(s)
}

func (s *RepositoryTestSuite) TearDownTest() {
	for _, fn := range s.cleanups {
		fn()
	}
	s.cleanups = nil
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(s *RepositoryTestSuite) Repository {
		mr, err := miniredis.Run()
		s.Require().NoError(err)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		s.cleanups = append(s.cleanups, func() {
			client.Close()
			mr.Close()
		})

		repo, err := NewRedis(&Config{RedisClient: client})
		s.Require().NoError(err)
		return repo
	}})
}

func TestFileRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(s *RepositoryTestSuite) Repository {
		repo, err := NewFile(&FileConfig{Dir: s.T().TempDir()})
		s.Require().NoError(err)
		return repo
	}})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(s *RepositoryTestSuite) Repository {
		db, err := sqlitedb.Open(":memory:")
		s.Require().NoError(err)
		s.cleanups = append(s.cleanups, func() { db.Close() })

		repo, err := NewSQLite(&SQLiteConfig{DB: db})
		s.Require().NoError(err)
		return repo
	}})
}

func (s *RepositoryTestSuite) appendEntry(guildID string, kind models.LogKind, i int) *models.LogEntry {
	entry := &models.LogEntry{
		ID:        fmt.Sprintf("%s-%d", guildID, i),
		GuildID:   guildID,
		Kind:      kind,
		ActorID:   "111",
		Message:   fmt.Sprintf("event %d, with \"quotes\"", i),
		Timestamp: s.testNow.Add(time.Duration(i) * time.Second),
	}
	s.Require().NoError(s.repo.AppendEntry(context.Background(), &AppendEntryInput{Entry: entry}))
	return entry
}

func (s *RepositoryTestSuite) TestListEmptyLog() {
	out, err := s.repo.ListEntries(context.Background(), &ListEntriesInput{GuildID: "guild"})
	s.Require().NoError(err)
	s.Empty(out.Entries)
}

func (s *RepositoryTestSuite) TestAppendAndListInOrder() {
	first := s.appendEntry("guild", models.LogKindProposal, 1)
	s.appendEntry("guild", models.LogKindVote, 2)
	s.appendEntry("other", models.LogKindVote, 3)

	out, err := s.repo.ListEntries(context.Background(), &ListEntriesInput{GuildID: "guild"})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 2)

	got := out.Entries[0]
	s.Equal(first.ID, got.ID)
	s.Equal("guild", got.GuildID)
	s.Equal(models.LogKindProposal, got.Kind)
	s.Equal("111", got.ActorID)
	s.Equal(first.Message, got.Message)
	s.True(first.Timestamp.Equal(got.Timestamp))
	s.Equal("guild-2", out.Entries[1].ID)
}

func (s *RepositoryTestSuite) TestListFiltersByKind() {
	s.appendEntry("guild", models.LogKindProposal, 1)
	s.appendEntry("guild", models.LogKindVote, 2)
	s.appendEntry("guild", models.LogKindVote, 3)

	out, err := s.repo.ListEntries(context.Background(), &ListEntriesInput{GuildID: "guild", Kind: models.LogKindVote})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 2)
	s.Equal("guild-2", out.Entries[0].ID)
	s.Equal("guild-3", out.Entries[1].ID)
}

func (s *RepositoryTestSuite) TestListKeepsNewestWithinLimit() {
	for i := 1; i <= 5; i++ {
		s.appendEntry("guild", models.LogKindComment, i)
	}

	out, err := s.repo.ListEntries(context.Background(), &ListEntriesInput{GuildID: "guild", Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 2)
	s.Equal("guild-4", out.Entries[0].ID)
	s.Equal("guild-5", out.Entries[1].ID)
}

func (s *RepositoryTestSuite) TestAppendValidatesEntry() {
	s.Error(s.repo.AppendEntry(context.Background(), &AppendEntryInput{}))
	s.Error(s.repo.AppendEntry(context.Background(), &AppendEntryInput{Entry: &models.LogEntry{GuildID: "guild"}}))
	s.Error(s.repo.AppendEntry(context.Background(), &AppendEntryInput{Entry: &models.LogEntry{ID: "x"}}))
}
