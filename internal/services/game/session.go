package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/common/uuid"
	"github.com/KirkDiggler/nomic/internal/models"
	gameRepo "github.com/KirkDiggler/nomic/internal/repositories/game"
	"github.com/KirkDiggler/nomic/internal/repositories/gamelog"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
)

// Guard is returned by Session.Acquire and proves its holder owns the
// session lock. Every mutating operation takes the guard and fails with
// ErrSessionNotLocked unless it is the session's current one.
type Guard struct {
	session  *Session
	released atomic.Bool
}

// Session returns the session this guard locks
func (g *Guard) Session() *Session {
	return g.session
}

// Release saves the session if anything changed and unlocks it.
// Releasing twice is a no-op.
func (g *Guard) Release(ctx context.Context) {
	if g == nil || !g.released.CompareAndSwap(false, true) {
		return
	}
	s := g.session
	if s.dirty {
		s.save(ctx)
	}
	s.publish()
	s.holder.Store(nil)
	s.mu.Unlock()
}

// Session is the in-memory game of one guild. It owns the lock that
// serializes every change to the game together with the chat messages and
// the stored document that mirror it.
type Session struct {
	guildID string
	repo    gameRepo.Repository
	logs    gamelog.Repository
	chat    messaging.Service
	clock   clock.Clock
	uuid    uuid.UUID

	mu     sync.Mutex
	holder atomic.Pointer[Guard]
	dirty  bool

	flags    models.GameFlags
	channels models.Channels

	Activity   *ActivityTracker
	Proposals  *ProposalStore
	Quantities *QuantityStore
	Rules      *RuleTree

	// snapshot is the state as of the last release, for unlocked readers
	snapshot atomic.Pointer[models.GameState]
}

func newSession(guildID string, cfg *Config) *Session {
	s := &Session{
		guildID: guildID,
		repo:    cfg.GameRepository,
		logs:    cfg.GameLogRepository,
		chat:    cfg.Messaging,
		clock:   cfg.Clock,
		uuid:    cfg.UUID,
	}
	s.Activity = &ActivityTracker{session: s}
	s.Proposals = &ProposalStore{session: s}
	s.Quantities = &QuantityStore{session: s}
	s.Rules = &RuleTree{session: s}
	s.load(models.NewGameState(guildID))
	return s
}

// GuildID returns the guild this session belongs to
func (s *Session) GuildID() string {
	return s.guildID
}

// Acquire blocks until the caller holds the session lock.
// The guard must be released on every path, typically with defer.
func (s *Session) Acquire(ctx context.Context) *Guard {
	s.mu.Lock()
	g := &Guard{session: s}
	s.holder.Store(g)
	return g
}

// Do runs fn while holding the session lock
func (s *Session) Do(ctx context.Context, fn func(g *Guard) error) error {
	g := s.Acquire(ctx)
	defer g.Release(ctx)
	return fn(g)
}

// Snapshot returns a copy of the state as of the last released change.
// It never blocks and may be slightly stale.
func (s *Session) Snapshot() *models.GameState {
	return s.snapshot.Load().Clone()
}

// check asserts that g is the guard currently holding this session
func (s *Session) check(g *Guard) error {
	if g == nil || g.session != s || g.released.Load() || s.holder.Load() != g {
		return ErrSessionNotLocked
	}
	return nil
}

// touch marks the session as needing a save on release
func (s *Session) touch() {
	s.dirty = true
}

// Flags returns the current flags; call while holding the lock
func (s *Session) Flags() models.GameFlags {
	return s.flags
}

// Channels returns the designated channels; call while holding the lock
func (s *Session) Channels() models.Channels {
	return s.channels
}

// SetFlags replaces the game flags
func (s *Session) SetFlags(ctx context.Context, g *Guard, flags models.GameFlags, actorID string) error {
	if err := s.check(g); err != nil {
		return err
	}
	if flags.PlayerActivityCutoff < 0 {
		return ErrInvalidCutoff
	}
	if flags == s.flags {
		return nil
	}

	old := s.flags
	s.flags = flags
	s.touch()
	s.record(ctx, models.LogKindComment, actorID, "changed game flags: abstain=%t change=%t multi=%t cutoff=%dh",
		flags.AllowVoteAbstain, flags.AllowVoteChange, flags.AllowVoteMulti, flags.PlayerActivityCutoff)

	// the abstain reaction is only offered while abstaining is allowed
	if old.AllowVoteAbstain != flags.AllowVoteAbstain {
		return s.Proposals.Refresh(ctx, g, s.Proposals.voting()...)
	}
	return nil
}

// SetChannel designates (or with an empty ID, unsets) one of the game channels.
// A new proposals or rules channel gets every message reposted into it.
func (s *Session) SetChannel(ctx context.Context, g *Guard, kind models.ChannelKind, channelID, actorID string) error {
	if err := s.check(g); err != nil {
		return err
	}
	if s.channels.Get(kind) == channelID {
		return nil
	}
	if !s.channels.Set(kind, channelID) {
		return ErrInvalidChannel
	}
	s.touch()

	if channelID == "" {
		s.record(ctx, models.LogKindComment, actorID, "unset the %s channel", kind)
	} else {
		s.record(ctx, models.LogKindComment, actorID, "set the %s channel to <#%s>", kind, channelID)
	}

	// messages in the previous channel are left behind
	switch kind {
	case models.ChannelProposals:
		s.Proposals.forgetMessages()
	case models.ChannelRules:
		s.Rules.forgetMessages()
	}

	if channelID == "" {
		return nil
	}
	switch kind {
	case models.ChannelProposals:
		if s.Proposals.Count() > 0 {
			return s.Proposals.Repost(ctx, g, 1)
		}
	case models.ChannelRules:
		return s.Rules.RepostAll(ctx, g)
	}
	return nil
}

// Comment records a free-text entry in the game log
func (s *Session) Comment(ctx context.Context, g *Guard, actorID, text string) error {
	if err := s.check(g); err != nil {
		return err
	}
	s.record(ctx, models.LogKindComment, actorID, "%s", text)
	return nil
}

// load replaces the in-memory state with a decoded document
func (s *Session) load(state *models.GameState) {
	state.Normalize()
	s.flags = state.Flags
	s.channels = state.Channels
	s.Activity.load(state.Activity)
	s.Proposals.load(state.Proposals)
	s.Quantities.load(state.Quantities)
	s.Rules.load(state.Rules)
	s.publish()
}

// export assembles a document from every component
func (s *Session) export() *models.GameState {
	return &models.GameState{
		GuildID:    s.guildID,
		Flags:      s.flags,
		Channels:   s.channels,
		Activity:   s.Activity.export(),
		Proposals:  s.Proposals.export(),
		Quantities: s.Quantities.export(),
		Rules:      s.Rules.export(),
	}
}

func (s *Session) publish() {
	s.snapshot.Store(s.export())
}

// save persists the state. A failed save is logged and the session stays
// dirty; the in-memory state remains authoritative.
func (s *Session) save(ctx context.Context) {
	err := s.repo.SaveGame(context.WithoutCancel(ctx), &gameRepo.SaveGameInput{
		GuildID: s.guildID,
		State:   s.export(),
	})
	if err != nil {
		log.Printf("Failed to save game for guild %s: %v", s.guildID, err)
		return
	}
	s.dirty = false
}

// record appends to the game log and echoes the line to the logs channel.
// Neither failure affects the change being logged.
func (s *Session) record(ctx context.Context, kind models.LogKind, actorID, format string, args ...any) {
	ctx = context.WithoutCancel(ctx)
	entry := &models.LogEntry{
		ID:        s.uuid.NewUUID(),
		GuildID:   s.guildID,
		Kind:      kind,
		ActorID:   actorID,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: s.clock.Now(),
	}

	if err := s.logs.AppendEntry(ctx, &gamelog.AppendEntryInput{Entry: entry}); err != nil {
		log.Printf("Failed to append %s log entry for guild %s: %v", kind, s.guildID, err)
	}

	if s.channels.Logs == "" {
		return
	}
	_, err := s.chat.SendMessage(ctx, &messaging.SendMessageInput{
		ChannelID: s.channels.Logs,
		Content:   messaging.Content{Text: logLine(entry)},
	})
	if err != nil {
		log.Printf("Failed to post log entry to channel %s: %v", s.channels.Logs, err)
	}
}
