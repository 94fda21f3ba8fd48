package game

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/KirkDiggler/nomic/internal/common/clock"
	"github.com/KirkDiggler/nomic/internal/common/uuid"
	gameRepo "github.com/KirkDiggler/nomic/internal/repositories/game"
	"github.com/KirkDiggler/nomic/internal/repositories/gamelog"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
)

// Config holds the collaborators shared by every session
type Config struct {
	GameRepository    gameRepo.Repository
	GameLogRepository gamelog.Repository
	Messaging         messaging.Service
	Clock             clock.Clock
	UUID              uuid.UUID
}

// Manager owns the one Session per guild. Sessions are created and loaded
// on first use and live until the guild is evicted.
type Manager struct {
	cfg *Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameRepository == nil {
		return nil, ErrNilGameRepo
	}
	if cfg.GameLogRepository == nil {
		return nil, ErrNilGameLogRepo
	}
	if cfg.Messaging == nil {
		return nil, ErrNilMessaging
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUID == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}, nil
}

// GetOrCreate returns the guild's session, loading it from storage the first time
func (m *Manager) GetOrCreate(ctx context.Context, guildID string) (*Session, error) {
	if guildID == "" {
		return nil, ErrEmptyGuildID
	}

	m.mu.RLock()
	s, ok := m.sessions[guildID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another caller may have loaded it while we waited
	if s, ok := m.sessions[guildID]; ok {
		return s, nil
	}

	out, err := m.cfg.GameRepository.LoadGame(ctx, &gameRepo.LoadGameInput{GuildID: guildID})
	if err != nil {
		return nil, fmt.Errorf("failed to load game for guild %s: %w", guildID, err)
	}
	if out.Recovered {
		log.Printf("Game for guild %s was unreadable; backed up to %s and started fresh", guildID, out.BackupKey)
	}

	s = newSession(guildID, m.cfg)
	s.load(out.State)
	m.sessions[guildID] = s
	return s, nil
}

// Evict forgets a guild's session. Anyone still holding its lock finishes
// normally; the next GetOrCreate loads a fresh session from storage.
func (m *Manager) Evict(guildID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[guildID]; !ok {
		return false
	}
	delete(m.sessions, guildID)
	return true
}

// GuildIDs lists the guilds with a live session
func (m *Manager) GuildIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
