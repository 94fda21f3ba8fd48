package game

import (
	"sort"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
)

// ActivityTracker remembers when each player was last seen
type ActivityTracker struct {
	session  *Session
	lastSeen models.PlayerLedger[int64]
}

// PlayerActivity describes one player's standing
type PlayerActivity struct {
	UserID   string
	LastSeen time.Time
	Since    time.Duration
	Active   bool
}

func (a *ActivityTracker) load(ledger models.PlayerLedger[int64]) {
	a.lastSeen = ledger.Clone()
}

func (a *ActivityTracker) export() models.PlayerLedger[int64] {
	return a.lastSeen.Clone()
}

// RecordActivity marks the player as seen now. Callers debounce with
// TimeSinceLast so that not every chat message causes a save.
func (a *ActivityTracker) RecordActivity(g *Guard, userID string) error {
	if err := a.session.check(g); err != nil {
		return err
	}
	a.lastSeen.Set(userID, a.session.clock.Now().Unix())
	a.session.touch()
	return nil
}

// TimeSinceLast returns how long ago the player was seen, and false if never
func (a *ActivityTracker) TimeSinceLast(userID string) (time.Duration, bool) {
	return SinceLastActivity(a.lastSeen, userID, a.session.clock.Now())
}

// IsActive reports whether the player was seen within the activity cutoff
func (a *ActivityTracker) IsActive(userID string) bool {
	since, ok := a.TimeSinceLast(userID)
	return ok && withinCutoff(since, a.session.flags.PlayerActivityCutoff)
}

// ActivePlayers lists the active players, most recently seen first
func (a *ActivityTracker) ActivePlayers() []string {
	return a.players(true)
}

// InactivePlayers lists the players seen at least once but not recently
func (a *ActivityTracker) InactivePlayers() []string {
	return a.players(false)
}

func (a *ActivityTracker) players(active bool) []string {
	out := []string{}
	for _, p := range ActivityReport(a.lastSeen, a.session.clock.Now(), a.session.flags.PlayerActivityCutoff) {
		if p.Active == active {
			out = append(out, p.UserID)
		}
	}
	return out
}

// SinceLastActivity computes time since a player's last activity from a
// ledger of unix seconds; it is safe to use on a Snapshot
func SinceLastActivity(ledger models.PlayerLedger[int64], userID string, now time.Time) (time.Duration, bool) {
	last, ok := ledger.Get(userID)
	if !ok {
		return 0, false
	}
	return now.Sub(time.Unix(last, 0)), true
}

// ActivityReport classifies every recorded player, most recently seen first
func ActivityReport(ledger models.PlayerLedger[int64], now time.Time, cutoffHours int) []PlayerActivity {
	out := make([]PlayerActivity, 0, len(ledger))
	for _, userID := range ledger.SortedKeys() {
		last := time.Unix(ledger[userID], 0)
		since := now.Sub(last)
		out = append(out, PlayerActivity{
			UserID:   userID,
			LastSeen: last,
			Since:    since,
			Active:   withinCutoff(since, cutoffHours),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out
}

func withinCutoff(since time.Duration, cutoffHours int) bool {
	return since <= time.Duration(cutoffHours)*time.Hour
}
