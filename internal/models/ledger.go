package models

import (
	"sort"
)

// PlayerLedger maps a Discord user ID to a value owned by that player.
//
// Quantity balances, vote weights and activity timestamps are all stored as
// ledgers so that they serialize the same way: a JSON object keyed by user ID.
type PlayerLedger[V any] map[string]V

// NewPlayerLedger creates an empty ledger
func NewPlayerLedger[V any]() PlayerLedger[V] {
	return make(PlayerLedger[V])
}

// Get returns the value recorded for a player and whether one exists
func (l PlayerLedger[V]) Get(userID string) (V, bool) {
	v, ok := l[userID]
	return v, ok
}

// GetOr returns the value recorded for a player or fallback if there is none
func (l PlayerLedger[V]) GetOr(userID string, fallback V) V {
	if v, ok := l[userID]; ok {
		return v
	}
	return fallback
}

// Has reports whether the player has an entry
func (l PlayerLedger[V]) Has(userID string) bool {
	_, ok := l[userID]
	return ok
}

// Set records a value for a player
func (l PlayerLedger[V]) Set(userID string, value V) {
	l[userID] = value
}

// Delete removes the player's entry, if any
func (l PlayerLedger[V]) Delete(userID string) {
	delete(l, userID)
}

// SortedKeys returns the user IDs in snowflake order.
// Snowflakes are decimal strings, so shorter strings sort first.
func (l PlayerLedger[V]) SortedKeys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Clone returns a shallow copy of the ledger; values are copied by assignment
func (l PlayerLedger[V]) Clone() PlayerLedger[V] {
	out := make(PlayerLedger[V], len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
