package models

import "github.com/shopspring/decimal"

func init() {
	// balances are stored as JSON numbers: integers stay integers, decimals stay exact
	decimal.MarshalJSONWithoutQuotes = true
}

// Quantity is a named per-player numeric ledger, such as points or gold
type Quantity struct {
	// Name is the canonical lowercase name
	Name string `json:"name" yaml:"name"`

	// Aliases are alternative names sharing the name namespace
	Aliases []string `json:"aliases" yaml:"aliases"`

	// Balances maps player ID to a non-zero balance; zero balances are absent
	Balances PlayerLedger[decimal.Decimal] `json:"players" yaml:"players"`
}

// Balance returns the player's balance, zero if absent
func (q *Quantity) Balance(userID string) decimal.Decimal {
	return q.Balances.GetOr(userID, decimal.Zero)
}

// HasName reports whether name is the quantity's name or one of its aliases
func (q *Quantity) HasName(name string) bool {
	if q.Name == name {
		return true
	}
	for _, a := range q.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (q *Quantity) Clone() *Quantity {
	if q == nil {
		return nil
	}
	out := *q
	out.Aliases = append([]string{}, q.Aliases...)
	out.Balances = q.Balances.Clone()
	return &out
}
