package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
	"github.com/shopspring/decimal"
)

// MaxQuantityNameLength bounds quantity names and aliases
const MaxQuantityNameLength = 32

var quantityNamePattern = regexp.MustCompile(`^[a-z][0-9a-z\-_]*$`)

// QuantityStore holds the game's named currencies and every player's balances
type QuantityStore struct {
	session    *Session
	quantities map[string]*models.Quantity
}

// AddQuantityInput contains a new quantity
type AddQuantityInput struct {
	Name    string
	Aliases []string
	ActorID string
}

// TransactInput contains a change to one player's balance
type TransactInput struct {
	// Quantity is a name or alias
	Quantity string
	UserID   string
	Delta    decimal.Decimal
	Reason   string
	ActorID  string
}

// SetBalanceInput contains an absolute balance for one player
type SetBalanceInput struct {
	Quantity string
	UserID   string
	Value    decimal.Decimal
	ActorID  string
}

func (q *QuantityStore) load(quantities map[string]*models.Quantity) {
	q.quantities = make(map[string]*models.Quantity, len(quantities))
	for name, quantity := range quantities {
		q.quantities[name] = quantity.Clone()
	}
}

func (q *QuantityStore) export() map[string]*models.Quantity {
	out := make(map[string]*models.Quantity, len(q.quantities))
	for name, quantity := range q.quantities {
		out[name] = quantity.Clone()
	}
	return out
}

// Names lists the canonical quantity names in alphabetical order
func (q *QuantityStore) Names() []string {
	names := make([]string, 0, len(q.quantities))
	for name := range q.quantities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a copy of the quantity with the given name or alias
func (q *QuantityStore) Get(name string) (*models.Quantity, error) {
	quantity, err := q.lookup(name)
	if err != nil {
		return nil, err
	}
	return quantity.Clone(), nil
}

func (q *QuantityStore) lookup(name string) (*models.Quantity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if quantity, ok := q.quantities[name]; ok {
		return quantity, nil
	}
	for _, quantity := range q.quantities {
		if quantity.HasName(name) {
			return quantity, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrQuantityNotFound, name)
}

// checkName validates a name or alias. A name already belonging to owner
// does not count as a collision.
func (q *QuantityStore) checkName(name string, owner *models.Quantity) error {
	if len(name) > MaxQuantityNameLength || !quantityNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidQuantityName, name)
	}
	for _, quantity := range q.quantities {
		if quantity == owner {
			continue
		}
		if quantity.HasName(name) {
			return fmt.Errorf("%w: %q by %s", ErrNameInUse, name, quantity.Name)
		}
	}
	return nil
}

func normalizeNames(names []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Add creates a quantity with no balances
func (q *QuantityStore) Add(ctx context.Context, g *Guard, input *AddQuantityInput) (*models.Quantity, error) {
	if err := q.session.check(g); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	name := strings.ToLower(strings.TrimSpace(input.Name))
	aliases := normalizeNames(input.Aliases)
	if err := q.checkName(name, nil); err != nil {
		return nil, err
	}
	for _, alias := range aliases {
		if alias == name {
			return nil, fmt.Errorf("%w: %q is also the name", ErrNameInUse, alias)
		}
		if err := q.checkName(alias, nil); err != nil {
			return nil, err
		}
	}

	quantity := &models.Quantity{
		Name:     name,
		Aliases:  aliases,
		Balances: models.NewPlayerLedger[decimal.Decimal](),
	}
	q.quantities[name] = quantity
	q.session.touch()
	q.session.record(ctx, models.LogKindQuantity, input.ActorID, "created quantity %s", name)
	return quantity.Clone(), nil
}

// Remove deletes a quantity and every balance in it
func (q *QuantityStore) Remove(ctx context.Context, g *Guard, name, actorID string) error {
	if err := q.session.check(g); err != nil {
		return err
	}
	quantity, err := q.lookup(name)
	if err != nil {
		return err
	}

	delete(q.quantities, quantity.Name)
	q.session.touch()
	q.session.record(ctx, models.LogKindQuantity, actorID, "deleted quantity %s", quantity.Name)
	return nil
}

// Rename changes a quantity's canonical name. The new name may be one of
// the quantity's own aliases, which is then dropped from its alias list.
func (q *QuantityStore) Rename(ctx context.Context, g *Guard, name, newName, actorID string) error {
	if err := q.session.check(g); err != nil {
		return err
	}
	quantity, err := q.lookup(name)
	if err != nil {
		return err
	}
	newName = strings.ToLower(strings.TrimSpace(newName))
	if newName == quantity.Name {
		return nil
	}
	if err := q.checkName(newName, quantity); err != nil {
		return err
	}

	aliases := quantity.Aliases[:0]
	for _, alias := range quantity.Aliases {
		if alias != newName {
			aliases = append(aliases, alias)
		}
	}
	quantity.Aliases = aliases

	old := quantity.Name
	delete(q.quantities, old)
	quantity.Name = newName
	q.quantities[newName] = quantity
	q.session.touch()
	q.session.record(ctx, models.LogKindQuantity, actorID, "renamed quantity %s to %s", old, newName)
	return nil
}

// SetAliases replaces a quantity's aliases
func (q *QuantityStore) SetAliases(ctx context.Context, g *Guard, name string, aliases []string, actorID string) error {
	if err := q.session.check(g); err != nil {
		return err
	}
	quantity, err := q.lookup(name)
	if err != nil {
		return err
	}
	aliases = normalizeNames(aliases)
	for _, alias := range aliases {
		if alias == quantity.Name {
			return fmt.Errorf("%w: %q is also the name", ErrNameInUse, alias)
		}
		if err := q.checkName(alias, quantity); err != nil {
			return err
		}
	}

	quantity.Aliases = aliases
	q.session.touch()
	if len(aliases) == 0 {
		q.session.record(ctx, models.LogKindQuantity, actorID, "removed the aliases of %s", quantity.Name)
	} else {
		q.session.record(ctx, models.LogKindQuantity, actorID, "set the aliases of %s to %s", quantity.Name, strings.Join(aliases, ", "))
	}
	return nil
}

// Transact adds delta to a player's balance and returns the new balance.
// A balance that reaches exactly zero is removed from the ledger.
func (q *QuantityStore) Transact(ctx context.Context, g *Guard, input *TransactInput) (decimal.Decimal, error) {
	if err := q.session.check(g); err != nil {
		return decimal.Zero, err
	}
	if input == nil || input.UserID == "" {
		return decimal.Zero, errors.New("input and user ID cannot be empty")
	}
	quantity, err := q.lookup(input.Quantity)
	if err != nil {
		return decimal.Zero, err
	}

	balance := q.setBalance(quantity, input.UserID, quantity.Balance(input.UserID).Add(input.Delta))

	verb := "gave"
	amount := input.Delta
	if amount.IsNegative() {
		verb = "took"
		amount = amount.Neg()
	}
	line := fmt.Sprintf("%s %s %s <@%s> (now %s)", verb, FormatAmount(amount), quantity.Name, input.UserID, FormatAmount(balance))
	if input.Reason != "" {
		line += ": " + input.Reason
	}
	q.session.record(ctx, models.LogKindTransaction, input.ActorID, "%s", line)
	q.announce(ctx, input.ActorID, line)
	return balance, nil
}

// Set replaces a player's balance
func (q *QuantityStore) Set(ctx context.Context, g *Guard, input *SetBalanceInput) error {
	if err := q.session.check(g); err != nil {
		return err
	}
	if input == nil || input.UserID == "" {
		return errors.New("input and user ID cannot be empty")
	}
	quantity, err := q.lookup(input.Quantity)
	if err != nil {
		return err
	}

	q.setBalance(quantity, input.UserID, input.Value)
	line := fmt.Sprintf("set %s of <@%s> to %s", quantity.Name, input.UserID, FormatAmount(input.Value))
	q.session.record(ctx, models.LogKindTransaction, input.ActorID, "%s", line)
	q.announce(ctx, input.ActorID, line)
	return nil
}

// Reset clears every balance of a quantity
func (q *QuantityStore) Reset(ctx context.Context, g *Guard, name, actorID string) error {
	if err := q.session.check(g); err != nil {
		return err
	}
	quantity, err := q.lookup(name)
	if err != nil {
		return err
	}
	if len(quantity.Balances) == 0 {
		return nil
	}

	quantity.Balances = models.NewPlayerLedger[decimal.Decimal]()
	q.session.touch()
	line := fmt.Sprintf("reset every balance of %s", quantity.Name)
	q.session.record(ctx, models.LogKindQuantity, actorID, "%s", line)
	q.announce(ctx, actorID, line)
	return nil
}

func (q *QuantityStore) setBalance(quantity *models.Quantity, userID string, value decimal.Decimal) decimal.Decimal {
	if value.IsZero() {
		quantity.Balances.Delete(userID)
	} else {
		quantity.Balances.Set(userID, value)
	}
	q.session.touch()
	return value
}

// announce posts a line to the quantities channel; failures are only logged
func (q *QuantityStore) announce(ctx context.Context, actorID, line string) {
	channelID := q.session.channels.Quantities
	if channelID == "" {
		return
	}
	if actorID != "" {
		line = fmt.Sprintf("<@%s> %s", actorID, line)
	}
	_, err := q.session.chat.SendMessage(context.WithoutCancel(ctx), &messaging.SendMessageInput{
		ChannelID: channelID,
		Content:   messaging.Content{Text: line},
	})
	if err != nil {
		log.Printf("Failed to post to quantities channel %s: %v", channelID, err)
	}
}

// FormatAmount renders an amount without trailing zeros, so integral
// amounts have no decimal point
func FormatAmount(v decimal.Decimal) string {
	return v.String()
}

// ParseAmount reads an integer or decimal amount
func ParseAmount(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
