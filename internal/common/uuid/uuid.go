package uuid

import "github.com/google/uuid"

// UUID generates identifiers for game log entries
//
//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/nomic/internal/common/uuid UUID
type UUID interface {
	NewUUID() string
}

// DefaultUUID implements the UUID interface using random (version 4) UUIDs
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new UUID
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}
