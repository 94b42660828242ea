package storage

import (
	"context"

	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

// SessionStore defines the durable persistence layer for the current login
// session. At most one profile is stored at a time; saving replaces any
// previous record.
type SessionStore interface {
	// SaveSession persists the given profile as the current session.
	SaveSession(ctx context.Context, farmer *model.Farmer) error

	// LoadSession returns the persisted profile, or (nil, nil) when no
	// session is stored or the stored record cannot be decoded. Corrupt
	// data reads as absence, never as an error.
	LoadSession(ctx context.Context) (*model.Farmer, error)

	// ClearSession removes the persisted session. Clearing an empty store
	// is a no-op.
	ClearSession(ctx context.Context) error

	// Close releases resources.
	Close() error
}
