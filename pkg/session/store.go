// Package session holds the single source of truth for who is logged in,
// backed by durable storage so identity survives a restart.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Mohanapavani03/agriconnect/pkg/model"
	"github.com/Mohanapavani03/agriconnect/pkg/storage"
)

// Store tracks the current authenticated profile. It is an explicit object
// constructed once at startup and passed by handle, never a hidden global.
// At most one profile is current at a time.
type Store struct {
	verifier Verifier
	persist  storage.SessionStore
	logger   *slog.Logger

	mu      sync.Mutex
	current *model.Farmer
}

// NewStore creates a session store with the given verifier and persistence.
func NewStore(verifier Verifier, persist storage.SessionStore, logger *slog.Logger) *Store {
	return &Store{verifier: verifier, persist: persist, logger: logger}
}

// Login verifies the (phone, code) pair, marks the matched profile
// authenticated, sets it current, and persists it. On any failure the current
// profile is left unchanged and nothing is written.
func (s *Store) Login(ctx context.Context, phone, code string) (*model.Farmer, error) {
	farmer, err := s.verifier.Verify(ctx, phone, code)
	if err != nil {
		s.logger.Warn("login failed", "phone", phone, "error", err)
		return nil, err
	}

	authenticated := farmer.Clone()
	authenticated.Authenticated = true

	if err := s.persist.SaveSession(ctx, &authenticated); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &authenticated
	s.mu.Unlock()

	s.logger.Info("login succeeded", "farmer_id", authenticated.ID, "district", authenticated.District.En)
	result := authenticated.Clone()
	return &result, nil
}

// Logout clears the current profile and removes the persisted copy.
// Idempotent: logging out while logged out is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.persist.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Restore loads a previously persisted session on process start. The stored
// authentication flag is trusted as-is. Absent or malformed data reads as
// "no session" and is never surfaced as an error to the caller.
func (s *Store) Restore(ctx context.Context) {
	farmer, err := s.persist.LoadSession(ctx)
	if err != nil {
		s.logger.Warn("session restore failed, starting logged out", "error", err)
		return
	}
	if farmer == nil {
		return
	}

	s.mu.Lock()
	s.current = farmer
	s.mu.Unlock()
	s.logger.Info("session restored", "farmer_id", farmer.ID)
}

// ProfileUpdate selects which profile fields to change. Nil fields are left
// untouched; the authentication flag can never be changed through an update.
type ProfileUpdate struct {
	Name        *model.Text
	District    *model.Text
	Language    *model.Language
	Fields      *[]model.Field
	Preferences *model.Preferences
}

// UpdateProfile applies a shallow merge of the update onto the current
// profile and re-persists it. A no-op when nobody is logged in.
func (s *Store) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	merged := s.current.Clone()
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.District != nil {
		merged.District = *update.District
	}
	if update.Language != nil {
		merged.Language = *update.Language
	}
	if update.Fields != nil {
		merged.Fields = *update.Fields
	}
	if update.Preferences != nil {
		merged.Preferences = *update.Preferences
	}

	if err := s.persist.SaveSession(ctx, &merged); err != nil {
		return fmt.Errorf("persist profile update: %w", err)
	}
	s.current = &merged
	return nil
}

// Current returns a copy of the logged-in profile, or nil when logged out.
func (s *Store) Current() *model.Farmer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	copy := s.current.Clone()
	return &copy
}
