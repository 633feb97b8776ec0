// Package session keeps the signed-in operator's session: one row,
// loaded at start, replaced on sign-in, cleared on sign-out.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Store is the repository-backed SessionStore implementation. Reads
// are served from memory; the repository row is the restart snapshot.
type Store struct {
	repo   domain.Repository
	logger *slog.Logger

	mu      sync.RWMutex
	current *domain.Session
}

var _ domain.SessionStore = (*Store)(nil)

// NewStore creates a session store. Call Load before serving.
func NewStore(repo domain.Repository, logger *slog.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger.With("component", "session"),
	}
}

// Load restores the persisted session. A missing row means signed out
// and is not an error.
func (s *Store) Load(ctx context.Context) error {
	sess, err := s.repo.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	if sess != nil {
		s.logger.Info("session restored", "user", sess.Email, "role", sess.Role)
	}
	return nil
}

// SignIn replaces the current session wholesale and persists it.
func (s *Store) SignIn(ctx context.Context, name, email, role string) (*domain.Session, error) {
	sess := &domain.Session{
		UserID:     uuid.New().String(),
		Name:       name,
		Email:      email,
		Role:       role,
		SignedInAt: time.Now().UTC(),
	}

	if err := s.repo.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.logger.Info("operator signed in", "user", email, "role", role)

	out := *sess
	return &out, nil
}

// SignOut clears the session in memory and in the repository.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.repo.ClearSession(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.logger.Info("operator signed out")
	return nil
}

// Current returns a copy of the active session, or nil when signed
// out. Callers may hold the copy freely; it never mutates.
func (s *Store) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}
