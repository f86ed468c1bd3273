package session

import (
	"context"
	"time"
)

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, s *Session) error

	// Get looks a session up by its cookie token. It returns ErrNotFound
	// or ErrExpired.
	Get(ctx context.Context, token string) (*Session, error)

	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every session of a user.
	DeleteByUserID(ctx context.Context, userID string) error

	// Touch updates LastActiveAt only.
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error
}
