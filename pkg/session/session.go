package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Session is the server-side state behind a session cookie.
type Session struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	UserID       *string        `json:"user_id,omitempty"`
	Values       map[string]any `json:"values"`
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`

	dirty bool
	isNew bool
}

// New creates a session that is new and dirty.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user is attached to the session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// SetUserID attaches a user; an empty id detaches it.
func (s *Session) SetUserID(id string) {
	if id == "" {
		s.UserID = nil
	} else {
		s.UserID = &id
	}
	s.dirty = true
}

// SetValue stores val under key and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue returns the value stored under key.
func (s *Session) GetValue(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes key. The session only becomes dirty if key existed.
func (s *Session) DeleteValue(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Clear removes every value.
func (s *Session) Clear() {
	if len(s.Values) > 0 {
		s.Values = make(map[string]any)
		s.dirty = true
	}
}

func (s *Session) IsDirty() bool   { return s.dirty }
func (s *Session) MarkDirty()      { s.dirty = true }
func (s *Session) ClearDirty()     { s.dirty = false }
func (s *Session) IsNew() bool     { return s.isNew }
func (s *Session) ClearNew()       { s.isNew = false }
func (s *Session) IsExpired() bool { return time.Now().After(s.ExpiresAt) }

// Value returns the value under key as T. Values decoded from JSON
// (numbers as float64, objects as maps) are converted through JSON.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}
	if typed, ok := val.(T); ok {
		return typed, nil
	}

	data, err := json.Marshal(val)
	if err != nil {
		return zero, fmt.Errorf("%w: %q", ErrTypeMismatch, key)
	}
	var typed T
	if err := json.Unmarshal(data, &typed); err != nil {
		return zero, fmt.Errorf("%w: %q", ErrTypeMismatch, key)
	}
	return typed, nil
}

// ValueOr is Value with a fallback for missing or mistyped values.
func ValueOr[T any](s *Session, key string, def T) T {
	v, err := Value[T](s, key)
	if err != nil {
		return def
	}
	return v
}
