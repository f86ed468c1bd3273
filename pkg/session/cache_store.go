package session

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/kotori/pkg/cache"
)

// Defaults for CacheStore.
const (
	DefaultPrefix = "session:"
	DefaultExpire = 3600 * time.Second
)

// CacheStoreOption configures a CacheStore.
type CacheStoreOption func(*CacheStore)

// WithPrefix sets the key prefix. Default "session:".
func WithPrefix(prefix string) CacheStoreOption {
	return func(s *CacheStore) {
		s.prefix = prefix
	}
}

// WithExpire sets the lifetime of raw entries written with Write and the
// fallback lifetime of sessions without ExpiresAt. Default 1h.
func WithExpire(d time.Duration) CacheStoreOption {
	return func(s *CacheStore) {
		if d > 0 {
			s.expire = d
		}
	}
}

// CacheStore keeps sessions in a cache adapter. Entries expire in the
// backend, so no garbage collection is needed.
//
// Key layout under the prefix:
//
//	token:{token} session JSON
//	id:{id}       current token of the session
//	user:{id}     JSON list of the user's session ids
//	{id}          raw data written with Write
type CacheStore struct {
	cache  cache.Cache[[]byte]
	prefix string
	expire time.Duration
	mu     sync.Mutex
}

// NewCacheStore creates a store over c, typically a *cache.Store.
func NewCacheStore(c cache.Cache[[]byte], opts ...CacheStoreOption) *CacheStore {
	s := &CacheStore{
		cache:  c,
		prefix: DefaultPrefix,
		expire: DefaultExpire,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CacheStore) Create(ctx context.Context, sess *Session) error {
	return s.save(ctx, sess, "")
}

func (s *CacheStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	sess, err := cache.GetJSON[*Session](ctx, s.cache, s.key("token:", token))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, sess.ID)
		return nil, ErrExpired
	}
	return sess, nil
}

// Update saves sess. A rotated token replaces the previous one.
func (s *CacheStore) Update(ctx context.Context, sess *Session) error {
	old, err := s.tokenOf(ctx, sess.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.save(ctx, sess, old)
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	token, err := s.tokenOf(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.Join(
		s.cache.Delete(ctx, s.key("token:", token)),
		s.cache.Delete(ctx, s.key("id:", id)),
	)
}

func (s *CacheStore) DeleteByUserID(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.userSessions(ctx, userID)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		errs = append(errs, s.Delete(ctx, id))
	}
	errs = append(errs, s.cache.Delete(ctx, s.key("user:", userID)))
	return errors.Join(errs...)
}

func (s *CacheStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	token, err := s.tokenOf(ctx, id)
	if err != nil {
		return err
	}
	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	sess.LastActiveAt = lastActiveAt
	return s.save(ctx, sess, token)
}

// Read returns raw data stored with Write, or an empty slice.
func (s *CacheStore) Read(ctx context.Context, id string) ([]byte, error) {
	data, err := s.cache.Get(ctx, s.key("", id))
	if errors.Is(err, cache.ErrNotFound) {
		return []byte{}, nil
	}
	return data, err
}

// Write stores raw data under id for the configured lifetime.
func (s *CacheStore) Write(ctx context.Context, id string, data []byte) error {
	return s.cache.Set(ctx, s.key("", id), data, s.expire)
}

// Destroy removes raw data stored under id.
func (s *CacheStore) Destroy(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, s.key("", id))
}

// GC does nothing; the cache expires entries itself.
func (s *CacheStore) GC(context.Context, time.Duration) error {
	return nil
}

func (s *CacheStore) save(ctx context.Context, sess *Session, oldToken string) error {
	ttl := s.expire
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			return ErrExpired
		}
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	if err := s.cache.Set(ctx, s.key("token:", sess.Token), data, ttl); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, s.key("id:", sess.ID), []byte(sess.Token), ttl); err != nil {
		return err
	}
	if oldToken != "" && oldToken != sess.Token {
		if err := s.cache.Delete(ctx, s.key("token:", oldToken)); err != nil {
			return err
		}
	}
	if sess.IsAuthenticated() {
		return s.index(ctx, *sess.UserID, sess.ID, ttl)
	}
	return nil
}

func (s *CacheStore) index(ctx context.Context, userID, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.userSessions(ctx, userID)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	return cache.SetJSON(ctx, s.cache, s.key("user:", userID), append(ids, id), ttl)
}

func (s *CacheStore) userSessions(ctx context.Context, userID string) ([]string, error) {
	ids, err := cache.GetJSON[[]string](ctx, s.cache, s.key("user:", userID))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	return ids, err
}

func (s *CacheStore) tokenOf(ctx context.Context, id string) (string, error) {
	data, err := s.cache.Get(ctx, s.key("id:", id))
	if errors.Is(err, cache.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *CacheStore) key(kind, id string) string {
	return s.prefix + kind + id
}

var _ Store = (*CacheStore)(nil)
