package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kotori/pkg/cookie"
	"github.com/dmitrymomot/kotori/pkg/logger"
	"github.com/dmitrymomot/kotori/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "KOTORI_SESSID"
	defaultSessionMaxAge     = 3600
	defaultTouchInterval     = 5 * time.Minute
)

// SessionManager handles session lifecycle and the session cookie.
type SessionManager struct {
	store         session.Store
	logger        *slog.Logger
	signer        *cookie.Manager
	cookieName    string
	domain        string
	path          string
	maxAge        int
	touchInterval time.Duration
	sameSite      http.SameSite
	secure        bool
	httpOnly      bool
	signed        bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:         store,
		logger:        logger.NewNope(),
		cookieName:    defaultSessionCookieName,
		maxAge:        defaultSessionMaxAge,
		touchInterval: defaultTouchInterval,
		path:          "/",
		httpOnly:      true,
		sameSite:      http.SameSiteLaxMode,
	}

	for _, opt := range opts {
		opt(sm)
	}

	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

func WithSessionPath(path string) SessionOption {
	return func(sm *SessionManager) {
		if path != "" {
			sm.path = path
		}
	}
}

func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return func(sm *SessionManager) {
		sm.httpOnly = httpOnly
	}
}

func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(sm *SessionManager) {
		sm.sameSite = sameSite
	}
}

// WithSessionSigned signs the session cookie with the app's cookie secret.
// It has no effect when the cookie manager has no secret.
func WithSessionSigned(signed bool) SessionOption {
	return func(sm *SessionManager) {
		sm.signed = signed
	}
}

// WithSessionTouchInterval sets how stale LastActiveAt may get before a
// loaded session is touched in the store. Zero disables touching.
func WithSessionTouchInterval(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		sm.touchInterval = max(d, 0)
	}
}

// bind injects app-level dependencies. Called by App after options ran.
func (sm *SessionManager) bind(l *slog.Logger, signer *cookie.Manager) {
	if l != nil {
		sm.logger = l
	}
	sm.signer = signer
}

// LoadSession loads the session named by the request cookie.
// Returns nil, nil when there is no cookie.
// Returns session.ErrInvalidToken when the cookie signature does not verify.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(sm.cookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	token, err := sm.decodeToken(c.Value)
	if err != nil {
		return nil, err
	}

	sess, err := sm.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if sm.touchInterval > 0 && time.Since(sess.LastActiveAt) > sm.touchInterval {
		now := time.Now()
		if err := sm.store.Touch(ctx, sess.ID, now); err != nil {
			sm.logger.WarnContext(ctx, "failed to touch session", slog.String("session_id", sess.ID), slog.Any("error", err))
		} else {
			sess.LastActiveAt = now
		}
	}
	return sess, nil
}

// CreateSession creates and stores a new session for the request.
func (sm *SessionManager) CreateSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	sess := session.New(uuid.NewString(), token, time.Now().Add(sm.lifetime()))
	sess.IP = remoteIP(r)
	sess.UserAgent = r.UserAgent()

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.ClearNew()
	sess.ClearDirty()
	return sess, nil
}

// SaveSession writes the session cookie to the response.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, sess *session.Session) {
	value := sess.Token
	if sm.signing() {
		if signed, err := sm.signer.Sign(sm.cookieName, sess.Token); err == nil {
			value = signed
		}
	}
	http.SetCookie(w, sm.cookie(value, sm.maxAge))
}

// RotateToken issues a new token for the session and persists it. The
// previous token stops resolving.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return err
	}
	sess.Token = newToken
	sess.ExpiresAt = time.Now().Add(sm.lifetime())
	sess.MarkDirty()

	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	sess.ClearDirty()
	return nil
}

// Flush persists a dirty session.
func (sm *SessionManager) Flush(ctx context.Context, sess *session.Session) error {
	if sess == nil || !sess.IsDirty() {
		return nil
	}
	if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// DeleteSession clears the session cookie.
func (sm *SessionManager) DeleteSession(w http.ResponseWriter) {
	http.SetCookie(w, sm.cookie("", -1))
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// CookieName returns the name of the session cookie.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) decodeToken(value string) (string, error) {
	if !sm.signing() {
		return value, nil
	}
	token, err := sm.signer.Verify(sm.cookieName, value)
	if err != nil {
		return "", errors.Join(session.ErrInvalidToken, err)
	}
	return token, nil
}

func (sm *SessionManager) signing() bool {
	return sm.signed && sm.signer != nil && sm.signer.HasSecret()
}

func (sm *SessionManager) lifetime() time.Duration {
	return time.Duration(sm.maxAge) * time.Second
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     sm.path,
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	}
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// remoteIP returns the peer address without port.
func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
