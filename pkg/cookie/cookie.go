package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

const flashPrefix = "flash_"

// Config holds cookie defaults read from the environment.
type Config struct {
	Secret   string `env:"COOKIE_SECRET"`
	Domain   string `env:"COOKIE_DOMAIN"`
	Path     string `env:"COOKIE_PATH" envDefault:"/"`
	Secure   bool   `env:"COOKIE_SECURE"`
	HTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
}

// Manager reads and writes cookies with shared attributes. Signed cookies
// need a secret of at least MinSecretLength bytes.
type Manager struct {
	secret   []byte
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFromConfig creates a Manager from cfg. A non-empty secret shorter than
// MinSecretLength yields ErrBadSecret.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	if cfg.Secret != "" && len(cfg.Secret) < MinSecretLength {
		return nil, ErrBadSecret
	}
	base := []Option{
		WithSecret(cfg.Secret),
		WithDomain(cfg.Domain),
		WithPath(cfg.Path),
		WithSecure(cfg.Secure),
		WithHTTPOnly(cfg.HTTPOnly),
	}
	return New(append(base, opts...)...), nil
}

// WithSecret sets the signing secret. Secrets shorter than MinSecretLength
// are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= MinSecretLength {
			m.secret = []byte(secret)
		}
	}
}

func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// HasSecret reports whether signed cookies are available.
func (m *Manager) HasSecret() bool {
	return m.secret != nil
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie. maxAge 0 makes a session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// GetSigned returns a cookie value written by SetSigned under the same name.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Verify(name, raw)
}

// SetSigned sets a cookie whose value is authenticated with HMAC-SHA256.
// The signature covers the cookie name, so a value cannot be replayed under
// another name.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	signed, err := m.Sign(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(name, signed, maxAge))
	return nil
}

// Sign encodes value as base64(value).base64(mac).
func (m *Manager) Sign(name, value string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(m.mac(name, []byte(value))), nil
}

// Verify checks a value produced by Sign and returns the payload.
func (m *Manager) Verify(name, signed string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	enc, encSig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.mac(name, value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// Flash reads a one-time JSON value into dest and deletes the cookie.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key
	raw, err := m.GetSigned(r, name)
	if err != nil {
		return err
	}
	m.Delete(w, name)
	return json.Unmarshal([]byte(raw), dest)
}

// SetFlash stores a one-time JSON value for the next request.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	if m.secret == nil {
		return ErrNoSecret
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.SetSigned(w, flashPrefix+key, string(data), 0)
}

func (m *Manager) mac(name string, value []byte) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(value)
	return h.Sum(nil)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
