package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/cookie"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/logger"
	"github.com/dmitrymomot/kotori/pkg/redis"
)

var (
	ErrParse           = errors.New("config: failed to parse environment")
	ErrInvalidTimeZone = errors.New("config: invalid time zone")
	ErrInvalidURLMode  = errors.New("config: invalid url mode")
)

// URL modes accepted by App.URLMode.
const (
	URLModePathInfo    = "path_info"
	URLModeQueryString = "query_string"
)

// App holds framework settings.
type App struct {
	Name            string        `env:"APP_NAME" envDefault:"kotori"`
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	Debug           bool          `env:"APP_DEBUG"`
	URLMode         string        `env:"URL_MODE" envDefault:"path_info"`
	RouteParam      string        `env:"ROUTE_PARAM" envDefault:"_route"`
	RoutesFile      string        `env:"ROUTES_FILE"`
	ErrorTemplate   string        `env:"ERROR_TEMPLATE"`
	TimeZone        string        `env:"TIME_ZONE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Session holds session cookie and storage settings.
type Session struct {
	Enabled    bool          `env:"SESSION_ENABLED" envDefault:"true"`
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"KOTORI_SESSID"`
	Prefix     string        `env:"SESSION_PREFIX" envDefault:"session:"`
	Expire     time.Duration `env:"SESSION_EXPIRE" envDefault:"1h"`
	Signed     bool          `env:"SESSION_SIGNED"`
}

// Config is the full application configuration.
type Config struct {
	App     App
	Log     logger.Config
	Cache   cache.Config
	DB      db.Config
	Redis   redis.Config
	Cookie  cookie.Config
	Session Session
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads the configuration from vars instead of the process
// environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the env parser cannot.
func (c *Config) Validate() error {
	switch strings.ToLower(c.App.URLMode) {
	case URLModePathInfo, URLModeQueryString:
		c.App.URLMode = strings.ToLower(c.App.URLMode)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidURLMode, c.App.URLMode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves App.TimeZone. An empty zone means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.App.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %q", ErrInvalidTimeZone, c.App.TimeZone), err)
	}
	return loc, nil
}

// ApplyTimeZone sets time.Local to the configured zone and returns it.
func (c *Config) ApplyTimeZone() (*time.Location, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	time.Local = loc
	return loc, nil
}
