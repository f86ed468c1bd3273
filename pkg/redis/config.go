package redis

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config describes a Redis connection. URL wins over the discrete fields.
type Config struct {
	URL           string        `env:"REDIS_URL"`
	Host          string        `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	Password      string        `env:"REDIS_PASSWORD"`
	Port          int           `env:"REDIS_PORT" envDefault:"6379"`
	Database      int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	Timeout       time.Duration `env:"REDIS_TIMEOUT" envDefault:"3s"`
}

// ConnectionURL returns URL or builds a redis:// URL from the discrete
// fields.
func (c Config) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 6379
	}
	u := url.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.Database),
	}
	if c.Password != "" {
		u.User = url.UserPassword("", c.Password)
	}
	return u.String()
}

// Options converts the pool, retry and timeout settings to Open options.
// Zero values keep the defaults.
func (c Config) Options() []Option {
	var opts []Option
	if c.PoolSize > 0 {
		opts = append(opts, WithPoolSize(c.PoolSize))
	}
	if c.MinIdleConns > 0 {
		opts = append(opts, WithMinIdleConns(c.MinIdleConns))
	}
	if c.RetryAttempts > 0 {
		opts = append(opts, WithRetry(c.RetryAttempts, c.RetryInterval))
	}
	if c.Timeout > 0 {
		opts = append(opts, WithReadTimeout(c.Timeout), WithWriteTimeout(c.Timeout))
	}
	return opts
}
