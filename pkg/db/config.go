package db

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Supported database types.
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Config describes a database connection. All fields come from the
// environment.
type Config struct {
	// Type is "postgres" or "sqlite". Empty means no database.
	Type     string `env:"DB_TYPE"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Name     string `env:"DB_NAME"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PWD"`
	Charset  string `env:"DB_CHARSET" envDefault:"utf8"`
	Port     int    `env:"DB_PORT"`

	// URL replaces the discrete fields: a postgres:// URL or a sqlite DSN.
	URL string `env:"DATABASE_URL"`

	MigrationsTable string `env:"DB_MIGRATIONS_TABLE" envDefault:"schema_migrations"`

	// Queries keeps at most this many recorded statements per DB.
	MaxQueries int `env:"DB_MAX_QUERIES" envDefault:"100"`

	HealthCheckPeriod time.Duration `env:"DB_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	RetryAttempts     int           `env:"DB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval     time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"5s"`
	MaxOpenConns      int32         `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MinConns          int32         `env:"DB_MIN_CONNS" envDefault:"0"`
}

// Dialect returns the normalized database type: TypePostgres, TypeSQLite,
// empty when unset, or the lowercased value when it is not recognized.
func (c Config) Dialect() string {
	switch t := strings.ToLower(strings.TrimSpace(c.Type)); t {
	case TypePostgres, "postgresql", "pgsql":
		return TypePostgres
	case TypeSQLite, "sqlite3":
		return TypeSQLite
	default:
		return t
	}
}

// Key identifies the server the config points at, as "host:port".
func (c Config) Key() string {
	if c.Dialect() == TypeSQLite {
		return "sqlite:" + c.DSN()
	}
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err == nil && u.Host != "" {
			host, port := u.Hostname(), u.Port()
			if port == "" {
				port = "5432"
			}
			return host + ":" + port
		}
	}
	return c.Host + ":" + strconv.Itoa(c.port())
}

// DSN returns the connection string for the configured type.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Dialect() == TypeSQLite {
		return c.Name
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.port())),
		Path:   "/" + c.Name,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	if c.Charset != "" {
		q := url.Values{}
		q.Set("client_encoding", clientEncoding(c.Charset))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c Config) port() int {
	if c.Port > 0 {
		return c.Port
	}
	return 5432
}

// clientEncoding maps MySQL-style charset names to PostgreSQL ones.
func clientEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case "utf8", "utf8mb4", "utf-8":
		return "UTF8"
	case "latin1":
		return "LATIN1"
	default:
		return strings.ToUpper(charset)
	}
}
