package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v4/stdlib" // Register Postgres driver
	_ "github.com/mattn/go-sqlite3"    // Register SQLite driver

	"github.com/sqlbridge/sqltool-mcp/internal/logger"
)

// Dialect identifies the database engine a provider targets. The names
// match the usual connection URL schemes.
type Dialect string

const (
	DialectPostgres Dialect = "postgresql"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// ConnectionError wraps any failure to reach or authenticate against the
// configured database.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "database connection: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Provider turns the configured connection URL into fresh database handles.
// Every Acquire is independent: each tool invocation opens its own handle
// and closes it on exit, so providers are safe to share across callers.
type Provider struct {
	dialect Dialect
	driver  string
	dsn     string
}

// NewProvider detects the dialect from the connection URL and prepares a
// driver-specific DSN. Supported forms: postgres:// and postgresql:// URLs,
// mysql:// URLs or go-sql-driver DSNs, and SQLite file paths (optionally
// with a sqlite:// or file: prefix).
func NewProvider(rawURL string) (*Provider, error) {
	lower := strings.ToLower(rawURL)

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return &Provider{dialect: DialectPostgres, driver: "pgx", dsn: rawURL}, nil

	case strings.HasPrefix(lower, "mysql://"):
		dsn, err := mysqlURLToDSN(rawURL)
		if err != nil {
			return nil, &ConnectionError{Err: err}
		}
		return &Provider{dialect: DialectMySQL, driver: "mysql", dsn: dsn}, nil

	// A bare "@" is not enough to call something a MySQL DSN: file paths
	// may contain it. Require the DSN's network segment.
	case strings.Contains(rawURL, "@tcp("), strings.Contains(rawURL, "@unix("):
		cfg, err := mysql.ParseDSN(rawURL)
		if err != nil {
			return nil, &ConnectionError{Err: err}
		}
		cfg.ParseTime = true
		return &Provider{dialect: DialectMySQL, driver: "mysql", dsn: cfg.FormatDSN()}, nil

	default:
		path := rawURL
		for _, prefix := range []string{"sqlite://", "sqlite:"} {
			if strings.HasPrefix(lower, prefix) {
				path = rawURL[len(prefix):]
				break
			}
		}
		return &Provider{dialect: DialectSQLite, driver: "sqlite3", dsn: path}, nil
	}
}

func (p *Provider) Dialect() Dialect {
	return p.dialect
}

// Session-level read-only hints. Advisory: the executor's statement check
// remains the actual safety boundary.
var readOnlyHints = map[Dialect]string{
	DialectPostgres: "SET default_transaction_read_only = on",
	DialectMySQL:    "SET SESSION transaction_read_only = 1",
}

// Acquire opens a fresh handle. database/sql runs in autocommit: each
// statement takes effect immediately and no transactions are opened
// anywhere in this package's callers.
func (p *Provider) Acquire(ctx context.Context, readOnly bool) (*sqlx.DB, error) {
	db, err := sqlx.Open(p.driver, p.dsn)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	// Single connection so the session read-only hint covers every
	// statement run through this handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Err: err}
	}

	if readOnly {
		if hint, ok := readOnlyHints[p.dialect]; ok {
			if _, err := db.ExecContext(ctx, hint); err != nil {
				logger.Debug("read-only hint not applied", "dialect", string(p.dialect), "error", err.Error())
			}
		}
	}

	return db, nil
}

func mysqlURLToDSN(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	cfg := mysql.NewConfig()
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true

	params := u.Query()
	for key := range params {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[key] = params.Get(key)
	}

	return cfg.FormatDSN(), nil
}
