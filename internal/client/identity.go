package client

import (
	"context"
	"encoding/json"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Identity describes the live connection target. It is computed once at
// startup, embedded into every tool description, and never mutated.
type Identity struct {
	Dialect  string `json:"dialect"`
	Version  []int  `json:"version"`
	Database string `json:"database"`
	Host     string `json:"host,omitempty"`
	User     string `json:"user,omitempty"`
}

// String renders the identity as compact JSON for descriptor text.
func (id Identity) String() string {
	b, err := json.Marshal(id)
	if err != nil {
		return id.Dialect
	}
	return string(b)
}

var versionQueries = map[Dialect]string{
	DialectPostgres: "SHOW server_version",
	DialectMySQL:    "SELECT VERSION()",
	DialectSQLite:   "SELECT sqlite_version()",
}

// FetchIdentity connects read-only and resolves the server version plus the
// database, host, and user from the configured URL.
func (p *Provider) FetchIdentity(ctx context.Context) (Identity, error) {
	db, err := p.Acquire(ctx, true)
	if err != nil {
		return Identity{}, err
	}
	defer db.Close()

	var raw string
	if err := db.QueryRowContext(ctx, versionQueries[p.dialect]).Scan(&raw); err != nil {
		return Identity{}, &ConnectionError{Err: err}
	}

	id := Identity{
		Dialect: string(p.dialect),
		Version: parseVersion(raw),
	}

	switch p.dialect {
	case DialectMySQL:
		cfg, err := mysql.ParseDSN(p.dsn)
		if err == nil {
			id.Database = cfg.DBName
			id.User = cfg.User
			if host, _, splitErr := net.SplitHostPort(cfg.Addr); splitErr == nil {
				id.Host = host
			} else {
				id.Host = cfg.Addr
			}
		}
	case DialectSQLite:
		id.Database = p.dsn
	default:
		if u, err := url.Parse(p.dsn); err == nil {
			id.Database = strings.TrimPrefix(u.Path, "/")
			id.Host = u.Hostname()
			id.User = u.User.Username()
		}
	}

	return id, nil
}

// parseVersion extracts the leading numeric tuple from a server version
// string, e.g. "8.0.33-log" -> [8, 0, 33] and "15.4 (Debian)" -> [15, 4].
func parseVersion(raw string) []int {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return []int{}
	}

	out := []int{}
	for _, part := range strings.Split(fields[0], ".") {
		i := 0
		for i < len(part) && part[i] >= '0' && part[i] <= '9' {
			i++
		}
		if i == 0 {
			break
		}
		n, err := strconv.Atoi(part[:i])
		if err != nil {
			break
		}
		out = append(out, n)
	}
	return out
}
