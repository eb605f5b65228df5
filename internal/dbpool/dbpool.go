// Package dbpool opens and validates the source database connection from
// a database URL. The URL scheme selects the driver: postgres:// URLs are
// passed to lib/pq as-is, mysql:// URLs are translated to the
// go-sql-driver DSN format.
package dbpool

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/zerodha/tableport/models"
)

// Config is a DB's config for connecting.
type Config struct {
	URL            string        `koanf:"url"`
	MaxIdleConns   int           `koanf:"max_idle"`
	MaxActiveConns int           `koanf:"max_active"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// NewConn creates and returns a database connection along with the
// backend identity derived from the URL scheme.
func NewConn(cfg Config) (*sql.DB, models.Backend, error) {
	driver, dsn, backend, err := parseURL(cfg.URL)
	if err != nil {
		return nil, 0, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, 0, fmt.Errorf("error connecting to db: %v", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxActiveConns)

	// Ping database to check for connection issues.
	ctx := context.Background()
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("error pinging db: %v", err)
	}

	return db, backend, nil
}

// parseURL maps the URL scheme to a registered driver and its DSN form.
// An unrecognized scheme is a fatal configuration error.
func parseURL(raw string) (driver, dsn string, backend models.Backend, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid database url: %v", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		// lib/pq accepts the URL form directly.
		return "postgres", raw, models.Postgres, nil
	case "mysql":
		dsn, err := mysqlDSN(u)
		if err != nil {
			return "", "", 0, err
		}

		return "mysql", dsn, models.MySQL, nil
	}

	return "", "", 0, fmt.Errorf("unknown backend scheme '%s'", u.Scheme)
}

// mysqlDSN converts a mysql:// URL into go-sql-driver's DSN format
// (user:pass@tcp(host:port)/dbname?params).
func mysqlDSN(u *url.URL) (string, error) {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	if u.User != nil {
		cfg.User = u.User.Username()
		if p, ok := u.User.Password(); ok {
			cfg.Passwd = p
		}
	}

	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	for k, vals := range u.Query() {
		if len(vals) > 0 {
			cfg.Params[k] = vals[0]
		}
	}

	// Temporal columns must arrive as time.Time, not raw bytes.
	cfg.ParseTime = true

	return cfg.FormatDSN(), nil
}
