package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/zerodha/tableport/internal/core"
	"github.com/zerodha/tableport/internal/dbpool"
	"github.com/zerodha/tableport/internal/exporters"

	// MySQL and Postgres drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

var (
	buildString = "unknown"

	// Initially, set the logger as default.
	log *slog.Logger = slog.Default()
	ko               = koanf.New(".")
)

func main() {
	initFlags(ko)

	if ko.Bool("version") {
		fmt.Println(buildString)
		os.Exit(0)
	}

	initConfig(ko)

	// Load environment variables and merge into the loaded config.
	if err := ko.Load(env.Provider("TABLEPORT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TABLEPORT_")), "__", ".", -1)
	}), nil); err != nil {
		log.Error("error loading config from env", "error", err)
		os.Exit(1)
	}

	var (
		dest  = ko.String("output")
		query = resolveQuery(ko)
	)
	if dest == "" {
		log.Error("no output file given (--output)")
		os.Exit(1)
	}

	// Resolve the output format before connecting anywhere.
	format := ko.String("format")
	if format == "" {
		f, err := exporters.FromPath(dest)
		if err != nil {
			log.Error("could not resolve output format", "error", err)
			os.Exit(1)
		}
		format = f
	}
	if _, err := exporters.New(format, log); err != nil {
		log.Error("could not resolve output format", "error", err)
		os.Exit(1)
	}

	// Connect to the source DB.
	cfg := dbConfig(ko)
	db, backend, err := dbpool.NewConn(cfg)
	if err != nil {
		log.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	co := core.New(db, backend, core.Opt{
		QueryTimeout: ko.Duration("timeout"),
	}, log)

	log.Info("executing query", "backend", backend.String(), "format", format, "output", dest)

	rs, err := co.Query(context.Background(), query)
	if err != nil {
		log.Error("query failed", "error", err)
		os.Exit(1)
	}

	if err := co.Export(rs, format, dest); err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}
}

// resolveQuery returns the SQL text from the positional argument or from
// a named query in a goyesql .sql file.
func resolveQuery(ko *koanf.Koanf) string {
	if path := ko.String("sql-file"); path != "" {
		q, err := core.LoadQuery(path, ko.String("sql-name"))
		if err != nil {
			log.Error("could not load query", "error", err)
			os.Exit(1)
		}

		return q
	}

	if len(queryArgs) != 1 {
		log.Error("expected exactly one SQL query argument")
		os.Exit(1)
	}

	return queryArgs[0]
}

// dbConfig assembles the connection config from flags, the config file,
// and the DATABASE_URL fallback.
func dbConfig(ko *koanf.Koanf) dbpool.Config {
	var cfg dbpool.Config
	if err := ko.Unmarshal("db", &cfg); err != nil {
		log.Error("error reading db config", "error", err)
		os.Exit(1)
	}

	if u := ko.String("url"); u != "" {
		cfg.URL = u
	}
	if cfg.URL == "" {
		cfg.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.URL == "" {
		log.Error("no database url given (--url, db.url in config, or DATABASE_URL)")
		os.Exit(1)
	}

	return cfg
}
