package main

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

var (
	//go:embed config.sample.toml
	efs embed.FS

	// Positional args left over after flag parsing (the SQL text).
	queryArgs []string
)

func initFlags(ko *koanf.Koanf) {
	// Command line flags.
	f := flag.NewFlagSet("config", flag.ContinueOnError)
	f.Usage = func() {
		fmt.Println("tableport - export an SQL query to .json / .xlsx / .md")
		fmt.Println("usage: tableport [flags] 'SELECT ...'")
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	f.Bool("new-config", false, "generate a new sample config.toml file.")
	f.String("config", "config.toml", "path to the TOML configuration file")
	f.StringP("url", "u", "", "database url (postgres:// or mysql://). Falls back to db.url in the config file, then $DATABASE_URL")
	f.StringP("output", "o", "", "output filename; the extension picks the format unless --format is given")
	f.StringP("format", "f", "", "output format: json, xlsx, or md")
	f.String("sql-file", "", "path to a goyesql .sql file to read the query from instead of the argument")
	f.String("sql-name", "query", "name tag of the query to pick from --sql-file")
	f.Duration("timeout", 0, "query timeout (eg: 30s). 0 for no limit")
	f.Bool("version", false, "show current version and build")
	f.Parse(os.Args[1:])

	queryArgs = f.Args()

	// Load commandline params.
	ko.Load(posflag.Provider(f, ".", ko), nil)
}

func initConfig(ko *koanf.Koanf) {
	// Generate new config file.
	if ok := ko.Bool("new-config"); ok {
		if err := generateConfig(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("config.toml generated. Edit and run again.")
		os.Exit(0)
	}

	// Load the config file if one exists. The file is optional; flags
	// and env vars can carry the whole config.
	if path := ko.String("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := ko.Load(file.Provider(path), toml.Parser()); err != nil {
				log.Error("error reading config", "error", err)
				os.Exit(1)
			}
		}
	}

	opts := &slog.HandlerOptions{}
	switch ko.String("app.log_level") {
	case "DEBUG":
		opts.Level = slog.LevelDebug
	case "", "INFO":
		opts.Level = slog.LevelInfo
	case "ERROR":
		opts.Level = slog.LevelError
	default:
		log.Error("incorrect log level in app")
		os.Exit(1)
	}

	// Override the logger according to level.
	log = slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func generateConfig() error {
	if _, err := os.Stat("config.toml"); !os.IsNotExist(err) {
		return errors.New("config.toml exists. Remove it to generate a new one")
	}

	// Generate config file.
	b, err := efs.ReadFile("config.sample.toml")
	if err != nil {
		return fmt.Errorf("error reading sample config: %v", err)
	}

	if err := os.WriteFile("config.toml", b, 0644); err != nil {
		return err
	}

	return nil
}
