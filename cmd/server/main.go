package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/touchstone-names/pkg/batch"
	"github.com/hazyhaar/touchstone-names/pkg/names"
	"github.com/hazyhaar/touchstone-names/pkg/propstore"
	"github.com/hazyhaar/touchstone-names/pkg/rules"
)

type config struct {
	Addr     string       `yaml:"addr"`
	Rules    string       `yaml:"rules"`
	LogLevel string       `yaml:"log_level"`
	Store    storeConfig  `yaml:"store"`
	Input    batch.Format `yaml:"input"`
}

type storeConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres or memory
	DSN    string `yaml:"dsn"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "setup":
		cmdSetup(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "expand":
		cmdExpand(os.Args[2:])
	case "show":
		cmdShow(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: touchstone-names <command> [flags]

Commands:
  setup    Compile a rules file and save it to the property store
  serve    Start the HTTP server (or an MCP server on stdio with --mcp)
  expand   Write the normalized form and variants of every name in a CSV file
  show     Print the rules saved in the property store
`)
}

func defaultConfig() config {
	return config{
		Addr:     ":8420",
		Rules:    "rules.yaml",
		LogLevel: "info",
		Store:    storeConfig{Driver: "sqlite", DSN: "names.db"},
		Input:    batch.Format{Delimiter: ","},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// mustSetup loads the config named by cfgPath and returns it with a logger.
func mustSetup(cfgPath string) (config, *slog.Logger) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		newLogger("info").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger
}

func openStore(ctx context.Context, cfg config, logger *slog.Logger) propstore.Store {
	store, err := propstore.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		logger.Error("open property store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	return store
}

// buildProcessor compiles rules from exactly one of a rules file and a store.
func buildProcessor(ctx context.Context, rulesPath string, store names.PropertyStore) (*names.Processor, *names.RuleSet, error) {
	var src names.RuleSource
	if rulesPath != "" {
		l, err := rules.Load(rulesPath)
		if err != nil {
			return nil, nil, err
		}
		src = l
	}
	rs, err := names.NewRuleSet(ctx, src, store)
	if err != nil {
		return nil, nil, err
	}
	p, err := names.NewProcessor(rs)
	if err != nil {
		return nil, nil, err
	}
	return p, rs, nil
}
