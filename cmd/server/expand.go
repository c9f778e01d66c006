package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/touchstone-names/pkg/batch"
	"github.com/hazyhaar/touchstone-names/pkg/names"
)

func cmdExpand(args []string) {
	fs := flag.NewFlagSet("expand", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	rulesPath := fs.String("rules", "", "compile rules from this file instead of the property store")
	input := fs.String("input", "-", "CSV file of names, - for stdin")
	output := fs.String("output", "-", "output file, - for stdout")
	delim := fs.String("delimiter", "", "input delimiter (overrides config)")
	encoding := fs.String("encoding", "", "input encoding, e.g. iso-8859-1 (overrides config)")
	keyCol := fs.String("key-column", "", "header of the name column; implies a header row")
	fs.Parse(args)

	cfg, logger := mustSetup(*cfgPath)
	format := cfg.Input
	if *delim != "" {
		format.Delimiter = *delim
	}
	if *encoding != "" {
		format.Encoding = *encoding
	}
	if *keyCol != "" {
		format.KeyColumn = *keyCol
		format.HasHeader = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store names.PropertyStore
	if *rulesPath == "" {
		s := openStore(ctx, cfg, logger)
		defer s.Close()
		store = s
	}
	p, _, err := buildProcessor(ctx, *rulesPath, store)
	if err != nil {
		logger.Error("failed to load rules", "error", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			logger.Error("open input", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	var out io.Writer = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("create output", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	stats, err := batch.Expand(ctx, in, out, p, format)
	if err != nil {
		logger.Error("expand failed", "rows", stats.Rows, "error", err)
		os.Exit(1)
	}
	logger.Info("expansion done",
		"rows", stats.Rows,
		"written", stats.Written,
		"skipped", stats.Skipped,
		"variants", stats.Variants)
}
