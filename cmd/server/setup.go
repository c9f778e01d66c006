package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/touchstone-names/pkg/names"
	"github.com/hazyhaar/touchstone-names/pkg/variants"
)

// cmdSetup compiles a rules file and saves it, so that serve and expand
// work from the same rules.
func cmdSetup(args []string) {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	rulesPath := fs.String("rules", "", "rules file (overrides config)")
	fs.Parse(args)

	cfg, logger := mustSetup(*cfgPath)
	if *rulesPath != "" {
		cfg.Rules = *rulesPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Compiling before saving keeps broken rules out of the store.
	p, rs, err := buildProcessor(ctx, cfg.Rules, nil)
	if err != nil {
		logger.Error("invalid rules", "rules", cfg.Rules, "error", err)
		os.Exit(1)
	}

	store := openStore(ctx, cfg, logger)
	defer store.Close()
	if err := rs.Save(ctx, store); err != nil {
		logger.Error("save rules", "error", err)
		os.Exit(1)
	}
	logger.Info("rules saved",
		"rules", cfg.Rules,
		"driver", cfg.Store.Driver,
		"pairs", len(rs.ReplacementPairs()),
		"replacement_sources", p.ReplacementSources())
}

// cmdShow prints the saved properties. With -pairs the replacement blob is
// decoded.
func cmdShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	pairs := fs.Bool("pairs", false, "decode and list the replacement pairs")
	fs.Parse(args)

	cfg, logger := mustSetup(*cfgPath)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := openStore(ctx, cfg, logger)
	defer store.Close()

	props, err := store.List(ctx)
	if err != nil {
		logger.Error("list properties", "error", err)
		os.Exit(1)
	}
	if len(props) == 0 {
		fmt.Println("No properties saved. Run: touchstone-names setup --rules <file>")
		return
	}

	for _, prop := range props {
		updated := time.Unix(prop.UpdatedAt, 0).UTC().Format(time.RFC3339)
		if prop.Key == names.PropReplacements {
			fmt.Printf("%-36s  %s  (%d bytes encoded)\n", prop.Key, updated, len(prop.Value))
			if *pairs {
				printPairs(prop.Value, logger)
			}
			continue
		}
		fmt.Printf("%-36s  %s\n", prop.Key, updated)
		fmt.Printf("    %s\n", prop.Value)
	}
}

func printPairs(blob string, logger *slog.Logger) {
	decoded, err := variants.DecodePairs(blob)
	if err != nil {
		logger.Error("decode replacements", "error", err)
		os.Exit(1)
	}
	for _, line := range indexedPairs(decoded) {
		fmt.Printf("    %s\n", line)
	}
}

// indexedPairs renders the replacements of each source as the index holds
// them, trailing spaces already handed back to the following text.
func indexedPairs(pairs []variants.Pair) []string {
	idx, err := variants.NewIndex(pairs)
	if err != nil {
		return []string{err.Error()}
	}
	variants.SortPairs(pairs)
	var lines []string
	for i, p := range pairs {
		if i > 0 && pairs[i-1].Source == p.Source {
			continue
		}
		repl := idx.Replacements(p.Source)
		quoted := make([]string, len(repl))
		for j, r := range repl {
			quoted[j] = fmt.Sprintf("%q", r)
		}
		lines = append(lines, fmt.Sprintf("%q -> %s", p.Source, strings.Join(quoted, " | ")))
	}
	return lines
}
