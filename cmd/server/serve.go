package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/touchstone-names/pkg/api"
	"github.com/hazyhaar/touchstone-names/pkg/names"
)

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	mcpStdio := fs.Bool("mcp", false, "serve MCP tools on stdin/stdout instead of HTTP")
	fs.Parse(args)

	cfg, logger := mustSetup(*cfgPath)
	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg, logger)
	defer store.Close()

	// Rules come from the store only; run setup to change them.
	p, rs, err := buildProcessor(ctx, "", store)
	if err != nil {
		logger.Error("failed to load rules", "error", err)
		os.Exit(1)
	}
	logger.Info("rules loaded", "replacement_sources", p.ReplacementSources())
	h := names.NewHandle(p, rs)

	// SIGHUP: reload rules from the store.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading rules")
			p, rs, err := buildProcessor(ctx, "", store)
			if err != nil {
				logger.Error("reload failed", "error", err)
				continue
			}
			h.Swap(p, rs)
			logger.Info("rules reloaded", "replacement_sources", p.ReplacementSources())
		}
	}()

	if *mcpStdio {
		srv := server.NewMCPServer("touchstone-names", "1.0.0", server.WithToolCapabilities(false))
		api.RegisterMCPTools(srv, h, logger)
		logger.Info("serving MCP on stdio")
		if err := server.ServeStdio(srv); err != nil {
			logger.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewRouter(h, logger),
	}

	go func() {
		logger.Info("touchstone-names listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	srv.Shutdown(context.Background())
}
