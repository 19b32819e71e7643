// Command searchd runs the peer-to-peer content-search daemon: it maintains a local
// document index, parks streaming overlay search results, ranks them for presentation, and
// exposes all of that over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lattice-mesh/searchd/internal/daemonconfig"
	"github.com/lattice-mesh/searchd/internal/httpapi"
	"github.com/lattice-mesh/searchd/internal/localindex"
	"github.com/lattice-mesh/searchd/internal/metrics"
	"github.com/lattice-mesh/searchd/internal/overlay"
	"github.com/lattice-mesh/searchd/internal/searchpark"
)

const shutdownGrace = 5 * time.Second

func main() {
	cfg, err := daemonconfig.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "searchd:", err)
		os.Exit(2)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identity, err := overlay.LoadOrCreatePeerIdentity(cfg.IdentityPath)
	if err != nil {
		log.Error("failed to load peer identity", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("peer identity loaded", slog.String("peer_id", identity.PeerID.String()))

	host, err := identity.NewHost(cfg.ListenAddrs)
	if err != nil {
		log.Error("failed to start libp2p host", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer host.Close()
	log.Info("libp2p host listening", slog.Any("addrs", host.Addrs()))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	idx := localindex.New(log)
	park := searchpark.New(log)

	if cfg.SearchParkSweepInterval > 0 {
		go park.RunSweeper(ctx, cfg.SearchParkSweepInterval)
	}

	// No overlay client is wired by default: launching an overlay host and dialing peers is
	// out of this daemon's core scope (§1) and is supplied by an external deployment layer.
	var overlayClient overlay.OverlayClient

	server := httpapi.NewServer(idx, park, overlayClient, m, log, cfg.RankerTargetLanguage)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown error", slog.String("error", err.Error()))
		}
	}()

	log.Info("searchd listening", slog.String("addr", cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("http server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg daemonconfig.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
