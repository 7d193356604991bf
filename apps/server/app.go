package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"chancellery/apps/server/internal/auth"
	"chancellery/apps/server/internal/config"
	"chancellery/apps/server/internal/gateway"
	"chancellery/apps/server/internal/ledger"
	"chancellery/apps/server/internal/lobby"
)

type app struct {
	mux        *http.ServeMux
	lobby      *lobby.Lobby
	ledger     ledger.Service
	ledgerMode string
}

func newApp(cfg config.Config) (*app, error) {
	keys, err := auth.NewKeys(cfg.KeyCost)
	if err != nil {
		return nil, fmt.Errorf("init access keys: %w", err)
	}
	ledgerService, ledgerMode, err := ledger.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("init ledger service: %w", err)
	}
	lby, err := lobby.New(lobby.Options{
		DefaultID:     cfg.GameID,
		SkipVotes:     cfg.SkipVotes,
		Seed:          cfg.Seed,
		Credentials:   keys,
		Ledger:        ledgerService,
		ViewCacheSize: cfg.ViewCacheSize,
		NPCThink:      cfg.NPCThink,
		NPCFill:       cfg.NPCFill,
	})
	if err != nil {
		_ = ledgerService.Close()
		return nil, fmt.Errorf("init lobby: %w", err)
	}
	gw := gateway.New(lby)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	lby.RegisterRoutes(mux)
	ledger.NewHTTPHandler(ledgerService, lby.Known).RegisterRoutes(mux)

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
		log.Printf("[Server] Serving static files from %s", cfg.StaticDir)
	} else {
		log.Printf("[Server] Static directory %s not found, frontend disabled", cfg.StaticDir)
	}

	return &app{mux: mux, lobby: lby, ledger: ledgerService, ledgerMode: ledgerMode}, nil
}

// Close stops every table before closing the ledger they flush into.
func (a *app) Close() {
	a.lobby.Close(context.Background())
	if err := a.ledger.Close(); err != nil {
		log.Printf("[Server] Ledger close failed: %v", err)
	}
}
