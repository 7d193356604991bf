package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chancellery/apps/server/internal/config"
	"chancellery/apps/server/internal/otel"
)

const serviceName = "chancellery-server"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr      string
		seed      int64
		skipVotes bool
		npcFill   int
	)
	cmd := &cobra.Command{
		Use:           "chancellery-server",
		Short:         "Serve shared chancellery games over WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				log.Printf("[Server] Invalid configuration: %v", err)
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("skip-votes") {
				cfg.SkipVotes = skipVotes
			}
			if flags.Changed("npc-fill") {
				cfg.NPCFill = npcFill
			}
			if err := cfg.Validate(); err != nil {
				log.Printf("[Server] Invalid configuration: %v", err)
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address (overrides CHANCELLERY_ADDR)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "game seed, 0 for time based (overrides CHANCELLERY_SEED)")
	cmd.Flags().BoolVar(&skipVotes, "skip-votes", false, "elect every nominee without a vote")
	cmd.Flags().IntVar(&npcFill, "npc-fill", 0, "seat bots in the default table up to this many players")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		log.Printf("[Server] Tracing disabled: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	app, err := newApp(cfg)
	if err != nil {
		log.Printf("[Server] Failed to start: %v", err)
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[Server] Ledger mode: %s", app.ledgerMode)
		log.Printf("[Server] Starting WebSocket server on %s (game %s)", cfg.Addr, cfg.GameID)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Server] Failed to start: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
		log.Printf("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
