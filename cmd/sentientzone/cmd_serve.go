package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sz3lp/sz/internal/api"
	"github.com/sz3lp/sz/internal/store"
	"github.com/sz3lp/sz/internal/ws"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulations over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("net listen: %w", err)
			}
			return a.serve(cmd.Context(), ln)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address (default from config)")
	return cmd
}

// serve runs the server on ln until ctx is done.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	sc := a.cfg.Simulator()
	runs := store.New(a.cfg.Cache.TTL)

	hub := ws.NewHub(a.logger.WithPrefix("ws"))
	wsHandler := ws.NewHandler(hub, runs, a.logger.WithPrefix("ws"), ws.HandlerOptions{
		Config:            sc,
		MonteCarloRuns:    a.cfg.MonteCarlo.Runs,
		MonteCarloWorkers: a.cfg.MonteCarlo.Workers,
	})
	apiServer := api.NewServer(runs, a.logger.WithPrefix("api"), api.Options{
		Config:            sc,
		MonteCarloRuns:    a.cfg.MonteCarlo.Runs,
		MonteCarloWorkers: a.cfg.MonteCarlo.Workers,
	})

	srv := &http.Server{
		Handler:           api.Wrap(api.NewRouter(apiServer, wsHandler), a.logger.StandardLog().Writer()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("serving", "addr", ln.Addr().String())
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(closeCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
