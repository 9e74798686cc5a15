package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"omnibot/api"
	"omnibot/config"
	"omnibot/session"
	"omnibot/web"
)

const (
	reapInterval  = time.Minute
	probeInterval = 30 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
	cmd.Flags().String("port", "", "listen port (default 8080, or $PORT)")
	_ = c.v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}

func serve(ctx context.Context, a *app) error {
	sessions := session.NewManager(a.dispatcher, a.prefs, session.WithTTL(a.cfg.SessionTTL))
	defer sessions.CloseAll()

	go func() {
		if err := a.ready.Probe(ctx); err != nil {
			log.Printf("gateway probe failed: %v", err)
		} else {
			log.Printf("gateway ready")
		}
		a.ready.Watch(ctx, probeInterval)
	}()
	go sessions.RunReaper(ctx, reapInterval)

	router := api.RegisterRoutes(api.Deps{
		Sessions: sessions,
		Prefs:    a.prefs,
		Registry: a.registry,
		Tasks:    a.tasks,
		Ready:    a.ready,
	}, web.Files)

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("omnibot listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
