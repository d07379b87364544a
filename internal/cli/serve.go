package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskbox/internal/server"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Serve the dashboard as a JSON API",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLogStdout: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8420)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	srv := &http.Server{
		Addr: a.cfg.ServerAddr,
		Handler: server.New(a.newSession(),
			server.WithLogger(a.log),
			server.WithAllowedOrigins(a.cfg.AllowedOrigins),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return goerr.Wrap(err, "server failed", goerr.V("addr", srv.Addr))
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "server shutdown failed")
	}
	a.log.Info("server stopped")
	return nil
}
