// internal/cli/serve.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"safari-connect/internal/database"
	"safari-connect/internal/handlers"
	"safari-connect/internal/inventory"
	"safari-connect/internal/middleware"
	"safari-connect/internal/notify"
	"safari-connect/internal/repository"
	"safari-connect/internal/responder"
)

const (
	csrfCleanupInterval = 5 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

type ServeOptions struct {
	*RootOptions
	Addr string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Serve the site API: chat replies, the inventory counter, bookings,
the admin API and the cross-origin notification relay.

The inventory poller runs alongside the server and stops with it.

Example:
  safari-connect serve --config ./safari.yaml
  SAFARI_SERVER_ADDR=:9000 safari-connect serve`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.Config
	addr := cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	slog.Info("opening database", "path", cfg.Database.Path)
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	var resp handlers.ChatResponder
	var live *responder.Live
	if cfg.Chat.WatchReplies {
		live, err = responder.NewLive(cfg.Chat.RepliesFile, responderBuilder(cfg))
		resp = live
	} else {
		resp, err = buildResponder(cfg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load replies", err)
	}
	sim, err := buildSimulator(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up inventory", err)
	}
	notifiers, err := buildNotifiers(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up notifications", err)
	}

	inv := inventory.NewService(sim, repository.NewKVRepository(db), cfg.Inventory.ViewWindow)
	relay := notify.NewRelay(notifiers, notify.WithRecorder(repository.NewNotificationRepository(db)))
	h := handlers.New(db, resp, inv, relay, cfg.Server.Index)

	csrf := middleware.NewCSRFTokenStore(middleware.DefaultCSRFTokenTTL)
	router := h.Routes(handlers.RouteConfig{
		CSRF:           csrf,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AdminSecret:    []byte(cfg.Admin.JWTSecret),
		StaticDir:      cfg.Server.StaticDir,
	})

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := inventory.NewPoller(inv, cfg.Inventory.DecrementInterval, cfg.Inventory.RolloverInterval)
	go poller.Run(ctx)
	go csrf.RunCleanup(ctx, csrfCleanupInterval)
	if live != nil {
		go func() {
			if err := live.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("reply catalog watcher stopped", "error", err)
			}
		}()
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	slog.Info("server starting", "addr", listener.Addr().String(), "channels", len(notifiers))
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", listener.Addr())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
