package service

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

	"mingle/app/auth"
	"mingle/app/config"
	"mingle/app/routes"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the API until SIGINT or SIGTERM and returns an exit code.
func Serve(version string) int {
	cfg, ok := loadConfig()
	if !ok {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := RunAppServer(ctx, cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// RunAppServer opens the configured store and serves the API on cfg.Addr()
// until ctx is cancelled.
func RunAppServer(ctx context.Context, cfg *config.Config, version string) error {
	if err := cfg.RequireSecret(); err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.LogLevel)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("error closing store", "error", err)
		}
	}()
	logger.Info("store ready", "driver", cfg.StoreDriver)

	router := routes.SetupRoutes(routes.Dependencies{
		Posts:   st.posts,
		Users:   st.users,
		Tokens:  tokens,
		Hasher:  auth.NewPasswordHasher(),
		Logger:  logger,
		Version: version,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	logger.Info("server started", "addr", ln.Addr().String())
	return runServer(ctx, newHTTPServer(router), ln, logger)
}

func newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// runServer serves on ln and shuts srv down gracefully once ctx is done.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
