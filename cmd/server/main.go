package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/khata/internal/auth"
	"github.com/mmynk/khata/internal/config"
	"github.com/mmynk/khata/internal/handler"
	"github.com/mmynk/khata/internal/ledger"
	"github.com/mmynk/khata/internal/metrics"
	"github.com/mmynk/khata/internal/middleware"
	"github.com/mmynk/khata/internal/storage"
	"github.com/mmynk/khata/internal/storage/memory"
	"github.com/mmynk/khata/internal/storage/sqlite"
	"github.com/mmynk/khata/internal/view"
	"github.com/mmynk/khata/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.StoreBackend)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.StoreBackend)

	m := metrics.New()
	l := ledger.New(store,
		ledger.WithObserver(m),
		ledger.WithRestyleOnUpdate(cfg.RestyleOnUpdate),
	)

	engine, err := view.NewEngine()
	if err != nil {
		return err
	}

	secret := cfg.FormSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		slog.Warn("FORM_SECRET not set, using a random secret; forms expire on restart")
	}

	operator, err := auth.NewOperatorAuthenticator(cfg.OperatorUser, cfg.OperatorPasswordHash)
	if err != nil {
		return err
	}
	if !operator.Enabled() {
		slog.Warn("OPERATOR_PASSWORD_HASH not set, the ledger is open to anyone who can reach it")
	}

	router, err := handler.NewRouter(handler.RouterConfig{
		Ledger:   l,
		Engine:   engine,
		Tokens:   auth.NewFormTokenManager(secret, cfg.FormTokenTTL),
		Operator: operator,
		Metrics:  m,
		Stack: middleware.StackConfig{
			Production:     cfg.IsProduction(),
			RequestTimeout: cfg.AppRequestTimeout,
			RateLimit:      cfg.RateLimitPerMinute,
		},
	})
	if err != nil {
		return err
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "address", cfg.AppAddr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, backend string) (storage.Store, error) {
	switch backend {
	case config.StoreSQLite:
		store, err := sqlite.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return store, nil
	default:
		return memory.New(), nil
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate form secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
