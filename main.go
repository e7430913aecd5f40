package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumekit/config"
	"resumekit/config/database"
	"resumekit/internal/auth"
	"resumekit/internal/document/render"
	"resumekit/internal/document/repository"
	"resumekit/internal/document/service"
	"resumekit/internal/feedback"
	"resumekit/pkg/logger"
	"resumekit/router"
	"resumekit/socket"
	"resumekit/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Sugar.Errorf("server stopped: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer kv.Close()

	hub := socket.NewHub()
	go hub.Run(ctx)

	docs := service.NewDocumentService(
		repository.NewDocumentRepository(kv),
		hub,
		render.NewPDFRenderer(),
		cfg.Documents.ServerTimestamps,
	)

	deps := router.Dependencies{
		Prefix:       cfg.Server.APIPrefix,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodySizeBytes(),
		Verifier:     newVerifier(cfg.Auth),
		Documents:    docs,
		Feedback:     feedback.NewRepository(kv),
		Hub:          hub,
	}
	if cfg.Auth.SupabaseURL != "" && cfg.Auth.ServiceRoleKey != "" {
		deps.Accounts = auth.NewAdminClient(cfg.Auth.SupabaseURL, cfg.Auth.ServiceRoleKey)
	} else {
		logger.Sugar.Warn("SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not set, /signup is disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Setup(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Resume builder backend listening on %s%s", cfg.Server.Addr, cfg.Server.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		bs, err := store.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return bs, nil
	case config.BackendPostgres:
		db, err := database.Connect(cfg.Driver, cfg.DatabaseURL, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgresStore(db, cfg.Table)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure %s table: %w", cfg.Table, err)
		}
		return pg, nil
	default:
		logger.Sugar.Warn("Using in-memory store, documents are lost on restart")
		return store.NewMemoryStore(), nil
	}
}

// newVerifier checks tokens locally when the JWT secret is known and falls
// back to asking the provider otherwise.
func newVerifier(cfg config.AuthConfig) auth.Verifier {
	if cfg.JWTSecret != "" {
		return auth.NewJWTVerifier(cfg.JWTSecret)
	}
	return auth.NewRemoteVerifier(cfg.SupabaseURL, cfg.ServiceRoleKey)
}
