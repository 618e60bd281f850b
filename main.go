package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BorisDmv/posts-api/internal/config"
	"github.com/BorisDmv/posts-api/internal/db"
	"github.com/BorisDmv/posts-api/internal/docs"
	"github.com/BorisDmv/posts-api/internal/handlers"
	"github.com/BorisDmv/posts-api/internal/posts"
)

var (
	testMode bool
	port     string
)

var rootCmd = &cobra.Command{
	Use:     "posts-api",
	Short:   "CRUD HTTP API for blog posts",
	Version: docs.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(testMode)
		if err != nil {
			return err
		}
		if port != "" {
			cfg.Port = port
		}
		return serve(cmd.Context(), cfg)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVar(&testMode, "test", false, "Use the test store target")
	rootCmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore connects the configured driver. The returned closer releases it.
func openStore(ctx context.Context, cfg config.Config) (posts.Store, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := db.NewPostgresStore(connectCtx, cfg.StoreURI())
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(connectCtx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverMemory:
		return db.NewMemoryStore(), func() {}, nil
	default:
		store, err := db.NewMongoStore(connectCtx, cfg.StoreURI())
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureIndexes(connectCtx); err != nil {
			log.Printf("ensure indexes: %v", err)
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				log.Printf("mongo disconnect: %v", err)
			}
		}, nil
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer closeStore()
	log.Printf("connected to %s store (test mode: %t)", cfg.StoreDriver, cfg.TestMode)

	service := posts.NewService(store)
	router := handlers.NewRouter(
		handlers.RouterOptions{AllowedOrigins: cfg.CorsAllowedOrigins, AccessLog: true},
		handlers.NewPostsHandler(service),
		handlers.NewHealthHandler(service),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	log.Printf("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	return nil
}
