package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tropicalrevolution/internal/config"
	"tropicalrevolution/internal/logging"
	"tropicalrevolution/internal/serverapp"
	"tropicalrevolution/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tropical-revolution:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:      env.LogLevel,
		Encoding:   env.LogEncoding,
		OutputPath: env.LogOutput,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadOrDefault(env.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", env.ConfigPath, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Options{
		Backend: env.Store,
		DataDir: filepath.Join(env.DataDir, "saves"),
		Redis: store.RedisOptions{
			Addr:     env.RedisAddr,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
		},
		SQLite: env.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open %s store: %w", env.Store, err)
	}
	defer st.Close()

	handler, err := serverapp.NewHandler(ctx, serverapp.Options{
		Config:        cfg,
		Store:         st,
		StaticDir:     env.StaticDir,
		UseDiskStatic: env.DevStatic,
		ZoneSource:    env.ZoneSource,
		Production:    env.IsProduction(),
		CookieSecure:  env.CookieSecure,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	srv := &http.Server{
		Addr:              env.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", "http://localhost"+env.Addr()),
			zap.String("store", env.Store),
			zap.String("config", env.ConfigPath),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
