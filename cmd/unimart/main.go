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

	"golang.org/x/sync/errgroup"

	"unimart/internal/api"
	"unimart/internal/platform/config"
	"unimart/internal/platform/httpserver"
	"unimart/internal/platform/logger"
	platformredis "unimart/internal/platform/redis"
	"unimart/internal/session"
	"unimart/internal/store"
	"unimart/internal/transport"
	"unimart/internal/web"
)

// main wires high-level dependencies and keeps the gateway lifecycle small.
// Session, guard, and transport logic live in the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat)

	var sessionStore store.Store
	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		sessionStore = store.NewRedisStore(rdb.Client, store.WithTTL(cfg.SessionTTL))
		defer rdb.Close()
	} else {
		sessionStore = store.NewFileStore(cfg.StateFile())
	}

	sessions := session.NewManager(sessionStore, log)

	metrics := transport.NewMetrics()
	hooks := transport.Hooks{
		OnForcedLogout: func(ctx context.Context, reason string) {
			// The request context may already be dead; the logout must not be.
			_ = sessions.ForceLogout(context.WithoutCancel(ctx), reason)
		},
		Notify: func(message string) {
			log.Warn("backend notice", "message", message)
		},
	}
	authorized := &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: transport.NewAuthorizer(nil, sessionStore, log, metrics, hooks),
	}

	apiClient := api.NewClient(api.Config{
		AuthBaseURL:   cfg.AuthBaseURL,
		MarketBaseURL: cfg.MarketBaseURL,
	}, authorized, log)

	handlers := web.NewHandlers(sessions, apiClient, log)
	router := web.NewRouter(handlers, sessions, log)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sessions.Run(ctx)
	})

	g.Go(func() error {
		// Guards hold navigation with a neutral wait until this settles.
		if err := sessions.Hydrate(ctx); err != nil {
			log.Warn("session hydration failed, starting anonymous", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting unimart gateway", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("gateway exited", "error", err)
		os.Exit(1)
	}
}
