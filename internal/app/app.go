// Package app assembles the portfolio tracker from its configuration and runs
// the HTTP server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/identity"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/scheduler"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/store"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests.
const ShutdownTimeout = 30 * time.Second

// App is a fully wired server.
type App struct {
	Config    *config.Config
	Store     store.Store
	Server    *http.Server
	scheduler *scheduler.Scheduler
}

// New opens the store and builds the router. The caller owns the returned App
// and must call Close when Run is not used.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	_, unconfigured := st.(*store.Unconfigured)
	if unconfigured {
		slog.Warn("portfolio storage is not configured; save and load will fail", "backend", st.Name())
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := st.Ping(pingCtx); err != nil {
			slog.Warn("portfolio store is not reachable at startup", "store", st.Name(), "error", err)
		} else {
			slog.Info("connected to portfolio store", "store", st.Name())
		}
		cancel()
	}

	resolver, err := identity.New(cfg.Identity)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	yahooClient := yahoo.NewFinanceClient(yahoo.Options{
		BaseURL:   cfg.Market.BaseURL,
		Timeout:   cfg.Market.Timeout,
		RateLimit: cfg.Market.RateLimit,
		RateBurst: cfg.Market.RateBurst,
	})

	sched := scheduler.New()
	if !unconfigured {
		if err := sched.AddStoreHeartbeat(cfg.Store.Heartbeat, st); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	router := api.NewRouter(
		service.NewSystemService(st),
		service.NewPortfolioService(st),
		service.NewMarketService(yahooClient),
		resolver,
		cfg,
	)

	return &App{
		Config: cfg,
		Store:  st,
		Server: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		scheduler: sched,
	}, nil
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully and closes the store.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener. The scheduler is stopped and the store
// closed on every return path.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	a.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", ln.Addr().String(), "store", a.Store.Name())
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	shutdownCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), ShutdownTimeout)
	}

	select {
	case err := <-errCh:
		stopCtx, cancel := shutdownCtx()
		defer cancel()
		a.scheduler.Stop(stopCtx)
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	stopCtx, cancel := shutdownCtx()
	defer cancel()

	a.scheduler.Stop(stopCtx)
	if err := a.Server.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited")
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
