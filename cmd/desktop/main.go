// Command desktop runs the tracker locally and opens it in the default browser.
// When the port is already taken, an instance is assumed to be running and only
// the browser is opened.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/logging"
)

const (
	healthAttempts = 30
	healthInterval = time.Second
)

func main() {
	// The desktop build keeps data in a local file unless told otherwise.
	if os.Getenv("STORE_BACKEND") == "" {
		_ = os.Setenv("STORE_BACKEND", config.BackendSQLite)
	}
	if os.Getenv("SERVER_HOST") == "" {
		_ = os.Setenv("SERVER_HOST", "127.0.0.1")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if _, err := logging.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%s/", cfg.Server.Port)

	if portInUse(cfg.Server.Port) {
		slog.Info("tracker already running, opening browser", "url", url)
		if err := openBrowser(url); err != nil {
			slog.Error("failed to open browser", "url", url, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		if err := waitForHealth(gctx, url+"api/health"); err != nil {
			slog.Warn("server did not become healthy, open the page manually", "url", url, "error", err)
			return nil
		}
		if err := openBrowser(url); err != nil {
			slog.Warn("failed to open browser, open the page manually", "url", url, "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("desktop server stopped with error", "error", err)
		os.Exit(1)
	}
}

// portInUse reports whether something already accepts connections on port.
func portInUse(port string) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", port), time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// waitForHealth polls url until it answers 200 or the attempts run out.
func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: healthInterval}
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < healthAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return fmt.Errorf("no healthy response after %d attempts", healthAttempts)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
