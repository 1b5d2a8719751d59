// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/store"
)

// heartbeatTimeout bounds a single store ping.
const heartbeatTimeout = 10 * time.Second

// Scheduler wraps a cron runner whose jobs log through slog.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

// New creates an idle scheduler. Jobs that are still running when their next
// tick arrives are skipped rather than stacked.
func New() *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
	}
}

// AddStoreHeartbeat pings the store on the given cron spec and logs state
// changes, so a dropped connection shows up in the logs before a user hits it.
// An empty spec registers nothing.
func (s *Scheduler) AddStoreHeartbeat(spec string, st store.Store) error {
	if spec == "" {
		return nil
	}

	if _, err := s.cron.AddJob(spec, NewHeartbeat(st)); err != nil {
		return fmt.Errorf("invalid heartbeat schedule %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
	s.running = true
}

// Running reports whether Start was called without a matching Stop.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Heartbeat pings a store and remembers whether the last ping succeeded.
type Heartbeat struct {
	store   store.Store
	healthy *bool
}

// NewHeartbeat creates a heartbeat job for st.
func NewHeartbeat(st store.Store) *Heartbeat {
	return &Heartbeat{store: st}
}

// Run implements cron.Job.
func (h *Heartbeat) Run() {
	h.Beat(context.Background())
}

// Beat performs one ping and reports whether it succeeded. Only transitions
// are logged at info or warn; steady state is logged at debug.
func (h *Heartbeat) Beat(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()

	err := h.store.Ping(ctx)
	ok := err == nil
	changed := h.healthy == nil || *h.healthy != ok
	h.healthy = &ok

	switch {
	case ok && changed:
		slog.Info("store reachable", "store", h.store.Name())
	case !ok && changed:
		slog.Warn("store unreachable", "store", h.store.Name(), "error", err)
	default:
		slog.Debug("store heartbeat", "store", h.store.Name(), "ok", ok)
	}
	return ok
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug(msg, append([]interface{}{"component", "cron"}, keysAndValues...)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error(msg, append([]interface{}{"component", "cron", "error", err}, keysAndValues...)...)
}
