package app

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
)

// TestServe_ListenerFailure checks that a server which fails on its own, without
// a cancelled context, still stops the heartbeat scheduler.
//
// WHY: A scheduler left running after Serve returns keeps pinging a closed store
// for the lifetime of the process.
func TestServe_ListenerFailure(t *testing.T) {
	t.Setenv("STORE_BACKEND", config.BackendSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "portfolio.db"))
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "0")
	t.Setenv("IDENTITY_MODE", config.IdentityHash)
	t.Setenv("STORE_HEARTBEAT", "@every 5m")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	done := make(chan error, 1)
	go func() { done <- a.Serve(context.Background(), ln) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected Serve to return when the listener fails")
	}
	assert.False(t, a.scheduler.Running(), "Expected scheduler to be stopped")
}
