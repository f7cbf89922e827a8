package agentd

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/solana-keyring/keyring/internal/store"
)

func newTestServer(t *testing.T, lockTimeout time.Duration) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "keyring.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Initialize([]byte("pp")); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	socketPath := filepath.Join(dir, "agent.sock")
	srv := NewServer(st, Config{SocketPath: socketPath, LockTimeout: lockTimeout, Log: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx)
	waitForSocket(t, socketPath)
	t.Cleanup(cancel)
	return srv, socketPath
}

func waitForSocket(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("unix", path, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("agent socket %s never became ready", path)
}

func TestAgentLockOnIdle(t *testing.T) {
	srv, _ := newTestServer(t, 200*time.Millisecond)

	if srv.state.IsUnlocked() {
		t.Fatal("expected agent to start locked")
	}
	srv.state.unlock([]byte("pp"))
	if !srv.state.IsUnlocked() {
		t.Fatal("expected unlocked immediately after unlock")
	}

	time.Sleep(400 * time.Millisecond)
	srv.state.checkIdle()
	if srv.state.IsUnlocked() {
		t.Fatal("expected agent to relock after idle timeout")
	}
}

func TestFramingRejectsOutOfRangeLength(t *testing.T) {
	_, socketPath := newTestServer(t, time.Minute)

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// 0x7FFFFFFF as a 4-byte big-endian length prefix, no body.
	if _, err := conn.Write([]byte{0x7F, 0xFF, 0xFF, 0xFF}); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 1)
	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	if _, err := conn.Read(buf); err == nil {
		t.Fatal("expected connection to be closed without a response")
	}
}
