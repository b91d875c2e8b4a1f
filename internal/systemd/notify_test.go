package systemd

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func newTestNotifier() *Notifier {
	return NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotifyWithoutSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	if newTestNotifier().Ready() {
		t.Error("Ready() reported delivery without NOTIFY_SOCKET")
	}
}

func TestNotifyMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Skipf("unixgram sockets unavailable: %v", err)
	}
	defer conn.Close()
	t.Setenv("NOTIFY_SOCKET", path)

	n := newTestNotifier()
	tests := []struct {
		send func() bool
		want string
	}{
		{n.Ready, "READY=1"},
		{func() bool { return n.Status("peak %.1fC", 36.6) }, "STATUS=peak 36.6C"},
		{n.Stopping, "STOPPING=1"},
	}

	buf := make([]byte, 256)
	for _, tt := range tests {
		if !tt.send() {
			t.Fatalf("%s not delivered", tt.want)
		}
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		k, err := conn.Read(buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got := string(buf[:k]); got != tt.want {
			t.Errorf("message = %q, want %q", got, tt.want)
		}
	}
}

func TestWatchdogDisabled(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	done := make(chan struct{})
	go func() {
		newTestNotifier().Watchdog(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watchdog() blocked without a configured watchdog")
	}
}
