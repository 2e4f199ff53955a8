package binance

import (
	"context"
	"testing"
	"time"

	applogger "SigFuse/pkg/logger"
)

func testStreamLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestPingLoopEndsWithReadSession(t *testing.T) {
	s := NewStream("wss://example.invalid", nil, time.Minute, testStreamLogger(t))

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		s.pingLoop(context.Background(), done)
		close(exited)
	}()

	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("ping loop kept running after read session ended")
	}
}

func TestPingLoopEndsOnContextCancel(t *testing.T) {
	s := NewStream("wss://example.invalid", nil, time.Minute, testStreamLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan struct{})
	go func() {
		s.pingLoop(ctx, make(chan struct{}))
		close(exited)
	}()

	cancel()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("ping loop kept running after cancellation")
	}
}
