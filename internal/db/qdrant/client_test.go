package qdrant

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

type mockHealth struct {
	calls    atomic.Int32
	failures int32
}

func (m *mockHealth) HealthCheck(_ context.Context) (*qdrant.HealthCheckReply, error) {
	if m.calls.Add(1) <= m.failures {
		return nil, errors.New("unavailable")
	}
	return &qdrant.HealthCheckReply{Title: "qdrant", Version: "1.17.0"}, nil
}

func TestNewClient_RequiresHost(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty host")
	}
}

func TestPing(t *testing.T) {
	if err := Ping(context.Background(), &mockHealth{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Ping(context.Background(), &mockHealth{failures: 1}); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForReady_RecoversAfterFailures(t *testing.T) {
	h := &mockHealth{failures: 2}
	if err := WaitForReady(context.Background(), h, 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.calls.Load(); got != 3 {
		t.Errorf("health checks = %d, want 3", got)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	h := &mockHealth{failures: 1 << 30}
	err := WaitForReady(context.Background(), h, 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
