package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockStore struct {
	err error
}

func (m *mockStore) Ping(_ context.Context) error { return m.err }

type mockProvider struct {
	err         error
	hasDeadline bool
}

func (m *mockProvider) HealthCheck(ctx context.Context) error {
	_, m.hasDeadline = ctx.Deadline()
	return m.err
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	p := &mockProvider{}
	r := New(&mockStore{}, p).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["store"] != CheckOK || r.Checks["provider"] != CheckOK {
		t.Errorf("checks = %v", r.Checks)
	}
	if !p.hasDeadline {
		t.Error("checks must run with a deadline")
	}
}

func TestCheck_StoreDown(t *testing.T) {
	r := New(&mockStore{err: errors.New("conn refused")}, &mockProvider{}).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["store"] != CheckError {
		t.Errorf("expected store %q, got %q", CheckError, r.Checks["store"])
	}
}

func TestCheck_ProviderDown(t *testing.T) {
	r := New(&mockStore{}, &mockProvider{err: errors.New("401")}).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["provider"] != CheckError {
		t.Errorf("expected provider %q, got %q", CheckError, r.Checks["provider"])
	}
}

func TestCheck_NoProvider(t *testing.T) {
	r := New(&mockStore{}, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["provider"] != CheckSkipped {
		t.Errorf("expected provider %q, got %q", CheckSkipped, r.Checks["provider"])
	}
}

func TestCheck_Timeout(t *testing.T) {
	svc := New(&blockingStore{}, nil)
	svc.timeout = 10 * time.Millisecond

	r := svc.Check(context.Background())
	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

type blockingStore struct{}

func (blockingStore) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
