// Package health reports whether the vector store and the AI provider are reachable.
package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means notes can be browsed but new captures will fail.
	Degraded Status = "degraded"
	// Unhealthy means the vector store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckSkipped means the component has no credential to check with.
	CheckSkipped CheckResult = "skipped"
)

const (
	componentStore    = "store"
	componentProvider = "provider"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	provider ProviderChecker
	timeout  time.Duration
}

// New creates a Service. provider can be nil when no server-wide credential is configured.
func New(store StorePinger, provider ProviderChecker) *Service {
	return &Service{store: store, provider: provider, timeout: 5 * time.Second}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	checks := map[string]CheckResult{
		componentStore:    result(s.store.Ping(ctx)),
		componentProvider: CheckSkipped,
	}
	if s.provider != nil {
		checks[componentProvider] = result(s.provider.HealthCheck(ctx))
	}

	status := Healthy
	switch {
	case checks[componentStore] == CheckError:
		status = Unhealthy
	case checks[componentProvider] == CheckError:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
