// Package qdrant opens connections to the Qdrant vector database over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// DefaultPort is the Qdrant gRPC port.
const DefaultPort = 6334

// Config holds connection parameters for a Qdrant server.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// HealthChecker is the subset of the client used for readiness probing.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
}

// NewClient dials Qdrant with the given config.
func NewClient(cfg Config) (*qdrant.Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return client, nil
}

// Ping performs a single health check.
func Ping(ctx context.Context, c HealthChecker) error {
	if _, err := c.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// WaitForReady polls the health endpoint until Qdrant responds or timeout expires.
func WaitForReady(ctx context.Context, c HealthChecker, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if Ping(ctx, c) == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for qdrant: %w", ctx.Err())
		case <-ticker.C:
			if err := Ping(ctx, c); err == nil {
				return nil
			}
		}
	}
}
