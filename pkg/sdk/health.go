package unidash

import (
	"context"

	healthuc "github.com/kailas-cloud/unidash/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status  string            // "ok", "degraded", "error"
	Checks  map[string]string // component -> "ok"/"error"
	Missing []string          // page sources with no stored collection
}

// Health checks the store and that every page source is stored.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:  string(report.Status),
		Checks:  checks,
		Missing: report.Missing,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
