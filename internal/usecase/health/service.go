package health

import (
	"context"
	"slices"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure: some pages have no data.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Missing []string // configured sources with no stored collection
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	sources SourceLister
	want    []string
}

// New creates a Service. sources can be nil, in which case only the store is checked.
// want lists the sources the configured pages read.
func New(db DBPinger, sources SourceLister, want []string) *Service {
	return &Service{db: db, sources: sources, want: want}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	if s.sources == nil {
		return Report{Status: Healthy, Checks: checks}
	}

	stored, err := s.sources.Sources(ctx)
	if err != nil {
		checks["records"] = CheckError
		return Report{Status: Degraded, Checks: checks}
	}

	var missing []string
	for _, w := range s.want {
		if !slices.Contains(stored, w) && !slices.Contains(missing, w) {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		checks["records"] = CheckError
		return Report{Status: Degraded, Checks: checks, Missing: missing}
	}
	checks["records"] = CheckOK
	return Report{Status: Healthy, Checks: checks}
}
