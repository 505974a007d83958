package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. Adapter outages degrade the
// service rather than failing it: the fallback route still answers.
type Service struct {
	db       DBPinger
	document AdapterChecker
	web      AdapterChecker
}

// New creates a Service. document and web can be nil.
func New(db DBPinger, document, web AdapterChecker) *Service {
	return &Service{db: db, document: document, web: web}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["cache"] = CheckError
	} else {
		checks["cache"] = CheckOK
	}

	if s.document != nil {
		if err := s.document.HealthCheck(ctx); err != nil {
			checks["document_search"] = CheckError
		} else {
			checks["document_search"] = CheckOK
		}
	}

	if s.web != nil {
		if err := s.web.HealthCheck(ctx); err != nil {
			checks["web_search"] = CheckError
		} else {
			checks["web_search"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
