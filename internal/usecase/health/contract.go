package health

import "context"

// DBPinger checks cache store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AdapterChecker checks a search adapter's availability.
type AdapterChecker interface {
	HealthCheck(ctx context.Context) error
}
