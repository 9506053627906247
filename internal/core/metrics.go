package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Authentication
	RecordAuthAttempt(method string, success bool, duration time.Duration)
	RecordLogin(outcome string)
	RecordExternalAPICall(operation string, duration time.Duration)

	// User directory
	RecordUserSync(action string)
	RecordDatabaseQueryError(operation string)
	SetUsersCount(realm string, count int)
}
