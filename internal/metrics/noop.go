package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordAuthAttempt(method string, success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordLogin(outcome string)                                            {}
func (n *NoopMetrics) RecordExternalAPICall(operation string, duration time.Duration)        {}
func (n *NoopMetrics) RecordUserSync(action string)                                          {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)                             {}
func (n *NoopMetrics) SetUsersCount(realm string, count int)                                 {}
