// Package otel provides OpenTelemetry setup, metrics, and HTTP
// instrumentation for TaskBridge.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskbridge"

// Metrics holds all TaskBridge metric instruments.
type Metrics struct {
	SyncsStarted   metric.Int64Counter
	SyncsCompleted metric.Int64Counter
	SyncsFailed    metric.Int64Counter
	OpsExecuted    metric.Int64Counter
	OpsFailed      metric.Int64Counter
	ConflictsFound metric.Int64Counter
	SyncDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.SyncsStarted, err = meter.Int64Counter("taskbridge.syncs.started",
		metric.WithDescription("Number of sync passes started"))
	if err != nil {
		return nil, err
	}

	m.SyncsCompleted, err = meter.Int64Counter("taskbridge.syncs.completed",
		metric.WithDescription("Number of sync passes completed successfully"))
	if err != nil {
		return nil, err
	}

	m.SyncsFailed, err = meter.Int64Counter("taskbridge.syncs.failed",
		metric.WithDescription("Number of sync passes that failed"))
	if err != nil {
		return nil, err
	}

	m.OpsExecuted, err = meter.Int64Counter("taskbridge.operations.executed",
		metric.WithDescription("Number of sync operations applied"))
	if err != nil {
		return nil, err
	}

	m.OpsFailed, err = meter.Int64Counter("taskbridge.operations.failed",
		metric.WithDescription("Number of sync operations that failed"))
	if err != nil {
		return nil, err
	}

	m.ConflictsFound, err = meter.Int64Counter("taskbridge.conflicts.detected",
		metric.WithDescription("Number of field conflicts detected"))
	if err != nil {
		return nil, err
	}

	m.SyncDuration, err = meter.Float64Histogram("taskbridge.sync.duration_seconds",
		metric.WithDescription("Sync pass duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
