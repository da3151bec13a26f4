package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrAction    = "action"
	attrReason    = "reason"
	attrDryRun    = "dry_run"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a valid no-op recorder.
type Metrics struct {
	// Triage metrics
	issuesEvaluatedTotal metric.Int64Counter
	actionsTotal         metric.Int64Counter
	runDuration          metric.Float64Histogram

	// GitHub API metrics
	githubAPIOperationsTotal   metric.Int64Counter
	githubAPIOperationDuration metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.issuesEvaluatedTotal, err = meter.Int64Counter(
		"stalebot_issues_evaluated_total",
		metric.WithDescription("Total number of issues classified"),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stalebot_issues_evaluated_total counter: %w", err)
	}

	m.actionsTotal, err = meter.Int64Counter(
		"stalebot_actions_total",
		metric.WithDescription("Total number of close and stale-warning actions"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stalebot_actions_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"stalebot_run_duration_seconds",
		metric.WithDescription("Duration of a full triage run in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 15, 30, 60, 120, 300, 600, 1800),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stalebot_run_duration_seconds histogram: %w", err)
	}

	m.githubAPIOperationsTotal, err = meter.Int64Counter(
		"github_api_operations_total",
		metric.WithDescription("Total number of GitHub API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create github_api_operations_total counter: %w", err)
	}

	m.githubAPIOperationDuration, err = meter.Float64Histogram(
		"github_api_operation_duration_seconds",
		metric.WithDescription("GitHub API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create github_api_operation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordEvaluation records the classification of one issue.
func (m *Metrics) RecordEvaluation(ctx context.Context, action, reason string) {
	if m.issuesEvaluatedTotal == nil {
		return // Instrumentation not initialized
	}

	m.issuesEvaluatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrReason, reason),
	))
}

// RecordAction records a close or stale-warning action.
//
// Parameters:
//   - action: "close" or "mark_stale"
//   - status: Result status ("success" or "error")
//   - dryRun: whether the action was only simulated
func (m *Metrics) RecordAction(ctx context.Context, action, status string, dryRun bool) {
	if m.actionsTotal == nil {
		return // Instrumentation not initialized
	}

	m.actionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrStatus, status),
		attribute.String(attrDryRun, strconv.FormatBool(dryRun)),
	))
}

// RecordRun records the duration and outcome of a triage run.
func (m *Metrics) RecordRun(ctx context.Context, status string, duration time.Duration) {
	if m.runDuration == nil {
		return // Instrumentation not initialized
	}

	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}

// RecordGitHubAPIOperation records a GitHub API operation with operation,
// status, and duration.
//
// Parameters:
//   - operation: Operation type (list_issues, list_comments, close_issue, ...)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGitHubAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.githubAPIOperationsTotal == nil || m.githubAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.githubAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.githubAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
