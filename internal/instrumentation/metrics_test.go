package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newMetricsTestProvider(t *testing.T) *Provider {
	t.Helper()
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestMetrics_RecordEvaluation(t *testing.T) {
	ctx := context.Background()
	metrics := newMetricsTestProvider(t).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordEvaluation(ctx, "close", "stale_warning_expired")
	metrics.RecordEvaluation(ctx, "no_action", "exempt_label")
}

func TestMetrics_RecordAction(t *testing.T) {
	ctx := context.Background()
	metrics := newMetricsTestProvider(t).Metrics()

	// Should not panic
	metrics.RecordAction(ctx, "mark_stale", StatusSuccess, false)
	metrics.RecordAction(ctx, "close", StatusError, true)
}

func TestMetrics_RecordRun(t *testing.T) {
	ctx := context.Background()
	metrics := newMetricsTestProvider(t).Metrics()

	// Should not panic
	metrics.RecordRun(ctx, StatusSuccess, 42*time.Second)
}

func TestMetrics_RecordGitHubAPIOperation(t *testing.T) {
	ctx := context.Background()
	metrics := newMetricsTestProvider(t).Metrics()

	// Should not panic
	metrics.RecordGitHubAPIOperation(ctx, OperationListIssues, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGitHubAPIOperation(ctx, OperationCloseIssue, StatusError, 500*time.Millisecond)
}

func TestMetrics_ZeroValueIsNoop(t *testing.T) {
	ctx := context.Background()
	m := &Metrics{}

	// None of these should panic on an uninitialized recorder
	m.RecordEvaluation(ctx, "close", "stale_warning_expired")
	m.RecordAction(ctx, "close", StatusSuccess, false)
	m.RecordRun(ctx, StatusSuccess, time.Second)
	m.RecordGitHubAPIOperation(ctx, OperationGetIssue, StatusSuccess, time.Millisecond)
}

func TestMetrics_DisabledProvider(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected no-op metrics for disabled provider")
	}
	metrics.RecordRun(context.Background(), StatusSuccess, time.Second)
}
