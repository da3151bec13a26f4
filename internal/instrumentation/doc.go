// Package instrumentation provides OpenTelemetry instrumentation for stalebot.
//
// A triage run is a short batch job, so besides the usual exporters the
// package can push the run's metrics to a Prometheus Pushgateway when the
// run ends.
//
// # Metrics
//
// Triage Metrics:
//   - stalebot_issues_evaluated_total: Counter of classified issues by action and reason
//   - stalebot_actions_total: Counter of close/stale-warning actions by action, status, dry_run
//   - stalebot_run_duration_seconds: Histogram of run durations by status
//
// GitHub API Metrics:
//   - github_api_operations_total: Counter of GitHub API operations by operation and status
//   - github_api_operation_duration_seconds: Histogram of GitHub API operation durations
//
// # Tracing
//
// Spans are created for:
//   - the whole run (triage.run)
//   - each issue (triage.issue)
//   - GitHub API calls (github.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: stalebot)
//   - PUSHGATEWAY_URL: Pushgateway receiving the run's metrics (default: disabled)
//   - AUDIT_LOGGING_ENABLED: Log one record per mutation (default: true)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordGitHubAPIOperation(ctx, instrumentation.OperationListIssues, "success", time.Since(start))
//
//	// at the end of the run
//	if err := provider.Push(ctx); err != nil {
//		slog.Warn("push failed", "error", err)
//	}
package instrumentation
