package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ActionRecord captures one mutation the bot performed (or simulated in dry
// run) on an issue. Every close and every stale warning produces exactly one
// record, which makes the audit stream a complete history of what the bot
// changed in the repository.
type ActionRecord struct {
	Repo   string
	Issue  int
	Action string
	DryRun bool

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewActionRecord creates a new ActionRecord with timing started.
// Call Complete() when the mutation finishes.
func NewActionRecord(repo string, issue int, action string) *ActionRecord {
	return &ActionRecord{
		Repo:      repo,
		Issue:     issue,
		Action:    action,
		StartTime: time.Now(),
	}
}

// WithDryRun marks the record as simulated.
func (r *ActionRecord) WithDryRun(dryRun bool) *ActionRecord {
	r.DryRun = dryRun
	return r
}

// WithSpanContext extracts trace context from the current span.
func (r *ActionRecord) WithSpanContext(ctx context.Context) *ActionRecord {
	r.TraceID = GetTraceID(ctx)
	r.SpanID = GetSpanID(ctx)
	return r
}

// Complete marks the action as completed and calculates duration.
func (r *ActionRecord) Complete(success bool, err error) *ActionRecord {
	r.Duration = time.Since(r.StartTime)
	r.Success = success
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// CompleteWithError marks the action as failed with the given error.
func (r *ActionRecord) CompleteWithError(err error) *ActionRecord {
	return r.Complete(false, err)
}

// CompleteSuccess marks the action as successful.
func (r *ActionRecord) CompleteSuccess() *ActionRecord {
	return r.Complete(true, nil)
}

// Status returns "success" or "error" based on the Success field.
func (r *ActionRecord) Status() string {
	if r.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
func (r *ActionRecord) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("repo", r.Repo),
		slog.Int("issue", r.Issue),
		slog.String("action", r.Action),
		slog.Bool("dry_run", r.DryRun),
		slog.Duration("duration", r.Duration),
		slog.Bool("success", r.Success),
	}

	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", r.SpanID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}

	return attrs
}

// AuditLogger writes one structured entry per ActionRecord.
type AuditLogger struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	al := NewAuditLogger(logger)
	al.enabled = config.Enabled
	return al
}

// LogAction logs the record at info level on success and warn level on failure.
func (al *AuditLogger) LogAction(r *ActionRecord) {
	if !al.enabled {
		return
	}

	attrs := r.LogAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if r.Success {
		al.logger.Info("action_performed", args...)
	} else {
		al.logger.Warn("action_failed", args...)
	}
}
