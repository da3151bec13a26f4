package stale

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/stalebot/internal/instrumentation"
	"github.com/teemow/stalebot/internal/logging"
)

// Summary counts what a run did.
type Summary struct {
	Evaluated int
	Closed    int
	Marked    int
	Skipped   int
}

// Triager applies a Policy to every open issue of a Tracker.
type Triager struct {
	tracker Tracker
	policy  Policy
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
	now     func() time.Time
	dryRun  bool
	repo    string
}

// Option configures a Triager.
type Option func(*Triager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Triager) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(t *Triager) {
		if m != nil {
			t.metrics = m
		}
	}
}

// WithAuditLogger sets the audit logger that records every mutation.
func WithAuditLogger(a *instrumentation.AuditLogger) Option {
	return func(t *Triager) {
		if a != nil {
			t.audit = a
		}
	}
}

// WithClock overrides the wall clock. The clock is read once per issue.
func WithClock(now func() time.Time) Option {
	return func(t *Triager) {
		if now != nil {
			t.now = now
		}
	}
}

// WithDryRun makes the triager log and count decisions without acting on them.
func WithDryRun(dryRun bool) Option {
	return func(t *Triager) {
		t.dryRun = dryRun
	}
}

// WithRepo sets the repository name used in logs and audit records.
func WithRepo(repo string) Option {
	return func(t *Triager) {
		t.repo = repo
	}
}

// NewTriager creates a Triager.
func NewTriager(tracker Tracker, policy Policy, opts ...Option) *Triager {
	t := &Triager{
		tracker: tracker,
		policy:  policy,
		logger:  slog.Default(),
		metrics: &instrumentation.Metrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.audit == nil {
		t.audit = instrumentation.NewAuditLogger(t.logger)
	}
	if t.repo != "" {
		t.logger = logging.WithRepo(t.logger, t.repo)
	}
	return t
}

// Run evaluates every open issue once, in listing order. The first tracker
// error stops the run; issues after the failing one are left untouched.
func (t *Triager) Run(ctx context.Context) (Summary, error) {
	ctx, span := instrumentation.StartSpan(ctx, "triage.run",
		attribute.String(instrumentation.SpanAttrRepo, t.repo),
		attribute.Bool(instrumentation.SpanAttrDryRun, t.dryRun),
	)
	defer span.End()

	start := time.Now()
	var summary Summary
	err := t.tracker.ForeachOpenIssue(ctx, func(issue *Issue) error {
		action, err := t.process(ctx, issue)
		if err != nil {
			return err
		}
		summary.Evaluated++
		switch action {
		case ActionClose:
			summary.Closed++
		case ActionMarkStale:
			summary.Marked++
		default:
			summary.Skipped++
		}
		return nil
	})

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	t.metrics.RecordRun(ctx, status, time.Since(start))

	t.logger.Info("triage finished",
		slog.Int("evaluated", summary.Evaluated),
		slog.Int("closed", summary.Closed),
		slog.Int("marked_stale", summary.Marked),
		slog.Int("skipped", summary.Skipped),
		slog.Bool("dry_run", t.dryRun),
		logging.Status(status),
		logging.Err(err),
	)
	if err != nil {
		return summary, fmt.Errorf("triage %s: %w", t.repo, err)
	}
	return summary, nil
}

// Evaluate fetches the comments of the issue and classifies it without acting.
// Closed issues are classified without fetching their comments.
func (t *Triager) Evaluate(ctx context.Context, issue *Issue) (Decision, error) {
	if issue.Closed() {
		return t.policy.Classify(t.now(), issue), nil
	}
	comments, err := t.tracker.ListComments(ctx, issue.Number)
	if err != nil {
		return Decision{}, fmt.Errorf("list comments: %w", err)
	}
	issue.Comments = comments
	return t.policy.Classify(t.now(), issue), nil
}

func (t *Triager) process(ctx context.Context, issue *Issue) (Action, error) {
	ctx, span := instrumentation.StartIssueSpan(ctx, issue.Number)
	defer span.End()

	decision, err := t.Evaluate(ctx, issue)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return ActionNone, fmt.Errorf("issue #%d: %w", issue.Number, err)
	}
	span.SetAttributes(attribute.String(instrumentation.SpanAttrAction, string(decision.Action)))
	t.metrics.RecordEvaluation(ctx, string(decision.Action), decision.Reason)

	logger := t.logger.With(logging.Issue(issue.Number))
	logger.Debug("issue classified",
		logging.Action(string(decision.Action)),
		logging.Reason(decision.Reason),
		slog.Bool("pull_request", issue.IsPullRequest),
	)

	if decision.Action == ActionNone {
		return ActionNone, nil
	}
	if err := t.act(ctx, issue, decision.Action); err != nil {
		instrumentation.SetSpanError(span, err)
		return decision.Action, fmt.Errorf("issue #%d: %w", issue.Number, err)
	}
	instrumentation.SetSpanSuccess(span)
	logger.Info("issue triaged",
		logging.Action(string(decision.Action)),
		logging.Reason(decision.Reason),
		slog.Bool("dry_run", t.dryRun),
	)
	return decision.Action, nil
}

func (t *Triager) act(ctx context.Context, issue *Issue, action Action) error {
	rec := instrumentation.NewActionRecord(t.repo, issue.Number, string(action)).
		WithDryRun(t.dryRun).
		WithSpanContext(ctx)

	var err error
	if !t.dryRun {
		switch action {
		case ActionClose:
			if err = t.tracker.CloseIssue(ctx, issue.Number); err != nil {
				err = fmt.Errorf("close: %w", err)
			}
		case ActionMarkStale:
			if err = t.tracker.CreateComment(ctx, issue.Number, t.policy.WarningText); err != nil {
				err = fmt.Errorf("mark stale: %w", err)
			}
		}
	}

	if err != nil {
		rec.CompleteWithError(err)
	} else {
		rec.CompleteSuccess()
	}
	t.audit.LogAction(rec)
	t.metrics.RecordAction(ctx, string(action), rec.Status(), t.dryRun)
	return err
}
