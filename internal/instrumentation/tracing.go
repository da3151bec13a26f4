package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the stalebot package.
const TracerName = "github.com/teemow/stalebot"

// Span attribute keys.
const (
	// SpanAttrRepo is the owner/name of the triaged repository.
	SpanAttrRepo = "github.repo"

	// SpanAttrOperation is the GitHub API operation.
	SpanAttrOperation = "github.operation"

	// SpanAttrIssue is the issue number.
	SpanAttrIssue = "github.issue.number"

	// SpanAttrPage is the page of a paginated listing.
	SpanAttrPage = "github.page"

	// SpanAttrAction is the triage decision for an issue.
	SpanAttrAction = "triage.action"

	// SpanAttrDryRun indicates that mutations are simulated.
	SpanAttrDryRun = "triage.dry_run"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 4),
	}
}

// WithRepo adds the repository attribute.
func (b *SpanAttributeBuilder) WithRepo(owner, repo string) *SpanAttributeBuilder {
	if owner != "" && repo != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrRepo, owner+"/"+repo))
	}
	return b
}

// WithIssue adds the issue number attribute. Zero is skipped.
func (b *SpanAttributeBuilder) WithIssue(number int) *SpanAttributeBuilder {
	if number > 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrIssue, number))
	}
	return b
}

// WithPage adds the page attribute. Zero is skipped.
func (b *SpanAttributeBuilder) WithPage(page int) *SpanAttributeBuilder {
	if page > 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrPage, page))
	}
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartIssueSpan starts a span covering the evaluation of one issue.
func StartIssueSpan(ctx context.Context, number int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.Int(SpanAttrIssue, number))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "triage.issue",
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartGitHubAPISpan starts a client span for a GitHub API operation.
func StartGitHubAPISpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrOperation, operation))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "github."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}
