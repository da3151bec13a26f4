package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithRepo("huggingface", "accelerate").
		WithIssue(42).
		WithPage(3).
		Build()

	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrRepo] != "huggingface/accelerate" {
		t.Errorf("expected repo 'huggingface/accelerate', got %v", attrMap[SpanAttrRepo])
	}
	if attrMap[SpanAttrIssue] != int64(42) {
		t.Errorf("expected issue 42, got %v", attrMap[SpanAttrIssue])
	}
	if attrMap[SpanAttrPage] != int64(3) {
		t.Errorf("expected page 3, got %v", attrMap[SpanAttrPage])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithRepo("", "accelerate").
		WithIssue(0).
		WithPage(0).
		Build()

	if len(attrs) != 0 {
		t.Errorf("expected no attributes, got %d", len(attrs))
	}
}

// withRecorder installs an in-memory span recorder as the global tracer provider.
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartGitHubAPISpan(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartGitHubAPISpan(context.Background(), OperationCloseIssue, NewSpanAttributeBuilder().WithIssue(7).Build()...)
	if GetTraceID(ctx) == "" {
		t.Error("expected a trace id inside the span")
	}
	if GetSpanID(ctx) == "" {
		t.Error("expected a span id inside the span")
	}
	SetSpanError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	if ended[0].Name() != "github.close_issue" {
		t.Errorf("expected span name 'github.close_issue', got %q", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", ended[0].Status().Code)
	}
}

func TestStartIssueSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartIssueSpan(context.Background(), 12)
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	if ended[0].Name() != "triage.issue" {
		t.Errorf("expected span name 'triage.issue', got %q", ended[0].Name())
	}
	found := false
	for _, attr := range ended[0].Attributes() {
		if string(attr.Key) == SpanAttrIssue && attr.Value.AsInt64() == 12 {
			found = true
		}
	}
	if !found {
		t.Error("expected issue number attribute on span")
	}
}

func TestSetSpanError_Nil(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartSpan(context.Background(), "test")
	SetSpanError(span, nil)
	span.End()

	if got := recorder.Ended()[0].Status().Code; got != codes.Unset {
		t.Errorf("expected unset status for nil error, got %v", got)
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("expected empty span id, got %q", id)
	}
}
