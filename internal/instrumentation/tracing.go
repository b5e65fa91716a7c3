package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name used for all grader spans.
const TracerName = "github.com/FreeMarketamilitia/classroom-grader"

// Span attribute keys.
const (
	SpanAttrTool           = "mcp.tool"
	SpanAttrToolError      = "mcp.tool_error"
	SpanAttrAccount        = "google.account"
	SpanAttrService        = "google.service"
	SpanAttrOperation      = "google.operation"
	SpanAttrResourceID     = "google.resource_id"
	SpanAttrCourseID       = "classroom.course_id"
	SpanAttrCourseWorkID   = "classroom.coursework_id"
	SpanAttrSubmissionID   = "classroom.submission_id"
	SpanAttrAttachmentKind = "extract.attachment_kind"
	SpanAttrAttachments    = "extract.attachment_count"
	SpanAttrErrorKind      = "extract.error_kind"
)

// SpanAttributeBuilder helps construct span attributes with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 6)}
}

// WithSubmission adds course, coursework and submission identifiers, skipping empty ones.
func (b *SpanAttributeBuilder) WithSubmission(courseID, courseWorkID, submissionID string) *SpanAttributeBuilder {
	for _, kv := range []struct{ key, value string }{
		{SpanAttrCourseID, courseID},
		{SpanAttrCourseWorkID, courseWorkID},
		{SpanAttrSubmissionID, submissionID},
	} {
		if kv.value != "" {
			b.attrs = append(b.attrs, attribute.String(kv.key, kv.value))
		}
	}
	return b
}

// WithAttachmentKind adds the attachment kind attribute.
func (b *SpanAttributeBuilder) WithAttachmentKind(kind string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrAttachmentKind, kind))
	return b
}

// WithResourceID adds the Google resource identifier (file, form or document ID).
func (b *SpanAttributeBuilder) WithResourceID(id string) *SpanAttributeBuilder {
	if id != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceID, id))
	}
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller ends the span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a server span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartGoogleAPISpan starts a client span named google.<service>.<operation>.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on the span and marks it failed. nil is ignored.
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

// AddSpanEvent adds an event to the span.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID of the span in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
