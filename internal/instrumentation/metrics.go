package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus         = "status"
	attrOperation      = "operation"
	attrService        = "service"
	attrTool           = "tool"
	attrAttachmentKind = "attachment_kind"
	attrErrorKind      = "error_kind"
	attrMatchStrategy  = "match_strategy"
	attrCourse         = "course_id"
)

// Metrics records grader metrics. The zero value is a valid no-op recorder.
type Metrics struct {
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	extractionsTotal     metric.Int64Counter
	extractionDuration   metric.Float64Histogram
	formMatchesTotal     metric.Int64Counter
	submissionsTotal     metric.Int64Counter
	feedbackTotal        metric.Int64Counter
	feedbackDuration     metric.Float64Histogram
	emailsTotal          metric.Int64Counter
	gradeWritesTotal     metric.Int64Counter
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels adds course identifiers to submission metrics
	detailedLabels bool
}

// NewMetrics creates all grader instruments on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error
	counter := func(dst *metric.Int64Counter, name, desc, unit string) {
		if err != nil {
			return
		}
		*dst, err = meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			err = fmt.Errorf("failed to create %s counter: %w", name, err)
		}
	}
	histogram := func(dst *metric.Float64Histogram, name, desc string, bounds ...float64) {
		if err != nil {
			return
		}
		*dst, err = meter.Float64Histogram(name,
			metric.WithDescription(desc),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(bounds...),
		)
		if err != nil {
			err = fmt.Errorf("failed to create %s histogram: %w", name, err)
		}
	}

	apiBuckets := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

	counter(&m.googleAPIOperationsTotal, "grader_google_api_operations_total",
		"Total number of Google API operations", "{operation}")
	histogram(&m.googleAPIOperationDuration, "grader_google_api_operation_duration_seconds",
		"Google API operation duration in seconds", apiBuckets...)
	counter(&m.extractionsTotal, "grader_extractions_total",
		"Attachment extractions by attachment kind, status and error kind", "{attachment}")
	histogram(&m.extractionDuration, "grader_extraction_duration_seconds",
		"Attachment extraction duration in seconds", apiBuckets...)
	counter(&m.formMatchesTotal, "grader_form_response_matches_total",
		"Form response matches by strategy", "{match}")
	counter(&m.submissionsTotal, "grader_submissions_processed_total",
		"Submissions processed by outcome", "{submission}")
	counter(&m.feedbackTotal, "grader_feedback_generations_total",
		"AI feedback generations by status", "{generation}")
	histogram(&m.feedbackDuration, "grader_feedback_generation_duration_seconds",
		"AI feedback generation duration in seconds", 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0)
	counter(&m.emailsTotal, "grader_emails_sent_total",
		"Feedback emails by status", "{email}")
	counter(&m.gradeWritesTotal, "grader_grade_writes_total",
		"Grade patches and submission returns by operation and status", "{write}")
	counter(&m.toolInvocationsTotal, "grader_mcp_tool_invocations_total",
		"Total number of MCP tool invocations", "{invocation}")
	histogram(&m.toolDuration, "grader_mcp_tool_duration_seconds",
		"MCP tool execution duration in seconds", apiBuckets...)

	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordGoogleAPIOperation records a Google API call.
//
// Parameters:
//   - service: Google service name (classroom, drive, docs, forms, gmail, gemini)
//   - operation: Operation type (list, get, export, download, patch, send, ...)
//   - status: "success" or "error"
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordExtraction records one attachment extraction. errorKind is empty on success.
func (m *Metrics) RecordExtraction(ctx context.Context, attachmentKind, errorKind string, duration time.Duration) {
	if m == nil || m.extractionsTotal == nil {
		return
	}

	status := StatusSuccess
	if errorKind != "" {
		status = StatusError
	} else {
		errorKind = "none"
	}

	attrs := metric.WithAttributes(
		attribute.String(attrAttachmentKind, attachmentKind),
		attribute.String(attrStatus, status),
		attribute.String(attrErrorKind, errorKind),
	)
	m.extractionsTotal.Add(ctx, 1, attrs)
	m.extractionDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordFormMatch records which strategy selected the form responses of a submission.
func (m *Metrics) RecordFormMatch(ctx context.Context, strategy string) {
	if m == nil || m.formMatchesTotal == nil {
		return
	}
	m.formMatchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrMatchStrategy, strategy)))
}

// RecordSubmission records the processing outcome of one submission.
func (m *Metrics) RecordSubmission(ctx context.Context, courseID, status string) {
	if m == nil || m.submissionsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String(attrStatus, status)}
	if m.detailedLabels && courseID != "" {
		attrs = append(attrs, attribute.String(attrCourse, courseID))
	}
	m.submissionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFeedback records one AI feedback generation.
func (m *Metrics) RecordFeedback(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.feedbackTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.feedbackTotal.Add(ctx, 1, attrs)
	m.feedbackDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEmail records one feedback email attempt ("success", "error" or "skipped").
func (m *Metrics) RecordEmail(ctx context.Context, status string) {
	if m == nil || m.emailsTotal == nil {
		return
	}
	m.emailsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordGradeWrite records a grade patch or submission return.
func (m *Metrics) RecordGradeWrite(ctx context.Context, operation, status string) {
	if m == nil || m.gradeWritesTotal == nil {
		return
	}
	m.gradeWritesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	))
}

// RecordToolInvocation records an MCP tool invocation.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
