// Package instrumentation provides OpenTelemetry instrumentation for
// classroom-grader.
//
// It covers:
//   - OpenTelemetry metrics for Google API calls, attachment extraction,
//     feedback generation and writes to student records
//   - Distributed tracing for submission processing and API calls
//   - Prometheus metrics export via /metrics on a dedicated port
//   - An audit trail for grade patches, submission returns and feedback emails
//
// # Metrics
//
// Google API Metrics:
//   - grader_google_api_operations_total: by service, operation, status
//   - grader_google_api_operation_duration_seconds
//
// Extraction Metrics:
//   - grader_extractions_total: by attachment_kind, status, error_kind
//   - grader_extraction_duration_seconds
//   - grader_form_response_matches_total: by match_strategy (email, response_id, fallback)
//   - grader_submissions_processed_total: by status, plus course_id with detailed labels
//
// Feedback and Write-back Metrics:
//   - grader_feedback_generations_total, grader_feedback_generation_duration_seconds
//   - grader_emails_sent_total
//   - grader_grade_writes_total: by operation (patch, return) and status
//
// MCP Tool Metrics:
//   - grader_mcp_tool_invocations_total, grader_mcp_tool_duration_seconds
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>), Google API calls
// (google.<service>.<operation>) and per-submission extraction.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: classroom-grader)
//   - METRICS_DETAILED_LABELS: add course_id labels (default: false)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
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
//	recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDrive,
//		instrumentation.OperationExport, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
