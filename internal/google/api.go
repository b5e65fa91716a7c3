package google

import (
	"context"
	"log/slog"
	"time"

	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/retry"
)

// APIOptions carries the cross-cutting settings shared by the Google API clients.
type APIOptions struct {
	// Metrics records every call. Nil disables recording.
	Metrics *instrumentation.Metrics
	// Retry is applied to every call. The zero value performs a single attempt.
	Retry retry.Policy
	// Logger receives retry notices when Retry has no logger of its own.
	Logger *slog.Logger
}

// Call runs fn under the retry policy inside a google.<service>.<operation>
// span and records the outcome as a Google API operation.
func Call[T any](ctx context.Context, opts APIOptions, service, operation, resourceID string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation,
		instrumentation.NewSpanAttributeBuilder().WithResourceID(resourceID).Build()...)
	defer span.End()

	policy := opts.Retry
	if policy.Logger == nil {
		policy.Logger = opts.Logger
	}

	start := time.Now()
	res, err := retry.Do(ctx, policy, fn)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	opts.Metrics.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))

	return res, err
}
