package google

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/retry"
)

func TestCall(t *testing.T) {
	opts := APIOptions{
		Metrics: &instrumentation.Metrics{},
		Retry:   retry.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond},
	}

	calls := 0
	got, err := Call(context.Background(), opts, instrumentation.ServiceDrive, instrumentation.OperationGet, "f1",
		func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", &googleapi.Error{Code: 503}
			}
			return "meta", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "meta", got)
	assert.Equal(t, 2, calls)

	_, err = Call(context.Background(), APIOptions{}, instrumentation.ServiceDrive, instrumentation.OperationGet, "",
		func(context.Context) (int, error) { return 0, errors.New("boom") })
	assert.EqualError(t, err, "boom")
}

func TestCall_RetryLoggerFromOptions(t *testing.T) {
	var buf bytes.Buffer
	opts := APIOptions{
		Retry:  retry.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond},
		Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	_, err := Call(context.Background(), opts, instrumentation.ServiceClassroom, instrumentation.OperationList, "c1",
		func(context.Context) (int, error) { return 0, &googleapi.Error{Code: 429} })

	require.Error(t, err)
	assert.Contains(t, buf.String(), "retrying Google API call")
}
