package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		enabled    bool
		prometheus bool
	}{
		{
			name:   "disabled",
			config: Config{ServiceName: "grader-test", Enabled: false},
		},
		{
			name: "prometheus metrics",
			config: Config{
				ServiceName:     "grader-test",
				Enabled:         true,
				MetricsExporter: ExporterPrometheus,
				TracingExporter: ExporterNone,
			},
			enabled:    true,
			prometheus: true,
		},
		{
			name: "stdout metrics and traces",
			config: Config{
				ServiceName:       "grader-test",
				Enabled:           true,
				MetricsExporter:   ExporterStdout,
				TracingExporter:   ExporterStdout,
				TraceSamplingRate: 1,
			},
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			p, err := NewProvider(ctx, tt.config)
			require.NoError(t, err)

			assert.Equal(t, tt.enabled, p.Enabled())
			assert.Equal(t, tt.prometheus, p.ServesPrometheus())
			// Recorders are usable whether or not export is on.
			require.NotNil(t, p.Metrics())
			require.NotNil(t, p.Audit())
			require.NotNil(t, p.Tracer("grader"))
			p.Metrics().RecordSubmission(ctx, "c1", StatusSuccess)

			assert.NoError(t, p.Shutdown(ctx))
		})
	}
}

func TestNewProvider_PrometheusGather(t *testing.T) {
	ctx := context.Background()
	p, err := NewProvider(ctx, Config{
		ServiceName:     "grader-test",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)
	defer func() { _ = p.Shutdown(ctx) }()

	p.Metrics().RecordGradeWrite(ctx, OperationPatch, StatusSuccess)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "grader_grade_writes_total")
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"unknown metrics exporter", Config{Enabled: true, MetricsExporter: "statsd", TracingExporter: ExporterNone}},
		{"unknown tracing exporter", Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: "jaeger"}},
		{"otlp tracing without endpoint", Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP}},
		{"otlp metrics without endpoint", Config{Enabled: true, MetricsExporter: ExporterOTLP, TracingExporter: ExporterNone}},
		{"sampling rate above one", Config{Enabled: true, TraceSamplingRate: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			assert.Error(t, err)
		})
	}
}
