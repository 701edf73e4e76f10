package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER",
		"TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "AUDIT_LOGGING_ENABLED"} {
		t.Setenv(k, "")
	}

	c := ConfigFromEnv()
	assert.Equal(t, "workspace-mcp", c.ServiceName)
	assert.True(t, c.Enabled)
	assert.Equal(t, ExporterPrometheus, c.MetricsExporter)
	assert.Equal(t, ExporterNone, c.TracingExporter)
	assert.Equal(t, 0.1, c.TraceSamplingRate)
	assert.True(t, c.AuditLogging.Enabled)
	assert.False(t, c.AuditLogging.IncludePII)
	assert.NoError(t, c.Validate())
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "sheets-bridge")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("METRICS_DETAILED_LABELS", "yes-please")
	t.Setenv("AUDIT_LOGGING_INCLUDE_PII", "1")

	c := ConfigFromEnv()
	assert.Equal(t, "sheets-bridge", c.ServiceName)
	assert.False(t, c.Enabled)
	assert.Equal(t, ExporterOTLP, c.TracingExporter)
	assert.Equal(t, "collector:4318", c.OTLPEndpoint)
	assert.True(t, c.OTLPInsecure)
	assert.Equal(t, 0.5, c.TraceSamplingRate)
	assert.False(t, c.DetailedLabels, "unparsable booleans fall back to the default")
	assert.True(t, c.AuditLogging.IncludePII)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"defaults", Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone}, ""},
		{"empty exporters", Config{}, ""},
		{"sampling too high", Config{TraceSamplingRate: 1.5}, "sampling rate"},
		{"sampling negative", Config{TraceSamplingRate: -0.1}, "sampling rate"},
		{"bad metrics exporter", Config{MetricsExporter: "statsd"}, "invalid metrics exporter"},
		{"bad tracing exporter", Config{TracingExporter: "jaeger"}, "invalid tracing exporter"},
		{"otlp tracing without endpoint", Config{TracingExporter: ExporterOTLP}, "OTEL_EXPORTER_OTLP_ENDPOINT"},
		{"otlp metrics without endpoint", Config{MetricsExporter: ExporterOTLP}, "OTEL_EXPORTER_OTLP_ENDPOINT"},
		{"otlp with endpoint", Config{MetricsExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
