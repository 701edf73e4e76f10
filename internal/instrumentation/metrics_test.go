package instrumentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	require.NoError(t, err)
	return m, reader
}

// counterPoints returns the data points of an int64 counter by name.
func counterPoints(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			return sum.DataPoints
		}
	}
	return nil
}

func total(points []metricdata.DataPoint[int64]) int64 {
	var n int64
	for _, p := range points {
		n += p.Value
	}
	return n
}

func valueOf(points []metricdata.DataPoint[int64], key, value string) int64 {
	for _, p := range points {
		if v, ok := p.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			return p.Value
		}
	}
	return 0
}

func TestMetrics_ToolInvocations(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordToolInvocation(ctx, "sheets_query", "default", nil, 20*time.Millisecond)
	m.RecordToolInvocation(ctx, "sheets_query", "default", errors.New("boom"), time.Millisecond)
	m.RecordToolInvocation(ctx, "gmail_list_threads", "work", nil, time.Millisecond)

	points := counterPoints(t, reader, "mcp_tool_invocations_total")
	assert.Equal(t, int64(3), total(points))
	assert.Equal(t, int64(1), valueOf(points, attrStatus, StatusError))
	for _, p := range points {
		_, hasAccount := p.Attributes.Value(attrAccount)
		assert.False(t, hasAccount)
	}
}

func TestMetrics_DetailedLabelsAddAccount(t *testing.T) {
	m, reader := newTestMetrics(t, true)

	m.RecordToolInvocation(context.Background(), "sheets_query", "work", nil, time.Millisecond)

	points := counterPoints(t, reader, "mcp_tool_invocations_total")
	assert.Equal(t, int64(1), valueOf(points, attrAccount, "work"))
}

func TestMetrics_SheetObserver(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.ObserveQuery(ctx, 120, 7)
	m.ObserveQuery(ctx, 30, 0)
	m.ObserveWrite(ctx, OperationUpdate, 2)
	m.ObserveWrite(ctx, OperationAppend, 5)
	m.ObserveWrite(ctx, OperationDelete, 0)

	assert.Equal(t, int64(2), total(counterPoints(t, reader, "sheets_queries_total")))
	assert.Equal(t, int64(150), total(counterPoints(t, reader, "sheets_rows_scanned_total")))
	assert.Equal(t, int64(7), total(counterPoints(t, reader, "sheets_rows_matched_total")))

	cells := counterPoints(t, reader, "sheets_cells_written_total")
	assert.Equal(t, int64(7), total(cells))
	assert.Equal(t, int64(5), valueOf(cells, attrOperation, OperationAppend))

	writes := counterPoints(t, reader, "sheets_writes_total")
	assert.Equal(t, int64(3), total(writes))
	assert.Equal(t, int64(1), valueOf(writes, attrOperation, OperationDelete))
}

func TestMetrics_GoogleAPIAndOAuth(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordGoogleAPIOperation(ctx, ServiceSheets, OperationQuery, nil, time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationGet, errors.New("403"), time.Millisecond)
	m.RecordCodeExchange(ctx, nil)
	m.RecordCodeExchange(ctx, errors.New("invalid_grant"))
	m.RecordTokenRefresh(ctx)
	m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)

	api := counterPoints(t, reader, "google_api_operations_total")
	assert.Equal(t, int64(2), total(api))
	assert.Equal(t, int64(1), valueOf(api, attrService, ServiceDrive))

	exchanges := counterPoints(t, reader, "oauth_code_exchanges_total")
	assert.Equal(t, int64(1), valueOf(exchanges, attrResult, ResultFailure))
	assert.Equal(t, int64(1), total(counterPoints(t, reader, "oauth_token_refresh_total")))
	assert.Equal(t, int64(1), valueOf(counterPoints(t, reader, "http_requests_total"), attrStatus, "200"))
}

func TestMetrics_NilAndZeroAreSafe(t *testing.T) {
	ctx := context.Background()
	for _, m := range []*Metrics{nil, {}} {
		assert.NotPanics(t, func() {
			m.RecordToolInvocation(ctx, "t", "a", nil, time.Second)
			m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationList, nil, time.Second)
			m.ObserveQuery(ctx, 1, 1)
			m.ObserveWrite(ctx, OperationUpdate, 1)
			m.RecordCodeExchange(ctx, nil)
			m.RecordTokenRefresh(ctx)
			m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Second)
		})
	}
}
