package metrics_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogapi/internal/metrics"
)

func newRegistry(t *testing.T) *metrics.Registry {
	t.Helper()
	r, err := metrics.NewRegistry(zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestNewRegistry_ExposesSeriesBeforeAnyRequest(t *testing.T) {
	r := newRegistry(t)

	var buf bytes.Buffer
	require.NoError(t, r.WriteExposition(&buf))
	out := buf.String()

	for _, name := range []string{metrics.RequestDurationName, metrics.RequestsTotalName, metrics.ErrorsTotalName, metrics.UserOperationsName} {
		assert.Contains(t, out, "# TYPE "+name, "series %s missing from exposition", name)
	}
	assert.Contains(t, out, "go_goroutines")
	assert.Contains(t, out, metrics.UptimeName)
}

func TestRegister_Collision(t *testing.T) {
	r := newRegistry(t)

	dup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.RequestsTotalName,
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status_code"})

	err := r.Register(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, metrics.ErrAlreadyRegistered)
}

func TestRecordRequest_Success(t *testing.T) {
	r := newRegistry(t)

	r.RecordRequest(http.MethodGet, "/users/:id", http.StatusOK, 0.02)

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",route="/users/:id",status_code="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), metrics.RequestsTotalName))

	count, err := testutil.GatherAndCount(r.Gatherer(), metrics.ErrorsTotalName)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordRequest_ErrorStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantError bool
	}{
		{http.StatusOK, false},
		{http.StatusFound, false},
		{399, false},
		{http.StatusBadRequest, true},
		{http.StatusNotFound, true},
		{http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			r := newRegistry(t)
			r.RecordRequest(http.MethodPost, "/users", tt.status, 0.1)

			count, err := testutil.GatherAndCount(r.Gatherer(), metrics.ErrorsTotalName)
			require.NoError(t, err)
			if tt.wantError {
				assert.Equal(t, 1, count)
			} else {
				assert.Zero(t, count)
			}
		})
	}
}

func TestRecordRequest_ErrorLabelsMatch(t *testing.T) {
	r := newRegistry(t)
	r.RecordRequest(http.MethodDelete, "/users/:id", http.StatusNotFound, 0.003)

	expected := `
# HELP http_errors_total Total number of HTTP errors
# TYPE http_errors_total counter
http_errors_total{method="DELETE",route="/users/:id",status_code="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), metrics.ErrorsTotalName))
}

func TestRecordRequest_HistogramBuckets(t *testing.T) {
	r := newRegistry(t)
	r.RecordRequest(http.MethodGet, "/health", http.StatusOK, 0.02)

	h := findHistogram(t, r)
	require.Len(t, h.GetBucket(), len(metrics.DurationBuckets))

	for i, b := range h.GetBucket() {
		assert.Equal(t, metrics.DurationBuckets[i], b.GetUpperBound())
		if b.GetUpperBound() < 0.05 {
			assert.Zero(t, b.GetCumulativeCount(), "bucket le=%v", b.GetUpperBound())
		} else {
			assert.Equal(t, uint64(1), b.GetCumulativeCount(), "bucket le=%v", b.GetUpperBound())
		}
	}
	assert.Equal(t, uint64(1), h.GetSampleCount())
}

func TestRecordRequest_Concurrent(t *testing.T) {
	r := newRegistry(t)

	const n = 200
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordHTTP(metrics.HTTPMetric{Method: http.MethodGet, Route: "/users", StatusCode: http.StatusOK})
		}()
	}
	wg.Wait()

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",route="/users",status_code="200"} 200
`
	require.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), metrics.RequestsTotalName))
	assert.Equal(t, uint64(n), findHistogram(t, r).GetSampleCount())
}

func TestHandler(t *testing.T) {
	r := newRegistry(t)
	r.RecordRequest(http.MethodGet, "/", http.StatusOK, 0.5)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, metrics.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/",status_code="200"} 1`)
	assert.Contains(t, rec.Body.String(), "# TYPE http_errors_total counter")
}

func TestRecordUserOperation(t *testing.T) {
	r := newRegistry(t)
	r.RecordUserOperation(metrics.OpCacheMiss)
	r.RecordUserOperation(metrics.OpCacheHit)
	r.RecordUserOperation(metrics.OpCacheHit)

	expected := `
# HELP user_operations_total Total number of user store operations by outcome
# TYPE user_operations_total counter
user_operations_total{operation="cache_hit"} 2
user_operations_total{operation="cache_miss"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), metrics.UserOperationsName))
}

func findHistogram(t *testing.T, r *metrics.Registry) *dto.Histogram {
	t.Helper()

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != metrics.RequestDurationName {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		return mf.GetMetric()[0].GetHistogram()
	}
	t.Fatalf("%s not gathered", metrics.RequestDurationName)
	return nil
}
