package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

var ErrAlreadyRegistered = errors.New("metric already registered")

// Registry is the process-wide metrics collection. Build one in main and
// hand it to whatever records or exposes metrics.
type Registry struct {
	reg    *prometheus.Registry
	logger *zap.Logger

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	userOperations  *prometheus.CounterVec
}

// NewRegistry registers the Go runtime, process and uptime collectors plus the
// custom request and user-operation series. A name collision is a configuration error.
func NewRegistry(logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		reg:    prometheus.NewRegistry(),
		logger: logger,
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    RequestDurationName,
				Help:    requestDurationHelp,
				Buckets: DurationBuckets,
			},
			requestLabels,
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: RequestsTotalName,
				Help: requestsTotalHelp,
			},
			requestLabels,
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: ErrorsTotalName,
				Help: errorsTotalHelp,
			},
			requestLabels,
		),
		userOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: UserOperationsName,
				Help: userOperationsHelp,
			},
			[]string{"operation"},
		),
	}

	started := time.Now()
	defaults := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: UptimeName,
				Help: "Seconds since the process started serving",
			},
			func() float64 { return time.Since(started).Seconds() },
		),
	}

	for _, c := range append(defaults, r.requestDuration, r.requestsTotal, r.errorsTotal, r.userOperations) {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a collector to the registry.
func (r *Registry) Register(c prometheus.Collector) error {
	if err := r.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return fmt.Errorf("%w: %v", ErrAlreadyRegistered, err)
		}
		return fmt.Errorf("failed to register collector: %w", err)
	}
	return nil
}

// RecordRequest counts one completed request. The error counter only moves
// for status codes >= 400.
func (r *Registry) RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	labels := prometheus.Labels{
		"method":      method,
		"route":       route,
		"status_code": strconv.Itoa(statusCode),
	}

	r.requestsTotal.With(labels).Inc()
	r.requestDuration.With(labels).Observe(durationSeconds)
	if statusCode >= http.StatusBadRequest {
		r.errorsTotal.With(labels).Inc()
	}
}

func (r *Registry) RecordHTTP(m HTTPMetric) {
	r.RecordRequest(m.Method, m.Route, m.StatusCode, m.Duration.Seconds())
}

func (r *Registry) RecordUserOperation(operation string) {
	r.userOperations.WithLabelValues(operation).Inc()
}

// ContentType is the media type of the text exposition format.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

// Handler serves the text exposition of everything registered.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		if err := r.WriteExposition(&buf); err != nil {
			r.logger.Error("failed to render metrics", zap.Error(err))
			http.Error(w, "failed to render metrics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentType)
		_, _ = w.Write(buf.Bytes())
	})
}

// WriteExposition writes a read-only snapshot in the text exposition format.
// Custom series that have not observed anything yet still get their HELP and
// TYPE lines so scrapers see them from the first scrape.
func (r *Registry) WriteExposition(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	seen := make(map[string]bool, len(families))
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		seen[mf.GetName()] = true
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}

	for _, s := range customSeries {
		if seen[s.name] {
			continue
		}
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", s.name, s.help, s.name, s.kind); err != nil {
			return fmt.Errorf("failed to write %s header: %w", s.name, err)
		}
	}
	return nil
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
