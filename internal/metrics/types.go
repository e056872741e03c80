package metrics

import "time"

// HTTPMetric is one completed request as seen by the instrumentation middleware.
type HTTPMetric struct {
	Method     string
	Route      string
	StatusCode int
	Duration   time.Duration
}

const (
	RequestDurationName = "http_request_duration_seconds"
	RequestsTotalName   = "http_requests_total"
	ErrorsTotalName     = "http_errors_total"
	UptimeName          = "process_uptime_seconds"
	UserOperationsName  = "user_operations_total"
)

const (
	requestDurationHelp = "Duration of HTTP requests in seconds"
	requestsTotalHelp   = "Total number of HTTP requests"
	errorsTotalHelp     = "Total number of HTTP errors"
	userOperationsHelp  = "Total number of user store operations by outcome"
)

var customSeries = []struct {
	name, help, kind string
}{
	{RequestDurationName, requestDurationHelp, "histogram"},
	{RequestsTotalName, requestsTotalHelp, "counter"},
	{ErrorsTotalName, errorsTotalHelp, "counter"},
	{UserOperationsName, userOperationsHelp, "counter"},
}

// DurationBuckets are the request-duration histogram boundaries in seconds.
var DurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10}

var requestLabels = []string{"method", "route", "status_code"}

// User operation outcomes.
const (
	OpCacheHit  = "cache_hit"
	OpCacheMiss = "cache_miss"
	OpCreated   = "created"
	OpUpdated   = "updated"
	OpDeleted   = "deleted"
	OpNotFound  = "not_found"
)
