package attack

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

var errNoUsers = errors.New("attack requires seeded users")

type Config struct {
	BaseURL            string
	IDs                []string
	Type               string
	Report             string
	Rate               int
	Duration           time.Duration
	CreateRatio        float64
	Connections        int
	Timeout            time.Duration
	RateLimitBypass    string
	InsecureSkipVerify bool
}

// latencyBuckets match the server's request-duration histogram so the two
// views of a run line up.
var latencyBuckets = vegeta.HistogramBuckets{
	0, 10 * time.Millisecond, 50 * time.Millisecond, 100 * time.Millisecond,
	500 * time.Millisecond, time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second,
}

func newTargeter(cfg *Config) (vegeta.Targeter, error) {
	switch cfg.Type {
	case "create":
		return CreateTargeter(cfg.BaseURL, cfg.RateLimitBypass), nil
	case "health":
		return HealthTargeter(cfg.BaseURL), nil
	case "read", "mixed":
		if len(cfg.IDs) == 0 {
			return nil, fmt.Errorf("%s: %w", cfg.Type, errNoUsers)
		}
		if cfg.Type == "read" {
			return ReadTargeter(cfg.BaseURL, cfg.IDs, cfg.RateLimitBypass), nil
		}
		return MixedTargeter(cfg.BaseURL, cfg.IDs, cfg.CreateRatio, cfg.RateLimitBypass), nil
	}
	return nil, fmt.Errorf("unknown attack type: %s", cfg.Type)
}

// Run attacks the API at a constant rate and writes the report to w.
func Run(cfg *Config, w io.Writer) error {
	targeter, err := newTargeter(cfg)
	if err != nil {
		return err
	}

	attacker := vegeta.NewAttacker(
		vegeta.Redirects(vegeta.NoFollow),
		vegeta.KeepAlive(true),
		vegeta.Connections(cfg.Connections),
		vegeta.Timeout(cfg.Timeout),
		vegeta.MaxBody(0),
		vegeta.HTTP2(false),
		vegeta.TLSConfig(&tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}),
	)
	rate := vegeta.Rate{Freq: cfg.Rate, Per: time.Second}

	fmt.Fprintf(w, "Starting %s attack: rate=%d/s duration=%s\n", cfg.Type, cfg.Rate, cfg.Duration)

	if cfg.Report == "hist" {
		hist := vegeta.Histogram{Buckets: latencyBuckets}
		for res := range attacker.Attack(targeter, rate, cfg.Duration, cfg.Type) {
			hist.Add(res)
		}
		return vegeta.NewHistogramReporter(&hist).Report(w)
	}

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, cfg.Duration, cfg.Type) {
		metrics.Add(res)
	}
	metrics.Close()

	switch cfg.Report {
	case "json":
		return vegeta.NewJSONReporter(&metrics).Report(w)
	case "text", "":
		return vegeta.NewTextReporter(&metrics).Report(w)
	}
	return fmt.Errorf("unknown report type: %s", cfg.Report)
}
