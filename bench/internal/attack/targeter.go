package attack

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync/atomic"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const bypassHeader = "X-Rate-Limit-Bypass"

var userCounter atomic.Uint64

func bypass(header http.Header, secret string) http.Header {
	if secret != "" {
		header.Set(bypassHeader, secret)
	}
	return header
}

// CreateTargeter posts a fresh user on every hit. Usernames carry a
// per-run nanosecond prefix so repeated runs do not collide.
func CreateTargeter(baseURL, bypassSecret string) vegeta.Targeter {
	header := bypass(http.Header{"Content-Type": []string{"application/json"}}, bypassSecret)
	url := baseURL + "/users"
	run := rand.Uint32()

	return func(t *vegeta.Target) error {
		n := userCounter.Add(1)
		t.Method = http.MethodPost
		t.URL = url
		t.Header = header
		t.Body = fmt.Appendf(nil,
			`{"username":"bench%x_%d","name":"Bench User","email":"bench%x_%d@example.com","password":"bench-password"}`,
			run, n, run, n)
		return nil
	}
}

func ReadTargeter(baseURL string, ids []string, bypassSecret string) vegeta.Targeter {
	header := bypass(http.Header{}, bypassSecret)

	return func(t *vegeta.Target) error {
		t.Method = http.MethodGet
		t.URL = baseURL + "/users/" + ids[rand.IntN(len(ids))]
		t.Header = header
		return nil
	}
}

// HealthTargeter hits the liveness probe, which the rate limiter never counts.
func HealthTargeter(baseURL string) vegeta.Targeter {
	url := baseURL + "/health"
	return func(t *vegeta.Target) error {
		t.Method = http.MethodGet
		t.URL = url
		return nil
	}
}

func MixedTargeter(baseURL string, ids []string, createRatio float64, bypassSecret string) vegeta.Targeter {
	createTarget := CreateTargeter(baseURL, bypassSecret)
	readTarget := ReadTargeter(baseURL, ids, bypassSecret)

	return func(t *vegeta.Target) error {
		if rand.Float64() < createRatio {
			return createTarget(t)
		}
		return readTarget(t)
	}
}
