package seed

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	BaseURL            string
	Count              int
	Workers            int
	BypassSecret       string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

type createRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createResponse struct {
	ID string `json:"id"`
}

const bypassHeader = "X-Rate-Limit-Bypass"

// Run creates cfg.Count users through the public API and returns their IDs.
func Run(cfg *Config) ([]string, error) {
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() * 2
	}
	fmt.Printf("Seeding %d users (workers: %d)...\n", cfg.Count, numWorkers)

	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
			MaxIdleConns:        numWorkers * 2,
			MaxIdleConnsPerHost: numWorkers * 2,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}

	ids := make([]string, cfg.Count)
	var progress atomic.Int64

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(numWorkers)

	for i := range cfg.Count {
		g.Go(func() error {
			id, err := createUser(ctx, client, cfg, i)
			if err != nil {
				return fmt.Errorf("failed to create user %d: %w", i, err)
			}
			ids[i] = id
			if done := progress.Add(1); done%500 == 0 || int(done) == cfg.Count {
				fmt.Printf("\rProgress: %d/%d", done, cfg.Count)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	fmt.Printf("\nSeeding complete: %d users\n", len(ids))
	return ids, nil
}

func createUser(ctx context.Context, client *http.Client, cfg *Config, n int) (string, error) {
	body, err := json.Marshal(createRequest{
		Username: fmt.Sprintf("seed%d", n),
		Name:     fmt.Sprintf("Seed User %d", n),
		Email:    fmt.Sprintf("seed%d@example.com", n),
		Password: "seed-password",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.BypassSecret != "" {
		req.Header.Set(bypassHeader, cfg.BypassSecret)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result createResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.ID, nil
}
