package main

import (
	"fmt"
	"os"

	"bench/internal/attack"
	"bench/internal/config"
	"bench/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var ids []string
	if cfg.NeedsSeed() {
		ids, err = seed.Run(&seed.Config{
			BaseURL:            cfg.BaseURL,
			Count:              cfg.Seed.Count,
			Workers:            cfg.Seed.Workers,
			BypassSecret:       cfg.RateLimitBypass,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			Timeout:            cfg.Seed.Timeout,
		})
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	}

	return attack.Run(&attack.Config{
		BaseURL:            cfg.BaseURL,
		IDs:                ids,
		Type:               cfg.BenchType,
		Report:             cfg.Report,
		Rate:               cfg.Rate,
		Duration:           cfg.Duration,
		CreateRatio:        cfg.CreateRatio,
		Connections:        cfg.Connections,
		Timeout:            cfg.RequestTimeout,
		RateLimitBypass:    cfg.RateLimitBypass,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, os.Stdout)
}
