package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/learner-hub-api/pkg/apiclient"
	"github.com/noah-isme/learner-hub-api/pkg/config"
	"github.com/noah-isme/learner-hub-api/pkg/logger"
)

type check struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context, c *apiclient.Client) (int, error)
}

type result struct {
	Check    check
	Count    int
	Err      error
	Duration time.Duration
}

func main() {
	var (
		baseURL string
		token   string
		planID  string
		timeout time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL including the prefix")
	flag.StringVar(&token, "token", os.Getenv("SMOKE_TOKEN"), "Bearer token (ADMIN or IQA)")
	flag.StringVar(&planID, "plan", "", "Sample plan ID whose learners are fetched")
	flag.DurationVar(&timeout, "timeout", 0, "HTTP client timeout; defaults to CLIENT_TIMEOUT")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	if timeout <= 0 {
		timeout = cfg.Client.Timeout
	}
	client, err := apiclient.New(baseURL, apiclient.WithToken(token), apiclient.WithTimeout(timeout), apiclient.WithLogger(logr))
	if err != nil {
		logr.Fatal("invalid client configuration", zap.Error(err))
	}

	results := runChecks(context.Background(), client, checks(planID))
	printReport(results)

	failed := 0
	for _, res := range results {
		if res.Err != nil && res.Check.Critical {
			failed++
		}
	}
	fmt.Printf("Critical failures: %d\n", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func checks(planID string) []check {
	list := []check{
		{Name: "sample plans", Critical: true, Run: func(ctx context.Context, c *apiclient.Client) (int, error) {
			plans, err := c.SamplePlans.List(ctx, apiclient.PlanFilter{})
			return len(plans), err
		}},
		{Name: "IQA questions", Critical: true, Run: func(ctx context.Context, c *apiclient.Client) (int, error) {
			questions, err := c.Questions.List(ctx, "All")
			return len(questions), err
		}},
		{Name: "session types", Critical: true, Run: func(ctx context.Context, c *apiclient.Client) (int, error) {
			types, err := c.SessionTypes.List(ctx)
			return len(types), err
		}},
		{Name: "acknowledgements", Run: func(ctx context.Context, c *apiclient.Client) (int, error) {
			acks, err := c.Acknowledgements.List(ctx)
			return len(acks), err
		}},
	}
	if planID != "" {
		list = append(list, check{Name: "plan learners " + planID, Critical: true, Run: func(ctx context.Context, c *apiclient.Client) (int, error) {
			learners, err := c.SamplePlans.Learners(ctx, planID)
			return len(learners), err
		}})
	}
	return list
}

func runChecks(ctx context.Context, client *apiclient.Client, list []check) []result {
	results := make([]result, 0, len(list))
	for _, chk := range list {
		start := time.Now()
		count, err := chk.Run(ctx, client)
		results = append(results, result{Check: chk, Count: count, Err: err, Duration: time.Since(start)})
	}
	return results
}

func printReport(results []result) {
	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s (%s)\n", status, res.Check.Name, res.Duration)
		if res.Err != nil {
			fmt.Printf("  Error: %v | Critical: %t\n", res.Err, res.Check.Critical)
		} else {
			fmt.Printf("  Rows: %d\n", res.Count)
		}
	}
}
