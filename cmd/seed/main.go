// Command seed fills the configured database with fake users, posts,
// comments, likes and follows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/observability"
	"snapgram/internal/seed"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "Posts per user")
	flag.IntVar(&opts.MaxCommentsPerPost, "comments", opts.MaxCommentsPerPost, "Maximum comments per post")
	flag.Float64Var(&opts.LikeProbability, "like-prob", opts.LikeProbability, "Probability that a user likes a given post")
	flag.Float64Var(&opts.FollowProbability, "follow-prob", opts.FollowProbability, "Probability that a user follows another user")
	flag.IntVar(&opts.MaxDays, "days", opts.MaxDays, "Spread post timestamps over this many days")
	flag.Int64Var(&opts.RandomSeed, "seed", 0, "Random seed (0 picks one from the clock)")
	flag.BoolVar(&opts.Clean, "clean", false, "Delete all users (and, by cascade, everything else) before seeding")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Generate data without writing to the database")
	flag.BoolVar(&opts.FastHash, "fast-hash", false, "Hash passwords with the minimum bcrypt cost")
	metricsOut := flag.String("metrics-out", "", "Write database query metrics to this file in Prometheus text format")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.IsProduction() && !opts.DryRun {
		return fmt.Errorf("refusing to seed a production database")
	}
	if !observability.SetLevel(cfg.LogLevel) {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "snapgram-seed",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx := observability.WithCorrelationID(context.Background(), observability.NewCorrelationID())

	if opts.DryRun {
		summary, err := seed.Run(ctx, nil, opts)
		if err != nil {
			return err
		}
		fmt.Printf("[dry-run] %s\n", summary)
		return nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	summary, err := seed.Run(ctx, db, opts)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Printf("seeded %s\n", summary)
	fmt.Printf("all seeded users have the password %q\n", seed.DefaultPassword)

	if *metricsOut != "" {
		if err := prometheus.WriteToTextfile(*metricsOut, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
