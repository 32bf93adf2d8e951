// Command admin inspects and manages individual users.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"snapgram/internal/cache"
	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin show <user_id>        - Show a user with follower counts and recent posts")
	fmt.Println("  go run ./cmd/admin activate <user_id>    - Mark a user active")
	fmt.Println("  go run ./cmd/admin deactivate <user_id>  - Mark a user inactive")
	fmt.Println("  go run ./cmd/admin delete <user_id>      - Delete a user and everything they own")
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2]); err != nil {
		log.Fatal(err)
	}
}

func run(command, rawID string) error {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", rawID, err)
	}
	userID := uint(id)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !observability.SetLevel(cfg.LogLevel) {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "snapgram-admin",
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

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := observability.WithCorrelationID(context.Background(), observability.NewCorrelationID())

	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		observability.Logger.WarnContext(ctx, "redis unavailable, continuing without user cache", "error", err.Error())
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	a := &admin{
		users:   repository.NewUserRepository(db, cache.NewUserCache(client, time.Duration(cfg.UserCacheTTLSeconds)*time.Second)),
		posts:   repository.NewPostRepository(db),
		follows: repository.NewFollowRepository(db),
	}

	switch command {
	case "show":
		err = a.show(ctx, userID)
	case "activate":
		err = a.users.SetActive(ctx, userID, true)
	case "deactivate":
		err = a.users.SetActive(ctx, userID, false)
	case "delete":
		err = a.users.Delete(ctx, userID)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}

	if models.HasCode(err, models.CodeNotFound) {
		return fmt.Errorf("user with ID %d not found", userID)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", command, err)
	}
	if command != "show" {
		fmt.Printf("%s: user %d done\n", command, userID)
	}
	return nil
}

type admin struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
}

func (a *admin) show(ctx context.Context, id uint) error {
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	followers, following, err := a.follows.Counts(ctx, id)
	if err != nil {
		return err
	}
	posts, err := a.posts.ListByUser(ctx, id, 5, 0)
	if err != nil {
		return err
	}

	fullName := "-"
	if user.FullName != nil {
		fullName = *user.FullName
	}
	fmt.Printf("%s (ID: %d)\n", user.Username, user.ID)
	fmt.Printf("  email:      %s\n", user.Email)
	fmt.Printf("  full name:  %s\n", fullName)
	fmt.Printf("  active:     %t\n", user.Active())
	fmt.Printf("  created at: %s\n", models.FormatTimestamp(user.CreatedAt))
	fmt.Printf("  followers:  %d\n  following:  %d\n", followers, following)
	fmt.Printf("  recent posts (%d):\n", len(posts))
	for _, p := range posts {
		fmt.Printf("    #%d %s %s\n", p.ID, models.FormatTimestamp(p.CreatedAt), p.ImageURL)
	}
	return nil
}
