// Command inspect prints the tables and constraints of the configured
// database as text, JSON or YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	format := flag.String("format", "text", "Output format: text, json or yaml")
	apply := flag.Bool("apply", false, "Apply the schema before inspecting")
	flag.Parse()

	if !validFormat(*format) {
		return fmt.Errorf("unknown format %q (want text, json or yaml)", *format)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !observability.SetLevel(cfg.LogLevel) {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: *apply})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := observability.WithCorrelationID(context.Background(), observability.NewCorrelationID())

	tables, err := database.ListTables(ctx, db)
	if err != nil {
		warn(ctx, err)
		return nil
	}
	constraints, err := database.ListConstraints(ctx, db)
	if err != nil {
		warn(ctx, err)
		return nil
	}

	return render(os.Stdout, *format, &report{
		Driver:      cfg.DBDriver,
		Tables:      tables,
		Constraints: constraints,
	})
}

// warn reports a catalog failure without failing the command.
func warn(ctx context.Context, err error) {
	observability.Logger.WarnContext(ctx, "schema inspection failed", "error", err.Error())
	fmt.Fprintf(os.Stderr, "warning: could not inspect schema: %v\n", err)
}
