package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"snapgram/internal/config"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// Schema modes selected by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do and which migrations are pending.
type SchemaStatus struct {
	Mode               string
	Environment        string
	Driver             string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

// Environments where a destructive AutoMigrate needs an explicit opt-in.
var guardedEnvs = map[string]struct{}{
	"production": {},
	"prod":       {},
	"staging":    {},
	"stage":      {},
}

// schemaPlan is the resolved outcome of DB_SCHEMA_MODE for one config.
type schemaPlan struct {
	mode        string
	sql         bool
	auto        bool
	destructive bool
}

func planSchema(cfg *config.Config) (schemaPlan, error) {
	p := schemaPlan{mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if p.mode == "" {
		p.mode = SchemaModeHybrid
	}
	_, guarded := guardedEnvs[strings.ToLower(strings.TrimSpace(cfg.Env))]

	// The embedded SQL is PostgreSQL-only.
	postgres := cfg.DBDriver != config.DriverSQLite

	switch p.mode {
	case SchemaModeHybrid:
		p.sql = postgres
		p.auto = !postgres || !guarded
	case SchemaModeSQL:
		if !postgres {
			return p, fmt.Errorf("DB_SCHEMA_MODE=sql requires the postgres driver")
		}
		p.sql = true
	case SchemaModeAuto:
		if guarded && !cfg.DBAutoMigrateAllowDestructive {
			return p, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		p.auto = true
		p.destructive = cfg.DBAutoMigrateAllowDestructive
	default:
		return p, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", p.mode)
	}
	return p, nil
}

// schemaPolicy reports whether the SQL migrations and AutoMigrate run for cfg.
func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	p, err := planSchema(cfg)
	if err != nil {
		return false, false, err
	}
	return p.sql, p.auto, nil
}

// AutoMigrate creates or updates every persistent table with GORM.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the database up to date using the strategy DB_SCHEMA_MODE selects.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) (err error) {
	ctx, span := observability.Tracer.Start(ctx, "database.apply_schema")
	defer func() {
		observability.RecordErrorInContext(ctx, err)
		span.End()
	}()

	p, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if p.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if !p.auto {
		return nil
	}

	log := observability.Logger.With(slog.String("mode", p.mode), slog.String("env", cfg.Env))
	if p.destructive {
		log.WarnContext(ctx, "AutoMigrate allowed to run destructively; review schema diffs before deploying")
	}
	log.InfoContext(ctx, "Running GORM AutoMigrate")
	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the schema policy and, when SQL migrations apply, which are pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	p, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := SchemaStatus{
		Mode:               p.mode,
		Environment:        cfg.Env,
		Driver:             cfg.DBDriver,
		WillRunSQL:         p.sql,
		WillRunAutoMigrate: p.auto,
	}
	if p.sql {
		if status.AppliedVersions, err = NewMigrationStore(db).GetAppliedMigrations(ctx); err != nil {
			return nil, err
		}
		status.PendingMigrations = pendingMigrations(status.AppliedVersions, GetMigrations())
	}
	return &status, nil
}

// pendingMigrations keeps the order of registered.
func pendingMigrations(applied []int, registered []Migration) []Migration {
	done := make(map[int]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}
	var out []Migration
	for _, m := range registered {
		if _, ok := done[m.Version]; ok {
			continue
		}
		out = append(out, m)
	}
	return out
}
