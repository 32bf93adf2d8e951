package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"snapgram/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MigrationStore records which SQL migrations have been applied.
type MigrationStore interface {
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, version int, name, sql string) error
	RemoveMigration(ctx context.Context, version int) error
}

// MigrationLog is one row of migration_logs.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string { return "migration_logs" }

const ensureMigrationLogTableSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_migration_logs_applied_at ON migration_logs (applied_at);`

type gormMigrationStore struct {
	db *gorm.DB
}

// NewMigrationStore returns a MigrationStore backed by the migration_logs table.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &gormMigrationStore{db: db}
}

// GetAppliedMigrations lists applied versions in ascending order. A missing
// migration_logs table means nothing has been applied yet.
func (s *gormMigrationStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	versions := []int{}
	err := s.db.WithContext(ctx).
		Model(&MigrationLog{}).
		Order("version ASC").
		Pluck("version", &versions).Error
	switch {
	case err == nil:
		return versions, nil
	case errors.Is(err, gorm.ErrRecordNotFound), isMissingTableError(err):
		return []int{}, nil
	default:
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
}

// isMissingTableError matches PostgreSQL undefined_table (42P01), including
// errors that only carry its text, and SQLite's "no such table".
func isMissingTableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such table") {
		return true
	}
	return strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")
}

// ApplyMigration executes sql and logs version within one transaction.
func (s *gormMigrationStore) ApplyMigration(ctx context.Context, version int, name, sql string) error {
	started := time.Now()
	record := MigrationLog{Version: version, Name: name}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("apply migration %06d_%s: %w", version, name, err)
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %06d: %w", version, err)
		}
		return nil
	}); err != nil {
		return err
	}

	observability.Logger.InfoContext(ctx, "Migration applied",
		slog.Int("version", version),
		slog.String("name", name),
		slog.Int64("duration_ms", time.Since(started).Milliseconds()))
	return nil
}

func (s *gormMigrationStore) RemoveMigration(ctx context.Context, version int) error {
	res := s.db.WithContext(ctx).Delete(&MigrationLog{}, "version = ?", version)
	if res.Error != nil {
		return fmt.Errorf("remove migration record %06d: %w", version, res.Error)
	}
	observability.Logger.InfoContext(ctx, "Migration record removed", slog.Int("version", version))
	return nil
}

// RunMigrations applies every embedded migration not yet recorded in migration_logs.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return runMigrations(ctx, db, NewMigrationStore(db), migrations)
}

func runMigrations(ctx context.Context, db *gorm.DB, store MigrationStore, registered []Migration) error {
	if err := db.WithContext(ctx).Exec(ensureMigrationLogTableSQL).Error; err != nil {
		return fmt.Errorf("ensure migration_logs table: %w", err)
	}

	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, registered); err != nil {
		return err
	}

	pending := pendingMigrations(applied, registered)
	if len(pending) == 0 {
		observability.Logger.DebugContext(ctx, "No pending migrations", slog.Int("applied", len(applied)))
		return nil
	}
	for _, m := range pending {
		observability.Logger.InfoContext(ctx, "Applying migration", slog.String("migration", m.String()))
		if err := store.ApplyMigration(ctx, m.Version, m.Name, m.UpScript); err != nil {
			return err
		}
	}
	return nil
}

// validateAppliedVersions fails when migration_logs holds versions this build
// does not embed, which means the database is ahead of the code.
func validateAppliedVersions(applied []int, registered []Migration) error {
	var unknown []string
	for _, v := range slices.Sorted(slices.Values(applied)) {
		if !slices.ContainsFunc(registered, func(m Migration) bool { return m.Version == v }) {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if unknown != nil {
		return fmt.Errorf("migration_logs contains unknown versions not present in code: %s",
			strings.Join(unknown, ", "))
	}
	return nil
}

// RollbackMigration runs the down script of an applied migration and forgets it.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	observability.Logger.InfoContext(ctx, "Rolling back migration", slog.String("migration", m.String()))
	if err := db.WithContext(ctx).Exec(m.DownScript).Error; err != nil {
		return fmt.Errorf("rollback migration %s: %w", m.String(), err)
	}
	return store.RemoveMigration(ctx, version)
}
