package database

import (
	"testing"

	"snapgram/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		wantSQL     bool
		wantAuto    bool
		expectError bool
	}{
		{"hybrid dev postgres", config.Config{Env: "development", DBDriver: config.DriverPostgres}, true, true, false},
		{"hybrid prod postgres", config.Config{Env: "production", DBDriver: config.DriverPostgres, DBSchemaMode: "hybrid"}, true, false, false},
		{"sql mode", config.Config{Env: "development", DBDriver: config.DriverPostgres, DBSchemaMode: "sql"}, true, false, false},
		{"sql mode sqlite", config.Config{DBDriver: config.DriverSQLite, DBSchemaMode: "sql"}, false, false, true},
		{"hybrid sqlite", config.Config{DBDriver: config.DriverSQLite}, false, true, false},
		{"auto dev", config.Config{Env: "development", DBSchemaMode: "auto"}, false, true, false},
		{"auto staging refused", config.Config{Env: "staging", DBSchemaMode: "auto"}, false, false, true},
		{"auto prod allowed", config.Config{Env: "prod", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"unknown mode", config.Config{DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestGetSchemaStatus_SQLite(t *testing.T) {
	db := newSQLiteDB(t)
	status, err := GetSchemaStatus(t.Context(), db, &config.Config{Env: "test", DBDriver: config.DriverSQLite})
	assert.NoError(t, err)
	assert.Equal(t, SchemaModeHybrid, status.Mode)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestPlanSchema_DestructiveOnlyForExplicitAuto(t *testing.T) {
	p, err := planSchema(&config.Config{Env: "production", DBSchemaMode: " AUTO ", DBAutoMigrateAllowDestructive: true})
	assert.NoError(t, err)
	assert.Equal(t, SchemaModeAuto, p.mode)
	assert.True(t, p.destructive)

	p, err = planSchema(&config.Config{Env: "development", DBAutoMigrateAllowDestructive: true})
	assert.NoError(t, err)
	assert.Equal(t, SchemaModeHybrid, p.mode)
	assert.False(t, p.destructive)
}

func TestApplySchema_SQLiteCreatesTables(t *testing.T) {
	db := newSQLiteDB(t)
	assert.NoError(t, ApplySchema(t.Context(), db, &config.Config{Env: "test", DBDriver: config.DriverSQLite}))
	for _, table := range []string{"users", "posts", "comments", "likes", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
