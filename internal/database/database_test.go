package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/community-workspace-api/internal/config"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestIsUndefinedTable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pgx undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "community_meetings" does not exist`}, true},
		{"pgx other error", &pgconn.PgError{Code: "23505"}, false},
		{"lib/pq undefined table", &pq.Error{Code: "42P01"}, true},
		{"mysql missing table", &mysql.MySQLError{Number: 1146, Message: "Table 'app.community_meetings' doesn't exist"}, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"wrapped pgx", fmt.Errorf("failed to find meeting: %w", &pgconn.PgError{Code: "42P01"}), true},
		{"sqlite text", errors.New("no such table: community_meetings"), true},
		{"postgres text", errors.New(`ERROR: relation "community_meetings" does not exist (SQLSTATE 42P01)`), true},
		{"record not found", gorm.ErrRecordNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUndefinedTable(tt.err))
		})
	}
}

func TestIsUndefinedTable_SQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	var meeting models.Meeting
	err = db.First(&meeting, "id = ?", "missing").Error
	require.Error(t, err)
	assert.True(t, IsUndefinedTable(err))
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialector(&config.Config{DBDriver: driver, PostgresDriver: "pq", SQLitePath: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, MigrateDatabase(db, zap.NewNop()))
	for _, idx := range secondaryIndexes {
		assert.True(t, db.Migrator().HasIndex(idx.table, idx.name), idx.name)
	}

	// second run is a no-op
	require.NoError(t, AddIndexes(db, zap.NewNop()))
}

func TestAddIndexes_SkipsMissingTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Meeting{}))

	require.NoError(t, AddIndexes(db, zap.NewNop()))
	assert.True(t, db.Migrator().HasIndex("community_meetings", "idx_meetings_workspace_active_date"))
}

func TestActiveOnly(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Meeting{}))

	active := models.Meeting{WorkspaceID: "w1", Title: "Active", CreatedBy: "u1"}
	hidden := models.Meeting{WorkspaceID: "w1", Title: "Hidden", CreatedBy: "u1"}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&hidden).Error)
	require.NoError(t, db.Model(&models.Meeting{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	var listed []models.Meeting
	require.NoError(t, db.Scopes(ActiveOnly).Find(&listed).Error)
	require.Len(t, listed, 1)
	assert.Equal(t, "Active", listed[0].Title)
}
