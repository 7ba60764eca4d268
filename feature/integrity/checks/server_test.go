package checks

import (
	"context"
	"regexp"
	"testing"

	"visit-tracker/core/database"
	"visit-tracker/feature/visits"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func visitColumns() *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "varchar(64)", "NO", "PRI", nil, "")
	rows.AddRow("user_id", "varchar(128)", "NO", "MUL", nil, "")
	rows.AddRow("feature_id", "varchar(128)", "NO", "", nil, "")
	rows.AddRow("start", "double", "NO", "", nil, "")
	rows.AddRow("finish", "double", "NO", "", nil, "")
	rows.AddRow("start_snapshot_id", "varchar(64)", "YES", "", nil, "")
	rows.AddRow("finish_snapshot_id", "varchar(64)", "YES", "", nil, "")
	rows.AddRow("position", "bigint", "NO", "", nil, "")
	rows.AddRow("updated_at", "datetime(3)", "YES", "", nil, "")
	return rows
}

func TestCheckServerIntegrity_NoModels(t *testing.T) {
	db, _ := setupMockDB(t)
	report, err := CheckServerIntegrity(db)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckServerIntegrity_NilDB(t *testing.T) {
	report, err := CheckServerIntegrity(nil, visits.VisitRecord{})
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckServerIntegrity_MySQL_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `visits`").WillReturnRows(visitColumns())

	report, err := CheckServerIntegrity(db, visits.VisitRecord{})
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Equal(t, "mysql", report.Driver)
	assert.Equal(t, "ok", report.Tables["visits"].Status)
}

func TestCheckServerIntegrity_MissingColumn(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "varchar(64)", "NO", "PRI", nil, "")
	rows.AddRow("user_id", "varchar(128)", "NO", "MUL", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `visits`").WillReturnRows(rows)

	report, err := CheckServerIntegrity(db, &visits.VisitRecord{})
	assert.NoError(t, err)
	assert.False(t, report.Matched)

	tbl, ok := report.Tables["visits"]
	assert.True(t, ok)
	assert.Equal(t, "error", tbl.Status)
	assert.Contains(t, tbl.MissingColumns, "finish")
	assert.Contains(t, tbl.MissingColumns, "position")
}

func TestCheckServerIntegrity_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "varchar(64)", "NO", "PRI", nil, "")
	rows.AddRow("start", "int(11)", "NO", "", nil, "") // Expect double, give int
	mock.ExpectQuery("SHOW COLUMNS FROM `visits`").WillReturnRows(rows)

	report, err := CheckServerIntegrity(db, visits.VisitRecord{})
	assert.NoError(t, err)

	tbl := report.Tables["visits"]
	foundMismatch := false
	for _, m := range tbl.TypeMismatches {
		if regexp.MustCompile(`start: expected double, got int\(11\)`).MatchString(m) {
			foundMismatch = true
		}
	}
	assert.True(t, foundMismatch, "Should detect type mismatch for start. Got: %v", tbl.TypeMismatches)
}

func TestCheckServerIntegrity_MissingTable(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	report, err := CheckServerIntegrity(db, visits.VisitRecord{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.NotEmpty(t, report.Errors)
}

func TestCheckServerIntegrity_SQLiteMigrated(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, visits.NewStore(db, 0).Migrate(context.Background()))

	report, err := CheckServerIntegrity(db, visits.VisitRecord{})
	require.NoError(t, err)
	assert.True(t, report.Matched, "tables: %+v errors: %v", report.Tables, report.Errors)
	assert.Equal(t, "sqlite", report.Driver)
}

func TestParseGormTags(t *testing.T) {
	col := parseGormColumn("column:id;primaryKey")
	assert.Equal(t, "id", col)

	col2 := parseGormColumn("primaryKey;column:user_id;type:varchar(128)")
	assert.Equal(t, "user_id", col2)

	typ := parseGormType("column:start;type:double")
	assert.Equal(t, "double", typ)

	typ2 := parseGormType("column:id")
	assert.Equal(t, "", typ2)
}
