package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE sightings (id TEXT PRIMARY KEY, user_id TEXT NOT NULL, at REAL)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "sightings")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "text", colMap["id"].Type)
	assert.Equal(t, "text", colMap["user_id"].Type)
	assert.Equal(t, "NO", colMap["user_id"].Null)
	assert.Equal(t, "real", colMap["at"].Type)

	// PRAGMA table_info returns no rows for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}
