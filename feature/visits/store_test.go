package visits_test

import (
	"context"
	"errors"
	"testing"

	"visit-tracker/core/database"
	"visit-tracker/core/reconcile"
	"visit-tracker/feature/visits"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *visits.GormStore {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	store := visits.NewStore(db, 0)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// setupMockDB creates a mock GORM DB for testing.
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

func testVisit(id, user, feature string, start, finish float64) reconcile.Visit {
	return reconcile.Visit{
		ID:             id,
		UserID:         user,
		FeatureID:      feature,
		Start:          start,
		Finish:         finish,
		StartBoundary:  reconcile.SnapshotRef{ID: "a", Timestamp: start},
		FinishBoundary: reconcile.SnapshotRef{ID: "b", Timestamp: finish},
	}
}

func TestGormStore_LoadUnknownUser(t *testing.T) {
	store := newTestStore(t)

	idx, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", idx.UserID())
	assert.Equal(t, 0, idx.Len())
}

func TestGormStore_ReplaceAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	idx := reconcile.NewIndex("u1",
		testVisit("v2", "u1", "SC", 1, 2),
		testVisit("v1", "u1", "CA", 1, 5),
		testVisit("v3", "u1", "AP", 3, 5),
	)
	require.NoError(t, store.Replace(ctx, idx))

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, idx.Visits(), loaded.Visits(), "order and boundaries survive a round trip")

	t.Run("Replace drops visits missing from the new set", func(t *testing.T) {
		smaller := reconcile.NewIndex("u1", testVisit("v1", "u1", "CA", 1, 6))
		require.NoError(t, store.Replace(ctx, smaller))

		loaded, err := store.Load(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, 1, loaded.Len())
		v, ok := loaded.Get("v1")
		require.True(t, ok)
		assert.Equal(t, 6.0, v.Finish)
	})

	t.Run("Replace with an empty index clears the user", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, reconcile.NewIndex("u1")))

		loaded, err := store.Load(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, loaded.Len())
	})
}

func TestGormStore_UsersAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, reconcile.NewIndex("u1", testVisit("a", "u1", "F", 1, 1))))
	require.NoError(t, store.Replace(ctx, reconcile.NewIndex("u2",
		testVisit("b", "u2", "F", 1, 1),
		testVisit("c", "u2", "G", 2, 2),
	)))

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)

	removed, err := store.Reset(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	u1, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u1.Len())

	users, err = store.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)
}

func TestGormStore_ReplaceRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	store := visits.NewStore(db, 0)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `visits`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Replace(context.Background(), reconcile.NewIndex("u1", testVisit("a", "u1", "F", 1, 1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, visits.ErrStore)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_LoadFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	store := visits.NewStore(db, 0)

	mock.ExpectQuery("SELECT \\* FROM `visits`").WillReturnError(errors.New("connection refused"))

	_, err := store.Load(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, visits.ErrStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
