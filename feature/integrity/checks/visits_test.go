package checks

import (
	"context"
	"errors"
	"testing"

	"visit-tracker/core/reconcile"
	"visit-tracker/feature/visits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is a visits.Store over fixed indexes.
type memoryStore struct {
	indexes map[string]*reconcile.Index
	failOn  string
}

func (m *memoryStore) Load(_ context.Context, userID string) (*reconcile.Index, error) {
	if userID == m.failOn {
		return nil, errors.New("load failed")
	}
	if idx, ok := m.indexes[userID]; ok {
		return idx, nil
	}
	return reconcile.NewIndex(userID), nil
}

func (m *memoryStore) Replace(context.Context, *reconcile.Index) error { return nil }

func (m *memoryStore) Reset(context.Context, string) (int64, error) { return 0, nil }

func (m *memoryStore) Users(context.Context) ([]string, error) {
	users := make([]string, 0, len(m.indexes))
	for _, id := range []string{"good", "bad"} {
		if _, ok := m.indexes[id]; ok {
			users = append(users, id)
		}
	}
	return users, nil
}

var _ visits.Store = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{indexes: map[string]*reconcile.Index{
		"good": reconcile.NewIndex("good",
			reconcile.Visit{ID: "a", UserID: "good", FeatureID: "F", Start: 1, Finish: 3},
			reconcile.Visit{ID: "b", UserID: "good", FeatureID: "F", Start: 3, Finish: 4},
		),
		"bad": reconcile.NewIndex("bad",
			reconcile.Visit{ID: "c", UserID: "bad", FeatureID: "F", Start: 1, Finish: 5},
			reconcile.Visit{ID: "d", UserID: "bad", FeatureID: "F", Start: 2, Finish: 3},
		),
	}}
}

func TestCheckVisits_AllUsers(t *testing.T) {
	report, err := CheckVisits(context.Background(), newMemoryStore())
	require.NoError(t, err)

	assert.False(t, report.Matched)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 4, report.Visits)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "bad", report.Violations[0].UserID)
	assert.Equal(t, []string{"c", "d"}, report.Violations[0].VisitIDs)
}

func TestCheckVisits_SingleUser(t *testing.T) {
	report, err := CheckVisits(context.Background(), newMemoryStore(), "good")
	require.NoError(t, err)

	assert.True(t, report.Matched)
	assert.Equal(t, 1, report.Users)
	assert.Empty(t, report.Violations)
}

func TestCheckVisits_LoadFailure(t *testing.T) {
	store := newMemoryStore()
	store.failOn = "good"

	report, err := CheckVisits(context.Background(), store, "good")
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Len(t, report.Errors, 1)
}

func TestCheckVisits_NilStore(t *testing.T) {
	_, err := CheckVisits(context.Background(), nil)
	assert.Error(t, err)
}
