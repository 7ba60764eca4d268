package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex_LookupAndOrder(t *testing.T) {
	idx := NewIndex("u1",
		visit("1", "A", 1, 2),
		visit("2", "B", 1, 1),
		visit("3", "A", 4, 6),
	)

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, "u1", idx.UserID())

	a := idx.ForFeature("A")
	assert.Len(t, a, 2)
	assert.Equal(t, "1", a[0].ID)
	assert.Equal(t, "3", a[1].ID)
	assert.Empty(t, idx.ForFeature("missing"))

	v, ok := idx.Get("2")
	assert.True(t, ok)
	assert.Equal(t, "B", v.FeatureID)
	_, ok = idx.Get("nope")
	assert.False(t, ok)
}

func TestIndex_Boundaries(t *testing.T) {
	idx := NewIndex("u1", visit("1", "A", 1, 2), visit("2", "B", 2, 5))

	assert.Equal(t, map[float64]struct{}{1: {}, 2: {}, 5: {}}, idx.Boundaries())
}

func TestIndex_PutKeepsPosition(t *testing.T) {
	idx := NewIndex("u1", visit("1", "A", 1, 2), visit("2", "B", 1, 1))

	updated := visit("1", "A", 1, 9)
	idx.put(updated)

	visits := idx.Visits()
	assert.Equal(t, "1", visits[0].ID)
	assert.Equal(t, 9.0, visits[0].Finish)
	assert.Equal(t, 2, idx.Len())
}

func TestIndex_CloneIsIndependent(t *testing.T) {
	idx := NewIndex("u1", visit("1", "A", 1, 2))
	c := idx.Clone()

	c.put(visit("1", "A", 0, 2))
	c.put(visit("2", "B", 3, 3))

	v, _ := idx.Get("1")
	assert.Equal(t, 1.0, v.Start)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 2, c.Len())
}

func TestVisit_IntervalPredicates(t *testing.T) {
	v := visit("1", "A", 2, 5)

	assert.True(t, v.Covers(2))
	assert.True(t, v.Covers(5))
	assert.False(t, v.Covers(6))

	assert.True(t, v.Straddles(3))
	assert.False(t, v.Straddles(2))
	assert.False(t, v.Straddles(5))

	assert.True(t, v.Overlaps(visit("2", "A", 4, 9)))
	assert.False(t, v.Overlaps(visit("3", "A", 5, 9)))
	assert.False(t, v.Overlaps(visit("4", "A", 3, 3)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		visits  []Visit
		reasons int
	}{
		{"clean", []Visit{visit("1", "A", 1, 2), visit("2", "A", 2, 4), visit("3", "B", 1, 4)}, 0},
		{"overlap", []Visit{visit("1", "A", 1, 3), visit("2", "A", 2, 4)}, 1},
		{"inverted", []Visit{{ID: "1", FeatureID: "A", Start: 3, Finish: 1}}, 1},
		{"boundary drift", []Visit{{ID: "1", FeatureID: "A", Start: 1, Finish: 2,
			FinishBoundary: SnapshotRef{ID: "s", Timestamp: 3}}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(NewIndex("u1", tt.visits...))
			assert.Len(t, got, tt.reasons)
		})
	}
}

func TestFeature_JSONPassthrough(t *testing.T) {
	var snap Snapshot
	err := json.Unmarshal([]byte(`{"userId":"u1","timestamp":3,"features":[{"id":"CA","name":"California","level":1}]}`), &snap)
	assert.NoError(t, err)

	assert.Equal(t, []string{"CA"}, snap.FeatureIDs())
	assert.Equal(t, "California", snap.Features[0].Attributes["name"])

	out, err := snap.Features[0].MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":"CA","name":"California","level":1}`, string(out))
}
