package visits

import (
	"context"
	"errors"
	"testing"
	"time"

	"visit-tracker/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoad(calls *int, visits ...reconcile.Visit) func(context.Context) ([]reconcile.Visit, error) {
	return func(context.Context) ([]reconcile.Visit, error) {
		*calls++
		return visits, nil
	}
}

func TestCache_ZeroTTLAlwaysLoads(t *testing.T) {
	c := NewCache(0)
	calls := 0

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "u1", countingLoad(&calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, c.Len())
}

func TestCache_HitAndInvalidate(t *testing.T) {
	c := NewCache(time.Minute)
	calls := 0
	v := reconcile.Visit{ID: "a", UserID: "u1", FeatureID: "F", Start: 1, Finish: 2}

	got, err := c.Get(context.Background(), "u1", countingLoad(&calls, v))
	require.NoError(t, err)
	assert.Equal(t, []reconcile.Visit{v}, got)

	_, err = c.Get(context.Background(), "u1", countingLoad(&calls, v))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	c.Invalidate("u1")
	_, err = c.Get(context.Background(), "u1", countingLoad(&calls, v))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_LoadRacingInvalidateIsNotStored(t *testing.T) {
	c := NewCache(time.Minute)
	calls := 0

	_, err := c.Get(context.Background(), "u1", func(context.Context) ([]reconcile.Visit, error) {
		calls++
		c.Invalidate("u1")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	_, err = c.Get(context.Background(), "u1", countingLoad(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := NewCache(time.Minute)
	boom := errors.New("boom")

	_, err := c.Get(context.Background(), "u1", func(context.Context) ([]reconcile.Visit, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}
