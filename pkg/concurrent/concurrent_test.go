package concurrent

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	in := []int{5, 4, 3, 2, 1}
	out, err := Map(context.Background(), in, 2, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{25, 16, 9, 4, 1}, out)
}

func TestMap_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	out, err := Map(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

func TestMap_Empty(t *testing.T) {
	out, err := Map(context.Background(), nil, 0, func(_ context.Context, v int) (int, error) {
		return v, nil
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEach_LimitsWorkers(t *testing.T) {
	var running, peak, calls atomic.Int32
	err := Each(context.Background(), slices.Values(make([]int, 32)), 3, func(context.Context, int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		calls.Add(1)
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(32), calls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestEach_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := Each(ctx, slices.Values([]int{1, 2, 3}), 1, func(context.Context, int) error {
		calls.Add(1)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 4, Workers(4))
	assert.Positive(t, Workers(0))
}
