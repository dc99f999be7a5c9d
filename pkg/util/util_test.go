package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m 30s"},
		{time.Hour + 5*time.Second, "1h 0m 5s"},
		{2*24*time.Hour + 3*time.Hour + 14*time.Minute + 5*time.Second, "2d 3h 14m 5s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in), "duration %v", tc.in)
	}
}

func TestParallelRunsAll(t *testing.T) {
	var count atomic.Int64
	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 3, func(ctx context.Context, n int) error {
		count.Add(int64(n))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(15), count.Load())
}

func TestParallelStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := Parallel(context.Background(), []int{1, 2, 3}, 1, func(ctx context.Context, n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestParallelEmptyInput(t *testing.T) {
	assert.NoError(t, Parallel(context.Background(), nil, 3, func(ctx context.Context, n int) error {
		t.Fatal("fn should not run")
		return nil
	}))
}
