package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedDelay_Wait(t *testing.T) {
	t.Parallel()

	start := time.Now()
	assert.NoError(t, FixedDelay(20*time.Millisecond).Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, FixedDelay(time.Hour).Wait(ctx), context.Canceled)
	assert.ErrorIs(t, FixedDelay(0).Wait(ctx), context.Canceled)
	assert.NoError(t, FixedDelay(0).Wait(context.Background()))
}

func TestGate(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	gate.Release()
	assert.NoError(t, gate.Wait(context.Background()), "release before wait is remembered")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, gate.Wait(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- gate.Wait(context.Background()) }()
	gate.Release()
	assert.NoError(t, <-done)
}

func TestImmediate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Immediate.Wait(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Immediate.Wait(ctx), context.Canceled)
}
