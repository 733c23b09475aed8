package service

import (
	"context"
	"time"
)

// Delay stands in for the latency of a directory operation.
type Delay interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits for a fixed duration or until ctx is done.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type immediate struct{}

func (immediate) Wait(ctx context.Context) error { return ctx.Err() }

// Immediate completes without waiting.
var Immediate Delay = immediate{}

// Gate blocks each Wait until Release is called once for it.
type Gate struct {
	ch chan struct{}
}

// NewGate returns a gate with no pending releases.
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{}, 64)}
}

// Release lets one waiter through, now or on its next Wait.
func (g *Gate) Release() {
	g.ch <- struct{}{}
}

func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
