package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_StopsOnUnauthorized(t *testing.T) {
	var calls, logouts atomic.Int32
	p := &Poller{
		Name:     "session",
		Interval: time.Millisecond,
		Fetch: func(context.Context) error {
			if calls.Add(1) == 3 {
				return ErrUnauthorized
			}
			return nil
		},
		OnUnauthorized: func() { logouts.Add(1) },
	}

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int32(1), logouts.Load())
}

func TestPoller_RetriesOtherErrors(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &Poller{
		Name:     "groups",
		Interval: time.Millisecond,
		Logger:   logging.Nop{},
		Fetch: func(context.Context) error {
			calls.Add(1)
			return errors.New("boom")
		},
	}
	go p.Run(ctx)

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
}

func TestPoller_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		Interval: time.Hour,
		Fetch:    func(context.Context) error { return nil },
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}
