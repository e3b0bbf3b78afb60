package client

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/logging"
)

// Poller runs fetch immediately and then once per interval until the
// context ends. ErrUnauthorized stops it and fires OnUnauthorized; any
// other error is logged and the next tick tries again.
type Poller struct {
	Name           string
	Interval       time.Duration
	Fetch          func(ctx context.Context) error
	OnUnauthorized func()
	Logger         logging.Logger
}

// Run blocks; start it in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if !p.tick(ctx) {
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context) bool {
	err := p.Fetch(ctx)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrUnauthorized):
		if p.OnUnauthorized != nil {
			p.OnUnauthorized()
		}
		return false
	case ctx.Err() != nil:
		return false
	default:
		if p.Logger != nil {
			p.Logger.Warn(ctx, "poll failed", "poller", p.Name, "error", err.Error())
		}
		return true
	}
}
