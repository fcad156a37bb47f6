package cli

import (
	"context"
	"time"
)

const pingTimeout = 3 * time.Second

// Mode returns the last known connectivity state.
func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

// probe pings the backend once and records the result.
func (a *App) probe(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := a.auth.Ping(pctx)
	if ctx.Err() != nil {
		return err
	}
	if err != nil {
		a.setMode(ctx, ModeOffline)
		return err
	}
	a.setMode(ctx, ModeOnline)
	return nil
}

// StartOnlineStatusWatcher probes /health right away and then every
// interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	_ = a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Health probes the backend on demand.
func (a *App) Health(ctx context.Context) error {
	if err := a.probe(ctx); err != nil {
		a.println("Backend is unreachable:", describe(err))
		return err
	}
	a.println("Backend is online.")
	return nil
}
