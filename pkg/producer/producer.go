// Package producer controls the server process that owns the source files.
// Every implementation reports failure through its boolean result and logs
// the reason; callers decide whether a failure is fatal.
package producer

import (
	"context"
	"time"
)

const (
	KindNone    = "none"
	KindProcess = "process"
	KindDocker  = "docker"
)

const defaultPollInterval = time.Second

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// poll calls check every interval until it returns true, wait elapses or ctx
// is done.
func poll(ctx context.Context, wait, interval time.Duration, check func() bool) bool {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	deadline := time.Now().Add(wait)

	for {
		if check() {
			return true
		}

		if !time.Now().Before(deadline) {
			return false
		}

		if err := sleep(ctx, interval); err != nil {
			return false
		}
	}
}

// Noop is used when no producer has to be stopped.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) Stop(context.Context) bool { return true }

func (*Noop) Start(context.Context) bool { return true }

func (*Noop) IsRunning(context.Context, string) bool { return false }
