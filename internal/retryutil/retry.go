package retryutil

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultDelay   = 2 * time.Second
	DefaultTimeout = 12 * time.Second
)

type Options struct {
	Name    string
	Delay   time.Duration
	Timeout time.Duration
	Logger  *slog.Logger
}

// AsyncRetry runs fn once more after Delay in its own goroutine. The attempt is
// abandoned when parent is cancelled first. The returned channel is closed once the
// attempt finished or was abandoned.
func AsyncRetry(parent context.Context, opts Options, fn func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	if fn == nil {
		close(done)
		return done
	}
	if parent == nil {
		parent = context.Background()
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	name := opts.Name
	if name == "" {
		name = "operation"
	}
	logger := opts.Logger
	if logger != nil {
		logger.Info(name+"_retry_scheduled", "delay", delay.String(), "timeout", timeout.String())
	}
	go func() {
		defer close(done)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-parent.Done():
			if logger != nil {
				logger.Warn(name+"_retry_abandoned", "error", parent.Err().Error())
			}
			return
		case <-timer.C:
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			if logger != nil {
				logger.Warn(name+"_retry_failed", "error", err.Error())
			}
			return
		}
		if logger != nil {
			logger.Info(name + "_retry_ok")
		}
	}()
	return done
}
