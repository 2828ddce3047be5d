package worker

import (
	"context"
	"errors"
	"sync"
)

var ErrQueueFull = errors.New("worker queue is full")

type StartOptions[J any] struct {
	Ctx context.Context
	// Limit bounds how many jobs run at once. Values below 1 mean 1.
	Limit  int
	Jobs   <-chan J
	Handle func(context.Context, J)
}

// Group drains a job channel, running each job in its own goroutine.
type Group struct {
	wg sync.WaitGroup
}

// Wait blocks until the dispatcher has stopped and every started job returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

func Start[J any](opts StartOptions[J]) *Group {
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	g := &Group{}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		for {
			select {
			case <-opts.Ctx.Done():
				return
			case job, ok := <-opts.Jobs:
				if !ok {
					return
				}
				select {
				case sem <- struct{}{}:
				case <-opts.Ctx.Done():
					return
				}
				g.wg.Add(1)
				go func() {
					defer g.wg.Done()
					defer func() { <-sem }()
					opts.Handle(opts.Ctx, job)
				}()
			}
		}
	}()
	return g
}

// TryEnqueue queues job without waiting for room.
func TryEnqueue[J any](workersCtx context.Context, jobs chan<- J, job J) error {
	if err := workersCtx.Err(); err != nil {
		return err
	}
	select {
	case jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func Enqueue[J any](ctx, workersCtx context.Context, jobs chan<- J, job J) error {
	if ctx == nil {
		ctx = workersCtx
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-workersCtx.Done():
		return workersCtx.Err()
	case jobs <- job:
		return nil
	}
}
