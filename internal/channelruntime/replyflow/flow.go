// Package replyflow connects a surface's bus traffic to the linker: inbound chat
// messages become worker jobs, answers go back out as reply messages.
package replyflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
	"github.com/sadenar/DiscordWikiBot/internal/channelruntime/worker"
	"github.com/sadenar/DiscordWikiBot/internal/retryutil"
	"github.com/sadenar/DiscordWikiBot/linking"
)

const (
	defaultMaxConcurrency = 3
	defaultQueueSize      = 256
	defaultTaskTimeout    = 30 * time.Second
)

type Answerer interface {
	Answer(ctx context.Context, msg linking.Message) (string, bool)
}

// Bus is the part of the in-process bus the flow uses.
type Bus interface {
	Subscribe(topic string, h busruntime.Handler) error
	PublishValidated(ctx context.Context, msg busruntime.BusMessage) (bool, error)
}

type DeliverFunc func(ctx context.Context, msg busruntime.BusMessage) (bool, error)

type Options struct {
	Bus     Bus
	Linker  Answerer
	Channel busruntime.Channel
	Deliver DeliverFunc
	// Scope maps an inbound message to the configuration scope passed to the linker.
	Scope          func(busruntime.BusMessage) string
	MaxConcurrency int
	QueueSize      int
	TaskTimeout    time.Duration
	RetryDelay     time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

type Flow struct {
	opts    Options
	logger  *slog.Logger
	jobs    chan busruntime.BusMessage
	ctx     context.Context
	workers *worker.Group

	mu      sync.Mutex
	stopped bool
	sends   sync.WaitGroup
}

// Start subscribes the flow to the chat topics and starts its workers. The workers stop
// when ctx is cancelled.
func Start(ctx context.Context, opts Options) (*Flow, error) {
	if opts.Bus == nil {
		return nil, fmt.Errorf("bus is required")
	}
	if opts.Linker == nil {
		return nil, fmt.Errorf("linker is required")
	}
	if opts.Deliver == nil {
		return nil, fmt.Errorf("deliver func is required")
	}
	if opts.Scope == nil {
		opts.Scope = func(busruntime.BusMessage) string { return "" }
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = defaultTaskTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("channel", string(opts.Channel))

	f := &Flow{
		opts:   opts,
		logger: logger,
		jobs:   make(chan busruntime.BusMessage, opts.QueueSize),
		ctx:    ctx,
	}
	if err := opts.Bus.Subscribe(busruntime.TopicChatMessage, f.handleInbound); err != nil {
		return nil, err
	}
	if err := opts.Bus.Subscribe(busruntime.TopicChatReply, f.handleOutbound); err != nil {
		return nil, err
	}
	f.workers = worker.Start(worker.StartOptions[busruntime.BusMessage]{
		Ctx:    ctx,
		Limit:  opts.MaxConcurrency,
		Jobs:   f.jobs,
		Handle: f.answer,
	})
	return f, nil
}

// Wait blocks until the workers and any in-flight deliveries, retries included, are
// done. Replies reaching the flow after Wait starts are dropped.
func (f *Flow) Wait() {
	f.workers.Wait()
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	f.sends.Wait()
}

func (f *Flow) handleInbound(_ context.Context, msg busruntime.BusMessage) error {
	if msg.Direction != busruntime.DirectionInbound || msg.Channel != f.opts.Channel {
		return fmt.Errorf("unexpected %s message on %s", msg.Direction, msg.Channel)
	}
	if err := worker.TryEnqueue(f.ctx, f.jobs, msg); err != nil {
		return fmt.Errorf("enqueue %s: %w", msg.ConversationKey, err)
	}
	return nil
}

func (f *Flow) answer(ctx context.Context, msg busruntime.BusMessage) {
	env, err := msg.Envelope()
	if err != nil {
		f.logger.Warn("reply_inbound_envelope_error", "bus_id", msg.ID, "error", err.Error())
		return
	}
	taskCtx, cancel := context.WithTimeout(ctx, f.opts.TaskTimeout)
	defer cancel()

	scope := f.opts.Scope(msg)
	reply, ok := f.opts.Linker.Answer(taskCtx, linking.Message{
		Scope:   scope,
		Text:    env.Text,
		FromBot: msg.Extensions.FromBot,
	})
	if !ok {
		return
	}
	out, err := busruntime.NewReply(msg, reply, f.opts.Now())
	if err != nil {
		f.logger.Warn("reply_build_error", "conversation_key", msg.ConversationKey, "error", err.Error())
		return
	}
	if _, err := f.opts.Bus.PublishValidated(ctx, out); err != nil {
		f.logger.Warn("reply_publish_error", "conversation_key", msg.ConversationKey, "error", err.Error())
		return
	}
	f.logger.Debug("reply_queued", "conversation_key", msg.ConversationKey, "scope", scope)
}

// handleOutbound hands the reply to its own goroutine so a slow send does not hold up
// the bus dispatcher.
func (f *Flow) handleOutbound(_ context.Context, msg busruntime.BusMessage) error {
	if msg.Direction != busruntime.DirectionOutbound || msg.Channel != f.opts.Channel {
		return fmt.Errorf("unexpected %s message on %s", msg.Direction, msg.Channel)
	}
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return fmt.Errorf("deliver %s: flow stopped", msg.ConversationKey)
	}
	f.sends.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.sends.Done()
		f.deliver(msg)
	}()
	return nil
}

func (f *Flow) deliver(msg busruntime.BusMessage) {
	sendCtx, cancel := context.WithTimeout(f.ctx, f.opts.TaskTimeout)
	_, err := f.opts.Deliver(sendCtx, msg)
	cancel()
	if err == nil {
		return
	}
	f.logger.Warn("reply_deliver_error", "conversation_key", msg.ConversationKey, "error", err.Error())
	<-retryutil.AsyncRetry(f.ctx, retryutil.Options{
		Name:   "reply_deliver",
		Delay:  f.opts.RetryDelay,
		Logger: f.logger,
	}, func(ctx context.Context) error {
		_, err := f.opts.Deliver(ctx, msg)
		return err
	})
}
