package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const (
	defaultMaxInFlight  = 64
	defaultDedupeWindow = 4096
)

var ErrBusClosed = errors.New("bus is closed")

type Handler func(ctx context.Context, msg BusMessage) error

type BootstrapOptions struct {
	MaxInFlight  int
	DedupeWindow int
	Logger       *slog.Logger
	Component    string
}

// Inproc is an in-process bus. Messages are delivered one at a time in publish order;
// handlers are expected to hand long work off to their own workers.
type Inproc struct {
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	seen     map[string]struct{}
	order    []string
	next     int

	queue  chan BusMessage
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func StartInproc(opts BootstrapOptions) (*Inproc, error) {
	maxInFlight := opts.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	window := opts.DedupeWindow
	if window <= 0 {
		window = defaultDedupeWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if component := strings.TrimSpace(opts.Component); component != "" {
		logger = logger.With("component", component)
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Inproc{
		logger:   logger,
		handlers: make(map[string]Handler),
		seen:     make(map[string]struct{}, window),
		order:    make([]string, window),
		queue:    make(chan BusMessage, maxInFlight),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go b.dispatch()
	return b, nil
}

func (b *Inproc) Subscribe(topic string, h Handler) error {
	if b == nil {
		return fmt.Errorf("bus is not initialized")
	}
	topic = strings.TrimSpace(topic)
	if !topicPattern.MatchString(topic) {
		return fmt.Errorf("topic is invalid")
	}
	if h == nil {
		return fmt.Errorf("handler is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.handlers[topic]; exists {
		return fmt.Errorf("topic %q already has a handler", topic)
	}
	b.handlers[topic] = h
	return nil
}

// PublishValidated validates msg and queues it for its topic handler. accepted is false
// when a message with the same idempotency key was seen recently.
func (b *Inproc) PublishValidated(ctx context.Context, msg BusMessage) (bool, error) {
	if b == nil {
		return false, fmt.Errorf("bus is not initialized")
	}
	if ctx == nil {
		return false, fmt.Errorf("context is required")
	}
	if err := msg.Validate(); err != nil {
		return false, err
	}
	if b.ctx.Err() != nil {
		return false, ErrBusClosed
	}
	b.mu.Lock()
	if _, ok := b.handlers[msg.Topic]; !ok {
		b.mu.Unlock()
		return false, fmt.Errorf("no handler for topic %q", msg.Topic)
	}
	if !b.markSeenLocked(msg.IdempotencyKey) {
		b.mu.Unlock()
		b.logger.Debug("bus_message_deduped", "topic", msg.Topic, "idempotency_key", msg.IdempotencyKey)
		return false, nil
	}
	b.mu.Unlock()

	select {
	case b.queue <- msg:
		return true, nil
	case <-ctx.Done():
		b.forget(msg.IdempotencyKey)
		return false, ctx.Err()
	case <-b.ctx.Done():
		return false, ErrBusClosed
	}
}

// Close stops dispatching. Queued messages that were not yet handled are dropped.
func (b *Inproc) Close() {
	if b == nil {
		return
	}
	b.cancel()
	<-b.done
}

func (b *Inproc) dispatch() {
	defer close(b.done)
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg := <-b.queue:
			b.mu.Lock()
			h := b.handlers[msg.Topic]
			b.mu.Unlock()
			if err := h(b.ctx, msg); err != nil {
				b.logger.Warn("bus_handler_error",
					"topic", msg.Topic,
					"conversation_key", msg.ConversationKey,
					"bus_id", msg.ID,
					"error", err.Error(),
				)
			}
		}
	}
}

func (b *Inproc) markSeenLocked(key string) bool {
	if _, ok := b.seen[key]; ok {
		return false
	}
	if old := b.order[b.next]; old != "" {
		delete(b.seen, old)
	}
	b.order[b.next] = key
	b.next = (b.next + 1) % len(b.order)
	b.seen[key] = struct{}{}
	return true
}

func (b *Inproc) forget(key string) {
	b.mu.Lock()
	delete(b.seen, key)
	b.mu.Unlock()
}
