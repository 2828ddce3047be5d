package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
)

// Publisher is the part of the bus an inbound adapter needs.
type Publisher interface {
	PublishValidated(ctx context.Context, msg busruntime.BusMessage) (bool, error)
}

type InboundFlowOptions struct {
	Bus     Publisher
	Channel busruntime.Channel
	Now     func() time.Time
}

// InboundFlow holds what every platform inbound adapter shares: the target bus, the
// channel it publishes for and a clock.
type InboundFlow struct {
	bus     Publisher
	channel busruntime.Channel
	now     func() time.Time
}

func NewInboundFlow(opts InboundFlowOptions) (*InboundFlow, error) {
	if opts.Bus == nil {
		return nil, fmt.Errorf("bus is required")
	}
	if strings.TrimSpace(string(opts.Channel)) == "" {
		return nil, fmt.Errorf("channel is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &InboundFlow{bus: opts.Bus, channel: opts.Channel, now: now}, nil
}

func (f *InboundFlow) Now() time.Time {
	return f.now().UTC()
}

// PublishValidatedInbound publishes msg after checking it belongs to this flow.
// accepted is false for duplicates of an already published platform message.
func (f *InboundFlow) PublishValidatedInbound(ctx context.Context, platformMessageID string, msg busruntime.BusMessage) (bool, error) {
	if f == nil || f.bus == nil {
		return false, fmt.Errorf("inbound flow is not initialized")
	}
	if strings.TrimSpace(platformMessageID) == "" {
		return false, fmt.Errorf("platform_message_id is required")
	}
	if msg.Direction != busruntime.DirectionInbound {
		return false, fmt.Errorf("direction must be inbound")
	}
	if msg.Channel != f.channel {
		return false, fmt.Errorf("channel must be %s", f.channel)
	}
	return f.bus.PublishValidated(ctx, msg)
}
