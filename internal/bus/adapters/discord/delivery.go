package discord

import (
	"context"
	"fmt"
	"strings"

	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
)

type Target struct {
	GuildID          string
	ChannelID        string
	ReplyToMessageID string
}

type SendTextFunc func(ctx context.Context, target Target, text string) error

type DeliveryAdapterOptions struct {
	SendText SendTextFunc
}

type DeliveryAdapter struct {
	sendText SendTextFunc
}

func NewDeliveryAdapter(opts DeliveryAdapterOptions) (*DeliveryAdapter, error) {
	if opts.SendText == nil {
		return nil, fmt.Errorf("send text func is required")
	}
	return &DeliveryAdapter{sendText: opts.SendText}, nil
}

func (a *DeliveryAdapter) Deliver(ctx context.Context, msg busruntime.BusMessage) (bool, error) {
	if a == nil || a.sendText == nil {
		return false, fmt.Errorf("discord delivery adapter is not initialized")
	}
	if ctx == nil {
		return false, fmt.Errorf("context is required")
	}
	if msg.Direction != busruntime.DirectionOutbound {
		return false, fmt.Errorf("direction must be outbound")
	}
	if msg.Channel != busruntime.ChannelDiscord {
		return false, fmt.Errorf("channel must be discord")
	}
	channelID, err := busruntime.ConversationID(busruntime.ChannelDiscord, msg.ConversationKey)
	if err != nil {
		return false, err
	}
	env, err := msg.Envelope()
	if err != nil {
		return false, err
	}
	target := Target{
		GuildID:          strings.TrimSpace(msg.Extensions.GuildID),
		ChannelID:        channelID,
		ReplyToMessageID: strings.TrimSpace(msg.Extensions.ReplyTo),
	}
	if err := a.sendText(ctx, target, env.Text); err != nil {
		return false, err
	}
	return true, nil
}
