package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
)

// Target addresses one outbound telegram message.
type Target struct {
	ChatID           int64
	ReplyToMessageID int64
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

// Deliver sends an outbound telegram message. accepted reports whether the platform
// took the message.
func (a *DeliveryAdapter) Deliver(ctx context.Context, msg busruntime.BusMessage) (bool, error) {
	if a == nil || a.sendText == nil {
		return false, fmt.Errorf("telegram delivery adapter is not initialized")
	}
	if ctx == nil {
		return false, fmt.Errorf("context is required")
	}
	if msg.Direction != busruntime.DirectionOutbound {
		return false, fmt.Errorf("direction must be outbound")
	}
	if msg.Channel != busruntime.ChannelTelegram {
		return false, fmt.Errorf("channel must be telegram")
	}
	target, err := targetFromMessage(msg)
	if err != nil {
		return false, err
	}
	env, err := msg.Envelope()
	if err != nil {
		return false, err
	}
	if err := a.sendText(ctx, target, env.Text); err != nil {
		return false, err
	}
	return true, nil
}

func chatIDFromConversationKey(conversationKey string) (int64, error) {
	chatIDRaw, err := busruntime.ConversationID(busruntime.ChannelTelegram, conversationKey)
	if err != nil {
		return 0, err
	}
	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram chat id is invalid: %w", err)
	}
	return chatID, nil
}

func targetFromMessage(msg busruntime.BusMessage) (Target, error) {
	chatID, err := chatIDFromConversationKey(msg.ConversationKey)
	if err != nil {
		return Target{}, err
	}
	target := Target{ChatID: chatID}
	if raw := strings.TrimSpace(msg.Extensions.ReplyTo); raw != "" {
		replyTo, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || replyTo <= 0 {
			return Target{}, fmt.Errorf("reply_to is invalid")
		}
		target.ReplyToMessageID = replyTo
	}
	return target, nil
}
