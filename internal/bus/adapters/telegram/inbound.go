package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
	baseadapters "github.com/sadenar/DiscordWikiBot/internal/bus/adapters"
)

type InboundAdapterOptions struct {
	Bus baseadapters.Publisher
	Now func() time.Time
}

type InboundMessage struct {
	ChatID       int64
	MessageID    int64
	SentAt       time.Time
	ChatType     string
	FromUserID   int64
	FromUsername string
	FromBot      bool
	Text         string
}

type InboundAdapter struct {
	flow *baseadapters.InboundFlow
}

func NewInboundAdapter(opts InboundAdapterOptions) (*InboundAdapter, error) {
	flow, err := baseadapters.NewInboundFlow(baseadapters.InboundFlowOptions{
		Bus:     opts.Bus,
		Channel: busruntime.ChannelTelegram,
		Now:     opts.Now,
	})
	if err != nil {
		return nil, err
	}
	return &InboundAdapter{flow: flow}, nil
}

func (a *InboundAdapter) HandleInboundMessage(ctx context.Context, msg InboundMessage) (bool, error) {
	if a == nil || a.flow == nil {
		return false, fmt.Errorf("telegram inbound adapter is not initialized")
	}
	if ctx == nil {
		return false, fmt.Errorf("context is required")
	}
	if msg.ChatID == 0 {
		return false, fmt.Errorf("chat_id is required")
	}
	if msg.MessageID == 0 {
		return false, fmt.Errorf("message_id is required")
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return false, fmt.Errorf("text is required")
	}
	chatType := strings.TrimSpace(msg.ChatType)
	if chatType == "" {
		return false, fmt.Errorf("chat_type is required")
	}

	sentAt := msg.SentAt.UTC()
	if sentAt.IsZero() {
		sentAt = a.flow.Now()
	}
	sessionID, err := busruntime.NewSessionID()
	if err != nil {
		return false, err
	}
	chatIDRaw := strconv.FormatInt(msg.ChatID, 10)
	envelopeMessageID := fmt.Sprintf("telegram:%d:%d", msg.ChatID, msg.MessageID)
	payloadBase64, err := busruntime.EncodeMessageEnvelope(busruntime.TopicChatMessage, busruntime.MessageEnvelope{
		MessageID: envelopeMessageID,
		Text:      text,
		SentAt:    sentAt.Format(time.RFC3339),
		SessionID: sessionID,
	})
	if err != nil {
		return false, err
	}
	conversationKey, err := busruntime.BuildTelegramChatConversationKey(chatIDRaw)
	if err != nil {
		return false, err
	}
	participantKey := ""
	if msg.FromUserID != 0 {
		participantKey = strconv.FormatInt(msg.FromUserID, 10)
	}

	platformMessageID := strconv.FormatInt(msg.MessageID, 10)
	busMsg := busruntime.BusMessage{
		ID:              "bus_" + uuid.NewString(),
		Direction:       busruntime.DirectionInbound,
		Channel:         busruntime.ChannelTelegram,
		Topic:           busruntime.TopicChatMessage,
		ConversationKey: conversationKey,
		ParticipantKey:  participantKey,
		IdempotencyKey:  busruntime.MessageEnvelopeKey(envelopeMessageID),
		CorrelationID:   envelopeMessageID,
		PayloadBase64:   payloadBase64,
		CreatedAt:       sentAt,
		Extensions: busruntime.MessageExtensions{
			PlatformMessageID: platformMessageID,
			SessionID:         sessionID,
			ChatType:          chatType,
			ChannelID:         chatIDRaw,
			FromUserID:        participantKey,
			FromUsername:      strings.TrimSpace(msg.FromUsername),
			FromBot:           msg.FromBot,
		},
	}
	return a.flow.PublishValidatedInbound(ctx, platformMessageID, busMsg)
}

func InboundMessageFromBusMessage(msg busruntime.BusMessage) (InboundMessage, error) {
	if msg.Direction != busruntime.DirectionInbound {
		return InboundMessage{}, fmt.Errorf("direction must be inbound")
	}
	if msg.Channel != busruntime.ChannelTelegram {
		return InboundMessage{}, fmt.Errorf("channel must be telegram")
	}
	chatID, err := chatIDFromConversationKey(msg.ConversationKey)
	if err != nil {
		return InboundMessage{}, err
	}
	messageID, err := strconv.ParseInt(strings.TrimSpace(msg.Extensions.PlatformMessageID), 10, 64)
	if err != nil || messageID == 0 {
		return InboundMessage{}, fmt.Errorf("platform_message_id is invalid")
	}
	envelope, err := msg.Envelope()
	if err != nil {
		return InboundMessage{}, err
	}
	sentAt, err := time.Parse(time.RFC3339, envelope.SentAt)
	if err != nil {
		return InboundMessage{}, fmt.Errorf("sent_at is invalid")
	}
	var fromUserID int64
	if raw := strings.TrimSpace(msg.Extensions.FromUserID); raw != "" {
		fromUserID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return InboundMessage{}, fmt.Errorf("from_user_id is invalid: %w", err)
		}
	}
	return InboundMessage{
		ChatID:       chatID,
		MessageID:    messageID,
		SentAt:       sentAt.UTC(),
		ChatType:     strings.TrimSpace(msg.Extensions.ChatType),
		FromUserID:   fromUserID,
		FromUsername: msg.Extensions.FromUsername,
		FromBot:      msg.Extensions.FromBot,
		Text:         envelope.Text,
	}, nil
}
