package discord

import (
	"context"
	"fmt"
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

// InboundMessage is a discord message reduced to what the bot acts on. Ids are
// snowflakes kept as strings.
type InboundMessage struct {
	GuildID      string
	ChannelID    string
	MessageID    string
	SentAt       time.Time
	FromUserID   string
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
		Channel: busruntime.ChannelDiscord,
		Now:     opts.Now,
	})
	if err != nil {
		return nil, err
	}
	return &InboundAdapter{flow: flow}, nil
}

func (a *InboundAdapter) HandleInboundMessage(ctx context.Context, msg InboundMessage) (bool, error) {
	if a == nil || a.flow == nil {
		return false, fmt.Errorf("discord inbound adapter is not initialized")
	}
	if ctx == nil {
		return false, fmt.Errorf("context is required")
	}
	channelID := strings.TrimSpace(msg.ChannelID)
	if channelID == "" {
		return false, fmt.Errorf("channel_id is required")
	}
	messageID := strings.TrimSpace(msg.MessageID)
	if messageID == "" {
		return false, fmt.Errorf("message_id is required")
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return false, fmt.Errorf("text is required")
	}

	sentAt := msg.SentAt.UTC()
	if sentAt.IsZero() {
		sentAt = a.flow.Now()
	}
	sessionID, err := busruntime.NewSessionID()
	if err != nil {
		return false, err
	}
	envelopeMessageID := fmt.Sprintf("discord:%s:%s", channelID, messageID)
	payloadBase64, err := busruntime.EncodeMessageEnvelope(busruntime.TopicChatMessage, busruntime.MessageEnvelope{
		MessageID: envelopeMessageID,
		Text:      text,
		SentAt:    sentAt.Format(time.RFC3339),
		SessionID: sessionID,
	})
	if err != nil {
		return false, err
	}
	conversationKey, err := busruntime.BuildDiscordChannelConversationKey(channelID)
	if err != nil {
		return false, err
	}
	chatType := "guild"
	guildID := strings.TrimSpace(msg.GuildID)
	if guildID == "" {
		chatType = "dm"
	}
	fromUserID := strings.TrimSpace(msg.FromUserID)

	busMsg := busruntime.BusMessage{
		ID:              "bus_" + uuid.NewString(),
		Direction:       busruntime.DirectionInbound,
		Channel:         busruntime.ChannelDiscord,
		Topic:           busruntime.TopicChatMessage,
		ConversationKey: conversationKey,
		ParticipantKey:  fromUserID,
		IdempotencyKey:  busruntime.MessageEnvelopeKey(envelopeMessageID),
		CorrelationID:   envelopeMessageID,
		PayloadBase64:   payloadBase64,
		CreatedAt:       sentAt,
		Extensions: busruntime.MessageExtensions{
			PlatformMessageID: messageID,
			SessionID:         sessionID,
			ChatType:          chatType,
			GuildID:           guildID,
			ChannelID:         channelID,
			FromUserID:        fromUserID,
			FromUsername:      strings.TrimSpace(msg.FromUsername),
			FromBot:           msg.FromBot,
		},
	}
	return a.flow.PublishValidatedInbound(ctx, messageID, busMsg)
}

func InboundMessageFromBusMessage(msg busruntime.BusMessage) (InboundMessage, error) {
	if msg.Direction != busruntime.DirectionInbound {
		return InboundMessage{}, fmt.Errorf("direction must be inbound")
	}
	if msg.Channel != busruntime.ChannelDiscord {
		return InboundMessage{}, fmt.Errorf("channel must be discord")
	}
	channelID, err := busruntime.ConversationID(busruntime.ChannelDiscord, msg.ConversationKey)
	if err != nil {
		return InboundMessage{}, err
	}
	if strings.TrimSpace(msg.Extensions.PlatformMessageID) == "" {
		return InboundMessage{}, fmt.Errorf("platform_message_id is required")
	}
	envelope, err := msg.Envelope()
	if err != nil {
		return InboundMessage{}, err
	}
	sentAt, err := time.Parse(time.RFC3339, envelope.SentAt)
	if err != nil {
		return InboundMessage{}, fmt.Errorf("sent_at is invalid")
	}
	return InboundMessage{
		GuildID:      msg.Extensions.GuildID,
		ChannelID:    channelID,
		MessageID:    msg.Extensions.PlatformMessageID,
		SentAt:       sentAt.UTC(),
		FromUserID:   msg.Extensions.FromUserID,
		FromUsername: msg.Extensions.FromUsername,
		FromBot:      msg.Extensions.FromBot,
		Text:         envelope.Text,
	}, nil
}
