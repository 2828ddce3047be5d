package bus

import (
	"fmt"
	"regexp"
	"time"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelDiscord  Channel = "discord"
)

// MessageExtensions carries platform details that do not belong in the envelope.
type MessageExtensions struct {
	PlatformMessageID string `json:"platform_message_id,omitempty"`
	ReplyTo           string `json:"reply_to,omitempty"`
	SessionID         string `json:"session_id,omitempty"`
	ChatType          string `json:"chat_type,omitempty"`
	GuildID           string `json:"guild_id,omitempty"`
	ChannelID         string `json:"channel_id,omitempty"`
	FromUserID        string `json:"from_user_id,omitempty"`
	FromUsername      string `json:"from_username,omitempty"`
	FromBot           bool   `json:"from_bot,omitempty"`
}

type BusMessage struct {
	ID              string            `json:"id"`
	Direction       Direction         `json:"direction"`
	Channel         Channel           `json:"channel"`
	Topic           string            `json:"topic"`
	ConversationKey string            `json:"conversation_key"`
	ParticipantKey  string            `json:"participant_key,omitempty"`
	IdempotencyKey  string            `json:"idempotency_key"`
	CorrelationID   string            `json:"correlation_id"`
	CausationID     string            `json:"causation_id,omitempty"`
	PayloadBase64   string            `json:"payload_base64"`
	CreatedAt       time.Time         `json:"created_at"`
	Extensions      MessageExtensions `json:"extensions"`
}

var topicPattern = regexp.MustCompile(`^[a-z0-9]+(?:\.[a-z0-9_]+)*$`)

func (m BusMessage) Validate() error {
	if err := checkFields(required("id", m.ID)); err != nil {
		return err
	}
	if m.Direction != DirectionInbound && m.Direction != DirectionOutbound {
		return fmt.Errorf("direction must be inbound|outbound")
	}
	if !isValidChannel(m.Channel) {
		return fmt.Errorf("channel is invalid")
	}
	if err := checkFields(required("topic", m.Topic)); err != nil {
		return err
	}
	if !topicPattern.MatchString(m.Topic) {
		return fmt.Errorf("topic is invalid")
	}
	if err := checkFields(
		required("conversation_key", m.ConversationKey),
		optional("participant_key", m.ParticipantKey),
		required("idempotency_key", m.IdempotencyKey),
		required("correlation_id", m.CorrelationID),
		optional("causation_id", m.CausationID),
	); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	// Chat topics need a session id in the payload, so it is checked against m.Topic.
	_, err := DecodeMessageEnvelope(m.Topic, m.PayloadBase64)
	return err
}

func (m BusMessage) Envelope() (MessageEnvelope, error) {
	return DecodeMessageEnvelope(m.Topic, m.PayloadBase64)
}
