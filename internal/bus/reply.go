package bus

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewReply builds the outbound message answering inbound with text. The reply keeps
// the conversation, session and extensions of inbound.
func NewReply(inbound BusMessage, text string, now time.Time) (BusMessage, error) {
	if inbound.Direction != DirectionInbound {
		return BusMessage{}, fmt.Errorf("reply source must be inbound")
	}
	env, err := inbound.Envelope()
	if err != nil {
		return BusMessage{}, err
	}
	now = now.UTC()
	replyID := "reply:" + env.MessageID
	payload, err := EncodeMessageEnvelope(TopicChatReply, MessageEnvelope{
		MessageID: replyID,
		Text:      text,
		SentAt:    now.Format(time.RFC3339),
		SessionID: env.SessionID,
		ReplyTo:   inbound.Extensions.PlatformMessageID,
	})
	if err != nil {
		return BusMessage{}, err
	}
	ext := inbound.Extensions
	ext.ReplyTo = inbound.Extensions.PlatformMessageID
	ext.FromBot = true
	return BusMessage{
		ID:              "bus_" + uuid.NewString(),
		Direction:       DirectionOutbound,
		Channel:         inbound.Channel,
		Topic:           TopicChatReply,
		ConversationKey: inbound.ConversationKey,
		IdempotencyKey:  MessageEnvelopeKey(replyID),
		CorrelationID:   inbound.CorrelationID,
		CausationID:     inbound.ID,
		PayloadBase64:   payload,
		CreatedAt:       now,
		Extensions:      ext,
	}, nil
}
