package bus

const (
	TopicChatMessage = "chat.message"
	TopicChatReply   = "chat.reply"
)

func IsDialogueTopic(topic string) bool {
	switch topic {
	case TopicChatMessage, TopicChatReply:
		return true
	default:
		return false
	}
}

// MessageEnvelopeKey is the idempotency key of a message with the given envelope id.
func MessageEnvelopeKey(messageID string) string {
	return "msg:" + messageID
}
