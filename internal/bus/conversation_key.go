package bus

import (
	"fmt"
	"strings"
)

func BuildConversationKey(channel Channel, id string) (string, error) {
	if !isValidChannel(channel) {
		return "", fmt.Errorf("channel is invalid")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("conversation id is required")
	}
	if strings.Contains(id, " ") {
		return "", fmt.Errorf("conversation id must not contain spaces")
	}
	return conversationKeyPrefix(channel) + id, nil
}

func BuildTelegramChatConversationKey(chatID string) (string, error) {
	return BuildConversationKey(ChannelTelegram, chatID)
}

func BuildDiscordChannelConversationKey(channelID string) (string, error) {
	return BuildConversationKey(ChannelDiscord, channelID)
}

// ConversationID strips the channel prefix from key.
func ConversationID(channel Channel, key string) (string, error) {
	prefix := conversationKeyPrefix(channel)
	if prefix == "" || !strings.HasPrefix(key, prefix) {
		return "", fmt.Errorf("%s conversation key is invalid", channel)
	}
	id := strings.TrimSpace(strings.TrimPrefix(key, prefix))
	if id == "" {
		return "", fmt.Errorf("%s conversation id is required", channel)
	}
	return id, nil
}

func isValidChannel(channel Channel) bool {
	switch channel {
	case ChannelTelegram, ChannelDiscord:
		return true
	default:
		return false
	}
}

func conversationKeyPrefix(channel Channel) string {
	switch channel {
	case ChannelTelegram:
		return "tg:"
	case ChannelDiscord:
		return "discord:"
	default:
		return ""
	}
}
