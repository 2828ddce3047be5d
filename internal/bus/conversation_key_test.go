package bus

import "testing"

func TestBuildConversationKey(t *testing.T) {
	key, err := BuildConversationKey(ChannelTelegram, "-1001")
	if err != nil {
		t.Fatalf("BuildConversationKey() error = %v", err)
	}
	if key != "tg:-1001" {
		t.Fatalf("conversation key mismatch: got %q", key)
	}
	key, err = BuildDiscordChannelConversationKey("81384788765712384")
	if err != nil {
		t.Fatalf("BuildDiscordChannelConversationKey() error = %v", err)
	}
	if key != "discord:81384788765712384" {
		t.Fatalf("conversation key mismatch: got %q", key)
	}
}

func TestBuildConversationKeyRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		channel Channel
		id      string
	}{
		{name: "invalid channel", channel: Channel("unknown"), id: "1"},
		{name: "empty id", channel: ChannelTelegram, id: "   "},
		{name: "id contains space", channel: ChannelDiscord, id: "a b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildConversationKey(tc.channel, tc.id); err == nil {
				t.Fatalf("BuildConversationKey() expected error")
			}
		})
	}
}

func TestConversationID(t *testing.T) {
	id, err := ConversationID(ChannelDiscord, "discord:42")
	if err != nil || id != "42" {
		t.Fatalf("ConversationID() = %q, %v", id, err)
	}
	if _, err := ConversationID(ChannelTelegram, "discord:42"); err == nil {
		t.Fatalf("ConversationID() expected prefix mismatch error")
	}
	if _, err := ConversationID(ChannelTelegram, "tg:"); err == nil {
		t.Fatalf("ConversationID() expected empty id error")
	}
}
