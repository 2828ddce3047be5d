package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
)

type capturePublisher struct {
	msgs []busruntime.BusMessage
}

func (p *capturePublisher) PublishValidated(_ context.Context, msg busruntime.BusMessage) (bool, error) {
	if err := msg.Validate(); err != nil {
		return false, err
	}
	p.msgs = append(p.msgs, msg)
	return true, nil
}

func TestInboundAdapterGuildMessage(t *testing.T) {
	t.Parallel()

	pub := &capturePublisher{}
	adapter, err := NewInboundAdapter(InboundAdapterOptions{Bus: pub})
	if err != nil {
		t.Fatalf("NewInboundAdapter() error = %v", err)
	}
	accepted, err := adapter.HandleInboundMessage(context.Background(), InboundMessage{
		GuildID:    "100",
		ChannelID:  "200",
		MessageID:  "300",
		SentAt:     time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC),
		FromUserID: "400",
		Text:       "[[Test]] and {{navbox}}",
	})
	if err != nil || !accepted {
		t.Fatalf("HandleInboundMessage() = %v, %v", accepted, err)
	}
	msg := pub.msgs[0]
	if msg.ConversationKey != "discord:200" || msg.Extensions.ChatType != "guild" || msg.Extensions.GuildID != "100" {
		t.Fatalf("bus message = %+v", msg)
	}

	back, err := InboundMessageFromBusMessage(msg)
	if err != nil {
		t.Fatalf("InboundMessageFromBusMessage() error = %v", err)
	}
	if back.GuildID != "100" || back.ChannelID != "200" || back.MessageID != "300" || back.Text != "[[Test]] and {{navbox}}" {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestInboundAdapterDirectMessage(t *testing.T) {
	t.Parallel()

	pub := &capturePublisher{}
	adapter, err := NewInboundAdapter(InboundAdapterOptions{Bus: pub})
	if err != nil {
		t.Fatalf("NewInboundAdapter() error = %v", err)
	}
	if _, err := adapter.HandleInboundMessage(context.Background(), InboundMessage{ChannelID: "9", MessageID: "1", Text: "[[x]]"}); err != nil {
		t.Fatalf("HandleInboundMessage() error = %v", err)
	}
	if got := pub.msgs[0].Extensions.ChatType; got != "dm" {
		t.Fatalf("chat type = %q, want dm", got)
	}
	if _, err := adapter.HandleInboundMessage(context.Background(), InboundMessage{ChannelID: "9", Text: "[[x]]"}); err == nil {
		t.Fatalf("HandleInboundMessage() expected message_id error")
	}
}

func TestDeliveryAdapterDeliver(t *testing.T) {
	t.Parallel()

	inbound := inboundBusMessage(t)
	reply, err := busruntime.NewReply(inbound, "Link: <https://example.org/wiki/Test>", time.Now())
	if err != nil {
		t.Fatalf("NewReply() error = %v", err)
	}

	var got Target
	var gotText string
	adapter, err := NewDeliveryAdapter(DeliveryAdapterOptions{
		SendText: func(_ context.Context, target Target, text string) error {
			got, gotText = target, text
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewDeliveryAdapter() error = %v", err)
	}
	accepted, err := adapter.Deliver(context.Background(), reply)
	if err != nil || !accepted {
		t.Fatalf("Deliver() = %v, %v", accepted, err)
	}
	if got != (Target{GuildID: "100", ChannelID: "200", ReplyToMessageID: "300"}) {
		t.Fatalf("target = %+v", got)
	}
	if gotText != "Link: <https://example.org/wiki/Test>" {
		t.Fatalf("text = %q", gotText)
	}

	if _, err := adapter.Deliver(context.Background(), inbound); err == nil {
		t.Fatalf("Deliver() expected error for inbound message")
	}
}

func TestDeliveryAdapterPropagatesSendError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("rate limited")
	adapter, err := NewDeliveryAdapter(DeliveryAdapterOptions{
		SendText: func(context.Context, Target, string) error { return sendErr },
	})
	if err != nil {
		t.Fatalf("NewDeliveryAdapter() error = %v", err)
	}
	reply, err := busruntime.NewReply(inboundBusMessage(t), "Link: <https://example.org/wiki/Test>", time.Now())
	if err != nil {
		t.Fatalf("NewReply() error = %v", err)
	}
	accepted, err := adapter.Deliver(context.Background(), reply)
	if !errors.Is(err, sendErr) || accepted {
		t.Fatalf("Deliver() = %v, %v", accepted, err)
	}
}

func inboundBusMessage(t *testing.T) busruntime.BusMessage {
	t.Helper()
	pub := &capturePublisher{}
	adapter, err := NewInboundAdapter(InboundAdapterOptions{Bus: pub})
	if err != nil {
		t.Fatalf("NewInboundAdapter() error = %v", err)
	}
	if _, err := adapter.HandleInboundMessage(context.Background(), InboundMessage{
		GuildID:   "100",
		ChannelID: "200",
		MessageID: "300",
		Text:      "[[Test]]",
	}); err != nil {
		t.Fatalf("HandleInboundMessage() error = %v", err)
	}
	return pub.msgs[0]
}
