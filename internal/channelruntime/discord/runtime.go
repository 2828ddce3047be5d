package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
	discordbus "github.com/sadenar/DiscordWikiBot/internal/bus/adapters/discord"
	"github.com/sadenar/DiscordWikiBot/internal/channelruntime/replyflow"
)

// maxMessageLen is discord's content limit per message.
const maxMessageLen = 2000

type RunOptions struct {
	Token          string
	MaxConcurrency int
	BusMaxInFlight int
	TaskTimeout    time.Duration
	Linker         replyflow.Answerer
	Logger         *slog.Logger
}

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Run connects to the gateway and answers wiki references until ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return fmt.Errorf("missing discord.token (set via --discord-token or WIKILINKBOT_DISCORD_TOKEN)")
	}
	if opts.Linker == nil {
		return fmt.Errorf("linker is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	inprocBus, err := busruntime.StartInproc(busruntime.BootstrapOptions{
		MaxInFlight: opts.BusMaxInFlight,
		Logger:      logger,
		Component:   "discord",
	})
	if err != nil {
		return err
	}
	defer inprocBus.Close()

	inbound, err := discordbus.NewInboundAdapter(discordbus.InboundAdapterOptions{Bus: inprocBus})
	if err != nil {
		return err
	}
	delivery, err := discordbus.NewDeliveryAdapter(discordbus.DeliveryAdapterOptions{
		SendText: func(ctx context.Context, target discordbus.Target, text string) error {
			return sendText(ctx, session, target, text)
		},
	})
	if err != nil {
		return err
	}

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	flow, err := replyflow.Start(workersCtx, replyflow.Options{
		Bus:     inprocBus,
		Linker:  opts.Linker,
		Channel: busruntime.ChannelDiscord,
		Deliver: delivery.Deliver,
		Scope: func(msg busruntime.BusMessage) string {
			return msg.Extensions.GuildID
		},
		MaxConcurrency: opts.MaxConcurrency,
		TaskTimeout:    opts.TaskTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("discord_ready", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		selfID := ""
		if s.State != nil && s.State.User != nil {
			selfID = s.State.User.ID
		}
		msg, ok := inboundFromEvent(m, selfID)
		if !ok {
			return
		}
		accepted, err := inbound.HandleInboundMessage(workersCtx, msg)
		if err != nil {
			logger.Warn("discord_bus_publish_error", "channel_id", msg.ChannelID, "message_id", msg.MessageID, "error", err.Error())
			return
		}
		if !accepted {
			logger.Debug("discord_bus_deduped", "channel_id", msg.ChannelID, "message_id", msg.MessageID)
		}
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	logger.Info("discord_start", "max_concurrency", opts.MaxConcurrency)

	<-ctx.Done()
	logger.Info("discord_stop")
	if err := session.Close(); err != nil {
		logger.Warn("discord_close_error", "error", err.Error())
	}
	stopWorkers()
	flow.Wait()
	return nil
}

// inboundFromEvent keeps messages from people that contain text. Bot authors,
// including this bot, are dropped.
func inboundFromEvent(m *discordgo.MessageCreate, selfID string) (discordbus.InboundMessage, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return discordbus.InboundMessage{}, false
	}
	if m.Author.Bot || (selfID != "" && m.Author.ID == selfID) {
		return discordbus.InboundMessage{}, false
	}
	if strings.TrimSpace(m.Content) == "" {
		return discordbus.InboundMessage{}, false
	}
	return discordbus.InboundMessage{
		GuildID:      m.GuildID,
		ChannelID:    m.ChannelID,
		MessageID:    m.ID,
		SentAt:       m.Timestamp,
		FromUserID:   m.Author.ID,
		FromUsername: m.Author.Username,
		FromBot:      m.Author.Bot,
		Text:         m.Content,
	}, true
}

func sendText(ctx context.Context, s messageSender, target discordbus.Target, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if _, err := s.ChannelMessageSend(target.ChannelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("discord send to %s: %w", target.ChannelID, err)
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most max bytes, preferring line breaks.
// A single line longer than max is cut at a rune boundary.
func splitMessage(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, line := range strings.Split(text, "\n") {
		for len(line) > max {
			flush()
			cut := max
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
			out = append(out, line[:cut])
			line = line[cut:]
		}
		extra := len(line)
		if cur.Len() > 0 {
			extra++
		}
		if cur.Len()+extra > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
