package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	busruntime "github.com/sadenar/DiscordWikiBot/internal/bus"
	telegrambus "github.com/sadenar/DiscordWikiBot/internal/bus/adapters/telegram"
	"github.com/sadenar/DiscordWikiBot/internal/channelruntime/replyflow"
)

// Run long-polls the Bot API and answers wiki references until ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	loopOpts := resolveRuntimeLoopOptionsFromRunOptions(opts)
	if loopOpts.BotToken == "" {
		return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or WIKILINKBOT_TELEGRAM_BOT_TOKEN)")
	}
	if opts.Linker == nil {
		return fmt.Errorf("linker is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	api := newTelegramAPI(opts.HTTPClient, loopOpts.BaseURL, loopOpts.BotToken)
	return runTelegramLoop(ctx, api, opts.Linker, logger, loopOpts)
}

func runTelegramLoop(ctx context.Context, api *telegramAPI, linker replyflow.Answerer, logger *slog.Logger, opts runtimeLoopOptions) error {
	allowed := make(map[int64]bool, len(opts.AllowedChatIDs))
	for _, id := range opts.AllowedChatIDs {
		allowed[id] = true
	}

	inprocBus, err := busruntime.StartInproc(busruntime.BootstrapOptions{
		MaxInFlight: opts.BusMaxInFlight,
		Logger:      logger,
		Component:   "telegram",
	})
	if err != nil {
		return err
	}
	defer inprocBus.Close()

	inbound, err := telegrambus.NewInboundAdapter(telegrambus.InboundAdapterOptions{Bus: inprocBus})
	if err != nil {
		return err
	}
	delivery, err := telegrambus.NewDeliveryAdapter(telegrambus.DeliveryAdapterOptions{
		SendText: func(ctx context.Context, target telegrambus.Target, text string) error {
			return sendText(ctx, api, target, text)
		},
	})
	if err != nil {
		return err
	}

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	flow, err := replyflow.Start(workersCtx, replyflow.Options{
		Bus:     inprocBus,
		Linker:  linker,
		Channel: busruntime.ChannelTelegram,
		Deliver: delivery.Deliver,
		Scope: func(msg busruntime.BusMessage) string {
			return msg.Extensions.ChannelID
		},
		MaxConcurrency: opts.MaxConcurrency,
		TaskTimeout:    opts.TaskTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer flow.Wait()
	defer stopWorkers()

	me, err := api.getMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	logger.Info("telegram_start",
		"bot_id", me.ID,
		"bot_username", me.Username,
		"poll_timeout", opts.PollTimeout.String(),
		"max_concurrency", opts.MaxConcurrency,
		"allowed_chats", len(allowed),
	)

	var offset int64
	for {
		if ctx.Err() != nil {
			logger.Info("telegram_stop")
			return nil
		}
		updates, next, err := api.getUpdates(ctx, offset, opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("telegram_stop")
				return nil
			}
			logger.Warn("telegram_get_updates_error", "error", err.Error())
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		offset = next

		for _, u := range updates {
			msg, ok := inboundFromUpdate(u, me.ID, allowed)
			if !ok {
				continue
			}
			accepted, err := inbound.HandleInboundMessage(workersCtx, msg)
			if err != nil {
				logger.Warn("telegram_bus_publish_error", "chat_id", msg.ChatID, "message_id", msg.MessageID, "error", err.Error())
				continue
			}
			if !accepted {
				logger.Debug("telegram_bus_deduped", "chat_id", msg.ChatID, "message_id", msg.MessageID)
			}
		}
	}
}

// inboundFromUpdate keeps text messages written by people in allowed chats. An empty
// allow list admits every chat.
func inboundFromUpdate(u telegramUpdate, selfID int64, allowed map[int64]bool) (telegrambus.InboundMessage, bool) {
	m := u.Message
	if m == nil || m.Chat == nil || m.From == nil {
		return telegrambus.InboundMessage{}, false
	}
	if m.From.IsBot || m.From.ID == selfID {
		return telegrambus.InboundMessage{}, false
	}
	if len(allowed) > 0 && !allowed[m.Chat.ID] {
		return telegrambus.InboundMessage{}, false
	}
	text := m.Text
	if strings.TrimSpace(text) == "" {
		text = m.Caption
	}
	if strings.TrimSpace(text) == "" {
		return telegrambus.InboundMessage{}, false
	}
	var sentAt time.Time
	if m.Date > 0 {
		sentAt = time.Unix(m.Date, 0).UTC()
	}
	return telegrambus.InboundMessage{
		ChatID:       m.Chat.ID,
		MessageID:    m.MessageID,
		SentAt:       sentAt,
		ChatType:     m.Chat.Type,
		FromUserID:   m.From.ID,
		FromUsername: m.From.Username,
		Text:         text,
	}, true
}

func sendText(ctx context.Context, api *telegramAPI, target telegrambus.Target, text string) error {
	for i, chunk := range splitMessage(text, maxMessageLen) {
		replyTo := target.ReplyToMessageID
		if i > 0 {
			replyTo = 0
		}
		if err := api.sendMessage(ctx, target.ChatID, chunk, replyTo); err != nil {
			return fmt.Errorf("telegram send to %s: %w", strconv.FormatInt(target.ChatID, 10), err)
		}
	}
	return nil
}

// splitMessage cuts text at line breaks into chunks of at most max runes.
func splitMessage(text string, max int) []string {
	lines := strings.Split(text, "\n")
	var out []string
	cur := ""
	curLen := 0
	for _, line := range lines {
		runes := []rune(line)
		for len(runes) > max {
			if cur != "" {
				out = append(out, cur)
				cur, curLen = "", 0
			}
			out = append(out, string(runes[:max]))
			runes = runes[max:]
		}
		n := len(runes)
		if cur != "" && curLen+1+n > max {
			out = append(out, cur)
			cur, curLen = "", 0
		}
		if cur != "" {
			cur += "\n"
			curLen++
		}
		cur += string(runes)
		curLen += n
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
