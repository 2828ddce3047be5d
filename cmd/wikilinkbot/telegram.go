package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sadenar/DiscordWikiBot/internal/channelruntime/telegram"
	"github.com/sadenar/DiscordWikiBot/internal/configutil"
	"github.com/sadenar/DiscordWikiBot/internal/logutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTelegramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot (long polling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			allowed, err := parseChatIDs(allowedChatIDs(cmd))
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			linker, err := linkerFromViper(runCtx, logger, nil)
			if err != nil {
				return err
			}
			return telegram.Run(runCtx, telegram.RunOptions{
				BotToken:       configutil.FlagOrViperString(cmd, "telegram-bot-token", "telegram.bot_token"),
				BaseURL:        configutil.FlagOrViperString(cmd, "telegram-base-url", "telegram.base_url"),
				AllowedChatIDs: allowed,
				PollTimeout:    configutil.FlagOrViperDuration(cmd, "telegram-poll-timeout", "telegram.poll_timeout"),
				TaskTimeout:    viper.GetDuration("linking.task_timeout"),
				MaxConcurrency: configutil.FlagOrViperInt(cmd, "telegram-max-concurrency", "telegram.max_concurrency"),
				BusMaxInFlight: viper.GetInt("bus.max_inflight"),
				Linker:         linker,
				Logger:         logger,
			})
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("telegram-base-url", "https://api.telegram.org", "Telegram API base URL.")
	cmd.Flags().StringArray("telegram-allowed-chat-id", nil, "Allowed chat id(s). If empty, allows all.")
	cmd.Flags().Duration("telegram-poll-timeout", 0, "Long polling timeout for getUpdates.")
	cmd.Flags().Int("telegram-max-concurrency", 3, "Max number of messages answered concurrently.")

	return cmd
}

func allowedChatIDs(cmd *cobra.Command) []string {
	v, _ := cmd.Flags().GetStringArray("telegram-allowed-chat-id")
	if cmd.Flags().Changed("telegram-allowed-chat-id") {
		return v
	}
	return viper.GetStringSlice("telegram.allowed_chat_ids")
}

func parseChatIDs(raw []string) ([]int64, error) {
	out := make([]int64, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id %q: %w", item, err)
		}
		out = append(out, id)
	}
	return out, nil
}
