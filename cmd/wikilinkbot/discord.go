package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sadenar/DiscordWikiBot/internal/channelruntime/discord"
	"github.com/sadenar/DiscordWikiBot/internal/configutil"
	"github.com/sadenar/DiscordWikiBot/internal/logutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDiscordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discord",
		Short: "Run the Discord bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			linker, err := linkerFromViper(runCtx, logger, nil)
			if err != nil {
				return err
			}
			return discord.Run(runCtx, discord.RunOptions{
				Token:          configutil.FlagOrViperString(cmd, "discord-token", "discord.token"),
				MaxConcurrency: configutil.FlagOrViperInt(cmd, "discord-max-concurrency", "discord.max_concurrency"),
				BusMaxInFlight: viper.GetInt("bus.max_inflight"),
				TaskTimeout:    viper.GetDuration("linking.task_timeout"),
				Linker:         linker,
				Logger:         logger,
			})
		},
	}

	cmd.Flags().String("discord-token", "", "Discord bot token.")
	cmd.Flags().Int("discord-max-concurrency", 8, "Max number of messages answered concurrently.")

	return cmd
}
