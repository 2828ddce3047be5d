package main

import (
	"time"

	"github.com/sadenar/DiscordWikiBot/internal/guildcfg"
	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Wiki
	viper.SetDefault("wiki.url", guildcfg.DefaultWikiURL)
	viper.SetDefault("wiki.lang", guildcfg.DefaultLang)
	viper.SetDefault("wiki.user_agent", "wikilinkbot/1.0 (+https://github.com/sadenar/DiscordWikiBot)")
	viper.SetDefault("wiki.fetch_timeout", 10*time.Second)

	// Linking
	viper.SetDefault("linking.max_parallel", 4)
	viper.SetDefault("linking.task_timeout", 30*time.Second)

	// Bus
	viper.SetDefault("bus.max_inflight", 1024)

	// Discord
	viper.SetDefault("discord.token", "")
	viper.SetDefault("discord.max_concurrency", 8)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.max_concurrency", 3)
	viper.SetDefault("telegram.allowed_chat_ids", []string{})

	// Logging
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
	viper.SetDefault("debug", false)
}
