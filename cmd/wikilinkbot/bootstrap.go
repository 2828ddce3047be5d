package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sadenar/DiscordWikiBot/internal/guildcfg"
	"github.com/sadenar/DiscordWikiBot/internal/locale"
	"github.com/sadenar/DiscordWikiBot/linking"
	"github.com/sadenar/DiscordWikiBot/wiki"
	"github.com/spf13/viper"
)

// linkerFromViper wires the resolution engine from configuration. The default wiki is
// fetched before returning; a bot that cannot reach it does not start.
func linkerFromViper(ctx context.Context, logger *slog.Logger, httpClient *http.Client) (*linking.Linker, error) {
	cfg := guildcfg.New(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := wiki.NewSiteInfoClient(httpClient, viper.GetString("wiki.user_agent"))
	provider, err := wiki.NewMetadataProvider(wiki.ProviderOptions{
		Fetcher:      client,
		FetchTimeout: viper.GetDuration("wiki.fetch_timeout"),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	defaultWiki := cfg.WikiURL("")
	if err := provider.Prime(ctx, defaultWiki); err != nil {
		return nil, fmt.Errorf("load default wiki %s: %w", defaultWiki, err)
	}
	logger.Info("wiki_default_ready", "wiki", defaultWiki, "lang", cfg.Lang(""), "guild_overrides", len(cfg.Guilds()))

	catalog, err := locale.Default()
	if err != nil {
		return nil, err
	}
	return linking.NewLinker(linking.LinkerOptions{
		Sites:       provider,
		Config:      cfg,
		Labels:      catalog.Labels,
		MaxParallel: viper.GetInt("linking.max_parallel"),
		Logger:      logger,
	})
}
