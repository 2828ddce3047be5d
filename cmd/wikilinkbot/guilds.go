package main

import (
	"github.com/sadenar/DiscordWikiBot/internal/clifmt"
	"github.com/sadenar/DiscordWikiBot/internal/guildcfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGuildsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guilds",
		Short: "Show the wiki and reply language each configured scope resolves against",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := guildcfg.New(viper.GetViper())
			rows := [][]string{{"(default)", cfg.Lang(""), cfg.WikiURL("")}}
			for _, id := range cfg.Guilds() {
				rows = append(rows, []string{id, cfg.Lang(id), cfg.WikiURL(id)})
			}
			clifmt.PrintTable(cmd.OutOrStdout(), clifmt.TableOptions{
				Title:   "Scopes",
				Headers: []string{"SCOPE", "LANG", "WIKI"},
				Rows:    rows,
			})
			return cfg.Validate()
		},
	}
}
