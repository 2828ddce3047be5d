package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadenar/DiscordWikiBot/internal/logutil"
	"github.com/sadenar/DiscordWikiBot/linking"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [text...]",
		Short: "Print the reply the bot would give to a message (reads stdin without args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if len(args) == 0 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}
			scope, _ := cmd.Flags().GetString("scope")

			linker, err := linkerFromViper(cmd.Context(), logger, nil)
			if err != nil {
				return err
			}
			reply, ok := linker.Answer(cmd.Context(), linking.Message{Scope: scope, Text: text})
			if !ok {
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}

	cmd.Flags().String("scope", "", "Guild or chat id whose overrides apply.")

	return cmd
}
