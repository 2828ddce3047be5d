package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeVersion(cmd.OutOrStdout())
		},
	}
}

func writeVersion(w io.Writer) error {
	lines := []string{fmt.Sprintf("wikilinkbot %s (%s)", strings.TrimSpace(version), runtime.Version())}
	if c := strings.TrimSpace(commit); c != "" && c != "none" {
		lines = append(lines, "commit: "+c)
	}
	if d := strings.TrimSpace(date); d != "" && d != "unknown" {
		lines = append(lines, "date: "+d)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
