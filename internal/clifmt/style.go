package clifmt

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func Headerf(format string, args ...any) string {
	return headerStyle.Render(fmt.Sprintf(format, args...))
}

func Key(s string) string     { return keyStyle.Render(s) }
func Dim(s string) string     { return dimStyle.Render(s) }
func Warn(s string) string    { return warnStyle.Render(s) }
func Success(s string) string { return successStyle.Render(s) }
