package clifmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultTableWidth   = 100
	defaultMinLastWidth = 24
)

// TableOptions describes a plain column table. The last column wraps to the
// terminal width; the others are padded to their widest cell.
type TableOptions struct {
	Title        string
	Headers      []string
	Rows         [][]string
	EmptyText    string
	DefaultWidth int
}

func PrintTable(out io.Writer, opts TableOptions) {
	if out == nil {
		out = os.Stdout
	}

	if title := strings.TrimSpace(opts.Title); title != "" {
		fmt.Fprintln(out, Headerf("%s (%d)", title, len(opts.Rows)))
	}
	if len(opts.Rows) == 0 || len(opts.Headers) == 0 {
		emptyText := strings.TrimSpace(opts.EmptyText)
		if emptyText == "" {
			emptyText = "No entries."
		}
		fmt.Fprintln(out, Warn(emptyText))
		return
	}

	cols := len(opts.Headers)
	widths := make([]int, cols)
	for i, h := range opts.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range opts.Rows {
		for i := 0; i < cols-1 && i < len(row); i++ {
			if w := utf8.RuneCountInString(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	lead := 0
	for i := 0; i < cols-1; i++ {
		lead += widths[i] + 2
	}
	widths[cols-1] = lastColumnWidth(out, lead, opts.DefaultWidth)

	header := make([]string, cols)
	rule := make([]string, cols)
	for i, h := range opts.Headers {
		header[i] = Key(padRightRunes(h, widths[i]))
		rule[i] = Dim(strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(out, strings.TrimRight(strings.Join(header, "  "), " "))
	fmt.Fprintln(out, strings.Join(rule, "  "))

	for _, row := range opts.Rows {
		cells := make([]string, cols)
		for i := 0; i < cols-1; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = padRightRunes(cell, widths[i])
		}
		cells[0] = Success(cells[0])
		last := ""
		if len(row) >= cols {
			last = row[cols-1]
		}
		lines := wrapTextRunes(last, widths[cols-1])
		cells[cols-1] = lines[0]
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, "  "), " "))
		for _, line := range lines[1:] {
			fmt.Fprintln(out, strings.Repeat(" ", lead)+line)
		}
	}
}

func lastColumnWidth(out io.Writer, lead, defaultWidth int) int {
	if defaultWidth <= 0 {
		defaultWidth = defaultTableWidth
	}
	width := defaultWidth
	if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if terminalWidth, _, err := term.GetSize(int(file.Fd())); err == nil && terminalWidth > 0 {
			width = terminalWidth
		}
	}
	if w := width - lead; w > defaultMinLastWidth {
		return w
	}
	return defaultMinLastWidth
}

func padRightRunes(s string, width int) string {
	missing := width - utf8.RuneCountInString(s)
	if missing <= 0 {
		return s
	}
	return s + strings.Repeat(" ", missing)
}

// wrapTextRunes wraps on spaces; URLs have none, so long ones are cut by rune count.
func wrapTextRunes(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" || width <= 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			flush()
			current = word
		}
	}
	flush()
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
