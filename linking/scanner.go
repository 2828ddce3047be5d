package linking

import "regexp"

type TokenKind int

const (
	Bracket TokenKind = iota + 1 // [[Title]] or [[Title|label]]
	Brace                        // {{Title}} or {{Title|params}}
)

func (k TokenKind) String() string {
	switch k {
	case Bracket:
		return "bracket"
	case Brace:
		return "brace"
	default:
		return "unknown"
	}
}

// Token is one raw reference found in a message. Text is the part before any '|'.
// Position is the byte offset of the reference in the code-stripped text.
type Token struct {
	Kind     TokenKind
	Text     string
	Position int
}

var (
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern = regexp.MustCompile("`.*?`")

	// Parser functions ({{#if:...}}) are not references.
	referencePattern = regexp.MustCompile(
		`\[\[([^\[\]|\n]+)(?:\|[^\[\]|\n]*)?\]\]` +
			`|\{\{([^#{}|\n][^{}|\n]*)(?:\|[^{}\n]*)?\}\}`,
	)
)

// StripCode deletes fenced and inline code spans.
func StripCode(text string) string {
	text = fencedCodePattern.ReplaceAllString(text, "")
	return inlineCodePattern.ReplaceAllString(text, "")
}

// Scan returns the references of text in order of appearance. Code spans are skipped.
func Scan(text string) []Token {
	text = StripCode(text)
	matches := referencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Token, 0, len(matches))
	for _, m := range matches {
		switch {
		case m[2] >= 0:
			out = append(out, Token{Kind: Bracket, Text: text[m[2]:m[3]], Position: m[0]})
		case m[4] >= 0:
			out = append(out, Token{Kind: Brace, Text: text[m[4]:m[5]], Position: m[0]})
		}
	}
	return out
}
