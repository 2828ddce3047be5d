package wiki

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrInvalidTitle = errors.New("invalid page title")

// Page title restrictions, see https://www.mediawiki.org/wiki/Manual:Page_title
var illegalTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[<>]`),
	regexp.MustCompile(`[\[\]]`),
	regexp.MustCompile(`[{}]`),
	regexp.MustCompile(`\|`),
	regexp.MustCompile(`~{3,}`),
	regexp.MustCompile(`(?i)&(?:[a-z]+|#x?\d+);`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ValidateTitle rejects titles MediaWiki would refuse. Only the part before the first
// anchor is checked.
func ValidateTitle(title string) error {
	if i := strings.IndexByte(title, '#'); i >= 0 {
		title = title[:i]
	}
	for _, re := range illegalTitlePatterns {
		if re.MatchString(title) {
			return ErrInvalidTitle
		}
	}
	return nil
}

// EncodeTitle applies the {{PAGENAMEE}} conversions: whitespace runs become a single
// underscore and a fixed set of reserved characters is percent-encoded.
// See https://www.mediawiki.org/wiki/Manual:PAGENAMEE_encoding
//
// The result is not idempotent: encoding twice escapes the '%' of earlier escapes.
func EncodeTitle(title string) string {
	title = whitespaceRun.ReplaceAllString(title, "_")
	var b strings.Builder
	b.Grow(len(title))
	for i := 0; i < len(title); i++ {
		c := title[i]
		if isEncodedTitleByte(c) {
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

func isEncodedTitleByte(c byte) bool {
	switch c {
	case '"', '%', '&', '+', '=', '?', '\\', '^', '`', '~':
		return true
	default:
		return false
	}
}

// CapitalizeFirst upper-cases the first letter of title, as wikis with
// first-letter-insensitive titles do. The mapping is rune for rune, so ß stays ß.
func CapitalizeFirst(title string) string {
	r, size := utf8.DecodeRuneInString(title)
	if r == utf8.RuneError && size <= 1 {
		return title
	}
	return string(unicode.ToUpper(r)) + title[size:]
}
