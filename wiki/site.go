package wiki

import "strings"

// Placeholder is the page slot inside a wiki URL pattern.
const Placeholder = "$1"

// ArticlePath is the path suffix that marks a URL pattern as a MediaWiki article path.
const ArticlePath = "/wiki/" + Placeholder

type InterwikiTarget struct {
	URL             string
	LanguageVariant bool
}

// SiteMetadata describes one wiki. It is never mutated after the fetch that built it.
type SiteMetadata struct {
	BaseURL           string
	Interwiki         map[string]InterwikiTarget
	Namespaces        map[string]string
	TemplateNamespace string
	CaseSensitive     bool
}

func (m SiteMetadata) LookupInterwiki(prefix string) (InterwikiTarget, bool) {
	if m.Interwiki == nil {
		return InterwikiTarget{}, false
	}
	t, ok := m.Interwiki[strings.ToLower(prefix)]
	return t, ok
}

func (m SiteMetadata) LookupNamespace(prefix string) (string, bool) {
	if m.Namespaces == nil {
		return "", false
	}
	name, ok := m.Namespaces[NamespaceKey(prefix)]
	return name, ok
}

// NamespaceKey folds a namespace prefix into the key used by SiteMetadata.Namespaces.
func NamespaceKey(prefix string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(prefix), "_", " "))
}

// IsArticleURL reports whether pattern is a MediaWiki article path that siteinfo can be queried for.
func IsArticleURL(pattern string) bool {
	return strings.Contains(pattern, ArticlePath)
}

// PageURL substitutes an already encoded title into a URL pattern.
func PageURL(pattern, encodedTitle string) string {
	return strings.ReplaceAll(pattern, Placeholder, encodedTitle)
}
