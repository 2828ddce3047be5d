package linking

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sadenar/DiscordWikiBot/wiki"
)

// MetadataSource is satisfied by *wiki.MetadataProvider.
type MetadataSource interface {
	Resolve(ctx context.Context, baseURL string) (wiki.SiteMetadata, error)
}

// Reference is a resolved link, comparable by URL.
type Reference struct {
	URL      string
	Position int
}

var (
	interwikiPrefixPattern = regexp.MustCompile(`^:?([A-Za-z-]+):`)
	namespacePrefixPattern = regexp.MustCompile(`^:?(.*):`)
	substPattern           = regexp.MustCompile(`(?i)^(?:subst|подст):`)
)

// Resolver maps scanned tokens to page URLs, following interwiki prefixes across sites.
type Resolver struct {
	sites  MetadataSource
	logger *slog.Logger
}

// NewResolver fails when sites is nil; a nil logger means slog.Default.
func NewResolver(sites MetadataSource, logger *slog.Logger) (*Resolver, error) {
	if sites == nil {
		return nil, fmt.Errorf("metadata source is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{sites: sites, logger: logger}, nil
}

// siteContext tracks where a single reference currently points.
type siteContext struct {
	origin wiki.SiteMetadata
	active wiki.SiteMetadata
	trail  []string
	// languageVariant is set when the last interwiki hop targeted another language
	// edition; only then does the active site's namespace map apply.
	languageVariant bool
}

func (c *siteContext) atOrigin() bool {
	return c.active.BaseURL == c.origin.BaseURL
}

// Resolve turns tok into a URL, starting on the origin wiki. A non-nil error means the
// token produces no link.
func (r *Resolver) Resolve(ctx context.Context, tok Token, origin wiki.SiteMetadata) (Reference, error) {
	title := strings.ReplaceAll(strings.TrimSpace(tok.Text), `\`, "")
	if title == "" {
		return Reference{}, ErrEmptyTitle
	}
	if err := wiki.ValidateTitle(title); err != nil {
		return Reference{}, fmt.Errorf("%q: %w", title, err)
	}

	sc := &siteContext{origin: origin, active: origin}
	namespace := ""

	switch tok.Kind {
	case Brace:
		namespace = origin.TemplateNamespace
		title = strings.TrimSpace(substPattern.ReplaceAllString(title, ""))
	case Bracket:
		var err error
		title, err = r.followInterwiki(ctx, sc, title)
		if err != nil {
			return Reference{}, err
		}
	default:
		return Reference{}, fmt.Errorf("unknown token kind %d", tok.Kind)
	}

	if m := namespacePrefixPattern.FindStringSubmatch(title); m != nil {
		var names wiki.SiteMetadata
		usable := false
		switch {
		case sc.atOrigin():
			names, usable = sc.origin, true
		case sc.languageVariant:
			names, usable = sc.active, true
		}
		if usable {
			if name, ok := names.LookupNamespace(m[1]); ok {
				namespace = name
				title = strings.TrimSpace(title[len(m[0]):])
			}
		}
	}

	if namespace != "" && title == "" {
		return Reference{}, ErrNamespaceOnly
	}
	if title != "" {
		if !sc.active.CaseSensitive {
			title = wiki.CapitalizeFirst(title)
		}
		if namespace != "" {
			title = namespace + ":" + title
		}
		title = wiki.EncodeTitle(title)
	}
	return Reference{URL: wiki.PageURL(sc.active.BaseURL, title), Position: tok.Position}, nil
}

// followInterwiki strips leading interwiki prefixes, switching the active site for each.
// The chase stops once the visited trail outgrows the active site's interwiki map; the
// remaining text is then linked on the last site reached.
func (r *Resolver) followInterwiki(ctx context.Context, sc *siteContext, title string) (string, error) {
	for {
		m := interwikiPrefixPattern.FindStringSubmatch(title)
		if m == nil {
			return title, nil
		}
		prefix := strings.ToLower(m[1])
		target, ok := sc.active.LookupInterwiki(prefix)
		if !ok {
			return title, nil
		}
		sc.trail = append(sc.trail, prefix)
		if len(sc.trail) > len(sc.active.Interwiki) {
			r.logger.Debug("linking_interwiki_chain_stopped",
				"trail", strings.Join(sc.trail, ":"),
				"site", sc.active.BaseURL,
				"reason", ErrCycleTerminated.Error(),
			)
			return title, nil
		}
		meta, err := r.sites.Resolve(ctx, target.URL)
		if err != nil {
			return "", fmt.Errorf("interwiki %q: %w", prefix, err)
		}
		meta.BaseURL = target.URL
		sc.active = meta
		sc.languageVariant = target.LanguageVariant
		title = strings.TrimSpace(title[len(m[0]):])
	}
}
