package linking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultMaxParallel = 4

// SiteConfig supplies the wiki and reply language for a scope (a guild or chat id).
// Unknown scopes fall back to the global defaults.
type SiteConfig interface {
	WikiURL(scope string) string
	Lang(scope string) string
}

// Message is one chat message handed to the linker.
type Message struct {
	Scope   string
	Text    string
	FromBot bool
}

// LinkerOptions configures NewLinker. Sites and Config are required; Labels falls back
// to DefaultLabels.
type LinkerOptions struct {
	Sites       MetadataSource
	Config      SiteConfig
	Labels      func(lang string) Labels
	MaxParallel int
	Logger      *slog.Logger
}

// Linker runs the per-message pass: scan, resolve every reference, compose the reply.
type Linker struct {
	sites       MetadataSource
	config      SiteConfig
	resolver    *Resolver
	labels      func(lang string) Labels
	maxParallel int
	logger      *slog.Logger
}

// NewLinker validates opts and applies defaults (slog.Default, MaxParallel 4).
func NewLinker(opts LinkerOptions) (*Linker, error) {
	if opts.Sites == nil {
		return nil, fmt.Errorf("metadata source is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("site config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver, err := NewResolver(opts.Sites, logger)
	if err != nil {
		return nil, err
	}
	labels := opts.Labels
	if labels == nil {
		labels = func(string) Labels { return DefaultLabels }
	}
	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}
	return &Linker{
		sites:       opts.Sites,
		config:      opts.Config,
		resolver:    resolver,
		labels:      labels,
		maxParallel: maxParallel,
		logger:      logger,
	}, nil
}

// Answer returns the reply for msg. ok is false when nothing should be sent; failures of
// single references only drop those references.
func (l *Linker) Answer(ctx context.Context, msg Message) (string, bool) {
	if l == nil || msg.FromBot {
		return "", false
	}
	tokens := Scan(msg.Text)
	if len(tokens) == 0 {
		return "", false
	}

	baseURL := strings.TrimSpace(l.config.WikiURL(msg.Scope))
	origin, err := l.sites.Resolve(ctx, baseURL)
	if err != nil {
		l.logger.Warn("linking_origin_metadata_error", "scope", msg.Scope, "wiki", baseURL, "error", err.Error())
		return "", false
	}
	origin.BaseURL = baseURL

	resolved := make([]*Reference, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxParallel)
	for i, tok := range tokens {
		i, tok := i, tok
		g.Go(func() error {
			ref, err := l.resolver.Resolve(gctx, tok, origin)
			if err != nil {
				l.logger.Debug("linking_reference_skipped",
					"scope", msg.Scope,
					"kind", tok.Kind.String(),
					"text", tok.Text,
					"error", err.Error(),
				)
				return nil
			}
			resolved[i] = &ref
			return nil
		})
	}
	_ = g.Wait()

	refs := make([]Reference, 0, len(resolved))
	for _, ref := range resolved {
		if ref != nil {
			refs = append(refs, *ref)
		}
	}
	return Compose(refs, l.labels(l.config.Lang(msg.Scope)))
}
