package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrMetadataFetch = errors.New("site metadata fetch failed")

const defaultFetchTimeout = 10 * time.Second

// Fetcher loads the metadata of one wiki from its source.
type Fetcher interface {
	FetchSiteMetadata(ctx context.Context, baseURL string) (SiteMetadata, error)
}

type FetcherFunc func(ctx context.Context, baseURL string) (SiteMetadata, error)

func (f FetcherFunc) FetchSiteMetadata(ctx context.Context, baseURL string) (SiteMetadata, error) {
	return f(ctx, baseURL)
}

type ProviderOptions struct {
	Fetcher      Fetcher
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// MetadataProvider caches site metadata per base URL for the lifetime of the process.
// Concurrent misses for the same URL share a single fetch.
type MetadataProvider struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	entries map[string]SiteMetadata
	group   singleflight.Group
}

func NewMetadataProvider(opts ProviderOptions) (*MetadataProvider, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("metadata fetcher is required")
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataProvider{
		fetcher: opts.Fetcher,
		timeout: timeout,
		logger:  logger,
		entries: make(map[string]SiteMetadata),
	}, nil
}

func (p *MetadataProvider) Cached(baseURL string) (SiteMetadata, bool) {
	p.mu.RLock()
	meta, ok := p.entries[baseURL]
	p.mu.RUnlock()
	return meta, ok
}

// Resolve returns the metadata for baseURL, fetching it on first use.
// Errors wrap ErrMetadataFetch.
func (p *MetadataProvider) Resolve(ctx context.Context, baseURL string) (SiteMetadata, error) {
	if p == nil {
		return SiteMetadata{}, fmt.Errorf("%w: provider is not initialized", ErrMetadataFetch)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return SiteMetadata{}, fmt.Errorf("%w: base url is required", ErrMetadataFetch)
	}
	if meta, ok := p.Cached(baseURL); ok {
		return meta, nil
	}

	ch := p.group.DoChan(baseURL, func() (any, error) {
		if meta, ok := p.Cached(baseURL); ok {
			return meta, nil
		}
		// Detached from the first caller so its cancellation does not fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		start := time.Now()
		meta, err := p.fetcher.FetchSiteMetadata(fetchCtx, baseURL)
		if err != nil {
			p.logger.Warn("wiki_metadata_fetch_error", "base_url", baseURL, "error", err.Error())
			return SiteMetadata{}, err
		}
		meta.BaseURL = baseURL
		p.mu.Lock()
		p.entries[baseURL] = meta
		p.mu.Unlock()
		p.logger.Debug("wiki_metadata_fetched",
			"base_url", baseURL,
			"interwiki", len(meta.Interwiki),
			"namespaces", len(meta.Namespaces),
			"case_sensitive", meta.CaseSensitive,
			"duration", time.Since(start).String(),
		)
		return meta, nil
	})

	select {
	case <-ctx.Done():
		return SiteMetadata{}, fmt.Errorf("%w: %s: %w", ErrMetadataFetch, baseURL, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, ErrMetadataFetch) {
				return SiteMetadata{}, res.Err
			}
			return SiteMetadata{}, fmt.Errorf("%w: %s: %w", ErrMetadataFetch, baseURL, res.Err)
		}
		return res.Val.(SiteMetadata), nil
	}
}

// Prime loads baseURL eagerly. Startup uses it so the default wiki is always resolvable.
func (p *MetadataProvider) Prime(ctx context.Context, baseURL string) error {
	_, err := p.Resolve(ctx, baseURL)
	return err
}
