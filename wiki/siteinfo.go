package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	apiPath             = "/w/api.php"
	defaultUserAgent    = "wikilinkbot/1.0"
	templateNamespaceID = 10
	maxSiteInfoBytes    = 8 << 20
)

// SiteInfoClient fetches site metadata from the MediaWiki action API.
type SiteInfoClient struct {
	http      *http.Client
	userAgent string
}

func NewSiteInfoClient(httpClient *http.Client, userAgent string) *SiteInfoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &SiteInfoClient{http: httpClient, userAgent: userAgent}
}

// APIURL maps an article URL pattern such as https://example.org/wiki/$1 to its api.php endpoint.
func APIURL(baseURL string) (string, error) {
	if !IsArticleURL(baseURL) {
		return "", fmt.Errorf("not a wiki article url: %s", baseURL)
	}
	endpoint := strings.Replace(baseURL, ArticlePath, apiPath, 1)
	if i := strings.Index(endpoint, apiPath); i >= 0 {
		endpoint = endpoint[:i+len(apiPath)]
	}
	if strings.HasPrefix(endpoint, "//") {
		endpoint = "https:" + endpoint
	}
	return endpoint, nil
}

type siteInfoResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
	Query *struct {
		General struct {
			Case string `json:"case"`
			Lang string `json:"lang"`
		} `json:"general"`
		Namespaces       map[string]siteInfoNamespace `json:"namespaces"`
		NamespaceAliases []struct {
			ID    int    `json:"id"`
			Alias string `json:"alias"`
		} `json:"namespacealiases"`
		InterwikiMap []struct {
			Prefix   string `json:"prefix"`
			URL      string `json:"url"`
			Language string `json:"language,omitempty"`
			SiteName string `json:"sitename,omitempty"`
		} `json:"interwikimap"`
	} `json:"query,omitempty"`
}

type siteInfoNamespace struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Canonical string `json:"canonical,omitempty"`
}

// FetchSiteMetadata implements Fetcher. URL patterns that are not wiki article paths
// have no queryable API and yield empty metadata.
func (c *SiteInfoClient) FetchSiteMetadata(ctx context.Context, baseURL string) (SiteMetadata, error) {
	if c == nil || c.http == nil {
		return SiteMetadata{}, fmt.Errorf("siteinfo client is not initialized")
	}
	if !IsArticleURL(baseURL) {
		return SiteMetadata{BaseURL: baseURL}, nil
	}
	endpoint, err := APIURL(baseURL)
	if err != nil {
		return SiteMetadata{}, err
	}
	q := url.Values{}
	q.Set("action", "query")
	q.Set("meta", "siteinfo")
	q.Set("siprop", "general|namespaces|namespacealiases|interwikimap")
	q.Set("format", "json")
	q.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return SiteMetadata{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SiteMetadata{}, err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxSiteInfoBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return SiteMetadata{}, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SiteMetadata{}, fmt.Errorf("siteinfo http %d", resp.StatusCode)
	}
	return ParseSiteInfo(baseURL, raw)
}

// ParseSiteInfo builds SiteMetadata from a formatversion=2 siteinfo response body.
func ParseSiteInfo(baseURL string, raw []byte) (SiteMetadata, error) {
	var out siteInfoResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return SiteMetadata{}, fmt.Errorf("decode siteinfo: %w", err)
	}
	if out.Error != nil {
		return SiteMetadata{}, fmt.Errorf("siteinfo api error: %s: %s", out.Error.Code, out.Error.Info)
	}
	if out.Query == nil {
		return SiteMetadata{}, fmt.Errorf("siteinfo response has no query")
	}

	meta := SiteMetadata{
		BaseURL:           baseURL,
		Interwiki:         make(map[string]InterwikiTarget, len(out.Query.InterwikiMap)),
		Namespaces:        make(map[string]string, len(out.Query.Namespaces)+len(out.Query.NamespaceAliases)),
		TemplateNamespace: "Template",
		CaseSensitive:     strings.EqualFold(strings.TrimSpace(out.Query.General.Case), "case-sensitive"),
	}

	byID := make(map[int]string, len(out.Query.Namespaces))
	for _, ns := range out.Query.Namespaces {
		byID[ns.ID] = ns.Name
		meta.Namespaces[NamespaceKey(ns.Name)] = ns.Name
		if ns.Canonical != "" {
			meta.Namespaces[NamespaceKey(ns.Canonical)] = ns.Name
		}
		if ns.ID == templateNamespaceID && ns.Name != "" {
			meta.TemplateNamespace = ns.Name
		}
	}
	for _, alias := range out.Query.NamespaceAliases {
		name, ok := byID[alias.ID]
		if !ok || strings.TrimSpace(alias.Alias) == "" {
			continue
		}
		meta.Namespaces[NamespaceKey(alias.Alias)] = name
	}

	for _, iw := range out.Query.InterwikiMap {
		prefix := strings.ToLower(strings.TrimSpace(iw.Prefix))
		target := strings.TrimSpace(iw.URL)
		if prefix == "" || target == "" {
			continue
		}
		if strings.HasPrefix(target, "//") {
			target = "https:" + target
		}
		meta.Interwiki[prefix] = InterwikiTarget{
			URL:             target,
			LanguageVariant: iw.Language != "" || iw.SiteName != "",
		}
	}
	return meta, nil
}
