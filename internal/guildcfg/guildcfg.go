// Package guildcfg answers per-guild settings from viper, falling back to the global
// wiki.url and wiki.lang values.
package guildcfg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sadenar/DiscordWikiBot/wiki"
	"github.com/spf13/viper"
)

const (
	KeyWikiURL = "wiki.url"
	KeyLang    = "wiki.lang"
	guildsKey  = "guilds"

	DefaultWikiURL = "https://en.wikipedia.org/wiki/$1"
	DefaultLang    = "en"
)

// Config is read-only; nothing writes guild overrides back.
type Config struct {
	v *viper.Viper
}

func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.GetViper()
	}
	return &Config{v: v}
}

// WikiURL returns the article URL pattern for scope. Empty or unknown scopes get the
// global default.
func (c *Config) WikiURL(scope string) string {
	if value := c.guildValue(scope, "wiki"); value != "" {
		return NormalizeWikiURL(value)
	}
	if value := NormalizeWikiURL(c.v.GetString(KeyWikiURL)); value != "" {
		return value
	}
	return DefaultWikiURL
}

func (c *Config) Lang(scope string) string {
	if value := c.guildValue(scope, "lang"); value != "" {
		return value
	}
	if value := strings.TrimSpace(c.v.GetString(KeyLang)); value != "" {
		return value
	}
	return DefaultLang
}

// Guilds lists the guild ids that carry overrides.
func (c *Config) Guilds() []string {
	raw := c.v.GetStringMap(guildsKey)
	out := make([]string, 0, len(raw))
	for id := range raw {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Validate checks the default wiki and every override point at an article path.
func (c *Config) Validate() error {
	if err := validateWikiURL(KeyWikiURL, c.WikiURL("")); err != nil {
		return err
	}
	for _, id := range c.Guilds() {
		value := c.guildValue(id, "wiki")
		if value == "" {
			continue
		}
		if err := validateWikiURL(guildsKey+"."+id+".wiki", NormalizeWikiURL(value)); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeWikiURL trims spaces and the angle brackets chat clients put around links.
func NormalizeWikiURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<")
	raw = strings.TrimSuffix(raw, ">")
	return strings.TrimSpace(raw)
}

func (c *Config) guildValue(scope, field string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" || strings.ContainsAny(scope, ". ") {
		return ""
	}
	return strings.TrimSpace(c.v.GetString(guildsKey + "." + scope + "." + field))
}

func validateWikiURL(key, value string) error {
	if !wiki.IsArticleURL(value) {
		return fmt.Errorf("%s must contain %s: %q", key, wiki.ArticlePath, value)
	}
	if !strings.HasPrefix(value, "https://") && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "//") {
		return fmt.Errorf("%s must be an http(s) url: %q", key, value)
	}
	return nil
}
