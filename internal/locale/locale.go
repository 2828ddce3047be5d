package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/sadenar/DiscordWikiBot/linking"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

type catalogFile struct {
	Lang   string `yaml:"lang"`
	Labels struct {
		Link  string `yaml:"link"`
		Links string `yaml:"links"`
	} `yaml:"labels"`
}

// Catalog maps reply languages to response labels. English is the fallback.
type Catalog struct {
	tags    []language.Tag
	labels  map[language.Tag]linking.Labels
	matcher language.Matcher
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded files.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(catalogFS, "catalogs")
	})
	return defaultCatalog, defaultErr
}

// Load reads every *.yaml file in dir. The catalog must contain English.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locale catalogs: %w", err)
	}
	c := &Catalog{
		tags:   []language.Tag{language.English},
		labels: make(map[language.Tag]linking.Labels),
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale catalog %s: %w", entry.Name(), err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse locale catalog %s: %w", entry.Name(), err)
		}
		tag, err := language.Parse(strings.TrimSpace(file.Lang))
		if err != nil {
			return nil, fmt.Errorf("locale catalog %s: %w", entry.Name(), err)
		}
		labels := linking.Labels{
			Singular: strings.TrimSpace(file.Labels.Link),
			Plural:   strings.TrimSpace(file.Labels.Links),
		}
		if labels.Singular == "" || labels.Plural == "" {
			return nil, fmt.Errorf("locale catalog %s: link and links labels are required", entry.Name())
		}
		if _, dup := c.labels[tag]; dup {
			return nil, fmt.Errorf("locale catalog %s: duplicate language %s", entry.Name(), tag)
		}
		c.labels[tag] = labels
		if tag != language.English {
			c.tags = append(c.tags, tag)
		}
	}
	if _, ok := c.labels[language.English]; !ok {
		return nil, fmt.Errorf("locale catalogs: english catalog is required")
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Labels returns the labels for lang, falling back to English for unknown or
// malformed language codes.
func (c *Catalog) Labels(lang string) linking.Labels {
	if c == nil {
		return linking.DefaultLabels
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return c.labels[language.English]
	}
	_, idx, conf := c.matcher.Match(language.Make(lang))
	if conf == language.No {
		return c.labels[language.English]
	}
	return c.labels[c.tags[idx]]
}

// Languages lists the catalog languages, English first.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.tags))
	for _, tag := range c.tags {
		out = append(out, tag.String())
	}
	return out
}
