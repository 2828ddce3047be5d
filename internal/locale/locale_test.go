package locale

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/sadenar/DiscordWikiBot/linking"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	cases := []struct {
		lang string
		want linking.Labels
	}{
		{lang: "en", want: linking.Labels{Singular: "Link", Plural: "Links"}},
		{lang: "", want: linking.Labels{Singular: "Link", Plural: "Links"}},
		{lang: "ru", want: linking.Labels{Singular: "Ссылка", Plural: "Ссылки"}},
		{lang: "ru-RU", want: linking.Labels{Singular: "Ссылка", Plural: "Ссылки"}},
		{lang: "ja", want: linking.Labels{Singular: "Link", Plural: "Links"}},
		{lang: "not a tag!", want: linking.Labels{Singular: "Link", Plural: "Links"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, c.Labels(tc.lang)); diff != "" {
			t.Fatalf("Labels(%q) mismatch (-want +got):\n%s", tc.lang, diff)
		}
	}
	if diff := cmp.Diff([]string{"en", "ru"}, c.Languages()); diff != "" {
		t.Fatalf("Languages() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadCatalogs(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"missing english": {
			"c/ru.yaml": {Data: []byte("lang: ru\nlabels: {link: a, links: b}\n")},
		},
		"empty label": {
			"c/en.yaml": {Data: []byte("lang: en\nlabels: {link: Link}\n")},
		},
		"bad yaml": {
			"c/en.yaml": {Data: []byte("lang: [en\n")},
		},
		"duplicate": {
			"c/en.yaml":    {Data: []byte("lang: en\nlabels: {link: a, links: b}\n")},
			"c/en-us.yaml": {Data: []byte("lang: en\nlabels: {link: a, links: b}\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(fsys, "c"); err == nil {
				t.Fatalf("Load() expected error")
			}
		})
	}
}

func TestNilCatalogFallsBack(t *testing.T) {
	var c *Catalog
	if got := c.Labels("ru"); got != linking.DefaultLabels {
		t.Fatalf("Labels() = %+v", got)
	}
}
