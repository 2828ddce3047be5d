package linking

import (
	"context"
	"testing"
)

type staticConfig struct {
	wiki map[string]string
	lang map[string]string
}

func (c staticConfig) WikiURL(scope string) string {
	if v, ok := c.wiki[scope]; ok {
		return v
	}
	return originURL
}

func (c staticConfig) Lang(scope string) string {
	if v, ok := c.lang[scope]; ok {
		return v
	}
	return "en"
}

func newTestLinker(t *testing.T, cfg staticConfig) *Linker {
	t.Helper()
	l, err := NewLinker(LinkerOptions{
		Sites:  newFakeSites(),
		Config: cfg,
		Labels: func(lang string) Labels {
			if lang == "ru" {
				return Labels{Singular: "Ссылка", Plural: "Ссылки"}
			}
			return DefaultLabels
		},
		MaxParallel: 2,
	})
	if err != nil {
		t.Fatalf("NewLinker() error = %v", err)
	}
	return l
}

func TestLinkerAnswer(t *testing.T) {
	cases := []struct {
		name   string
		msg    Message
		want   string
		wantOK bool
	}{
		{name: "no references", msg: Message{Text: "hello there"}, wantOK: false},
		{name: "single", msg: Message{Text: "see [[Test]]"}, want: "Link: <https://example.org/wiki/Test>", wantOK: true},
		{name: "template", msg: Message{Text: "{{navbox}}"}, want: "Link: <https://example.org/wiki/Template:Navbox>", wantOK: true},
		{
			name:   "dedupe label variants",
			msg:    Message{Text: "[[File with | label]] and later [[File with]]"},
			want:   "Link: <https://example.org/wiki/File_with>",
			wantOK: true,
		},
		{
			name:   "invalid dropped others kept",
			msg:    Message{Text: "[[<script>]] [[w:en:Test]] {{navbox}} [[down:Foo]]"},
			want:   "Links:\n<https://en.wikipedia.example/wiki/Test>\n<https://example.org/wiki/Template:Navbox>",
			wantOK: true,
		},
		{name: "only invalid", msg: Message{Text: "[[<script>]]"}, wantOK: false},
		{name: "blank link", msg: Message{Text: "hello [[ ]] world"}, wantOK: false},
		{name: "bot sender ignored", msg: Message{Text: "[[Test]]", FromBot: true}, wantOK: false},
		{name: "code ignored", msg: Message{Text: "`[[Test]]`"}, wantOK: false},
		{
			name:   "scope wiki and language",
			msg:    Message{Scope: "guild-ru", Text: "[[a]] [[b]]"},
			want:   "Ссылки:\n<https://ru.example.org/wiki/A>\n<https://ru.example.org/wiki/B>",
			wantOK: true,
		},
		{name: "scope wiki unreachable", msg: Message{Scope: "guild-down", Text: "[[a]]"}, wantOK: false},
	}
	cfg := staticConfig{
		wiki: map[string]string{"guild-ru": russianURL, "guild-down": downURL},
		lang: map[string]string{"guild-ru": "ru"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLinker(t, cfg)
			got, ok := l.Answer(context.Background(), tc.msg)
			if ok != tc.wantOK {
				t.Fatalf("Answer() ok = %v, want %v (reply %q)", ok, tc.wantOK, got)
			}
			if got != tc.want {
				t.Fatalf("Answer() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLinkerPreservesOrderUnderConcurrency(t *testing.T) {
	l := newTestLinker(t, staticConfig{})
	text := ""
	want := "Links:"
	for _, title := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta"} {
		text += "[[" + title + "]] "
		want += "\n<https://example.org/wiki/" + title + ">"
	}
	for i := 0; i < 20; i++ {
		got, ok := l.Answer(context.Background(), Message{Text: text})
		if !ok || got != want {
			t.Fatalf("Answer() = %q, want %q", got, want)
		}
	}
}

func TestNewLinkerValidatesOptions(t *testing.T) {
	if _, err := NewLinker(LinkerOptions{Config: staticConfig{}}); err == nil {
		t.Fatalf("NewLinker() expected error without sites")
	}
	if _, err := NewLinker(LinkerOptions{Sites: newFakeSites()}); err == nil {
		t.Fatalf("NewLinker() expected error without config")
	}
}
