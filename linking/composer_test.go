package linking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComposeEmpty(t *testing.T) {
	if out, ok := Compose(nil, DefaultLabels); ok || out != "" {
		t.Fatalf("Compose(nil) = %q, %v", out, ok)
	}
}

func TestComposeSingle(t *testing.T) {
	out, ok := Compose([]Reference{{URL: "https://example.org/wiki/Test"}}, DefaultLabels)
	if !ok {
		t.Fatalf("Compose() ok = false")
	}
	if out != "Link: <https://example.org/wiki/Test>" {
		t.Fatalf("Compose() = %q", out)
	}
}

func TestComposePluralRestoresOrderAndDedupes(t *testing.T) {
	refs := []Reference{
		{URL: "https://example.org/wiki/B", Position: 30},
		{URL: "https://example.org/wiki/A", Position: 0},
		{URL: "https://example.org/wiki/A", Position: 50},
		{URL: "https://example.org/wiki/C", Position: 10},
	}
	out, ok := Compose(refs, Labels{Singular: "Ссылка", Plural: "Ссылки"})
	if !ok {
		t.Fatalf("Compose() ok = false")
	}
	want := "Ссылки:\n<https://example.org/wiki/A>\n<https://example.org/wiki/C>\n<https://example.org/wiki/B>"
	if out != want {
		t.Fatalf("Compose() = %q, want %q", out, want)
	}
}

func TestComposeDuplicatesCollapseToSingle(t *testing.T) {
	refs := []Reference{
		{URL: "https://example.org/wiki/File_with", Position: 0},
		{URL: "https://example.org/wiki/File_with", Position: 40},
	}
	out, _ := Compose(refs, Labels{})
	if out != "Link: <https://example.org/wiki/File_with>" {
		t.Fatalf("Compose() = %q", out)
	}
}

func TestDedupeComparesExactURL(t *testing.T) {
	refs := []Reference{
		{URL: "https://example.org/wiki/Foo_bar", Position: 0},
		{URL: "https://example.org/wiki/Foo%20bar", Position: 1},
		{URL: "https://example.org/wiki/Foo_bar", Position: 2},
	}
	want := []Reference{
		{URL: "https://example.org/wiki/Foo_bar", Position: 0},
		{URL: "https://example.org/wiki/Foo%20bar", Position: 1},
	}
	if diff := cmp.Diff(want, Dedupe(refs)); diff != "" {
		t.Fatalf("Dedupe() mismatch (-want +got):\n%s", diff)
	}
	if refs[2].Position != 2 {
		t.Fatalf("Dedupe() must not modify its input")
	}
}
