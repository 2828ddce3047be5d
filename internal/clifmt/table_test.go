package clifmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrintTable(t *testing.T) {
	var out bytes.Buffer
	PrintTable(&out, TableOptions{
		Title:   "Scopes",
		Headers: []string{"SCOPE", "LANG", "WIKI"},
		Rows: [][]string{
			{"(default)", "en", "https://en.wikipedia.org/wiki/$1"},
			{"42", "ru", "https://ru.wikipedia.org/wiki/$1"},
		},
	})
	got := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	want := []string{
		"Scopes (2)",
		"SCOPE      LANG  WIKI",
		"---------  ----  " + strings.Repeat("-", 100-17),
		"(default)  en    https://en.wikipedia.org/wiki/$1",
		"42         ru    https://ru.wikipedia.org/wiki/$1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("PrintTable() mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintTableEmpty(t *testing.T) {
	var out bytes.Buffer
	PrintTable(&out, TableOptions{Headers: []string{"A"}, EmptyText: "Nothing here."})
	if got := strings.TrimSpace(out.String()); got != "Nothing here." {
		t.Fatalf("PrintTable() = %q", got)
	}
}

func TestWrapTextRunes(t *testing.T) {
	got := wrapTextRunes("abcdefgh ij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrapTextRunes() mismatch (-want +got):\n%s", diff)
	}
}
