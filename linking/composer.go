package linking

import (
	"sort"
	"strings"
)

// Labels are the reply headers for one link and for several.
type Labels struct {
	Singular string
	Plural   string
}

var DefaultLabels = Labels{Singular: "Link", Plural: "Links"}

// Dedupe orders refs by position and keeps the first occurrence of each URL.
// URLs are compared as strings; two spellings of one page stay distinct.
func Dedupe(refs []Reference) []Reference {
	if len(refs) == 0 {
		return nil
	}
	sorted := append([]Reference(nil), refs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	seen := make(map[string]bool, len(sorted))
	out := sorted[:0]
	for _, ref := range sorted {
		if seen[ref.URL] {
			continue
		}
		seen[ref.URL] = true
		out = append(out, ref)
	}
	return out
}

// Compose formats the reply for refs. ok is false when there is nothing to send.
func Compose(refs []Reference, labels Labels) (string, bool) {
	refs = Dedupe(refs)
	if len(refs) == 0 {
		return "", false
	}
	if labels.Singular == "" {
		labels.Singular = DefaultLabels.Singular
	}
	if labels.Plural == "" {
		labels.Plural = DefaultLabels.Plural
	}
	if len(refs) == 1 {
		return labels.Singular + ": <" + refs[0].URL + ">", true
	}
	var b strings.Builder
	b.WriteString(labels.Plural)
	b.WriteString(":")
	for _, ref := range refs {
		b.WriteString("\n<")
		b.WriteString(ref.URL)
		b.WriteString(">")
	}
	return b.String(), true
}
