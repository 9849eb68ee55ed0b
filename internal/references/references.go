// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package references checks the citation keys of a document against its
// bibliography and exports the cited entries in citation-number order.
package references

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refmark/pkg/types"
)

// LoadReferences reads a references.yaml file.
func LoadReferences(path string) (*types.ReferencesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}
	var refs types.ReferencesFile
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	return &refs, nil
}

// NumberedEntry is a bibliography entry with the citation number it has in
// the document.
type NumberedEntry struct {
	Number int
	Entry  types.ReferenceEntry
}

// Cited returns the entries whose keys appear in numbering, ordered by
// number, and the sorted keys that have no entry.
func Cited(refs *types.ReferencesFile, numbering map[string]int) ([]NumberedEntry, []string) {
	byKey := make(map[string]types.ReferenceEntry, len(refs.Papers))
	for _, r := range refs.Papers {
		if _, ok := byKey[r.CitationKey]; !ok {
			byKey[r.CitationKey] = r
		}
	}

	var entries []NumberedEntry
	var missing []string
	for key, n := range numbering {
		entry, ok := byKey[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		entries = append(entries, NumberedEntry{Number: n, Entry: entry})
	}
	slices.SortFunc(entries, func(a, b NumberedEntry) int {
		return cmp.Or(cmp.Compare(a.Number, b.Number), strings.Compare(a.Entry.CitationKey, b.Entry.CitationKey))
	})
	slices.Sort(missing)
	return entries, missing
}

// BibTeX renders entries as BibTeX in the order given.
func BibTeX(entries []NumberedEntry) string {
	var b strings.Builder
	for _, ne := range entries {
		r := ne.Entry
		fmt.Fprintf(&b, "%% [%d]\n", ne.Number)
		fmt.Fprintf(&b, "@article{%s,\n", r.CitationKey)
		fmt.Fprintf(&b, "  title = {%s},\n", r.Title)
		if len(r.Authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(r.Authors, " and "))
		}
		if r.Year > 0 {
			fmt.Fprintf(&b, "  year = {%d},\n", r.Year)
		}
		if r.Venue != "" {
			fmt.Fprintf(&b, "  journal = {%s},\n", r.Venue)
		}
		fmt.Fprintf(&b, "}\n\n")
	}
	return b.String()
}
