// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package references

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names follow the CSL-YAML schema so that output is
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	CitationNumber int       `yaml:"citation-number,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family string `yaml:"family,omitempty"`
	Given  string `yaml:"given,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes entries as a CSL-YAML list to w.
func WriteCSL(entries []NumberedEntry, w io.Writer) error {
	items := make([]CSLItem, len(entries))
	for i, ne := range entries {
		items[i] = toCSLItem(ne)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(ne NumberedEntry) CSLItem {
	r := ne.Entry
	item := CSLItem{
		ID:             r.CitationKey,
		Type:           "article",
		Title:          r.Title,
		ContainerTitle: r.Venue,
		CitationNumber: ne.Number,
	}
	for _, a := range r.Authors {
		if name := parseAuthorName(a); name != (CSLName{}) {
			item.Author = append(item.Author, name)
		}
	}
	if r.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}
	if strings.HasPrefix(r.PaperID, "10.") {
		item.DOI = r.PaperID
	}
	return item
}

// parseAuthorName splits a name on its last space: everything before is
// given, the last token is family. A single token is a family name.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Family: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
