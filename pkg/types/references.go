// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReferenceEntry records a cited work in references.yaml.
type ReferenceEntry struct {
	// CitationKey is the key carried by reference marks (e.g. "Vaswani2017").
	CitationKey string `json:"citation_key" yaml:"citation_key"`

	// PaperID is an external identifier such as an arXiv ID or DOI.
	PaperID string `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`

	// Title is the cited work's title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names, surname last.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference (optional).
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// ReferencesFile holds the bibliography of a document.
type ReferencesFile struct {
	// Papers lists every known work.
	Papers []ReferenceEntry `json:"papers" yaml:"papers"`
}
