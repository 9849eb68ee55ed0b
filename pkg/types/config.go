// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration and data types shared by the
// refmark packages.
package types

// StyleConfig selects how citation marks are displayed.
type StyleConfig struct {
	// Numeric selects a numeric style ("[1, 2]"). When false, marks show
	// their citation keys ("[Key1; Key2]") and are never renumbered.
	Numeric bool `json:"numeric" yaml:"numeric"`

	// Open and Close bracket a numeric citation (default "[" and "]").
	Open  string `json:"open" yaml:"open"`
	Close string `json:"close" yaml:"close"`

	// Separator joins the numbers of a multi-key citation (default ", ").
	Separator string `json:"separator" yaml:"separator"`
}

// SpacingConfig controls the spaces added around an inserted citation.
type SpacingConfig struct {
	// Before adds a space before the citation unless the insertion point
	// follows whitespace, a paragraph break, or the start of the document.
	Before bool `json:"before" yaml:"before"`

	// After adds a space after the citation unless the insertion point
	// precedes whitespace, closing punctuation, a paragraph break, or the
	// end of the document.
	After bool `json:"after" yaml:"after"`
}

// CitationConfig groups the settings of a reference-mark session.
type CitationConfig struct {
	Style   StyleConfig   `json:"style" yaml:"style"`
	Spacing SpacingConfig `json:"spacing" yaml:"spacing"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format"`
}

// LedgerConfig holds settings for the numbering history database.
type LedgerConfig struct {
	// Dir is the directory containing refmark.db.
	Dir string `json:"dir" yaml:"dir"`
}

// Config is the complete refmark configuration.
type Config struct {
	CitationConfig `yaml:",inline"`

	Log    LogConfig    `json:"log" yaml:"log"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger"`
}

// DefaultCitationConfig returns a numeric style with both spacing rules on.
func DefaultCitationConfig() CitationConfig {
	return CitationConfig{
		Style: StyleConfig{
			Numeric:   true,
			Open:      "[",
			Close:     "]",
			Separator: ", ",
		},
		Spacing: SpacingConfig{Before: true, After: true},
	}
}
