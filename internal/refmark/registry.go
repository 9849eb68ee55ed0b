// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refmark keeps citation reference marks in a live document
// consistent with a global citation numbering.
//
// The document is the source of truth. A Registry holds a derived view of
// the marks for one open document; Rescan throws that view away and
// rebuilds it from the annotation names, and RenumberAll assigns numbers by
// first appearance in document order, rewriting the marks whose numbers
// changed. A Registry is not safe for concurrent use.
package refmark

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/pdiddy/refmark/pkg/types"
)

// Registry owns the reference marks of one document session.
type Registry struct {
	doc       Document
	cfg       types.CitationConfig
	formatter Formatter
	logger    *slog.Logger
	metrics   *Metrics
	newID     func() string

	byName      map[string]*ReferenceMark
	order       []*ReferenceMark
	keyToNumber map[string]int
	highest     int

	// numeric is set when the most recent insertion used a numeric style;
	// Rescan then renumbers.
	numeric bool
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for skipped marks and failed rewrites.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithMetrics records registry activity on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithFormatter overrides the formatter derived from the style config.
func WithFormatter(f Formatter) Option {
	return func(r *Registry) { r.formatter = f }
}

// NewRegistry creates an empty registry for doc. Call Rescan to load the
// marks already in the document.
func NewRegistry(doc Document, cfg types.CitationConfig, opts ...Option) *Registry {
	r := &Registry{
		doc:         doc,
		cfg:         cfg,
		formatter:   FormatterFor(cfg.Style),
		logger:      slog.Default(),
		newID:       newMarkID,
		byName:      make(map[string]*ReferenceMark),
		keyToNumber: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.numeric = r.formatter.Numeric()
	return r
}

// newMarkID returns a short random token for the tail of a mark name.
func newMarkID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:6])
}

// ScanSummary holds counts from a rescan.
type ScanSummary struct {
	Registered int
	Skipped    int

	// Renumber is set when the rescan triggered a renumbering pass.
	Renumber *RenumberSummary
}

// CreateMark registers a new mark for keys, numbering each key with
// CitationNumber. The mark is appended in registration order; it is not
// placed in the document.
func (r *Registry) CreateMark(keys []string) (*ReferenceMark, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	for _, key := range keys {
		if !isToken(key) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}

	numbers := make([]int, len(keys))
	for i, key := range keys {
		numbers[i] = r.CitationNumber(key)
	}
	id := r.newID()
	name, err := EncodeName(keys, numbers, id)
	if err != nil {
		return nil, err
	}

	m := &ReferenceMark{
		Name:    name,
		Keys:    slices.Clone(keys),
		Numbers: numbers,
		ID:      id,
	}
	r.byName[name] = m
	r.order = append(r.order, m)
	return m, nil
}

// CitationNumber returns the number of key, assigning the next provisional
// number the first time a key is seen in this session.
func (r *Registry) CitationNumber(key string) int {
	if n, ok := r.keyToNumber[key]; ok {
		return n
	}
	r.highest++
	r.keyToNumber[key] = r.highest
	return r.highest
}

// HasCitationForKey reports whether any registered mark cites key.
func (r *Registry) HasCitationForKey(key string) bool {
	_, ok := r.keyToNumber[key]
	return ok
}

// Rescan rebuilds the registry from the document's annotations. Names that
// do not parse, and names whose anchor cannot be resolved, are logged and
// skipped. The only error returned is a failure to list the annotations, in
// which case the registry is left unchanged.
func (r *Registry) Rescan() (ScanSummary, error) {
	names, err := r.doc.AnnotationNames()
	if err != nil {
		return ScanSummary{}, fmt.Errorf("listing annotations: %w", err)
	}

	r.byName = make(map[string]*ReferenceMark, len(names))
	r.order = r.order[:0]
	r.keyToNumber = make(map[string]int)
	r.highest = 0

	var summary ScanSummary
	for _, name := range names {
		parsed, err := ParseName(name)
		if err != nil {
			r.logger.Warn("skipping malformed reference mark", "name", name, "error", err)
			summary.Skipped++
			continue
		}
		anchor, err := r.doc.Anchor(name)
		if err != nil {
			r.logger.Warn("skipping reference mark without anchor", "name", name, "error", err)
			summary.Skipped++
			continue
		}

		m := &ReferenceMark{
			Name:    name,
			Keys:    parsed.Keys,
			Numbers: parsed.Numbers,
			ID:      parsed.ID,
			Anchor:  anchor,
		}
		r.byName[name] = m
		r.order = append(r.order, m)
		for i, key := range parsed.Keys {
			r.keyToNumber[key] = parsed.Numbers[i]
			r.highest = max(r.highest, parsed.Numbers[i])
		}
		summary.Registered++
	}
	r.metrics.observeScan(summary)

	if r.numeric {
		rs := r.RenumberAll()
		summary.Renumber = &rs
	}
	return summary, nil
}

// MarksInOrder sorts the marks by their current document position and
// returns them. Marks whose anchors cannot be compared keep their previous
// relative order.
func (r *Registry) MarksInOrder() []*ReferenceMark {
	slices.SortStableFunc(r.order, func(a, b *ReferenceMark) int {
		switch r.doc.CompareAnchors(a.Anchor, b.Anchor) {
		case OrderBefore:
			return -1
		case OrderAfter:
			return 1
		default:
			return 0
		}
	})
	return slices.Clone(r.order)
}

// Marks returns the marks in registration order (or the order of the most
// recent MarksInOrder call).
func (r *Registry) Marks() []*ReferenceMark {
	return slices.Clone(r.order)
}

// MarkByName returns the mark registered under name.
func (r *Registry) MarkByName(name string) (*ReferenceMark, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// MarkByID returns the mark whose name ends in id.
func (r *Registry) MarkByID(id string) (*ReferenceMark, bool) {
	for _, m := range r.order {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Numbering returns a copy of the citation key to number map.
func (r *Registry) Numbering() map[string]int {
	return maps.Clone(r.keyToNumber)
}

// Highest returns the highest number assigned so far.
func (r *Registry) Highest() int {
	return r.highest
}

// Numeric reports whether rescans renumber the document.
func (r *Registry) Numeric() bool {
	return r.numeric
}

// SetNumeric turns renumbering on rescan on or off.
func (r *Registry) SetNumeric(numeric bool) {
	r.numeric = numeric
}

// forget drops a mark that never made it into the document.
func (r *Registry) forget(m *ReferenceMark) {
	delete(r.byName, m.Name)
	r.order = slices.DeleteFunc(r.order, func(x *ReferenceMark) bool { return x == m })
}
