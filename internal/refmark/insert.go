// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// closingPunctuation never gets a space inserted before it.
const closingPunctuation = ".,;:!?)]}"

// InsertCitation places a new citation for keys at c and returns its mark.
// Empty keys are replaced by fresh random keys. After the mark is in the
// document the registry is rescanned, which renumbers the document when
// the style is numeric; the returned mark reflects that state.
//
// When the mark cannot be placed, the text written so far is removed and
// the provisional numbers it took are released.
func (r *Registry) InsertCitation(c Cursor, keys []string) (*ReferenceMark, error) {
	keys = fillMissingKeys(keys)
	numbering, highest := maps.Clone(r.keyToNumber), r.highest
	m, err := r.CreateMark(keys)
	if err != nil {
		r.keyToNumber, r.highest = numbering, highest
		return nil, err
	}

	if err := r.placeMark(c, m); err != nil {
		r.forget(m)
		r.keyToNumber, r.highest = numbering, highest
		return nil, err
	}

	r.numeric = r.formatter.Numeric()
	if _, err := r.Rescan(); err != nil {
		return nil, err
	}
	placed, ok := r.MarkByID(m.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s after rescan", ErrMarkNotFound, m.ID)
	}
	return placed, nil
}

// placeMark writes the mark's text at c, with the configured spacing, and
// wraps it under the mark's name. On failure it removes what it wrote.
func (r *Registry) placeMark(c Cursor, m *ReferenceMark) (err error) {
	var written []Anchor
	defer func() {
		if err == nil {
			return
		}
		for _, a := range slices.Backward(written) {
			if _, rerr := r.doc.RemoveAnnotationContent(a); rerr != nil {
				err = errors.Join(err, fmt.Errorf("removing partial citation text: %w", rerr))
			}
		}
	}()

	if r.cfg.Spacing.Before && needsSpaceBefore(r.doc, c) {
		space, err := r.doc.InsertText(c, " ")
		if err != nil {
			return fmt.Errorf("inserting leading space: %w", err)
		}
		written = append(written, space)
	}
	spaceAfter := r.cfg.Spacing.After && needsSpaceAfter(r.doc, c)

	anchor, err := r.doc.InsertText(c, r.formatter.Format(m.Keys, m.Numbers))
	if err != nil {
		return fmt.Errorf("inserting citation: %w", err)
	}
	written = append(written, anchor)
	if err := r.doc.WrapAsAnnotation(m.Name, anchor); err != nil {
		return fmt.Errorf("wrapping %s: %w", m.Name, err)
	}
	m.Anchor = anchor

	if spaceAfter {
		if _, err := r.doc.InsertText(c, " "); err != nil {
			return fmt.Errorf("inserting trailing space: %w", err)
		}
	}
	return nil
}

// needsSpaceBefore reports whether the text before c runs into the
// insertion point. The start of the document and a paragraph break count
// as whitespace.
func needsSpaceBefore(doc Document, c Cursor) bool {
	if doc.IsParagraphStart(c) {
		return false
	}
	ch, ok := doc.CharBefore(c)
	if !ok {
		return false
	}
	return !unicode.IsSpace(ch)
}

// needsSpaceAfter is the mirror of needsSpaceBefore. Closing punctuation
// also stays attached to the citation.
func needsSpaceAfter(doc Document, c Cursor) bool {
	if doc.IsParagraphEnd(c) {
		return false
	}
	ch, ok := doc.CharAfter(c)
	if !ok {
		return false
	}
	return !unicode.IsSpace(ch) && !strings.ContainsRune(closingPunctuation, ch)
}

// fillMissingKeys replaces empty keys with random ones so every citation
// can be addressed.
func fillMissingKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			key = "key-" + uuid.NewString()
		}
		out[i] = key
	}
	return out
}
