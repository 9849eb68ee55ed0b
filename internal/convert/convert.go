// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns citation keys typed as plain text, such as
// "[Vaswani2017; Kaplan2020]", into reference marks.
package convert

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/refmark/internal/memdoc"
	"github.com/pdiddy/refmark/internal/refmark"
)

// citationPattern matches bracketed text: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Result holds the outcome of a conversion run.
type Result struct {
	Converted int
	Failed    int
}

// Total returns the number of citations found.
func (r Result) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any citation could not be converted.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Citations replaces every bracketed list of citation keys in doc with a
// reference mark created through reg, printing per-citation status to w.
// Brackets that already belong to an annotation are left alone. A citation
// that cannot be converted keeps its original text.
func Citations(doc *memdoc.Document, reg *refmark.Registry, w io.Writer) (Result, error) {
	var result Result
	for p := range doc.ParagraphCount() {
		minStart := 0
		for {
			found, err := nextCitation(doc, p, minStart)
			if err != nil {
				return result, err
			}
			if found == nil {
				break
			}

			m, err := replace(doc, reg, p, found)
			if err != nil {
				fmt.Fprintf(w, "failed    %s in paragraph %d: %v\n", found.text, p, err)
				result.Failed++
				minStart = found.start + utf8.RuneCountInString(found.text)
				continue
			}
			fmt.Fprintf(w, "converted %s in paragraph %d\n", found.text, p)
			result.Converted++

			minStart = found.start + 1
			if span, ok := m.Anchor.(*memdoc.Span); ok {
				minStart = span.End()
			}
		}
	}
	return result, nil
}

// citation is a bracketed key list found in a paragraph. Offsets are in
// runes.
type citation struct {
	start, end int
	text       string
	keys       []string
}

// nextCitation finds the first convertible citation in paragraph p that
// starts at or after minStart and lies outside every annotation.
func nextCitation(doc *memdoc.Document, p, minStart int) (*citation, error) {
	text, err := doc.Paragraph(p)
	if err != nil {
		return nil, err
	}
	taken, err := annotatedRanges(doc, p)
	if err != nil {
		return nil, err
	}

	for _, m := range citationPattern.FindAllStringSubmatchIndex(text, -1) {
		keys := citationKeys(text[m[2]:m[3]])
		if keys == nil {
			continue
		}
		start := utf8.RuneCountInString(text[:m[0]])
		end := start + utf8.RuneCountInString(text[m[0]:m[1]])
		if start < minStart || overlaps(taken, start, end) {
			continue
		}
		return &citation{start: start, end: end, text: text[m[0]:m[1]], keys: keys}, nil
	}
	return nil, nil
}

// replace removes the typed citation and inserts a mark in its place. The
// typed text is restored when the insertion fails.
func replace(doc *memdoc.Document, reg *refmark.Registry, p int, c *citation) (*refmark.ReferenceMark, error) {
	const scratch = "convert:pending"
	if err := doc.Annotate(scratch, p, c.start, c.end); err != nil {
		return nil, err
	}
	anchor, err := doc.Anchor(scratch)
	if err != nil {
		return nil, err
	}
	cur, err := doc.RemoveAnnotationContent(anchor)
	if err != nil {
		return nil, err
	}

	m, err := reg.InsertCitation(cur, c.keys)
	if err != nil {
		if _, rerr := doc.InsertText(cur, c.text); rerr != nil {
			return nil, fmt.Errorf("%w (restoring text: %v)", err, rerr)
		}
		return nil, err
	}
	return m, nil
}

type span struct{ start, end int }

func annotatedRanges(doc *memdoc.Document, p int) ([]span, error) {
	names, err := doc.AnnotationNames()
	if err != nil {
		return nil, err
	}
	var out []span
	for _, name := range names {
		a, err := doc.Anchor(name)
		if err != nil {
			continue
		}
		s, ok := a.(*memdoc.Span)
		if ok && s.Paragraph() == p {
			out = append(out, span{s.Start(), s.End()})
		}
	}
	return out, nil
}

func overlaps(taken []span, start, end int) bool {
	for _, s := range taken {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

// citationKeys splits the inside of a bracket on semicolons. It returns nil
// unless every part is a citation key.
func citationKeys(inner string) []string {
	var keys []string
	for _, part := range strings.Split(inner, ";") {
		key := strings.TrimSpace(part)
		if !isCitationKey(key) {
			return nil
		}
		keys = append(keys, key)
	}
	return keys
}

// isCitationKey checks whether a string looks like a citation key (AuthorYear
// format). It rejects strings that look like Markdown links, numeric
// citations, or other bracket content.
func isCitationKey(s string) bool {
	hasLetter := false
	hasDigit := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '-', c == '_':
			// allowed
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}
