// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memdoc is an in-memory document of plain-text paragraphs with
// named annotations. It implements refmark.Document and backs both the
// refmark CLI (through its YAML file format) and the engine's tests.
//
// Offsets are rune offsets within a paragraph. Spans and cursors handed
// out by a Document are live: they shift when text is inserted or removed
// before them, and become detached when the text they cover is removed.
// The document holds them weakly, so a handle nobody keeps stops being
// tracked; named spans stay alive through their annotation.
package memdoc

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"weak"

	"github.com/pdiddy/refmark/internal/refmark"
)

var _ refmark.Document = (*Document)(nil)

type paragraph struct {
	text []rune
}

// Span is a live range within one paragraph.
type Span struct {
	doc   *Document
	para  *paragraph
	start int
	end   int
	name  string
}

// Attached reports whether the span is still in its document.
func (s *Span) Attached() bool { return s.para != nil }

// Paragraph returns the index of the span's paragraph, or -1 if detached.
func (s *Span) Paragraph() int { return s.doc.indexOf(s.para) }

// Start returns the offset of the first rune in the span.
func (s *Span) Start() int { return s.start }

// End returns the offset just past the span.
func (s *Span) End() int { return s.end }

// Cursor is a live collapsed position.
type Cursor struct {
	doc  *Document
	para *paragraph
	off  int
}

// Paragraph returns the index of the cursor's paragraph, or -1 if detached.
func (c *Cursor) Paragraph() int { return c.doc.indexOf(c.para) }

// Offset returns the cursor's rune offset within its paragraph.
func (c *Cursor) Offset() int { return c.off }

// Document is an ordered list of paragraphs plus named annotations.
type Document struct {
	paragraphs  []*paragraph
	annotations map[string]*Span
	spans       []weak.Pointer[Span]
	cursors     []weak.Pointer[Cursor]
}

// New creates a document with the given paragraphs.
func New(paragraphs ...string) *Document {
	d := &Document{annotations: make(map[string]*Span)}
	for _, p := range paragraphs {
		d.AppendParagraph(p)
	}
	return d
}

// blankLineRe separates paragraphs in plain text.
var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// FromText splits plain text or Markdown into paragraphs on blank lines.
func FromText(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	d := New()
	for _, p := range blankLineRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			d.AppendParagraph(p)
		}
	}
	return d
}

// ParagraphCount returns the number of paragraphs.
func (d *Document) ParagraphCount() int {
	return len(d.paragraphs)
}

// Paragraph returns the text of paragraph i.
func (d *Document) Paragraph(i int) (string, error) {
	if i < 0 || i >= len(d.paragraphs) {
		return "", fmt.Errorf("%w: paragraph %d of %d", ErrInvalidPosition, i, len(d.paragraphs))
	}
	return string(d.paragraphs[i].text), nil
}

// Text renders the document with paragraphs separated by blank lines.
func (d *Document) Text() string {
	parts := make([]string, len(d.paragraphs))
	for i, p := range d.paragraphs {
		parts[i] = string(p.text)
	}
	return strings.Join(parts, "\n\n")
}

// AppendParagraph adds a paragraph at the end and returns its index.
func (d *Document) AppendParagraph(text string) int {
	d.paragraphs = append(d.paragraphs, &paragraph{text: []rune(text)})
	return len(d.paragraphs) - 1
}

// InsertParagraph adds a paragraph so that it ends up at index at.
func (d *Document) InsertParagraph(at int, text string) error {
	if at < 0 || at > len(d.paragraphs) {
		return fmt.Errorf("%w: paragraph %d of %d", ErrInvalidPosition, at, len(d.paragraphs))
	}
	d.paragraphs = slices.Insert(d.paragraphs, at, &paragraph{text: []rune(text)})
	return nil
}

// MoveParagraph moves paragraph from so that it ends up at index to. The
// annotations inside it move along.
func (d *Document) MoveParagraph(from, to int) error {
	n := len(d.paragraphs)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d of %d", ErrInvalidPosition, from, to, n)
	}
	p := d.paragraphs[from]
	d.paragraphs = slices.Delete(d.paragraphs, from, from+1)
	d.paragraphs = slices.Insert(d.paragraphs, to, p)
	return nil
}

// DeleteParagraph removes paragraph i with its annotations.
func (d *Document) DeleteParagraph(i int) error {
	if i < 0 || i >= len(d.paragraphs) {
		return fmt.Errorf("%w: paragraph %d of %d", ErrInvalidPosition, i, len(d.paragraphs))
	}
	p := d.paragraphs[i]
	d.paragraphs = slices.Delete(d.paragraphs, i, i+1)
	d.detachSpans(func(s *Span) bool { return s.para == p })
	d.cursors = slices.DeleteFunc(d.cursors, func(wp weak.Pointer[Cursor]) bool {
		c := wp.Value()
		if c == nil {
			return true
		}
		if c.para == p {
			c.para = nil
			return true
		}
		return false
	})
	return nil
}

// CursorAt returns a cursor at rune offset off of paragraph p.
func (d *Document) CursorAt(p, off int) (*Cursor, error) {
	if p < 0 || p >= len(d.paragraphs) {
		return nil, fmt.Errorf("%w: paragraph %d of %d", ErrInvalidPosition, p, len(d.paragraphs))
	}
	para := d.paragraphs[p]
	if off < 0 || off > len(para.text) {
		return nil, fmt.Errorf("%w: offset %d in paragraph %d of length %d", ErrInvalidPosition, off, p, len(para.text))
	}
	return d.newCursor(para, off), nil
}

// Annotate creates the annotation name over runes [start, end) of
// paragraph p.
func (d *Document) Annotate(name string, p, start, end int) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPosition)
	}
	if _, ok := d.annotations[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAnnotation, name)
	}
	if p < 0 || p >= len(d.paragraphs) {
		return fmt.Errorf("%w: paragraph %d of %d", ErrInvalidPosition, p, len(d.paragraphs))
	}
	para := d.paragraphs[p]
	if start < 0 || end < start || end > len(para.text) {
		return fmt.Errorf("%w: span [%d, %d) in paragraph %d of length %d", ErrInvalidPosition, start, end, p, len(para.text))
	}
	s := d.newSpan(para, start, end)
	s.name = name
	d.annotations[name] = s
	return nil
}

// AnnotationNames returns the annotation names in lexical order.
func (d *Document) AnnotationNames() ([]string, error) {
	names := make([]string, 0, len(d.annotations))
	for name := range d.annotations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Anchor returns the span of the named annotation.
func (d *Document) Anchor(name string) (refmark.Anchor, error) {
	s, ok := d.annotations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnnotationNotFound, name)
	}
	return s, nil
}

// CompareAnchors orders spans by paragraph, then by start offset. Spans
// starting at the same place, detached spans, and foreign handles compare
// as unknown.
func (d *Document) CompareAnchors(a, b refmark.Anchor) refmark.Order {
	sa, err := d.span(a)
	if err != nil {
		return refmark.OrderUnknown
	}
	sb, err := d.span(b)
	if err != nil {
		return refmark.OrderUnknown
	}
	pa, pb := d.indexOf(sa.para), d.indexOf(sb.para)
	switch {
	case pa < pb, pa == pb && sa.start < sb.start:
		return refmark.OrderBefore
	case pa > pb, pa == pb && sa.start > sb.start:
		return refmark.OrderAfter
	default:
		return refmark.OrderUnknown
	}
}

// AnchorText returns the text covered by a.
func (d *Document) AnchorText(a refmark.Anchor) (string, error) {
	s, err := d.span(a)
	if err != nil {
		return "", err
	}
	return string(s.para.text[s.start:s.end]), nil
}

// RemoveAnnotationContent deletes the text of a. Every annotation lying
// inside the removed text is removed as well.
func (d *Document) RemoveAnnotationContent(a refmark.Anchor) (refmark.Cursor, error) {
	s, err := d.span(a)
	if err != nil {
		return nil, err
	}
	para, start, end := s.para, s.start, s.end
	d.removeRange(s, para, start, end)
	return d.newCursor(para, start), nil
}

// InsertText inserts text at c. The cursor ends up after the new text.
func (d *Document) InsertText(c refmark.Cursor, text string) (refmark.Anchor, error) {
	cur, err := d.cursor(c)
	if err != nil {
		return nil, err
	}
	runes := []rune(text)
	para, off := cur.para, cur.off
	d.insertRunes(para, off, runes)
	return d.newSpan(para, off, off+len(runes)), nil
}

// WrapAsAnnotation names the range a. An unnamed span becomes the
// annotation itself.
func (d *Document) WrapAsAnnotation(name string, a refmark.Anchor) error {
	s, err := d.span(a)
	if err != nil {
		return err
	}
	if s.name != "" {
		return d.Annotate(name, d.indexOf(s.para), s.start, s.end)
	}
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPosition)
	}
	if _, ok := d.annotations[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAnnotation, name)
	}
	s.name = name
	d.annotations[name] = s
	return nil
}

// CharBefore returns the rune before c. A paragraph break reads as '\n';
// the start of the document has no character.
func (d *Document) CharBefore(c refmark.Cursor) (rune, bool) {
	cur, err := d.cursor(c)
	if err != nil {
		return 0, false
	}
	if cur.off > 0 {
		return cur.para.text[cur.off-1], true
	}
	if d.indexOf(cur.para) > 0 {
		return '\n', true
	}
	return 0, false
}

// CharAfter returns the rune after c. A paragraph break reads as '\n';
// the end of the document has no character.
func (d *Document) CharAfter(c refmark.Cursor) (rune, bool) {
	cur, err := d.cursor(c)
	if err != nil {
		return 0, false
	}
	if cur.off < len(cur.para.text) {
		return cur.para.text[cur.off], true
	}
	if d.indexOf(cur.para) < len(d.paragraphs)-1 {
		return '\n', true
	}
	return 0, false
}

// IsParagraphStart reports whether c is at offset 0 of its paragraph.
func (d *Document) IsParagraphStart(c refmark.Cursor) bool {
	cur, err := d.cursor(c)
	return err == nil && cur.off == 0
}

// IsParagraphEnd reports whether c is at the end of its paragraph.
func (d *Document) IsParagraphEnd(c refmark.Cursor) bool {
	cur, err := d.cursor(c)
	return err == nil && cur.off == len(cur.para.text)
}

func (d *Document) newSpan(para *paragraph, start, end int) *Span {
	s := &Span{doc: d, para: para, start: start, end: end}
	d.spans = append(d.spans, weak.Make(s))
	return s
}

func (d *Document) newCursor(para *paragraph, off int) *Cursor {
	c := &Cursor{doc: d, para: para, off: off}
	d.cursors = append(d.cursors, weak.Make(c))
	return c
}

func (d *Document) span(a refmark.Anchor) (*Span, error) {
	s, ok := a.(*Span)
	if !ok || s == nil || s.doc != d {
		return nil, ErrForeignHandle
	}
	if s.para == nil || d.indexOf(s.para) < 0 {
		return nil, ErrDetached
	}
	return s, nil
}

func (d *Document) cursor(c refmark.Cursor) (*Cursor, error) {
	cur, ok := c.(*Cursor)
	if !ok || cur == nil || cur.doc != d {
		return nil, ErrForeignHandle
	}
	if cur.para == nil || d.indexOf(cur.para) < 0 {
		return nil, ErrDetached
	}
	return cur, nil
}

func (d *Document) indexOf(p *paragraph) int {
	if p == nil {
		return -1
	}
	return slices.Index(d.paragraphs, p)
}

// insertRunes splices runes into para at off. Positions at or after off
// move right; a span straddling off grows.
func (d *Document) insertRunes(para *paragraph, off int, runes []rune) {
	n := len(runes)
	para.text = slices.Insert(para.text, off, runes...)
	d.eachSpan(func(s *Span) {
		if s.para != para {
			return
		}
		if s.start >= off {
			s.start += n
			s.end += n
		} else if s.end > off {
			s.end += n
		}
	})
	d.eachCursor(func(c *Cursor) {
		if c.para == para && c.off >= off {
			c.off += n
		}
	})
}

// removeRange deletes runes [start, end) of para, the content of target.
// Target and the spans inside the range are detached; an empty span is
// inside only when it lies strictly between start and end. Positions after
// the range move left.
func (d *Document) removeRange(target *Span, para *paragraph, start, end int) {
	n := end - start
	para.text = slices.Delete(para.text, start, end)
	d.detachSpans(func(s *Span) bool {
		if s == target {
			return true
		}
		if s.para != para {
			return false
		}
		if s.start == s.end {
			return start < s.start && s.start < end
		}
		return s.start >= start && s.end <= end
	})
	shift := func(pos int) int {
		switch {
		case pos >= end:
			return pos - n
		case pos > start:
			return start
		default:
			return pos
		}
	}
	d.eachSpan(func(s *Span) {
		if s.para == para {
			s.start, s.end = shift(s.start), shift(s.end)
		}
	})
	d.eachCursor(func(c *Cursor) {
		if c.para == para {
			c.off = shift(c.off)
		}
	})
}

// eachSpan calls fn for every live span and forgets collected ones.
func (d *Document) eachSpan(fn func(*Span)) {
	d.spans = slices.DeleteFunc(d.spans, func(wp weak.Pointer[Span]) bool {
		s := wp.Value()
		if s == nil {
			return true
		}
		fn(s)
		return false
	})
}

// eachCursor calls fn for every live cursor and forgets collected ones.
func (d *Document) eachCursor(fn func(*Cursor)) {
	d.cursors = slices.DeleteFunc(d.cursors, func(wp weak.Pointer[Cursor]) bool {
		c := wp.Value()
		if c == nil {
			return true
		}
		fn(c)
		return false
	})
}

// detachSpans detaches the spans matching fn and drops their annotations.
func (d *Document) detachSpans(fn func(*Span) bool) {
	d.spans = slices.DeleteFunc(d.spans, func(wp weak.Pointer[Span]) bool {
		s := wp.Value()
		if s == nil {
			return true
		}
		if !fn(s) {
			return false
		}
		if s.name != "" && d.annotations[s.name] == s {
			delete(d.annotations, s.name)
		}
		s.para = nil
		return true
	})
}

// trackedHandles returns the number of spans and cursors still followed.
func (d *Document) trackedHandles() (spans, cursors int) {
	d.eachSpan(func(*Span) {})
	d.eachCursor(func(*Cursor) {})
	return len(d.spans), len(d.cursors)
}
