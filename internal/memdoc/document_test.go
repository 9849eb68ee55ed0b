// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memdoc

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refmark/internal/refmark"
)

func mustAnchor(t *testing.T, d *Document, name string) *Span {
	t.Helper()
	a, err := d.Anchor(name)
	require.NoError(t, err)
	return a.(*Span)
}

func TestFromText(t *testing.T) {
	d := FromText("# Title\r\n\r\nFirst line\nsame paragraph.\n  \n\nSecond.\n\n\n")

	require.Equal(t, 3, d.ParagraphCount())
	p, err := d.Paragraph(1)
	require.NoError(t, err)
	assert.Equal(t, "First line\nsame paragraph.", p)
	assert.Equal(t, "# Title\n\nFirst line\nsame paragraph.\n\nSecond.", d.Text())
}

func TestAnnotateRejects(t *testing.T) {
	d := New("Hello world.")
	require.NoError(t, d.Annotate("a", 0, 0, 5))

	tests := []struct {
		name       string
		annotation string
		p          int
		start, end int
		wantErr    error
	}{
		{"duplicate", "a", 0, 6, 11, ErrDuplicateAnnotation},
		{"empty name", "", 0, 0, 1, ErrInvalidPosition},
		{"no paragraph", "b", 1, 0, 1, ErrInvalidPosition},
		{"negative start", "b", 0, -1, 1, ErrInvalidPosition},
		{"reversed", "b", 0, 4, 2, ErrInvalidPosition},
		{"past end", "b", 0, 6, 13, ErrInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Annotate(tt.annotation, tt.p, tt.start, tt.end)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnnotationNamesSorted(t *testing.T) {
	d := New("abcdef")
	require.NoError(t, d.Annotate("zeta", 0, 0, 1))
	require.NoError(t, d.Annotate("alpha", 0, 4, 5))
	require.NoError(t, d.Annotate("mid", 0, 2, 3))

	names, err := d.AnnotationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	_, err = d.Anchor("missing")
	assert.ErrorIs(t, err, ErrAnnotationNotFound)
}

func TestInsertTextShiftsHandles(t *testing.T) {
	d := New("one two three")
	require.NoError(t, d.Annotate("two", 0, 4, 7))
	require.NoError(t, d.Annotate("one", 0, 0, 3))
	require.NoError(t, d.Annotate("three", 0, 8, 13))
	after, err := d.CursorAt(0, 8)
	require.NoError(t, err)
	before, err := d.CursorAt(0, 2)
	require.NoError(t, err)

	at, err := d.CursorAt(0, 4)
	require.NoError(t, err)
	a, err := d.InsertText(at, "big ")
	require.NoError(t, err)

	p, _ := d.Paragraph(0)
	assert.Equal(t, "one big two three", p)

	text, err := d.AnchorText(a)
	require.NoError(t, err)
	assert.Equal(t, "big ", text)
	assert.Equal(t, 8, at.Offset())
	assert.Equal(t, 12, after.Offset())
	assert.Equal(t, 2, before.Offset())

	for name, want := range map[string]string{"one": "one", "two": "two", "three": "three"} {
		got, err := d.AnchorText(mustAnchor(t, d, name))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestInsertTextInsideSpanGrowsIt(t *testing.T) {
	d := New("[12]")
	require.NoError(t, d.Annotate("m", 0, 0, 4))

	c, err := d.CursorAt(0, 2)
	require.NoError(t, err)
	_, err = d.InsertText(c, ", 3")
	require.NoError(t, err)

	text, err := d.AnchorText(mustAnchor(t, d, "m"))
	require.NoError(t, err)
	assert.Equal(t, "[1, 32]", text)
}

func TestInsertTextAtSpanEndLeavesIt(t *testing.T) {
	d := New("[1]")
	require.NoError(t, d.Annotate("m", 0, 0, 3))

	c, err := d.CursorAt(0, 3)
	require.NoError(t, err)
	_, err = d.InsertText(c, " ")
	require.NoError(t, err)

	text, err := d.AnchorText(mustAnchor(t, d, "m"))
	require.NoError(t, err)
	assert.Equal(t, "[1]", text)
}

func TestRemoveAnnotationContent(t *testing.T) {
	d := New("See [1] and [2].")
	require.NoError(t, d.Annotate("first", 0, 4, 7))
	require.NoError(t, d.Annotate("second", 0, 12, 15))
	first := mustAnchor(t, d, "first")

	cur, err := d.RemoveAnnotationContent(first)
	require.NoError(t, err)

	p, _ := d.Paragraph(0)
	assert.Equal(t, "See  and [2].", p)
	assert.Equal(t, 4, cur.(*Cursor).Offset())
	assert.False(t, first.Attached())

	_, err = d.Anchor("first")
	assert.ErrorIs(t, err, ErrAnnotationNotFound)
	_, err = d.AnchorText(first)
	assert.ErrorIs(t, err, ErrDetached)

	text, err := d.AnchorText(mustAnchor(t, d, "second"))
	require.NoError(t, err)
	assert.Equal(t, "[2]", text)

	a, err := d.InsertText(cur, "[9]")
	require.NoError(t, err)
	require.NoError(t, d.WrapAsAnnotation("first-again", a))
	p, _ = d.Paragraph(0)
	assert.Equal(t, "See [9] and [2].", p)
	assert.Equal(t, refmark.OrderBefore, d.CompareAnchors(mustAnchor(t, d, "first-again"), mustAnchor(t, d, "second")))
}

func TestRemoveDropsNestedAnnotations(t *testing.T) {
	d := New("x [ab] y")
	require.NoError(t, d.Annotate("outer", 0, 2, 6))
	require.NoError(t, d.Annotate("inner", 0, 3, 5))

	_, err := d.RemoveAnnotationContent(mustAnchor(t, d, "outer"))
	require.NoError(t, err)

	names, err := d.AnnotationNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRemoveKeepsAdjacentEmptyAnnotations(t *testing.T) {
	d := New("See [1] here.")
	require.NoError(t, d.Annotate("mark", 0, 4, 7))
	require.NoError(t, d.Annotate("before", 0, 4, 4))
	require.NoError(t, d.Annotate("inside", 0, 5, 5))
	require.NoError(t, d.Annotate("after", 0, 7, 7))

	_, err := d.RemoveAnnotationContent(mustAnchor(t, d, "mark"))
	require.NoError(t, err)

	names, err := d.AnnotationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"after", "before"}, names)
	for _, name := range names {
		s := mustAnchor(t, d, name)
		assert.True(t, s.Attached(), name)
		assert.Equal(t, 4, s.Start(), name)
		assert.Equal(t, 4, s.End(), name)
	}
}

func TestRemoveEmptyAnnotation(t *testing.T) {
	d := New("See here.")
	require.NoError(t, d.Annotate("empty", 0, 4, 4))
	require.NoError(t, d.Annotate("twin", 0, 4, 4))

	_, err := d.RemoveAnnotationContent(mustAnchor(t, d, "empty"))
	require.NoError(t, err)

	names, err := d.AnnotationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"twin"}, names)
}

func TestUnreferencedHandlesAreReleased(t *testing.T) {
	d := New("text")
	require.NoError(t, d.Annotate("keep", 0, 0, 4))

	for range 1000 {
		c, err := d.CursorAt(0, 0)
		require.NoError(t, err)
		_, err = d.InsertText(c, "x")
		require.NoError(t, err)
	}
	runtime.GC()

	spans, cursors := d.trackedHandles()
	assert.Less(t, spans, 10)
	assert.Less(t, cursors, 10)

	keep := mustAnchor(t, d, "keep")
	assert.Equal(t, 1000, keep.Start())
	text, err := d.AnchorText(keep)
	require.NoError(t, err)
	assert.Equal(t, "text", text)
}

func TestWrapAsAnnotation(t *testing.T) {
	d := New("abc")
	c, err := d.CursorAt(0, 3)
	require.NoError(t, err)
	a, err := d.InsertText(c, "[1]")
	require.NoError(t, err)

	require.NoError(t, d.WrapAsAnnotation("m", a))
	assert.Same(t, a, mustAnchor(t, d, "m"))

	// A named span is copied into a second annotation.
	require.NoError(t, d.WrapAsAnnotation("m2", a))
	assert.NotSame(t, a, mustAnchor(t, d, "m2"))
	assert.ErrorIs(t, d.WrapAsAnnotation("m", a), ErrDuplicateAnnotation)
}

func TestCompareAnchors(t *testing.T) {
	d := New("alpha beta", "gamma")
	require.NoError(t, d.Annotate("alpha", 0, 0, 5))
	require.NoError(t, d.Annotate("beta", 0, 6, 10))
	require.NoError(t, d.Annotate("beta-copy", 0, 6, 10))
	require.NoError(t, d.Annotate("gamma", 1, 0, 5))
	other := New("alpha")
	require.NoError(t, other.Annotate("alpha", 0, 0, 5))

	alpha, beta := mustAnchor(t, d, "alpha"), mustAnchor(t, d, "beta")
	gamma := mustAnchor(t, d, "gamma")

	tests := []struct {
		name string
		a, b refmark.Anchor
		want refmark.Order
	}{
		{"same paragraph", alpha, beta, refmark.OrderBefore},
		{"same paragraph reversed", beta, alpha, refmark.OrderAfter},
		{"across paragraphs", gamma, alpha, refmark.OrderAfter},
		{"same start", beta, mustAnchor(t, d, "beta-copy"), refmark.OrderUnknown},
		{"foreign", alpha, mustAnchor(t, other, "alpha"), refmark.OrderUnknown},
		{"nil", alpha, nil, refmark.OrderUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.CompareAnchors(tt.a, tt.b))
		})
	}

	require.NoError(t, d.MoveParagraph(1, 0))
	assert.Equal(t, refmark.OrderBefore, d.CompareAnchors(gamma, alpha))
}

func TestMoveParagraph(t *testing.T) {
	d := New("a", "b", "c", "d")

	require.NoError(t, d.MoveParagraph(0, 2))
	assert.Equal(t, "b\n\nc\n\na\n\nd", d.Text())

	require.NoError(t, d.MoveParagraph(3, 0))
	assert.Equal(t, "d\n\nb\n\nc\n\na", d.Text())

	assert.ErrorIs(t, d.MoveParagraph(0, 4), ErrInvalidPosition)
	assert.ErrorIs(t, d.MoveParagraph(-1, 0), ErrInvalidPosition)
}

func TestDeleteParagraphDetachesHandles(t *testing.T) {
	d := New("keep", "drop [1]")
	require.NoError(t, d.Annotate("m", 1, 5, 8))
	c, err := d.CursorAt(1, 0)
	require.NoError(t, err)
	span := mustAnchor(t, d, "m")

	require.NoError(t, d.DeleteParagraph(1))

	assert.Equal(t, 1, d.ParagraphCount())
	assert.False(t, span.Attached())
	assert.Equal(t, -1, span.Paragraph())
	assert.Equal(t, -1, c.Paragraph())
	names, _ := d.AnnotationNames()
	assert.Empty(t, names)

	_, err = d.InsertText(c, "x")
	assert.ErrorIs(t, err, ErrDetached)
}

func TestInsertParagraph(t *testing.T) {
	d := New("a", "c")
	require.NoError(t, d.Annotate("c", 1, 0, 1))

	require.NoError(t, d.InsertParagraph(1, "b"))
	assert.Equal(t, "a\n\nb\n\nc", d.Text())
	assert.Equal(t, 2, mustAnchor(t, d, "c").Paragraph())
	assert.ErrorIs(t, d.InsertParagraph(5, "x"), ErrInvalidPosition)
}

func TestCharAround(t *testing.T) {
	d := New("ab", "cd")

	tests := []struct {
		name                string
		p, off              int
		before, after       rune
		hasBefore, hasAfter bool
		paraStart, paraEnd  bool
	}{
		{"document start", 0, 0, 0, 'a', false, true, true, false},
		{"inside", 0, 1, 'a', 'b', true, true, false, false},
		{"paragraph end", 0, 2, 'b', '\n', true, true, false, true},
		{"paragraph start", 1, 0, '\n', 'c', true, true, true, false},
		{"document end", 1, 2, 'd', 0, true, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := d.CursorAt(tt.p, tt.off)
			require.NoError(t, err)

			r, ok := d.CharBefore(c)
			assert.Equal(t, tt.hasBefore, ok)
			assert.Equal(t, tt.before, r)
			r, ok = d.CharAfter(c)
			assert.Equal(t, tt.hasAfter, ok)
			assert.Equal(t, tt.after, r)
			assert.Equal(t, tt.paraStart, d.IsParagraphStart(c))
			assert.Equal(t, tt.paraEnd, d.IsParagraphEnd(c))
		})
	}
}

func TestCursorAtRejects(t *testing.T) {
	d := New("abc")

	_, err := d.CursorAt(1, 0)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, err = d.CursorAt(0, 4)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	other := New("abc")
	c, err := other.CursorAt(0, 0)
	require.NoError(t, err)
	_, err = d.InsertText(c, "x")
	assert.ErrorIs(t, err, ErrForeignHandle)
}

func TestRuneOffsets(t *testing.T) {
	d := New("Übersicht · naïve")
	c, err := d.CursorAt(0, 9)
	require.NoError(t, err)
	a, err := d.InsertText(c, " [1]")
	require.NoError(t, err)

	p, _ := d.Paragraph(0)
	assert.Equal(t, "Übersicht [1] · naïve", p)
	text, err := d.AnchorText(a)
	require.NoError(t, err)
	assert.Equal(t, " [1]", text)
}
