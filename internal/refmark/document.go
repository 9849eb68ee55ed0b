// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

// Anchor is an opaque handle to a range in a document.
type Anchor interface{}

// Cursor is an opaque handle to a collapsed position in a document.
type Cursor interface{}

// Order is the result of comparing two anchors by document position.
type Order int

const (
	// OrderUnknown means the anchors coincide or cannot be compared
	// (for example one of them no longer exists).
	OrderUnknown Order = iota
	OrderBefore
	OrderAfter
)

func (o Order) String() string {
	switch o {
	case OrderBefore:
		return "before"
	case OrderAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Document is the live document that holds reference marks. It is the
// authoritative store: a Registry only ever derives its state from it.
//
// Annotations cannot be edited in place. Changing a mark means removing its
// content (which removes the annotation), inserting new text, and wrapping
// the new range under a name.
type Document interface {
	// AnnotationNames lists the names of all annotations in the document.
	AnnotationNames() ([]string, error)

	// Anchor returns the range covered by the named annotation.
	Anchor(name string) (Anchor, error)

	// CompareAnchors reports whether a starts before or after b.
	CompareAnchors(a, b Anchor) Order

	// AnchorText returns the text currently covered by a.
	AnchorText(a Anchor) (string, error)

	// RemoveAnnotationContent deletes the text covered by a, together with
	// any annotation over it, and returns a cursor where the text was.
	RemoveAnnotationContent(a Anchor) (Cursor, error)

	// InsertText inserts text at c and returns the range spanning it. The
	// cursor moves past the inserted text.
	InsertText(c Cursor, text string) (Anchor, error)

	// WrapAsAnnotation turns the range a into an annotation called name.
	WrapAsAnnotation(name string, a Anchor) error

	// CharBefore returns the character preceding c, if any.
	CharBefore(c Cursor) (rune, bool)

	// CharAfter returns the character following c, if any.
	CharAfter(c Cursor) (rune, bool)

	// IsParagraphStart reports whether c sits at the start of a paragraph.
	IsParagraphStart(c Cursor) bool

	// IsParagraphEnd reports whether c sits at the end of a paragraph.
	IsParagraphEnd(c Cursor) bool
}
