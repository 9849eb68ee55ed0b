// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import (
	"errors"
	"fmt"
	"slices"
)

// RenumberSummary holds counts from a renumbering pass.
type RenumberSummary struct {
	Updated   int
	Unchanged int
	Failed    int
}

// Total returns the number of marks processed.
func (s RenumberSummary) Total() int {
	return s.Updated + s.Unchanged + s.Failed
}

// HasFailures reports whether any mark could not be rewritten.
func (s RenumberSummary) HasFailures() bool {
	return s.Failed > 0
}

// RenumberAll numbers citation keys by first appearance in document order
// and rewrites every mark whose numbers changed. A mark that fails to
// rewrite is logged and left as it is; the remaining marks are still
// processed and the next rescan picks up whatever the document holds.
//
// After a pass without failures the numbers in use are exactly 1..k for k
// distinct keys, and every occurrence of a key shows the same number.
func (r *Registry) RenumberAll() RenumberSummary {
	marks := r.MarksInOrder()

	assigned := make(map[string]int)
	next := 1
	var summary RenumberSummary

	for _, m := range marks {
		numbers := make([]int, len(m.Keys))
		for i, key := range m.Keys {
			n, ok := assigned[key]
			if !ok {
				n = next
				assigned[key] = n
				next++
			}
			numbers[i] = n
		}

		if slices.Equal(numbers, m.Numbers) {
			summary.Unchanged++
			continue
		}

		err := r.renumberMark(m, numbers)
		r.metrics.observeRewrite(err)
		if err != nil {
			r.logger.Error("rewriting reference mark", "name", m.Name, "error", err)
			summary.Failed++
			continue
		}
		summary.Updated++
	}

	r.keyToNumber = assigned
	r.highest = next - 1
	r.metrics.observeRenumber()
	return summary
}

// renumberMark gives m new numbers: a new name and, for numeric styles,
// display text with the numbers substituted.
func (r *Registry) renumberMark(m *ReferenceMark, numbers []int) error {
	name, err := EncodeName(m.Keys, numbers, m.ID)
	if err != nil {
		return err
	}

	old, err := r.doc.AnchorText(m.Anchor)
	if err != nil {
		return fmt.Errorf("reading text of %s: %w", m.Name, err)
	}
	text := old
	if r.numeric {
		updated, err := ReplaceCitationNumbers(old, numbers)
		switch {
		case errors.Is(err, ErrNoDigitRuns):
			text = r.formatter.Format(m.Keys, numbers)
		case err != nil:
			return err
		default:
			text = updated
		}
	}

	return r.replaceMark(m, old, name, text, numbers)
}

// replaceMark swaps the mark's content and name through the document's
// remove, insert and wrap primitives, then points m at the result. When
// the insert or the wrap fails, the old text goes back under the old name
// and m keeps its name and numbers.
func (r *Registry) replaceMark(m *ReferenceMark, old, name, text string, numbers []int) error {
	cur, err := r.doc.RemoveAnnotationContent(m.Anchor)
	if err != nil {
		return fmt.Errorf("removing %s: %w", m.Name, err)
	}
	anchor, err := r.doc.InsertText(cur, text)
	if err != nil {
		err = fmt.Errorf("inserting text for %s: %w", name, err)
		return errors.Join(err, r.restoreMark(m, cur, old))
	}
	if err := r.doc.WrapAsAnnotation(name, anchor); err != nil {
		err = fmt.Errorf("wrapping %s: %w", name, err)
		cur, rerr := r.doc.RemoveAnnotationContent(anchor)
		if rerr != nil {
			return errors.Join(err, fmt.Errorf("removing unwrapped text of %s: %w", name, rerr))
		}
		return errors.Join(err, r.restoreMark(m, cur, old))
	}

	delete(r.byName, m.Name)
	m.Name = name
	m.Anchor = anchor
	m.Numbers = numbers
	r.byName[name] = m
	return nil
}

// restoreMark puts text back at cur under the mark's current name. The old
// anchor went away with the removed text, so m takes the restored one.
func (r *Registry) restoreMark(m *ReferenceMark, cur Cursor, text string) error {
	anchor, err := r.doc.InsertText(cur, text)
	if err != nil {
		return fmt.Errorf("restoring text of %s: %w", m.Name, err)
	}
	if err := r.doc.WrapAsAnnotation(m.Name, anchor); err != nil {
		return fmt.Errorf("restoring %s: %w", m.Name, err)
	}
	m.Anchor = anchor
	return nil
}
