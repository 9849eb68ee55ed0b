// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Name wire format:
//
//	REF_<key1> CID_<n1>, REF_<key2> CID_<n2>, ..., <id>
//
// The trailing id is unique per mark and survives renumbering.
const (
	keyPrefix    = "REF_"
	numberPrefix = "CID_"
	pairSep      = ", "
	tokenSep     = " "
)

// ReferenceMark is a citation marker anchored in a document. Numbers[i] is
// the number assigned to Keys[i].
type ReferenceMark struct {
	// Name is the annotation name; it encodes Keys, Numbers and ID.
	Name string

	// Keys lists the cited entries in citation order.
	Keys []string

	// Numbers holds the number of each key.
	Numbers []int

	// ID is the trailing name token identifying the mark across renames.
	ID string

	// Anchor is the document range the mark covers.
	Anchor Anchor
}

// NumberFor returns the number the mark shows for key.
func (m *ReferenceMark) NumberFor(key string) (int, bool) {
	for i, k := range m.Keys {
		if k == key {
			return m.Numbers[i], true
		}
	}
	return 0, false
}

// ParsedName is the decoded content of a reference mark name.
type ParsedName struct {
	Keys    []string
	Numbers []int
	ID      string
}

// EncodeName builds the annotation name for a mark.
func EncodeName(keys []string, numbers []int, id string) (string, error) {
	if len(keys) == 0 {
		return "", ErrNoKeys
	}
	if len(keys) != len(numbers) {
		return "", fmt.Errorf("%w: %d keys, %d numbers", ErrArity, len(keys), len(numbers))
	}
	if !isToken(id) {
		return "", fmt.Errorf("%w: id %q", ErrMalformedName, id)
	}

	var b strings.Builder
	for i, key := range keys {
		if !isToken(key) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		if numbers[i] < 1 {
			return "", fmt.Errorf("%w: %d for %q", ErrInvalidNumber, numbers[i], key)
		}
		b.WriteString(keyPrefix)
		b.WriteString(key)
		b.WriteString(tokenSep)
		b.WriteString(numberPrefix)
		b.WriteString(strconv.Itoa(numbers[i]))
		b.WriteString(pairSep)
	}
	b.WriteString(id)
	return b.String(), nil
}

// ParseName decodes an annotation name. Any deviation from the wire format
// yields an error wrapping ErrMalformedName.
func ParseName(name string) (ParsedName, error) {
	parts := strings.Split(name, pairSep)
	if len(parts) < 2 {
		return ParsedName{}, fmt.Errorf("%w: %q has no citation pairs", ErrMalformedName, name)
	}

	p := ParsedName{ID: parts[len(parts)-1]}
	if !isToken(p.ID) {
		return ParsedName{}, fmt.Errorf("%w: %q has an invalid id", ErrMalformedName, name)
	}

	for _, part := range parts[:len(parts)-1] {
		fields := strings.Split(part, tokenSep)
		if len(fields) != 2 {
			return ParsedName{}, fmt.Errorf("%w: pair %q has %d tokens", ErrMalformedName, part, len(fields))
		}
		key, ok := strings.CutPrefix(fields[0], keyPrefix)
		if !ok || !isToken(key) {
			return ParsedName{}, fmt.Errorf("%w: pair %q lacks a %s key", ErrMalformedName, part, keyPrefix)
		}
		digits, ok := strings.CutPrefix(fields[1], numberPrefix)
		if !ok {
			return ParsedName{}, fmt.Errorf("%w: pair %q lacks a %s number", ErrMalformedName, part, numberPrefix)
		}
		if !isCanonicalNumber(digits) {
			return ParsedName{}, fmt.Errorf("%w: pair %q has number %q", ErrMalformedName, part, digits)
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 1 {
			return ParsedName{}, fmt.Errorf("%w: pair %q has number %q", ErrMalformedName, part, digits)
		}
		p.Keys = append(p.Keys, key)
		p.Numbers = append(p.Numbers, n)
	}

	if got, want := len(strings.Fields(name)), 2*len(p.Keys)+1; got != want {
		return ParsedName{}, fmt.Errorf("%w: %d tokens, want %d", ErrMalformedName, got, want)
	}
	return p, nil
}

// isCanonicalNumber reports whether s is a positive decimal number written
// the way EncodeName writes it: ASCII digits without a sign or a leading
// zero.
func isCanonicalNumber(s string) bool {
	if s == "" || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isToken reports whether s is non-empty and free of the characters the
// name format uses as delimiters.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
