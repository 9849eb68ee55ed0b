// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package references

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pdiddy/refmark/pkg/types"
)

// Validity classifies a citation key against the bibliography. It is one
// of Found, Missing or Uncertain.
type Validity interface {
	// Key returns the citation key that was looked up.
	Key() string

	validity()
}

// Found means the key resolved to an entry.
type Found struct {
	Entry types.ReferenceEntry
}

// Missing means no resolver knew the key.
type Missing struct {
	CitationKey string
}

// Uncertain means the key only resembles entries in the bibliography.
type Uncertain struct {
	CitationKey string
	Reasons     []string
}

func (v Found) Key() string     { return v.Entry.CitationKey }
func (v Missing) Key() string   { return v.CitationKey }
func (v Uncertain) Key() string { return v.CitationKey }

func (Found) validity()     {}
func (Missing) validity()   {}
func (Uncertain) validity() {}

// Merge combines two results for the same key. The leftmost Found wins;
// otherwise Uncertain results absorb Missing ones and their reasons are
// concatenated. Merge is associative.
func Merge(a, b Validity) Validity {
	if f, ok := a.(Found); ok {
		return f
	}
	if f, ok := b.(Found); ok {
		return f
	}
	ua, aUncertain := a.(Uncertain)
	ub, bUncertain := b.(Uncertain)
	switch {
	case aUncertain && bUncertain:
		reasons := slices.Concat(ua.Reasons, ub.Reasons)
		return Uncertain{CitationKey: ua.CitationKey, Reasons: reasons}
	case aUncertain:
		return ua
	case bUncertain:
		return Uncertain{CitationKey: a.Key(), Reasons: ub.Reasons}
	default:
		return a
	}
}

// Resolver classifies key against refs.
type Resolver func(key string, refs *types.ReferencesFile) Validity

// Resolve runs resolvers in order and stops at the first Found. Without a
// Found the results are merged.
func Resolve(key string, refs *types.ReferencesFile, resolvers ...Resolver) Validity {
	var result Validity = Missing{CitationKey: key}
	for _, resolve := range resolvers {
		result = Merge(result, resolve(key, refs))
		if _, ok := result.(Found); ok {
			return result
		}
	}
	return result
}

// ByCitationKey finds the entry whose citation key equals key.
func ByCitationKey(key string, refs *types.ReferencesFile) Validity {
	for _, r := range refs.Papers {
		if r.CitationKey == key {
			return Found{Entry: r}
		}
	}
	return Missing{CitationKey: key}
}

// ByLooseMatch reports entries whose citation key matches key ignoring
// case, or whose paper ID equals key.
func ByLooseMatch(key string, refs *types.ReferencesFile) Validity {
	var reasons []string
	for _, r := range refs.Papers {
		switch {
		case r.CitationKey != key && strings.EqualFold(r.CitationKey, key):
			reasons = append(reasons, fmt.Sprintf("differs in case from %s", r.CitationKey))
		case r.PaperID != "" && r.PaperID == key:
			reasons = append(reasons, fmt.Sprintf("matches the paper ID of %s", r.CitationKey))
		}
	}
	if len(reasons) == 0 {
		return Missing{CitationKey: key}
	}
	return Uncertain{CitationKey: key, Reasons: reasons}
}

// DefaultResolvers is the exact lookup followed by the loose match.
var DefaultResolvers = []Resolver{ByCitationKey, ByLooseMatch}

// ValidationSummary holds the outcome of Validate.
type ValidationSummary struct {
	Results   []Validity
	Found     int
	Missing   int
	Uncertain int
}

// Total returns the number of keys checked.
func (s ValidationSummary) Total() int {
	return s.Found + s.Missing + s.Uncertain
}

// HasFailures reports whether any key did not resolve to an entry.
func (s ValidationSummary) HasFailures() bool {
	return s.Missing > 0 || s.Uncertain > 0
}

// Validate resolves each distinct key with DefaultResolvers. Results are
// sorted by key.
func Validate(keys []string, refs *types.ReferencesFile) ValidationSummary {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	var s ValidationSummary
	for _, key := range keys {
		v := Resolve(key, refs, DefaultResolvers...)
		switch v.(type) {
		case Found:
			s.Found++
		case Missing:
			s.Missing++
		case Uncertain:
			s.Uncertain++
		}
		s.Results = append(s.Results, v)
	}
	return s
}
