// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import (
	"strconv"
	"strings"

	"github.com/pdiddy/refmark/pkg/types"
)

// Formatter produces the display text of a newly inserted citation.
type Formatter interface {
	Format(keys []string, numbers []int) string

	// Numeric reports whether the text shows citation numbers, which makes
	// the marks subject to renumbering.
	Numeric() bool
}

// NumericFormatter renders "[1, 2]" style citations.
type NumericFormatter struct {
	Open      string
	Close     string
	Separator string
}

func (f NumericFormatter) Format(_ []string, numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return f.Open + strings.Join(parts, f.Separator) + f.Close
}

func (NumericFormatter) Numeric() bool { return true }

// KeyFormatter renders citations by key: [Vaswani2017] or
// [Vaswani2017; Brown2020].
type KeyFormatter struct{}

func (KeyFormatter) Format(keys []string, _ []int) string {
	return "[" + strings.Join(keys, "; ") + "]"
}

func (KeyFormatter) Numeric() bool { return false }

// FormatterFor returns the formatter matching a style, filling in default
// brackets and separator.
func FormatterFor(style types.StyleConfig) Formatter {
	if !style.Numeric {
		return KeyFormatter{}
	}
	f := NumericFormatter{Open: style.Open, Close: style.Close, Separator: style.Separator}
	if f.Open == "" && f.Close == "" {
		f.Open, f.Close = "[", "]"
	}
	if f.Separator == "" {
		f.Separator = defaultNumberSep
	}
	return f
}
