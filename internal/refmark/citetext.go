// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import (
	"regexp"
	"strconv"
	"strings"
)

// digitRunRe matches one number in a citation's display text.
var digitRunRe = regexp.MustCompile(`[0-9]+`)

const defaultNumberSep = ", "

// ReplaceCitationNumbers rewrites the numbers shown in a citation's display
// text. The i-th digit run becomes numbers[i]; everything between runs is
// kept verbatim.
//
// When there are more numbers than runs, the extra numbers follow the last
// run, each preceded by the separator seen between the last two runs
// (", " when the text has a single run). Runs beyond len(numbers), such as
// a page number in "[3, p. 12]", are left untouched. Text without any digit
// run returns ErrNoDigitRuns.
func ReplaceCitationNumbers(text string, numbers []int) (string, error) {
	runs := digitRunRe.FindAllStringIndex(text, -1)
	if len(runs) == 0 {
		return text, ErrNoDigitRuns
	}

	var b strings.Builder
	last := 0
	for i, run := range runs {
		if i >= len(numbers) {
			break
		}
		b.WriteString(text[last:run[0]])
		b.WriteString(strconv.Itoa(numbers[i]))
		last = run[1]
	}

	if len(numbers) > len(runs) {
		sep := defaultNumberSep
		if n := len(runs); n >= 2 {
			sep = text[runs[n-2][1]:runs[n-1][0]]
		}
		for _, n := range numbers[len(runs):] {
			b.WriteString(sep)
			b.WriteString(strconv.Itoa(n))
		}
	}

	b.WriteString(text[last:])
	return b.String(), nil
}
