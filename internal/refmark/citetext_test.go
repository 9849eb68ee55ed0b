// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refmark/pkg/types"
)

func TestReplaceCitationNumbers(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		numbers []int
		want    string
	}{
		{"same count", "[1, 2]", []int{5, 7}, "[5, 7]"},
		{"more numbers than runs", "[1]", []int{5, 9}, "[5, 9]"},
		{"separator taken from text", "(1; 2)", []int{3, 4, 8}, "(3; 4; 8)"},
		{"multi-digit runs", "[10-12]", []int{2, 3}, "[2-3]"},
		{"surplus run kept", "[3, p. 12]", []int{1}, "[1, p. 12]"},
		{"superscript style", "^4^", []int{11}, "^11^"},
		{"no numbers", "[1]", nil, "[1]"},
		{"decoration preserved", " see [1] ", []int{2}, " see [2] "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReplaceCitationNumbers(tt.text, tt.numbers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplaceCitationNumbersNoRuns(t *testing.T) {
	got, err := ReplaceCitationNumbers("[?]", []int{1})
	assert.ErrorIs(t, err, ErrNoDigitRuns)
	assert.Equal(t, "[?]", got)
}

func TestFormatterFor(t *testing.T) {
	tests := []struct {
		name        string
		style       types.StyleConfig
		keys        []string
		numbers     []int
		want        string
		wantNumeric bool
	}{
		{
			name:        "numeric defaults",
			style:       types.StyleConfig{Numeric: true},
			keys:        []string{"A", "B"},
			numbers:     []int{1, 2},
			want:        "[1, 2]",
			wantNumeric: true,
		},
		{
			name:        "numeric custom",
			style:       types.StyleConfig{Numeric: true, Open: "(", Close: ")", Separator: "; "},
			keys:        []string{"A", "B"},
			numbers:     []int{3, 1},
			want:        "(3; 1)",
			wantNumeric: true,
		},
		{
			name:    "keys",
			style:   types.StyleConfig{},
			keys:    []string{"Vaswani2017", "Brown2020"},
			numbers: []int{1, 2},
			want:    "[Vaswani2017; Brown2020]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FormatterFor(tt.style)
			assert.Equal(t, tt.want, f.Format(tt.keys, tt.numbers))
			assert.Equal(t, tt.wantNumeric, f.Numeric())
		})
	}
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "before", OrderBefore.String())
	assert.Equal(t, "after", OrderAfter.String())
	assert.Equal(t, "unknown", OrderUnknown.String())
}
