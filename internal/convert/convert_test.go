// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refmark/internal/memdoc"
	"github.com/pdiddy/refmark/internal/refmark"
	"github.com/pdiddy/refmark/pkg/types"
)

func newRegistry(doc refmark.Document, cfg types.CitationConfig) *refmark.Registry {
	return refmark.NewRegistry(doc, cfg, refmark.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestCitationsNumeric(t *testing.T) {
	doc := memdoc.FromText("Transformers [Vaswani2017] changed NLP.\n\n" +
		"Scaling [Kaplan2020; Vaswani2017] and [see notes] and [Brown2020].")
	reg := newRegistry(doc, types.DefaultCitationConfig())

	var out bytes.Buffer
	result, err := Citations(doc, reg, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Converted)
	assert.False(t, result.HasFailures())
	assert.Equal(t, "Transformers [1] changed NLP.\n\nScaling [2, 1] and [see notes] and [3].", doc.Text())
	assert.Equal(t, map[string]int{"Vaswani2017": 1, "Kaplan2020": 2, "Brown2020": 3}, reg.Numbering())
	assert.Contains(t, out.String(), "converted [Kaplan2020; Vaswani2017] in paragraph 1")

	names, err := doc.AnnotationNames()
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestCitationsKeyStyle(t *testing.T) {
	doc := memdoc.New("See [Vaswani2017] and [Kaplan2020].")
	cfg := types.DefaultCitationConfig()
	cfg.Style.Numeric = false
	reg := newRegistry(doc, cfg)

	result, err := Citations(doc, reg, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, "See [Vaswani2017] and [Kaplan2020].", doc.Text())
	assert.Len(t, reg.Marks(), 2)

	// A second run finds nothing left to convert.
	again, err := Citations(doc, reg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Total())
}

func TestCitationsRestoresTextOnFailure(t *testing.T) {
	doc := memdoc.New("Claim [Smith2020] here.")
	// A registry bound to another document rejects cursors from doc.
	reg := newRegistry(memdoc.New("other"), types.DefaultCitationConfig())

	var out bytes.Buffer
	result, err := Citations(doc, reg, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Equal(t, "Claim [Smith2020] here.", doc.Text())
	assert.Contains(t, out.String(), "failed    [Smith2020]")
	names, _ := doc.AnnotationNames()
	assert.Empty(t, names)
}

func TestCitationKeys(t *testing.T) {
	tests := []struct {
		inner string
		want  []string
	}{
		{"Vaswani2017", []string{"Vaswani2017"}},
		{"Vaswani2017; Kaplan2020", []string{"Vaswani2017", "Kaplan2020"}},
		{"Smith_2020-a", []string{"Smith_2020-a"}},
		{"1", nil},
		{"see notes", nil},
		{"Vaswani2017; see notes", nil},
		{"link text", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.inner, func(t *testing.T) {
			assert.Equal(t, tt.want, citationKeys(tt.inner))
		})
	}
}
