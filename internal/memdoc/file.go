// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memdoc

import (
	"fmt"
	"os"
	"slices"

	"go.yaml.in/yaml/v3"
)

// fileDocument is the YAML form of a Document.
type fileDocument struct {
	Paragraphs []fileParagraph `yaml:"paragraphs"`
}

type fileParagraph struct {
	Text        string           `yaml:"text"`
	Annotations []fileAnnotation `yaml:"annotations,omitempty"`
}

type fileAnnotation struct {
	Name  string `yaml:"name"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

// Load reads a document from a YAML file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a document from YAML. Annotation offsets are validated
// against their paragraph and names must be unique.
func Parse(data []byte) (*Document, error) {
	var f fileDocument
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	d := New()
	for i, p := range f.Paragraphs {
		d.AppendParagraph(p.Text)
		for _, a := range p.Annotations {
			if err := d.Annotate(a.Name, i, a.Start, a.End); err != nil {
				return nil, fmt.Errorf("paragraph %d: %w", i, err)
			}
		}
	}
	return d, nil
}

// Marshal encodes the document as YAML. Annotations are listed per
// paragraph in position order.
func (d *Document) Marshal() ([]byte, error) {
	f := fileDocument{Paragraphs: make([]fileParagraph, len(d.paragraphs))}
	byPara := make(map[*paragraph][]fileAnnotation)
	for name, s := range d.annotations {
		byPara[s.para] = append(byPara[s.para], fileAnnotation{Name: name, Start: s.start, End: s.end})
	}
	for i, p := range d.paragraphs {
		anns := byPara[p]
		slices.SortFunc(anns, func(a, b fileAnnotation) int {
			if a.Start != b.Start {
				return a.Start - b.Start
			}
			if a.End != b.End {
				return a.End - b.End
			}
			if a.Name < b.Name {
				return -1
			}
			return 1
		})
		f.Paragraphs[i] = fileParagraph{Text: string(p.text), Annotations: anns}
	}
	return yaml.Marshal(&f)
}

// Save writes the document to path as YAML.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}
