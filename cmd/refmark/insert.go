// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var insertCmd = &cobra.Command{
	Use:   "insert <document> <paragraph> <offset|end> <key>...",
	Short: "Insert a citation at a position in the document",
	Long: `Insert places a citation for one or more keys at a rune offset in a
paragraph. Spaces are added around the citation as configured. With a
numeric style the document is renumbered afterwards, so an insertion
before existing citations shifts their numbers.

An empty key ("") is replaced by a generated key.`,
	Args: cobra.MinimumNArgs(4),
	RunE: runInsert,
}

func runInsert(cmd *cobra.Command, args []string) error {
	para, err := parseIndex("paragraph", args[1])
	if err != nil {
		return err
	}

	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	if _, err := s.load(); err != nil {
		return err
	}

	var off int
	if args[2] == "end" {
		text, err := s.doc.Paragraph(para)
		if err != nil {
			return err
		}
		off = utf8.RuneCountInString(text)
	} else if off, err = parseIndex("offset", args[2]); err != nil {
		return err
	}

	cur, err := s.doc.CursorAt(para, off)
	if err != nil {
		return err
	}
	m, err := s.reg.InsertCitation(cur, args[3:])
	if err != nil {
		return fmt.Errorf("inserting citation: %w", err)
	}
	if err := s.save(); err != nil {
		return err
	}

	text, err := s.doc.AnchorText(m.Anchor)
	if err != nil {
		return err
	}
	fmt.Printf("inserted %s %s for %v\n", m.ID, text, m.Keys)
	return nil
}

func init() {
	rootCmd.AddCommand(insertCmd)
}
