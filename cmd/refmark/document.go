// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refmark/internal/convert"
	"github.com/pdiddy/refmark/internal/memdoc"
)

// --- new subcommand ---

var newCmd = &cobra.Command{
	Use:   "new <document>",
	Short: "Create a document file, optionally from plain text",
	Long: `New writes an empty document, or one built from a plain-text or
Markdown file given with --from. Blank lines separate paragraphs.

With --convert, citation keys typed in brackets ("[Vaswani2017]" or
"[Vaswani2017; Kaplan2020]") become reference marks.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	path := args[0]
	from, _ := cmd.Flags().GetString("from")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	doc := memdoc.New()
	if from != "" {
		data, err := os.ReadFile(from)
		if err != nil {
			return fmt.Errorf("reading %s: %w", from, err)
		}
		doc = memdoc.FromText(string(data))
	}
	s := newSession(path, doc)
	defer s.finish(cmd)

	var result convert.Result
	if convertCites, _ := cmd.Flags().GetBool("convert"); convertCites {
		var err error
		if result, err = convert.Citations(s.doc, s.reg, os.Stdout); err != nil {
			return err
		}
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Printf("created %s (%d paragraphs, %d citations)\n", path, doc.ParagraphCount(), result.Converted)
	if result.HasFailures() {
		return fmt.Errorf("%d citation(s) could not be converted", result.Failed)
	}
	return nil
}

// --- show subcommand ---

var showCmd = &cobra.Command{
	Use:   "show <document>",
	Short: "Print the document text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := memdoc.Load(args[0])
		if err != nil {
			return err
		}
		numbered, _ := cmd.Flags().GetBool("numbered")
		if !numbered {
			fmt.Println(doc.Text())
			return nil
		}
		for i := range doc.ParagraphCount() {
			p, err := doc.Paragraph(i)
			if err != nil {
				return err
			}
			fmt.Printf("%3d  %s\n", i, p)
		}
		return nil
	},
}

// --- move subcommand ---

var moveCmd = &cobra.Command{
	Use:   "move <document> <from> <to>",
	Short: "Move a paragraph and renumber the citations",
	Long: `Move moves paragraph <from> so that it ends up at index <to>, together
with the citations inside it, then rescans the document. With a numeric
style the rescan renumbers every citation by first appearance.`,
	Args: cobra.ExactArgs(3),
	RunE: runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	from, err := parseIndex("paragraph", args[1])
	if err != nil {
		return err
	}
	to, err := parseIndex("paragraph", args[2])
	if err != nil {
		return err
	}

	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	if err := s.doc.MoveParagraph(from, to); err != nil {
		return err
	}
	summary, err := s.reg.Rescan()
	if err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Printf("moved paragraph %d to %d\n", from, to)
	printScanSummary(os.Stdout, summary)

	if summary.Renumber != nil {
		if err := s.record(context.Background(), *summary.Renumber); err != nil {
			return err
		}
		if summary.Renumber.HasFailures() {
			return fmt.Errorf("%d citation(s) could not be rewritten", summary.Renumber.Failed)
		}
	}
	return nil
}

func init() {
	newCmd.Flags().String("from", "", "plain-text or Markdown file to split into paragraphs")
	newCmd.Flags().Bool("force", false, "overwrite an existing document")
	newCmd.Flags().Bool("convert", false, "turn bracketed citation keys into reference marks")
	showCmd.Flags().Bool("numbered", false, "prefix each paragraph with its index")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(moveCmd)
}
