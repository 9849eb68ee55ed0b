// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refmark/internal/memdoc"
	"github.com/pdiddy/refmark/internal/refmark"
)

// --- scan subcommand ---

var scanCmd = &cobra.Command{
	Use:   "scan <document>",
	Short: "Rebuild the citation registry from the document",
	Long: `Scan reads every annotation in the document, skipping names that are
not reference marks, and reports what it found. With a numeric style the
scan also renumbers the document and records the pass in the ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	summary, err := s.reg.Rescan()
	if err != nil {
		return err
	}
	printScanSummary(os.Stdout, summary)
	if summary.Renumber == nil {
		return nil
	}

	if summary.Renumber.Updated > 0 {
		if err := s.save(); err != nil {
			return err
		}
	}
	if err := s.record(context.Background(), *summary.Renumber); err != nil {
		return err
	}
	if summary.Renumber.HasFailures() {
		return fmt.Errorf("%d citation(s) could not be rewritten", summary.Renumber.Failed)
	}
	return nil
}

// --- renumber subcommand ---

var renumberCmd = &cobra.Command{
	Use:   "renumber <document>",
	Short: "Renumber every citation by first appearance",
	Long: `Renumber assigns 1..k to the cited keys in the order they first appear
in the document and rewrites every mark whose numbers changed. With a key
style only the mark names change. Each pass is recorded in the ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: runRenumber,
}

func runRenumber(cmd *cobra.Command, args []string) error {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	if _, err := s.load(); err != nil {
		return err
	}
	summary := s.reg.RenumberAll()
	if err := s.save(); err != nil {
		return err
	}
	printRenumberSummary(os.Stdout, summary)

	if err := s.record(context.Background(), summary); err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d citation(s) could not be rewritten", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var listCmd = &cobra.Command{
	Use:   "list <document>",
	Short: "List the citations in document order",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

// markView is the JSON form of a listed mark.
type markView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Keys      []string `json:"keys"`
	Numbers   []int    `json:"numbers"`
	Paragraph int      `json:"paragraph"`
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Text      string   `json:"text"`
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	if _, err := s.load(); err != nil {
		return err
	}

	var views []markView
	for _, m := range s.reg.MarksInOrder() {
		views = append(views, viewOf(s.doc, m))
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return writeJSON(views)
	}

	if len(views) == 0 {
		fmt.Println("No citations found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-4s  %-6s  %-12s  %-30s  %s\n",
		"ID", "Para", "Offset", "Numbers", "Keys", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, v := range views {
		keys := strings.Join(v.Keys, "; ")
		if len(keys) > 30 {
			keys = keys[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-4d  %-6d  %-12s  %-30s  %s\n",
			v.ID, v.Paragraph, v.Start, joinInts(v.Numbers), keys, v.Text)
	}
	fmt.Fprintf(os.Stdout, "\n%d citations, %d keys\n", len(views), len(s.reg.Numbering()))
	return nil
}

func viewOf(doc *memdoc.Document, m *refmark.ReferenceMark) markView {
	v := markView{ID: m.ID, Name: m.Name, Keys: m.Keys, Numbers: m.Numbers, Paragraph: -1}
	if span, ok := m.Anchor.(*memdoc.Span); ok {
		v.Paragraph, v.Start, v.End = span.Paragraph(), span.Start(), span.End()
	}
	if text, err := doc.AnchorText(m.Anchor); err == nil {
		v.Text = text
	}
	return v
}

func init() {
	listCmd.Flags().Bool("json", false, "output marks as JSON")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(renumberCmd)
	rootCmd.AddCommand(listCmd)
}
