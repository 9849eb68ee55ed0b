// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refmark/internal/logger"
	"github.com/pdiddy/refmark/internal/references"
	"github.com/pdiddy/refmark/pkg/types"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Check and export the bibliography of a document",
	Long: `Refs compares the citation keys in a document with a references.yaml
file and exports the cited entries in citation-number order.`,
}

// --- validate subcommand ---

var refsValidateCmd = &cobra.Command{
	Use:   "validate <document>",
	Short: "Report cited keys that are missing from the references",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsValidate,
}

func runRefsValidate(cmd *cobra.Command, args []string) error {
	s, refs, err := openWithReferences(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	summary := references.Validate(citedKeys(s.reg), refs)
	for _, v := range summary.Results {
		switch v := v.(type) {
		case references.Found:
			fmt.Printf("found     %s\n", v.Key())
		case references.Missing:
			fmt.Printf("missing   %s\n", v.Key())
		case references.Uncertain:
			fmt.Printf("uncertain %s: %s\n", v.Key(), strings.Join(v.Reasons, "; "))
		}
	}
	fmt.Printf("\nfound: %d, missing: %d, uncertain: %d\n", summary.Found, summary.Missing, summary.Uncertain)

	if summary.HasFailures() {
		return fmt.Errorf("%d of %d citation key(s) did not resolve", summary.Missing+summary.Uncertain, summary.Total())
	}
	return nil
}

// --- bibtex subcommand ---

var refsBibtexCmd = &cobra.Command{
	Use:   "bibtex <document>",
	Short: "Print the cited entries as BibTeX in citation-number order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := citedEntries(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Print(references.BibTeX(entries))
		return nil
	},
}

// --- csl subcommand ---

var refsCSLCmd = &cobra.Command{
	Use:   "csl <document>",
	Short: "Print the cited entries as CSL-YAML in citation-number order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := citedEntries(cmd, args[0])
		if err != nil {
			return err
		}
		return references.WriteCSL(entries, os.Stdout)
	},
}

// --- shared helpers ---

func openWithReferences(cmd *cobra.Command, path string) (*session, *types.ReferencesFile, error) {
	refsPath, _ := cmd.Flags().GetString("references")
	refs, err := references.LoadReferences(refsPath)
	if err != nil {
		return nil, nil, err
	}
	s, err := openSession(path)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.load(); err != nil {
		return nil, nil, err
	}
	return s, refs, nil
}

// citedEntries returns the entries cited in the document. Keys without an
// entry are logged and left out.
func citedEntries(cmd *cobra.Command, path string) ([]references.NumberedEntry, error) {
	s, refs, err := openWithReferences(cmd, path)
	if err != nil {
		return nil, err
	}
	defer s.finish(cmd)

	entries, missing := references.Cited(refs, s.reg.Numbering())
	for _, key := range missing {
		logger.WithComponent("references").Warn("citation key not in references", "key", key)
	}
	return entries, nil
}

func init() {
	refsCmd.PersistentFlags().String("references", "references.yaml", "path to references.yaml")

	refsCmd.AddCommand(refsValidateCmd)
	refsCmd.AddCommand(refsBibtexCmd)
	refsCmd.AddCommand(refsCSLCmd)

	rootCmd.AddCommand(refsCmd)
}
