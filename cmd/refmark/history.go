// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refmark/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history <document>",
	Short: "Show the recorded renumbering passes of a document",
	Long: `History lists the renumbering passes recorded in the ledger for a
document, newest first. Use --pass to show the numbering a pass produced.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	passID, _ := cmd.Flags().GetInt64("pass")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := ledger.Open(loadConfig().Ledger)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	if passID > 0 {
		assignments, err := store.Assignments(ctx, passID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(assignments)
		}
		for _, a := range assignments {
			fmt.Printf("%4d  %s\n", a.Number, a.CitationKey)
		}
		return nil
	}

	doc, err := filepath.Abs(args[0])
	if err != nil {
		doc = args[0]
	}
	passes, err := store.History(ctx, doc, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(passes)
	}
	if len(passes) == 0 {
		fmt.Println("No passes recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-20s  %-7s  %-9s  %s\n", "Pass", "Time", "Updated", "Unchanged", "Failed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 60))
	for _, p := range passes {
		fmt.Fprintf(os.Stdout, "%-6d  %-20s  %-7d  %-9d  %d\n",
			p.ID, p.CreatedAt.Local().Format(time.DateTime), p.Updated, p.Unchanged, p.Failed)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum passes to show (0 = default)")
	historyCmd.Flags().Int64("pass", 0, "show the numbering recorded by this pass")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}
