// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/refmark/internal/ledger"
	"github.com/pdiddy/refmark/internal/logger"
	"github.com/pdiddy/refmark/internal/memdoc"
	"github.com/pdiddy/refmark/internal/refmark"
	"github.com/pdiddy/refmark/pkg/types"
)

// session is one open document with its registry.
type session struct {
	path     string
	cfg      types.Config
	doc      *memdoc.Document
	reg      *refmark.Registry
	gatherer *prometheus.Registry
}

// openSession loads the document at path and creates its registry. The
// registry is empty until the caller rescans.
func openSession(path string) (*session, error) {
	doc, err := memdoc.Load(path)
	if err != nil {
		return nil, err
	}
	return newSession(path, doc), nil
}

func newSession(path string, doc *memdoc.Document) *session {
	cfg := loadConfig()
	promReg := prometheus.NewRegistry()
	reg := refmark.NewRegistry(doc, cfg.CitationConfig,
		refmark.WithLogger(logger.WithComponent("registry").With("document", path)),
		refmark.WithMetrics(refmark.NewMetrics(promReg)),
	)
	return &session{path: path, cfg: cfg, doc: doc, reg: reg, gatherer: promReg}
}

// load rescans the document without renumbering it.
func (s *session) load() (refmark.ScanSummary, error) {
	numeric := s.reg.Numeric()
	s.reg.SetNumeric(false)
	defer s.reg.SetNumeric(numeric)
	return s.reg.Rescan()
}

func (s *session) save() error {
	return s.doc.Save(s.path)
}

// record stores a renumbering pass in the ledger.
func (s *session) record(ctx context.Context, summary refmark.RenumberSummary) error {
	store, err := ledger.Open(s.cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := filepath.Abs(s.path)
	if err != nil {
		doc = s.path
	}
	id, err := store.RecordPass(ctx, doc, s.reg.Numbering(), summary)
	if err != nil {
		return err
	}
	logger.WithComponent("ledger").Debug("recorded pass", "pass", id, "document", doc)
	return nil
}

// finish prints the engine counters when --metrics is set.
func (s *session) finish(cmd *cobra.Command) {
	if show, _ := cmd.Flags().GetBool("metrics"); show {
		writeMetrics(os.Stderr, s.gatherer)
	}
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		fmt.Fprintf(w, "gathering metrics: %v\n", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "%-45s %g\n", name, m.GetCounter().GetValue())
		}
	}
}

func printScanSummary(w io.Writer, s refmark.ScanSummary) {
	fmt.Fprintf(w, "registered: %d, skipped: %d\n", s.Registered, s.Skipped)
	if s.Renumber != nil {
		printRenumberSummary(w, *s.Renumber)
	}
}

func printRenumberSummary(w io.Writer, s refmark.RenumberSummary) {
	fmt.Fprintf(w, "updated: %d, unchanged: %d, failed: %d\n", s.Updated, s.Unchanged, s.Failed)
}

// parseIndex parses a non-negative integer argument.
func parseIndex(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, arg)
	}
	return n, nil
}

// citedKeys returns the distinct keys cited in the document, sorted.
func citedKeys(reg *refmark.Registry) []string {
	numbering := reg.Numbering()
	keys := make([]string, 0, len(numbering))
	for k := range numbering {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
