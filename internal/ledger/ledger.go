// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records renumbering passes in a SQLite database so the
// numbering history of a document can be inspected later.
package ledger

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/refmark/internal/refmark"
	"github.com/pdiddy/refmark/pkg/types"
)

const (
	dbFile       = "refmark.db"
	defaultLimit = 20
)

// Store manages the ledger database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Pass is one recorded renumbering pass.
type Pass struct {
	ID        int64
	Document  string
	CreatedAt time.Time
	Updated   int
	Unchanged int
	Failed    int
}

// Assignment is the number a citation key received in a pass.
type Assignment struct {
	CitationKey string
	Number      int
}

// Open opens or creates the ledger at cfg.Dir/refmark.db.
func Open(cfg types.LedgerConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS passes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated INTEGER NOT NULL,
			unchanged INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			pass_id INTEGER NOT NULL REFERENCES passes(id) ON DELETE CASCADE,
			citation_key TEXT NOT NULL,
			number INTEGER NOT NULL,
			PRIMARY KEY (pass_id, citation_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_passes_document ON passes(document)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordPass stores a renumbering pass of document and the numbering it
// produced. The pass and its assignments are written in one transaction.
func (s *Store) RecordPass(ctx context.Context, document string, numbering map[string]int, summary refmark.RenumberSummary) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO passes (document, created_at, updated, unchanged, failed) VALUES (?, ?, ?, ?, ?)`,
		document, s.now().UTC().Format(time.RFC3339Nano),
		summary.Updated, summary.Unchanged, summary.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting pass: %w", err)
	}
	passID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading pass id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (pass_id, citation_key, number) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for key, n := range numbering {
		if _, err := stmt.ExecContext(ctx, passID, key, n); err != nil {
			return 0, fmt.Errorf("inserting assignment %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing pass: %w", err)
	}
	return passID, nil
}

// History returns the most recent passes of document, newest first. A
// limit of zero or less uses the default.
func (s *Store) History(ctx context.Context, document string, limit int) ([]Pass, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, created_at, updated, unchanged, failed
		 FROM passes WHERE document = ? ORDER BY id DESC LIMIT ?`,
		document, limit)
	if err != nil {
		return nil, fmt.Errorf("querying passes: %w", err)
	}
	defer rows.Close()

	var passes []Pass
	for rows.Next() {
		var p Pass
		var created string
		if err := rows.Scan(&p.ID, &p.Document, &created, &p.Updated, &p.Unchanged, &p.Failed); err != nil {
			return nil, fmt.Errorf("scanning pass: %w", err)
		}
		p.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing time of pass %d: %w", p.ID, err)
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// Assignments returns the numbering recorded by a pass, ordered by number.
func (s *Store) Assignments(ctx context.Context, passID int64) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT citation_key, number FROM assignments WHERE pass_id = ?`, passID)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.CitationKey, &a.Number); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Assignment) int {
		return cmp.Or(cmp.Compare(a.Number, b.Number), strings.Compare(a.CitationKey, b.CitationKey))
	})
	return out, nil
}
