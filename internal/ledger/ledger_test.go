// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refmark/internal/refmark"
	"github.com/pdiddy/refmark/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.LedgerConfig{Dir: filepath.Join(t.TempDir(), "ledger")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "ledger")
	s, err := Open(types.LedgerConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "refmark.db"))
	assert.NoError(t, err)
}

func TestRecordPassAndAssignments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordPass(ctx, "draft.yaml",
		map[string]int{"Vaswani2017": 2, "Kaplan2020": 1, "Brown2020": 3},
		refmark.RenumberSummary{Updated: 3, Unchanged: 1})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.Assignments(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []Assignment{
		{CitationKey: "Kaplan2020", Number: 1},
		{CitationKey: "Vaswani2017", Number: 2},
		{CitationKey: "Brown2020", Number: 3},
	}, got)

	none, err := s.Assignments(ctx, id+100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := s.RecordPass(ctx, "draft.yaml", map[string]int{"A": 1},
			refmark.RenumberSummary{Updated: i})
		require.NoError(t, err)
	}
	_, err := s.RecordPass(ctx, "other.yaml", map[string]int{"B": 1},
		refmark.RenumberSummary{Failed: 1})
	require.NoError(t, err)

	passes, err := s.History(ctx, "draft.yaml", 0)
	require.NoError(t, err)
	require.Len(t, passes, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{passes[0].Updated, passes[1].Updated, passes[2].Updated})
	assert.True(t, passes[0].CreatedAt.After(passes[1].CreatedAt))
	assert.Equal(t, "draft.yaml", passes[0].Document)

	limited, err := s.History(ctx, "draft.yaml", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	other, err := s.History(ctx, "other.yaml", 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, 1, other[0].Failed)
}

func TestRecordPassEmptyNumbering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordPass(ctx, "empty.yaml", nil, refmark.RenumberSummary{})
	require.NoError(t, err)

	got, err := s.Assignments(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordPassCanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RecordPass(ctx, "draft.yaml", map[string]int{"A": 1}, refmark.RenumberSummary{})
	assert.Error(t, err)

	passes, err := s.History(context.Background(), "draft.yaml", 0)
	require.NoError(t, err)
	assert.Empty(t, passes)
}
