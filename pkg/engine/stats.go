package engine

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/bisegni/ossql/pkg/cursor"
	"github.com/bisegni/ossql/pkg/types"
)

// ColumnStats counts the decoded value kinds seen in one column.
type ColumnStats struct {
	Label string
	Type  types.Type
	Kinds map[types.Kind]int64
}

// Nulls is the number of null cells.
func (c ColumnStats) Nulls() int64 {
	return c.Kinds[types.KindNull]
}

// Stats summarizes a drained result.
type Stats struct {
	Rows    int64
	Pages   int
	Columns []ColumnStats
}

// CollectStats drains c and counts rows, pages and value kinds per column.
// The cursor is left after end; closing it stays with the caller.
func CollectStats(ctx context.Context, c *cursor.Cursor) (*Stats, error) {
	cols := c.Columns()
	stats := &Stats{Columns: make([]ColumnStats, len(cols))}
	for i, col := range cols {
		stats.Columns[i] = ColumnStats{Label: col.Label, Type: col.Type, Kinds: make(map[types.Kind]int64)}
	}

	for {
		ok, err := c.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		for i := range cols {
			v, err := c.Value(i)
			if err != nil {
				return nil, err
			}
			stats.Columns[i].Kinds[v.Kind()]++
		}
	}

	stats.Rows = c.RowsConsumed()
	stats.Pages = c.PagesFetched()
	return stats, nil
}

// Write prints the summary in a human readable form.
func (s *Stats) Write(w io.Writer) {
	fmt.Fprintf(w, "Total rows: %d\n", s.Rows)
	fmt.Fprintf(w, "Pages: %d\n", s.Pages)
	if len(s.Columns) == 0 {
		return
	}

	fmt.Fprintf(w, "\nColumns:\n")
	for _, col := range s.Columns {
		fmt.Fprintf(w, "  %s (%s):\n", col.Label, col.Type)
		kinds := make([]types.Kind, 0, len(col.Kinds))
		for k := range col.Kinds {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			count := col.Kinds[k]
			pct := 0.0
			if s.Rows > 0 {
				pct = float64(count) / float64(s.Rows) * 100
			}
			fmt.Fprintf(w, "    %s: %d (%.1f%%)\n", k, count, pct)
		}
	}
}
