package store

import (
	"context"
	"fmt"
	"os"
)

// Stats is the summary spec.md §4.7 describes as "file size, row counts per
// kind, journal length" — returned by the graph's top-level Stats() call.
type Stats struct {
	TotalNodes     int
	TotalEdges     int
	NodeKindCounts map[string]int
	EdgeKindCounts map[string]int
	JournalLength  int
	FileSizeBytes  int64
	FileSizeHuman  string
}

// Stats gathers row counts, per-kind breakdowns, journal length and file
// size for the database backing a.
func (a *Adapter) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{
		NodeKindCounts: make(map[string]int),
		EdgeKindCounts: make(map[string]int),
	}

	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&s.TotalNodes); err != nil {
		return nil, wrapDBError("count nodes", err)
	}
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&s.TotalEdges); err != nil {
		return nil, wrapDBError("count edges", err)
	}

	if err := kindCounts(ctx, a.db, "nodes", s.NodeKindCounts); err != nil {
		return nil, err
	}
	if err := kindCounts(ctx, a.db, "edges", s.EdgeKindCounts); err != nil {
		return nil, err
	}

	journalLen, err := ChangeCount(ctx, a.db)
	if err != nil {
		return nil, err
	}
	s.JournalLength = journalLen

	if a.path != "" && a.path != ":memory:" {
		if info, err := os.Stat(a.path); err == nil {
			s.FileSizeBytes = info.Size()
			s.FileSizeHuman = humanSize(info.Size())
		}
	}

	return s, nil
}

func kindCounts(ctx context.Context, q Queryer, table string, into map[string]int) error {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT kind, COUNT(*) FROM %s GROUP BY kind`, table))
	if err != nil {
		return wrapDBError("count kinds", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return wrapDBError("scan kind count", err)
		}
		into[kind] = count
	}
	return wrapDBError("iterate kind counts", rows.Err())
}

// humanSize formats a byte count the way the teacher's CLI reports database
// sizes: binary units, one decimal place above a kilobyte.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for q := n / unit; q >= unit; q /= unit {
		div *= unit
		exp++
	}
	units := "KMGTPE"
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), units[exp])
}
