package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ftsTable names the two FTS5 virtual tables this package maintains,
// mirroring the "node"/"edge" distinction used throughout the module.
type ftsTable string

const (
	ftsNodes ftsTable = "nodefts"
	ftsEdges ftsTable = "edgefts"
)

func (t ftsTable) baseTable() string {
	if t == ftsNodes {
		return "nodes"
	}
	return "edges"
}

// ResetFTS rebuilds the node and edge FTS5 virtual tables over the given
// attribute field names, spec.md §4.7 "rebuilds the two FTS5 virtual
// tables". The two rebuilds are independent (different base tables) so
// they run concurrently via errgroup, the way the teacher's sqlite package
// fans out independent maintenance queries.
func (a *Adapter) ResetFTS(ctx context.Context, nodeFields, edgeFields []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.rebuildFTS(gctx, ftsNodes, nodeFields) })
	g.Go(func() error { return a.rebuildFTS(gctx, ftsEdges, edgeFields) })
	return g.Wait()
}

func (a *Adapter) rebuildFTS(ctx context.Context, table ftsTable, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return a.WithTx(ctx, func(tx *sql.Tx) error {
		return rebuildFTSTx(ctx, tx, table, fields)
	})
}

// rebuildFTSTx does the actual drop/create/populate sequence for one FTS5
// virtual table. The fetch engine's use of FTS5 happens through the
// compiled SQL directly (the pattern compiler emits MATCH joins); this
// helper and the per-row functions below own only table lifecycle, not
// query compilation.
func rebuildFTSTx(ctx context.Context, q Queryer, table ftsTable, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quoteIdent(f)
	}
	colList := strings.Join(quoted, ", ")

	if _, err := q.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
		return wrapDBError("drop fts table", err)
	}
	createSQL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE %s USING fts5(uid UNINDEXED, %s)`,
		table, colList,
	)
	if _, err := q.ExecContext(ctx, createSQL); err != nil {
		return wrapDBError("create fts table", err)
	}

	selectCols := make([]string, len(fields))
	for i, f := range fields {
		selectCols[i] = fmt.Sprintf(`json_extract(data, '$.%s')`, f)
	}
	insertSQL := fmt.Sprintf(
		`INSERT INTO %s (uid, %s) SELECT uid, %s FROM %s`,
		table, colList, strings.Join(selectCols, ", "), table.baseTable(),
	)
	if _, err := q.ExecContext(ctx, insertSQL); err != nil {
		return wrapDBError("populate fts table", err)
	}
	return nil
}

// UpdateFTS rewrites a single row's FTS entry after a save, keeping the
// virtual table in sync without a full ResetFTS. fields maps column name
// to its current string value; unknown keys (not among the FTS table's own
// columns) are silently skipped, per spec.md §4.7 "upsert only known
// columns (unknown keys are silently skipped)" and grounded on
// original_source/graphydb.py's updatefts(), which collects the table's
// column names via `PRAGMA table_info` before filtering the caller's data.
func UpdateFTS(ctx context.Context, q Queryer, kind string, uid string, fields map[string]string) error {
	table := ftsNodes
	if kind == "edge" {
		table = ftsEdges
	}
	if exists, err := ftsTableExists(ctx, q, table); err != nil || !exists {
		return err
	}

	columns, err := ftsTableColumns(ctx, q, table)
	if err != nil {
		return err
	}
	known := make(map[string]string, len(fields))
	for col, val := range fields {
		if columns[col] {
			known[col] = val
		}
	}

	if _, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE uid = ?`, table), uid); err != nil {
		return wrapDBError("clear fts row", err)
	}
	if len(known) == 0 {
		return nil
	}

	cols := make([]string, 0, len(known)+1)
	vals := make([]any, 0, len(known)+1)
	cols = append(cols, "uid")
	vals = append(vals, uid)
	for col, val := range known {
		cols = append(cols, quoteIdent(col))
		vals = append(vals, val)
	}
	placeholders := strings.Repeat("?, ", len(cols))
	placeholders = strings.TrimSuffix(placeholders, ", ")
	insertSQL := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, table, strings.Join(cols, ", "), placeholders)
	_, err = q.ExecContext(ctx, insertSQL, vals...)
	return wrapDBError("insert fts row", err)
}

// ftsTableColumns returns the set of column names the given FTS5 virtual
// table actually declares, via PRAGMA table_info, matching
// original_source/graphydb.py's updatefts() lookup.
func ftsTableColumns(ctx context.Context, q Queryer, table ftsTable) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, wrapDBError("read fts columns", err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, wrapDBError("scan fts column", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("read fts columns", err)
	}
	return cols, nil
}

// DeleteFTS removes a row's FTS entry, a no-op if the virtual table has
// never been built (ResetFTS not yet called for that kind).
func DeleteFTS(ctx context.Context, q Queryer, kind string, uid string) error {
	table := ftsNodes
	if kind == "edge" {
		table = ftsEdges
	}
	exists, err := ftsTableExists(ctx, q, table)
	if err != nil || !exists {
		return err
	}
	_, err = q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE uid = ?`, table), uid)
	return wrapDBError("delete fts row", err)
}

func ftsTableExists(ctx context.Context, q Queryer, table ftsTable) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, string(table)).Scan(&count)
	if err != nil {
		return false, wrapDBError("check fts table", err)
	}
	return count > 0, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
