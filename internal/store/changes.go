package store

import "context"

// ChangeRow is one row of the journal's backing changes table: an
// autoincrement id and the opaque JSON-encoded change record the journal
// package serializes and deserializes.
type ChangeRow struct {
	ID     int64
	Change string
}

// AppendChange inserts a new change record and returns its assigned id.
// Called from inside WithTx so the change record commits atomically with
// the row mutation it describes (spec.md §5).
func AppendChange(ctx context.Context, q Queryer, change string) (int64, error) {
	res, err := q.ExecContext(ctx, `INSERT INTO changes (change) VALUES (?)`, change)
	if err != nil {
		return 0, wrapDBError("append change", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapDBError("read change id", err)
	}
	return id, nil
}

// LastChange returns the highest-id change record, or ErrNotFound if the
// journal is empty. Undo's top-of-stack lookup.
func LastChange(ctx context.Context, q Queryer) (*ChangeRow, error) {
	var row ChangeRow
	err := q.QueryRowContext(ctx, `SELECT id, change FROM changes ORDER BY id DESC LIMIT 1`).
		Scan(&row.ID, &row.Change)
	if err != nil {
		return nil, wrapDBError("get last change", err)
	}
	return &row, nil
}

// ChangesByBatch returns every change record sharing the given batch uid,
// in ascending id order (the order they were originally appended), so a
// batch undo can replay them in LIFO order by reversing this slice.
func ChangesByBatch(ctx context.Context, q Queryer, batch string) ([]ChangeRow, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, change FROM changes
		WHERE json_extract(change, '$.batch') = ?
		ORDER BY id ASC
	`, batch)
	if err != nil {
		return nil, wrapDBError("list changes by batch", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ChangeRow
	for rows.Next() {
		var row ChangeRow
		if err := rows.Scan(&row.ID, &row.Change); err != nil {
			return nil, wrapDBError("scan change", err)
		}
		out = append(out, row)
	}
	return out, wrapDBError("iterate changes by batch", rows.Err())
}

// DeleteChange removes a change record once it has been undone.
func DeleteChange(ctx context.Context, q Queryer, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM changes WHERE id = ?`, id)
	return wrapDBError("delete change", err)
}

// ChangeCount reports the current journal length, used by Stats.
func ChangeCount(ctx context.Context, q Queryer) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM changes`).Scan(&count)
	if err != nil {
		return 0, wrapDBError("count changes", err)
	}
	return count, nil
}
