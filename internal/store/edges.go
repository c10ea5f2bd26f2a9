package store

import (
	"context"
	"strings"
)

// EdgeRow is the raw persisted shape of an edge row.
type EdgeRow struct {
	UID      string
	Kind     string
	StartUID string
	EndUID   string
	Ctime    float64
	Mtime    float64
	Data     []byte
}

// UpsertEdge inserts or replaces an edge row. Endpoints are not checked
// beforehand: a startuid/enduid with no matching node surfaces as a foreign
// key violation, which UpsertEdge returns as ErrMissingNodeRef.
func UpsertEdge(ctx context.Context, q Queryer, row EdgeRow) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO edges (uid, kind, startuid, enduid, ctime, mtime, data) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET kind = excluded.kind, startuid = excluded.startuid,
			enduid = excluded.enduid, ctime = excluded.ctime, mtime = excluded.mtime, data = excluded.data
	`, row.UID, row.Kind, row.StartUID, row.EndUID, row.Ctime, row.Mtime, string(row.Data))
	if isForeignKeyErr(err) {
		return ErrMissingNodeRef
	}
	return wrapDBError("upsert edge", err)
}

// GetEdge fetches an edge row by uid. Returns ErrNotFound if absent.
func GetEdge(ctx context.Context, q Queryer, uid string) (*EdgeRow, error) {
	var row EdgeRow
	var data string
	err := q.QueryRowContext(ctx, `SELECT uid, kind, startuid, enduid, ctime, mtime, data FROM edges WHERE uid = ?`, uid).
		Scan(&row.UID, &row.Kind, &row.StartUID, &row.EndUID, &row.Ctime, &row.Mtime, &data)
	if err != nil {
		return nil, wrapDBError("get edge", err)
	}
	row.Data = []byte(data)
	return &row, nil
}

// EdgeExists reports whether an edge with the given uid is present.
func EdgeExists(ctx context.Context, q Queryer, uid string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges WHERE uid = ?`, uid).Scan(&count)
	if err != nil {
		return false, wrapDBError("check edge exists", err)
	}
	return count > 0, nil
}

// DeleteEdge removes an edge row.
func DeleteEdge(ctx context.Context, q Queryer, uid string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM edges WHERE uid = ?`, uid)
	return wrapDBError("delete edge", err)
}

// CountEdgesForNode reports how many edges still reference nodeUID. Node
// deletion's StillConnected guard does not call it; it lists the edges with
// IncidentEdgeUIDs instead.
func CountEdgesForNode(ctx context.Context, q Queryer, nodeUID string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges WHERE startuid = ? OR enduid = ?`, nodeUID, nodeUID).Scan(&count)
	if err != nil {
		return 0, wrapDBError("count incident edges", err)
	}
	return count, nil
}

func isForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key")
}
