package store

import (
	"context"
)

// NodeRow is the raw persisted shape of a node row.
type NodeRow struct {
	UID   string
	Kind  string
	Ctime float64
	Mtime float64
	Data  []byte // JSON object of user attributes
}

// UpsertNode inserts or replaces a node row.
func UpsertNode(ctx context.Context, q Queryer, row NodeRow) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO nodes (uid, kind, ctime, mtime, data) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET kind = excluded.kind, ctime = excluded.ctime,
			mtime = excluded.mtime, data = excluded.data
	`, row.UID, row.Kind, row.Ctime, row.Mtime, string(row.Data))
	return wrapDBError("upsert node", err)
}

// GetNode fetches a node row by uid. Returns ErrNotFound if absent.
func GetNode(ctx context.Context, q Queryer, uid string) (*NodeRow, error) {
	var row NodeRow
	var data string
	err := q.QueryRowContext(ctx, `SELECT uid, kind, ctime, mtime, data FROM nodes WHERE uid = ?`, uid).
		Scan(&row.UID, &row.Kind, &row.Ctime, &row.Mtime, &data)
	if err != nil {
		return nil, wrapDBError("get node", err)
	}
	row.Data = []byte(data)
	return &row, nil
}

// NodeExists reports whether a node with the given uid is present.
func NodeExists(ctx context.Context, q Queryer, uid string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE uid = ?`, uid).Scan(&count)
	if err != nil {
		return false, wrapDBError("check node exists", err)
	}
	return count > 0, nil
}

// DeleteNode removes a node row.
func DeleteNode(ctx context.Context, q Queryer, uid string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM nodes WHERE uid = ?`, uid)
	return wrapDBError("delete node", err)
}

// IncidentEdgeUIDs returns the uids of every edge touching nodeUID as
// either its startuid or enduid, used by Node.Delete's StillConnected
// check and by disconnect's cascading delete.
func IncidentEdgeUIDs(ctx context.Context, q Queryer, nodeUID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT uid FROM edges WHERE startuid = ? OR enduid = ?`, nodeUID, nodeUID)
	if err != nil {
		return nil, wrapDBError("list incident edges", err)
	}
	defer func() { _ = rows.Close() }()

	var uids []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, wrapDBError("scan incident edge", err)
		}
		uids = append(uids, u)
	}
	return uids, wrapDBError("iterate incident edges", rows.Err())
}
