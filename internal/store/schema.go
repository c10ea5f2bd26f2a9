package store

// schema creates the five base tables spec'd in spec.md §6. It mirrors the
// teacher's internal/storage/ephemeral/schema.go approach of one big
// idempotent DDL string run at Reset time, adapted to the node/edge/data
// shape this module needs instead of the teacher's issues/dependencies
// shape.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	uid   TEXT PRIMARY KEY,
	kind  TEXT NOT NULL,
	ctime REAL NOT NULL,
	mtime REAL NOT NULL,
	data  TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);

CREATE TABLE IF NOT EXISTS edges (
	uid      TEXT PRIMARY KEY,
	kind     TEXT NOT NULL,
	startuid TEXT NOT NULL REFERENCES nodes(uid),
	enduid   TEXT NOT NULL REFERENCES nodes(uid),
	ctime    REAL NOT NULL,
	mtime    REAL NOT NULL,
	data     TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_edges_kind ON edges(kind);
CREATE INDEX IF NOT EXISTS idx_edges_start ON edges(startuid);
CREATE INDEX IF NOT EXISTS idx_edges_end ON edges(enduid);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cache (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS changes (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	change TEXT NOT NULL
);
`

// Reset (re)creates the five base tables. It is idempotent: existing tables
// and data are left alone on repeated calls (CREATE TABLE IF NOT EXISTS),
// matching spec.md §4.7 "reset recreates the five base tables".
func (a *Adapter) Reset() error {
	_, err := a.db.ExecContext(a.ctx(), schema)
	return wrapDBError("reset schema", err)
}
