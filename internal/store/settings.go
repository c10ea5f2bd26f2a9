package store

import "context"

// GetSetting fetches a single opaque JSON-encoded setting value.
func GetSetting(ctx context.Context, q Queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", wrapDBError("get setting", err)
	}
	return value, nil
}

// SetSetting upserts a setting value, matching the teacher's config.go
// ON CONFLICT DO UPDATE pattern for its key/value settings table.
func SetSetting(ctx context.Context, q Queryer, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return wrapDBError("set setting", err)
}

// DeleteSetting removes a setting key.
func DeleteSetting(ctx context.Context, q Queryer, key string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return wrapDBError("delete setting", err)
}

// GetCache fetches a single opaque JSON-encoded cache value.
func GetCache(ctx context.Context, q Queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", wrapDBError("get cache", err)
	}
	return value, nil
}

// SetCache upserts a cache value.
func SetCache(ctx context.Context, q Queryer, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return wrapDBError("set cache", err)
}

// DeleteCache removes a cache key.
func DeleteCache(ctx context.Context, q Queryer, key string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
	return wrapDBError("delete cache", err)
}
