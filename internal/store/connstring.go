package store

import (
	"fmt"
	"strings"
	"time"
)

// connString builds a ncruces/go-sqlite3 connection string with the pragmas
// this module needs: a busy timeout (avoids "database is locked" under the
// brief contention a save + its change record can cause) and foreign key
// enforcement (edges reference nodes). Adapted from the teacher's
// internal/storage/connstring.go, which builds the equivalent string for
// the same driver family.
func connString(path string, busyTimeout time.Duration) string {
	path = strings.TrimSpace(path)
	busyMs := int64(busyTimeout / time.Millisecond)

	if strings.HasPrefix(path, "file:") {
		conn := path
		sep := "?"
		if strings.Contains(conn, "?") {
			sep = "&"
		}
		if !strings.Contains(conn, "_pragma=busy_timeout") {
			conn += fmt.Sprintf("%s_pragma=busy_timeout(%d)", sep, busyMs)
			sep = "&"
		}
		if !strings.Contains(conn, "_pragma=foreign_keys") {
			conn += sep + "_pragma=foreign_keys(ON)"
		}
		return conn
	}

	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)", path, busyMs)
}
