package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetFTSAndMatch(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, UpsertNode(ctx, a.DB(), NodeRow{UID: "n1", Kind: "person", Ctime: 1, Mtime: 1, Data: []byte(`{"bio":"loves go and sqlite"}`)}))
	require.NoError(t, UpsertNode(ctx, a.DB(), NodeRow{UID: "n2", Kind: "person", Ctime: 1, Mtime: 1, Data: []byte(`{"bio":"plays chess"}`)}))

	require.NoError(t, a.ResetFTS(ctx, []string{"bio"}, nil))

	rows, err := a.DB().QueryContext(ctx, `SELECT uid FROM nodefts WHERE nodefts MATCH 'sqlite'`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var matched []string
	for rows.Next() {
		var uid string
		require.NoError(t, rows.Scan(&uid))
		matched = append(matched, uid)
	}
	require.Equal(t, []string{"n1"}, matched)
}

func TestUpdateAndDeleteFTS(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, UpsertNode(ctx, a.DB(), NodeRow{UID: "n1", Kind: "person", Ctime: 1, Mtime: 1, Data: []byte(`{"bio":"original"}`)}))
	require.NoError(t, a.ResetFTS(ctx, []string{"bio"}, nil))

	require.NoError(t, UpdateFTS(ctx, a.DB(), "node", "n1", map[string]string{"bio": "updated text"}))
	var count int
	require.NoError(t, a.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM nodefts WHERE nodefts MATCH 'updated'`).Scan(&count))
	require.Equal(t, 1, count)

	require.NoError(t, DeleteFTS(ctx, a.DB(), "node", "n1"))
	require.NoError(t, a.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM nodefts`).Scan(&count))
	require.Equal(t, 0, count)
}

func TestDeleteFTSNoTableIsNoop(t *testing.T) {
	a := newTestAdapter(t)
	err := DeleteFTS(context.Background(), a.DB(), "node", "missing")
	require.NoError(t, err)
}
