package graphydb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Open("file:" + t.Name() + "?mode=memory&cache=private")
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestOpenCreatesEmptyGraph(t *testing.T) {
	g := newTestGraph(t)
	stats, err := g.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalNodes)
	require.Equal(t, 0, stats.TotalEdges)
}

func TestNewNodeRejectsEmptyKind(t *testing.T) {
	g := newTestGraph(t)
	_, err := g.NewNode("", nil)
	require.Error(t, err)
	require.True(t, Is(err, InvalidKind))
}

func TestNodeSaveAndReload(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	n, err := g.NewNode("Person", map[string]any{"name": "alice"})
	require.NoError(t, err)
	require.NoError(t, n.Save(ctx, false, "", true))

	reloaded, err := g.Node(ctx, n.UID())
	require.NoError(t, err)
	name, ok := reloaded.Get("name")
	require.True(t, ok)
	require.Equal(t, "alice", name)
}

func TestUndoRestoresDeletedNode(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	n, err := g.NewNode("Person", map[string]any{"name": "alice"})
	require.NoError(t, err)
	require.NoError(t, n.Save(ctx, false, "", true))
	uid := n.UID()

	require.NoError(t, n.DeleteNode(ctx, false, true, ""))
	_, err = g.Node(ctx, uid)
	require.Error(t, err)

	actions, err := g.Undo(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)

	restored, err := g.Node(ctx, uid)
	require.NoError(t, err)
	name, ok := restored.Get("name")
	require.True(t, ok)
	require.Equal(t, "alice", name)
}

func TestUndoWithNoChangesIsNoop(t *testing.T) {
	g := newTestGraph(t)
	actions, err := g.Undo(context.Background())
	require.NoError(t, err)
	require.Empty(t, actions)
}
