package graphydb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, g *Graph, kind string, attrs map[string]any) *Node {
	t.Helper()
	n, err := g.NewNode(kind, attrs)
	require.NoError(t, err)
	require.NoError(t, n.Save(context.Background(), false, "", true))
	return n
}

func mustEdge(t *testing.T, g *Graph, kind string, start, end *Node) *Edge {
	t.Helper()
	e, err := g.NewEdge(kind, start.UID(), end.UID(), nil)
	require.NoError(t, err)
	require.NoError(t, e.Save(context.Background(), false, "", true))
	return e
}

func TestNodeTraversalSugar(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	alice := mustNode(t, g, "Person", map[string]any{"name": "alice"})
	bob := mustNode(t, g, "Person", map[string]any{"name": "bob"})
	carol := mustNode(t, g, "Person", map[string]any{"name": "carol"})
	mustEdge(t, g, "Likes", alice, bob)
	mustEdge(t, g, "Likes", bob, carol)

	out, err := bob.OutNodes(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.True(t, out.Contains(carol.UID()))

	in, err := bob.InNodes(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, in.Len())
	require.True(t, in.Contains(alice.UID()))

	both, err := bob.BothNodes(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, both.Len())

	count, err := bob.CountBothEdges(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestNodeDeleteStillConnectedWithoutDisconnect(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	alice := mustNode(t, g, "Person", map[string]any{"name": "alice"})
	bob := mustNode(t, g, "Person", map[string]any{"name": "bob"})
	mustEdge(t, g, "Likes", alice, bob)

	err := alice.DeleteNode(ctx, false, true, "")
	require.Error(t, err)
	require.True(t, Is(err, StillConnected))
}

func TestNodeDeleteDisconnectCascades(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	alice := mustNode(t, g, "Person", map[string]any{"name": "alice"})
	bob := mustNode(t, g, "Person", map[string]any{"name": "bob"})
	e := mustEdge(t, g, "Likes", alice, bob)

	require.NoError(t, alice.DeleteNode(ctx, true, true, ""))
	_, err := g.Edge(ctx, e.UID())
	require.Error(t, err)
}

func TestAsWhereList(t *testing.T) {
	require.Nil(t, asWhereList(nil))
	require.Nil(t, asWhereList(""))
	require.Equal(t, []string{"n.age > :min"}, asWhereList("n.age > :min"))
	require.Equal(t, []string{"a", "b"}, asWhereList([]string{"a", "b"}))
}
