package pattern

import (
	"context"
	"testing"

	"github.com/orneryd/graphydb/internal/item"
	"github.com/orneryd/graphydb/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) *store.Adapter {
	t.Helper()
	a, err := store.Open(store.Config{Path: "file:" + t.Name() + "?mode=memory&cache=private"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Reset())
	return a
}

func mustSave(t *testing.T, it *item.Item) *item.Item {
	t.Helper()
	require.NoError(t, it.Save(context.Background(), false, "", true))
	return it
}

// threeNodeLikesGraph builds alice -[Likes]-> bob -[Likes]-> carol.
func threeNodeLikesGraph(t *testing.T, a *store.Adapter) (alice, bob, carol, ab, bc *item.Item) {
	t.Helper()
	alice = mustSave(t, item.NewNode(a, "Person", map[string]any{"name": "alice"}))
	bob = mustSave(t, item.NewNode(a, "Person", map[string]any{"name": "bob"}))
	carol = mustSave(t, item.NewNode(a, "Person", map[string]any{"name": "carol"}))
	ab = mustSave(t, item.NewEdge(a, "Likes", alice.UID(), bob.UID(), map[string]any{"weight": 1}))
	bc = mustSave(t, item.NewEdge(a, "Likes", bob.UID(), carol.UID(), map[string]any{"weight": 2}))
	return
}

func TestParseChainDefaultsToRightmostCollected(t *testing.T) {
	c, err := parseChain("(n1) -(e:Likes)> (n2)")
	require.NoError(t, err)
	require.Equal(t, "n2", c.collected.alias)
}

func TestParseChainRejectsDuplicateAlias(t *testing.T) {
	_, err := parseChain("(n) -(n:Likes)> (n2)")
	require.Error(t, err)
	require.True(t, IsPatternError(err))
}

func TestParseChainRejectsMultipleCollected(t *testing.T) {
	_, err := parseChain("[n1] -(e:Likes)> [n2]")
	require.Error(t, err)
}

func TestParseChainRejectsMalformedToken(t *testing.T) {
	_, err := parseChain("(n1 -(e)> (n2)")
	require.Error(t, err)
}

func TestFetchCollectsRightmostNodeByDefault(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice, bob, _, _, _ := threeNodeLikesGraph(t, a)

	res, err := Fetch(ctx, a, "(n1) -(e:Likes)> (n2)", Options{
		Where:  []string{"n1.uid = :start"},
		Params: map[string]any{"start": alice.UID()},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	require.Equal(t, bob.UID(), res.Set.At(0).UID())
}

func TestFetchLeftDirectedEdgeWalksBackward(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice, bob, _, _, _ := threeNodeLikesGraph(t, a)

	// "<(e)- [n]" starting from bob's incoming edge should recover alice.
	res, err := Fetch(ctx, a, "<(e:Likes)- [n]", Options{
		Where:  []string{"e.enduid = :end"},
		Params: map[string]any{"end": bob.UID()},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	require.Equal(t, alice.UID(), res.Set.At(0).UID())
}

func TestFetchCollectsEdges(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	_, _, _, ab, _ := threeNodeLikesGraph(t, a)

	res, err := Fetch(ctx, a, "[e:Likes]", Options{
		Where:  []string{"e.uid = :uid"},
		Params: map[string]any{"uid": ab.UID()},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	require.Equal(t, ab.UID(), res.Set.At(0).UID())
	_, isEdge := res.Set.At(0).Get("startuid")
	require.True(t, isEdge)
}

func TestFetchProjection(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice, _, _, ab, _ := threeNodeLikesGraph(t, a)

	res, err := Fetch(ctx, a, "(n1) -[e:Likes,weight]> (n2)", Options{
		Where:  []string{"n1.uid = :start"},
		Params: map[string]any{"start": alice.UID(), "weight": "e.data.weight"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	w, ok := res.Set.At(0).Get("_weight")
	require.True(t, ok)
	require.EqualValues(t, 1, w)
	_ = ab
}

func TestFetchProjectionMissingParameterIsPatternError(t *testing.T) {
	a := newTestAdapter(t)
	_, err := Fetch(context.Background(), a, "[e:Likes,weight]", Options{})
	require.Error(t, err)
	require.True(t, IsPatternError(err))
}

func TestFetchCountAgreesWithRowModeCardinality(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	threeNodeLikesGraph(t, a)

	rows, err := Fetch(ctx, a, "[n:Person]", Options{})
	require.NoError(t, err)

	countRes, err := Fetch(ctx, a, "[n:Person]", Options{Count: true})
	require.NoError(t, err)

	require.EqualValues(t, rows.Set.Len(), countRes.Count)
}

func TestFetchDebugReturnsSQLWithoutExecuting(t *testing.T) {
	a := newTestAdapter(t)
	res, err := Fetch(context.Background(), a, "(n1) -(e:Likes)> (n2)", Options{Debug: true, Where: []string{"n1.data.name = :name"}, Params: map[string]any{"name": "alice"}})
	require.NoError(t, err)
	require.NotNil(t, res.Debug)
	require.Contains(t, res.Debug.SQL, "json_extract(n1.data")
	require.Nil(t, res.Set)
}

func TestFetchFTSMatch(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	threeNodeLikesGraph(t, a)
	require.NoError(t, a.ResetFTS(ctx, []string{"name"}, nil))

	nodes, err := Fetch(ctx, a, "[n:Person]", Options{})
	require.NoError(t, err)
	for _, it := range nodes.Set.All() {
		name, _ := it.Get("name")
		require.NoError(t, store.UpdateFTS(ctx, a.DB(), "node", it.UID(), map[string]string{"name": name.(string)}))
	}

	res, err := Fetch(ctx, a, "[n:Person]", Options{Params: map[string]any{"n_fts": "bob"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	name, _ := res.Set.At(0).Get("name")
	require.Equal(t, "bob", name)
}

func TestCompileWhereListIsANDJoined(t *testing.T) {
	compiled, err := Compile("[n:Person]", Options{Where: []string{"n.kind = 'Person'", "n.uid = :u"}, Params: map[string]any{"u": "abc"}})
	require.NoError(t, err)
	require.Contains(t, compiled.SQL, "AND")
}
