package graphydb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchChainReturnsMatchingNodes(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	alice := mustNode(t, g, "Person", map[string]any{"name": "alice"})
	mustNode(t, g, "Person", map[string]any{"name": "bob"})

	res, err := g.Fetch(ctx, "(n)", FetchOptions{
		Where:  []string{"n.data.name = :name"},
		Params: map[string]any{"name": "alice"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	require.True(t, res.Set.Contains(alice.UID()))
}

func TestFetchCountMode(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	mustNode(t, g, "Person", nil)
	mustNode(t, g, "Person", nil)

	res, err := g.Fetch(ctx, "(n)", FetchOptions{Count: true})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Count)
	require.Nil(t, res.Set)
}

func TestFetchDebugMode(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	res, err := g.Fetch(ctx, "(n)", FetchOptions{Debug: true})
	require.NoError(t, err)
	require.NotNil(t, res.Debug)
	require.NotEmpty(t, res.Debug.SQL)
}

// TestFetchFTSMatchAfterSave exercises the end-to-end FTS scenario: reset
// the FTS tables, save nodes (which keeps their FTS row in sync as a side
// effect of Save), then fetch by an FTS prefix match.
func TestFetchFTSMatchAfterSave(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	require.NoError(t, g.ResetFTS(ctx, []string{"name"}, nil))

	anne := mustNode(t, g, "Person", map[string]any{"name": "Anne"})
	mustNode(t, g, "Person", map[string]any{"name": "Bob"})

	res, err := g.Fetch(ctx, "(n)", FetchOptions{Params: map[string]any{"n_fts": "An*"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	require.True(t, res.Set.Contains(anne.UID()))
}

func TestFetchRejectsMalformedChain(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	_, err := g.Fetch(ctx, "(n -(n2:Likes)> (n3)", FetchOptions{})
	require.Error(t, err)
	require.True(t, Is(err, PatternError))
}
