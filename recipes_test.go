package graphydb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeRecipeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRecipesMissingFileIsEmpty(t *testing.T) {
	recipes, err := LoadRecipes(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Empty(t, recipes)
}

func TestLoadRecipesParsesTOML(t *testing.T) {
	path := writeRecipeFile(t, `
[recipes.friends]
chain = "(n)-(e:Likes)>(n2)"
where = ["n.kind = 'Person'"]
order = "n2.uid"
`)
	recipes, err := LoadRecipes(path)
	require.NoError(t, err)
	r, ok := recipes["friends"]
	require.True(t, ok)
	require.Equal(t, "(n)-(e:Likes)>(n2)", r.Chain)
	require.Equal(t, []string{"n.kind = 'Person'"}, r.Where)
	require.Equal(t, "n2.uid", r.Order)
}

func TestFetchRecipeRunsNamedChain(t *testing.T) {
	ctx := context.Background()
	path := writeRecipeFile(t, `
[recipes.people]
chain = "(n)"
where = ["n.data.name = :name"]
`)

	g, err := OpenConfig(Config{Path: "file:" + t.Name() + "?mode=memory&cache=private", RecipesPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	alice := mustNode(t, g, "Person", map[string]any{"name": "alice"})

	res, err := g.FetchRecipe(ctx, "people", map[string]any{"name": "alice"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	require.True(t, res.Set.Contains(alice.UID()))
}

func TestFetchRecipeUnknownNameFails(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	_, err := g.FetchRecipe(ctx, "nope", nil)
	require.Error(t, err)
	require.True(t, Is(err, PatternError))
}

// TestFetchRecipeWatchReloadsFile exercises the fsnotify watch loop's
// reload path, not just the initial load.
func TestFetchRecipeWatchReloadsFile(t *testing.T) {
	ctx := context.Background()
	path := writeRecipeFile(t, `
[recipes.people]
chain = "(n)"
`)

	g, err := OpenConfig(Config{Path: "file:" + t.Name() + "?mode=memory&cache=private", RecipesPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	mustNode(t, g, "Person", map[string]any{"name": "alice"})

	updated := `
[recipes.people]
chain = "(n)"
where = ["n.data.name = :name"]
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		r, ok := g.recipes.get("people")
		return ok && len(r.Where) == 1
	}, 2*time.Second, 20*time.Millisecond)

	res, err := g.FetchRecipe(ctx, "people", map[string]any{"name": "nobody"})
	require.NoError(t, err)
	require.Equal(t, 0, res.Set.Len())
}
