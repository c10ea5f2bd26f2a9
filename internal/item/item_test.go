package item

import (
	"context"
	"testing"

	"github.com/orneryd/graphydb/internal/journal"
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

func TestNewNodeAllKeysDirty(t *testing.T) {
	a := newTestAdapter(t)
	n := NewNode(a, "person", map[string]any{"name": "alice"})
	require.True(t, n.IsDirty())
	v, ok := n.Get("name")
	require.True(t, ok)
	require.Equal(t, "alice", v)
}

func TestSetTouchesMtimeExceptSelf(t *testing.T) {
	a := newTestAdapter(t)
	n := NewNode(a, "person", nil)
	require.NoError(t, n.Save(context.Background(), false, "", false))
	mtimeBefore := n.Mtime()

	n.Set("name", "bob")
	require.GreaterOrEqual(t, n.Mtime(), mtimeBefore)

	n.dirty = map[string]bool{}
	n.Set("mtime", mtimeBefore)
	require.Equal(t, mtimeBefore, n.Mtime())
}

func TestSaveNoopWhenNotDirty(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	n := NewNode(a, "person", map[string]any{"name": "alice"})
	require.NoError(t, n.Save(ctx, false, "", false))
	require.False(t, n.IsDirty())
	require.NoError(t, n.Save(ctx, false, "", false))
}

func TestSavePureAddAppendsChange(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	n := NewNode(a, "person", map[string]any{"name": "alice"})
	require.NoError(t, n.Save(ctx, false, "", true))

	last, err := store.LastChange(ctx, a.DB())
	require.NoError(t, err)
	rec, err := journal.Unmarshal(last.ID, last.Change)
	require.NoError(t, err)
	require.True(t, rec.IsAdd())
	require.Equal(t, "alice", rec.Plus["name"])
}

func TestSaveModifyDiffsOnlyDirtyKeys(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	n := NewNode(a, "person", map[string]any{"name": "alice", "age": 30.0})
	require.NoError(t, n.Save(ctx, false, "", true))

	n.Set("name", "alicia")
	require.NoError(t, n.Save(ctx, false, "", true))

	last, err := store.LastChange(ctx, a.DB())
	require.NoError(t, err)
	rec, err := journal.Unmarshal(last.ID, last.Change)
	require.NoError(t, err)
	require.True(t, rec.IsModify())
	require.Equal(t, "alicia", rec.Plus["name"])
	require.Equal(t, "alice", rec.Minus["name"])
	_, hasAge := rec.Plus["age"]
	require.False(t, hasAge, "unchanged key must not appear in the diff")
}

func TestSaveMtimeOnlyChangeSkipsRecord(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	n := NewNode(a, "person", map[string]any{"name": "alice"})
	require.NoError(t, n.Save(ctx, false, "", true))
	countBefore, err := store.ChangeCount(ctx, a.DB())
	require.NoError(t, err)

	n.dirty = map[string]bool{"mtime": true}
	require.NoError(t, n.Save(ctx, true, "", true))

	countAfter, err := store.ChangeCount(ctx, a.DB())
	require.NoError(t, err)
	require.Equal(t, countBefore, countAfter)
}

func TestEdgeSaveFailsOnMissingEndpoint(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	e := NewEdge(a, "likes", "missing1", "missing2", nil)
	err := e.Save(ctx, false, "", false)
	require.ErrorIs(t, err, store.ErrMissingNodeRef)
}

func TestEdgeStartAndEnd(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice := NewNode(a, "person", map[string]any{"name": "alice"})
	bob := NewNode(a, "person", map[string]any{"name": "bob"})
	require.NoError(t, alice.Save(ctx, false, "", false))
	require.NoError(t, bob.Save(ctx, false, "", false))

	e := NewEdge(a, "likes", alice.UID(), bob.UID(), nil)
	require.NoError(t, e.Save(ctx, false, "", false))

	start, err := e.Start(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", mustGet(start, "name"))

	end, err := e.End(ctx)
	require.NoError(t, err)
	require.Equal(t, "bob", mustGet(end, "name"))
}

func mustGet(it *Item, key string) any {
	v, _ := it.Get(key)
	return v
}

func TestDeleteNodeWithIncidentEdgesFailsWithoutDisconnect(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice := NewNode(a, "person", nil)
	bob := NewNode(a, "person", nil)
	require.NoError(t, alice.Save(ctx, false, "", false))
	require.NoError(t, bob.Save(ctx, false, "", false))
	e := NewEdge(a, "likes", alice.UID(), bob.UID(), nil)
	require.NoError(t, e.Save(ctx, false, "", false))

	err := alice.Delete(ctx, false, false, "")
	require.ErrorIs(t, err, ErrStillConnected)
}

func TestDeleteNodeWithDisconnectCascades(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice := NewNode(a, "person", nil)
	bob := NewNode(a, "person", nil)
	require.NoError(t, alice.Save(ctx, false, "", false))
	require.NoError(t, bob.Save(ctx, false, "", false))
	e := NewEdge(a, "likes", alice.UID(), bob.UID(), nil)
	require.NoError(t, e.Save(ctx, false, "", true))

	require.NoError(t, alice.Delete(ctx, true, true, ""))

	_, err := store.GetNode(ctx, a.DB(), alice.UID())
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = store.GetEdge(ctx, a.DB(), e.UID())
	require.ErrorIs(t, err, store.ErrNotFound)

	rows, err := store.ChangesByBatch(ctx, a.DB(), "")
	require.NoError(t, err)
	require.Empty(t, rows, "a synthesized batch uid should not be the empty string")
}

func TestCopyAndDeepCopy(t *testing.T) {
	a := newTestAdapter(t)
	n := NewNode(a, "person", map[string]any{"name": "alice", "tags": []any{"x"}})

	shallow := n.Copy("")
	require.NotEqual(t, n.UID(), shallow.UID())

	deep := n.DeepCopy("")
	origTags := n.attrs["tags"].([]any)
	deepTags := deep.attrs["tags"].([]any)
	origTags[0] = "mutated"
	require.Equal(t, "x", deepTags[0], "deep copy must not alias nested slices")
}

func TestRenewPreservesEphemeralKeys(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	n := NewNode(a, "person", map[string]any{"name": "alice"})
	require.NoError(t, n.Save(ctx, false, "", false))

	n.attrs["_cache"] = "scratch"
	n.attrs["name"] = "unsaved-change"

	require.NoError(t, n.Renew(ctx))
	require.Equal(t, "alice", mustGet(n, "name"))
	require.Equal(t, "scratch", n.attrs["_cache"])
	require.False(t, n.IsDirty())
}
