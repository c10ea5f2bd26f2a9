package graphydb

import (
	"context"
	"errors"

	"github.com/orneryd/graphydb/internal/item"
)

// Edge is a directed, attributed connection between two nodes, spec.md §3.
// Multiple edges may connect the same pair in either direction, and
// self-loops (startuid == enduid) are allowed.
type Edge struct {
	it *item.Item
	g  *Graph
}

// NewEdge builds a new, unpersisted edge connecting startUID to endUID.
// Existence of the endpoints is not checked until Save (spec.md §4.2).
func (g *Graph) NewEdge(kind, startUID, endUID string, attrs map[string]any) (*Edge, error) {
	if kind == "" {
		return nil, newError(InvalidKind, errors.New("edge kind must not be empty"))
	}
	return &Edge{it: item.NewEdge(g.adapter, kind, startUID, endUID, attrs), g: g}, nil
}

// Edge fetches a persisted edge by uid.
func (g *Graph) Edge(ctx context.Context, uid string) (*Edge, error) {
	it, err := item.LoadEdge(ctx, g.adapter, uid)
	if err != nil {
		return nil, err
	}
	return &Edge{it: it, g: g}, nil
}

// UID, Kind, Ctime, Mtime, StartUID, EndUID expose the edge's identity.
func (e *Edge) UID() string      { return e.it.UID() }
func (e *Edge) Kind() string     { return e.it.Kind() }
func (e *Edge) Ctime() float64   { return e.it.Ctime() }
func (e *Edge) Mtime() float64   { return e.it.Mtime() }
func (e *Edge) StartUID() string { return e.it.StartUID() }
func (e *Edge) EndUID() string   { return e.it.EndUID() }
func (e *Edge) IsDirty() bool    { return e.it.IsDirty() }

// Get returns the attribute named key and whether it is present.
func (e *Edge) Get(key string) (any, bool) { return e.it.Get(key) }

// GetMany resolves several keys at once, substituting def for any absent.
func (e *Edge) GetMany(keys []string, def any) map[string]any { return e.it.GetMany(keys, def) }

// Set assigns an attribute, marking it dirty and touching mtime.
func (e *Edge) Set(key string, value any) { e.it.Set(key, value) }

// SetBatch applies multiple attributes in one call.
func (e *Edge) SetBatch(attrs map[string]any) { e.it.SetBatch(attrs) }

// Delete removes an attribute (not the edge itself — see DeleteEdge).
func (e *Edge) Delete(key string) { e.it.DeleteAttr(key) }

// Save persists the edge. A save whose endpoints no longer reference
// existing nodes fails with MissingNodeRef (spec.md §4.2, §7).
func (e *Edge) Save(ctx context.Context, force bool, batch string, setchange bool) error {
	err := e.it.Save(ctx, force, batch, setchange)
	return translateEdgeSaveErr(err)
}

// DeleteEdge removes the edge's row and FTS entry.
func (e *Edge) DeleteEdge(ctx context.Context, setchange bool, batch string) error {
	return e.it.Delete(ctx, false, setchange, batch)
}

// Renew reloads the persisted state, preserving ephemeral keys.
func (e *Edge) Renew(ctx context.Context) error { return e.it.Renew(ctx) }

// Copy duplicates the edge under a fresh or caller-supplied uid.
func (e *Edge) Copy(newUID string) *Edge { return &Edge{it: e.it.Copy(newUID), g: e.g} }

// DeepCopy duplicates the edge, recursively cloning nested attribute values.
func (e *Edge) DeepCopy(newUID string) *Edge { return &Edge{it: e.it.DeepCopy(newUID), g: e.g} }

// Start resolves the edge's source node, spec.md §4.2 "Edge additionally
// exposes start and end resolving to the connected nodes via fetch by
// uid."
func (e *Edge) Start(ctx context.Context) (*Node, error) {
	it, err := e.it.Start(ctx)
	if err != nil {
		return nil, err
	}
	return wrapNode(e.g, it), nil
}

// End resolves the edge's destination node.
func (e *Edge) End(ctx context.Context) (*Node, error) {
	it, err := e.it.End(ctx)
	if err != nil {
		return nil, err
	}
	return wrapNode(e.g, it), nil
}

func translateEdgeSaveErr(err error) error {
	if err == nil {
		return nil
	}
	if isMissingNodeRef(err) {
		return newError(MissingNodeRef, err)
	}
	return err
}
