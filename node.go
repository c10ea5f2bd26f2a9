package graphydb

import (
	"context"
	"errors"

	"github.com/orneryd/graphydb/internal/iset"
	"github.com/orneryd/graphydb/internal/item"
	"github.com/orneryd/graphydb/internal/traverse"
)

// Node is a graph vertex: an identity plus an open attribute map, spec.md
// §3.
type Node struct {
	it *item.Item
	g  *Graph
}

// NewNode builds a new, unpersisted node of the given kind. kind must be
// non-empty (spec.md §7 "InvalidKind — node or edge created without a
// kind").
func (g *Graph) NewNode(kind string, attrs map[string]any) (*Node, error) {
	if kind == "" {
		return nil, newError(InvalidKind, errors.New("node kind must not be empty"))
	}
	return &Node{it: item.NewNode(g.adapter, kind, attrs), g: g}, nil
}

// Node fetches a persisted node by uid.
func (g *Graph) Node(ctx context.Context, uid string) (*Node, error) {
	it, err := item.LoadNode(ctx, g.adapter, uid)
	if err != nil {
		return nil, err
	}
	return &Node{it: it, g: g}, nil
}

func wrapNode(g *Graph, it *item.Item) *Node {
	if it == nil {
		return nil
	}
	return &Node{it: it, g: g}
}

// UID, Kind, Ctime, Mtime expose the node's identity fields.
func (n *Node) UID() string     { return n.it.UID() }
func (n *Node) Kind() string    { return n.it.Kind() }
func (n *Node) Ctime() float64  { return n.it.Ctime() }
func (n *Node) Mtime() float64  { return n.it.Mtime() }
func (n *Node) IsDirty() bool   { return n.it.IsDirty() }

// Get returns the attribute named key and whether it is present.
func (n *Node) Get(key string) (any, bool) { return n.it.Get(key) }

// GetMany resolves several keys at once, substituting def for any absent.
func (n *Node) GetMany(keys []string, def any) map[string]any { return n.it.GetMany(keys, def) }

// Set assigns an attribute, marking it dirty and touching mtime.
func (n *Node) Set(key string, value any) { n.it.Set(key, value) }

// SetBatch applies multiple attributes in one call.
func (n *Node) SetBatch(attrs map[string]any) { n.it.SetBatch(attrs) }

// Delete removes an attribute (not the node itself — see DeleteNode).
func (n *Node) Delete(key string) { n.it.DeleteAttr(key) }

// Save persists the node, spec.md §4.2.
func (n *Node) Save(ctx context.Context, force bool, batch string, setchange bool) error {
	return n.it.Save(ctx, force, batch, setchange)
}

// DeleteNode removes the node's row and FTS entry. For a node with
// incident edges, it fails with StillConnected unless disconnect is true.
func (n *Node) DeleteNode(ctx context.Context, disconnect bool, setchange bool, batch string) error {
	err := n.it.Delete(ctx, disconnect, setchange, batch)
	if errors.Is(err, item.ErrStillConnected) {
		return newError(StillConnected, err)
	}
	return err
}

// Renew reloads the persisted state, preserving ephemeral keys.
func (n *Node) Renew(ctx context.Context) error { return n.it.Renew(ctx) }

// Copy duplicates the node under a fresh or caller-supplied uid.
func (n *Node) Copy(newUID string) *Node { return wrapNode(n.g, n.it.Copy(newUID)) }

// DeepCopy duplicates the node, recursively cloning nested attribute values.
func (n *Node) DeepCopy(newUID string) *Node { return wrapNode(n.g, n.it.DeepCopy(newUID)) }

func (n *Node) toTraverseOptions(where any, params map[string]any) traverse.Options {
	return traverse.Options{Where: asWhereList(where), Params: params}
}

// InEdges fetches edges ending at this node, spec.md §4.4.
func (n *Node) InEdges(ctx context.Context, where any, params map[string]any) (*iset.Set, error) {
	return traverse.InEdges(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// OutEdges fetches edges starting at this node.
func (n *Node) OutEdges(ctx context.Context, where any, params map[string]any) (*iset.Set, error) {
	return traverse.OutEdges(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// BothEdges returns the uid-deduplicated union of InEdges and OutEdges.
func (n *Node) BothEdges(ctx context.Context, where any, params map[string]any) (*iset.Set, error) {
	return traverse.BothEdges(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// CountBothEdges computes len(in_edges ∪ out_edges), correctly counting a
// self-loop once (spec.md §4.4).
func (n *Node) CountBothEdges(ctx context.Context, where any, params map[string]any) (int, error) {
	return traverse.CountBothEdges(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// InNodes fetches the nodes on an incoming edge.
func (n *Node) InNodes(ctx context.Context, where any, params map[string]any) (*iset.Set, error) {
	return traverse.InNodes(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// OutNodes fetches the nodes on an outgoing edge.
func (n *Node) OutNodes(ctx context.Context, where any, params map[string]any) (*iset.Set, error) {
	return traverse.OutNodes(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// BothNodes returns the uid-deduplicated union of InNodes and OutNodes.
func (n *Node) BothNodes(ctx context.Context, where any, params map[string]any) (*iset.Set, error) {
	return traverse.BothNodes(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// CountBothNodes mirrors CountBothEdges for the node-valued traversal.
func (n *Node) CountBothNodes(ctx context.Context, where any, params map[string]any) (int, error) {
	return traverse.CountBothNodes(ctx, n.g.adapter, n.it.UID(), n.toTraverseOptions(where, params))
}

// asWhereList normalizes a caller-supplied WHERE of either a single string
// or a []string into the []string form internal/pattern and
// internal/traverse's Options expect, per spec.md §6 "WHERE (string or
// list, AND-joined)".
func asWhereList(where any) []string {
	switch w := where.(type) {
	case nil:
		return nil
	case string:
		if w == "" {
			return nil
		}
		return []string{w}
	case []string:
		return w
	default:
		return nil
	}
}
