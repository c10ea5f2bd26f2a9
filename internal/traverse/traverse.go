// Package traverse implements the node traversal helpers spec'd in
// spec.md §4.4: thin sugar over the fetch engine that prepends the
// appropriate endpoint predicate and binds the node's uid.
package traverse

import (
	"context"

	"github.com/orneryd/graphydb/internal/iset"
	"github.com/orneryd/graphydb/internal/pattern"
	"github.com/orneryd/graphydb/internal/store"
)

// Options carries the same WHERE/Params/Order/Group/Limit/Offset surface
// as pattern.Options, minus the fields the traversal helpers own (CHAIN,
// COUNT, the endpoint predicate).
type Options struct {
	Where  []string
	Params map[string]any
	Order  string
	Group  string
	Limit  *int
	Offset *int
}

// clone deep-copies Where and Params so one call's mutation (the helpers
// add node_uid to Params, and the compiler appends FTS predicates to Where)
// never leaks into a sibling call sharing the same Options value — spec.md §4.4
// "input WHERE/args must be independently deep-copied per call since the
// compiler mutates them."
func (o Options) clone() Options {
	out := Options{Order: o.Order, Group: o.Group, Limit: o.Limit, Offset: o.Offset}
	out.Where = append([]string(nil), o.Where...)
	out.Params = make(map[string]any, len(o.Params))
	for k, v := range o.Params {
		out.Params[k] = v
	}
	return out
}

func (o Options) toPatternOptions(extraWhere string, nodeUID string) pattern.Options {
	c := o.clone()
	po := pattern.Options{
		Where:  append([]string{extraWhere}, c.Where...),
		Order:  c.Order,
		Group:  c.Group,
		Limit:  c.Limit,
		Offset: c.Offset,
		Params: c.Params,
	}
	if po.Params == nil {
		po.Params = map[string]any{}
	}
	po.Params["node_uid"] = nodeUID
	return po
}

// InEdges fetches the edges ending at nodeUID, spec.md §4.4, "<(e)-" with
// "e.enduid = self.uid".
func InEdges(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (*iset.Set, error) {
	res, err := pattern.Fetch(ctx, a, "<(e)-", opts.toPatternOptions("e.enduid = :node_uid", nodeUID))
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

// OutEdges fetches the edges starting at nodeUID, "-(e)>" with
// "e.startuid = self.uid".
func OutEdges(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (*iset.Set, error) {
	res, err := pattern.Fetch(ctx, a, "-(e)>", opts.toPatternOptions("e.startuid = :node_uid", nodeUID))
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

// BothEdges returns the uid-deduplicated union of InEdges and OutEdges.
func BothEdges(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (*iset.Set, error) {
	in, err := InEdges(ctx, a, nodeUID, opts)
	if err != nil {
		return nil, err
	}
	out, err := OutEdges(ctx, a, nodeUID, opts)
	if err != nil {
		return nil, err
	}
	return in.Union(out), nil
}

// CountBothEdges computes len(in_edges ∪ out_edges) by materializing both
// directed sides and taking the length of their union — never the sum —
// so a self-loop counts once, spec.md §4.4 "to preserve correct counts
// when a self-loop appears on both sides."
func CountBothEdges(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (int, error) {
	both, err := BothEdges(ctx, a, nodeUID, opts)
	if err != nil {
		return 0, err
	}
	return both.Len(), nil
}

// InNodes fetches the nodes on an incoming edge, "<(e)- [n]" with
// "e.enduid = self.uid".
func InNodes(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (*iset.Set, error) {
	res, err := pattern.Fetch(ctx, a, "<(e)- [n]", opts.toPatternOptions("e.enduid = :node_uid", nodeUID))
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

// OutNodes fetches the nodes on an outgoing edge, "-(e)> [n]" with
// "e.startuid = self.uid".
func OutNodes(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (*iset.Set, error) {
	res, err := pattern.Fetch(ctx, a, "-(e)> [n]", opts.toPatternOptions("e.startuid = :node_uid", nodeUID))
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

// BothNodes returns the uid-deduplicated union of InNodes and OutNodes.
func BothNodes(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (*iset.Set, error) {
	in, err := InNodes(ctx, a, nodeUID, opts)
	if err != nil {
		return nil, err
	}
	out, err := OutNodes(ctx, a, nodeUID, opts)
	if err != nil {
		return nil, err
	}
	return in.Union(out), nil
}

// CountBothNodes mirrors CountBothEdges for the node-valued traversal.
func CountBothNodes(ctx context.Context, a *store.Adapter, nodeUID string, opts Options) (int, error) {
	both, err := BothNodes(ctx, a, nodeUID, opts)
	if err != nil {
		return 0, err
	}
	return both.Len(), nil
}

// perNode runs fn over every member of nodes and unions the results in
// order, spec.md §4.4 "set-valued counterparts iterate the nodes in a set
// and union the per-node results."
func perNode(nodes *iset.Set, fn func(nodeUID string) (*iset.Set, error)) (*iset.Set, error) {
	out := iset.New()
	for _, n := range nodes.All() {
		res, err := fn(n.UID())
		if err != nil {
			return nil, err
		}
		out = out.Union(res)
	}
	return out, nil
}

// InEdgesOfSet is the set-valued counterpart of InEdges.
func InEdgesOfSet(ctx context.Context, a *store.Adapter, nodes *iset.Set, opts Options) (*iset.Set, error) {
	return perNode(nodes, func(uid string) (*iset.Set, error) { return InEdges(ctx, a, uid, opts) })
}

// OutEdgesOfSet is the set-valued counterpart of OutEdges.
func OutEdgesOfSet(ctx context.Context, a *store.Adapter, nodes *iset.Set, opts Options) (*iset.Set, error) {
	return perNode(nodes, func(uid string) (*iset.Set, error) { return OutEdges(ctx, a, uid, opts) })
}

// BothEdgesOfSet is the set-valued counterpart of BothEdges.
func BothEdgesOfSet(ctx context.Context, a *store.Adapter, nodes *iset.Set, opts Options) (*iset.Set, error) {
	return perNode(nodes, func(uid string) (*iset.Set, error) { return BothEdges(ctx, a, uid, opts) })
}

// InNodesOfSet is the set-valued counterpart of InNodes.
func InNodesOfSet(ctx context.Context, a *store.Adapter, nodes *iset.Set, opts Options) (*iset.Set, error) {
	return perNode(nodes, func(uid string) (*iset.Set, error) { return InNodes(ctx, a, uid, opts) })
}

// OutNodesOfSet is the set-valued counterpart of OutNodes.
func OutNodesOfSet(ctx context.Context, a *store.Adapter, nodes *iset.Set, opts Options) (*iset.Set, error) {
	return perNode(nodes, func(uid string) (*iset.Set, error) { return OutNodes(ctx, a, uid, opts) })
}

// BothNodesOfSet is the set-valued counterpart of BothNodes.
func BothNodesOfSet(ctx context.Context, a *store.Adapter, nodes *iset.Set, opts Options) (*iset.Set, error) {
	return perNode(nodes, func(uid string) (*iset.Set, error) { return BothNodes(ctx, a, uid, opts) })
}
