package graphydb

import (
	"context"

	"github.com/orneryd/graphydb/internal/iset"
	"github.com/orneryd/graphydb/internal/pattern"
)

// FetchOptions is the public surface of a Fetch call: the chain-pattern
// language's WHERE/GROUP/ORDER/LIMIT/OFFSET/COUNT/DISTINCT/DEBUG clauses
// plus the free-form kwargs spec.md §6 classifies into projections, FTS
// matches, or plain SQL bind parameters.
type FetchOptions struct {
	Where    []string
	Group    string
	Order    string
	Limit    *int
	Offset   *int
	Count    bool
	Distinct *bool
	Debug    bool
	Params   map[string]any
}

func (o FetchOptions) toPattern() pattern.Options {
	return pattern.Options{
		Where:    o.Where,
		Group:    o.Group,
		Order:    o.Order,
		Limit:    o.Limit,
		Offset:   o.Offset,
		Count:    o.Count,
		Distinct: o.Distinct,
		Debug:    o.Debug,
		Params:   o.Params,
	}
}

// FetchDebug mirrors pattern.DebugResult: the compiled SQL and bound
// parameters, returned instead of executing when FetchOptions.Debug is set.
type FetchDebug struct {
	SQL    string
	Params map[string]any
}

// FetchResult is the outcome of Fetch: exactly one of Debug, Count, or Set
// is populated, matching which of Debug / Count / row mode was requested
// (spec.md §4.3).
type FetchResult struct {
	Debug *FetchDebug
	Count int64
	Set   *iset.Set
}

// Fetch runs a chain pattern against the graph, spec.md §4.3's
// "fetch(chain, where, **args)": a JOIN-walk compiled from chain,
// filtered and shaped by opts. A malformed chain, a duplicate alias, or an
// unresolved projection alias fails with PatternError.
func (g *Graph) Fetch(ctx context.Context, chain string, opts FetchOptions) (*FetchResult, error) {
	res, err := pattern.Fetch(ctx, g.adapter, chain, opts.toPattern())
	if err != nil {
		if pattern.IsPatternError(err) {
			return nil, newError(PatternError, err)
		}
		return nil, err
	}

	out := &FetchResult{Count: res.Count, Set: res.Set}
	if res.Debug != nil {
		out.Debug = &FetchDebug{SQL: res.Debug.SQL, Params: res.Debug.Params}
	}
	return out, nil
}
