package pattern

import (
	"context"
	"database/sql"

	"github.com/orneryd/graphydb/internal/debug"
	"github.com/orneryd/graphydb/internal/item"
	"github.com/orneryd/graphydb/internal/iset"
	"github.com/orneryd/graphydb/internal/store"
)

// DebugResult is returned instead of executing when Options.Debug is true
// (spec.md §4.3 step 6).
type DebugResult struct {
	SQL    string
	Params map[string]any
}

// Result is the outcome of Fetch: exactly one of Debug, Count, or Set is
// populated, matching which of Options.Debug / Options.Count / row mode
// was requested.
type Result struct {
	Debug *DebugResult
	Count int64
	Set   *iset.Set
}

// Fetch compiles patternStr against opts and executes it through adapter,
// materializing row-mode results into an iset.Set of nodes or edges
// (spec.md §4.3 "Result materialization").
func Fetch(ctx context.Context, adapter *store.Adapter, patternStr string, opts Options) (*Result, error) {
	compiled, err := Compile(patternStr, opts)
	if err != nil {
		return nil, err
	}

	if debug.Enabled() {
		debug.Logf("pattern: %s %s -> %s %v\n", patternStr, compiled.Entity, compiled.SQL, compiled.Args)
	}

	if opts.Debug {
		return &Result{Debug: &DebugResult{SQL: compiled.SQL, Params: compiled.Args}}, nil
	}

	args := namedArgs(compiled.Args)

	if opts.Count {
		var n int64
		row := adapter.DB().QueryRowContext(ctx, compiled.SQL, args...)
		if err := row.Scan(&n); err != nil {
			return nil, err
		}
		return &Result{Count: n}, nil
	}

	rows, err := adapter.DB().QueryContext(ctx, compiled.SQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := iset.New()
	for rows.Next() {
		dest := make([]any, len(compiled.Cols))
		ptrs := make([]any, len(compiled.Cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		data := toBytes(dest[0])
		ephemeral := map[string]any{}
		for i, name := range compiled.Cols[1:] {
			ephemeral["_"+name] = dest[i+1]
		}

		var it *item.Item
		if compiled.Entity == "edge" {
			it, err = item.FromEdgeData(adapter, data, ephemeral)
		} else {
			it, err = item.FromNodeData(adapter, data, ephemeral)
		}
		if err != nil {
			return nil, err
		}
		set.Append(it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{Set: set}, nil
}

// namedArgs converts a parameter map into sql.Named arguments so the
// compiled statement's `:name` placeholders bind by name rather than
// position (the pattern compiler emits named placeholders throughout,
// grounded on original_source/graphydb.py passing a dict straight to
// sqlite3's named-parameter binding).
func namedArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for k, v := range params {
		args = append(args, sql.Named(k, v))
	}
	return args
}

func toBytes(v any) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return nil
	}
}
