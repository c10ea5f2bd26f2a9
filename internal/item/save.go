package item

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/orneryd/graphydb/internal/journal"
	"github.com/orneryd/graphydb/internal/store"
)

// Save persists the item. It is a no-op when the item has no dirty keys
// unless force is true. When setchange is true, the prior persisted state
// (if any) is diffed against the dirty keys and a change record is
// appended — a pure add for a never-before-persisted item, otherwise a
// modify diff, skipping the degenerate mtime-only case (spec.md §4.2,
// §4.5). batch groups this record with others from the same logical
// operation; an empty batch means this save's record stands alone.
//
// The row write and its change record commit atomically, per spec.md §5.
func (it *Item) Save(ctx context.Context, force bool, batch string, setchange bool) error {
	if !it.IsDirty() && !force {
		return nil
	}

	return it.adapter.WithTx(ctx, func(tx *sql.Tx) error {
		var priorAttrs map[string]any
		wasPersisted := it.persisted

		if wasPersisted && setchange {
			prior, err := it.fetchPriorFullAttrs(ctx, tx)
			if err != nil && !store.IsNotFound(err) {
				return err
			}
			priorAttrs = prior
		}

		if err := it.writeRow(ctx, tx); err != nil {
			return err
		}

		if err := it.updateFTS(ctx, tx); err != nil {
			return err
		}

		if setchange {
			if err := it.appendChange(ctx, tx, wasPersisted, priorAttrs, batch); err != nil {
				return err
			}
		}

		it.dirty = map[string]bool{}
		it.persisted = true
		return nil
	})
}

// updateFTS rewrites this item's FTS5 entry with its current attribute
// values, keeping search in sync with every save rather than requiring a
// caller to invoke it separately. A no-op if the relevant FTS table hasn't
// been built (store.UpdateFTS itself tolerates that), matching spec.md
// §4.7's "rewrites a single row's FTS entry after a save."
func (it *Item) updateFTS(ctx context.Context, tx *sql.Tx) error {
	kind := "node"
	if it.class == EdgeClass {
		kind = "edge"
	}
	fields := make(map[string]string, len(it.attrs))
	for k, v := range it.attrs {
		if strings.HasPrefix(k, "_") {
			continue
		}
		fields[k] = fmt.Sprintf("%v", v)
	}
	return store.UpdateFTS(ctx, tx, kind, it.uid, fields)
}

func (it *Item) writeRow(ctx context.Context, tx *sql.Tx) error {
	if it.class == NodeClass {
		row, err := it.toNodeRow()
		if err != nil {
			return err
		}
		return store.UpsertNode(ctx, tx, row)
	}
	row, err := it.toEdgeRow()
	if err != nil {
		return err
	}
	return store.UpsertEdge(ctx, tx, row)
}

// fetchPriorFullAttrs loads the item's state as currently persisted,
// for diffing against the in-memory state about to be written. The data
// blob is self-contained (persistableAttrs embeds structural fields), so
// no column merging is needed here.
func (it *Item) fetchPriorFullAttrs(ctx context.Context, tx *sql.Tx) (map[string]any, error) {
	if it.class == NodeClass {
		row, err := store.GetNode(ctx, tx, it.uid)
		if err != nil {
			return nil, err
		}
		return unmarshalAttrs(row.Data)
	}
	row, err := store.GetEdge(ctx, tx, it.uid)
	if err != nil {
		return nil, err
	}
	return unmarshalAttrs(row.Data)
}

func (it *Item) appendChange(ctx context.Context, tx *sql.Tx, wasPersisted bool, priorAttrs map[string]any, batch string) error {
	var plus, minus map[string]any
	var ok bool

	if !wasPersisted {
		plus, minus = journal.BuildAddRecord(it.persistableAttrs())
		ok = true
	} else {
		plus, minus, ok = journal.BuildDiff(it.dirtyKeys(), priorAttrs, it.persistableAttrs())
	}
	if !ok {
		return nil
	}

	_, err := journal.Append(ctx, tx, journal.Record{
		UID: it.uid, Plus: plus, Minus: minus, Time: nowSeconds(), Batch: batch,
	})
	return err
}
