package item

import (
	"context"
	"database/sql"

	"github.com/orneryd/graphydb/internal/journal"
	"github.com/orneryd/graphydb/internal/store"
)

// Delete removes the item's row and FTS entry. For a node with incident
// edges, Delete fails with ErrStillConnected unless disconnect is true, in
// which case all incident edges are deleted first, under a shared batch
// uid with the node's own deletion record (spec.md §4.2, §4.5). When
// setchange is true a deletion change record is appended; batch groups it
// with any caller-supplied batch, falling back to a freshly allocated one
// when the node has edges to cascade.
func (it *Item) Delete(ctx context.Context, disconnect bool, setchange bool, batch string) error {
	if it.class == NodeClass {
		return it.deleteNode(ctx, disconnect, setchange, batch)
	}
	return it.deleteEdge(ctx, setchange, batch)
}

func (it *Item) deleteNode(ctx context.Context, disconnect bool, setchange bool, batch string) error {
	incident, err := store.IncidentEdgeUIDs(ctx, it.adapter.DB(), it.uid)
	if err != nil {
		return err
	}
	if len(incident) > 0 && !disconnect {
		return ErrStillConnected
	}

	if len(incident) > 0 && batch == "" {
		batch = journal.NewBatch()
	}

	for _, edgeUID := range incident {
		edge, err := LoadEdge(ctx, it.adapter, edgeUID)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return err
		}
		if err := edge.deleteEdge(ctx, setchange, batch); err != nil {
			return err
		}
	}

	return it.deleteRow(ctx, setchange, batch)
}

func (it *Item) deleteEdge(ctx context.Context, setchange bool, batch string) error {
	return it.deleteRow(ctx, setchange, batch)
}

func (it *Item) deleteRow(ctx context.Context, setchange bool, batch string) error {
	full := it.persistableAttrs()
	kind := "node"
	if it.class == EdgeClass {
		kind = "edge"
	}

	return it.adapter.WithTx(ctx, func(tx *sql.Tx) error {
		if it.class == NodeClass {
			if err := store.DeleteNode(ctx, tx, it.uid); err != nil {
				return err
			}
		} else {
			if err := store.DeleteEdge(ctx, tx, it.uid); err != nil {
				return err
			}
		}
		if err := store.DeleteFTS(ctx, tx, kind, it.uid); err != nil {
			return err
		}
		if setchange {
			_, minus := journal.BuildDeleteRecord(full)
			if _, err := journal.Append(ctx, tx, journal.Record{
				UID: it.uid, Minus: minus, Time: nowSeconds(), Batch: batch,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
