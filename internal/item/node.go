package item

import (
	"context"
	"encoding/json"

	"github.com/orneryd/graphydb/internal/store"
)

// NewNode constructs a new, unpersisted node item.
func NewNode(adapter *store.Adapter, kind string, attrs map[string]any) *Item {
	return New(adapter, NodeClass, kind, attrs)
}

// LoadNode fetches a persisted node by uid and returns it as an Item.
func LoadNode(ctx context.Context, adapter *store.Adapter, nodeUID string) (*Item, error) {
	row, err := store.GetNode(ctx, adapter.DB(), nodeUID)
	if err != nil {
		return nil, err
	}
	it := &Item{class: NodeClass, uid: nodeUID, adapter: adapter, dirty: map[string]bool{}}
	if err := it.loadNodeRow(row); err != nil {
		return nil, err
	}
	it.persisted = true
	return it, nil
}

func (it *Item) loadNodeRow(row *store.NodeRow) error {
	var attrs map[string]any
	if err := json.Unmarshal(row.Data, &attrs); err != nil {
		return err
	}
	it.uid = row.UID
	it.kind = row.Kind
	it.ctime = row.Ctime
	it.mtime = row.Mtime
	it.attrs = stripReserved(attrs)
	return nil
}

// toNodeRow marshals the item's current persistable attributes into a
// NodeRow ready for store.UpsertNode.
func (it *Item) toNodeRow() (store.NodeRow, error) {
	data, err := json.Marshal(it.persistableAttrs())
	if err != nil {
		return store.NodeRow{}, err
	}
	return store.NodeRow{
		UID: it.uid, Kind: it.kind, Ctime: it.ctime, Mtime: it.mtime, Data: data,
	}, nil
}

// FromNodeData builds a Node Item directly from an already-decoded `data`
// JSON blob, without a further round trip to storage. Used by the pattern
// compiler's row materialization (spec.md §4.3 "decode data as JSON ...
// instantiate the result as a node"), which only ever SELECTs the `data`
// column — self-contained per persistableAttrs, so uid/kind/ctime/mtime are
// recovered from the blob itself rather than from separate row columns.
// ephemeral carries any `_<projection>` keys to merge in unmarked-dirty.
func FromNodeData(adapter *store.Adapter, data []byte, ephemeral map[string]any) (*Item, error) {
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	it := &Item{class: NodeClass, adapter: adapter, dirty: map[string]bool{}}
	it.uid, _ = attrs["uid"].(string)
	it.kind, _ = attrs["kind"].(string)
	it.ctime = toFloat(attrs["ctime"])
	it.mtime = toFloat(attrs["mtime"])
	it.attrs = stripReserved(attrs)
	for k, v := range ephemeral {
		it.attrs[k] = v
	}
	it.persisted = true
	return it, nil
}
