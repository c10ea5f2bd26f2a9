package item

import (
	"context"
	"encoding/json"

	"github.com/orneryd/graphydb/internal/store"
)

// NewEdge constructs a new, unpersisted edge item connecting startUID to
// endUID. Existence of the endpoints is not checked until Save, matching
// spec.md §4.2 "Edge save fails if either endpoint uid is not present at
// save time."
func NewEdge(adapter *store.Adapter, kind, startUID, endUID string, attrs map[string]any) *Item {
	it := New(adapter, EdgeClass, kind, attrs)
	it.startUID = startUID
	it.endUID = endUID
	return it
}

// LoadEdge fetches a persisted edge by uid and returns it as an Item.
func LoadEdge(ctx context.Context, adapter *store.Adapter, edgeUID string) (*Item, error) {
	row, err := store.GetEdge(ctx, adapter.DB(), edgeUID)
	if err != nil {
		return nil, err
	}
	it := &Item{class: EdgeClass, uid: edgeUID, adapter: adapter, dirty: map[string]bool{}}
	if err := it.loadEdgeRow(row); err != nil {
		return nil, err
	}
	it.persisted = true
	return it, nil
}

func (it *Item) loadEdgeRow(row *store.EdgeRow) error {
	var attrs map[string]any
	if err := json.Unmarshal(row.Data, &attrs); err != nil {
		return err
	}
	it.uid = row.UID
	it.kind = row.Kind
	it.startUID = row.StartUID
	it.endUID = row.EndUID
	it.ctime = row.Ctime
	it.mtime = row.Mtime
	it.attrs = stripReserved(attrs)
	return nil
}

func (it *Item) toEdgeRow() (store.EdgeRow, error) {
	data, err := json.Marshal(it.persistableAttrs())
	if err != nil {
		return store.EdgeRow{}, err
	}
	return store.EdgeRow{
		UID: it.uid, Kind: it.kind, StartUID: it.startUID, EndUID: it.endUID,
		Ctime: it.ctime, Mtime: it.mtime, Data: data,
	}, nil
}

// FromEdgeData builds an Edge Item directly from an already-decoded `data`
// JSON blob, the edge counterpart of FromNodeData.
func FromEdgeData(adapter *store.Adapter, data []byte, ephemeral map[string]any) (*Item, error) {
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	it := &Item{class: EdgeClass, adapter: adapter, dirty: map[string]bool{}}
	it.uid, _ = attrs["uid"].(string)
	it.kind, _ = attrs["kind"].(string)
	it.startUID, _ = attrs["startuid"].(string)
	it.endUID, _ = attrs["enduid"].(string)
	it.ctime = toFloat(attrs["ctime"])
	it.mtime = toFloat(attrs["mtime"])
	it.attrs = stripReserved(attrs)
	for k, v := range ephemeral {
		it.attrs[k] = v
	}
	it.persisted = true
	return it, nil
}

// Start resolves the edge's source node via fetch by uid, spec.md §4.2
// "Edge additionally exposes start and end resolving to the connected
// nodes via fetch by uid."
func (it *Item) Start(ctx context.Context) (*Item, error) {
	return LoadNode(ctx, it.adapter, it.startUID)
}

// End resolves the edge's destination node via fetch by uid.
func (it *Item) End(ctx context.Context) (*Item, error) {
	return LoadNode(ctx, it.adapter, it.endUID)
}
