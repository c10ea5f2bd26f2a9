// Package item implements the node/edge record abstraction spec'd in
// spec.md §4.2: a mutable attribute map with reserved structural fields,
// dirty-key tracking, and dual storage across structural columns and a
// JSON attribute blob.
package item

import (
	"context"
	"strings"
	"time"

	"github.com/orneryd/graphydb/internal/store"
	"github.com/orneryd/graphydb/internal/uid"
)

// Class distinguishes a node item from an edge item.
type Class int

const (
	NodeClass Class = iota
	EdgeClass
)

// Reserved attribute names, spec.md §3: structural and never treated as
// user data by Get/Set/Delete.
var reserved = map[string]bool{
	"uid": true, "kind": true, "ctime": true, "mtime": true,
	"startuid": true, "enduid": true,
}

// Item is the in-memory representation of a node or edge. It is not
// safe for concurrent use, matching spec.md's non-goal of concurrent
// writers.
type Item struct {
	class    Class
	uid      string
	kind     string
	startUID string
	endUID   string
	ctime    float64
	mtime    float64

	attrs     map[string]any
	dirty     map[string]bool
	persisted bool

	adapter *store.Adapter
}

// New constructs a brand new, unpersisted item with all keys marked dirty,
// matching spec.md §3 "items are created in memory with all keys marked
// dirty". uid is freshly allocated via internal/uid.
func New(adapter *store.Adapter, class Class, kind string, attrs map[string]any) *Item {
	now := nowSeconds()
	it := &Item{
		class:   class,
		uid:     uid.New(),
		kind:    kind,
		ctime:   now,
		mtime:   now,
		attrs:   map[string]any{},
		dirty:   map[string]bool{},
		adapter: adapter,
	}
	for k, v := range attrs {
		it.attrs[k] = v
		it.dirty[k] = true
	}
	return it
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// UID returns the item's immutable identity.
func (it *Item) UID() string { return it.uid }

// Kind returns the item's kind label.
func (it *Item) Kind() string { return it.kind }

// Class reports whether the item is a node or an edge.
func (it *Item) Class() Class { return it.class }

// Ctime returns the creation timestamp, seconds since epoch.
func (it *Item) Ctime() float64 { return it.ctime }

// Mtime returns the last-mutation timestamp, seconds since epoch.
func (it *Item) Mtime() float64 { return it.mtime }

// StartUID returns the edge's source node uid; empty for nodes.
func (it *Item) StartUID() string { return it.startUID }

// EndUID returns the edge's destination node uid; empty for nodes.
func (it *Item) EndUID() string { return it.endUID }

// IsDirty reports whether any attribute has changed since the last save
// (or since creation, for a brand new item).
func (it *Item) IsDirty() bool { return len(it.dirty) > 0 }

// Get returns the attribute named key and whether it is present. Reserved
// structural names resolve to their dedicated fields rather than the
// attribute map.
func (it *Item) Get(key string) (any, bool) {
	switch key {
	case "uid":
		return it.uid, true
	case "kind":
		return it.kind, true
	case "ctime":
		return it.ctime, true
	case "mtime":
		return it.mtime, true
	case "startuid":
		if it.class == EdgeClass {
			return it.startUID, true
		}
		return nil, false
	case "enduid":
		if it.class == EdgeClass {
			return it.endUID, true
		}
		return nil, false
	}
	v, ok := it.attrs[key]
	return v, ok
}

// GetMany resolves several keys at once, using def for any key absent from
// the item (spec.md §4.6's indexed-set aggregate helper reuses this
// per-element).
func (it *Item) GetMany(keys []string, def any) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := it.Get(k); ok {
			out[k] = v
		} else {
			out[k] = def
		}
	}
	return out
}

// Set assigns an attribute, marks it dirty, and touches mtime — unless the
// key being set is mtime itself, per spec.md §3 "except self-updates
// triggered by the mtime write itself". Reserved structural names other
// than mtime are rejected.
func (it *Item) Set(key string, value any) {
	if key == "mtime" {
		it.mtime = toFloat(value)
		it.dirty["mtime"] = true
		return
	}
	if reserved[key] {
		return
	}
	it.attrs[key] = value
	it.dirty[key] = true
	it.touchMtime()
}

// SetBatch applies multiple attributes in one call, spec.md §4.2.
func (it *Item) SetBatch(attrs map[string]any) {
	for k, v := range attrs {
		it.Set(k, v)
	}
}

// DeleteAttr removes an attribute and touches mtime. Deleting an absent key
// is a no-op aside from the mtime touch, matching the tolerant semantics
// spec.md gives filter/get elsewhere in the item/set surface. Named
// distinctly from Delete (which removes the item itself) since Go has no
// analogue to the original's __delitem__ operator overload.
func (it *Item) DeleteAttr(key string) {
	if reserved[key] {
		return
	}
	if _, ok := it.attrs[key]; ok {
		delete(it.attrs, key)
	}
	it.dirty[key] = true
	it.touchMtime()
}

func (it *Item) touchMtime() {
	it.mtime = nowSeconds()
	it.dirty["mtime"] = true
}

// touchMtimeTo is used by undo's patch path, which must restore an exact
// prior mtime rather than advance to "now" (DESIGN.md's Open Question
// decision for spec.md §4.5's undo edge case).
func (it *Item) touchMtimeTo(mtime float64) {
	it.mtime = mtime
}

// RestoreMtime sets mtime to an exact prior value without touching it to
// "now", for undo's applier to call when replaying a modify record's `-`
// side (DESIGN.md's Open Question decision).
func (it *Item) RestoreMtime(mtime any) {
	it.touchMtimeTo(toFloat(mtime))
}

// dirtyKeys returns the non-ephemeral keys marked dirty since the last
// save, for diff computation.
func (it *Item) dirtyKeys() []string {
	keys := make([]string, 0, len(it.dirty))
	for k := range it.dirty {
		if strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// persistableAttrs returns the full attribute map as written to the data
// JSON blob: structural fields (uid/kind/ctime/mtime and, for edges,
// startuid/enduid) plus user attributes, with only ephemeral keys
// excluded. The structural fields are redundant with their dedicated
// columns, but row materialization in the fetch engine (spec.md §4.3
// "decode data as JSON ... instantiate the result as a node or edge")
// reconstructs an item from the data blob alone, so it must be
// self-contained the way the teacher's reference behavior does it. This
// is also the payload used for the `+`/`-` side of add/delete journal
// records, since undo's recreate path needs kind/ctime/mtime/startuid/
// enduid to fully reconstruct a deleted item (spec.md §4.5 "recreate the
// item (node or edge distinguished by presence of startuid)").
func (it *Item) persistableAttrs() map[string]any {
	out := map[string]any{}
	for k, v := range it.attrs {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	out["uid"] = it.uid
	out["kind"] = it.kind
	out["ctime"] = it.ctime
	out["mtime"] = it.mtime
	if it.class == EdgeClass {
		out["startuid"] = it.startUID
		out["enduid"] = it.endUID
	}
	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return nowSeconds()
	}
}

// Copy duplicates the item under a fresh or caller-supplied uid, sharing
// the attribute map's nested values (spec.md §4.2 "shallow ... duplication
// with optional fresh uid"). The copy is unpersisted and fully dirty.
func (it *Item) Copy(newUID string) *Item {
	if newUID == "" {
		newUID = uid.New()
	}
	now := nowSeconds()
	cp := &Item{
		class:    it.class,
		uid:      newUID,
		kind:     it.kind,
		startUID: it.startUID,
		endUID:   it.endUID,
		ctime:    now,
		mtime:    now,
		attrs:    map[string]any{},
		dirty:    map[string]bool{},
		adapter:  it.adapter,
	}
	for k, v := range it.attrs {
		cp.attrs[k] = v
		cp.dirty[k] = true
	}
	return cp
}

// DeepCopy duplicates the item under a fresh or caller-supplied uid,
// recursively cloning nested maps and slices so mutating the copy's
// attributes never aliases the original's (spec.md §4.2).
func (it *Item) DeepCopy(newUID string) *Item {
	cp := it.Copy(newUID)
	for k, v := range cp.attrs {
		cp.attrs[k] = deepClone(v)
	}
	return cp
}

func deepClone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = deepClone(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = deepClone(sub)
		}
		return out
	default:
		return val
	}
}

// DeleteFTSEntry removes this item's row from the node or edge FTS5
// virtual table, if one has been built. Exposed standalone (rather than
// bundled into Delete) for the indexed set's delete_fts batch operation,
// spec.md §4.6, which clears search entries without removing the rows.
func (it *Item) DeleteFTSEntry(ctx context.Context) error {
	kind := "node"
	if it.class == EdgeClass {
		kind = "edge"
	}
	return store.DeleteFTS(ctx, it.adapter.DB(), kind, it.uid)
}

// Renew reloads the persisted state from storage, replacing attribute
// state while preserving any ephemeral (`_`-prefixed) keys currently held,
// and clears dirty tracking (spec.md §4.2).
func (it *Item) Renew(ctx context.Context) error {
	ephemeral := map[string]any{}
	for k, v := range it.attrs {
		if strings.HasPrefix(k, "_") {
			ephemeral[k] = v
		}
	}

	if it.class == NodeClass {
		row, err := store.GetNode(ctx, it.adapter.DB(), it.uid)
		if err != nil {
			return err
		}
		if err := it.loadNodeRow(row); err != nil {
			return err
		}
	} else {
		row, err := store.GetEdge(ctx, it.adapter.DB(), it.uid)
		if err != nil {
			return err
		}
		if err := it.loadEdgeRow(row); err != nil {
			return err
		}
	}

	for k, v := range ephemeral {
		it.attrs[k] = v
	}
	it.dirty = map[string]bool{}
	it.persisted = true
	return nil
}
