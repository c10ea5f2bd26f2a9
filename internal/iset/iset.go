// Package iset implements the order-preserving, uid-keyed container
// spec.md §4.6 describes: list-style indexing/slicing/sorting alongside
// uid-based set algebra, used to return and compose every fetch result.
package iset

import (
	"context"
	"path/filepath"

	"github.com/orneryd/graphydb/internal/item"
	"github.com/orneryd/graphydb/internal/journal"
)

// Set is an order-preserving container of node-or-edge items keyed by
// uid. The zero value is not usable; construct with New.
type Set struct {
	order []string
	items map[string]*item.Item
}

// New builds a Set from elems, tolerating duplicate uids by keeping the
// first occurrence in order (spec.md §4.6 "Creation from an iterable must
// tolerate duplicates by uid").
func New(elems ...*item.Item) *Set {
	s := &Set{items: map[string]*item.Item{}}
	for _, e := range elems {
		if s.Contains(e.UID()) {
			continue
		}
		s.appendUID(e.UID(), e)
	}
	return s
}

// Len reports the number of elements.
func (s *Set) Len() int { return len(s.order) }

// At returns the element at position i in insertion order.
func (s *Set) At(i int) *item.Item {
	return s.items[s.order[i]]
}

// Contains reports whether uid is a member.
func (s *Set) Contains(uid string) bool {
	_, ok := s.items[uid]
	return ok
}

// Get returns the element with the given uid, if present.
func (s *Set) Get(uid string) (*item.Item, bool) {
	it, ok := s.items[uid]
	return it, ok
}

// UIDs returns the member uids in insertion order.
func (s *Set) UIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns every element in insertion order. Callers must not mutate
// the returned slice's backing array.
func (s *Set) All() []*item.Item {
	out := make([]*item.Item, len(s.order))
	for i, uid := range s.order {
		out[i] = s.items[uid]
	}
	return out
}

// Slice returns a new Set over the half-open range [start, end), spec.md
// §4.6 "slice (returns a new indexed set)".
func (s *Set) Slice(start, end int) *Set {
	if start < 0 {
		start = 0
	}
	if end > len(s.order) {
		end = len(s.order)
	}
	out := &Set{items: map[string]*item.Item{}}
	if start >= end {
		return out
	}
	for _, uid := range s.order[start:end] {
		out.appendUID(uid, s.items[uid])
	}
	return out
}

// Append adds it to the end, moving it there if it is already a member
// (spec.md §4.6 "append (move to end if present)").
func (s *Set) Append(it *item.Item) {
	uid := it.UID()
	if _, ok := s.items[uid]; ok {
		s.removeFromOrder(uid)
	}
	s.appendUID(uid, it)
}

func (s *Set) appendUID(uid string, it *item.Item) {
	if _, ok := s.items[uid]; !ok {
		s.order = append(s.order, uid)
	}
	s.items[uid] = it
}

func (s *Set) removeFromOrder(uid string) {
	for i, u := range s.order {
		if u == uid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Pop removes and returns the element at position i.
func (s *Set) Pop(i int) *item.Item {
	uid := s.order[i]
	it := s.items[uid]
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.items, uid)
	return it
}

// DeleteAt removes the element at position i in place.
func (s *Set) DeleteAt(i int) {
	uid := s.order[i]
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.items, uid)
}

// DeleteRange removes the half-open range [start, end) in place.
func (s *Set) DeleteRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(s.order) {
		end = len(s.order)
	}
	if start >= end {
		return
	}
	for _, uid := range s.order[start:end] {
		delete(s.items, uid)
	}
	s.order = append(s.order[:start], s.order[end:]...)
}

// Sort orders elements in place by less, optionally reversed, spec.md
// §4.6 "sort in place (by caller-supplied key, optional reverse)".
func (s *Set) Sort(less func(a, b *item.Item) bool, reverse bool) {
	items := s.All()
	sortItems(items, less, reverse)
	order := make([]string, len(items))
	for i, it := range items {
		order[i] = it.UID()
	}
	s.order = order
}

func sortItems(items []*item.Item, less func(a, b *item.Item) bool, reverse bool) {
	cmp := less
	if reverse {
		cmp = func(a, b *item.Item) bool { return less(b, a) }
	}
	insertionSort(items, cmp)
}

// insertionSort keeps sort stable without pulling in sort.Slice's
// reflection-based comparator, matching the small, dependency-free style
// of the rest of this package's list helpers.
func insertionSort(items []*item.Item, less func(a, b *item.Item) bool) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// Reverse reverses the element order in place.
func (s *Set) Reverse() {
	for i, j := 0, len(s.order)-1; i < j; i, j = i+1, j-1 {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	}
}

// Copy returns a shallow copy: a new container sharing element references
// but not the original's order/membership state, spec.md §4.6.
func (s *Set) Copy() *Set {
	out := &Set{
		order: append([]string(nil), s.order...),
		items: make(map[string]*item.Item, len(s.items)),
	}
	for k, v := range s.items {
		out.items[k] = v
	}
	return out
}

// GetAttr aggregates attribute key across all elements, substituting def when
// an element lacks it (spec.md §4.6).
func (s *Set) GetAttr(key string, def any) map[string]any {
	out := make(map[string]any, len(s.order))
	for _, uid := range s.order {
		it := s.items[uid]
		if v, ok := it.Get(key); ok {
			out[uid] = v
		} else {
			out[uid] = def
		}
	}
	return out
}

// GetAttrMany aggregates several keys across all elements.
func (s *Set) GetAttrMany(keys []string, def any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.order))
	for _, uid := range s.order {
		out[uid] = s.items[uid].GetMany(keys, def)
	}
	return out
}

// SetAttr broadcasts an attribute assignment to every element.
func (s *Set) SetAttr(key string, value any) {
	for _, it := range s.items {
		it.Set(key, value)
	}
}

// SetAttrs broadcasts a batch of attribute assignments to every element.
func (s *Set) SetAttrs(attrs map[string]any) {
	for _, it := range s.items {
		it.SetBatch(attrs)
	}
}

// Filter returns a new Set of elements for which pred returns true.
// A panic during predicate evaluation suppresses that element rather
// than propagating, matching spec.md §4.6 "tolerant of missing keys
// (exceptions during predicate evaluation suppress the element)".
func (s *Set) Filter(pred func(*item.Item) bool) *Set {
	out := &Set{items: map[string]*item.Item{}}
	for _, uid := range s.order {
		it := s.items[uid]
		if safePredicate(pred, it) {
			out.appendUID(uid, it)
		}
	}
	return out
}

func safePredicate(pred func(*item.Item) bool, it *item.Item) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pred(it)
}

// FilterGlob returns a new Set of elements whose attr value matches the
// shell-glob pattern, using the matching rules of filepath.Match
// (spec.md §4.6 "filter_glob(attr=pattern) using shell-glob matching").
// Elements missing attr or whose value isn't a string never match.
func (s *Set) FilterGlob(attr, pattern string) *Set {
	return s.Filter(func(it *item.Item) bool {
		v, ok := it.Get(attr)
		if !ok {
			return false
		}
		str, ok := v.(string)
		if !ok {
			return false
		}
		matched, err := filepath.Match(pattern, str)
		return err == nil && matched
	})
}

// Save persists every element, sharing a single batch uid across their
// change records — freshly allocated if batch is empty — matching
// spec.md §4.6's batch save helper.
func (s *Set) Save(ctx context.Context, batch string, setchange bool) error {
	if batch == "" && setchange {
		batch = journal.NewBatch()
	}
	for _, uid := range s.order {
		if err := s.items[uid].Save(ctx, false, batch, setchange); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes every element's row (and incident edges, if disconnect
// is set), sharing a single batch uid across their change records.
func (s *Set) Delete(ctx context.Context, disconnect bool, batch string, setchange bool) error {
	if batch == "" && setchange {
		batch = journal.NewBatch()
	}
	for _, uid := range s.order {
		if err := s.items[uid].Delete(ctx, disconnect, setchange, batch); err != nil {
			return err
		}
	}
	return nil
}

// DeleteFTS clears every element's FTS entry without touching its row.
func (s *Set) DeleteFTS(ctx context.Context) error {
	for _, uid := range s.order {
		if err := s.items[uid].DeleteFTSEntry(ctx); err != nil {
			return err
		}
	}
	return nil
}
