package iset

import "github.com/orneryd/graphydb/internal/item"

// Union returns elements from s and other, uid-deduplicated, insertion
// order taken from s for shared elements and from other for elements it
// alone introduces (spec.md §4.6).
func (s *Set) Union(other *Set) *Set {
	out := s.Copy()
	for _, uid := range other.order {
		if !out.Contains(uid) {
			out.appendUID(uid, other.items[uid])
		}
	}
	return out
}

// Intersection returns elements present in both s and other, in s's order.
func (s *Set) Intersection(other *Set) *Set {
	out := &Set{items: map[string]*item.Item{}}
	for _, uid := range s.order {
		if other.Contains(uid) {
			out.appendUID(uid, s.items[uid])
		}
	}
	return out
}

// Difference returns elements present in s but not in other, in s's order.
func (s *Set) Difference(other *Set) *Set {
	out := &Set{items: map[string]*item.Item{}}
	for _, uid := range s.order {
		if !other.Contains(uid) {
			out.appendUID(uid, s.items[uid])
		}
	}
	return out
}

// SymmetricDifference returns elements present in exactly one of s, other.
// Insertion order is s's elements first, then other's.
func (s *Set) SymmetricDifference(other *Set) *Set {
	out := &Set{items: map[string]*item.Item{}}
	for _, uid := range s.order {
		if !other.Contains(uid) {
			out.appendUID(uid, s.items[uid])
		}
	}
	for _, uid := range other.order {
		if !s.Contains(uid) {
			out.appendUID(uid, other.items[uid])
		}
	}
	return out
}

// IsSubsetOf reports whether every uid in s is also in other (s ≤ other).
func (s *Set) IsSubsetOf(other *Set) bool {
	for _, uid := range s.order {
		if !other.Contains(uid) {
			return false
		}
	}
	return true
}

// IsProperSubsetOf reports s < other: a subset with strictly fewer elements.
func (s *Set) IsProperSubsetOf(other *Set) bool {
	return s.Len() < other.Len() && s.IsSubsetOf(other)
}

// IsSupersetOf reports s ≥ other.
func (s *Set) IsSupersetOf(other *Set) bool {
	return other.IsSubsetOf(s)
}

// IsProperSupersetOf reports s > other.
func (s *Set) IsProperSupersetOf(other *Set) bool {
	return other.IsProperSubsetOf(s)
}

// Equal reports whether s and other contain exactly the same uids
// (s = other); insertion order is not considered.
func (s *Set) Equal(other *Set) bool {
	return s.Len() == other.Len() && s.IsSubsetOf(other)
}
