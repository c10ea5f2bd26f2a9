package journal

import "strings"

// BuildDiff computes the `+`/`-` maps for a modify record, restricted to
// dirtyKeys and excluding ephemeral (`_`-prefixed) keys, per spec.md §4.5
// "diff of dirty, non-ephemeral keys". prior is the attribute map as
// currently persisted (absent for a brand new item); next is the in-memory
// attribute map about to be saved.
//
// ok is false when the resulting diff is empty or degenerate — spec.md's
// "the degenerate 'only mtime changed' diff is suppressed and produces no
// record" — so callers can skip appending a record entirely.
func BuildDiff(dirtyKeys []string, prior, next map[string]any) (plus, minus map[string]any, ok bool) {
	plus = map[string]any{}
	minus = map[string]any{}

	for _, key := range dirtyKeys {
		if strings.HasPrefix(key, "_") {
			continue
		}
		newVal, hasNew := next[key]
		oldVal, hadOld := prior[key]

		if hasNew {
			plus[key] = newVal
		}
		if hadOld {
			minus[key] = oldVal
		}
	}

	if isDegenerateMtimeOnly(plus, minus) {
		return nil, nil, false
	}
	if len(plus) == 0 && len(minus) == 0 {
		return nil, nil, false
	}
	return plus, minus, true
}

// isDegenerateMtimeOnly reports whether the only keys present across both
// diff halves are "mtime", the case spec.md §4.5 says must produce no
// record at all (a bare mtime touch is not a meaningful mutation).
func isDegenerateMtimeOnly(plus, minus map[string]any) bool {
	keys := map[string]struct{}{}
	for k := range plus {
		keys[k] = struct{}{}
	}
	for k := range minus {
		keys[k] = struct{}{}
	}
	if len(keys) != 1 {
		return false
	}
	_, onlyMtime := keys["mtime"]
	return onlyMtime
}

// BuildAddRecord builds a pure-add record: the full persistable attribute
// map as `+`, no `-`.
func BuildAddRecord(attrs map[string]any) (plus, minus map[string]any) {
	full := map[string]any{}
	for k, v := range attrs {
		if strings.HasPrefix(k, "_") {
			continue
		}
		full[k] = v
	}
	return full, nil
}

// BuildDeleteRecord builds a pure-delete record: the full prior attribute
// map as `-`, no `+`.
func BuildDeleteRecord(attrs map[string]any) (plus, minus map[string]any) {
	full := map[string]any{}
	for k, v := range attrs {
		if strings.HasPrefix(k, "_") {
			continue
		}
		full[k] = v
	}
	return nil, full
}
