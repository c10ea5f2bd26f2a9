package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/orneryd/graphydb/internal/store"
)

// ErrUnknownUndoAction is returned when a journal record has neither `+`
// nor `-` populated — spec.md §7 "a journal record lacks both + and -
// (corrupted journal)".
var ErrUnknownUndoAction = errors.New("journal record has neither + nor -")

// Applier is the narrow surface Undo needs from the item layer to invert a
// record, kept separate from internal/item to avoid a store<->item<->journal
// import cycle (item depends on journal to append records; journal must not
// depend back on item).
type Applier interface {
	// DeleteItem removes the item identified by uid with no new change
	// record (the inverse of a pure add).
	DeleteItem(ctx context.Context, uid string) error
	// RecreateItem restores an item from its last-known full attribute set,
	// saved with setchange=false. isEdge distinguishes node vs edge the way
	// spec.md's undo does: "distinguished by presence of startuid".
	RecreateItem(ctx context.Context, uid string, attrs map[string]any, isEdge bool) error
	// PatchItem removes the keys in removeKeys and restores restoreAttrs on
	// the live item, then saves with force=true, setchange=false.
	PatchItem(ctx context.Context, uid string, removeKeys []string, restoreAttrs map[string]any) error
}

// Action is one step Undo performed, returned in the order applied.
type Action struct {
	Kind string // "+", "-", or "*"
	UID  string
}

// Undo reads the highest-id record; if it carries a batch, every record
// sharing that batch is loaded (ascending id) and replayed in reverse
// order, inverting each one and removing it from the journal once its
// inverse succeeds. Returns the (action, uid) pairs performed, in
// application order. An empty journal returns (nil, nil) — nothing to do,
// not an error.
func Undo(ctx context.Context, q store.Queryer, applier Applier) ([]Action, error) {
	last, err := store.LastChange(ctx, q)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	rec, err := Unmarshal(last.ID, last.Change)
	if err != nil {
		return nil, fmt.Errorf("journal: unmarshal change %d: %w", last.ID, err)
	}

	var batch []Record
	if rec.Batch != "" {
		rows, err := store.ChangesByBatch(ctx, q, rec.Batch)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			r, err := Unmarshal(row.ID, row.Change)
			if err != nil {
				return nil, fmt.Errorf("journal: unmarshal change %d: %w", row.ID, err)
			}
			batch = append(batch, r)
		}
	} else {
		batch = []Record{rec}
	}

	var actions []Action
	for i := len(batch) - 1; i >= 0; i-- {
		r := batch[i]
		action, err := applyInverse(ctx, r, applier)
		if err != nil {
			return actions, err
		}
		if err := store.DeleteChange(ctx, q, r.ID); err != nil {
			return actions, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func applyInverse(ctx context.Context, r Record, applier Applier) (Action, error) {
	switch {
	case r.IsModify():
		removeKeys := make([]string, 0, len(r.Plus))
		for k := range r.Plus {
			removeKeys = append(removeKeys, k)
		}
		if err := applier.PatchItem(ctx, r.UID, removeKeys, r.Minus); err != nil {
			return Action{}, fmt.Errorf("journal: undo modify %s: %w", r.UID, err)
		}
		return Action{Kind: "*", UID: r.UID}, nil

	case r.IsAdd():
		if err := applier.DeleteItem(ctx, r.UID); err != nil {
			return Action{}, fmt.Errorf("journal: undo add %s: %w", r.UID, err)
		}
		return Action{Kind: "+", UID: r.UID}, nil

	case r.IsDelete():
		_, isEdge := r.Minus["startuid"]
		if err := applier.RecreateItem(ctx, r.UID, r.Minus, isEdge); err != nil {
			return Action{}, fmt.Errorf("journal: undo delete %s: %w", r.UID, err)
		}
		return Action{Kind: "-", UID: r.UID}, nil

	default:
		return Action{}, fmt.Errorf("journal: record %d for %s: %w", r.ID, r.UID, ErrUnknownUndoAction)
	}
}
