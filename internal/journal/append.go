package journal

import (
	"context"

	"github.com/orneryd/graphydb/internal/store"
	"github.com/orneryd/graphydb/internal/uid"
)

// Append serializes rec and appends it to the changes table, assigning the
// returned row id to rec.ID. If rec.Rev is empty a fresh uid is allocated
// for it (spec.md §2 "a unique rev").
func Append(ctx context.Context, q store.Queryer, rec Record) (Record, error) {
	if rec.Rev == "" {
		rec.Rev = uid.New()
	}
	data, err := rec.Marshal()
	if err != nil {
		return rec, err
	}
	id, err := store.AppendChange(ctx, q, data)
	if err != nil {
		return rec, err
	}
	rec.ID = id
	return rec, nil
}

// NewBatch allocates a fresh batch uid for operations that generate
// multiple records and were not given one by the caller (spec.md §4.5).
func NewBatch() string {
	return uid.New()
}
