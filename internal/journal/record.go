// Package journal implements the reversible change log described in
// spec.md §4.5: every attribute-mutating save or delete that opts in
// appends a record capturing enough state to invert it, and Undo replays
// the journal in reverse, honoring batch grouping.
package journal

import (
	"encoding/json"
)

// Record is one entry in the change journal. Field names match spec.md's
// `+`/`-` vocabulary directly so the JSON persisted in the changes table's
// "change" column is self-describing.
type Record struct {
	UID   string         `json:"uid"`
	Plus  map[string]any `json:"+,omitempty"`
	Minus map[string]any `json:"-,omitempty"`
	Time  float64        `json:"time"`
	Rev   string         `json:"rev"`
	Batch string         `json:"batch,omitempty"`

	// ID is the autoincrement id assigned by the changes table. It is not
	// part of the persisted JSON; it is populated from the row id on read.
	ID int64 `json:"-"`
}

// IsAdd reports whether r represents a pure add (no prior state).
func (r Record) IsAdd() bool { return len(r.Plus) > 0 && len(r.Minus) == 0 }

// IsDelete reports whether r represents a pure delete (no new state).
func (r Record) IsDelete() bool { return len(r.Minus) > 0 && len(r.Plus) == 0 }

// IsModify reports whether r represents a patch with both directions present.
func (r Record) IsModify() bool { return len(r.Plus) > 0 && len(r.Minus) > 0 }

// Marshal serializes r for storage in the changes table.
func (r Record) Marshal() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal parses a stored change row back into a Record, filling in id
// from the row's own primary key since it isn't part of the JSON payload.
func Unmarshal(id int64, data string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return Record{}, err
	}
	r.ID = id
	return r, nil
}
