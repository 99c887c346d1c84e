package basic

import "fmt"

// RID addresses a record by data page and slot. Page 0 holds table metadata,
// so valid records always live on page 1 or later.
type RID struct {
	Page int
	Slot int
}

// InvalidRID is carried by records that were never inserted.
var InvalidRID = RID{Page: -1, Slot: -1}

func (r RID) IsValid() bool {
	return r.Page >= 1 && r.Slot >= 0
}

func (r RID) String() string {
	return fmt.Sprintf("%d:%d", r.Page, r.Slot)
}

// Record owns exactly recordSize bytes of schema-encoded attribute values.
type Record struct {
	ID   RID
	Data []byte
}

// NewRecord allocates a zeroed record buffer sized for schema.
func NewRecord(schema *Schema) (*Record, error) {
	if schema == nil {
		return nil, ErrInvalidParams
	}
	size, err := schema.RecordSize()
	if err != nil {
		return nil, err
	}
	return &Record{ID: InvalidRID, Data: make([]byte, size)}, nil
}

// Free drops the record buffer. Using the record afterwards is an error.
func (r *Record) Free() {
	r.Data = nil
	r.ID = InvalidRID
}
