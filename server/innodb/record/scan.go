package record

import (
	"github.com/pipeking636/CS525/server/innodb/basic"
)

// Scan walks the live records of a table in page and slot order.
type Scan struct {
	table  *Table
	filter func(*basic.Record) bool
	page   int
	slot   int
	closed bool
}

// StartScan begins a full scan. A nil filter matches every record.
func (t *Table) StartScan(filter func(*basic.Record) bool) (*Scan, error) {
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	return &Scan{table: t, filter: filter, page: 1}, nil
}

// Next copies the next matching record into rec. It returns ErrNoMoreTuples
// once the table is exhausted.
func (s *Scan) Next(rec *basic.Record) error {
	if s.closed {
		return basic.ErrInvalidHandle
	}
	if rec == nil {
		return basic.ErrInvalidParams
	}
	t := s.table
	if err := t.checkOpen(); err != nil {
		return err
	}

	for s.page < t.TotalPages() {
		found := false
		err := t.withDataPage(s.page, func(dp dataPage) (bool, error) {
			if !dp.initialized() {
				return false, nil
			}
			slotCount := int(dp.header().SlotCount)
			for s.slot < slotCount {
				slot := s.slot
				s.slot++
				if !dp.validSlot(slot) {
					continue
				}
				if len(rec.Data) != t.recordSize {
					rec.Data = make([]byte, t.recordSize)
				}
				copy(rec.Data, dp.payload(slot))
				rec.ID = basic.RID{Page: s.page, Slot: slot}
				if s.filter == nil || s.filter(rec) {
					found = true
					return false, nil
				}
			}
			return false, nil
		})
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		s.page++
		s.slot = 0
	}
	return basic.ErrNoMoreTuples
}

func (s *Scan) Close() error {
	if s.closed {
		return basic.ErrInvalidHandle
	}
	s.closed = true
	return nil
}
