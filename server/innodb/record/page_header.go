package record

import (
	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/util"
)

// PageHeader sits at offset 0 of every data page.
//
//	0  slotDirOffset  int32  start of the slot directory, 0 = uninitialized
//	4  slotCount      int32  slots ever allocated on the page
//	8  freeSlotCount  int32  slots still able to take a record
//	12 nextFreePage   int32  free-list link, NO_PAGE at the tail
//
// The directory grows forward from slotDirOffset in 8 byte entries
// (payload offset int32, valid byte, 3 bytes padding). Payloads are packed
// backwards from the end of the page: slot i starts at
// PAGE_SIZE-(i+1)*recordSize.
type PageHeader struct {
	SlotDirOffset int32
	SlotCount     int32
	FreeSlotCount int32
	NextFreePage  int32
}

// MaxSlots is how many records of recordSize fit on one data page.
func MaxSlots(recordSize int) int {
	if recordSize <= 0 {
		return 0
	}
	return (common.PAGE_SIZE - common.DATA_PAGE_HEADER_SIZE) / (common.SLOT_ENTRY_SIZE + recordSize)
}

type dataPage struct {
	buf        []byte
	recordSize int
}

func (p dataPage) header() PageHeader {
	var h PageHeader
	cursor := 0
	cursor, h.SlotDirOffset = util.ReadInt4(p.buf, cursor)
	cursor, h.SlotCount = util.ReadInt4(p.buf, cursor)
	cursor, h.FreeSlotCount = util.ReadInt4(p.buf, cursor)
	_, h.NextFreePage = util.ReadInt4(p.buf, cursor)
	return h
}

func (p dataPage) setHeader(h PageHeader) {
	util.PutInt4(p.buf, 0, h.SlotDirOffset)
	util.PutInt4(p.buf, 4, h.SlotCount)
	util.PutInt4(p.buf, 8, h.FreeSlotCount)
	util.PutInt4(p.buf, 12, h.NextFreePage)
}

func (p dataPage) initialized() bool {
	return p.header().SlotDirOffset != 0
}

// init formats an empty data page.
func (p dataPage) init() {
	for i := range p.buf {
		p.buf[i] = 0
	}
	p.setHeader(PageHeader{
		SlotDirOffset: common.DATA_PAGE_HEADER_SIZE,
		FreeSlotCount: int32(MaxSlots(p.recordSize)),
		NextFreePage:  common.NO_PAGE,
	})
}

func (p dataPage) slotEntryOffset(slot int) int {
	return int(p.header().SlotDirOffset) + slot*common.SLOT_ENTRY_SIZE
}

// slot returns the payload offset and validity of one directory entry.
func (p dataPage) slot(slot int) (int, bool) {
	cursor := p.slotEntryOffset(slot)
	cursor, offset := util.ReadInt4(p.buf, cursor)
	_, valid := util.ReadByte(p.buf, cursor)
	return int(offset), valid == 1
}

func (p dataPage) setSlot(slot int, offset int, valid bool) {
	pos := p.slotEntryOffset(slot)
	util.PutInt4(p.buf, pos, int32(offset))
	if valid {
		p.buf[pos+4] = 1
	} else {
		p.buf[pos+4] = 0
	}
}

func (p dataPage) payloadOffset(slot int) int {
	return common.PAGE_SIZE - (slot+1)*p.recordSize
}

// payload returns the record bytes of slot in place.
func (p dataPage) payload(slot int) []byte {
	offset, _ := p.slot(slot)
	return p.buf[offset : offset+p.recordSize]
}

// validSlot reports whether slot exists and holds a live record.
func (p dataPage) validSlot(slot int) bool {
	if slot < 0 || slot >= int(p.header().SlotCount) {
		return false
	}
	_, valid := p.slot(slot)
	return valid
}

// claimSlot reserves a slot for a new record, reusing the lowest invalid slot
// before growing the directory. It returns -1 when the page is full.
func (p dataPage) claimSlot() int {
	h := p.header()
	for i := 0; i < int(h.SlotCount); i++ {
		if _, valid := p.slot(i); !valid {
			p.setSlot(i, p.payloadOffset(i), true)
			h.FreeSlotCount--
			p.setHeader(h)
			return i
		}
	}
	if int(h.SlotCount) >= MaxSlots(p.recordSize) {
		return -1
	}
	slot := int(h.SlotCount)
	h.SlotCount++
	h.FreeSlotCount--
	p.setHeader(h)
	p.setSlot(slot, p.payloadOffset(slot), true)
	return slot
}

// releaseSlot marks slot invalid and reports whether the page was full before.
func (p dataPage) releaseSlot(slot int) bool {
	h := p.header()
	wasFull := h.FreeSlotCount == 0
	offset, _ := p.slot(slot)
	p.setSlot(slot, offset, false)
	h.FreeSlotCount++
	p.setHeader(h)
	return wasFull
}

func (p dataPage) hasFreeSlot() bool {
	return p.header().FreeSlotCount > 0
}
