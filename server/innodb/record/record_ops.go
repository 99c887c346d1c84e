package record

import (
	"github.com/pkg/errors"

	"github.com/pipeking636/CS525/logger"
	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/server/innodb/buffer_pool"
)

// withDataPage pins pageNum for the duration of fn. When fn reports the page
// as modified it is marked dirty before the pin is released.
func (t *Table) withDataPage(pageNum int, fn func(dp dataPage) (bool, error)) error {
	h, err := t.pool.PinPage(pageNum)
	if err != nil {
		return err
	}
	dirty, err := fn(dataPage{buf: h.Data(), recordSize: t.recordSize})
	if dirty {
		if derr := t.pool.MarkDirty(h); err == nil {
			err = derr
		}
	}
	if uerr := t.pool.UnpinPage(h); err == nil {
		err = uerr
	}
	return err
}

func (t *Table) checkOpen() error {
	if t == nil || t.pool == nil {
		return basic.ErrInvalidHandle
	}
	return nil
}

func (t *Table) checkRecord(rec *basic.Record) error {
	if rec == nil || len(rec.Data) != t.recordSize {
		return errors.Wrapf(basic.ErrInvalidRecordSize, "want %d bytes", t.recordSize)
	}
	return nil
}

func (t *Table) checkPage(rid basic.RID) error {
	if rid.Page < 1 || rid.Page >= int(t.info.TotalPages) {
		return errors.Wrapf(basic.ErrPageNotFound, "rid %s", rid)
	}
	return nil
}

// pinInfo pins page 0 ahead of a structural change, so that once a data
// page has been modified the only step left is writing the cached TableInfo.
func (t *Table) pinInfo() (*buffer_pool.PageHandle, error) {
	h, err := t.pool.PinPage(common.TABLE_INFO_PAGE)
	if err != nil {
		return nil, errors.Wrapf(err, "table %s: pin table info", t.Name())
	}
	return h, nil
}

// writeInfo encodes the cached TableInfo into the pinned page 0. On failure
// the page is restored from prev.
func (t *Table) writeInfo(h *buffer_pool.PageHandle, prev *TableInfo) error {
	page := h.Data()
	if page == nil {
		return basic.ErrInvalidHandle
	}
	t.info.Encode(page)
	if err := t.pool.MarkDirty(h); err != nil {
		prev.Encode(page)
		return err
	}
	return nil
}

// InsertRecord stores rec on the first page of the free list, allocating a
// new page when the list is empty, and sets rec.ID. On error neither the
// table nor rec is changed.
func (t *Table) InsertRecord(rec *basic.Record) (err error) {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := t.checkRecord(rec); err != nil {
		return err
	}
	if MaxSlots(t.recordSize) == 0 {
		return errors.Wrapf(basic.ErrNoMoreSlot, "record of %d bytes does not fit a page", t.recordSize)
	}

	ih, err := t.pinInfo()
	if err != nil {
		return err
	}
	defer func() {
		if uerr := t.pool.UnpinPage(ih); err == nil {
			err = uerr
		}
	}()

	for {
		saved := *t.info
		pageNum := int(t.info.FreeListHead)
		fresh := pageNum == common.NO_PAGE
		if fresh {
			pageNum = int(t.info.TotalPages)
			t.info.TotalPages++
		}

		slot := -1
		committed := false
		err := t.withDataPage(pageNum, func(dp dataPage) (bool, error) {
			undo := append([]byte(nil), dp.buf...)
			if fresh || !dp.initialized() {
				dp.init()
				t.info.FreeListHead = int32(pageNum)
				logger.Debugf("table %s: new data page %d", t.Name(), pageNum)
			}

			slot = dp.claimSlot()
			if slot >= 0 {
				copy(dp.payload(slot), rec.Data)
				t.info.NumTuples++
			}
			if slot < 0 || !dp.hasFreeSlot() {
				t.unlink(dp, pageNum)
			}

			if err := t.writeInfo(ih, &saved); err != nil {
				copy(dp.buf, undo)
				return false, err
			}
			committed = true
			return true, nil
		})
		if !committed {
			*t.info = saved
			return err
		}
		if slot >= 0 {
			rec.ID = basic.RID{Page: pageNum, Slot: slot}
			return err
		}
		if err != nil {
			return err
		}
	}
}

// unlink removes the head page dp from the free list.
func (t *Table) unlink(dp dataPage, pageNum int) {
	h := dp.header()
	t.info.FreeListHead = h.NextFreePage
	h.NextFreePage = common.NO_PAGE
	dp.setHeader(h)
	logger.Debugf("table %s: page %d full, free list head now %d", t.Name(), pageNum, t.info.FreeListHead)
}

// GetRecord copies the record at rid into out, sizing out.Data if needed.
func (t *Table) GetRecord(rid basic.RID, out *basic.Record) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if out == nil {
		return basic.ErrInvalidParams
	}
	if err := t.checkPage(rid); err != nil {
		return err
	}
	return t.withDataPage(rid.Page, func(dp dataPage) (bool, error) {
		if !dp.validSlot(rid.Slot) {
			return false, errors.Wrapf(basic.ErrNoMoreTuples, "rid %s", rid)
		}
		if len(out.Data) != t.recordSize {
			out.Data = make([]byte, t.recordSize)
		}
		copy(out.Data, dp.payload(rid.Slot))
		out.ID = rid
		return false, nil
	})
}

// DeleteRecord marks the slot at rid free. A page that was full goes back on
// the free list. On error the table is left unchanged.
func (t *Table) DeleteRecord(rid basic.RID) (err error) {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := t.checkPage(rid); err != nil {
		return err
	}

	ih, err := t.pinInfo()
	if err != nil {
		return err
	}
	defer func() {
		if uerr := t.pool.UnpinPage(ih); err == nil {
			err = uerr
		}
	}()

	saved := *t.info
	committed := false
	err = t.withDataPage(rid.Page, func(dp dataPage) (bool, error) {
		if !dp.validSlot(rid.Slot) {
			return false, errors.Wrapf(basic.ErrNoMoreTuples, "rid %s", rid)
		}
		undo := append([]byte(nil), dp.buf...)
		if wasFull := dp.releaseSlot(rid.Slot); wasFull {
			h := dp.header()
			h.NextFreePage = t.info.FreeListHead
			dp.setHeader(h)
			t.info.FreeListHead = int32(rid.Page)
			logger.Debugf("table %s: page %d back on free list", t.Name(), rid.Page)
		}
		t.info.NumTuples--

		if err := t.writeInfo(ih, &saved); err != nil {
			copy(dp.buf, undo)
			return false, err
		}
		committed = true
		return true, nil
	})
	if !committed {
		*t.info = saved
	}
	return err
}

// UpdateRecord overwrites the live record at rec.ID with rec.Data.
func (t *Table) UpdateRecord(rec *basic.Record) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := t.checkRecord(rec); err != nil {
		return err
	}
	if err := t.checkPage(rec.ID); err != nil {
		return err
	}
	return t.withDataPage(rec.ID.Page, func(dp dataPage) (bool, error) {
		if !dp.validSlot(rec.ID.Slot) {
			return false, errors.Wrapf(basic.ErrNoMoreTuples, "rid %s", rec.ID)
		}
		copy(dp.payload(rec.ID.Slot), rec.Data)
		return true, nil
	})
}
