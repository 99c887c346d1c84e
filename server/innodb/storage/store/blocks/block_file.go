package blocks

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/pipeking636/CS525/logger"
	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/server/innodb/basic"
)

var zeroPage = make([]byte, common.PAGE_SIZE)

// PageFile is a file made of PAGE_SIZE blocks. It tracks the page count and
// the position of the last block read or written.
type PageFile struct {
	file       *os.File
	fileName   string
	totalPages int
	curPos     int
}

var _ basic.BlockFile = (*PageFile)(nil)

// CreatePageFile creates (or truncates) fileName so that it holds a single
// zero-filled page.
func CreatePageFile(fileName string) error {
	if fileName == "" {
		return basic.ErrFileNotFound
	}
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(basic.ErrFileNotFound, "create page file %s: %v", fileName, err)
	}
	defer f.Close()

	if _, err := f.Write(zeroPage); err != nil {
		return errors.Wrapf(basic.ErrWriteFailed, "create page file %s: %v", fileName, err)
	}
	return nil
}

// OpenPageFile opens an existing page file. The page count is derived from
// the file size; a trailing partial page is not counted.
func OpenPageFile(fileName string) (*PageFile, error) {
	if fileName == "" {
		return nil, basic.ErrFileNotFound
	}
	f, err := os.OpenFile(fileName, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(basic.ErrFileNotFound, "open page file %s: %v", fileName, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(basic.ErrFileNotFound, "stat page file %s: %v", fileName, err)
	}

	pf := &PageFile{
		file:       f,
		fileName:   fileName,
		totalPages: int(stat.Size() / common.PAGE_SIZE),
	}
	logger.Debugf("open page file %s, total pages %d", fileName, pf.totalPages)
	return pf, nil
}

// DestroyPageFile removes fileName from disk.
func DestroyPageFile(fileName string) error {
	if fileName == "" {
		return basic.ErrFileNotFound
	}
	if err := os.Remove(fileName); err != nil {
		return errors.Wrapf(basic.ErrFileNotFound, "destroy page file %s: %v", fileName, err)
	}
	return nil
}

func (pf *PageFile) FileName() string {
	return pf.fileName
}

func (pf *PageFile) TotalPages() int {
	return pf.totalPages
}

func (pf *PageFile) CurPos() int {
	return pf.curPos
}

// GetBlockPos is an alias of CurPos kept for callers that walk the file.
func (pf *PageFile) GetBlockPos() int {
	return pf.curPos
}

// Close releases the underlying file. Closing twice reports ErrInvalidHandle.
func (pf *PageFile) Close() error {
	if pf.file == nil {
		return basic.ErrInvalidHandle
	}
	err := pf.file.Close()
	pf.file = nil
	pf.totalPages = 0
	pf.curPos = 0
	if err != nil {
		return errors.Wrapf(basic.ErrCloseFailed, "close page file %s: %v", pf.fileName, err)
	}
	return nil
}

// ReadBlock copies page pageNum into buf, which must hold at least one page.
func (pf *PageFile) ReadBlock(pageNum int, buf []byte) error {
	if pf.file == nil {
		return basic.ErrInvalidHandle
	}
	if len(buf) < common.PAGE_SIZE {
		return basic.ErrInvalidParams
	}
	if pageNum < 0 || pageNum >= pf.totalPages {
		return errors.Wrapf(basic.ErrReadNonExistingPage, "page %d of %d", pageNum, pf.totalPages)
	}

	n, err := pf.file.ReadAt(buf[:common.PAGE_SIZE], int64(pageNum)*common.PAGE_SIZE)
	if err != nil && err != io.EOF {
		return errors.Wrapf(basic.ErrReadFailed, "read page %d: %v", pageNum, err)
	}
	// short read at the tail of the file
	for i := n; i < common.PAGE_SIZE; i++ {
		buf[i] = 0
	}
	pf.curPos = pageNum
	return nil
}

func (pf *PageFile) ReadFirstBlock(buf []byte) error {
	return pf.ReadBlock(0, buf)
}

func (pf *PageFile) ReadPreviousBlock(buf []byte) error {
	if pf.curPos-1 < 0 {
		return basic.ErrReadNonExistingPage
	}
	return pf.ReadBlock(pf.curPos-1, buf)
}

func (pf *PageFile) ReadCurrentBlock(buf []byte) error {
	return pf.ReadBlock(pf.curPos, buf)
}

func (pf *PageFile) ReadNextBlock(buf []byte) error {
	if pf.curPos+1 >= pf.totalPages {
		return basic.ErrReadNonExistingPage
	}
	return pf.ReadBlock(pf.curPos+1, buf)
}

func (pf *PageFile) ReadLastBlock(buf []byte) error {
	if pf.totalPages == 0 {
		return basic.ErrReadNonExistingPage
	}
	return pf.ReadBlock(pf.totalPages-1, buf)
}

// WriteBlock writes one page at pageNum, growing the file first if needed.
func (pf *PageFile) WriteBlock(pageNum int, buf []byte) error {
	if pf.file == nil {
		return basic.ErrInvalidHandle
	}
	if len(buf) < common.PAGE_SIZE {
		return errors.Wrapf(basic.ErrWriteFailed, "short page buffer (%d bytes)", len(buf))
	}
	if pageNum < 0 {
		return errors.Wrapf(basic.ErrInvalidParams, "page %d", pageNum)
	}
	if err := pf.EnsureCapacity(pageNum + 1); err != nil {
		return err
	}

	if _, err := pf.file.WriteAt(buf[:common.PAGE_SIZE], int64(pageNum)*common.PAGE_SIZE); err != nil {
		return errors.Wrapf(basic.ErrWriteFailed, "write page %d: %v", pageNum, err)
	}
	pf.curPos = pageNum
	return nil
}

func (pf *PageFile) WriteCurrentBlock(buf []byte) error {
	return pf.WriteBlock(pf.curPos, buf)
}

// AppendEmptyBlock adds one zero page at the end of the file.
func (pf *PageFile) AppendEmptyBlock() error {
	if pf.file == nil {
		return basic.ErrInvalidHandle
	}
	if _, err := pf.file.WriteAt(zeroPage, int64(pf.totalPages)*common.PAGE_SIZE); err != nil {
		return errors.Wrapf(basic.ErrWriteFailed, "append page %d: %v", pf.totalPages, err)
	}
	pf.totalPages++
	return nil
}

// EnsureCapacity appends empty pages until the file holds numPages pages.
func (pf *PageFile) EnsureCapacity(numPages int) error {
	if pf.file == nil {
		return basic.ErrInvalidHandle
	}
	for pf.totalPages < numPages {
		if err := pf.AppendEmptyBlock(); err != nil {
			return err
		}
	}
	return nil
}
