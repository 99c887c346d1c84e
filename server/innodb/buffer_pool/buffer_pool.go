package buffer_pool

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pipeking636/CS525/logger"
	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/server/innodb/storage/store/blocks"
)

// BufferPoolConfig describes a pool. BlockFile, when set, is used instead of
// opening PageFileName and is closed by Shutdown.
type BufferPoolConfig struct {
	PageFileName string
	NumFrames    int
	Strategy     ReplacementStrategy
	// K for LRU-K; values below 1 mean common.DEFAULT_LRU_K
	K int

	BlockFile basic.BlockFile
}

// BufferPool caches pages of one page file in a fixed number of frames.
// It is not safe for concurrent use.
type BufferPool struct {
	pageFileName string
	strategy     ReplacementStrategy
	k            int

	file     basic.BlockFile
	frames   []*BufferPage
	replacer replacer
	clock    poolClock

	numReadIO  int
	numWriteIO int
	stats      BufferPoolStats
}

// NewBufferPool opens the page file and allocates empty frames.
func NewBufferPool(config *BufferPoolConfig) (*BufferPool, error) {
	if config == nil || config.NumFrames <= 0 || !config.Strategy.Valid() {
		return nil, NewError("init", basic.ErrInvalidParams)
	}
	k := config.K
	if k < 1 {
		k = common.DEFAULT_LRU_K
	}

	file := config.BlockFile
	if file == nil {
		pf, err := blocks.OpenPageFile(config.PageFileName)
		if err != nil {
			return nil, NewError("init", err)
		}
		file = pf
	}

	bp := &BufferPool{
		pageFileName: file.FileName(),
		strategy:     config.Strategy,
		k:            k,
		file:         file,
		frames:       make([]*BufferPage, config.NumFrames),
		replacer:     newReplacer(config.Strategy, k),
	}
	for i := range bp.frames {
		bp.frames[i] = NewBufferPage()
	}

	logger.Debugf("buffer pool over %s: %d frames, strategy %s", bp.pageFileName, config.NumFrames, config.Strategy)
	return bp, nil
}

func (bp *BufferPool) PageFileName() string {
	return bp.pageFileName
}

func (bp *BufferPool) NumFrames() int {
	return len(bp.frames)
}

func (bp *BufferPool) Strategy() ReplacementStrategy {
	return bp.strategy
}

func (bp *BufferPool) K() int {
	return bp.k
}

// TotalPages is the current page count of the underlying file.
func (bp *BufferPool) TotalPages() int {
	if bp.file == nil {
		return 0
	}
	return bp.file.TotalPages()
}

func (bp *BufferPool) findFrame(pageNum int) int {
	for i, frame := range bp.frames {
		if frame.pageNum == pageNum {
			return i
		}
	}
	return -1
}

func (bp *BufferPool) findFreeFrame() int {
	for i, frame := range bp.frames {
		if frame.IsFree() {
			return i
		}
	}
	return -1
}

// PinPage returns a handle on pageNum, reading it into a frame on a miss.
// Pages beyond the end of the file are created empty.
func (bp *BufferPool) PinPage(pageNum int) (*PageHandle, error) {
	if bp.file == nil {
		return nil, NewError("pin", basic.ErrInvalidHandle)
	}
	if pageNum < 0 {
		return nil, NewError("pin", errors.Wrapf(basic.ErrInvalidParams, "page %d", pageNum))
	}

	bp.clock.access++
	if idx := bp.findFrame(pageNum); idx >= 0 {
		frame := bp.frames[idx]
		frame.fixCount++
		bp.replacer.onAccess(frame, &bp.clock)
		bp.stats.RecordPageRequest(true)
		return bp.newHandle(frame), nil
	}

	bp.stats.RecordPageRequest(false)
	bp.clock.load++

	idx := bp.findFreeFrame()
	if idx < 0 {
		victim, err := bp.evict()
		if err != nil {
			return nil, NewError("pin", err)
		}
		idx = victim
	}
	frame := bp.frames[idx]

	if pageNum >= bp.file.TotalPages() {
		if err := bp.file.EnsureCapacity(pageNum + 1); err != nil {
			return nil, NewError("pin", err)
		}
	}
	if err := bp.file.ReadBlock(pageNum, frame.content); err != nil {
		frame.Reset()
		return nil, NewError("pin", err)
	}
	bp.numReadIO++
	bp.stats.RecordPageIO(true)

	frame.Init(pageNum)
	bp.replacer.onLoad(frame, &bp.clock)
	logger.Debugf("page %d loaded into frame %d", pageNum, idx)
	return bp.newHandle(frame), nil
}

// evict picks a victim, writes it back when dirty and clears it. On a failed
// write-back the victim keeps its page and dirty flag.
func (bp *BufferPool) evict() (int, error) {
	idx := bp.replacer.victim(bp.frames)
	if idx < 0 {
		return -1, errors.Wrapf(basic.ErrNoFreeFrame, "all %d frames pinned", len(bp.frames))
	}
	frame := bp.frames[idx]
	if err := bp.flushFrame(frame); err != nil {
		return -1, err
	}
	logger.WithFields(logrus.Fields{
		"frame":    idx,
		"page":     frame.pageNum,
		"strategy": bp.strategy.String(),
	}).Debug("evict")
	frame.Reset()
	bp.stats.PageEvictions++
	return idx, nil
}

func (bp *BufferPool) newHandle(frame *BufferPage) *PageHandle {
	return &PageHandle{
		PageNum:    frame.pageNum,
		frame:      frame,
		generation: frame.generation,
	}
}

// UnpinPage releases one pin taken through h and invalidates h.
func (bp *BufferPool) UnpinPage(h *PageHandle) error {
	if bp.file == nil || h == nil || h.released {
		return NewError("unpin", basic.ErrInvalidHandle)
	}
	idx := bp.findFrame(h.PageNum)
	if idx < 0 {
		return NewError("unpin", errors.Wrapf(basic.ErrPageNotFound, "page %d", h.PageNum))
	}
	frame := bp.frames[idx]
	if frame.fixCount > 0 {
		frame.fixCount--
	}
	h.released = true

	bp.clock.access++
	bp.replacer.onAccess(frame, &bp.clock)
	return nil
}

// MarkDirty flags the page behind h for write-back.
func (bp *BufferPool) MarkDirty(h *PageHandle) error {
	if bp.file == nil || h == nil || h.released {
		return NewError("mark dirty", basic.ErrInvalidHandle)
	}
	idx := bp.findFrame(h.PageNum)
	if idx < 0 {
		return NewError("mark dirty", errors.Wrapf(basic.ErrPageNotFound, "page %d", h.PageNum))
	}
	bp.frames[idx].dirty = true
	return nil
}

// ForcePage writes the page behind h to disk if it is dirty, whatever its fix
// count. The handle may already be released.
func (bp *BufferPool) ForcePage(h *PageHandle) error {
	if bp.file == nil || h == nil {
		return NewError("force page", basic.ErrInvalidHandle)
	}
	idx := bp.findFrame(h.PageNum)
	if idx < 0 {
		return NewError("force page", errors.Wrapf(basic.ErrPageNotFound, "page %d", h.PageNum))
	}
	if err := bp.flushFrame(bp.frames[idx]); err != nil {
		return NewError("force page", err)
	}
	return nil
}

// ForceFlushPool writes back every dirty frame. All frames are attempted;
// the first error is returned.
func (bp *BufferPool) ForceFlushPool() error {
	if bp.file == nil {
		return NewError("flush pool", basic.ErrInvalidHandle)
	}
	var first error
	for _, frame := range bp.frames {
		if err := bp.flushFrame(frame); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return NewError("flush pool", first)
	}
	return nil
}

func (bp *BufferPool) flushFrame(frame *BufferPage) error {
	if frame.pageNum == common.NO_PAGE || !frame.dirty {
		return nil
	}
	if err := bp.file.WriteBlock(frame.pageNum, frame.content); err != nil {
		bp.stats.RecordFlush(false)
		logger.Errorf("write back of page %d failed: %v", frame.pageNum, err)
		return err
	}
	frame.dirty = false
	bp.numWriteIO++
	bp.stats.RecordPageIO(false)
	bp.stats.RecordFlush(true)
	logger.Debugf("page %d written back", frame.pageNum)
	return nil
}

// Shutdown flushes dirty pages and closes the page file. The file is closed
// even if flushing fails; the first error wins. A second call fails with
// ErrInvalidHandle.
func (bp *BufferPool) Shutdown() error {
	if bp.file == nil {
		return NewError("shutdown", basic.ErrInvalidHandle)
	}
	for _, frame := range bp.frames {
		if frame.fixCount > 0 {
			logger.Warnf("shutdown with page %d still pinned (%d)", frame.pageNum, frame.fixCount)
		}
	}

	first := bp.ForceFlushPool()
	if err := bp.file.Close(); err != nil && first == nil {
		first = NewError("shutdown", err)
	}
	bp.file = nil
	for _, frame := range bp.frames {
		frame.Reset()
		frame.content = nil
	}
	bp.frames = nil
	return first
}

// GetFrameContents lists the page held by each frame, NO_PAGE for free ones.
func (bp *BufferPool) GetFrameContents() []int {
	out := make([]int, len(bp.frames))
	for i, frame := range bp.frames {
		out[i] = frame.pageNum
	}
	return out
}

func (bp *BufferPool) GetDirtyFlags() []bool {
	out := make([]bool, len(bp.frames))
	for i, frame := range bp.frames {
		out[i] = frame.dirty
	}
	return out
}

func (bp *BufferPool) GetFixCounts() []int {
	out := make([]int, len(bp.frames))
	for i, frame := range bp.frames {
		out[i] = frame.fixCount
	}
	return out
}

func (bp *BufferPool) GetNumReadIO() int {
	return bp.numReadIO
}

func (bp *BufferPool) GetNumWriteIO() int {
	return bp.numWriteIO
}

func (bp *BufferPool) Stats() BufferPoolStats {
	return bp.stats
}

// String renders the frames as "[page dirty fix]" cells, e.g. "[3x1][-0]".
func (bp *BufferPool) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: ", bp.strategy, bp.pageFileName)
	for _, frame := range bp.frames {
		b.WriteByte('[')
		if frame.pageNum == common.NO_PAGE {
			b.WriteByte('-')
		} else {
			fmt.Fprintf(&b, "%d", frame.pageNum)
		}
		if frame.dirty {
			b.WriteByte('x')
		}
		fmt.Fprintf(&b, "%d]", frame.fixCount)
	}
	if c, ok := bp.replacer.(*clockReplacer); ok {
		fmt.Fprintf(&b, " hand=%d", c.Hand())
	}
	return b.String()
}
