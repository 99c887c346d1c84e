package buffer_pool

import (
	"github.com/pipeking636/CS525/server/common"
)

// BufferPage is one frame of the pool. The policy fields are only meaningful
// for the strategy the pool was created with.
type BufferPage struct {
	pageNum  int
	content  []byte
	dirty    bool
	fixCount int

	// bumped whenever the frame is (re)loaded or cleared, so stale handles can
	// be detected
	generation uint64

	enterSeq   uint64   // FIFO
	lastAccess uint64   // LRU
	refBit     bool     // CLOCK
	refCount   uint64   // LFU
	history    []uint64 // LRU-K, oldest first, at most K entries
}

func NewBufferPage() *BufferPage {
	return &BufferPage{
		pageNum: common.NO_PAGE,
		content: make([]byte, common.PAGE_SIZE),
	}
}

// IsFree reports whether the frame can take a new page without eviction.
func (bp *BufferPage) IsFree() bool {
	return bp.pageNum == common.NO_PAGE && bp.fixCount == 0
}

// Reset returns the frame to the free state and drops all policy metadata.
func (bp *BufferPage) Reset() {
	bp.pageNum = common.NO_PAGE
	bp.dirty = false
	bp.fixCount = 0
	bp.generation++
	bp.enterSeq = 0
	bp.lastAccess = 0
	bp.refBit = false
	bp.refCount = 0
	bp.history = bp.history[:0]
	for i := range bp.content {
		bp.content[i] = 0
	}
}

// Init binds a freshly read page to the frame with one pin.
func (bp *BufferPage) Init(pageNum int) {
	bp.pageNum = pageNum
	bp.dirty = false
	bp.fixCount = 1
	bp.generation++
}

func (bp *BufferPage) GetPageNo() int {
	return bp.pageNum
}

func (bp *BufferPage) IsDirty() bool {
	return bp.dirty
}

func (bp *BufferPage) FixCount() int {
	return bp.fixCount
}
