package buffer_pool

type fifoReplacer struct{}

func (fifoReplacer) onLoad(bp *BufferPage, clk *poolClock) {
	bp.enterSeq = clk.load
}

func (fifoReplacer) onAccess(*BufferPage, *poolClock) {}

func (fifoReplacer) victim(frames []*BufferPage) int {
	return scanMin(frames, func(bp *BufferPage) uint64 { return bp.enterSeq })
}
