package buffer_pool

type lruReplacer struct{}

func (lruReplacer) onLoad(bp *BufferPage, clk *poolClock) {
	bp.lastAccess = clk.access
}

func (lruReplacer) onAccess(bp *BufferPage, clk *poolClock) {
	bp.lastAccess = clk.access
}

func (lruReplacer) victim(frames []*BufferPage) int {
	return scanMin(frames, func(bp *BufferPage) uint64 { return bp.lastAccess })
}
