package buffer_pool

type lfuReplacer struct{}

func (lfuReplacer) onLoad(bp *BufferPage, _ *poolClock) {
	bp.refCount = 1
}

func (lfuReplacer) onAccess(bp *BufferPage, _ *poolClock) {
	bp.refCount++
}

func (lfuReplacer) victim(frames []*BufferPage) int {
	return scanMin(frames, func(bp *BufferPage) uint64 { return bp.refCount })
}
