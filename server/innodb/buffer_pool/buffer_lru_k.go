package buffer_pool

// lruKReplacer keeps the last k access times of each frame and evicts the
// frame whose k-th most recent access is oldest. Frames seen fewer than k
// times are ranked by their earliest recorded access.
type lruKReplacer struct {
	k int
}

func (r lruKReplacer) onLoad(bp *BufferPage, clk *poolClock) {
	bp.history = bp.history[:0]
	r.record(bp, clk.access)
}

func (r lruKReplacer) onAccess(bp *BufferPage, clk *poolClock) {
	r.record(bp, clk.access)
}

func (r lruKReplacer) record(bp *BufferPage, now uint64) {
	if len(bp.history) < r.k {
		bp.history = append(bp.history, now)
		return
	}
	copy(bp.history, bp.history[1:])
	bp.history[r.k-1] = now
}

func (r lruKReplacer) victim(frames []*BufferPage) int {
	return scanMin(frames, func(bp *BufferPage) uint64 {
		if len(bp.history) == 0 {
			return 0
		}
		return bp.history[0]
	})
}
