package buffer_pool

// poolClock holds the logical clocks of one pool. load advances once per page
// fault, access once per pin or unpin.
type poolClock struct {
	load   uint64
	access uint64
}

// replacer keeps the policy metadata of the frames and chooses victims.
// victim only returns frames with a zero fix count, or -1.
type replacer interface {
	onLoad(bp *BufferPage, clk *poolClock)
	onAccess(bp *BufferPage, clk *poolClock)
	victim(frames []*BufferPage) int
}

func newReplacer(strategy ReplacementStrategy, k int) replacer {
	switch strategy {
	case RS_LRU:
		return lruReplacer{}
	case RS_CLOCK:
		return &clockReplacer{}
	case RS_LFU:
		return lfuReplacer{}
	case RS_LRU_K:
		return lruKReplacer{k: k}
	default:
		return fifoReplacer{}
	}
}

// scanMin returns the unpinned resident frame with the smallest key. Ties go
// to the lowest frame index.
func scanMin(frames []*BufferPage, key func(*BufferPage) uint64) int {
	victim := -1
	var best uint64
	for i, bp := range frames {
		if bp.fixCount > 0 {
			continue
		}
		if k := key(bp); victim == -1 || k < best {
			victim, best = i, k
		}
	}
	return victim
}
