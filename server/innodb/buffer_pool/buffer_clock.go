package buffer_pool

// clockReplacer is second-chance replacement. The hand points at the next
// frame to inspect.
type clockReplacer struct {
	hand int
}

func (c *clockReplacer) onLoad(bp *BufferPage, _ *poolClock) {
	bp.refBit = true
}

func (c *clockReplacer) onAccess(bp *BufferPage, _ *poolClock) {
	bp.refBit = true
}

// victim sweeps at most two revolutions: the first may only clear bits, the
// second then finds any unpinned frame.
func (c *clockReplacer) victim(frames []*BufferPage) int {
	n := len(frames)
	if n == 0 {
		return -1
	}
	if c.hand >= n {
		c.hand = 0
	}
	for step := 0; step < 2*n; step++ {
		idx := c.hand
		c.hand = (c.hand + 1) % n
		bp := frames[idx]
		if bp.fixCount > 0 {
			continue
		}
		if !bp.refBit {
			return idx
		}
		bp.refBit = false
	}
	return -1
}

func (c *clockReplacer) Hand() int {
	return c.hand
}
