package buffer_pool

// PageHandle is a borrowed view of a pinned page. It is valid until it is
// passed to UnpinPage; after that Data returns nil.
type PageHandle struct {
	PageNum int

	frame      *BufferPage
	generation uint64
	released   bool
}

// Data returns the frame buffer itself. Writes through it must be followed by
// MarkDirty before the handle is unpinned.
func (h *PageHandle) Data() []byte {
	if !h.Valid() {
		return nil
	}
	return h.frame.content
}

// Valid reports whether the handle still refers to the page it was pinned for.
func (h *PageHandle) Valid() bool {
	return h != nil && !h.released && h.frame != nil &&
		h.frame.generation == h.generation && h.frame.pageNum == h.PageNum
}
