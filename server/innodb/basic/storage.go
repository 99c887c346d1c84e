package basic

// BlockFile is the page store consumed by the buffer pool: a file of fixed
// size blocks addressed by zero-based page number.
type BlockFile interface {
	FileName() string
	TotalPages() int
	CurPos() int

	// ReadBlock fails with ErrReadNonExistingPage when pageNum >= TotalPages.
	ReadBlock(pageNum int, buf []byte) error

	// WriteBlock grows the file with empty pages when pageNum >= TotalPages.
	WriteBlock(pageNum int, buf []byte) error

	AppendEmptyBlock() error
	EnsureCapacity(numPages int) error
	Close() error
}
