package buffer_pool

import (
	"errors"

	"github.com/pipeking636/CS525/server/innodb/basic"
)

// BufferPoolError records which pool operation failed.
type BufferPoolError struct {
	Op  string
	Err error
}

func (e *BufferPoolError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *BufferPoolError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) error {
	return &BufferPoolError{
		Op:  op,
		Err: err,
	}
}

// IsNotFound reports a page that is not resident.
func IsNotFound(err error) bool {
	return errors.Is(err, basic.ErrPageNotFound)
}

// IsPoolExhausted reports that every frame was pinned when a victim was needed.
func IsPoolExhausted(err error) bool {
	return errors.Is(err, basic.ErrNoFreeFrame)
}

// IsIOError reports a page store failure.
func IsIOError(err error) bool {
	return errors.Is(err, basic.ErrReadFailed) ||
		errors.Is(err, basic.ErrWriteFailed) ||
		errors.Is(err, basic.ErrReadNonExistingPage)
}
