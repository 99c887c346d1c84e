package basic

import "errors"

// 参数与句柄错误
var (
	ErrInvalidHandle = errors.New("invalid handle")
	ErrInvalidParams = errors.New("invalid parameters")
)

// 页面文件 I/O 错误
var (
	ErrFileNotFound      = errors.New("page file not found")
	ErrFileAlreadyExists = errors.New("page file already exists")
	ErrReadFailed        = errors.New("read failed")
	ErrWriteFailed       = errors.New("write failed")
	ErrCloseFailed       = errors.New("close failed")
)

// 页面与帧错误
var (
	ErrPageNotFound        = errors.New("page not found")
	ErrReadNonExistingPage = errors.New("read non existing page")
	ErrNoFreeFrame         = errors.New("no victim frame available, all frames are pinned")
)

// 记录与表结构错误
var (
	ErrNoMoreSlot        = errors.New("no more slot")
	ErrNoMoreTuples      = errors.New("no more tuples")
	ErrInvalidRecordSize = errors.New("invalid record size")
	ErrUnknownDataType   = errors.New("unknown data type")
	ErrTooManyAttributes = errors.New("too many attributes")
	ErrTypeMismatch      = errors.New("value type does not match attribute type")
	ErrCorruptTableInfo  = errors.New("table info checksum mismatch")
)

// 内存错误
var (
	ErrOutOfMemory = errors.New("out of memory")
)
