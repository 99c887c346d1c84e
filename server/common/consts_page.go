package common

// PAGE_SIZE 每个页面的大小(字节)
const PAGE_SIZE = 4096

// NO_PAGE marks a frame or link that refers to no page at all.
const NO_PAGE = -1

// TableInfo bounds. Page 0 of a table file stores these as fixed-width arrays.
const (
	MAX_ATTR_NUM        = 10
	TABLE_NAME_SIZE     = 100
	ATTR_NAME_SIZE      = 50
	DEFAULT_POOL_FRAMES = 10
	DEFAULT_LRU_K       = 2
)

// 数据页布局
const (
	DATA_PAGE_HEADER_SIZE = 16 // slotDirOffset, slotCount, freeSlotCount, nextFreePage
	SLOT_ENTRY_SIZE       = 8  // offset(4) + valid(1) + padding(3)
	TABLE_INFO_PAGE       = 0
)

// Encoded attribute widths.
const (
	INT_SIZE   = 4
	FLOAT_SIZE = 4
	BOOL_SIZE  = 1
)
