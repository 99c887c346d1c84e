package buffer_pool

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/pipeking636/CS525/server/innodb/basic"
)

// ReplacementStrategy selects the eviction policy of a pool. It is fixed at
// creation.
type ReplacementStrategy int

const (
	RS_FIFO ReplacementStrategy = iota
	RS_LRU
	RS_CLOCK
	RS_LFU
	RS_LRU_K
)

func (s ReplacementStrategy) String() string {
	switch s {
	case RS_FIFO:
		return "FIFO"
	case RS_LRU:
		return "LRU"
	case RS_CLOCK:
		return "CLOCK"
	case RS_LFU:
		return "LFU"
	case RS_LRU_K:
		return "LRU-K"
	default:
		return "UNKNOWN"
	}
}

func (s ReplacementStrategy) Valid() bool {
	return s >= RS_FIFO && s <= RS_LRU_K
}

// ParseStrategy accepts the names printed by String, case-insensitively, and
// "lru_k"/"lruk" as spellings of LRU-K.
func ParseStrategy(name string) (ReplacementStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fifo":
		return RS_FIFO, nil
	case "lru":
		return RS_LRU, nil
	case "clock":
		return RS_CLOCK, nil
	case "lfu":
		return RS_LFU, nil
	case "lru-k", "lru_k", "lruk":
		return RS_LRU_K, nil
	}
	return RS_FIFO, errors.Wrapf(basic.ErrInvalidParams, "unknown replacement strategy %q", name)
}
