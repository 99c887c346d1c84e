package buffer_pool

import "fmt"

// BufferPoolStats counts pool activity since creation.
type BufferPoolStats struct {
	PageRequests  int64
	PageHits      int64
	PageMisses    int64
	PageReads     int64
	PageWrites    int64
	PageEvictions int64
	FlushRequests int64
	FlushFailures int64
}

func (s *BufferPoolStats) RecordPageRequest(hit bool) {
	s.PageRequests++
	if hit {
		s.PageHits++
	} else {
		s.PageMisses++
	}
}

func (s *BufferPoolStats) RecordPageIO(isRead bool) {
	if isRead {
		s.PageReads++
	} else {
		s.PageWrites++
	}
}

func (s *BufferPoolStats) RecordFlush(success bool) {
	s.FlushRequests++
	if !success {
		s.FlushFailures++
	}
}

func (s *BufferPoolStats) GetHitRatio() float64 {
	if s.PageRequests == 0 {
		return 0
	}
	return float64(s.PageHits) / float64(s.PageRequests)
}

func (s BufferPoolStats) String() string {
	return fmt.Sprintf("requests=%d hits=%d misses=%d reads=%d writes=%d evictions=%d hit_ratio=%.2f",
		s.PageRequests, s.PageHits, s.PageMisses, s.PageReads, s.PageWrites, s.PageEvictions, s.GetHitRatio())
}
