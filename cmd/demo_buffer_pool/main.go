package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipeking636/CS525/logger"
	"github.com/pipeking636/CS525/server/innodb/buffer_pool"
	"github.com/pipeking636/CS525/server/innodb/storage/store/blocks"
)

// The same reference string is replayed under every replacement strategy
// with a three frame pool; the pool contents are printed after each access.
var references = []int{0, 1, 2, 3, 1, 4, 0, 5, 1, 2}

func main() {
	_ = logger.InitLogger(logger.LogConfig{LogLevel: "warn"})

	dir, err := os.MkdirTemp("", "cs525-demo")
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	strategies := []buffer_pool.ReplacementStrategy{
		buffer_pool.RS_FIFO,
		buffer_pool.RS_LRU,
		buffer_pool.RS_CLOCK,
		buffer_pool.RS_LFU,
		buffer_pool.RS_LRU_K,
	}
	for i, strategy := range strategies {
		fmt.Printf("\n%d. %s\n", i+1, strategy)
		if err := replay(filepath.Join(dir, strategy.String()+".bin"), strategy); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	}
}

func replay(fileName string, strategy buffer_pool.ReplacementStrategy) error {
	if err := blocks.CreatePageFile(fileName); err != nil {
		return err
	}
	pool, err := buffer_pool.NewBufferPool(&buffer_pool.BufferPoolConfig{
		PageFileName: fileName,
		NumFrames:    3,
		Strategy:     strategy,
		K:            2,
	})
	if err != nil {
		return err
	}

	for _, pageNum := range references {
		h, err := pool.PinPage(pageNum)
		if err != nil {
			return err
		}
		// odd pages get written so evictions show up as write IO
		if pageNum%2 == 1 {
			copy(h.Data(), fmt.Sprintf("page-%d", pageNum))
			if err := pool.MarkDirty(h); err != nil {
				return err
			}
		}
		if err := pool.UnpinPage(h); err != nil {
			return err
		}
		fmt.Printf("  pin %d -> %s\n", pageNum, pool)
	}

	fmt.Printf("  reads=%d writes=%d\n", pool.GetNumReadIO(), pool.GetNumWriteIO())
	fmt.Printf("  %s\n", pool.Stats())
	return pool.Shutdown()
}
