package record

import (
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/pipeking636/CS525/logger"
	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/server/innodb/buffer_pool"
	"github.com/pipeking636/CS525/server/innodb/storage/store/blocks"
)

// Options controls the buffer pool a table is opened with.
type Options struct {
	Frames   int
	Strategy buffer_pool.ReplacementStrategy
	K        int
}

// DefaultOptions is what OpenTable uses: a small FIFO pool.
func DefaultOptions() Options {
	return Options{
		Frames:   common.DEFAULT_POOL_FRAMES,
		Strategy: buffer_pool.RS_FIFO,
		K:        common.DEFAULT_LRU_K,
	}
}

// openTables tracks table files that currently have a live Table, keyed by
// cleaned path.
var openTables = struct {
	sync.Mutex
	paths map[string]bool
}{paths: map[string]bool{}}

func tableKey(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return filepath.Clean(name)
}

func isOpen(name string) bool {
	openTables.Lock()
	defer openTables.Unlock()
	return openTables.paths[tableKey(name)]
}

func markOpen(name string) bool {
	openTables.Lock()
	defer openTables.Unlock()
	key := tableKey(name)
	if openTables.paths[key] {
		return false
	}
	openTables.paths[key] = true
	return true
}

func markClosed(name string) {
	openTables.Lock()
	defer openTables.Unlock()
	delete(openTables.paths, tableKey(name))
}

// Table is an open table. It owns a buffer pool over the table file and a
// cached copy of page 0.
type Table struct {
	fileName   string
	schema     *basic.Schema
	info       *TableInfo
	pool       *buffer_pool.BufferPool
	recordSize int
}

// CreateTable creates the page file name and writes the table metadata for
// schema into page 0. The stored table name is the base name of the path.
// An existing file is overwritten unless the table is open.
func CreateTable(name string, schema *basic.Schema) error {
	if name == "" || schema == nil {
		return basic.ErrInvalidParams
	}
	info, err := newTableInfo(filepath.Base(name), schema)
	if err != nil {
		return err
	}
	if isOpen(name) {
		return errors.Wrapf(basic.ErrFileAlreadyExists, "table %s is open", name)
	}

	if err := blocks.CreatePageFile(name); err != nil {
		return err
	}
	pf, err := blocks.OpenPageFile(name)
	if err != nil {
		return err
	}
	page := make([]byte, common.PAGE_SIZE)
	info.Encode(page)
	if err := pf.WriteBlock(common.TABLE_INFO_PAGE, page); err != nil {
		pf.Close()
		blocks.DestroyPageFile(name)
		return err
	}
	if err := pf.Close(); err != nil {
		blocks.DestroyPageFile(name)
		return err
	}

	logger.Infof("created table %s (record size %d, %d attributes)", name, info.RecordSize, info.NumAttr)
	return nil
}

// OpenTable opens name with DefaultOptions.
func OpenTable(name string) (*Table, error) {
	return OpenTableWithOptions(name, DefaultOptions())
}

// OpenTableWithOptions reads page 0, rebuilds the schema and starts a buffer
// pool over the file. The pool needs two frames since inserts and deletes
// hold a data page while rewriting page 0.
func OpenTableWithOptions(name string, opts Options) (*Table, error) {
	if name == "" || opts.Frames < 2 || !opts.Strategy.Valid() {
		return nil, errors.Wrapf(basic.ErrInvalidParams, "open table %q", name)
	}
	if !markOpen(name) {
		return nil, errors.Wrapf(basic.ErrFileAlreadyExists, "table %s is already open", name)
	}

	table, err := openTable(name, opts)
	if err != nil {
		markClosed(name)
		return nil, err
	}
	logger.Infof("opened table %s: %d tuples, %d pages, pool %d frames %s",
		name, table.info.NumTuples, table.info.TotalPages, opts.Frames, opts.Strategy)
	return table, nil
}

func openTable(name string, opts Options) (*Table, error) {
	pf, err := blocks.OpenPageFile(name)
	if err != nil {
		return nil, err
	}

	page := make([]byte, common.PAGE_SIZE)
	if err := pf.ReadBlock(common.TABLE_INFO_PAGE, page); err != nil {
		pf.Close()
		return nil, err
	}
	info, err := DecodeTableInfo(page)
	if err != nil {
		pf.Close()
		return nil, errors.Wrapf(err, "table %s", name)
	}
	schema, err := info.Schema()
	if err != nil {
		pf.Close()
		return nil, errors.Wrapf(err, "table %s", name)
	}

	pool, err := buffer_pool.NewBufferPool(&buffer_pool.BufferPoolConfig{
		PageFileName: name,
		NumFrames:    opts.Frames,
		Strategy:     opts.Strategy,
		K:            opts.K,
		BlockFile:    pf,
	})
	if err != nil {
		pf.Close()
		return nil, err
	}

	return &Table{
		fileName:   name,
		schema:     schema,
		info:       info,
		pool:       pool,
		recordSize: int(info.RecordSize),
	}, nil
}

// Close flushes every dirty page, closes the file and releases the table.
// The table must not be used afterwards.
func (t *Table) Close() error {
	if t.pool == nil {
		return basic.ErrInvalidHandle
	}
	err := t.pool.Shutdown()
	if err != nil {
		logger.Errorf("close table %s: %v", t.fileName, err)
	}
	markClosed(t.fileName)
	t.pool = nil
	t.schema = nil
	logger.Infof("closed table %s", t.fileName)
	return err
}

// DeleteTable removes the table file. It fails while the table is open.
func DeleteTable(name string) error {
	if name == "" {
		return basic.ErrInvalidParams
	}
	if isOpen(name) {
		return errors.Wrapf(basic.ErrInvalidHandle, "table %s is open", name)
	}
	if err := blocks.DestroyPageFile(name); err != nil {
		return err
	}
	logger.Infof("deleted table %s", name)
	return nil
}

// Name returns the table name recorded in page 0.
func (t *Table) Name() string {
	return t.info.TableName()
}

func (t *Table) FileName() string {
	return t.fileName
}

// Schema is shared with the table and must not be modified.
func (t *Table) Schema() *basic.Schema {
	return t.schema
}

func (t *Table) NumTuples() int {
	return int(t.info.NumTuples)
}

func (t *Table) TotalPages() int {
	return int(t.info.TotalPages)
}

func (t *Table) RecordSize() int {
	return t.recordSize
}

// FreeListHead is the first page with a free slot, or NO_PAGE.
func (t *Table) FreeListHead() int {
	return int(t.info.FreeListHead)
}

func (t *Table) PoolStats() buffer_pool.BufferPoolStats {
	if t.pool == nil {
		return buffer_pool.BufferPoolStats{}
	}
	return t.pool.Stats()
}
