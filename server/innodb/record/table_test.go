package record

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/server/innodb/buffer_pool"
)

func testSchema(t *testing.T) *basic.Schema {
	t.Helper()
	schema, err := basic.NewSchema(
		[]string{"a", "b", "c", "d"},
		[]basic.DataType{basic.DT_INT, basic.DT_STRING, basic.DT_FLOAT, basic.DT_BOOL},
		[]int{0, 4, 0, 0},
		[]int{0},
	)
	require.NoError(t, err)
	return schema
}

// wideSchema gives records of 1004 bytes, four to a page.
func wideSchema(t *testing.T) *basic.Schema {
	t.Helper()
	schema, err := basic.NewSchema(
		[]string{"id", "payload"},
		[]basic.DataType{basic.DT_INT, basic.DT_STRING},
		[]int{0, 1000},
		[]int{0},
	)
	require.NoError(t, err)
	return schema
}

func newTable(t *testing.T, schema *basic.Schema) (string, *Table) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "test_table_r")
	require.NoError(t, CreateTable(name, schema))
	table, err := OpenTable(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if table.pool != nil {
			table.Close()
		}
	})
	return name, table
}

func makeRecord(t *testing.T, schema *basic.Schema, values ...*basic.Value) *basic.Record {
	t.Helper()
	rec, err := CreateRecord(schema)
	require.NoError(t, err)
	for i, v := range values {
		require.NoError(t, SetAttr(rec, schema, i, v))
	}
	return rec
}

func testRow(t *testing.T, schema *basic.Schema, a int32, b string, c float32, d bool) *basic.Record {
	return makeRecord(t, schema, basic.IntValue(a), basic.StringValue(b), basic.FloatValue(c), basic.BoolValue(d))
}

func TestCreateOpenClose(t *testing.T) {
	schema := testSchema(t)
	name, table := newTable(t, schema)

	assert.Equal(t, "test_table_r", table.Name())
	assert.Equal(t, 0, table.NumTuples())
	assert.Equal(t, 1, table.TotalPages())
	assert.Equal(t, 13, table.RecordSize())
	assert.Equal(t, common.NO_PAGE, table.FreeListHead())
	assert.True(t, schema.Equal(table.Schema()))

	// the reconstructed schema shares nothing with the original
	table.Schema().AttrNames[0] = "changed"
	assert.Equal(t, "a", schema.AttrNames[0])

	require.NoError(t, table.Close())
	assert.ErrorIs(t, table.Close(), basic.ErrInvalidHandle)

	reopened, err := OpenTable(name)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, schema.Equal(reopened.Schema()))
	assert.Equal(t, []int{0}, reopened.Schema().KeyAttrs)
	assert.Equal(t, []int{0, 4, 0, 0}, reopened.Schema().TypeLength)
}

func TestCreateTableValidation(t *testing.T) {
	dir := t.TempDir()

	t.Run("too many attributes", func(t *testing.T) {
		names := make([]string, common.MAX_ATTR_NUM+1)
		types := make([]basic.DataType, common.MAX_ATTR_NUM+1)
		for i := range names {
			names[i] = string(rune('a' + i))
			types[i] = basic.DT_INT
		}
		schema, err := basic.NewSchema(names, types, nil, nil)
		require.NoError(t, err)

		name := filepath.Join(dir, "wide")
		assert.ErrorIs(t, CreateTable(name, schema), basic.ErrTooManyAttributes)
		_, err = os.Stat(name)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("nil schema", func(t *testing.T) {
		assert.ErrorIs(t, CreateTable(filepath.Join(dir, "x"), nil), basic.ErrInvalidParams)
	})

	t.Run("open missing table", func(t *testing.T) {
		_, err := OpenTable(filepath.Join(dir, "missing"))
		assert.ErrorIs(t, err, basic.ErrFileNotFound)
	})

	t.Run("pool too small", func(t *testing.T) {
		name := filepath.Join(dir, "small")
		require.NoError(t, CreateTable(name, testSchema(t)))
		_, err := OpenTableWithOptions(name, Options{Frames: 1})
		assert.ErrorIs(t, err, basic.ErrInvalidParams)
	})
}

func TestOpenTwiceAndDelete(t *testing.T) {
	name, table := newTable(t, testSchema(t))

	_, err := OpenTable(name)
	assert.ErrorIs(t, err, basic.ErrFileAlreadyExists)
	assert.ErrorIs(t, CreateTable(name, testSchema(t)), basic.ErrFileAlreadyExists)
	assert.Error(t, DeleteTable(name))

	require.NoError(t, table.Close())
	require.NoError(t, DeleteTable(name))
	_, err = OpenTable(name)
	assert.ErrorIs(t, err, basic.ErrFileNotFound)
	assert.ErrorIs(t, DeleteTable(name), basic.ErrFileNotFound)
}

func TestCorruptTableInfo(t *testing.T) {
	name := filepath.Join(t.TempDir(), "corrupt")
	require.NoError(t, CreateTable(name, testSchema(t)))

	f, err := os.OpenFile(name, os.O_RDWR, 0644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF}, common.TABLE_NAME_SIZE+1)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	for i := 0; i < 2; i++ {
		_, err = OpenTable(name)
		assert.ErrorIs(t, err, basic.ErrCorruptTableInfo)
	}
}

func TestInsertGetRoundTrip(t *testing.T) {
	schema := testSchema(t)
	_, table := newTable(t, schema)

	rows := []*basic.Record{
		testRow(t, schema, 1, "aaaa", 1.5, true),
		testRow(t, schema, -7, "ab", -0.25, false),
		testRow(t, schema, 1<<30, "", 3e10, true),
	}
	for i, rec := range rows {
		require.NoError(t, table.InsertRecord(rec))
		assert.Equal(t, basic.RID{Page: 1, Slot: i}, rec.ID)
	}
	assert.Equal(t, 3, table.NumTuples())
	assert.Equal(t, 2, table.TotalPages())

	out, err := CreateRecord(schema)
	require.NoError(t, err)
	for _, rec := range rows {
		require.NoError(t, table.GetRecord(rec.ID, out))
		assert.Equal(t, rec.Data, out.Data)
		assert.Equal(t, rec.ID, out.ID)
	}

	// full width string has no terminator; short one is zero padded
	require.NoError(t, table.GetRecord(rows[0].ID, out))
	assert.Equal(t, []byte("aaaa"), out.Data[4:8])
	v, err := GetAttr(out, schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", v.StringV)

	require.NoError(t, table.GetRecord(rows[1].ID, out))
	assert.Equal(t, []byte{'a', 'b', 0, 0}, out.Data[4:8])
	values, err := RecordValues(out, schema)
	require.NoError(t, err)
	assert.True(t, basic.IntValue(-7).Equal(values[0]))
	assert.True(t, basic.StringValue("ab").Equal(values[1]))
	assert.True(t, basic.FloatValue(-0.25).Equal(values[2]))
	assert.True(t, basic.BoolValue(false).Equal(values[3]))

	// Get sizes an empty record buffer itself
	empty := &basic.Record{}
	require.NoError(t, table.GetRecord(rows[2].ID, empty))
	assert.Equal(t, rows[2].Data, empty.Data)
}

func TestGetRecordErrors(t *testing.T) {
	schema := testSchema(t)
	_, table := newTable(t, schema)
	rec := testRow(t, schema, 1, "x", 0, false)
	require.NoError(t, table.InsertRecord(rec))

	out, err := CreateRecord(schema)
	require.NoError(t, err)
	assert.ErrorIs(t, table.GetRecord(basic.RID{Page: 0, Slot: 0}, out), basic.ErrPageNotFound)
	assert.ErrorIs(t, table.GetRecord(basic.RID{Page: 2, Slot: 0}, out), basic.ErrPageNotFound)
	assert.ErrorIs(t, table.GetRecord(basic.RID{Page: 1, Slot: 1}, out), basic.ErrNoMoreTuples)
	assert.ErrorIs(t, table.GetRecord(basic.RID{Page: 1, Slot: -1}, out), basic.ErrNoMoreTuples)
	assert.ErrorIs(t, table.GetRecord(rec.ID, nil), basic.ErrInvalidParams)

	short := &basic.Record{Data: make([]byte, 3)}
	assert.ErrorIs(t, table.InsertRecord(short), basic.ErrInvalidRecordSize)
}

func TestDeleteThenReinsertReusesSlot(t *testing.T) {
	schema := testSchema(t)
	_, table := newTable(t, schema)

	var rids []basic.RID
	for i := 0; i < 3; i++ {
		rec := testRow(t, schema, int32(i), "r", 0, false)
		require.NoError(t, table.InsertRecord(rec))
		rids = append(rids, rec.ID)
	}

	require.NoError(t, table.DeleteRecord(rids[1]))
	assert.Equal(t, 2, table.NumTuples())
	out, err := CreateRecord(schema)
	require.NoError(t, err)
	assert.ErrorIs(t, table.GetRecord(rids[1], out), basic.ErrNoMoreTuples)
	assert.ErrorIs(t, table.DeleteRecord(rids[1]), basic.ErrNoMoreTuples)

	rec := testRow(t, schema, 99, "new", 0, true)
	require.NoError(t, table.InsertRecord(rec))
	assert.Equal(t, rids[1], rec.ID)

	// the reused slot keeps its payload position
	h, err := table.pool.PinPage(1)
	require.NoError(t, err)
	dp := dataPage{buf: h.Data(), recordSize: table.RecordSize()}
	offset, valid := dp.slot(1)
	assert.True(t, valid)
	assert.Equal(t, common.PAGE_SIZE-2*table.RecordSize(), offset)
	assert.Equal(t, int32(3), dp.header().SlotCount)
	require.NoError(t, table.pool.UnpinPage(h))
}

func TestUpdateRecord(t *testing.T) {
	schema := testSchema(t)
	_, table := newTable(t, schema)

	first := testRow(t, schema, 1, "one", 1, true)
	second := testRow(t, schema, 2, "two", 2, false)
	require.NoError(t, table.InsertRecord(first))
	require.NoError(t, table.InsertRecord(second))

	require.NoError(t, SetAttr(first, schema, 1, basic.StringValue("uno")))
	require.NoError(t, table.UpdateRecord(first))

	out, err := CreateRecord(schema)
	require.NoError(t, err)
	require.NoError(t, table.GetRecord(first.ID, out))
	v, err := GetAttr(out, schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "uno", v.StringV)

	t.Run("deleted slot", func(t *testing.T) {
		require.NoError(t, table.DeleteRecord(second.ID))
		assert.ErrorIs(t, table.UpdateRecord(second), basic.ErrNoMoreTuples)

		require.NoError(t, table.GetRecord(first.ID, out))
		v, err := GetAttr(out, schema, 1)
		require.NoError(t, err)
		assert.Equal(t, "uno", v.StringV)
	})

	t.Run("bad rid", func(t *testing.T) {
		rec := testRow(t, schema, 3, "x", 0, false)
		assert.ErrorIs(t, table.UpdateRecord(rec), basic.ErrPageNotFound)
	})
}

func TestFreeListAcrossPages(t *testing.T) {
	schema := wideSchema(t)
	name, table := newTable(t, schema)
	require.Equal(t, 4, MaxSlots(table.RecordSize()))

	var rids []basic.RID
	for i := 0; i < 10; i++ {
		rec := makeRecord(t, schema, basic.IntValue(int32(i)), basic.StringValue("payload"))
		require.NoError(t, table.InsertRecord(rec))
		rids = append(rids, rec.ID)
	}
	assert.Equal(t, basic.RID{Page: 1, Slot: 0}, rids[0])
	assert.Equal(t, basic.RID{Page: 2, Slot: 3}, rids[7])
	assert.Equal(t, basic.RID{Page: 3, Slot: 1}, rids[9])
	assert.Equal(t, 4, table.TotalPages())
	assert.Equal(t, 3, table.FreeListHead())

	// page 1 was full, freeing a slot puts it back at the head
	require.NoError(t, table.DeleteRecord(rids[2]))
	assert.Equal(t, 1, table.FreeListHead())

	rec := makeRecord(t, schema, basic.IntValue(100), basic.StringValue("again"))
	require.NoError(t, table.InsertRecord(rec))
	assert.Equal(t, rids[2], rec.ID)
	assert.Equal(t, 3, table.FreeListHead())

	// fill page 3, then the next insert allocates page 4
	for i := 0; i < 2; i++ {
		rec := makeRecord(t, schema, basic.IntValue(200), basic.StringValue("fill"))
		require.NoError(t, table.InsertRecord(rec))
		assert.Equal(t, 3, rec.ID.Page)
	}
	assert.Equal(t, common.NO_PAGE, table.FreeListHead())
	rec = makeRecord(t, schema, basic.IntValue(300), basic.StringValue("grow"))
	require.NoError(t, table.InsertRecord(rec))
	assert.Equal(t, basic.RID{Page: 4, Slot: 0}, rec.ID)
	assert.Equal(t, 5, table.TotalPages())
	assert.Equal(t, 13, table.NumTuples())

	require.NoError(t, table.Close())
	reopened, err := OpenTable(name)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 13, reopened.NumTuples())
	assert.Equal(t, 5, reopened.TotalPages())
	assert.Equal(t, 4, reopened.FreeListHead())
}

func TestRecordLargerThanPage(t *testing.T) {
	schema, err := basic.NewSchema([]string{"blob"}, []basic.DataType{basic.DT_STRING}, []int{common.PAGE_SIZE}, nil)
	require.NoError(t, err)
	_, table := newTable(t, schema)

	rec, err := CreateRecord(schema)
	require.NoError(t, err)
	assert.ErrorIs(t, table.InsertRecord(rec), basic.ErrNoMoreSlot)
	assert.Equal(t, 1, table.TotalPages())
	assert.Equal(t, 0, table.NumTuples())
}

func TestPersistenceUnderEveryStrategy(t *testing.T) {
	for _, s := range []buffer_pool.ReplacementStrategy{
		buffer_pool.RS_FIFO, buffer_pool.RS_LRU, buffer_pool.RS_CLOCK, buffer_pool.RS_LFU, buffer_pool.RS_LRU_K,
	} {
		t.Run(s.String(), func(t *testing.T) {
			schema := wideSchema(t)
			name := filepath.Join(t.TempDir(), "persist")
			require.NoError(t, CreateTable(name, schema))

			table, err := OpenTableWithOptions(name, Options{Frames: 3, Strategy: s, K: 2})
			require.NoError(t, err)
			var rids []basic.RID
			for i := 0; i < 30; i++ {
				rec := makeRecord(t, schema, basic.IntValue(int32(i)), basic.StringValue(s.String()))
				require.NoError(t, table.InsertRecord(rec))
				rids = append(rids, rec.ID)
			}
			assert.Greater(t, table.PoolStats().PageEvictions, int64(0))
			require.NoError(t, table.Close())

			table, err = OpenTable(name)
			require.NoError(t, err)
			defer table.Close()
			out, err := CreateRecord(schema)
			require.NoError(t, err)
			for i, rid := range rids {
				require.NoError(t, table.GetRecord(rid, out))
				v, err := GetAttr(out, schema, 0)
				require.NoError(t, err)
				assert.Equal(t, int32(i), v.IntV)
			}
		})
	}
}

func TestScan(t *testing.T) {
	schema := wideSchema(t)
	_, table := newTable(t, schema)
	for i := 0; i < 20; i++ {
		rec := makeRecord(t, schema, basic.IntValue(int32(i)), basic.StringValue("s"))
		require.NoError(t, table.InsertRecord(rec))
		if i == 4 {
			require.NoError(t, table.DeleteRecord(rec.ID))
		}
	}

	even := func(rec *basic.Record) bool {
		v, err := GetAttr(rec, schema, 0)
		return err == nil && v.IntV%2 == 0
	}
	scan, err := table.StartScan(even)
	require.NoError(t, err)

	rec, err := CreateRecord(schema)
	require.NoError(t, err)
	var got []int32
	for {
		err := scan.Next(rec)
		if err != nil {
			assert.ErrorIs(t, err, basic.ErrNoMoreTuples)
			break
		}
		v, err := GetAttr(rec, schema, 0)
		require.NoError(t, err)
		got = append(got, v.IntV)
	}
	assert.Equal(t, []int32{0, 2, 6, 8, 10, 12, 14, 16, 18}, got)
	assert.ErrorIs(t, scan.Next(rec), basic.ErrNoMoreTuples)

	require.NoError(t, scan.Close())
	assert.ErrorIs(t, scan.Close(), basic.ErrInvalidHandle)
	assert.ErrorIs(t, scan.Next(rec), basic.ErrInvalidHandle)
}

func TestDump(t *testing.T) {
	schema := testSchema(t)
	_, table := newTable(t, schema)
	require.NoError(t, table.InsertRecord(testRow(t, schema, 1, "ab", 0.5, true)))
	require.NoError(t, table.InsertRecord(testRow(t, schema, 2, "cd", 1.5, false)))

	var buf bytes.Buffer
	n, err := table.Dump(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines, err := ReadDump(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"rid\ta\tb\tc\td",
		"1:0\t1\tab\t0.5\ttrue",
		"1:1\t2\tcd\t1.5\tfalse",
	}, lines)
}

func TestClosedTable(t *testing.T) {
	schema := testSchema(t)
	_, table := newTable(t, schema)
	require.NoError(t, table.Close())

	rec := testRow(t, schema, 1, "a", 0, false)
	assert.ErrorIs(t, table.InsertRecord(rec), basic.ErrInvalidHandle)
	assert.ErrorIs(t, table.GetRecord(basic.RID{Page: 1}, rec), basic.ErrInvalidHandle)
	_, err := table.StartScan(nil)
	assert.ErrorIs(t, err, basic.ErrInvalidHandle)
}

// pinnedTable opens name with two FIFO frames and pins page 7 from outside,
// leaving room for page 0 but not for a data page next to it.
func pinnedTable(t *testing.T, name string) (*Table, *buffer_pool.PageHandle) {
	t.Helper()
	table, err := OpenTableWithOptions(name, Options{Frames: 2, Strategy: buffer_pool.RS_FIFO})
	require.NoError(t, err)
	t.Cleanup(func() {
		if table.pool != nil {
			table.Close()
		}
	})
	h, err := table.pool.PinPage(7)
	require.NoError(t, err)
	return table, h
}

func TestInsertFailureLeavesTableUnchanged(t *testing.T) {
	schema := testSchema(t)
	name := filepath.Join(t.TempDir(), "test_table_pinned")
	require.NoError(t, CreateTable(name, schema))
	table, h := pinnedTable(t, name)

	rec := testRow(t, schema, 1, "ab", 0.5, true)
	assert.ErrorIs(t, table.InsertRecord(rec), basic.ErrNoFreeFrame)
	assert.Equal(t, basic.InvalidRID, rec.ID)
	assert.Equal(t, 0, table.NumTuples())
	assert.Equal(t, 1, table.TotalPages())
	assert.Equal(t, common.NO_PAGE, table.FreeListHead())

	out, err := CreateRecord(schema)
	require.NoError(t, err)
	assert.ErrorIs(t, table.GetRecord(basic.RID{Page: 1, Slot: 0}, out), basic.ErrPageNotFound)

	// retrying after the pin is released inserts exactly once
	require.NoError(t, table.pool.UnpinPage(h))
	require.NoError(t, table.InsertRecord(rec))
	assert.Equal(t, basic.RID{Page: 1, Slot: 0}, rec.ID)
	assert.Equal(t, 1, table.NumTuples())
	require.NoError(t, table.Close())

	reopened, err := OpenTable(name)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, reopened.NumTuples())
	assert.Equal(t, 2, reopened.TotalPages())
	require.NoError(t, reopened.GetRecord(basic.RID{Page: 1, Slot: 0}, out))
	assert.Equal(t, rec.Data, out.Data)
}

func TestDeleteFailureLeavesTableUnchanged(t *testing.T) {
	schema := testSchema(t)
	name := filepath.Join(t.TempDir(), "test_table_pinned")
	require.NoError(t, CreateTable(name, schema))

	table, err := OpenTable(name)
	require.NoError(t, err)
	rec := testRow(t, schema, 1, "ab", 0.5, true)
	require.NoError(t, table.InsertRecord(rec))
	require.NoError(t, table.Close())

	table, h := pinnedTable(t, name)
	assert.ErrorIs(t, table.DeleteRecord(rec.ID), basic.ErrNoFreeFrame)
	assert.Equal(t, 1, table.NumTuples())

	require.NoError(t, table.pool.UnpinPage(h))
	out, err := CreateRecord(schema)
	require.NoError(t, err)
	require.NoError(t, table.GetRecord(rec.ID, out))
	assert.Equal(t, rec.Data, out.Data)

	require.NoError(t, table.DeleteRecord(rec.ID))
	assert.Equal(t, 0, table.NumTuples())
	assert.ErrorIs(t, table.GetRecord(rec.ID, out), basic.ErrNoMoreTuples)
}
