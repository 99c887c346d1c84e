package record

import (
	"math"

	"github.com/pkg/errors"

	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/util"
)

// TableInfo is the table metadata stored in page 0. Every field has a fixed
// width so the struct can be written to and read from a page without any
// pointer chasing.
type TableInfo struct {
	Name         [common.TABLE_NAME_SIZE]byte
	RecordSize   int32
	NumTuples    int32
	TotalPages   int32
	FreeListHead int32

	NumAttr    int32
	DataTypes  [common.MAX_ATTR_NUM]int32
	TypeLength [common.MAX_ATTR_NUM]int32
	AttrNames  [common.MAX_ATTR_NUM][common.ATTR_NAME_SIZE]byte
	KeySize    int32
	KeyAttrs   [common.MAX_ATTR_NUM]int32
}

// tableInfoSize is the encoded size without the trailing checksum.
const tableInfoSize = common.TABLE_NAME_SIZE + 4*5 +
	4*common.MAX_ATTR_NUM*2 + common.MAX_ATTR_NUM*common.ATTR_NAME_SIZE +
	4 + 4*common.MAX_ATTR_NUM

const checksumSize = 8

func newTableInfo(name string, schema *basic.Schema) (*TableInfo, error) {
	if len(name) == 0 || len(name) >= common.TABLE_NAME_SIZE {
		return nil, errors.Wrapf(basic.ErrInvalidParams, "table name %q", name)
	}
	if err := schema.Fits(); err != nil {
		return nil, err
	}
	for i, n := range schema.TypeLength {
		if n > math.MaxInt32 {
			return nil, errors.Wrapf(basic.ErrInvalidParams, "attribute %s length %d", schema.AttrNames[i], n)
		}
	}
	recordSize, err := schema.RecordSize()
	if err != nil {
		return nil, err
	}
	if recordSize > math.MaxInt32 {
		return nil, errors.Wrapf(basic.ErrInvalidParams, "record size %d", recordSize)
	}

	ti := &TableInfo{
		RecordSize:   int32(recordSize),
		TotalPages:   1,
		FreeListHead: common.NO_PAGE,
		NumAttr:      int32(schema.NumAttr()),
		KeySize:      int32(len(schema.KeyAttrs)),
	}
	copy(ti.Name[:], name)
	for i := 0; i < schema.NumAttr(); i++ {
		ti.DataTypes[i] = int32(schema.DataTypes[i])
		ti.TypeLength[i] = int32(schema.TypeLength[i])
		copy(ti.AttrNames[i][:], schema.AttrNames[i])
	}
	for i, k := range schema.KeyAttrs {
		ti.KeyAttrs[i] = int32(k)
	}
	return ti, nil
}

func (ti *TableInfo) TableName() string {
	_, name := util.ReadFixedString(ti.Name[:], 0, common.TABLE_NAME_SIZE)
	return name
}

// Schema rebuilds a live schema. Names are copied out of the fixed arrays, so
// the result shares no memory with ti.
func (ti *TableInfo) Schema() (*basic.Schema, error) {
	if ti.NumAttr <= 0 || ti.NumAttr > common.MAX_ATTR_NUM ||
		ti.KeySize < 0 || ti.KeySize > common.MAX_ATTR_NUM {
		return nil, basic.ErrCorruptTableInfo
	}
	n := int(ti.NumAttr)
	names := make([]string, n)
	types := make([]basic.DataType, n)
	lengths := make([]int, n)
	for i := 0; i < n; i++ {
		_, names[i] = util.ReadFixedString(ti.AttrNames[i][:], 0, common.ATTR_NAME_SIZE)
		types[i] = basic.DataType(ti.DataTypes[i])
		lengths[i] = int(ti.TypeLength[i])
	}
	keys := make([]int, ti.KeySize)
	for i := range keys {
		keys[i] = int(ti.KeyAttrs[i])
	}
	return basic.NewSchema(names, types, lengths, keys)
}

// Encode writes ti followed by an xxhash checksum at the start of page and
// zeroes the rest.
func (ti *TableInfo) Encode(page []byte) {
	buf := make([]byte, 0, tableInfoSize+checksumSize)
	buf = util.WriteBytes(buf, ti.Name[:])
	buf = util.WriteInt4(buf, ti.RecordSize)
	buf = util.WriteInt4(buf, ti.NumTuples)
	buf = util.WriteInt4(buf, ti.TotalPages)
	buf = util.WriteInt4(buf, ti.FreeListHead)
	buf = util.WriteInt4(buf, ti.NumAttr)
	for _, dt := range ti.DataTypes {
		buf = util.WriteInt4(buf, dt)
	}
	for _, l := range ti.TypeLength {
		buf = util.WriteInt4(buf, l)
	}
	for i := range ti.AttrNames {
		buf = util.WriteBytes(buf, ti.AttrNames[i][:])
	}
	buf = util.WriteInt4(buf, ti.KeySize)
	for _, k := range ti.KeyAttrs {
		buf = util.WriteInt4(buf, k)
	}
	buf = util.WriteUB8(buf, util.Checksum(buf))

	n := copy(page, buf)
	for i := n; i < len(page); i++ {
		page[i] = 0
	}
}

// DecodeTableInfo parses page 0. A checksum mismatch reports
// ErrCorruptTableInfo.
func DecodeTableInfo(page []byte) (*TableInfo, error) {
	if len(page) < tableInfoSize+checksumSize {
		return nil, errors.Wrap(basic.ErrCorruptTableInfo, "short page")
	}
	_, sum := util.ReadUB8(page, tableInfoSize)
	if sum != util.Checksum(page[:tableInfoSize]) {
		return nil, errors.Wrap(basic.ErrCorruptTableInfo, "checksum mismatch")
	}

	ti := &TableInfo{}
	cursor := 0
	var raw []byte
	cursor, raw = util.ReadBytes(page, cursor, common.TABLE_NAME_SIZE)
	copy(ti.Name[:], raw)
	cursor, ti.RecordSize = util.ReadInt4(page, cursor)
	cursor, ti.NumTuples = util.ReadInt4(page, cursor)
	cursor, ti.TotalPages = util.ReadInt4(page, cursor)
	cursor, ti.FreeListHead = util.ReadInt4(page, cursor)
	cursor, ti.NumAttr = util.ReadInt4(page, cursor)
	for i := range ti.DataTypes {
		cursor, ti.DataTypes[i] = util.ReadInt4(page, cursor)
	}
	for i := range ti.TypeLength {
		cursor, ti.TypeLength[i] = util.ReadInt4(page, cursor)
	}
	for i := range ti.AttrNames {
		cursor, raw = util.ReadBytes(page, cursor, common.ATTR_NAME_SIZE)
		copy(ti.AttrNames[i][:], raw)
	}
	cursor, ti.KeySize = util.ReadInt4(page, cursor)
	for i := range ti.KeyAttrs {
		cursor, ti.KeyAttrs[i] = util.ReadInt4(page, cursor)
	}
	return ti, nil
}
