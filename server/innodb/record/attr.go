package record

import (
	"github.com/pkg/errors"

	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/util"
)

// CreateRecord allocates a zeroed record for schema with an invalid RID.
func CreateRecord(schema *basic.Schema) (*basic.Record, error) {
	return basic.NewRecord(schema)
}

func FreeRecord(rec *basic.Record) error {
	if rec == nil {
		return basic.ErrInvalidParams
	}
	rec.Free()
	return nil
}

// AttrOffset is the byte offset of attribute attrNum inside a record.
func AttrOffset(schema *basic.Schema, attrNum int) (int, error) {
	if schema == nil || attrNum < 0 || attrNum >= schema.NumAttr() {
		return 0, errors.Wrapf(basic.ErrInvalidParams, "attribute %d", attrNum)
	}
	offset := 0
	for i := 0; i < attrNum; i++ {
		size, err := schema.AttrSize(i)
		if err != nil {
			return 0, err
		}
		offset += size
	}
	return offset, nil
}

// GetAttr decodes attribute attrNum of rec.
func GetAttr(rec *basic.Record, schema *basic.Schema, attrNum int) (*basic.Value, error) {
	offset, size, err := attrSpan(rec, schema, attrNum)
	if err != nil {
		return nil, err
	}

	switch dt := schema.DataTypes[attrNum]; dt {
	case basic.DT_INT:
		_, v := util.ReadInt4(rec.Data, offset)
		return basic.IntValue(v), nil
	case basic.DT_FLOAT:
		_, v := util.ReadFloat4(rec.Data, offset)
		return basic.FloatValue(v), nil
	case basic.DT_BOOL:
		_, v := util.ReadByte(rec.Data, offset)
		return basic.BoolValue(v != 0), nil
	case basic.DT_STRING:
		_, v := util.ReadFixedString(rec.Data, offset, size)
		return basic.StringValue(v), nil
	default:
		return nil, basic.ErrUnknownDataType
	}
}

// SetAttr encodes value into attribute attrNum of rec. Strings longer than
// the declared length are cut.
func SetAttr(rec *basic.Record, schema *basic.Schema, attrNum int, value *basic.Value) error {
	if value == nil {
		return basic.ErrInvalidParams
	}
	offset, size, err := attrSpan(rec, schema, attrNum)
	if err != nil {
		return err
	}
	dt := schema.DataTypes[attrNum]
	if value.DT != dt {
		return errors.Wrapf(basic.ErrTypeMismatch, "attribute %s is %s, got %s",
			schema.AttrNames[attrNum], dt, value.DT)
	}

	var field []byte
	switch dt {
	case basic.DT_INT:
		field = util.WriteInt4(nil, value.IntV)
	case basic.DT_FLOAT:
		field = util.WriteFloat4(nil, value.FloatV)
	case basic.DT_BOOL:
		var b byte
		if value.BoolV {
			b = 1
		}
		field = util.WriteByte(nil, b)
	case basic.DT_STRING:
		field = util.WriteFixedString(nil, value.StringV, size)
	default:
		return basic.ErrUnknownDataType
	}
	copy(rec.Data[offset:offset+size], field)
	return nil
}

func attrSpan(rec *basic.Record, schema *basic.Schema, attrNum int) (int, int, error) {
	if rec == nil {
		return 0, 0, basic.ErrInvalidParams
	}
	offset, err := AttrOffset(schema, attrNum)
	if err != nil {
		return 0, 0, err
	}
	size, err := schema.AttrSize(attrNum)
	if err != nil {
		return 0, 0, err
	}
	if offset+size > len(rec.Data) {
		return 0, 0, errors.Wrapf(basic.ErrInvalidRecordSize, "attribute %d beyond %d bytes", attrNum, len(rec.Data))
	}
	return offset, size, nil
}

// RecordValues decodes every attribute of rec in declaration order.
func RecordValues(rec *basic.Record, schema *basic.Schema) ([]*basic.Value, error) {
	values := make([]*basic.Value, schema.NumAttr())
	for i := range values {
		v, err := GetAttr(rec, schema, i)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
