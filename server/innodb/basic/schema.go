package basic

import (
	"github.com/pipeking636/CS525/server/common"
)

// Schema describes the fixed layout of every record in a table. It is never
// mutated after NewSchema returns; Clone gives an independent copy.
type Schema struct {
	AttrNames  []string
	DataTypes  []DataType
	TypeLength []int
	KeyAttrs   []int
}

// NewSchema copies its arguments so later changes by the caller do not leak
// into the schema. typeLength may be nil when no attribute is a string.
func NewSchema(attrNames []string, dataTypes []DataType, typeLength []int, keyAttrs []int) (*Schema, error) {
	numAttr := len(attrNames)
	if numAttr == 0 || len(dataTypes) != numAttr {
		return nil, ErrInvalidParams
	}
	if typeLength != nil && len(typeLength) != numAttr {
		return nil, ErrInvalidParams
	}

	s := &Schema{
		AttrNames:  append([]string(nil), attrNames...),
		DataTypes:  append([]DataType(nil), dataTypes...),
		TypeLength: make([]int, numAttr),
		KeyAttrs:   append([]int(nil), keyAttrs...),
	}
	copy(s.TypeLength, typeLength)

	for i, dt := range s.DataTypes {
		if !dt.Valid() {
			return nil, ErrUnknownDataType
		}
		if dt == DT_STRING && s.TypeLength[i] <= 0 {
			return nil, ErrInvalidParams
		}
	}
	for _, k := range s.KeyAttrs {
		if k < 0 || k >= numAttr {
			return nil, ErrInvalidParams
		}
	}
	return s, nil
}

func (s *Schema) NumAttr() int {
	return len(s.AttrNames)
}

// AttrSize returns the encoded width of attribute attrNum.
func (s *Schema) AttrSize(attrNum int) (int, error) {
	if attrNum < 0 || attrNum >= s.NumAttr() {
		return 0, ErrInvalidParams
	}
	return s.DataTypes[attrNum].EncodedSize(s.TypeLength[attrNum])
}

// RecordSize sums the encoded width of every attribute.
func (s *Schema) RecordSize() (int, error) {
	size := 0
	for i := range s.DataTypes {
		n, err := s.AttrSize(i)
		if err != nil {
			return 0, err
		}
		size += n
	}
	return size, nil
}

// Fits reports whether the schema can be flattened into a TableInfo page.
func (s *Schema) Fits() error {
	if s.NumAttr() > common.MAX_ATTR_NUM || len(s.KeyAttrs) > common.MAX_ATTR_NUM {
		return ErrTooManyAttributes
	}
	for _, name := range s.AttrNames {
		if len(name) >= common.ATTR_NAME_SIZE {
			return ErrInvalidParams
		}
	}
	return nil
}

func (s *Schema) Clone() *Schema {
	return &Schema{
		AttrNames:  append([]string(nil), s.AttrNames...),
		DataTypes:  append([]DataType(nil), s.DataTypes...),
		TypeLength: append([]int(nil), s.TypeLength...),
		KeyAttrs:   append([]int(nil), s.KeyAttrs...),
	}
}

// Equal compares attribute names, types, lengths and key attributes.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.NumAttr() != other.NumAttr() || len(s.KeyAttrs) != len(other.KeyAttrs) {
		return false
	}
	for i := range s.AttrNames {
		if s.AttrNames[i] != other.AttrNames[i] ||
			s.DataTypes[i] != other.DataTypes[i] ||
			s.TypeLength[i] != other.TypeLength[i] {
			return false
		}
	}
	for i := range s.KeyAttrs {
		if s.KeyAttrs[i] != other.KeyAttrs[i] {
			return false
		}
	}
	return true
}
