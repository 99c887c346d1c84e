package basic

import (
	"fmt"
	"strings"

	"github.com/pipeking636/CS525/server/common"
)

// DataType is the runtime type tag of an attribute or value. The numeric
// values are persisted in page 0 and must not be reordered.
type DataType int32

const (
	DT_INT    DataType = 0
	DT_STRING DataType = 1
	DT_FLOAT  DataType = 2
	DT_BOOL   DataType = 3
)

func (dt DataType) String() string {
	switch dt {
	case DT_INT:
		return "int"
	case DT_STRING:
		return "string"
	case DT_FLOAT:
		return "float"
	case DT_BOOL:
		return "bool"
	default:
		return fmt.Sprintf("unknown(%d)", int32(dt))
	}
}

// Valid reports whether dt is one of the four supported tags.
func (dt DataType) Valid() bool {
	return dt >= DT_INT && dt <= DT_BOOL
}

// EncodedSize is the fixed number of bytes an attribute of this type occupies
// inside a record. typeLength only matters for strings.
func (dt DataType) EncodedSize(typeLength int) (int, error) {
	switch dt {
	case DT_INT:
		return common.INT_SIZE, nil
	case DT_FLOAT:
		return common.FLOAT_SIZE, nil
	case DT_BOOL:
		return common.BOOL_SIZE, nil
	case DT_STRING:
		if typeLength < 0 {
			return 0, ErrInvalidParams
		}
		return typeLength, nil
	default:
		return 0, ErrUnknownDataType
	}
}

// ParseDataType accepts the names produced by String.
func ParseDataType(name string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "int32", "integer":
		return DT_INT, nil
	case "string", "str", "char":
		return DT_STRING, nil
	case "float", "float32":
		return DT_FLOAT, nil
	case "bool", "boolean":
		return DT_BOOL, nil
	default:
		return 0, ErrUnknownDataType
	}
}
