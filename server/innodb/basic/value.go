package basic

import (
	"fmt"
	"strconv"
)

// Value is a tagged union over the four attribute types. Only the field that
// matches DT is meaningful.
type Value struct {
	DT      DataType
	IntV    int32
	FloatV  float32
	StringV string
	BoolV   bool
}

func IntValue(v int32) *Value {
	return &Value{DT: DT_INT, IntV: v}
}

func FloatValue(v float32) *Value {
	return &Value{DT: DT_FLOAT, FloatV: v}
}

func StringValue(v string) *Value {
	return &Value{DT: DT_STRING, StringV: v}
}

func BoolValue(v bool) *Value {
	return &Value{DT: DT_BOOL, BoolV: v}
}

// ParseValue converts the textual form of a value into the given type.
func ParseValue(dt DataType, text string) (*Value, error) {
	switch dt {
	case DT_INT:
		i, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, ErrInvalidParams
		}
		return IntValue(int32(i)), nil
	case DT_FLOAT:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, ErrInvalidParams
		}
		return FloatValue(float32(f)), nil
	case DT_BOOL:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, ErrInvalidParams
		}
		return BoolValue(b), nil
	case DT_STRING:
		return StringValue(text), nil
	default:
		return nil, ErrUnknownDataType
	}
}

func (v *Value) String() string {
	switch v.DT {
	case DT_INT:
		return strconv.FormatInt(int64(v.IntV), 10)
	case DT_FLOAT:
		return strconv.FormatFloat(float64(v.FloatV), 'f', -1, 32)
	case DT_BOOL:
		return strconv.FormatBool(v.BoolV)
	case DT_STRING:
		return v.StringV
	default:
		return fmt.Sprintf("<%s>", v.DT)
	}
}

// Equal compares type tag and payload.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.DT != other.DT {
		return false
	}
	switch v.DT {
	case DT_INT:
		return v.IntV == other.IntV
	case DT_FLOAT:
		return v.FloatV == other.FloatV
	case DT_BOOL:
		return v.BoolV == other.BoolV
	case DT_STRING:
		return v.StringV == other.StringV
	}
	return false
}
