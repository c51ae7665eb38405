package cudf

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// DType represents the physical data type of a column cell
type DType uint8

const (
	// Numeric types
	Float64 DType = iota
	Float32
	Int64
	Int32
	Int16
	Int8
	UInt64
	UInt32
	UInt16
	UInt8

	// Other fixed-width types
	Bool
	Timestamp
	Date32
	Date64
	Time32
	Time64
	Duration

	// Variable-width types (not partitionable)
	String
	List
	Struct

	// Null type
	Null
)

// String returns the string representation of the DType
func (d DType) String() string {
	switch d {
	case Float64:
		return "Float64"
	case Float32:
		return "Float32"
	case Int64:
		return "Int64"
	case Int32:
		return "Int32"
	case Int16:
		return "Int16"
	case Int8:
		return "Int8"
	case UInt64:
		return "UInt64"
	case UInt32:
		return "UInt32"
	case UInt16:
		return "UInt16"
	case UInt8:
		return "UInt8"
	case Bool:
		return "Bool"
	case Timestamp:
		return "Timestamp"
	case Date32:
		return "Date32"
	case Date64:
		return "Date64"
	case Time32:
		return "Time32"
	case Time64:
		return "Time64"
	case Duration:
		return "Duration"
	case String:
		return "String"
	case List:
		return "List"
	case Struct:
		return "Struct"
	case Null:
		return "Null"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// IsNumeric returns true if the dtype is a numeric type
func (d DType) IsNumeric() bool {
	switch d {
	case Float64, Float32, Int64, Int32, Int16, Int8, UInt64, UInt32, UInt16, UInt8:
		return true
	default:
		return false
	}
}

// IsFloat returns true if the dtype is a floating point type
func (d DType) IsFloat() bool {
	return d == Float64 || d == Float32
}

// IsTemporal returns true if the dtype is a date, time, timestamp or duration type
func (d DType) IsTemporal() bool {
	switch d {
	case Timestamp, Date32, Date64, Time32, Time64, Duration:
		return true
	default:
		return false
	}
}

// IsFixedWidth returns true if every cell of the dtype occupies the same
// number of bytes. Only fixed-width columns can participate in row hashing
// and partitioning.
func (d DType) IsFixedWidth() bool {
	return d.Size() > 0
}

// Size returns the size in bytes of one cell, or -1 for variable-width types.
// Bool cells are modeled as one byte even though Arrow stores them bit-packed.
func (d DType) Size() int {
	switch d {
	case Float64, Int64, UInt64, Date64, Time64, Timestamp, Duration:
		return 8
	case Float32, Int32, UInt32, Date32, Time32:
		return 4
	case Int16, UInt16:
		return 2
	case Int8, UInt8, Bool:
		return 1
	case String, List, Struct:
		return -1
	case Null:
		return 0
	default:
		return 0
	}
}

// dtypeFromArrow maps an Arrow data type to the corresponding DType.
func dtypeFromArrow(dt arrow.DataType) DType {
	switch dt.ID() {
	case arrow.FLOAT64:
		return Float64
	case arrow.FLOAT32:
		return Float32
	case arrow.INT64:
		return Int64
	case arrow.INT32:
		return Int32
	case arrow.INT16:
		return Int16
	case arrow.INT8:
		return Int8
	case arrow.UINT64:
		return UInt64
	case arrow.UINT32:
		return UInt32
	case arrow.UINT16:
		return UInt16
	case arrow.UINT8:
		return UInt8
	case arrow.BOOL:
		return Bool
	case arrow.TIMESTAMP:
		return Timestamp
	case arrow.DATE32:
		return Date32
	case arrow.DATE64:
		return Date64
	case arrow.TIME32:
		return Time32
	case arrow.TIME64:
		return Time64
	case arrow.DURATION:
		return Duration
	case arrow.STRING, arrow.LARGE_STRING, arrow.BINARY, arrow.LARGE_BINARY:
		return String
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return List
	case arrow.STRUCT:
		return Struct
	case arrow.NULL:
		return Null
	default:
		return Null
	}
}
