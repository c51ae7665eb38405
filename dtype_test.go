package cudf

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

func TestDType_String(t *testing.T) {
	cases := []struct {
		dtype DType
		want  string
	}{
		{Float64, "Float64"},
		{Int8, "Int8"},
		{UInt16, "UInt16"},
		{Bool, "Bool"},
		{Timestamp, "Timestamp"},
		{String, "String"},
		{List, "List"},
		{Null, "Null"},
	}
	for _, tc := range cases {
		if got := tc.dtype.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestDType_Size(t *testing.T) {
	cases := []struct {
		dtype DType
		want  int
	}{
		{Float64, 8},
		{Int64, 8},
		{Timestamp, 8},
		{Float32, 4},
		{Date32, 4},
		{Int16, 2},
		{Int8, 1},
		{Bool, 1},
		{String, -1},
		{List, -1},
		{Null, 0},
	}
	for _, tc := range cases {
		if got := tc.dtype.Size(); got != tc.want {
			t.Errorf("%s.Size() = %d, want %d", tc.dtype, got, tc.want)
		}
	}
}

func TestDType_IsFixedWidth(t *testing.T) {
	fixed := []DType{Float64, Float32, Int64, Int32, Int16, Int8, UInt64, UInt32, UInt16, UInt8, Bool, Timestamp, Date32, Date64, Time32, Time64, Duration}
	for _, d := range fixed {
		if !d.IsFixedWidth() {
			t.Errorf("%s should be fixed width", d)
		}
	}
	for _, d := range []DType{String, List, Struct, Null} {
		if d.IsFixedWidth() {
			t.Errorf("%s should not be fixed width", d)
		}
	}
}

func TestDType_Predicates(t *testing.T) {
	if !Int8.IsNumeric() || !Float32.IsNumeric() {
		t.Error("Int8 and Float32 are numeric")
	}
	if Bool.IsNumeric() || Timestamp.IsNumeric() {
		t.Error("Bool and Timestamp are not numeric")
	}
	if !Float64.IsFloat() || Int64.IsFloat() {
		t.Error("IsFloat misclassifies")
	}
	if !Duration.IsTemporal() || Int32.IsTemporal() {
		t.Error("IsTemporal misclassifies")
	}
}

func TestDTypeFromArrow(t *testing.T) {
	cases := []struct {
		arrow arrow.DataType
		want  DType
	}{
		{arrow.PrimitiveTypes.Float64, Float64},
		{arrow.PrimitiveTypes.Int8, Int8},
		{arrow.PrimitiveTypes.Uint32, UInt32},
		{arrow.FixedWidthTypes.Boolean, Bool},
		{arrow.BinaryTypes.String, String},
		{&arrow.TimestampType{Unit: arrow.Microsecond}, Timestamp},
	}
	for _, tc := range cases {
		if got := dtypeFromArrow(tc.arrow); got != tc.want {
			t.Errorf("dtypeFromArrow(%s) = %s, want %s", tc.arrow, got, tc.want)
		}
	}
}
