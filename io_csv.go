package cudf

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CSVReadOptions configures CSV reading behavior
type CSVReadOptions struct {
	Delimiter   rune     // Field delimiter (default ',')
	HasHeader   bool     // First row is header (default true)
	ColumnNames []string // Override column names
	NullValues  []string // Strings to treat as null
	MaxRows     int      // Max rows to read (0 = unlimited)
	TrimSpace   bool     // Trim whitespace from values
	Comment     rune     // Comment character (skip lines starting with this)
}

// DefaultCSVReadOptions returns default CSV reading options
func DefaultCSVReadOptions() CSVReadOptions {
	return CSVReadOptions{
		Delimiter:  ',',
		HasHeader:  true,
		NullValues: []string{"", "null", "NULL", "NA", "N/A", "nan", "NaN"},
		TrimSpace:  true,
	}
}

// ReadCSV reads a CSV file into an Arrow record, inferring one of Int64,
// Float64, Bool or String per column. The caller must Release the record.
func ReadCSV(path string, mem memory.Allocator, opts ...CSVReadOptions) (arrow.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadCSVFromReader(f, mem, opts...)
}

// ReadCSVFromReader reads CSV data from an io.Reader into an Arrow record
func ReadCSVFromReader(r io.Reader, mem memory.Allocator, opts ...CSVReadOptions) (arrow.Record, error) {
	opt := DefaultCSVReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	reader := csv.NewReader(r)
	reader.Comma = opt.Delimiter
	if opt.Comment != 0 {
		reader.Comment = opt.Comment
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return array.NewRecord(arrow.NewSchema(nil, nil), nil, 0), nil
	}

	var names []string
	rows := records
	if opt.HasHeader {
		names = records[0]
		rows = records[1:]
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i)
		}
	}
	if len(opt.ColumnNames) > 0 {
		names = opt.ColumnNames
	}
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}

	nulls := make(map[string]bool, len(opt.NullValues))
	for _, v := range opt.NullValues {
		nulls[v] = true
	}

	cell := func(row []string, col int) (string, bool) {
		if col >= len(row) {
			return "", true
		}
		v := row[col]
		if opt.TrimSpace {
			v = strings.TrimSpace(v)
		}
		return v, nulls[v]
	}

	fields := make([]arrow.Field, len(names))
	arrays := make([]arrow.Array, len(names))
	for c := range names {
		dt := inferCSVType(rows, c, cell)
		fields[c] = arrow.Field{Name: names[c], Type: dt, Nullable: true}

		bld := array.NewBuilder(mem, dt)
		for _, row := range rows {
			v, isNull := cell(row, c)
			if isNull {
				bld.AppendNull()
				continue
			}
			switch b := bld.(type) {
			case *array.Int64Builder:
				n, _ := strconv.ParseInt(v, 10, 64)
				b.Append(n)
			case *array.Float64Builder:
				f, _ := strconv.ParseFloat(v, 64)
				b.Append(f)
			case *array.BooleanBuilder:
				t, _ := strconv.ParseBool(strings.ToLower(v))
				b.Append(t)
			case *array.StringBuilder:
				b.Append(v)
			}
		}
		arrays[c] = bld.NewArray()
		bld.Release()
	}

	rec := array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(len(rows)))
	for _, a := range arrays {
		a.Release()
	}
	return rec, nil
}

// inferCSVType picks the narrowest of Int64, Float64, Bool, String that
// parses every non-null cell of the column
func inferCSVType(rows [][]string, col int, cell func([]string, int) (string, bool)) arrow.DataType {
	isInt, isFloat, isBool := true, true, true
	seen := false

	for _, row := range rows {
		v, isNull := cell(row, col)
		if isNull {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(strings.ToLower(v)); err != nil {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			break
		}
	}

	switch {
	case !seen:
		return arrow.BinaryTypes.String
	case isInt:
		return arrow.PrimitiveTypes.Int64
	case isFloat:
		return arrow.PrimitiveTypes.Float64
	case isBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}
