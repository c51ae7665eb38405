package cudf

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"
)

// ParquetReadOptions configures Parquet reading behavior
type ParquetReadOptions struct {
	Columns []string // Only read these columns (nil = all)
	MaxRows int      // Max rows to read (0 = unlimited)
}

// DefaultParquetReadOptions returns default Parquet reading options
func DefaultParquetReadOptions() ParquetReadOptions {
	return ParquetReadOptions{}
}

// ReadParquet reads a Parquet file into an Arrow record. Column buffers are
// allocated from mem. The caller must Release the returned record.
func ReadParquet(path string, mem memory.Allocator, opts ...ParquetReadOptions) (arrow.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquetFromReader(f, stat.Size(), mem, opts...)
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into an Arrow record
func ReadParquetFromReader(r io.ReaderAt, size int64, mem memory.Allocator, opts ...ParquetReadOptions) (arrow.Record, error) {
	opt := DefaultParquetReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := pf.Schema()
	fields := schema.Fields()

	// Select columns to materialize; others are read and skipped
	selected := make(map[string]bool, len(opt.Columns))
	for _, name := range opt.Columns {
		selected[name] = true
	}

	type colState struct {
		leaf    int // leaf column index in the parquet schema
		builder array.Builder
		field   arrow.Field
	}

	var cols []colState
	for i, f := range fields {
		if !f.Leaf() {
			return nil, fmt.Errorf("%w: nested parquet column %q", ErrUnsupportedType, f.Name())
		}
		if len(selected) > 0 && !selected[f.Name()] {
			continue
		}
		at, err := parquetKindToArrow(f.Type().Kind())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name(), err)
		}
		cols = append(cols, colState{
			leaf:    i,
			builder: array.NewBuilder(mem, at),
			field:   arrow.Field{Name: f.Name(), Type: at, Nullable: f.Optional()},
		})
	}
	defer func() {
		for _, c := range cols {
			c.builder.Release()
		}
	}()

	byLeaf := make(map[int]*colState, len(cols))
	for i := range cols {
		byLeaf[cols[i].leaf] = &cols[i]
	}

	rowCount := 0
	rowBuf := make([]parquet.Row, 1024)
	for _, rg := range pf.RowGroups() {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(rowBuf)
			for _, row := range rowBuf[:n] {
				if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
					break
				}
				for _, v := range row {
					c, ok := byLeaf[int(v.Column())]
					if !ok {
						continue
					}
					appendParquetValue(c.builder, v)
				}
				rowCount++
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
		}
		rows.Close()
	}

	arrowFields := make([]arrow.Field, len(cols))
	arrays := make([]arrow.Array, len(cols))
	for i := range cols {
		arrowFields[i] = cols[i].field
		arrays[i] = cols[i].builder.NewArray()
	}
	rec := array.NewRecord(arrow.NewSchema(arrowFields, nil), arrays, int64(rowCount))
	for _, a := range arrays {
		a.Release()
	}
	return rec, nil
}

// parquetKindToArrow maps a parquet physical kind to the Arrow type used here
func parquetKindToArrow(kind parquet.Kind) (arrow.DataType, error) {
	switch kind {
	case parquet.Boolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case parquet.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case parquet.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case parquet.Float:
		return arrow.PrimitiveTypes.Float32, nil
	case parquet.Double:
		return arrow.PrimitiveTypes.Float64, nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, fmt.Errorf("%w: parquet kind %s", ErrUnsupportedType, kind)
	}
}

func appendParquetValue(b array.Builder, v parquet.Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}
	switch bld := b.(type) {
	case *array.BooleanBuilder:
		bld.Append(v.Boolean())
	case *array.Int32Builder:
		bld.Append(v.Int32())
	case *array.Int64Builder:
		bld.Append(v.Int64())
	case *array.Float32Builder:
		bld.Append(v.Float())
	case *array.Float64Builder:
		bld.Append(v.Double())
	case *array.StringBuilder:
		bld.Append(string(v.ByteArray()))
	}
}

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression  string // "snappy", "gzip", "zstd", "none" (default "snappy")
	RowGroupSize int    // Rows per row group (default 1000000)
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{
		Compression:  "snappy",
		RowGroupSize: 1000000,
	}
}

// WriteParquet writes an Arrow record to a Parquet file
func WriteParquet(path string, rec arrow.Record, opts ...ParquetWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return WriteParquetToWriter(f, rec, opts...)
}

// WriteParquetToWriter writes an Arrow record to an io.Writer
func WriteParquetToWriter(w io.Writer, rec arrow.Record, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	height := int(rec.NumRows())
	width := int(rec.NumCols())
	if width == 0 || height == 0 {
		return nil
	}

	group := make(parquet.Group)
	for i := 0; i < width; i++ {
		field := rec.Schema().Field(i)
		node, err := arrowToParquetNode(field.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", field.Name, err)
		}
		group[field.Name] = node
	}
	schema := parquet.NewSchema("table", group)

	var writerOpts []parquet.WriterOption
	writerOpts = append(writerOpts, schema)
	switch opt.Compression {
	case "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	}
	if opt.RowGroupSize > 0 {
		writerOpts = append(writerOpts, parquet.MaxRowsPerRowGroup(int64(opt.RowGroupSize)))
	}

	pw := parquet.NewWriter(w, writerOpts...)
	defer pw.Close()

	// parquet.Group orders fields alphabetically; emit values in schema order
	colOrder := make([]int, len(schema.Fields()))
	for i, f := range schema.Fields() {
		idx := rec.Schema().FieldIndices(f.Name())
		colOrder[i] = idx[0]
	}

	batchSize := 1000
	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < height; i++ {
		row := make(parquet.Row, width)
		for j, c := range colOrder {
			row[j] = arrowCellToParquet(rec.Column(c), i)
		}
		rows = append(rows, row)

		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}

	return pw.Close()
}

func arrowToParquetNode(dt arrow.DataType) (parquet.Node, error) {
	switch dt.ID() {
	case arrow.FLOAT64:
		return parquet.Leaf(parquet.DoubleType), nil
	case arrow.FLOAT32:
		return parquet.Leaf(parquet.FloatType), nil
	case arrow.INT64:
		return parquet.Leaf(parquet.Int64Type), nil
	case arrow.INT32:
		return parquet.Leaf(parquet.Int32Type), nil
	case arrow.BOOL:
		return parquet.Leaf(parquet.BooleanType), nil
	case arrow.STRING:
		return parquet.Leaf(parquet.ByteArrayType), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
	}
}

func arrowCellToParquet(arr arrow.Array, row int) parquet.Value {
	if arr.IsNull(row) {
		return parquet.NullValue()
	}
	switch a := arr.(type) {
	case *array.Float64:
		return parquet.DoubleValue(a.Value(row))
	case *array.Float32:
		return parquet.FloatValue(a.Value(row))
	case *array.Int64:
		return parquet.Int64Value(a.Value(row))
	case *array.Int32:
		return parquet.Int32Value(a.Value(row))
	case *array.Boolean:
		return parquet.BooleanValue(a.Value(row))
	case *array.String:
		return parquet.ByteArrayValue([]byte(a.Value(row)))
	default:
		return parquet.NullValue()
	}
}
