package cudf

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Scatter Kernel
// ============================================================================

// scatterKernel moves src cells into dst at the addresses derived from the
// routing tables. Per block: the block's slice of the partition-major
// histogram is scanned into staging offsets, cells are staged at
// shared[p] + rowLocalOffset, and each partition's staged run is flushed to
// dst at blockScan[p*B+b] as one contiguous burst. The kernel body is
// generated once per cell width; behavior is identical across widths.
func scatterKernel[T any](src, dst []T, rt *routingTables) {
	rows := rt.rows
	numBlocks := rt.numBlocks
	bs := rt.blockSize
	numPartitions := rt.numPartitions

	rowPartition := rt.rowPartition.Data
	rowLocalOffset := rt.rowLocalOffset.Data
	blockHistogram := rt.blockHistogram.Data
	blockScan := rt.blockScan.Data

	ParallelBlocks(rows, numBlocks, func(blocks *BlockIterator) {
		// Block-scoped scratch, reused across the blocks this worker claims
		staging := make([]T, bs)
		shared := make([]int, numPartitions+1) // staging offset per partition
		global := make([]int64, numPartitions) // dst offset per partition

		for b := blocks.Next(); b >= 0; b = blocks.Next() {
			start, end := blockBounds(b, bs, rows)

			// Two-level offsets: exclusive scan of this block's histogram row
			// gives staging addresses; blockScan gives the dst base address of
			// this block's contribution to each partition.
			sum := 0
			for p := 0; p < numPartitions; p++ {
				shared[p] = sum
				sum += int(blockHistogram[p*numBlocks+b])
				global[p] = blockScan[p*numBlocks+b]
			}
			shared[numPartitions] = sum

			for i := start; i < end; i++ {
				p := rowPartition[i]
				staging[shared[p]+int(rowLocalOffset[i])] = src[i]
			}

			for p := 0; p < numPartitions; p++ {
				cnt := shared[p+1] - shared[p]
				if cnt == 0 {
					continue
				}
				off := int(global[p])
				copy(dst[off:off+cnt], staging[shared[p]:shared[p+1]])
			}
		}
	})
}

// scatterFixed allocates the output value buffer from mem, runs the kernel,
// and wraps the buffer into an array of the source's type. nbytes is the
// value-buffer size for rt.rows cells; cast reinterprets it as []T.
func scatterFixed[T any](
	src []T,
	dt arrow.DataType,
	nbytes int,
	cast func([]byte) []T,
	rt *routingTables,
	mem memory.Allocator,
) (arrow.Array, error) {
	buf := memory.NewResizableBuffer(mem)
	defer buf.Release()
	buf.Resize(nbytes)

	scatterKernel(src, cast(buf.Bytes()), rt)

	data := array.NewData(dt, rt.rows, []*memory.Buffer{nil, buf}, nil, 0, 0)
	defer data.Release()
	return array.MakeFromData(data), nil
}

// scatterBoolean widens the bit-packed source to one byte per cell, scatters
// bytes, and repacks the result into a fresh validity-free boolean array
func scatterBoolean(a *array.Boolean, rt *routingTables, mem memory.Allocator) (arrow.Array, error) {
	rows := rt.rows

	src := getByteSlice(rows)
	defer src.Release()
	for i := 0; i < rows; i++ {
		if a.Value(i) {
			src.Data[i] = 1
		} else {
			src.Data[i] = 0
		}
	}

	dst := getByteSlice(rows)
	defer dst.Release()
	scatterKernel(src.Data, dst.Data, rt)

	buf := memory.NewResizableBuffer(mem)
	defer buf.Release()
	buf.Resize(int(bitutil.BytesForBits(int64(rows))))

	packed := buf.Bytes()
	clear(packed)
	for i, v := range dst.Data {
		if v != 0 {
			bitutil.SetBit(packed, i)
		}
	}

	data := array.NewData(arrow.FixedWidthTypes.Boolean, rows, []*memory.Buffer{nil, buf}, nil, 0, 0)
	defer data.Release()
	return array.MakeFromData(data), nil
}

// scatterColumn dispatches the scatter kernel on the column's physical type.
// Variable-width and nested columns are unsupported, and columns bearing a
// null mask are rejected: output columns never carry null masks.
func scatterColumn(arr arrow.Array, rt *routingTables, mem memory.Allocator) (arrow.Array, error) {
	if arr.NullN() > 0 {
		return nil, fmt.Errorf("%w: %s", ErrNullMask, arr.DataType())
	}

	rows := rt.rows
	switch a := arr.(type) {
	case *array.Int8:
		return scatterFixed(a.Int8Values(), a.DataType(), arrow.Int8Traits.BytesRequired(rows), arrow.Int8Traits.CastFromBytes, rt, mem)
	case *array.Uint8:
		return scatterFixed(a.Uint8Values(), a.DataType(), arrow.Uint8Traits.BytesRequired(rows), arrow.Uint8Traits.CastFromBytes, rt, mem)
	case *array.Int16:
		return scatterFixed(a.Int16Values(), a.DataType(), arrow.Int16Traits.BytesRequired(rows), arrow.Int16Traits.CastFromBytes, rt, mem)
	case *array.Uint16:
		return scatterFixed(a.Uint16Values(), a.DataType(), arrow.Uint16Traits.BytesRequired(rows), arrow.Uint16Traits.CastFromBytes, rt, mem)
	case *array.Int32:
		return scatterFixed(a.Int32Values(), a.DataType(), arrow.Int32Traits.BytesRequired(rows), arrow.Int32Traits.CastFromBytes, rt, mem)
	case *array.Uint32:
		return scatterFixed(a.Uint32Values(), a.DataType(), arrow.Uint32Traits.BytesRequired(rows), arrow.Uint32Traits.CastFromBytes, rt, mem)
	case *array.Int64:
		return scatterFixed(a.Int64Values(), a.DataType(), arrow.Int64Traits.BytesRequired(rows), arrow.Int64Traits.CastFromBytes, rt, mem)
	case *array.Uint64:
		return scatterFixed(a.Uint64Values(), a.DataType(), arrow.Uint64Traits.BytesRequired(rows), arrow.Uint64Traits.CastFromBytes, rt, mem)
	case *array.Float32:
		return scatterFixed(a.Float32Values(), a.DataType(), arrow.Float32Traits.BytesRequired(rows), arrow.Float32Traits.CastFromBytes, rt, mem)
	case *array.Float64:
		return scatterFixed(a.Float64Values(), a.DataType(), arrow.Float64Traits.BytesRequired(rows), arrow.Float64Traits.CastFromBytes, rt, mem)
	case *array.Timestamp:
		return scatterFixed(a.TimestampValues(), a.DataType(), arrow.TimestampTraits.BytesRequired(rows), arrow.TimestampTraits.CastFromBytes, rt, mem)
	case *array.Date32:
		return scatterFixed(a.Date32Values(), a.DataType(), arrow.Date32Traits.BytesRequired(rows), arrow.Date32Traits.CastFromBytes, rt, mem)
	case *array.Date64:
		return scatterFixed(a.Date64Values(), a.DataType(), arrow.Date64Traits.BytesRequired(rows), arrow.Date64Traits.CastFromBytes, rt, mem)
	case *array.Time32:
		return scatterFixed(a.Time32Values(), a.DataType(), arrow.Time32Traits.BytesRequired(rows), arrow.Time32Traits.CastFromBytes, rt, mem)
	case *array.Time64:
		return scatterFixed(a.Time64Values(), a.DataType(), arrow.Time64Traits.BytesRequired(rows), arrow.Time64Traits.CastFromBytes, rt, mem)
	case *array.Duration:
		return scatterFixed(a.DurationValues(), a.DataType(), arrow.DurationTraits.BytesRequired(rows), arrow.DurationTraits.CastFromBytes, rt, mem)
	case *array.Boolean:
		return scatterBoolean(a, rt, mem)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DataType())
	}
}
