package cudf

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// MurmurHash3 (32-bit)
// ============================================================================

// Straight from the reference implementation, specialized for the fixed cell
// widths that can occur in a key column (1, 2, 4 or 8 bytes).
// https://github.com/aappleby/smhasher/blob/61a0530f/src/MurmurHash3.cpp

const (
	murmurC1 uint32 = 0xcc9e2d51
	murmurC2 uint32 = 0x1b873593

	// goldenRatio32 is the combiner dispersion constant (2^32 / phi)
	goldenRatio32 uint32 = 0x9e3779b9

	// nullHashSentinel is the per-cell hash contributed by a null cell.
	// Every column uses the same sentinel, so rows null in the same columns
	// are hash-equivalent.
	nullHashSentinel uint32 = math.MaxUint32
)

func murmurFmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

func murmurBlock32(h, k uint32) uint32 {
	k *= murmurC1
	k = bits.RotateLeft32(k, 15)
	k *= murmurC2
	h ^= k
	h = bits.RotateLeft32(h, 13)
	return h*5 + 0xe6546b64
}

func murmurTail32(h, k uint32) uint32 {
	k *= murmurC1
	k = bits.RotateLeft32(k, 15)
	k *= murmurC2
	return h ^ k
}

// hash8 hashes a 1-byte value
func hash8(v uint8, seed uint32) uint32 {
	h := murmurTail32(seed, uint32(v))
	return murmurFmix32(h ^ 1)
}

// hash16 hashes a 2-byte value (little-endian tail)
func hash16(v uint16, seed uint32) uint32 {
	h := murmurTail32(seed, uint32(v))
	return murmurFmix32(h ^ 2)
}

// hash32 hashes a 4-byte value
func hash32(v uint32, seed uint32) uint32 {
	h := murmurBlock32(seed, v)
	return murmurFmix32(h ^ 4)
}

// hash64 hashes an 8-byte value as two 4-byte blocks, low word first
func hash64(v uint64, seed uint32) uint32 {
	h := murmurBlock32(seed, uint32(v))
	h = murmurBlock32(h, uint32(v>>32))
	return murmurFmix32(h ^ 8)
}

// hashCombine folds a cell hash into a row hash. Column order matters: the
// left operand is the accumulated row hash, the right operand the next cell.
func hashCombine(l, r uint32) uint32 {
	return l ^ (r + goldenRatio32 + l<<6 + l>>2)
}

// normFloat64 collapses -0.0 onto +0.0 so both bit patterns hash alike
func normFloat64(v float64) uint64 {
	if v == 0 {
		v = 0
	}
	return math.Float64bits(v)
}

func normFloat32(v float32) uint32 {
	if v == 0 {
		v = 0
	}
	return math.Float32bits(v)
}

// ============================================================================
// Cell and Row Hashers
// ============================================================================

// cellHasher produces the 32-bit hash of one column's cell at a row index
type cellHasher func(row int) uint32

// newCellHasher builds the hasher for one column. The returned function is a
// pure view over the column's value buffer and performs no allocation.
// Variable-width and nested columns are rejected.
func newCellHasher(arr arrow.Array, seed uint32, nullable bool) (cellHasher, error) {
	var raw cellHasher

	switch a := arr.(type) {
	case *array.Int8:
		v := a.Int8Values()
		raw = func(row int) uint32 { return hash8(uint8(v[row]), seed) }
	case *array.Uint8:
		v := a.Uint8Values()
		raw = func(row int) uint32 { return hash8(v[row], seed) }
	case *array.Int16:
		v := a.Int16Values()
		raw = func(row int) uint32 { return hash16(uint16(v[row]), seed) }
	case *array.Uint16:
		v := a.Uint16Values()
		raw = func(row int) uint32 { return hash16(v[row], seed) }
	case *array.Int32:
		v := a.Int32Values()
		raw = func(row int) uint32 { return hash32(uint32(v[row]), seed) }
	case *array.Uint32:
		v := a.Uint32Values()
		raw = func(row int) uint32 { return hash32(v[row], seed) }
	case *array.Int64:
		v := a.Int64Values()
		raw = func(row int) uint32 { return hash64(uint64(v[row]), seed) }
	case *array.Uint64:
		v := a.Uint64Values()
		raw = func(row int) uint32 { return hash64(v[row], seed) }
	case *array.Float32:
		v := a.Float32Values()
		raw = func(row int) uint32 { return hash32(normFloat32(v[row]), seed) }
	case *array.Float64:
		v := a.Float64Values()
		raw = func(row int) uint32 { return hash64(normFloat64(v[row]), seed) }
	case *array.Boolean:
		raw = func(row int) uint32 {
			var b uint8
			if a.Value(row) {
				b = 1
			}
			return hash8(b, seed)
		}
	case *array.Timestamp:
		v := a.TimestampValues()
		raw = func(row int) uint32 { return hash64(uint64(v[row]), seed) }
	case *array.Date32:
		v := a.Date32Values()
		raw = func(row int) uint32 { return hash32(uint32(v[row]), seed) }
	case *array.Date64:
		v := a.Date64Values()
		raw = func(row int) uint32 { return hash64(uint64(v[row]), seed) }
	case *array.Time32:
		v := a.Time32Values()
		raw = func(row int) uint32 { return hash32(uint32(v[row]), seed) }
	case *array.Time64:
		v := a.Time64Values()
		raw = func(row int) uint32 { return hash64(uint64(v[row]), seed) }
	case *array.Duration:
		v := a.DurationValues()
		raw = func(row int) uint32 { return hash64(uint64(v[row]), seed) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DataType())
	}

	if !nullable || arr.NullN() == 0 {
		return raw, nil
	}
	return func(row int) uint32 {
		if arr.IsNull(row) {
			return nullHashSentinel
		}
		return raw(row)
	}, nil
}

// rowHasher combines the cell hashes of the key columns, left to right
type rowHasher struct {
	cells []cellHasher
}

// newRowHasher builds a row hasher over cols. seeds may be nil, in which case
// each column uses its type's default seed. nullable selects the null-aware
// path; when false, null masks are not consulted.
func newRowHasher(cols []arrow.Array, seeds []uint32, nullable bool) (*rowHasher, error) {
	cells := make([]cellHasher, len(cols))
	for i, col := range cols {
		seed := defaultSeed(col.DataType())
		if len(seeds) > 0 {
			seed = seeds[i]
		}
		h, err := newCellHasher(col, seed, nullable)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		cells[i] = h
	}
	return &rowHasher{cells: cells}, nil
}

// hash returns the 32-bit row hash at the given row index
func (rh *rowHasher) hash(row int) uint32 {
	h := rh.cells[0](row)
	for _, cell := range rh.cells[1:] {
		h = hashCombine(h, cell(row))
	}
	return h
}

// defaultSeed returns the per-type seed used when the caller supplies none
func defaultSeed(dt arrow.DataType) uint32 {
	return goldenRatio32 * (uint32(dt.ID()) + 1)
}

// ============================================================================
// Public Hash Operation
// ============================================================================

// Hash computes one 32-bit hash per row over all columns of tbl.
//
// seeds optionally supplies one 32-bit seed per column; when empty, each
// column uses a type-specific default. A non-empty seed vector whose length
// does not match the column count returns ErrSeedCount. Columns of
// variable-width or nested type return ErrUnsupportedType. Null cells
// contribute a fixed sentinel, so rows null in the same columns hash alike.
//
// The result is deterministic: identical inputs yield bitwise-equal columns.
// The caller owns the returned array and must Release it.
func Hash(tbl arrow.Record, seeds []uint32, mem memory.Allocator) (*array.Uint32, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	ncols := int(tbl.NumCols())
	rows := int(tbl.NumRows())

	if len(seeds) != 0 && len(seeds) != ncols {
		return nil, fmt.Errorf("%w: %d seeds, %d columns", ErrSeedCount, len(seeds), ncols)
	}

	bld := array.NewUint32Builder(mem)
	defer bld.Release()

	if rows == 0 {
		return bld.NewUint32Array(), nil
	}
	if ncols == 0 {
		// No cells to fold; every row hashes to zero
		bld.AppendValues(make([]uint32, rows), nil)
		return bld.NewUint32Array(), nil
	}

	cols := make([]arrow.Array, ncols)
	nullable := false
	for i := range cols {
		cols[i] = tbl.Column(i)
		if cols[i].NullN() > 0 {
			nullable = true
		}
	}

	rh, err := newRowHasher(cols, seeds, nullable)
	if err != nil {
		return nil, err
	}

	cfg := globalConfig
	out := getUint32Slice(rows)
	defer out.Release()

	bs := cfg.blockSize()
	ParallelForBlocks(rows, cfg.numBlocks(rows), func(b int) {
		start, end := blockBounds(b, bs, rows)
		for i := start; i < end; i++ {
			out.Data[i] = rh.hash(i)
		}
	})

	bld.AppendValues(out.Data, nil)
	return bld.NewUint32Array(), nil
}
