package cudf

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// Hash Partitioning
// ============================================================================

// HashPartition redistributes the rows of tbl into numPartitions partitions
// keyed by the hash of the columns at keyIndices. Rows whose key cells are
// bitwise equal (or jointly null) land in the same partition, and rows of the
// same partition are contiguous in the output.
//
// The returned record has the same schema and row count as tbl; the offsets
// vector has length numPartitions and gives the starting row index of each
// partition. Output column buffers are allocated from mem. The output never
// carries null masks; a column bearing a null mask fails with ErrNullMask,
// and variable-width or nested key columns fail with ErrUnsupportedType
// before any routing work runs.
//
// Empty input, a non-positive partition count, or an empty key set return an
// empty-like record and an empty offsets vector. The caller owns the returned
// record and must Release it.
func HashPartition(tbl arrow.Record, keyIndices []int, numPartitions int, mem memory.Allocator) (arrow.Record, []int64, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	rows := int(tbl.NumRows())
	ncols := int(tbl.NumCols())

	if numPartitions <= 0 || rows == 0 || len(keyIndices) == 0 {
		return emptyLike(tbl), []int64{}, nil
	}

	// Precondition checks run before any routing allocation
	keys := make([]arrow.Array, len(keyIndices))
	nullable := false
	for i, idx := range keyIndices {
		if idx < 0 || idx >= ncols {
			return nil, nil, fmt.Errorf("%w: key index %d of %d columns", ErrColumnIndex, idx, ncols)
		}
		col := tbl.Column(idx)
		if !dtypeFromArrow(col.DataType()).IsFixedWidth() {
			return nil, nil, fmt.Errorf("%w: key column %d is %s", ErrUnsupportedType, idx, col.DataType())
		}
		keys[i] = col
		if col.NullN() > 0 {
			nullable = true
		}
	}

	rh, err := newRowHasher(keys, nil, nullable)
	if err != nil {
		return nil, nil, err
	}
	part := newPartitioner(numPartitions)

	rt := buildRoutingTables(rh, part, rows, numPartitions)
	defer rt.release()

	rt.buildOffsets()
	offsets := rt.partitionOffsets()

	// Per-column scatter passes are independent of each other; each one
	// block-parallelizes internally, so the column fan-out is bounded.
	out := make([]arrow.Array, ncols)
	g := new(errgroup.Group)
	g.SetLimit(globalConfig.numWorkers())
	for c := 0; c < ncols; c++ {
		g.Go(func() error {
			col, err := scatterColumn(tbl.Column(c), rt, mem)
			if err != nil {
				return fmt.Errorf("column %q: %w", tbl.Schema().Field(c).Name, err)
			}
			out[c] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, a := range out {
			if a != nil {
				a.Release()
			}
		}
		return nil, nil, err
	}

	rec := array.NewRecord(tbl.Schema(), out, int64(rows))
	for _, a := range out {
		a.Release()
	}
	return rec, offsets, nil
}

// emptyLike returns a zero-row record with tbl's schema
func emptyLike(tbl arrow.Record) arrow.Record {
	cols := make([]arrow.Array, tbl.NumCols())
	for i := range cols {
		cols[i] = array.NewSlice(tbl.Column(i), 0, 0)
	}
	rec := array.NewRecord(tbl.Schema(), cols, 0)
	for _, a := range cols {
		a.Release()
	}
	return rec
}
