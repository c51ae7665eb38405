// Command partition-bench times Hash and HashPartition on a synthetic or
// Parquet-sourced table.
//
// Usage:
//
//	partition-bench -rows 10000000 -keys 2 -partitions 64,256,1024
//	partition-bench -input table.parquet -key-cols 0,1 -partitions 256
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/tgujar/cudf"
)

var (
	inputFile  = flag.String("input", "", "Parquet file to partition (default: synthetic table)")
	rows       = flag.Int("rows", 1_000_000, "Rows in the synthetic table")
	keys       = flag.Int("keys", 2, "Key columns in the synthetic table")
	keyCols    = flag.String("key-cols", "", "Comma-separated key column indices (default: first -keys columns)")
	partitions = flag.String("partitions", "16,64,256", "Comma-separated partition counts")
	iterations = flag.Int("iterations", 3, "Iterations per partition count")
	seed       = flag.Int64("seed", 42, "Seed for synthetic data")
)

func main() {
	flag.Parse()

	mem := memory.DefaultAllocator

	var tbl arrow.Record
	var err error
	if *inputFile != "" {
		tbl, err = cudf.ReadParquet(*inputFile, mem)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		tbl = syntheticTable(mem, *rows, *keys)
	}
	defer tbl.Release()

	keyIndices, err := parseKeyCols(*keyCols, int(tbl.NumCols()), *keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	counts, err := parseInts(*partitions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Hash Partition Benchmark ===\n")
	fmt.Printf("Rows: %d, Columns: %d, Keys: %v, Iterations: %d\n\n",
		tbl.NumRows(), tbl.NumCols(), keyIndices, *iterations)

	hashTime := benchmark(*iterations, func() {
		col, err := cudf.Hash(tbl, nil, mem)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		col.Release()
	})
	fmt.Printf("Hash: %v (%.1f Mrows/s)\n\n", hashTime, mrowsPerSec(tbl.NumRows(), hashTime))

	for _, n := range counts {
		elapsed := benchmark(*iterations, func() {
			out, _, err := cudf.HashPartition(tbl, keyIndices, n, mem)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			out.Release()
		})
		fmt.Printf("HashPartition N=%-6d %v (%.1f Mrows/s)\n", n, elapsed, mrowsPerSec(tbl.NumRows(), elapsed))
	}
}

func benchmark(iterations int, fn func()) time.Duration {
	best := time.Duration(0)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		fn()
		elapsed := time.Since(start)
		if best == 0 || elapsed < best {
			best = elapsed
		}
	}
	return best
}

func mrowsPerSec(rows int64, d time.Duration) float64 {
	return float64(rows) / d.Seconds() / 1e6
}

func syntheticTable(mem memory.Allocator, rows, keys int) arrow.Record {
	r := rand.New(rand.NewSource(*seed))

	fields := make([]arrow.Field, 0, keys+2)
	arrays := make([]arrow.Array, 0, keys+2)

	for k := 0; k < keys; k++ {
		b := array.NewInt64Builder(mem)
		for i := 0; i < rows; i++ {
			b.Append(r.Int63n(1_000_000))
		}
		fields = append(fields, arrow.Field{Name: fmt.Sprintf("key_%d", k), Type: arrow.PrimitiveTypes.Int64})
		arrays = append(arrays, b.NewArray())
		b.Release()
	}

	vb := array.NewFloat64Builder(mem)
	for i := 0; i < rows; i++ {
		vb.Append(r.Float64() * 1000)
	}
	fields = append(fields, arrow.Field{Name: "value", Type: arrow.PrimitiveTypes.Float64})
	arrays = append(arrays, vb.NewArray())
	vb.Release()

	ib := array.NewInt32Builder(mem)
	for i := 0; i < rows; i++ {
		ib.Append(int32(i))
	}
	fields = append(fields, arrow.Field{Name: "row_id", Type: arrow.PrimitiveTypes.Int32})
	arrays = append(arrays, ib.NewArray())
	ib.Release()

	rec := array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(rows))
	for _, a := range arrays {
		a.Release()
	}
	return rec
}

func parseKeyCols(s string, ncols, nkeys int) ([]int, error) {
	if s == "" {
		if nkeys > ncols {
			nkeys = ncols
		}
		out := make([]int, nkeys)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	return parseInts(s)
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
