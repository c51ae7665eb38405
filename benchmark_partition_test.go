package cudf

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

// ============================================================================
// Partition Benchmarks
// Run with: go test -bench=BenchmarkPartition -benchmem
// ============================================================================

func makeBenchTable(rows, keyCols int) arrow.Record {
	r := rand.New(rand.NewSource(42))

	names := make([]string, 0, keyCols+1)
	cols := make([]arrow.Array, 0, keyCols+1)
	for k := 0; k < keyCols; k++ {
		data := make([]int64, rows)
		for i := range data {
			data[i] = r.Int63n(1_000_000)
		}
		names = append(names, fmt.Sprintf("key_%d", k))
		cols = append(cols, int64Col(data))
	}
	vals := make([]float64, rows)
	for i := range vals {
		vals[i] = r.Float64() * 1000
	}
	names = append(names, "value")
	cols = append(cols, float64Col(vals))

	return recordOf(names, cols...)
}

func benchmarkPartition(b *testing.B, rows, parts int) {
	tbl := makeBenchTable(rows, 1)
	defer tbl.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, _, err := HashPartition(tbl, []int{0}, parts, nil)
		if err != nil {
			b.Fatal(err)
		}
		out.Release()
	}
	b.SetBytes(int64(rows) * 16)
}

func BenchmarkPartition_100K_16(b *testing.B)  { benchmarkPartition(b, 100_000, 16) }
func BenchmarkPartition_100K_256(b *testing.B) { benchmarkPartition(b, 100_000, 256) }
func BenchmarkPartition_1M_16(b *testing.B)    { benchmarkPartition(b, 1_000_000, 16) }
func BenchmarkPartition_1M_256(b *testing.B)   { benchmarkPartition(b, 1_000_000, 256) }
func BenchmarkPartition_1M_250(b *testing.B)   { benchmarkPartition(b, 1_000_000, 250) }

func BenchmarkHash_1M(b *testing.B) {
	tbl := makeBenchTable(1_000_000, 2)
	defer tbl.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		col, err := Hash(tbl, nil, nil)
		if err != nil {
			b.Fatal(err)
		}
		col.Release()
	}
}

func BenchmarkHistogram_1M_256(b *testing.B) {
	tbl := makeBenchTable(1_000_000, 1)
	defer tbl.Release()

	rh, err := newRowHasher([]arrow.Array{tbl.Column(0)}, nil, false)
	if err != nil {
		b.Fatal(err)
	}
	part := newPartitioner(256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rt := buildRoutingTables(rh, part, 1_000_000, 256)
		rt.release()
	}
}
