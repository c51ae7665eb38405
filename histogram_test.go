package cudf

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

// buildTestTables hashes keys and runs the histogram kernel with a forced
// block size so multi-block invariants are exercised
func buildTestTables(t *testing.T, keys []int64, numPartitions, blockSize int) *routingTables {
	t.Helper()

	original := GetParallelConfig()
	t.Cleanup(func() { SetParallelConfig(original) })
	SetParallelConfig(&ParallelConfig{
		MinRowsForParallel: 1,
		BlockSize:          blockSize,
		MaxWorkers:         4,
		Enabled:            true,
	})

	col := int64Col(keys)
	defer col.Release()
	rh, err := newRowHasher([]arrow.Array{col}, nil, false)
	if err != nil {
		t.Fatalf("newRowHasher failed: %v", err)
	}
	return buildRoutingTables(rh, newPartitioner(numPartitions), len(keys), numPartitions)
}

func TestHistogram_GlobalSumEqualsRows(t *testing.T) {
	keys := make([]int64, 1000)
	for i := range keys {
		keys[i] = int64(i * 13)
	}

	rt := buildTestTables(t, keys, 7, 64)
	defer rt.release()

	var sum int64
	for _, c := range rt.globalHistogram.Data {
		sum += c
	}
	if sum != 1000 {
		t.Errorf("global histogram sums to %d, want 1000", sum)
	}
}

func TestHistogram_LocalOffsetsBounded(t *testing.T) {
	keys := make([]int64, 777)
	for i := range keys {
		keys[i] = int64(i % 31)
	}

	rt := buildTestTables(t, keys, 5, 50)
	defer rt.release()

	B := rt.numBlocks
	for i := range keys {
		p := rt.rowPartition.Data[i]
		b := i / rt.blockSize
		bucket := rt.blockHistogram.Data[int(p)*B+b]
		if rt.rowLocalOffset.Data[i] >= bucket {
			t.Fatalf("row %d: local offset %d >= block bucket %d",
				i, rt.rowLocalOffset.Data[i], bucket)
		}
	}
}

func TestHistogram_BlockHistogramMatchesRows(t *testing.T) {
	keys := make([]int64, 500)
	for i := range keys {
		keys[i] = int64(i * 7)
	}

	rt := buildTestTables(t, keys, 4, 64)
	defer rt.release()

	B := rt.numBlocks
	want := make([]uint32, 4*B)
	for i := range keys {
		p := int(rt.rowPartition.Data[i])
		b := i / rt.blockSize
		want[p*B+b]++
	}
	for i, w := range want {
		if rt.blockHistogram.Data[i] != w {
			t.Fatalf("blockHistogram[%d] = %d, want %d", i, rt.blockHistogram.Data[i], w)
		}
	}
}

func TestOffsets_AddressesAreContiguousPerPartition(t *testing.T) {
	keys := make([]int64, 900)
	for i := range keys {
		keys[i] = int64(i % 113)
	}

	numPartitions := 6
	rt := buildTestTables(t, keys, numPartitions, 100)
	defer rt.release()

	sizes := append([]int64(nil), rt.globalHistogram.Data...)
	rt.buildOffsets()
	offsets := rt.partitionOffsets()

	B := rt.numBlocks
	seen := make([]bool, len(keys))
	for i := range keys {
		p := int(rt.rowPartition.Data[i])
		b := i / rt.blockSize
		addr := rt.blockScan.Data[p*B+b] + int64(rt.rowLocalOffset.Data[i])
		if addr < offsets[p] || addr >= offsets[p]+sizes[p] {
			t.Fatalf("row %d address %d outside partition %d range [%d, %d)",
				i, addr, p, offsets[p], offsets[p]+sizes[p])
		}
		if seen[addr] {
			t.Fatalf("output address %d assigned twice", addr)
		}
		seen[addr] = true
	}
	for addr, s := range seen {
		if !s {
			t.Fatalf("output address %d never assigned", addr)
		}
	}
}

func TestHistogram_AllNullKeysOnePartition(t *testing.T) {
	// An entirely-null key column hashes every row to the sentinel, so all
	// rows share one partition under the null-aware path
	col := int64ColWithNulls([]int64{1, 2, 3, 4, 5, 6}, []bool{false, false, false, false, false, false})
	defer col.Release()

	rh, err := newRowHasher([]arrow.Array{col}, nil, true)
	if err != nil {
		t.Fatalf("newRowHasher failed: %v", err)
	}

	rt := buildRoutingTables(rh, newPartitioner(3), 6, 3)
	defer rt.release()

	first := rt.rowPartition.Data[0]
	for i, p := range rt.rowPartition.Data {
		if p != first {
			t.Fatalf("row %d in partition %d, row 0 in %d", i, p, first)
		}
	}

	nonEmpty := 0
	for _, c := range rt.globalHistogram.Data {
		if c == 6 {
			nonEmpty++
		} else if c != 0 {
			t.Fatalf("unexpected partition size %d", c)
		}
	}
	if nonEmpty != 1 {
		t.Fatal("expected exactly one non-empty partition")
	}
}

func TestExclusiveScan(t *testing.T) {
	hist := []uint32{3, 0, 2, 5}
	scan := make([]int64, 4)
	exclusiveScanHistogram(hist, scan)
	want := []int64{0, 3, 3, 5}
	for i := range want {
		if scan[i] != want[i] {
			t.Errorf("scan[%d] = %d, want %d", i, scan[i], want[i])
		}
	}

	v := []int64{4, 1, 0, 7}
	exclusiveScanInPlace(v)
	wantV := []int64{0, 4, 5, 5}
	for i := range wantV {
		if v[i] != wantV[i] {
			t.Errorf("in-place scan[%d] = %d, want %d", i, v[i], wantV[i])
		}
	}
}
