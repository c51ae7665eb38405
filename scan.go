package cudf

import "sync"

// ============================================================================
// Offset Builder
// ============================================================================

// exclusiveScanHistogram writes the exclusive prefix sum of hist into scan.
// Both views are the flattened partition-major [N][B] shape, so scan[p*B+b]
// is the number of rows destined for partitions < p plus the rows destined
// for partition p in blocks < b: the base output address of (partition p,
// block b).
func exclusiveScanHistogram(hist []uint32, scan []int64) {
	var sum int64
	for i, v := range hist {
		scan[i] = sum
		sum += int64(v)
	}
}

// exclusiveScanInPlace replaces v with its exclusive prefix sum
func exclusiveScanInPlace(v []int64) {
	var sum int64
	for i, x := range v {
		v[i] = sum
		sum += x
	}
}

// buildOffsets runs the two scans of the offset builder. They read disjoint
// inputs, so they run concurrently; both must complete before any scatter
// launch. On return globalHistogram holds the partition start offsets.
func (rt *routingTables) buildOffsets() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		exclusiveScanHistogram(rt.blockHistogram.Data, rt.blockScan.Data)
	}()
	exclusiveScanInPlace(rt.globalHistogram.Data)
	wg.Wait()
}

// partitionOffsets copies the scanned globalHistogram out as the caller's
// partition start-offset vector
func (rt *routingTables) partitionOffsets() []int64 {
	out := make([]int64, rt.numPartitions)
	copy(out, rt.globalHistogram.Data)
	return out
}
