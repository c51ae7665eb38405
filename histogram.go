package cudf

import (
	"sync/atomic"
)

// ============================================================================
// Routing Tables
// ============================================================================

// routingTables holds the per-invocation arrays produced by the histogram
// kernel and consumed by the scatter kernel. All slices come from the pools
// and are handed back by release.
type routingTables struct {
	rows          int
	numBlocks     int
	blockSize     int
	numPartitions int

	// rowPartition[i] is the partition of row i
	rowPartition *Uint32Slice

	// rowLocalOffset[i] is the rank of row i among rows of the same block
	// destined for the same partition
	rowLocalOffset *Uint32Slice

	// blockHistogram is partition-major: entry [p*B + b] counts the rows of
	// block b destined for partition p
	blockHistogram *Uint32Slice

	// blockScan is the exclusive prefix sum of the flattened blockHistogram;
	// entry [p*B + b] is the output address at which block b begins writing
	// partition p
	blockScan *Int64Slice

	// globalHistogram[p] counts the rows destined for partition p; the offset
	// builder replaces it in place with its own exclusive scan, yielding the
	// partition start offsets
	globalHistogram *Int64Slice
}

func (rt *routingTables) release() {
	rt.rowPartition.Release()
	rt.rowLocalOffset.Release()
	rt.blockHistogram.Release()
	rt.blockScan.Release()
	rt.globalHistogram.Release()
}

// ============================================================================
// Histogram Kernel
// ============================================================================

// buildRoutingTables runs the histogram kernel: every row is hashed, mapped
// to its partition, and ranked within its (block, partition) bucket. Each
// block keeps a private local histogram; the post-increment order of the
// local buckets defines rowLocalOffset. On block completion the local
// histogram is flushed into the partition-major blockHistogram and added
// atomically into globalHistogram.
func buildRoutingTables(rh *rowHasher, part partitioner, rows, numPartitions int) *routingTables {
	cfg := globalConfig
	bs := cfg.blockSize()
	numBlocks := cfg.numBlocks(rows)

	rt := &routingTables{
		rows:            rows,
		numBlocks:       numBlocks,
		blockSize:       bs,
		numPartitions:   numPartitions,
		rowPartition:    getUint32Slice(rows),
		rowLocalOffset:  getUint32Slice(rows),
		blockHistogram:  getUint32Slice(numPartitions * numBlocks),
		blockScan:       getInt64Slice(numPartitions * numBlocks),
		globalHistogram: getInt64Slice(numPartitions),
	}
	clear(rt.blockHistogram.Data)
	clear(rt.globalHistogram.Data)

	rowPartition := rt.rowPartition.Data
	rowLocalOffset := rt.rowLocalOffset.Data
	blockHistogram := rt.blockHistogram.Data
	globalHistogram := rt.globalHistogram.Data

	ParallelBlocks(rows, numBlocks, func(blocks *BlockIterator) {
		// Block-local histogram, reused across the blocks this worker claims
		local := getUint32Slice(numPartitions)
		defer local.Release()

		for b := blocks.Next(); b >= 0; b = blocks.Next() {
			clear(local.Data)
			start, end := blockBounds(b, bs, rows)

			for i := start; i < end; i++ {
				p := part.partition(rh.hash(i))
				rowLocalOffset[i] = local.Data[p]
				local.Data[p]++
				rowPartition[i] = p
			}

			// Flush: partition-major layout so the offset builder's flat scan
			// yields per-(partition, block) write addresses directly
			for p := 0; p < numPartitions; p++ {
				n := local.Data[p]
				blockHistogram[p*numBlocks+b] = n
				if n > 0 {
					atomic.AddInt64(&globalHistogram[p], int64(n))
				}
			}
		}
	})

	return rt
}
