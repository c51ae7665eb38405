package cudf

import (
	"sync"
)

// Routing tables (row partitions, local offsets, histograms, scans) are
// allocated per invocation and released on return. Pooling them keeps the
// steady-state allocation rate of repeated partitioning near zero.

// Uint32Slice is a pooled uint32 slice for routing tables
type Uint32Slice struct {
	Data []uint32
	pool *sync.Pool
}

// Release returns the slice to the pool for reuse
func (s *Uint32Slice) Release() {
	if s.pool != nil && s.Data != nil {
		s.pool.Put(s)
	}
}

// Int64Slice is a pooled int64 slice for histograms and offset tables
type Int64Slice struct {
	Data []int64
	pool *sync.Pool
}

// Release returns the slice to the pool for reuse
func (s *Int64Slice) Release() {
	if s.pool != nil && s.Data != nil {
		s.pool.Put(s)
	}
}

// ByteSlice is a pooled byte slice for boolean staging
type ByteSlice struct {
	Data []byte
	pool *sync.Pool
}

// Release returns the slice to the pool for reuse
func (s *ByteSlice) Release() {
	if s.pool != nil && s.Data != nil {
		s.pool.Put(s)
	}
}

// Pool sizes - we use power-of-2 buckets for efficiency
var (
	uint32Pools [32]*sync.Pool // pools for sizes 2^0 to 2^31
	int64Pools  [32]*sync.Pool
	bytePools   [32]*sync.Pool
	poolInit    sync.Once
)

func initPools() {
	poolInit.Do(func() {
		for i := range uint32Pools {
			size := 1 << i
			uint32Pools[i] = &sync.Pool{
				New: func() interface{} {
					return &Uint32Slice{
						Data: make([]uint32, size),
					}
				},
			}
			int64Pools[i] = &sync.Pool{
				New: func() interface{} {
					return &Int64Slice{
						Data: make([]int64, size),
					}
				},
			}
			bytePools[i] = &sync.Pool{
				New: func() interface{} {
					return &ByteSlice{
						Data: make([]byte, size),
					}
				},
			}
		}
	})
}

// getBucket returns the pool bucket index for a given size
func getBucket(size int) int {
	if size <= 0 {
		return 0
	}
	// Find the smallest power of 2 >= size
	bucket := 0
	n := size - 1
	for n > 0 {
		n >>= 1
		bucket++
	}
	if bucket >= 32 {
		bucket = 31
	}
	return bucket
}

// getUint32Slice gets a uint32 slice of exactly 'size' elements from the pool.
// Contents are unspecified; zero before use if required.
func getUint32Slice(size int) *Uint32Slice {
	initPools()
	bucket := getBucket(size)
	pool := uint32Pools[bucket]
	slice := pool.Get().(*Uint32Slice)
	slice.pool = pool

	poolSize := 1 << bucket
	if size > poolSize {
		slice.Data = make([]uint32, size)
	} else if len(slice.Data) != size {
		slice.Data = slice.Data[:cap(slice.Data)][:size]
	}

	return slice
}

// getInt64Slice gets an int64 slice of exactly 'size' elements from the pool.
// Contents are unspecified; zero before use if required.
func getInt64Slice(size int) *Int64Slice {
	initPools()
	bucket := getBucket(size)
	pool := int64Pools[bucket]
	slice := pool.Get().(*Int64Slice)
	slice.pool = pool

	poolSize := 1 << bucket
	if size > poolSize {
		slice.Data = make([]int64, size)
	} else if len(slice.Data) != size {
		slice.Data = slice.Data[:cap(slice.Data)][:size]
	}

	return slice
}

// getByteSlice gets a byte slice of exactly 'size' elements from the pool.
// Contents are unspecified; zero before use if required.
func getByteSlice(size int) *ByteSlice {
	initPools()
	bucket := getBucket(size)
	pool := bytePools[bucket]
	slice := pool.Get().(*ByteSlice)
	slice.pool = pool

	poolSize := 1 << bucket
	if size > poolSize {
		slice.Data = make([]byte, size)
	} else if len(slice.Data) != size {
		slice.Data = slice.Data[:cap(slice.Data)][:size]
	}

	return slice
}
