// Package pool provides object pooling for go-respawn.
// Used by the argv reorderer for scratch slices and by the process bridge for
// stream relay buffers.
package pool

import (
	"sync"
)

// Pool provides a generic, type-safe object pool
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T) // Optional reset function called before reuse
}

// NewPool creates a new generic pool with the given factory function
func NewPool[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return factory()
			},
		},
	}
}

// NewPoolWithReset creates a pool with a reset function called before reuse
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := NewPool(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	obj := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	p.pool.Put(obj)
}

// BufferPool pools byte slices in capacity buckets.
type BufferPool struct {
	pools   map[int]*Pool[[]byte]
	buckets []int
	minCap  int
	maxCap  int
}

// NewBufferPool creates a buffer pool with the given ascending capacity buckets.
func NewBufferPool(buckets ...int) *BufferPool {
	if len(buckets) == 0 {
		buckets = []int{512, 4096, 32 * 1024}
	}
	bp := &BufferPool{
		pools:   make(map[int]*Pool[[]byte], len(buckets)),
		buckets: buckets,
		minCap:  buckets[0],
		maxCap:  buckets[len(buckets)-1],
	}
	for _, c := range buckets {
		capacity := c
		bp.pools[capacity] = NewPoolWithReset(
			func() *[]byte {
				buf := make([]byte, 0, capacity)
				return &buf
			},
			func(buf *[]byte) {
				*buf = (*buf)[:0]
			},
		)
	}
	return bp
}

// Get retrieves a zero-length buffer with at least the requested capacity.
// Requests above the largest bucket are allocated directly.
func (bp *BufferPool) Get(minCap int) *[]byte {
	if minCap > bp.maxCap {
		buf := make([]byte, 0, minCap)
		return &buf
	}
	return bp.pools[bp.findBucket(minCap)].Get()
}

// Put returns a buffer to the appropriate pool
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}
	c := cap(*buf)
	if c < bp.minCap || c > bp.maxCap {
		return
	}
	// only exact bucket sizes are pooled so Get's capacity guarantee holds
	if p, ok := bp.pools[c]; ok {
		p.Put(buf)
	}
}

func (bp *BufferPool) findBucket(minCap int) int {
	for _, bucket := range bp.buckets {
		if bucket >= minCap {
			return bucket
		}
	}
	return bp.maxCap
}

// StringSlicePool provides pooling for string slices
type StringSlicePool struct {
	*Pool[[]string]
}

// NewStringSlicePool creates a new string slice pool
func NewStringSlicePool(defaultCap int) *StringSlicePool {
	return &StringSlicePool{
		Pool: NewPoolWithReset(
			func() *[]string {
				slice := make([]string, 0, defaultCap)
				return &slice
			},
			func(slice *[]string) {
				clear(*slice)
				*slice = (*slice)[:0]
			},
		),
	}
}

var (
	// GlobalBufferPool backs stream relays.
	GlobalBufferPool = NewBufferPool()

	// GlobalStringSlicePool backs argv grouping scratch space.
	GlobalStringSlicePool = NewStringSlicePool(16)
)

// GetBuffer retrieves a relay buffer
func GetBuffer(minCap int) *[]byte {
	return GlobalBufferPool.Get(minCap)
}

// PutBuffer returns a buffer to the global pool
func PutBuffer(buf *[]byte) {
	GlobalBufferPool.Put(buf)
}

// GetStringSlice retrieves an empty scratch string slice
func GetStringSlice() *[]string {
	return GlobalStringSlicePool.Get()
}

// PutStringSlice returns a string slice to the global pool
func PutStringSlice(slice *[]string) {
	GlobalStringSlicePool.Put(slice)
}
