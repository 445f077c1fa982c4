package server

import "sync"

// bufferPool hands out receive and transfer buffers in fixed size classes
// so consecutive connections reuse the same memory.
type bufferPool struct {
	small  sync.Pool // 4KB buffers
	medium sync.Pool // 32KB buffers
	large  sync.Pool // 128KB buffers
}

const (
	smallBufferSize  = 4096
	mediumBufferSize = 32768
	largeBufferSize  = 131072
)

func newBufferPool() *bufferPool {
	return &bufferPool{
		small:  sync.Pool{New: newBufferOf(smallBufferSize)},
		medium: sync.Pool{New: newBufferOf(mediumBufferSize)},
		large:  sync.Pool{New: newBufferOf(largeBufferSize)},
	}
}

func newBufferOf(size int) func() any {
	return func() any {
		buf := make([]byte, size)
		return &buf
	}
}

// get returns a buffer of exactly size bytes
func (p *bufferPool) get(size int) []byte {
	var pool *sync.Pool
	switch {
	case size <= smallBufferSize:
		pool = &p.small
	case size <= mediumBufferSize:
		pool = &p.medium
	case size <= largeBufferSize:
		pool = &p.large
	default:
		// Bigger than any class, let GC handle it
		return make([]byte, size)
	}

	buf := pool.Get().(*[]byte)
	return (*buf)[:size]
}

// put returns a buffer obtained from get
func (p *bufferPool) put(buf []byte) {
	full := buf[:cap(buf)]

	switch cap(buf) {
	case smallBufferSize:
		p.small.Put(&full)
	case mediumBufferSize:
		p.medium.Put(&full)
	case largeBufferSize:
		p.large.Put(&full)
	}
	// Else: buffer is non-standard size, let GC handle it
}
