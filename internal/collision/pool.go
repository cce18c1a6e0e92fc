package collision

import "sync"

// BufferPool recycles EPA scratch space between narrow phase passes.
type BufferPool struct {
	pool sync.Pool
}

func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(Buffers)
			},
		},
	}
}

func (p *BufferPool) Get() *Buffers {
	return p.pool.Get().(*Buffers)
}

func (p *BufferPool) Put(b *Buffers) {
	b.Reset()
	p.pool.Put(b)
}

var defaultPool = NewBufferPool()
