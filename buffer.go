package limelight

import (
	"image"
	"sync"
)

// BufferPool is an [ImageFactory] that hands out one reusable buffer per
// size. Renders through a bridge configured with a BufferPool overwrite
// the previous raster in place, which makes every animation frame a
// single-buffer borrow: the image passed to OnNewFrame is valid only for
// the duration of the callback.
type BufferPool struct {
	mu  sync.Mutex
	buf *image.RGBA
}

// NewBufferPool creates an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{}
}

// Image returns the pooled buffer, reallocating only when the requested
// size changes.
func (p *BufferPool) Image(width, height int) *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf == nil || p.buf.Bounds().Dx() != width || p.buf.Bounds().Dy() != height {
		p.buf = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	return p.buf
}
