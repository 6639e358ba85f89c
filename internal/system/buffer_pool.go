package system

import (
	"image"
	"sync"
)

// FramePool recycles *image.RGBA buffers between frames to keep the render
// loop from hammering the garbage collector. Buffers are pooled per
// geometry, so mixed frame and scratch sizes coexist.
type FramePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &FramePool{
	pools: make(map[string]*sync.Pool),
}

// GetFrame returns a zero-origin RGBA buffer of the given size from the
// shared pool. Contents are whatever the previous user left behind; callers
// overwrite every pixel.
func GetFrame(w, h int) *image.RGBA {
	return globalPool.Get(image.Rect(0, 0, w, h))
}

// PutFrame returns a buffer to the shared pool for reuse.
func PutFrame(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
