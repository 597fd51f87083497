package volume

import (
	"github.com/coocood/freecache"

	"github.com/janelia-flyem/brickvol/brick"
)

// brickCache holds decompressed brick buffers keyed by brick path.  It is
// strictly best-effort: entries too large for the cache are skipped, and a
// miss just falls through to the backend.  Writers update entries while
// holding the brick lock, and freecache returns whole values atomically,
// so readers never observe a torn brick.
type brickCache struct {
	c *freecache.Cache
}

func newBrickCache(sizeBytes int) *brickCache {
	if sizeBytes <= 0 {
		return nil
	}
	return &brickCache{c: freecache.NewCache(sizeBytes)}
}

func (bc *brickCache) get(path string) ([]byte, bool) {
	if bc == nil {
		return nil, false
	}
	data, err := bc.c.Get([]byte(path))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (bc *brickCache) set(path string, data []byte) {
	if bc == nil {
		return
	}
	if err := bc.c.Set([]byte(path), data, 0); err != nil {
		brick.Debugf("brick cache skipped %s: %v\n", path, err)
	}
}

func (bc *brickCache) invalidate(path string) {
	if bc == nil {
		return
	}
	bc.c.Del([]byte(path))
}
