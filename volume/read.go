package volume

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/brickvol/brick"
)

// ReadSlice reconstructs the half-open axis-aligned box
// [minCoords, maxCoords) from brick storage and returns it as a flat
// buffer in row-major order, last requested dimension varying fastest.
//
// All validation happens before any I/O.  Bricks are fetched concurrently
// and the first failure aborts the whole read; partial results are never
// returned.  Bricks that were never written read as zero.
func (v *Volume) ReadSlice(ctx context.Context, minCoords, maxCoords []int64) ([]byte, error) {
	v.mu.RLock()
	layout := v.meta.Layout
	v.mu.RUnlock()

	bricks, err := layout.OverlappingBricks(minCoords, maxCoords)
	if err != nil {
		return nil, err
	}

	tlog := brick.NewTimeLog()

	// One concurrent fetch per overlapping brick, gathered by brick
	// identity so assembly is deterministic regardless of completion
	// order.
	results := make([][]byte, len(bricks))
	g, gctx := errgroup.WithContext(ctx)
	for i, index := range bricks {
		i, index := i, index
		g.Go(func() error {
			data, err := v.readBrick(gctx, layout, index)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sliceBytes := layout.DataType.Size()
	for i := 0; i < layout.Dimensionality; i++ {
		sliceBytes *= maxCoords[i] - minCoords[i]
	}
	out := make([]byte, sliceBytes)

	for i, index := range bricks {
		if results[i] == nil {
			// Never-written brick: the overlap region stays zero.
			continue
		}
		t := computeTransform(layout, layout.BrickCoords(index), minCoords, maxCoords)
		gatherBrick(out, results[i], t)
	}

	tlog.Debugf("ReadSlice %v..%v (%d bricks)", minCoords, maxCoords, len(bricks))
	return out, nil
}

// readBrick fetches and decompresses one brick, consulting the cache
// first.  A missing brick returns (nil, nil) and is treated as all-zero
// by the caller.
func (v *Volume) readBrick(ctx context.Context, layout *brick.VolumeLayout, index int64) ([]byte, error) {
	path := brick.BrickPath(index, 0)
	if data, found := v.cache.get(path); found {
		return data, nil
	}

	g := v.locks.guard(index)
	gen := g.gen.Load()
	data, err := v.fetchBrick(ctx, layout, index)
	if err != nil || data == nil {
		return data, err
	}
	v.cacheIfCurrent(g, gen, path, data)
	return data, nil
}

// fetchBrick reads and decompresses one brick from the backend, bypassing
// the cache.  A missing brick returns (nil, nil).
func (v *Volume) fetchBrick(ctx context.Context, layout *brick.VolumeLayout, index int64) ([]byte, error) {
	compressed, err := v.store.Read(ctx, brick.BrickPath(index, 0))
	if err != nil {
		if errors.Is(err, brick.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	data, err := v.compressor.Decompress(compressed, int(layout.BrickBytes()))
	if err != nil {
		return nil, fmt.Errorf("brick %d: %w", index, err)
	}
	if int64(len(data)) != layout.BrickBytes() {
		return nil, fmt.Errorf("%w: brick %d decompressed to %d bytes, expected %d",
			brick.ErrInvalidFormat, index, len(data), layout.BrickBytes())
	}
	return data, nil
}

// cacheIfCurrent installs a decompressed brick in the cache unless a write
// committed after the backend read that produced it.  gen is the guard's
// generation sampled before that read; taking the guard lock here means no
// write is in flight, so an unchanged generation proves data is still the
// latest brick and a late reader can never shadow a committed write.
func (v *Volume) cacheIfCurrent(g *brickGuard, gen uint64, path string, data []byte) {
	g.Lock()
	if g.gen.Load() == gen {
		v.cache.set(path, data)
	}
	g.Unlock()
}
