package volume

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/brickvol/brick"
)

// WriteSlice overlays the half-open box [minCoords, maxCoords) with data,
// a flat buffer in the same row-major order ReadSlice produces.  Each
// affected brick goes through a read-modify-write cycle: fetch (or start
// from a zero brick), overlay the intersecting region, recompress with
// the volume's configured method and level, store back.
//
// Updates to distinct bricks proceed concurrently; updates to the same
// brick are serialized by a brick-keyed lock scoped to this Volume, so
// interleaved partial overlays cannot lose data.  A failure on any brick
// aborts the call, but bricks already written are not rolled back --
// callers should retry the whole call, which is idempotent since it fully
// overlays the same region.
func (v *Volume) WriteSlice(ctx context.Context, minCoords, maxCoords []int64, data []byte) error {
	v.mu.RLock()
	layout := v.meta.Layout
	v.mu.RUnlock()

	bricks, err := layout.OverlappingBricks(minCoords, maxCoords)
	if err != nil {
		return err
	}
	expected := layout.DataType.Size()
	for i := 0; i < layout.Dimensionality; i++ {
		expected *= maxCoords[i] - minCoords[i]
	}
	if int64(len(data)) != expected {
		return fmt.Errorf("%w: data is %d bytes, slice needs %d",
			brick.ErrInvalidDimensions, len(data), expected)
	}

	tlog := brick.NewTimeLog()

	g, gctx := errgroup.WithContext(ctx)
	for _, index := range bricks {
		index := index
		g.Go(func() error {
			return v.writeBrick(gctx, layout, index, minCoords, maxCoords, data)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	v.touch()
	tlog.Debugf("WriteSlice %v..%v (%d bricks)", minCoords, maxCoords, len(bricks))
	return nil
}

// writeBrick performs one read-modify-write cycle under the brick's guard.
func (v *Volume) writeBrick(ctx context.Context, layout *brick.VolumeLayout, index int64, minCoords, maxCoords []int64, data []byte) error {
	g := v.locks.acquire(index)
	defer g.Unlock()

	path := brick.BrickPath(index, 0)
	buf, found := v.cache.get(path)
	if !found {
		var err error
		buf, err = v.fetchBrick(ctx, layout, index)
		if err != nil {
			return err
		}
	}
	if buf == nil {
		// Brick created lazily on first write; starts zero-filled and
		// padded to the full brick extent.
		buf = make([]byte, layout.BrickBytes())
	}

	t := computeTransform(layout, layout.BrickCoords(index), minCoords, maxCoords)
	scatterBrick(buf, data, t)

	compressed, err := v.compressor.Compress(buf, v.level)
	if err != nil {
		return fmt.Errorf("brick %d: %w", index, err)
	}
	if err := v.store.Write(ctx, path, compressed); err != nil {
		v.cache.invalidate(path)
		return err
	}
	g.gen.Add(1)
	v.cache.set(path, buf)
	return nil
}
