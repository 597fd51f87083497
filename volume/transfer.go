package volume

import (
	"github.com/janelia-flyem/brickvol/brick"
)

// transform holds the precomputed overlap between one brick and a slice
// request: the shared voxel box, the brick's origin, and the byte strides
// on both sides.  Both buffers are row-major with the last dimension
// varying fastest, matching the persisted brick linearization, so the
// innermost spans are contiguous byte runs.
type transform struct {
	dims int

	// lo/hi bound the overlap, half-open, in volume voxel coordinates.
	lo, hi []int64

	// brickOrigin is the brick's start voxel per dimension.  The brick
	// buffer itself is padded to the full brick size even for boundary
	// bricks, so strides come from the brick size, not the clipped range.
	brickOrigin []int64

	// sliceOrigin is the slice request's min coordinate per dimension.
	sliceOrigin []int64

	brickStride []int64 // bytes per step along each dimension of the brick buffer
	sliceStride []int64 // bytes per step along each dimension of the slice buffer

	runBytes int64 // contiguous bytes along the fastest-varying dimension
}

// computeTransform intersects the clipped voxel range of the brick at
// brickCoords with the half-open slice [minCoords, maxCoords).  The caller
// guarantees the brick overlaps the slice (it came from
// OverlappingBricks).
func computeTransform(layout *brick.VolumeLayout, brickCoords, minCoords, maxCoords []int64) transform {
	dims := layout.Dimensionality
	elemSize := layout.DataType.Size()
	ranges := layout.BrickRange(brickCoords)

	t := transform{
		dims:        dims,
		lo:          make([]int64, dims),
		hi:          make([]int64, dims),
		brickOrigin: make([]int64, dims),
		sliceOrigin: make([]int64, dims),
		brickStride: make([]int64, dims),
		sliceStride: make([]int64, dims),
	}
	for i := 0; i < dims; i++ {
		t.brickOrigin[i] = ranges[i].Start
		t.sliceOrigin[i] = minCoords[i]
		t.lo[i] = max64(minCoords[i], ranges[i].Start)
		t.hi[i] = min64(maxCoords[i], ranges[i].End)
	}

	// Strides of the fastest dimension are the element size; each slower
	// dimension strides over the full extent of all faster ones.
	brickAccum := elemSize
	sliceAccum := elemSize
	for i := dims - 1; i >= 0; i-- {
		t.brickStride[i] = brickAccum
		t.sliceStride[i] = sliceAccum
		brickAccum *= layout.BrickSize.Get(i)
		sliceAccum *= maxCoords[i] - minCoords[i]
	}
	t.runBytes = (t.hi[dims-1] - t.lo[dims-1]) * elemSize
	return t
}

// brickOffset returns the byte offset of position pos within the padded
// brick buffer.
func (t transform) brickOffset(pos []int64) int64 {
	var off int64
	for i := 0; i < t.dims; i++ {
		off += (pos[i] - t.brickOrigin[i]) * t.brickStride[i]
	}
	return off
}

// sliceOffset returns the byte offset of position pos within the slice
// buffer.
func (t transform) sliceOffset(pos []int64) int64 {
	var off int64
	for i := 0; i < t.dims; i++ {
		off += (pos[i] - t.sliceOrigin[i]) * t.sliceStride[i]
	}
	return off
}

// forEachRun walks the overlap box, calling f once per contiguous run
// along the fastest-varying dimension with the byte offsets of the run's
// start on both sides.
func (t transform) forEachRun(f func(brickOff, sliceOff int64)) {
	pos := make([]int64, t.dims)
	copy(pos, t.lo)
	last := t.dims - 1
	for {
		f(t.brickOffset(pos), t.sliceOffset(pos))

		// Advance the odometer over all dimensions but the fastest.
		dim := last - 1
		for {
			if dim < 0 {
				return
			}
			pos[dim]++
			if pos[dim] < t.hi[dim] {
				break
			}
			pos[dim] = t.lo[dim]
			dim--
		}
	}
}

// gatherBrick copies the overlap region from a decompressed brick buffer
// into the slice buffer.
func gatherBrick(slice, brickBuf []byte, t transform) {
	t.forEachRun(func(brickOff, sliceOff int64) {
		copy(slice[sliceOff:sliceOff+t.runBytes], brickBuf[brickOff:brickOff+t.runBytes])
	})
}

// scatterBrick overlays the overlap region from the slice buffer onto a
// decompressed brick buffer.  Mirror of gatherBrick.
func scatterBrick(brickBuf, slice []byte, t transform) {
	t.forEachRun(func(brickOff, sliceOff int64) {
		copy(brickBuf[brickOff:brickOff+t.runBytes], slice[sliceOff:sliceOff+t.runBytes])
	})
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
