package brick

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxDims is the maximum dimensionality of a volume.
const MaxDims = 6

// BrickSize is the per-dimension extent of a brick.  All six slots are
// always populated; dimensions beyond a volume's dimensionality are fixed
// at 1 so stride arithmetic can ignore dimensionality.
type BrickSize [MaxDims]int64

// DefaultBrickSize is the common 64^3 bricking used for 3-d volumes.
var DefaultBrickSize = BrickSize{64, 64, 64, 1, 1, 1}

// NewBrickSize returns a brick size with the given extent in the first
// dims dimensions and 1 elsewhere.
func NewBrickSize(dims int, size int64) (BrickSize, error) {
	var bs BrickSize
	if dims < 1 || dims > MaxDims {
		return bs, fmt.Errorf("%w: brick size dimensionality must be in [1,%d], got %d",
			ErrInvalidDimensions, MaxDims, dims)
	}
	for i := 0; i < MaxDims; i++ {
		if i < dims {
			bs[i] = size
		} else {
			bs[i] = 1
		}
	}
	return bs, nil
}

// Get returns the brick extent along dimension dim, treating dimensions
// past the array as extent 1.
func (bs BrickSize) Get(dim int) int64 {
	if dim < MaxDims {
		return bs[dim]
	}
	return 1
}

// Voxels returns the number of voxels in a full (padded) brick.
func (bs BrickSize) Voxels() int64 {
	n := int64(1)
	for _, d := range bs {
		n *= d
	}
	return n
}

// VoxelRange is a half-open [Start,End) span of voxel coordinates along
// one dimension.
type VoxelRange struct {
	Start int64
	End   int64
}

// VolumeLayout describes how a volume is organized: its dimensionality,
// element type, axes, bricking, LOD levels and margins.  A layout is
// immutable once published inside a metadata document.
type VolumeLayout struct {
	Dimensionality int              `json:"dimensionality"`
	DataType       DataType         `json:"data_type"`
	Axes           []AxisDescriptor `json:"axes"`
	BrickSize      BrickSize        `json:"brick_size"`
	LODLevels      int              `json:"lod_levels"`

	// Margins are the negative/positive overlap widths per dimension.
	// They are persisted for format compatibility but never consulted by
	// slice assembly; see DESIGN.md.
	NegativeMargin [MaxDims]int64 `json:"negative_margin"`
	PositiveMargin [MaxDims]int64 `json:"positive_margin"`
}

// NewVolumeLayout returns a layout with the default brick size and a
// single LOD level.  Dimensionality outside [1,6] or a mismatched axis
// count is rejected.
func NewVolumeLayout(dims int, dataType DataType, axes []AxisDescriptor) (*VolumeLayout, error) {
	if dims < 1 || dims > MaxDims {
		return nil, fmt.Errorf("%w: dimensionality must be in [1,%d], got %d",
			ErrInvalidDimensions, MaxDims, dims)
	}
	if len(axes) != dims {
		return nil, fmt.Errorf("%w: %d axes for dimensionality %d",
			ErrInvalidDimensions, len(axes), dims)
	}
	for i, axis := range axes {
		if axis.NumSamples < 1 {
			return nil, fmt.Errorf("%w: axis %d has %d samples",
				ErrInvalidDimensions, i, axis.NumSamples)
		}
	}
	return &VolumeLayout{
		Dimensionality: dims,
		DataType:       dataType,
		Axes:           axes,
		BrickSize:      DefaultBrickSize,
		LODLevels:      1,
	}, nil
}

// WithBrickSize sets the brick size, returning the layout for chaining.
func (l *VolumeLayout) WithBrickSize(bs BrickSize) *VolumeLayout {
	l.BrickSize = bs
	return l
}

// WithLODLevels sets the number of LOD levels.
func (l *VolumeLayout) WithLODLevels(levels int) *VolumeLayout {
	l.LODLevels = levels
	return l
}

// WithMargins sets the negative/positive overlap widths.
func (l *VolumeLayout) WithMargins(negative, positive [MaxDims]int64) *VolumeLayout {
	l.NegativeMargin = negative
	l.PositiveMargin = positive
	return l
}

// Validate checks a layout decoded from a metadata document.
func (l *VolumeLayout) Validate() error {
	if l.Dimensionality < 1 || l.Dimensionality > MaxDims {
		return fmt.Errorf("%w: dimensionality %d", ErrInvalidDimensions, l.Dimensionality)
	}
	if len(l.Axes) != l.Dimensionality {
		return fmt.Errorf("%w: %d axes for dimensionality %d",
			ErrInvalidDimensions, len(l.Axes), l.Dimensionality)
	}
	if l.DataType.Size() == 0 {
		return fmt.Errorf("%w: unknown data type %d", ErrInvalidFormat, uint8(l.DataType))
	}
	for i := 0; i < l.Dimensionality; i++ {
		if l.Axes[i].NumSamples < 1 {
			return fmt.Errorf("%w: axis %d has %d samples",
				ErrInvalidDimensions, i, l.Axes[i].NumSamples)
		}
		if l.BrickSize[i] < 1 {
			return fmt.Errorf("%w: brick size %d along dimension %d",
				ErrInvalidDimensions, l.BrickSize[i], i)
		}
	}
	// Slots past the dimensionality must stay 1 so padded-brick byte
	// sizes and stride arithmetic are well defined.
	for i := l.Dimensionality; i < MaxDims; i++ {
		if l.BrickSize[i] != 1 {
			return fmt.Errorf("%w: brick size %d along unused dimension %d, must be 1",
				ErrInvalidDimensions, l.BrickSize[i], i)
		}
	}
	return nil
}

// Size returns the per-dimension sample counts.
func (l *VolumeLayout) Size() []int64 {
	size := make([]int64, l.Dimensionality)
	for i, axis := range l.Axes {
		size[i] = axis.NumSamples
	}
	return size
}

// BrickCount returns the per-dimension number of bricks,
// ceil(num samples / brick size) along each axis.
func (l *VolumeLayout) BrickCount() []int64 {
	counts := make([]int64, l.Dimensionality)
	for i, axis := range l.Axes {
		bdim := l.BrickSize.Get(i)
		counts[i] = (axis.NumSamples + bdim - 1) / bdim
	}
	return counts
}

// TotalBricks returns the number of bricks in the level-0 index space.
func (l *VolumeLayout) TotalBricks() int64 {
	total := int64(1)
	for _, c := range l.BrickCount() {
		total *= c
	}
	return total
}

// BrickIndex linearizes brick coordinates using row-major order with the
// last dimension varying fastest: the stride of dimension i is the product
// of the brick counts of all dimensions after i.  This ordering is baked
// into persisted brick paths.
func (l *VolumeLayout) BrickIndex(coords []int64) int64 {
	counts := l.BrickCount()
	var index int64
	stride := int64(1)
	for i := l.Dimensionality - 1; i >= 0; i-- {
		index += coords[i] * stride
		stride *= counts[i]
	}
	return index
}

// BrickCoords delinearizes a brick index back to brick coordinates.
// Inverse of BrickIndex over the valid index range.
func (l *VolumeLayout) BrickCoords(index int64) []int64 {
	counts := l.BrickCount()
	coords := make([]int64, l.Dimensionality)
	remaining := index
	for i := 0; i < l.Dimensionality; i++ {
		stride := int64(1)
		for j := i + 1; j < l.Dimensionality; j++ {
			stride *= counts[j]
		}
		coords[i] = remaining / stride
		remaining %= stride
	}
	return coords
}

// BrickRange returns the voxel span covered by a brick along each
// dimension.  The high side is clipped at the volume boundary, so boundary
// bricks are logically smaller than the brick size even though their
// stored buffers are padded to the full extent.
func (l *VolumeLayout) BrickRange(coords []int64) []VoxelRange {
	ranges := make([]VoxelRange, l.Dimensionality)
	for i, c := range coords {
		bdim := l.BrickSize.Get(i)
		start := c * bdim
		end := start + bdim
		if end > l.Axes[i].NumSamples {
			end = l.Axes[i].NumSamples
		}
		ranges[i] = VoxelRange{start, end}
	}
	return ranges
}

// InBounds returns true if coords has the layout's dimensionality and
// every component is a valid voxel coordinate.
func (l *VolumeLayout) InBounds(coords []int64) bool {
	if len(coords) != l.Dimensionality {
		return false
	}
	for i, c := range coords {
		if c < 0 || c >= l.Axes[i].NumSamples {
			return false
		}
	}
	return true
}

// CheckSlice validates a half-open slice request before any I/O: both
// coordinate lists must match the dimensionality, and along every
// dimension min < max <= num samples.  An empty slice is an error, not a
// no-op.
func (l *VolumeLayout) CheckSlice(minCoords, maxCoords []int64) error {
	if len(minCoords) != l.Dimensionality || len(maxCoords) != l.Dimensionality {
		return fmt.Errorf("%w: slice coordinates have %d/%d components for %d-d volume",
			ErrInvalidDimensions, len(minCoords), len(maxCoords), l.Dimensionality)
	}
	for i := 0; i < l.Dimensionality; i++ {
		if minCoords[i] < 0 || minCoords[i] >= l.Axes[i].NumSamples {
			return fmt.Errorf("%w: min[%d] = %d, axis has %d samples",
				ErrOutOfBounds, i, minCoords[i], l.Axes[i].NumSamples)
		}
		if maxCoords[i] > l.Axes[i].NumSamples {
			return fmt.Errorf("%w: max[%d] = %d, axis has %d samples",
				ErrOutOfBounds, i, maxCoords[i], l.Axes[i].NumSamples)
		}
		if minCoords[i] >= maxCoords[i] {
			return fmt.Errorf("%w: empty slice along dimension %d (min %d, max %d)",
				ErrInvalidDimensions, i, minCoords[i], maxCoords[i])
		}
	}
	return nil
}

// OverlappingBricks returns the linear indices of every brick that
// intersects the half-open slice [minCoords, maxCoords).  The sequence is
// produced in the same row-major enumeration as BrickIndex (last dimension
// innermost), so consumers can rely on a deterministic, ascending order.
func (l *VolumeLayout) OverlappingBricks(minCoords, maxCoords []int64) ([]int64, error) {
	if err := l.CheckSlice(minCoords, maxCoords); err != nil {
		return nil, err
	}
	minBrick := make([]int64, l.Dimensionality)
	maxBrick := make([]int64, l.Dimensionality)
	total := int64(1)
	for i := 0; i < l.Dimensionality; i++ {
		bdim := l.BrickSize.Get(i)
		minBrick[i] = minCoords[i] / bdim
		maxBrick[i] = (maxCoords[i] - 1) / bdim
		total *= maxBrick[i] - minBrick[i] + 1
	}

	indices := make([]int64, 0, total)
	coords := make([]int64, l.Dimensionality)
	copy(coords, minBrick)
	for {
		indices = append(indices, l.BrickIndex(coords))

		// Odometer increment, last dimension fastest.
		dim := l.Dimensionality - 1
		for {
			coords[dim]++
			if coords[dim] <= maxBrick[dim] {
				break
			}
			coords[dim] = minBrick[dim]
			if dim == 0 {
				return indices, nil
			}
			dim--
		}
	}
}

// BrickVoxels returns the voxel count of a full padded brick.
func (l *VolumeLayout) BrickVoxels() int64 {
	return l.BrickSize.Voxels()
}

// BrickBytes returns the byte size of a full padded brick buffer.
func (l *VolumeLayout) BrickBytes() int64 {
	return l.BrickVoxels() * l.DataType.Size()
}

// TotalVoxels returns the logical voxel count of the volume.
func (l *VolumeLayout) TotalVoxels() int64 {
	total := int64(1)
	for _, axis := range l.Axes {
		total *= axis.NumSamples
	}
	return total
}

// TotalBytes returns the uncompressed byte size of the volume.
func (l *VolumeLayout) TotalBytes() int64 {
	return l.TotalVoxels() * l.DataType.Size()
}

// String gives a one-line summary suitable for logs.
func (l *VolumeLayout) String() string {
	dims := make([]string, l.Dimensionality)
	for i, axis := range l.Axes {
		dims[i] = fmt.Sprintf("%d", axis.NumSamples)
	}
	return fmt.Sprintf("%dd volume %s (%s), %d bricks, %s uncompressed",
		l.Dimensionality, strings.Join(dims, " x "), l.DataType,
		l.TotalBricks(), humanize.Bytes(uint64(l.TotalBytes())))
}
