/*
	Package volume implements the access orchestrator for bricked volumes:
	opening and creating volumes against a storage backend, and the
	concurrent slice read/write data path that stitches brick-aligned,
	independently compressed chunks into arbitrary axis-aligned
	sub-volumes.
*/
package volume

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/brickvol/brick"
	"github.com/janelia-flyem/brickvol/storage"

	// The file-scheme backend is the only one implemented in-core.
	_ "github.com/janelia-flyem/brickvol/storage/filestore"
)

// Volume is an open bricked volume.  It owns the metadata document it
// opened or created; all metadata mutation goes through this owner under
// its reader-writer lock.  The storage handle is shared read-only across
// all concurrent brick operations.
type Volume struct {
	url   string
	store storage.Store

	mu        sync.RWMutex // guards meta and metaDirty
	meta      *brick.Metadata
	metaDirty bool

	compressor brick.Compressor
	level      brick.CompressionLevel

	locks *brickLocks
	cache *brickCache
}

// Open reads and validates the metadata document of an existing volume.
// A missing metadata document is an error even though missing bricks are
// not.
func Open(ctx context.Context, url string, opts ...Option) (*Volume, error) {
	settings := applyOptions(opts)
	store, err := storage.Open(url)
	if err != nil {
		return nil, err
	}
	data, err := store.Read(ctx, brick.MetadataPath)
	if err != nil {
		store.Close()
		if errors.Is(err, brick.ErrNotFound) {
			return nil, fmt.Errorf("%w: no metadata document at %q", brick.ErrNotFound, url)
		}
		return nil, err
	}
	meta, err := brick.UnmarshalDocument(data)
	if err != nil {
		store.Close()
		return nil, err
	}
	v, err := newVolume(url, store, meta, settings)
	if err != nil {
		store.Close()
		return nil, err
	}
	brick.Infof("Opened volume %s: %s\n", url, meta.Layout)
	return v, nil
}

// Create writes the metadata document for a new volume before any brick
// I/O.  Creating over an existing volume fails with an already-exists
// error.
func Create(ctx context.Context, url string, meta *brick.Metadata, opts ...Option) (*Volume, error) {
	if meta == nil {
		return nil, fmt.Errorf("%w: metadata", brick.ErrMissingField)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	settings := applyOptions(opts)
	store, err := storage.Open(url)
	if err != nil {
		return nil, err
	}
	exists, err := store.Exists(ctx, brick.MetadataPath)
	if err != nil {
		store.Close()
		return nil, err
	}
	if exists {
		store.Close()
		return nil, fmt.Errorf("%w: volume at %q", brick.ErrAlreadyExists, url)
	}
	doc, err := meta.MarshalDocument()
	if err != nil {
		store.Close()
		return nil, err
	}
	if err := store.Write(ctx, brick.MetadataPath, doc); err != nil {
		store.Close()
		return nil, err
	}
	v, err := newVolume(url, store, meta, settings)
	if err != nil {
		store.Close()
		return nil, err
	}
	brick.Infof("Created volume %s: %s\n", url, meta.Layout)
	return v, nil
}

func newVolume(url string, store storage.Store, meta *brick.Metadata, s settings) (*Volume, error) {
	compressor, err := brick.NewCompressor(meta.Compression)
	if err != nil {
		return nil, err
	}
	return &Volume{
		url:        url,
		store:      store,
		meta:       meta,
		compressor: compressor,
		level:      s.level,
		locks:      newBrickLocks(),
		cache:      newBrickCache(s.cacheBytes),
	}, nil
}

// Metadata returns a deep copy of the volume's metadata document.
func (v *Volume) Metadata() *brick.Metadata {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.Clone()
}

// Layout returns the volume layout.  Layouts are immutable once
// published, so the shared pointer is safe for concurrent readers.
func (v *Volume) Layout() *brick.VolumeLayout {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.Layout
}

// touch updates the modification timestamp under the metadata write lock
// and marks the document for persistence on Close.
func (v *Volume) touch() {
	v.mu.Lock()
	v.meta.Touch()
	v.metaDirty = true
	v.mu.Unlock()
}

// Close persists a touched metadata document and releases the backend.
func (v *Volume) Close(ctx context.Context) error {
	v.mu.Lock()
	dirty := v.metaDirty
	var doc []byte
	var err error
	if dirty {
		doc, err = v.meta.MarshalDocument()
		v.metaDirty = false
	}
	v.mu.Unlock()
	if err != nil {
		v.store.Close()
		return err
	}
	if dirty {
		if werr := v.store.Write(ctx, brick.MetadataPath, doc); werr != nil {
			v.store.Close()
			return werr
		}
	}
	v.store.Close()
	return nil
}

// Stats summarizes a volume.
type Stats struct {
	Dimensionality    int               `json:"dimensionality"`
	TotalVoxels       int64             `json:"total_voxels"`
	TotalBricks       int64             `json:"total_bricks"`
	UncompressedSize  int64             `json:"uncompressed_size"`
	DataType          brick.DataType    `json:"data_type"`
	CompressionMethod brick.Compression `json:"compression_method"`
}

// GetStats returns summary statistics for the volume.
func (v *Volume) GetStats() Stats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	layout := v.meta.Layout
	return Stats{
		Dimensionality:    layout.Dimensionality,
		TotalVoxels:       layout.TotalVoxels(),
		TotalBricks:       layout.TotalBricks(),
		UncompressedSize:  layout.TotalBytes(),
		DataType:          layout.DataType,
		CompressionMethod: v.meta.Compression,
	}
}

// Summary gives a human-readable one-liner of the stats.
func (s Stats) Summary() string {
	return fmt.Sprintf("%dd volume: %d voxels, %d bricks, %s uncompressed (%s, %s)",
		s.Dimensionality, s.TotalVoxels, s.TotalBricks,
		humanize.Bytes(uint64(s.UncompressedSize)), s.DataType, s.CompressionMethod)
}
