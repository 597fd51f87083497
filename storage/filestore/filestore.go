/*
	Package filestore implements the file-scheme storage backend: a Store
	that maps backend-relative paths onto a base directory in the local
	filesystem.  Parent directories are created transparently on write.
*/
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/blang/semver"

	"github.com/janelia-flyem/brickvol/brick"
	"github.com/janelia-flyem/brickvol/storage"
)

func init() {
	ver, err := semver.Make("1.0.0")
	if err != nil {
		brick.Errorf("Unable to make semver in filestore: %v\n", err)
	}
	storage.RegisterEngine(storage.FileSystem, storage.Engine{
		Name:        "filestore",
		Description: "File-based backend for volume bricks and metadata",
		Version:     ver,
		Open: func(location string) (storage.Store, error) {
			return NewStore(location)
		},
	})
}

type fileStore struct {
	basePath string
}

// NewStore returns a file-backed Store rooted at basePath, creating the
// directory if needed.
func NewStore(basePath string) (storage.Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: filestore needs a base path", brick.ErrConfiguration)
	}
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		brick.Infof("File store not already at path (%s). Creating ...\n", basePath)
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", brick.ErrStorage, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", brick.ErrStorage, err)
	}
	return &fileStore{basePath: basePath}, nil
}

func (s *fileStore) String() string {
	return fmt.Sprintf("file store @ %s", s.basePath)
}

func (s *fileStore) fullPath(path string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(path))
}

func (s *fileStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.fullPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", brick.ErrNotFound, path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", brick.ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", brick.ErrStorage, path, err)
	}
	return data, nil
}

// Write stores data via a temp file and rename so concurrent readers see
// either the old bytes or the new, never a truncated file.
func (s *fileStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fpath := s.fullPath(path)
	dir := filepath.Dir(fpath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: writing %s: %v", brick.ErrStorage, path, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(fpath)+".tmp*")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", brick.ErrPermissionDenied, path)
		}
		return fmt.Errorf("%w: writing %s: %v", brick.ErrStorage, path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing %s: %v", brick.ErrStorage, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing %s: %v", brick.ErrStorage, path, err)
	}
	if err := os.Rename(tmp.Name(), fpath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing %s: %v", brick.ErrStorage, path, err)
	}
	return nil
}

func (s *fileStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.fullPath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat %s: %v", brick.ErrStorage, path, err)
}

func (s *fileStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.fullPath(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", brick.ErrNotFound, path)
		}
		return fmt.Errorf("%w: deleting %s: %v", brick.ErrStorage, path, err)
	}
	return nil
}

func (s *fileStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := s.fullPath(prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %v", brick.ErrStorage, prefix, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (s *fileStore) Size(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := os.Stat(s.fullPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", brick.ErrNotFound, path)
		}
		return 0, fmt.Errorf("%w: stat %s: %v", brick.ErrStorage, path, err)
	}
	return info.Size(), nil
}

func (s *fileStore) Kind() storage.Kind {
	return storage.FileSystem
}

func (s *fileStore) Close() {}
