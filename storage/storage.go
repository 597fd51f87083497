/*
	Package storage provides a unified interface to key-addressed byte
	storage backends.  Paths are backend-relative strings, not filesystem
	paths; interpretation is up to the backend.  Values are simply []byte
	at this level -- compression and brick semantics live above storage.

	Backends are selected by the scheme of a volume URL.  Each backend
	registers an Engine; only the file scheme is implemented in-core, and
	selecting an unregistered scheme fails with a configuration error so
	networked backends can be supplied by consuming applications.
*/
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blang/semver"

	"github.com/janelia-flyem/brickvol/brick"
)

// Kind identifies a class of storage backend.
type Kind uint8

const (
	FileSystem Kind = iota
	S3
	Azure
	GCS
	SeismicDMS
)

func (k Kind) String() string {
	switch k {
	case FileSystem:
		return "filesystem"
	case S3:
		return "s3"
	case Azure:
		return "azure"
	case GCS:
		return "gcs"
	case SeismicDMS:
		return "seismic-dms"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// KindFromURL parses the scheme of a volume URL and returns the backend
// kind plus the backend-specific location (everything after "scheme://").
// A URL without a scheme is treated as a filesystem path.
func KindFromURL(url string) (Kind, string, error) {
	schemeEnd := strings.Index(url, "://")
	if schemeEnd < 0 {
		return FileSystem, url, nil
	}
	scheme := url[:schemeEnd]
	location := url[schemeEnd+3:]
	switch scheme {
	case "file":
		return FileSystem, location, nil
	case "s3":
		return S3, location, nil
	case "azure", "azureSAS":
		return Azure, location, nil
	case "gs":
		return GCS, location, nil
	case "sd":
		return SeismicDMS, location, nil
	default:
		return 0, "", fmt.Errorf("%w: unknown scheme %q in %q", brick.ErrInvalidURL, scheme, url)
	}
}

// Store is the backend capability: key-addressed byte storage.
// Implementations must be safe for concurrent use from multiple
// goroutines, and should honor context cancellation on I/O methods.
type Store interface {
	// Read returns the bytes at path.  A missing path fails with
	// brick.ErrNotFound rather than returning empty data.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores data at path, overwriting any previous value.
	Write(ctx context.Context, path string, data []byte) error

	// Exists reports whether path holds data.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the data at path.
	Delete(ctx context.Context, path string) error

	// List returns the entry names under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Size returns the byte size of the data at path.
	Size(ctx context.Context, path string) (int64, error)

	// Kind returns the backend kind.
	Kind() Kind

	// Close releases backend resources.
	Close()
}

// Engine describes a registered backend implementation and knows how to
// open a Store at a backend-specific location.
type Engine struct {
	Name        string
	Description string
	Version     semver.Version
	Open        func(location string) (Store, error)
}

func (e Engine) String() string {
	return fmt.Sprintf("%s [%s]", e.Name, e.Version)
}

var (
	enginesMu sync.RWMutex
	engines   = make(map[Kind]Engine)
)

// RegisterEngine makes a backend available for its kind.  In-core engines
// register themselves in init(); applications register networked backends
// the same way before opening volumes.
func RegisterEngine(kind Kind, e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	if prev, found := engines[kind]; found {
		brick.Warningf("Storage engine %s replaces %s for %s backends\n", e, prev, kind)
	}
	engines[kind] = e
}

// EngineFor returns the registered engine for a kind.
func EngineFor(kind Kind) (Engine, bool) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	e, found := engines[kind]
	return e, found
}

// Open selects a backend by the URL scheme and opens a Store.  Selecting a
// scheme with no registered engine fails with a configuration error naming
// the missing backend.
func Open(url string) (Store, error) {
	kind, location, err := KindFromURL(url)
	if err != nil {
		return nil, err
	}
	e, found := EngineFor(kind)
	if !found {
		return nil, fmt.Errorf("%w: no storage engine registered for %s backend (url %q)",
			brick.ErrConfiguration, kind, url)
	}
	store, err := e.Open(location)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s backend: %v", brick.ErrStorage, kind, err)
	}
	return store, nil
}
