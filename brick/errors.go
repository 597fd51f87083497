package brick

import "errors"

// Sentinel errors for the failure kinds surfaced by this module.  Callers
// should test with errors.Is since most call sites wrap these with context
// via fmt.Errorf and %w.
var (
	// ErrInvalidFormat signals a malformed or unsupported volume format.
	ErrInvalidFormat = errors.New("invalid volume format")

	// ErrUnsupportedVersion signals a metadata document whose major
	// version differs from this implementation's.
	ErrUnsupportedVersion = errors.New("unsupported volume version")

	// ErrCompression signals a failure while compressing brick data.
	ErrCompression = errors.New("compression failed")

	// ErrDecompression signals a failure while decompressing brick data.
	ErrDecompression = errors.New("decompression failed")

	// ErrInvalidDimensions signals a shape mismatch: wrong coordinate
	// lengths, a degenerate slice, or dimensionality outside [1,6].
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrOutOfBounds signals coordinates outside the volume extents.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrStorage wraps an underlying storage backend failure.
	ErrStorage = errors.New("storage backend error")

	// ErrMetadata signals a metadata parse or serialize failure.
	ErrMetadata = errors.New("metadata error")

	// ErrMissingField signals a metadata document lacking a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrNotFound signals a path absent from the backend.  Note a missing
	// brick is not an error (it reads as zero); a missing metadata
	// document is.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists signals creation over an existing volume.
	ErrAlreadyExists = errors.New("already exists")

	// ErrPermissionDenied signals an authorization failure from a backend.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNetwork signals a transport failure from a networked backend.
	ErrNetwork = errors.New("network error")

	// ErrTimeout signals an operation exceeding its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrInvalidURL signals an unparseable volume URL or unknown scheme.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrConfiguration signals a configuration problem, e.g. selecting a
	// backend scheme with no registered engine.
	ErrConfiguration = errors.New("configuration error")
)
