package brick

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the method used to compress brick buffers.
// The numeric values are persisted in metadata documents; values 0-4
// match the original format and must not be renumbered.
type Compression uint8

const (
	// Uncompressed stores brick buffers verbatim.
	Uncompressed Compression = 0

	// Deflate is DEFLATE (zip-class) compression.
	Deflate Compression = 1

	// RLE is byte run-length encoding with (count, value) pairs and runs
	// capped at 255.
	RLE Compression = 2

	// Zstd is Zstandard compression.
	Zstd Compression = 3

	// Wavelet is a reserved proprietary method.  It round-trips through
	// the enumeration but its codec is an identity stub.
	Wavelet Compression = 4

	// Snappy is Google snappy compression.
	Snappy Compression = 5
)

var compressionNames = map[Compression]string{
	Uncompressed: "None",
	Deflate:      "Deflate",
	RLE:          "RLE",
	Zstd:         "Zstd",
	Wavelet:      "Wavelet",
	Snappy:       "Snappy",
}

var compressionValues = map[string]Compression{
	"None": Uncompressed, "Deflate": Deflate, "RLE": RLE,
	"Zstd": Zstd, "Wavelet": Wavelet, "Snappy": Snappy,
}

func (c Compression) String() string {
	if name, found := compressionNames[c]; found {
		return name
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// CompressionFromString returns the method named by s, e.g. from a config
// file.
func CompressionFromString(s string) (Compression, error) {
	c, found := compressionValues[s]
	if !found {
		return 0, fmt.Errorf("%w: unknown compression method %q", ErrConfiguration, s)
	}
	return c, nil
}

// MarshalJSON persists the method by name.
func (c Compression) MarshalJSON() ([]byte, error) {
	name, found := compressionNames[c]
	if !found {
		return nil, fmt.Errorf("%w: cannot marshal compression %d", ErrInvalidFormat, uint8(c))
	}
	return json.Marshal(name)
}

func (c *Compression) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	value, found := compressionValues[name]
	if !found {
		return fmt.Errorf("%w: unknown compression method %q", ErrInvalidFormat, name)
	}
	*c = value
	return nil
}

// CompressionLevel is the effort setting for compression, 0 through 9.
// Levels are clamped on construction; decompression never depends on the
// level used to compress.
type CompressionLevel uint8

// DefaultCompressionLevel is a balanced effort setting.
const DefaultCompressionLevel CompressionLevel = 6

// NewCompressionLevel clamps level to the valid [0,9] range.
func NewCompressionLevel(level int) CompressionLevel {
	if level < 0 {
		return 0
	}
	if level > 9 {
		return 9
	}
	return CompressionLevel(level)
}

// Compressor is the codec capability: a stateless compress/decompress pair
// for one method.  Implementations must be safe for concurrent use.
type Compressor interface {
	// Compress returns a compressed copy of data at the given level.
	Compress(data []byte, level CompressionLevel) ([]byte, error)

	// Decompress returns the original bytes.  sizeHint, when positive,
	// is the expected decompressed size and is used only for allocation.
	Decompress(data []byte, sizeHint int) ([]byte, error)

	// Method returns the method identifier for this codec.
	Method() Compression
}

// NewCompressor returns the codec for a method.  Wavelet yields an
// identity stub that still reports the Wavelet method.
func NewCompressor(method Compression) (Compressor, error) {
	switch method {
	case Uncompressed:
		return noneCompressor{Uncompressed}, nil
	case Deflate:
		return deflateCompressor{}, nil
	case RLE:
		return rleCompressor{}, nil
	case Zstd:
		return zstdCompressor{}, nil
	case Wavelet:
		return noneCompressor{Wavelet}, nil
	case Snappy:
		return snappyCompressor{}, nil
	default:
		return nil, fmt.Errorf("%w: no codec for compression method %d",
			ErrConfiguration, uint8(method))
	}
}

// --- identity ---

type noneCompressor struct {
	method Compression
}

func (c noneCompressor) Compress(data []byte, _ CompressionLevel) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c noneCompressor) Decompress(data []byte, _ int) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c noneCompressor) Method() Compression { return c.method }

// --- deflate ---

type deflateCompressor struct{}

func (deflateCompressor) Compress(data []byte, level CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, int(level))
	if err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", ErrCompression, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", ErrCompression, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", ErrCompression, err)
	}
	return buf.Bytes(), nil
}

func (deflateCompressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	var buf bytes.Buffer
	if sizeHint > 0 {
		buf.Grow(sizeHint)
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", ErrDecompression, err)
	}
	return buf.Bytes(), nil
}

func (deflateCompressor) Method() Compression { return Deflate }

// --- zstd ---

type zstdCompressor struct{}

func (zstdCompressor) Compress(data []byte, level CompressionLevel) ([]byte, error) {
	zlevel := zstd.EncoderLevelFromZstd(int(level))
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zlevel))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
	}
	return out, nil
}

func (zstdCompressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompression, err)
	}
	defer dec.Close()
	var dst []byte
	if sizeHint > 0 {
		dst = make([]byte, 0, sizeHint)
	}
	out, err := dec.DecodeAll(data, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompression, err)
	}
	return out, nil
}

func (zstdCompressor) Method() Compression { return Zstd }

// --- snappy ---

type snappyCompressor struct{}

func (snappyCompressor) Compress(data []byte, _ CompressionLevel) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCompressor) Decompress(data []byte, _ int) ([]byte, error) {
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %v", ErrDecompression, err)
	}
	return out, nil
}

func (snappyCompressor) Method() Compression { return Snappy }

// --- run-length encoding ---

type rleCompressor struct{}

func (rleCompressor) Compress(data []byte, _ CompressionLevel) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	out := make([]byte, 0, len(data)/2+2)
	i := 0
	for i < len(data) {
		value := data[i]
		count := 1
		for i+count < len(data) && data[i+count] == value && count < 255 {
			count++
		}
		out = append(out, byte(count), value)
		i += count
	}
	return out, nil
}

func (rleCompressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: RLE data must have even length, got %d",
			ErrDecompression, len(data))
	}
	if sizeHint <= 0 {
		sizeHint = len(data)
	}
	out := make([]byte, 0, sizeHint)
	for i := 0; i < len(data); i += 2 {
		count := int(data[i])
		value := data[i+1]
		for j := 0; j < count; j++ {
			out = append(out, value)
		}
	}
	return out, nil
}

func (rleCompressor) Method() Compression { return RLE }
