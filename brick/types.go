package brick

import (
	"encoding/json"
	"fmt"
	"math"
)

// DataType is the fixed-width numeric kind of a volume's elements.
// The numeric values are persisted in metadata documents and must stay
// stable.
type DataType uint8

const (
	// U1 is a 1-bit boolean, stored as full bytes.
	U1 DataType = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
)

var dataTypeNames = map[DataType]string{
	U1: "U1", U8: "U8", U16: "U16", U32: "U32", U64: "U64",
	I8: "I8", I16: "I16", I32: "I32", I64: "I64", F32: "F32", F64: "F64",
}

var dataTypeValues = map[string]DataType{
	"U1": U1, "U8": U8, "U16": U16, "U32": U32, "U64": U64,
	"I8": I8, "I16": I16, "I32": I32, "I64": I64, "F32": F32, "F64": F64,
}

// Size returns the element width in bytes.
func (t DataType) Size() int64 {
	switch t {
	case U1, U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	default:
		return 0
	}
}

// IsFloat returns true for the floating-point kinds.
func (t DataType) IsFloat() bool {
	return t == F32 || t == F64
}

func (t DataType) String() string {
	if name, found := dataTypeNames[t]; found {
		return name
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// MarshalJSON persists the data type by name so metadata documents stay
// readable across implementations.
func (t DataType) MarshalJSON() ([]byte, error) {
	name, found := dataTypeNames[t]
	if !found {
		return nil, fmt.Errorf("%w: cannot marshal data type %d", ErrInvalidFormat, uint8(t))
	}
	return json.Marshal(name)
}

func (t *DataType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	value, found := dataTypeValues[name]
	if !found {
		return fmt.Errorf("%w: unknown data type %q", ErrInvalidFormat, name)
	}
	*t = value
	return nil
}

// AxisDescriptor describes one dimension of a volume: its sample count and
// the physical coordinate range it spans.  Name and unit are display only.
type AxisDescriptor struct {
	NumSamples int64   `json:"num_samples"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	CoordMin   float64 `json:"coord_min"`
	CoordMax   float64 `json:"coord_max"`
}

// NewAxis returns an axis descriptor.
func NewAxis(numSamples int64, name, unit string, coordMin, coordMax float64) AxisDescriptor {
	return AxisDescriptor{
		NumSamples: numSamples,
		Name:       name,
		Unit:       unit,
		CoordMin:   coordMin,
		CoordMax:   coordMax,
	}
}

// StepSize returns the physical distance between adjacent samples.
func (a AxisDescriptor) StepSize() float64 {
	if a.NumSamples <= 1 {
		return 0
	}
	return (a.CoordMax - a.CoordMin) / float64(a.NumSamples-1)
}

// IndexToCoord maps a sample index to its physical coordinate.
func (a AxisDescriptor) IndexToCoord(index int64) float64 {
	return a.CoordMin + float64(index)*a.StepSize()
}

// CoordToIndex maps a physical coordinate to the nearest sample index,
// clamped to the valid range.
func (a AxisDescriptor) CoordToIndex(coord float64) int64 {
	step := a.StepSize()
	if step == 0 {
		return 0
	}
	index := int64((coord-a.CoordMin)/step + 0.5)
	if index < 0 {
		return 0
	}
	if index >= a.NumSamples {
		return a.NumSamples - 1
	}
	return index
}

// ValueRange declares the min/max element values of a volume.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IsValid returns true if the range is finite and ordered.
func (r ValueRange) IsValid() bool {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return false
	}
	return r.Min <= r.Max
}
