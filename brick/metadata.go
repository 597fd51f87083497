package brick

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/twinj/uuid"
)

// Version tags the metadata document format.  Two volumes are compatible
// iff their major versions match.
type Version struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

// CurrentVersion is the format version written by this implementation.
var CurrentVersion = Version{Major: 3, Minor: 0}

// IsCompatible returns true when other can be read by this version.
func (v Version) IsCompatible(other Version) bool {
	return v.Major == other.Major
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// SurveyMetadata carries seismic survey/acquisition bookkeeping.  Display
// only; the engine never consults it.
type SurveyMetadata struct {
	SurveyName       string     `json:"survey_name"`
	SurveyType       string     `json:"survey_type"`
	AcquisitionDate  *time.Time `json:"acquisition_date,omitempty"`
	ProcessingDate   *time.Time `json:"processing_date,omitempty"`
	Company          string     `json:"company,omitempty"`
	CoordinateSystem string     `json:"coordinate_system,omitempty"`
}

// Metadata is the single source of truth persisted alongside bricks as
// metadata.json at the volume root.  It is owned exclusively by the
// volume.Volume instance that opened or created the volume; mutations go
// through that owner.
type Metadata struct {
	Version Version       `json:"version"`
	UUID    string        `json:"uuid"`
	Layout  *VolumeLayout `json:"layout"`

	// Compression is the method applied to every brick of the volume.
	Compression Compression `json:"compression"`

	// CompressionTolerance is the error tolerance for lossy methods.
	CompressionTolerance float32 `json:"compression_tolerance"`

	ValueRange ValueRange `json:"value_range"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`

	// Attributes is an open string-keyed bag for custom metadata.
	Attributes map[string]string `json:"attributes"`

	Survey *SurveyMetadata `json:"survey,omitempty"`
}

// NewMetadata returns a metadata document for a new volume with Zstd
// compression and fresh timestamps.
func NewMetadata(layout *VolumeLayout) *Metadata {
	now := time.Now().UTC()
	return &Metadata{
		Version:     CurrentVersion,
		UUID:        uuid.NewV4().String(),
		Layout:      layout,
		Compression: Zstd,
		ValueRange:  ValueRange{},
		CreatedAt:   now,
		ModifiedAt:  now,
		Attributes:  make(map[string]string),
	}
}

// WithCompression sets the brick compression method.
func (m *Metadata) WithCompression(method Compression) *Metadata {
	m.Compression = method
	return m
}

// WithValueRange sets the declared value range.
func (m *Metadata) WithValueRange(r ValueRange) *Metadata {
	m.ValueRange = r
	return m
}

// WithSurvey attaches survey metadata.
func (m *Metadata) WithSurvey(s *SurveyMetadata) *Metadata {
	m.Survey = s
	return m
}

// SetAttribute adds or replaces a custom attribute.
func (m *Metadata) SetAttribute(key, value string) {
	if m.Attributes == nil {
		m.Attributes = make(map[string]string)
	}
	m.Attributes[key] = value
}

// GetAttribute returns a custom attribute value.
func (m *Metadata) GetAttribute(key string) (string, bool) {
	value, found := m.Attributes[key]
	return value, found
}

// Touch updates the modification timestamp.  Callers must hold the owning
// volume's write lock.
func (m *Metadata) Touch() {
	m.ModifiedAt = time.Now().UTC()
}

// Validate checks a decoded metadata document for required fields and
// version compatibility.
func (m *Metadata) Validate() error {
	if !CurrentVersion.IsCompatible(m.Version) {
		return fmt.Errorf("%w: volume version %s, this implementation reads %d.x",
			ErrUnsupportedVersion, m.Version, CurrentVersion.Major)
	}
	if m.Layout == nil {
		return fmt.Errorf("%w: layout", ErrMissingField)
	}
	if err := m.Layout.Validate(); err != nil {
		return err
	}
	if _, found := compressionNames[m.Compression]; !found {
		return fmt.Errorf("%w: unknown compression method %d",
			ErrInvalidFormat, uint8(m.Compression))
	}
	return nil
}

// MarshalDocument serializes the metadata document for persistence.
func (m *Metadata) MarshalDocument() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	return data, nil
}

// UnmarshalDocument parses and validates a persisted metadata document.
func UnmarshalDocument(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Clone returns a deep copy so callers can hand out metadata without
// exposing the owner's mutable state.
func (m *Metadata) Clone() *Metadata {
	dup := *m
	if m.Layout != nil {
		layout := *m.Layout
		layout.Axes = make([]AxisDescriptor, len(m.Layout.Axes))
		copy(layout.Axes, m.Layout.Axes)
		dup.Layout = &layout
	}
	if m.Attributes != nil {
		dup.Attributes = make(map[string]string, len(m.Attributes))
		for k, v := range m.Attributes {
			dup.Attributes[k] = v
		}
	}
	if m.Survey != nil {
		survey := *m.Survey
		dup.Survey = &survey
	}
	return &dup
}
