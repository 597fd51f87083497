package brick

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLayout(t *testing.T) *VolumeLayout {
	t.Helper()
	axes := []AxisDescriptor{
		NewAxis(100, "Inline", "trace", 0, 99),
		NewAxis(100, "Crossline", "trace", 0, 99),
		NewAxis(100, "Depth", "m", 0, 500),
	}
	layout, err := NewVolumeLayout(3, F32, axes)
	require.NoError(t, err)
	return layout
}

func TestVersionCompatibility(t *testing.T) {
	require.True(t, CurrentVersion.IsCompatible(Version{Major: 3, Minor: 0}))
	require.True(t, CurrentVersion.IsCompatible(Version{Major: 3, Minor: 7}))
	require.False(t, CurrentVersion.IsCompatible(Version{Major: 2, Minor: 0}))
	require.False(t, CurrentVersion.IsCompatible(Version{Major: 4, Minor: 0}))
	require.Equal(t, "3.0", CurrentVersion.String())
}

func TestNewMetadataDefaults(t *testing.T) {
	m := NewMetadata(testLayout(t))
	require.Equal(t, CurrentVersion, m.Version)
	require.NotEmpty(t, m.UUID)
	require.Equal(t, Zstd, m.Compression)
	require.False(t, m.CreatedAt.IsZero())
	require.Equal(t, m.CreatedAt, m.ModifiedAt)
	require.NoError(t, m.Validate())

	// Each volume gets a distinct identity.
	m2 := NewMetadata(testLayout(t))
	require.NotEqual(t, m.UUID, m2.UUID)
}

func TestMetadataDocumentRoundTrip(t *testing.T) {
	m := NewMetadata(testLayout(t)).
		WithCompression(Deflate).
		WithValueRange(ValueRange{Min: -1.5, Max: 2.5}).
		WithSurvey(&SurveyMetadata{SurveyName: "North Sea 2024", SurveyType: "3D"})
	m.SetAttribute("operator", "acme")

	data, err := m.MarshalDocument()
	require.NoError(t, err)

	// Enum fields persist by name.
	doc := string(data)
	require.True(t, strings.Contains(doc, `"Deflate"`))
	require.True(t, strings.Contains(doc, `"F32"`))

	restored, err := UnmarshalDocument(data)
	require.NoError(t, err)
	require.Equal(t, m.UUID, restored.UUID)
	require.Equal(t, Deflate, restored.Compression)
	require.Equal(t, ValueRange{Min: -1.5, Max: 2.5}, restored.ValueRange)
	require.Equal(t, m.Layout.Size(), restored.Layout.Size())
	require.Equal(t, "North Sea 2024", restored.Survey.SurveyName)
	value, found := restored.GetAttribute("operator")
	require.True(t, found)
	require.Equal(t, "acme", value)
}

func TestMetadataValidation(t *testing.T) {
	m := NewMetadata(testLayout(t))

	m.Version = Version{Major: 2, Minor: 9}
	require.ErrorIs(t, m.Validate(), ErrUnsupportedVersion)

	m = NewMetadata(testLayout(t))
	m.Layout = nil
	require.ErrorIs(t, m.Validate(), ErrMissingField)

	m = NewMetadata(testLayout(t))
	m.Compression = Compression(200)
	require.ErrorIs(t, m.Validate(), ErrInvalidFormat)

	_, err := UnmarshalDocument([]byte(`{not json`))
	require.ErrorIs(t, err, ErrMetadata)
}

func TestMetadataTouch(t *testing.T) {
	m := NewMetadata(testLayout(t))
	before := m.ModifiedAt
	m.Touch()
	require.False(t, m.ModifiedAt.Before(before))
}

func TestMetadataClone(t *testing.T) {
	m := NewMetadata(testLayout(t)).WithSurvey(&SurveyMetadata{SurveyName: "orig"})
	m.SetAttribute("k", "v")

	dup := m.Clone()
	dup.SetAttribute("k", "changed")
	dup.Layout.Axes[0].Name = "changed"
	dup.Survey.SurveyName = "changed"

	value, _ := m.GetAttribute("k")
	require.Equal(t, "v", value)
	require.Equal(t, "Inline", m.Layout.Axes[0].Name)
	require.Equal(t, "orig", m.Survey.SurveyName)
}

func TestDataTypeSizes(t *testing.T) {
	sizes := map[DataType]int64{
		U1: 1, U8: 1, I8: 1,
		U16: 2, I16: 2,
		U32: 4, I32: 4, F32: 4,
		U64: 8, I64: 8, F64: 8,
	}
	for dt, want := range sizes {
		require.Equal(t, want, dt.Size(), "%s", dt)
	}
	require.True(t, F32.IsFloat())
	require.True(t, F64.IsFloat())
	require.False(t, U32.IsFloat())
}

func TestAxisCoordinateMapping(t *testing.T) {
	axis := NewAxis(101, "Depth", "m", 0, 1000)
	require.Equal(t, float64(10), axis.StepSize())
	require.Equal(t, float64(0), axis.IndexToCoord(0))
	require.Equal(t, float64(500), axis.IndexToCoord(50))
	require.Equal(t, float64(1000), axis.IndexToCoord(100))

	require.Equal(t, int64(50), axis.CoordToIndex(500))
	require.Equal(t, int64(50), axis.CoordToIndex(503))
	require.Equal(t, int64(0), axis.CoordToIndex(-999))
	require.Equal(t, int64(100), axis.CoordToIndex(99999))

	single := NewAxis(1, "t", "s", 5, 5)
	require.Equal(t, float64(0), single.StepSize())
	require.Equal(t, int64(0), single.CoordToIndex(42))
}

func TestValueRange(t *testing.T) {
	require.True(t, ValueRange{Min: -1, Max: 1}.IsValid())
	require.True(t, ValueRange{}.IsValid())
	require.False(t, ValueRange{Min: 2, Max: 1}.IsValid())
}
