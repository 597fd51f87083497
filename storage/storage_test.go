package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janelia-flyem/brickvol/brick"
)

func TestKindFromURL(t *testing.T) {
	cases := []struct {
		url      string
		kind     Kind
		location string
	}{
		{"file:///data/volumes/survey1", FileSystem, "/data/volumes/survey1"},
		{"/data/volumes/survey1", FileSystem, "/data/volumes/survey1"},
		{"relative/path", FileSystem, "relative/path"},
		{"s3://bucket/prefix", S3, "bucket/prefix"},
		{"azure://container/blob", Azure, "container/blob"},
		{"azureSAS://container/blob", Azure, "container/blob"},
		{"gs://bucket/object", GCS, "bucket/object"},
		{"sd://tenant/subproject", SeismicDMS, "tenant/subproject"},
	}
	for _, c := range cases {
		kind, location, err := KindFromURL(c.url)
		require.NoError(t, err, c.url)
		require.Equal(t, c.kind, kind, c.url)
		require.Equal(t, c.location, location, c.url)
	}
}

func TestKindFromURLRejectsUnknownScheme(t *testing.T) {
	_, _, err := KindFromURL("ftp://host/path")
	require.ErrorIs(t, err, brick.ErrInvalidURL)
}

func TestOpenUnregisteredBackend(t *testing.T) {
	// No s3 engine registers in-core, so selecting one is a configuration
	// error that names the missing backend.
	_, err := Open("s3://bucket/prefix")
	require.ErrorIs(t, err, brick.ErrConfiguration)
	require.Contains(t, err.Error(), "s3")
}

func TestOpenBadURL(t *testing.T) {
	_, err := Open("bogus://x")
	require.ErrorIs(t, err, brick.ErrInvalidURL)
}

func TestEngineRegistry(t *testing.T) {
	_, found := EngineFor(SeismicDMS)
	require.False(t, found)

	RegisterEngine(SeismicDMS, Engine{
		Name: "test-sdms",
		Open: func(location string) (Store, error) { return nil, nil },
	})
	e, found := EngineFor(SeismicDMS)
	require.True(t, found)
	require.Equal(t, "test-sdms", e.Name)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "filesystem", FileSystem.String())
	require.Equal(t, "s3", S3.String())
	require.Equal(t, "seismic-dms", SeismicDMS.String())
}
