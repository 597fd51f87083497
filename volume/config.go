package volume

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/brickvol/brick"
)

// Config holds volume access settings loadable from a TOML file, e.g.:
//
//	compression_level = 6
//	cache_mb = 256
//
//	[log]
//	logfile = "/var/log/brickvol.log"
//	max_log_size = 500
//	max_log_age = 30
type Config struct {
	// CompressionLevel is the effort used when recompressing bricks on
	// write, clamped to [0,9].
	CompressionLevel int `toml:"compression_level"`

	// CacheMB sizes the in-memory decompressed-brick cache in megabytes.
	// Zero disables the cache.
	CacheMB int `toml:"cache_mb"`

	Log brick.LogConfig `toml:"log"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		CompressionLevel: int(brick.DefaultCompressionLevel),
	}
}

// LoadConfig reads settings from a TOML file.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return c, fmt.Errorf("%w: reading config %q: %v", brick.ErrConfiguration, path, err)
	}
	return c, nil
}

// Options translates the config into Open/Create options and installs the
// configured logger.
func (c Config) Options() []Option {
	c.Log.SetLogger()
	return []Option{
		WithCompressionLevel(c.CompressionLevel),
		WithCacheSize(c.CacheMB),
	}
}

type settings struct {
	level      brick.CompressionLevel
	cacheBytes int
}

// Option adjusts per-instance volume settings at Open or Create.
type Option func(*settings)

// WithCompressionLevel sets the write-path compression effort, clamped to
// [0,9].
func WithCompressionLevel(level int) Option {
	return func(s *settings) {
		s.level = brick.NewCompressionLevel(level)
	}
}

// WithCacheSize enables a decompressed-brick read cache of the given size
// in megabytes.  Zero or negative disables caching.
func WithCacheSize(megabytes int) Option {
	return func(s *settings) {
		if megabytes > 0 {
			s.cacheBytes = megabytes << 20
		} else {
			s.cacheBytes = 0
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{
		level: brick.DefaultCompressionLevel,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
