package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig mimics the shape of the reader/writer configuration structs
// that consume this package.
type testConfig struct {
	chunkSize   int
	compression string
	bigEndian   bool
}

func (c *testConfig) setChunkSize(n int) error {
	if n <= 0 {
		return errors.New("chunk size must be positive")
	}
	c.chunkSize = n

	return nil
}

func TestNew(t *testing.T) {
	t.Run("applies and returns nil on success", func(t *testing.T) {
		cfg := &testConfig{}
		opt := New(func(c *testConfig) error { return c.setChunkSize(1 << 16) })

		require.NoError(t, opt.apply(cfg))
		require.Equal(t, 1<<16, cfg.chunkSize)
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		cfg := &testConfig{}
		opt := New(func(c *testConfig) error { return c.setChunkSize(0) })

		err := opt.apply(cfg)
		require.Error(t, err)
		require.Contains(t, err.Error(), "chunk size must be positive")
	})
}

func TestNoError(t *testing.T) {
	cfg := &testConfig{}
	opt := NoError(func(c *testConfig) { c.bigEndian = true })

	require.NoError(t, opt.apply(cfg))
	require.True(t, cfg.bigEndian)
}

func TestApply(t *testing.T) {
	withChunkSize := func(n int) Option[*testConfig] {
		return New(func(c *testConfig) error { return c.setChunkSize(n) })
	}
	withCompression := func(name string) Option[*testConfig] {
		return NoError(func(c *testConfig) { c.compression = name })
	}

	t.Run("applies in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg,
			withChunkSize(4096),
			withCompression("zstd"),
			withCompression("lz4"),
		)

		require.NoError(t, err)
		require.Equal(t, 4096, cfg.chunkSize)
		require.Equal(t, "lz4", cfg.compression, "later options win")
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg,
			withChunkSize(4096),
			withChunkSize(-1),
			withCompression("zstd"),
		)

		require.Error(t, err)
		require.Equal(t, 4096, cfg.chunkSize)
		require.Empty(t, cfg.compression, "options after the failing one must not run")
	})

	t.Run("no options is a no-op", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg))
		require.Equal(t, testConfig{}, *cfg)
	})
}

func TestApplyWithPrimitiveTarget(t *testing.T) {
	var limit int
	opt := NoError(func(n *int) { *n = 8 })

	require.NoError(t, Apply(&limit, opt))
	require.Equal(t, 8, limit)
}
