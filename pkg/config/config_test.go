package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/keyreg/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	// Point XDG at an empty dir so no real user config interferes.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.DefaultCapacity)
	assert.False(t, cfg.StrictIdents)
	assert.Equal(t, 0, cfg.Verbosity)
	assert.Empty(t, cfg.Capacities)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyreg.toml")
	content := `
default_capacity = 16
strict_idents = true

[capacities]
widgets = 256
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.DefaultCapacity)
	assert.True(t, cfg.StrictIdents)
	assert.Equal(t, 256, cfg.CapacityFor("widgets"))
	assert.Equal(t, 16, cfg.CapacityFor("unlisted"))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Setenv("KEYREG_DEFAULT_CAPACITY", "128")
	t.Setenv("KEYREG_STRICT_IDENTS", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.DefaultCapacity)
	assert.True(t, cfg.StrictIdents)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keyreg.toml")
		require.NoError(t, os.WriteFile(path, []byte("default_capacity = ["), 0644))

		_, err := Load(path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})

	t.Run("negative capacity", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keyreg.toml")
		require.NoError(t, os.WriteFile(path, []byte("default_capacity = -1"), 0644))

		_, err := Load(path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})
}

func TestDefaultPath(t *testing.T) {
	assert.Contains(t, DefaultPath(), filepath.Join("keyreg", "keyreg.toml"))
}
