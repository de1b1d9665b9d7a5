package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/keyreg/pkg/errors"
	"github.com/arthur-debert/keyreg/pkg/registry"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeManifest(t, "items.yaml", `
name: widgets
items:
  - ident: "widget:lamp"
    payload:
      power: 60
  - ident: "widget:fan"
    key: "widget:fan"
    payload:
      power: 45
`)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "widgets", m.Name)
	require.Len(t, m.Items, 2)
	assert.Equal(t, "widget:lamp", m.Items[0].Ident)
	require.NotNil(t, m.Items[1].Key)
	assert.Equal(t, registry.GlobalKeyOf("widget:fan"), *m.Items[1].Key)
}

func TestLoadTOML(t *testing.T) {
	path := writeManifest(t, "items.toml", `
name = "widgets"

[[items]]
ident = "widget:lamp"
payload = { power = 60 }

[[items]]
ident = "widget:fan"
key = "widget:fan"
payload = { power = 45 }

[[items]]
ident = "widget:heater"
key = { ident = "widget:heater" }
`)

	m, err := Load(path)
	require.NoError(t, err)

	require.Len(t, m.Items, 3)
	require.NotNil(t, m.Items[1].Key)
	assert.Equal(t, registry.GlobalKeyOf("widget:fan"), *m.Items[1].Key)
	require.NotNil(t, m.Items[2].Key)
	assert.Equal(t, registry.GlobalKeyOf("widget:heater"), *m.Items[2].Key)
	assert.Equal(t, int64(60), m.Items[0].Payload["power"])
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestLoad))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeManifest(t, "items.json", `{}`)
		_, err := Load(path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestLoad))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeManifest(t, "items.yaml", "items: [")
		_, err := Load(path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
	})

	t.Run("item without ident", func(t *testing.T) {
		path := writeManifest(t, "items.yaml", `
items:
  - payload:
      power: 60
`)
		_, err := Load(path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
	})

	t.Run("mismatched key pin", func(t *testing.T) {
		path := writeManifest(t, "items.yaml", `
items:
  - ident: "widget:lamp"
    key: "widget:renamed"
`)
		_, err := Load(path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
	})
}

func TestApply(t *testing.T) {
	path := writeManifest(t, "items.yaml", `
items:
  - ident: "widget:lamp"
    payload:
      power: 60
  - ident: "widget:fan"
    payload:
      power: 45
`)
	m, err := Load(path)
	require.NoError(t, err)

	reg := registry.New[Payload]()
	keys, err := m.Apply(reg)
	require.NoError(t, err)

	assert.Equal(t, []registry.LocalKey{0, 1}, keys)
	e, ok := reg.Search(registry.GlobalKeyOf("widget:fan"))
	require.True(t, ok)
	assert.Equal(t, 45, e.Item["power"])
}

func TestVerify(t *testing.T) {
	t.Run("clean manifest", func(t *testing.T) {
		m := &Manifest{Items: []Item{
			{Ident: "widget:lamp"},
			{Ident: "widget:fan"},
		}}

		reg, err := m.Verify()
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Len())
	})

	t.Run("duplicate ident", func(t *testing.T) {
		m := &Manifest{Items: []Item{
			{Ident: "widget:lamp"},
			{Ident: "widget:lamp"},
		}}

		_, err := m.Verify()
		assert.True(t, errors.IsErrorCode(err, errors.ErrKeyCollision))
	})
}

func TestApplyLargeManifest(t *testing.T) {
	m := &Manifest{}
	for i := 0; i < 200; i++ {
		m.Items = append(m.Items, Item{Ident: fmt.Sprintf("item:%d", i)})
	}

	reg := registry.New[Payload](registry.WithCapacity(4))
	keys, err := m.Apply(reg)
	require.NoError(t, err)
	require.Len(t, keys, 200)

	for i, key := range keys {
		assert.Equal(t, registry.LocalKey(i), key)
		assert.Equal(t, fmt.Sprintf("item:%d", i), reg.At(key).Ident())
	}
}
