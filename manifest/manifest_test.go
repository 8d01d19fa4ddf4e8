package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/manifest"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reproto.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDecodesFullManifest(t *testing.T) {
	path := writeManifest(t, `
language = "java"
output = "target/generated"

[[packages]]
package = "foo.bar"
version = ">=1.0.0"

[repository]
index = "https://example.com/index"
objects = "https://example.com/objects"

[presets.default.options]
casing = "lowerCamel"

[[publish]]
package = "foo.bar"
version = "1.2.0"
`)
	m, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "java", m.Language)
	assert.Equal(t, "target/generated", m.Output)
	require.Len(t, m.Packages, 1)
	assert.Equal(t, "foo.bar", m.Packages[0].Package)
	assert.Equal(t, "https://example.com/index", m.Repository.Index)

	preset, ok := m.Presets["default"]
	require.True(t, ok)
	assert.Equal(t, "lowerCamel", preset.StringOption("casing", ""))

	version, ok := m.PublishOverrideFor("foo.bar")
	require.True(t, ok)
	assert.Equal(t, "1.2.0", version)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeManifest(t, `
language = "java"
bogus_key = "oops"
`)
	_, err := manifest.Load(path)
	require.Error(t, err)
	assert.True(t, core.IsRepoError(err))
}

func TestLoadMissingFileIsBadManifest(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, core.IsRepoError(err))
}

func TestPackageIDsSplitsDottedNames(t *testing.T) {
	m := &manifest.Manifest{Packages: []manifest.PackageRequirement{{Package: "foo.bar.baz"}}}
	ids := m.PackageIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, []string{"foo", "bar", "baz"}, ids[0].Parts)
}

func TestVersionRangeDefaultsToAny(t *testing.T) {
	m := &manifest.Manifest{}
	rng, err := m.VersionRange(manifest.PackageRequirement{Version: ""})
	require.NoError(t, err)
	v, _ := core.ParseVersion("9.9.9")
	assert.True(t, rng.Admits(v))
}

func TestPresetOptionCoercion(t *testing.T) {
	preset := manifest.Preset{Options: map[string]interface{}{
		"enabled": "true",
		"limit":   "42",
		"name":    7,
	}}
	assert.True(t, preset.BoolOption("enabled", false))
	assert.Equal(t, 42, preset.IntOption("limit", 0))
	assert.Equal(t, "7", preset.StringOption("name", ""))
	assert.Equal(t, "fallback", preset.StringOption("missing", "fallback"))
	assert.Equal(t, 5, preset.IntOption("missing", 5))
	assert.False(t, preset.BoolOption("missing", false))
}
