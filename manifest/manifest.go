// Package manifest decodes reproto.toml, spec.md §6's external
// configuration surface, via BurntSushi/toml — the teacher's own
// manifest dependency. The key set is closed: any key TOML couldn't
// assign to the Manifest struct is reported through MetaData.Undecoded()
// as core.RepoErrBadManifest, per spec.md §9's "unknown keys must
// produce BadManifest, not silent acceptance" invariant.
package manifest

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"

	"github.com/gitter-badger/reproto/core"
)

// PackageRequirement names one package this manifest compiles, with the
// version range it admits (an empty range admits any version).
type PackageRequirement struct {
	Package string `toml:"package"`
	Version string `toml:"version"`
}

// RepositoryConfig points at the index and object stores backing
// repository.Repository construction.
type RepositoryConfig struct {
	Index   string `toml:"index"`
	Objects string `toml:"objects"`
}

// Preset is a named bundle of listener options, e.g. a casing convention
// applied uniformly across a set of backends.
type Preset struct {
	Options map[string]interface{} `toml:"options"`
}

// PublishOverride pins a specific version for a package at publish time,
// bypassing the repository's own version-resolution logic.
type PublishOverride struct {
	Package string `toml:"package"`
	Version string `toml:"version"`
}

// Manifest is the full decoded shape of reproto.toml, spec.md §6.
type Manifest struct {
	Language   string                    `toml:"language"`
	Output     string                    `toml:"output"`
	Packages   []PackageRequirement      `toml:"packages"`
	Repository RepositoryConfig          `toml:"repository"`
	Presets    map[string]Preset         `toml:"presets"`
	Publish    []PublishOverride         `toml:"publish"`
}

// Load decodes path into a Manifest, rejecting any key that doesn't
// belong to the closed set above.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, core.RepoErrBadManifest.New(err.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, core.RepoErrBadManifest.New("unknown keys: " + strings.Join(keys, ", "))
	}
	return &m, nil
}

// PackageIDs returns the manifest's required packages as core.PackageID
// values, parsed from their dotted form.
func (m *Manifest) PackageIDs() []core.PackageID {
	ids := make([]core.PackageID, len(m.Packages))
	for i, req := range m.Packages {
		ids[i] = core.NewPackageID(strings.Split(req.Package, ".")...)
	}
	return ids
}

// VersionRange parses one package requirement's range text, defaulting
// to "*" (any version) when empty.
func (m *Manifest) VersionRange(req PackageRequirement) (*core.VersionRange, error) {
	return core.ParseVersionRange(req.Version)
}

// PublishOverrideFor returns the pinned version for pkg, if the manifest
// names one.
func (m *Manifest) PublishOverrideFor(pkg string) (string, bool) {
	for _, o := range m.Publish {
		if o.Package == pkg {
			return o.Version, true
		}
	}
	return "", false
}

// StringOption coerces a preset option to a string via spf13/cast, since
// TOML values decode as interface{} and listener configuration is always
// string-keyed.
func (p Preset) StringOption(key, fallback string) string {
	v, ok := p.Options[key]
	if !ok {
		return fallback
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fallback
	}
	return s
}

// BoolOption coerces a preset option to a bool via spf13/cast.
func (p Preset) BoolOption(key string, fallback bool) bool {
	v, ok := p.Options[key]
	if !ok {
		return fallback
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return fallback
	}
	return b
}

// IntOption coerces a preset option to an int via spf13/cast.
func (p Preset) IntOption(key string, fallback int) int {
	v, ok := p.Options[key]
	if !ok {
		return fallback
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return fallback
	}
	return n
}
