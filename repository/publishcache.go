// publishcache records, per package, the version and checksum last
// published, so a repeated `publish` invocation in the same working
// directory can detect "nothing changed since last time". This is not named in
// spec.md; it exists to give yaml.v2 a real home the way the rest of the
// teacher's dependency stack is wired into a concrete component, and is
// deliberately YAML (not TOML, which the manifest and file index already
// use) so the two serialization dependencies both get exercised.
package repository

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/gitter-badger/reproto/core"
)

// PublishCacheEntry is one package's last-seen publish checksum.
type PublishCacheEntry struct {
	Version  string `yaml:"version"`
	Checksum string `yaml:"checksum"`
}

// PublishCache is a small on-disk record of the last checksum published
// for each package, keyed by the package's dotted id.
type PublishCache struct {
	Entries map[string]PublishCacheEntry `yaml:"entries"`
}

// LoadPublishCache reads the cache file at path, returning an empty
// cache if it does not yet exist.
func LoadPublishCache(path string) (*PublishCache, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PublishCache{Entries: map[string]PublishCacheEntry{}}, nil
		}
		return nil, core.IoError.Wrap(err, "reading publish cache %s", path)
	}
	var cache PublishCache
	if err := yaml.Unmarshal(content, &cache); err != nil {
		return nil, core.IoError.Wrap(err, "decoding publish cache %s", path)
	}
	if cache.Entries == nil {
		cache.Entries = map[string]PublishCacheEntry{}
	}
	return &cache, nil
}

// Save writes the cache back to path.
func (c *PublishCache) Save(path string) error {
	content, err := yaml.Marshal(c)
	if err != nil {
		return core.IoError.Wrap(err, "encoding publish cache")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return core.IoError.Wrap(err, "writing publish cache")
	}
	return os.Rename(tmp, path)
}

// NeedsPublish reports whether pkg@version with the given content
// checksum differs from what was last recorded, i.e. whether a publish
// would actually change anything.
func (c *PublishCache) NeedsPublish(pkg core.PackageID, version string, checksum string) bool {
	entry, ok := c.Entries[pkg.String()]
	if !ok {
		return true
	}
	return entry.Version != version || entry.Checksum != checksum
}

// Record updates the cache's entry for pkg after a successful publish.
func (c *PublishCache) Record(pkg core.PackageID, version, checksum string) {
	if c.Entries == nil {
		c.Entries = map[string]PublishCacheEntry{}
	}
	c.Entries[pkg.String()] = PublishCacheEntry{Version: version, Checksum: checksum}
}
