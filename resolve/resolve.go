// Package resolve implements the Resolver chain that turns a `use`
// statement's package id and version range into source text: a local
// path convention, the repository index/objects split, or a composite of
// both tried in order. Grounded on the teacher's driver.Provider
// lookup-chain pattern (driver/driver.go's ordered list of providers
// tried until one answers).
package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/repository"
)

// Source is one candidate file found for a requested package.
type Source struct {
	Name    string
	Version core.Version
	Content []byte
}

// Resolver finds every source available for pkg, at any version; the
// caller narrows the list to the range it needs and picks the best match
// via core.BestMatch. Resolve accepts a context.Context so a caller
// (env.Import, ultimately a CLI command's own Context) can cancel a
// resolution still blocked on a repository round trip, per spec.md §5.
type Resolver interface {
	Resolve(ctx context.Context, pkg core.PackageID) ([]Source, error)
}

// PathResolver looks for "<root>/<dotted.package.id>-<version>.reproto"
// files in a single flat directory, the filename convention spec.md §5
// uses for locally vendored packages.
type PathResolver struct {
	Root string
}

func (r *PathResolver) Resolve(ctx context.Context, pkg core.PackageID) ([]Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.IoError.Wrap(err, "reading %s", r.Root)
	}
	prefix := pkg.String() + "-"
	var out []Source
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".reproto") {
			continue
		}
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		versionText := strings.TrimSuffix(strings.TrimPrefix(entry.Name(), prefix), ".reproto")
		version, err := core.ParseVersion(versionText)
		if err != nil {
			continue
		}
		path := filepath.Join(r.Root, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, core.IoError.Wrap(err, "reading %s", path)
		}
		out = append(out, Source{Name: path, Version: *version, Content: content})
	}
	return out, nil
}

// IndexObjectsResolver resolves a package against a repository's Index
// (to enumerate published versions) and Objects (to fetch each version's
// content by checksum), disk-caching fetched content under CacheDir so
// repeated resolutions of the same version avoid a network round trip.
type IndexObjectsResolver struct {
	Repo     *repository.Repository
	CacheDir string
}

func (r *IndexObjectsResolver) Resolve(ctx context.Context, pkg core.PackageID) ([]Source, error) {
	versions, err := r.Repo.Index.ListVersions(ctx, pkg)
	if err != nil {
		return nil, err
	}
	var out []Source
	for _, v := range versions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cached, ok := r.readCache(pkg, v); ok {
			out = append(out, Source{Name: cacheName(r.CacheDir, pkg, v), Version: v, Content: cached})
			continue
		}
		checksum, err := r.Repo.Index.GetChecksum(ctx, pkg, v)
		if err != nil {
			return nil, err
		}
		content, err := r.Repo.Objects.Get(ctx, checksum)
		if err != nil {
			return nil, err
		}
		if r.CacheDir != "" {
			_ = os.MkdirAll(r.CacheDir, 0o755)
			_ = os.WriteFile(cacheName(r.CacheDir, pkg, v), content, 0o644)
		}
		out = append(out, Source{Name: cacheName(r.CacheDir, pkg, v), Version: v, Content: content})
	}
	return out, nil
}

func (r *IndexObjectsResolver) readCache(pkg core.PackageID, v core.Version) ([]byte, bool) {
	if r.CacheDir == "" {
		return nil, false
	}
	content, err := os.ReadFile(cacheName(r.CacheDir, pkg, v))
	if err != nil {
		return nil, false
	}
	return content, true
}

func cacheName(dir string, pkg core.PackageID, v core.Version) string {
	return filepath.Join(dir, pkg.String()+"-"+v.String()+".reproto")
}

// CompositeResolver tries each Resolver in order and concatenates every
// candidate source they find, letting the caller pick the best match
// across the union rather than stopping at the first resolver that
// answers — a locally vendored pre-release can coexist with published
// releases from the repository.
type CompositeResolver struct {
	Resolvers []Resolver
}

func (r *CompositeResolver) Resolve(ctx context.Context, pkg core.PackageID) ([]Source, error) {
	var out []Source
	for _, sub := range r.Resolvers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sources, err := sub.Resolve(ctx, pkg)
		if err != nil {
			return nil, err
		}
		out = append(out, sources...)
	}
	return out, nil
}
