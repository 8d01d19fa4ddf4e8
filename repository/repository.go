// Package repository implements the content-addressed object store and
// package index of spec.md §4.7/§6: Objects (checksum -> bytes), Index
// (package+version -> checksum), and three concrete providers (File,
// HTTP, Mirror) behind those two interfaces, plus atomic publish.
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/gitter-badger/reproto/core"
)

// Objects is content-addressed blob storage keyed by hex SHA-256. Every
// method accepts a context so a caller can cancel a fetch/upload still in
// flight; HTTPProvider threads it into the request, FileProvider only
// checks it at entry since local disk I/O isn't otherwise interruptible.
type Objects interface {
	Get(ctx context.Context, checksum string) ([]byte, error)
	Put(ctx context.Context, content []byte) (checksum string, err error)
}

// IndexEntry is one published version's record.
type IndexEntry struct {
	Checksum     string
	Dependencies []string
}

// Index maps a package's published versions to their content checksum.
type Index interface {
	ListVersions(ctx context.Context, pkg core.PackageID) ([]core.Version, error)
	GetChecksum(ctx context.Context, pkg core.PackageID, v core.Version) (string, error)
	PutChecksum(ctx context.Context, pkg core.PackageID, v core.Version, entry IndexEntry) error
}

// Repository pairs an Index and Objects provider. Either half may be nil,
// in which case Get and LatestMatching fail with RepoErrEmptyIndex /
// RepoErrEmptyObjects and Publish fails with RepoErrNoPublishIndex /
// RepoErrNoPublishObjects, rather than a nil-pointer panic.
type Repository struct {
	Index   Index
	Objects Objects
}

// Checksum computes the content-addressing key for content: hex-encoded
// SHA-256, per spec.md §6.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get fetches a package version's content from the repository.
func (r *Repository) Get(ctx context.Context, pkg core.PackageID, v core.Version) ([]byte, error) {
	if r.Index == nil {
		return nil, core.RepoErrEmptyIndex.New()
	}
	if r.Objects == nil {
		return nil, core.RepoErrEmptyObjects.New()
	}
	checksum, err := r.Index.GetChecksum(ctx, pkg, v)
	if err != nil {
		return nil, err
	}
	content, err := r.Objects.Get(ctx, checksum)
	if err != nil {
		return nil, err
	}
	got := Checksum(content)
	if got != checksum {
		return nil, core.RepoErrChecksumMismatch.New(checksum, got)
	}
	return content, nil
}

// Publish atomically stores content as a new version of pkg: the object
// is put first (idempotent, content-addressed), then the index entry is
// written conditionally — if the version already exists with a
// different checksum, Publish fails with RepoErrAlreadyPublished and
// leaves the index untouched.
func (r *Repository) Publish(ctx context.Context, pkg core.PackageID, v core.Version, content []byte, deps []string) error {
	if r.Index == nil {
		return core.RepoErrNoPublishIndex.New(pkg.String())
	}
	if r.Objects == nil {
		return core.RepoErrNoPublishObjects.New(pkg.String())
	}
	checksum, err := r.Objects.Put(ctx, content)
	if err != nil {
		return err
	}
	if existing, err := r.Index.GetChecksum(ctx, pkg, v); err == nil {
		if existing != checksum {
			return core.RepoErrAlreadyPublished.New(pkg.String() + "@" + v.String())
		}
		return nil
	}
	return r.Index.PutChecksum(ctx, pkg, v, IndexEntry{Checksum: checksum, Dependencies: deps})
}

// LatestMatching returns the highest published version of pkg admitted
// by r, or RepoErrNoPublishedPackage if none match.
func (r *Repository) LatestMatching(ctx context.Context, pkg core.PackageID, rng *core.VersionRange) (*core.Version, error) {
	if r.Index == nil {
		return nil, core.RepoErrEmptyIndex.New()
	}
	versions, err := r.Index.ListVersions(ctx, pkg)
	if err != nil {
		return nil, err
	}
	candidates := make([]*core.Version, len(versions))
	for i := range versions {
		candidates[i] = &versions[i]
	}
	best := core.BestMatch(rng, candidates)
	if best == nil {
		return nil, core.RepoErrNoPublishedPackage.New(pkg.String())
	}
	return best, nil
}
