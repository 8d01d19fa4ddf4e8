// FileProvider implements Objects and Index against a local directory
// tree, per spec.md §6: objects at "<root>/objects/<xx>/<rest>" keyed by
// the first two hex nibbles of the SHA-256; index records at
// "<root>/<pkg path>/<version>.toml" holding {checksum, dependencies}.
package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gitter-badger/reproto/core"
)

// FileProvider is both an Objects and an Index implementation rooted at
// a single directory, the default provider for locally-vendored or
// locally-published packages.
type FileProvider struct {
	Root string
}

var _ Objects = (*FileProvider)(nil)
var _ Index = (*FileProvider)(nil)

func (f *FileProvider) objectPath(checksum string) string {
	if len(checksum) < 2 {
		return filepath.Join(f.Root, "objects", checksum)
	}
	return filepath.Join(f.Root, "objects", checksum[:2], checksum[2:])
}

func (f *FileProvider) Get(ctx context.Context, checksum string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(f.objectPath(checksum))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.RepoErrNotFound.New(checksum)
		}
		return nil, core.IoError.Wrap(err, "reading object %s", checksum)
	}
	return content, nil
}

func (f *FileProvider) Put(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	checksum := Checksum(content)
	path := f.objectPath(checksum)
	if _, err := os.Stat(path); err == nil {
		return checksum, nil // content-addressed puts are idempotent
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", core.IoError.Wrap(err, "creating object directory")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return "", core.IoError.Wrap(err, "writing object %s", checksum)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", core.IoError.Wrap(err, "finalizing object %s", checksum)
	}
	return checksum, nil
}

type fileIndexRecord struct {
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

func (f *FileProvider) indexDir(pkg core.PackageID) string {
	return filepath.Join(append([]string{f.Root}, pkg.Parts...)...)
}

func (f *FileProvider) indexPath(pkg core.PackageID, v core.Version) string {
	return filepath.Join(f.indexDir(pkg), v.String()+".toml")
}

func (f *FileProvider) ListVersions(ctx context.Context, pkg core.PackageID) ([]core.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.indexDir(pkg))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.IoError.Wrap(err, "listing versions for %s", pkg.String())
	}
	var out []core.Version
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		text := strings.TrimSuffix(e.Name(), ".toml")
		v, err := core.ParseVersion(text)
		if err != nil {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *FileProvider) GetChecksum(ctx context.Context, pkg core.PackageID, v core.Version) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var rec fileIndexRecord
	if _, err := toml.DecodeFile(f.indexPath(pkg, v), &rec); err != nil {
		if os.IsNotExist(err) {
			return "", core.RepoErrNotFound.New(pkg.String() + "@" + v.String())
		}
		return "", core.IoError.Wrap(err, "reading index for %s@%s", pkg.String(), v.String())
	}
	return rec.Checksum, nil
}

func (f *FileProvider) PutChecksum(ctx context.Context, pkg core.PackageID, v core.Version, entry IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := f.indexPath(pkg, v)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.IoError.Wrap(err, "creating index directory")
	}
	tmp := path + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return core.IoError.Wrap(err, "creating index file")
	}
	rec := fileIndexRecord{Checksum: entry.Checksum, Dependencies: entry.Dependencies}
	if err := toml.NewEncoder(fh).Encode(rec); err != nil {
		fh.Close()
		return core.IoError.Wrap(err, "encoding index file")
	}
	if err := fh.Close(); err != nil {
		return core.IoError.Wrap(err, "closing index file")
	}
	return os.Rename(tmp, path)
}
