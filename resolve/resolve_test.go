package resolve_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/repository"
	"github.com/gitter-badger/reproto/resolve"
)

func TestPathResolverFindsMatchingFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "foo.bar-1.0.0.reproto"), []byte("package foo.bar;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "foo.bar-2.0.0.reproto"), []byte("package foo.bar;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.baz-1.0.0.reproto"), []byte("package other.baz;"), 0o644))

	r := &resolve.PathResolver{Root: root}
	sources, err := r.Resolve(context.Background(), core.NewPackageID("foo", "bar"))
	require.NoError(t, err)
	require.Len(t, sources, 2)
}

func TestPathResolverMissingRootIsEmpty(t *testing.T) {
	r := &resolve.PathResolver{Root: filepath.Join(t.TempDir(), "does-not-exist")}
	sources, err := r.Resolve(context.Background(), core.NewPackageID("foo"))
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestIndexObjectsResolverFetchesAndCaches(t *testing.T) {
	repo := &repository.Repository{
		Index:   &repository.FileProvider{Root: t.TempDir()},
		Objects: &repository.FileProvider{Root: t.TempDir()},
	}
	pkg := core.NewPackageID("foo")
	v, _ := core.ParseVersion("1.0.0")
	require.NoError(t, repo.Publish(context.Background(), pkg, *v, []byte("package foo;"), nil))

	r := &resolve.IndexObjectsResolver{Repo: repo, CacheDir: t.TempDir()}
	sources, err := r.Resolve(context.Background(), pkg)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "package foo;", string(sources[0].Content))

	// Second resolve should hit the on-disk cache rather than re-fetching.
	sources2, err := r.Resolve(context.Background(), pkg)
	require.NoError(t, err)
	require.Len(t, sources2, 1)
	assert.Equal(t, sources[0].Content, sources2[0].Content)
}

type fakeResolver struct {
	result []resolve.Source
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, pkg core.PackageID) ([]resolve.Source, error) {
	return f.result, f.err
}

func TestCompositeResolverConcatenates(t *testing.T) {
	a := &fakeResolver{result: []resolve.Source{{Name: "a"}}}
	b := &fakeResolver{result: []resolve.Source{{Name: "b"}}}
	c := &resolve.CompositeResolver{Resolvers: []resolve.Resolver{a, b}}

	sources, err := c.Resolve(context.Background(), core.NewPackageID("foo"))
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a", sources[0].Name)
	assert.Equal(t, "b", sources[1].Name)
}

func TestCompositeResolverPropagatesError(t *testing.T) {
	a := &fakeResolver{err: assert.AnError}
	c := &resolve.CompositeResolver{Resolvers: []resolve.Resolver{a}}

	_, err := c.Resolve(context.Background(), core.NewPackageID("foo"))
	require.Error(t, err)
}

func TestCompositeResolverStopsOnCancelledContext(t *testing.T) {
	a := &fakeResolver{result: []resolve.Source{{Name: "a"}}}
	c := &resolve.CompositeResolver{Resolvers: []resolve.Resolver{a}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Resolve(ctx, core.NewPackageID("foo"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPathResolverStopsOnCancelledContext(t *testing.T) {
	r := &resolve.PathResolver{Root: t.TempDir()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, core.NewPackageID("foo"))
	require.ErrorIs(t, err, context.Canceled)
}
