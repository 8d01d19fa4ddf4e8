package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/repository"
)

func TestChecksumIsDeterministic(t *testing.T) {
	a := repository.Checksum([]byte("hello"))
	b := repository.Checksum([]byte("hello"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, repository.Checksum([]byte("world")))
}

func TestPublishThenGetRoundTrips(t *testing.T) {
	repo := &repository.Repository{
		Index:   &repository.FileProvider{Root: t.TempDir()},
		Objects: &repository.FileProvider{Root: t.TempDir()},
	}
	pkg := core.NewPackageID("foo", "bar")
	v, err := core.ParseVersion("1.0.0")
	require.NoError(t, err)

	require.NoError(t, repo.Publish(context.Background(), pkg, *v, []byte("package foo.bar;"), nil))

	content, err := repo.Get(context.Background(), pkg, *v)
	require.NoError(t, err)
	assert.Equal(t, "package foo.bar;", string(content))
}

func TestPublishSameContentTwiceIsIdempotent(t *testing.T) {
	repo := &repository.Repository{
		Index:   &repository.FileProvider{Root: t.TempDir()},
		Objects: &repository.FileProvider{Root: t.TempDir()},
	}
	pkg := core.NewPackageID("foo")
	v, _ := core.ParseVersion("1.0.0")

	require.NoError(t, repo.Publish(context.Background(), pkg, *v, []byte("a"), nil))
	require.NoError(t, repo.Publish(context.Background(), pkg, *v, []byte("a"), nil))
}

func TestPublishConflictingContentIsAlreadyPublished(t *testing.T) {
	repo := &repository.Repository{
		Index:   &repository.FileProvider{Root: t.TempDir()},
		Objects: &repository.FileProvider{Root: t.TempDir()},
	}
	pkg := core.NewPackageID("foo")
	v, _ := core.ParseVersion("1.0.0")

	require.NoError(t, repo.Publish(context.Background(), pkg, *v, []byte("a"), nil))
	err := repo.Publish(context.Background(), pkg, *v, []byte("b"), nil)
	require.Error(t, err)
	assert.True(t, core.IsRepoError(err))
}

func TestGetWithoutIndexOrObjectsFails(t *testing.T) {
	pkg := core.NewPackageID("foo")
	v, _ := core.ParseVersion("1.0.0")

	_, err := (&repository.Repository{}).Get(context.Background(), pkg, *v)
	require.Error(t, err)

	_, err = (&repository.Repository{Index: &repository.FileProvider{Root: t.TempDir()}}).Get(context.Background(), pkg, *v)
	require.Error(t, err)
}

func TestLatestMatching(t *testing.T) {
	repo := &repository.Repository{
		Index:   &repository.FileProvider{Root: t.TempDir()},
		Objects: &repository.FileProvider{Root: t.TempDir()},
	}
	pkg := core.NewPackageID("foo")
	v1, _ := core.ParseVersion("1.0.0")
	v2, _ := core.ParseVersion("2.0.0")
	require.NoError(t, repo.Publish(context.Background(), pkg, *v1, []byte("a"), nil))
	require.NoError(t, repo.Publish(context.Background(), pkg, *v2, []byte("b"), nil))

	rng, _ := core.ParseVersionRange("<2.0.0")
	best, err := repo.LatestMatching(context.Background(), pkg, rng)
	require.NoError(t, err)
	assert.Equal(t, 0, best.Compare(v1))

	noneRng, _ := core.ParseVersionRange(">=5.0.0")
	_, err = repo.LatestMatching(context.Background(), pkg, noneRng)
	require.Error(t, err)
}
