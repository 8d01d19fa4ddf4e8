package repository_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/repository"
)

func TestNewMirrorProviderDefaults(t *testing.T) {
	m := repository.NewMirrorProvider("/tmp/mirror", "", "")
	assert.Equal(t, "origin", m.Remote)
	assert.Equal(t, "main", m.Branch)
	assert.Equal(t, "/tmp/mirror", m.FileProvider.Root)
}

func TestNewMirrorProviderExplicitRemoteAndBranch(t *testing.T) {
	m := repository.NewMirrorProvider("/tmp/mirror", "upstream", "trunk")
	assert.Equal(t, "upstream", m.Remote)
	assert.Equal(t, "trunk", m.Branch)
}

func TestMirrorProviderCommitsLocalChanges(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}
	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	m := repository.NewMirrorProvider(root, "origin", "main")
	_, err := m.Put(context.Background(), []byte("object content"))
	require.NoError(t, err)

	require.NoError(t, m.Commit("publish object"))
	// Committing again with nothing new to add must not error.
	require.NoError(t, m.Commit("publish object again"))
}
