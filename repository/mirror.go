// MirrorProvider wraps a FileProvider rooted at a git working tree:
// reads/writes go straight through to the file layout, and Update pulls
// the upstream mirror via the system `git` binary, per spec.md §4.7.
// Grounded on the pack's convention of shelling out to `git` with
// os/exec rather than a pure-Go git library (none appears in the
// retrieved pack).
package repository

import (
	"os/exec"
	"strings"

	"github.com/gitter-badger/reproto/core"
)

// MirrorProvider is a FileProvider whose Root is a git working tree
// tracking an upstream mirror repository.
type MirrorProvider struct {
	*FileProvider
	Remote string // upstream remote name, e.g. "origin"
	Branch string // tracked branch, e.g. "main"
}

// NewMirrorProvider wraps root as both a FileProvider and a git working
// tree tracking remote/branch.
func NewMirrorProvider(root, remote, branch string) *MirrorProvider {
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		branch = "main"
	}
	return &MirrorProvider{FileProvider: &FileProvider{Root: root}, Remote: remote, Branch: branch}
}

// Update pulls the upstream mirror into the local working tree. Writes
// made locally since the last Update (via Put/PutChecksum) are left on
// disk; the commit/push cadence for publishing them upstream is external
// to this provider, per spec.md §4.7.
func (m *MirrorProvider) Update() error {
	cmd := exec.Command("git", "-C", m.Root, "pull", "--ff-only", m.Remote, m.Branch)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return core.IoError.Wrap(err, "git pull failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// Commit records any pending local changes (published objects/index
// entries) to the working tree's git history. Pushing them upstream is
// left to the caller, per spec.md §4.7's "push cadence is external".
func (m *MirrorProvider) Commit(message string) error {
	add := exec.Command("git", "-C", m.Root, "add", "-A")
	if out, err := add.CombinedOutput(); err != nil {
		return core.IoError.Wrap(err, "git add failed: %s", strings.TrimSpace(string(out)))
	}
	commit := exec.Command("git", "-C", m.Root, "commit", "-m", message)
	if out, err := commit.CombinedOutput(); err != nil {
		if strings.Contains(string(out), "nothing to commit") {
			return nil
		}
		return core.IoError.Wrap(err, "git commit failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}
