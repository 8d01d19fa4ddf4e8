package semvercheck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/env"
	"github.com/gitter-badger/reproto/resolve"
	"github.com/gitter-badger/reproto/semvercheck"
)

type singleSourceResolver struct {
	version string
	content string
}

func (r *singleSourceResolver) Resolve(ctx context.Context, pkg core.PackageID) ([]resolve.Source, error) {
	v, err := core.ParseVersion(r.version)
	if err != nil {
		return nil, err
	}
	return []resolve.Source{{Name: "t.reproto", Version: *v, Content: []byte(r.content)}}, nil
}

func buildEnv(t *testing.T, version, content string) *env.Environment {
	t.Helper()
	e := env.New(&singleSourceResolver{version: version, content: content}, nil, nil)
	_, err := e.Import(context.Background(), core.NewPackageID("foo"), "")
	require.NoError(t, err)
	return e
}

func findChange(t *testing.T, report semvercheck.Report, localName string) semvercheck.Change {
	t.Helper()
	for _, c := range report.Changes {
		if c.Name.LocalName() == localName {
			return c
		}
	}
	t.Fatalf("no change found for %q among %d changes", localName, len(report.Changes))
	return semvercheck.Change{}
}

func TestCompareIdenticalTypeIsNoBreakingChange(t *testing.T) {
	src := `
package foo;

type Point {
    x: signed/32;
    y: signed/32;
}
`
	oldEnv := buildEnv(t, "1.0.0", src)
	newEnv := buildEnv(t, "1.0.1", src)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	assert.False(t, report.HasBreaking())
}

func TestCompareRemovedFieldIsBreaking(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

type Point {
    x: signed/32;
    y: signed/32;
}
`)
	newEnv := buildEnv(t, "2.0.0", `
package foo;

type Point {
    x: signed/32;
}
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	require.True(t, report.HasBreaking())
	change := findChange(t, report, "Point")
	assert.Equal(t, semvercheck.Breaking, change.Class)
}

func TestCompareRenamedFieldWithUnchangedWireAliasIsMinor(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

type Point {
    x_old: signed/32 as "x";
}
`)
	newEnv := buildEnv(t, "1.1.0", `
package foo;

type Point {
    x_new: signed/32 as "x";
}
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	assert.False(t, report.HasBreaking())
	change := findChange(t, report, "Point")
	assert.Equal(t, semvercheck.Minor, change.Class)
	assert.Contains(t, change.Reason, "renamed")
}

func TestCompareAddedOptionalFieldIsCompatible(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

type Point {
    x: signed/32;
}
`)
	newEnv := buildEnv(t, "1.1.0", `
package foo;

type Point {
    x: signed/32;
    label?: string;
}
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	assert.False(t, report.HasBreaking())
	change := findChange(t, report, "Point")
	assert.Equal(t, semvercheck.Compatible, change.Class)
}

func TestCompareAddedRequiredFieldIsMinor(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

type Point {
    x: signed/32;
}
`)
	newEnv := buildEnv(t, "1.1.0", `
package foo;

type Point {
    x: signed/32;
    y: signed/32;
}
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	assert.False(t, report.HasBreaking())
	change := findChange(t, report, "Point")
	assert.Equal(t, semvercheck.Minor, change.Class)
}

func TestCompareEnumOrdinalRenumberingIsBreaking(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

enum Color {
    Red;
    Green;
    Blue;
}
`)
	newEnv := buildEnv(t, "2.0.0", `
package foo;

enum Color {
    Green;
    Red;
    Blue;
}
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	require.True(t, report.HasBreaking())
	change := findChange(t, report, "Color")
	assert.Equal(t, semvercheck.Breaking, change.Class)
	assert.Contains(t, change.Reason, "ordinal")
}

func TestCompareRemovedDeclarationIsBreaking(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

type Point { }
type Extra { }
`)
	newEnv := buildEnv(t, "2.0.0", `
package foo;

type Point { }
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	change := findChange(t, report, "Extra")
	assert.Equal(t, semvercheck.Breaking, change.Class)
	assert.Contains(t, change.Reason, "removed")
}

func TestCompareAddedDeclarationIsCompatible(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

type Point { }
`)
	newEnv := buildEnv(t, "1.1.0", `
package foo;

type Point { }
type Extra { }
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	change := findChange(t, report, "Extra")
	assert.Equal(t, semvercheck.Compatible, change.Class)
}

func TestCompareServiceEndpointURLChangeIsBreaking(t *testing.T) {
	oldEnv := buildEnv(t, "1.0.0", `
package foo;

type Req { }
type Resp { }

service Api {
    getThing "/things/{id}" (Req) -> Resp;
}
`)
	newEnv := buildEnv(t, "2.0.0", `
package foo;

type Req { }
type Resp { }

service Api {
    getThing "/stuff/{id}" (Req) -> Resp;
}
`)

	report := semvercheck.Compare(oldEnv, newEnv, core.NewPackageID("foo"))
	change := findChange(t, report, "Api")
	assert.Equal(t, semvercheck.Breaking, change.Class)
}
