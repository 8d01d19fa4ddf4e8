package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/lower"
	"github.com/gitter-badger/reproto/parser"
)

func parse(t *testing.T, src string) []ir.Decl {
	t.Helper()
	file, err := parser.Parse("t.reproto", []byte(src))
	require.NoError(t, err)
	decls, err := lower.File(file, core.Package{ID: core.NewPackageID("foo")}, lower.Aliases{})
	require.NoError(t, err)
	return decls
}

func TestLowerSimpleType(t *testing.T) {
	decls := parse(t, `
package foo;

type Point {
    x: signed/32;
    y: signed/32;
    label?: string;
}
`)
	require.Len(t, decls, 1)
	body, ok := decls[0].(*ir.TypeBody)
	require.True(t, ok)
	assert.Equal(t, "Point", body.Name_)
	require.Len(t, body.Fields, 3)
	assert.Equal(t, "x", body.Fields[0].Ident)
	assert.Equal(t, ir.KindInteger, body.Fields[0].Type.Kind)
	assert.True(t, body.Fields[2].Optional)
}

func TestLowerDuplicateFieldIsModelError(t *testing.T) {
	file, err := parser.Parse("t.reproto", []byte(`
package foo;

type Point {
    x: signed/32;
    x: signed/32;
}
`))
	require.NoError(t, err)
	_, err = lower.File(file, core.Package{ID: core.NewPackageID("foo")}, lower.Aliases{})
	require.Error(t, err)
	assert.True(t, core.ModelError.Is(err) || isBatchOfModelErrors(err))
}

func isBatchOfModelErrors(err error) bool {
	batchErr, ok := err.(*core.BatchError)
	if !ok {
		return false
	}
	for _, e := range batchErr.Errs {
		if diag, ok := e.(*core.Diagnostic); ok {
			if core.ModelError.Is(diag.Unwrap()) {
				return true
			}
		}
	}
	return false
}

func TestLowerAnyAsMapKeyRejected(t *testing.T) {
	file, err := parser.Parse("t.reproto", []byte(`
package foo;

type Bag {
    items: {any: string};
}
`))
	require.NoError(t, err)
	_, err = lower.File(file, core.Package{ID: core.NewPackageID("foo")}, lower.Aliases{})
	require.Error(t, err)
}

func TestLowerEnumOrdinals(t *testing.T) {
	decls := parse(t, `
package foo;

enum Color {
    Red;
    Green;
    Blue = 10;
}
`)
	body := decls[0].(*ir.EnumBody)
	require.Len(t, body.Variants, 3)
	assert.Equal(t, 0, body.Variants[0].Ordinal)
	assert.Equal(t, 1, body.Variants[1].Ordinal)
	assert.Equal(t, 10, body.Variants[2].Ordinal)
}

func TestLowerInterfaceSubTypes(t *testing.T) {
	decls := parse(t, `
package foo;

interface Shape {
    id: signed/32;

    Circle {
        radius: double;
    }
}
`)
	body := decls[0].(*ir.InterfaceBody)
	require.Len(t, body.Fields, 1)
	require.Len(t, body.SubTypes, 1)
	assert.Equal(t, "Circle", body.SubTypes[0].Name_)
	assert.Len(t, body.AllFields(body.SubTypes[0]), 2)
}

func TestLowerNamedTypeWithAlias(t *testing.T) {
	file, err := parser.Parse("t.reproto", []byte(`
package foo;

type Ref {
    value: st::Thing;
}
`))
	require.NoError(t, err)
	sharedPkg := core.Package{ID: core.NewPackageID("shared", "types")}
	decls, err := lower.File(file, core.Package{ID: core.NewPackageID("foo")}, lower.Aliases{"st": sharedPkg})
	require.NoError(t, err)
	body := decls[0].(*ir.TypeBody)
	ty := body.Fields[0].Type
	require.Equal(t, ir.KindName, ty.Kind)
	assert.True(t, ty.Name.Package.ID.Equal(sharedPkg.ID))
	assert.Equal(t, []string{"Thing"}, ty.Name.Parts)
}

func TestLowerUnknownAliasIsNameError(t *testing.T) {
	file, err := parser.Parse("t.reproto", []byte(`
package foo;

type Ref {
    value: missing::Thing;
}
`))
	require.NoError(t, err)
	_, err = lower.File(file, core.Package{ID: core.NewPackageID("foo")}, lower.Aliases{})
	require.Error(t, err)
	batchErr, ok := err.(*core.BatchError)
	require.True(t, ok)
	require.Len(t, batchErr.Errs, 1)
	diag, ok := batchErr.Errs[0].(*core.Diagnostic)
	require.True(t, ok)
	assert.True(t, core.NameError.Is(diag.Unwrap()))
}

func TestLowerServiceEndpoint(t *testing.T) {
	decls := parse(t, `
package foo;

type Req { }
type Resp { }

service Api {
    getThing "/things/{id}" (Req) -> Resp;
}
`)
	body := decls[2].(*ir.ServiceBody)
	require.Len(t, body.Endpoints, 1)
	assert.Equal(t, "getThing", body.Endpoints[0].Ident)
	assert.Equal(t, "/things/{id}", body.Endpoints[0].URL)
	require.NotNil(t, body.Endpoints[0].Request)
	require.NotNil(t, body.Endpoints[0].Response)
}

func TestLowerTypeCodeBlock(t *testing.T) {
	decls := parse(t, `
package foo;

type Thing {
    rust {{
        #[derive(Debug)]
    }}
}
`)
	require.Len(t, decls, 1)
	body, ok := decls[0].(*ir.TypeBody)
	require.True(t, ok)
	require.NotNil(t, body.CodeBlocks)
	assert.Equal(t, []string{"#[derive(Debug)]"}, body.CodeBlocks["rust"])
	assert.Nil(t, body.CodeBlocks["python"])
}
