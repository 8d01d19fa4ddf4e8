package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/ast"
	"github.com/gitter-badger/reproto/parser"
)

func TestParseSimpleType(t *testing.T) {
	src := `
package foo.bar;

type Point {
    x: signed/32;
    y: signed/32;
    label?: string;
}
`
	file, err := parser.Parse("point.reproto", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, file.Package.Value().Parts)
	require.Len(t, file.Decls, 1)

	decl := file.Decls[0].Value()
	assert.Equal(t, ast.DeclType, decl.Kind)
	assert.Equal(t, "Point", decl.Name.Value())
	require.Len(t, decl.Members, 3)

	x, ok := decl.Members[0].(ast.Field)
	require.True(t, ok)
	assert.Equal(t, "x", x.Name.Value())
	assert.False(t, x.Optional)
	assert.Equal(t, ast.TypeInteger, x.Type.Value().Kind)
	assert.True(t, x.Type.Value().Signed)
	require.NotNil(t, x.Type.Value().Size)
	assert.Equal(t, uint(32), *x.Type.Value().Size)

	label, ok := decl.Members[2].(ast.Field)
	require.True(t, ok)
	assert.True(t, label.Optional)
	assert.Equal(t, ast.TypeString, label.Type.Value().Kind)
}

func TestParseUseWithVersionAndAlias(t *testing.T) {
	src := `
package foo;

use shared.types@">=1.0.0 <2.0.0" as st;

type Ref {
    value: st::Thing;
}
`
	file, err := parser.Parse("ref.reproto", []byte(src))
	require.NoError(t, err)
	require.Len(t, file.Uses, 1)
	use := file.Uses[0].Value()
	assert.Equal(t, []string{"shared", "types"}, use.Package.Parts)
	assert.Equal(t, ">=1.0.0 <2.0.0", use.Package.Version)

	decl := file.Decls[0].Value()
	field := decl.Members[0].(ast.Field)
	ty := field.Type.Value()
	require.Equal(t, ast.TypeName, ty.Kind)
	require.NotNil(t, ty.Prefix)
	assert.Equal(t, "st", *ty.Prefix)
	assert.Equal(t, []string{"Thing"}, ty.Parts)
}

func TestParseEnumWithOrdinals(t *testing.T) {
	src := `
package foo;

enum Color {
    Red = 1;
    Green = 2;
    Blue = 3;
}
`
	file, err := parser.Parse("color.reproto", []byte(src))
	require.NoError(t, err)
	decl := file.Decls[0].Value()
	require.Len(t, decl.Variants, 3)
	assert.Equal(t, "Red", decl.Variants[0].Value().Name.Value())
	require.NotNil(t, decl.Variants[0].Value().Ordinal)
	assert.Equal(t, float64(1), decl.Variants[0].Value().Ordinal.Value().Num)
}

func TestParseInterfaceWithSubTypes(t *testing.T) {
	src := `
package foo;

interface Shape {
    id: signed/32;

    Circle {
        radius: double;
    }

    Square {
        side: double;
    }
}
`
	file, err := parser.Parse("shape.reproto", []byte(src))
	require.NoError(t, err)
	decl := file.Decls[0].Value()
	require.Len(t, decl.Members, 3)

	_, isField := decl.Members[0].(ast.Field)
	assert.True(t, isField)

	circle, ok := decl.Members[1].(ast.SubType)
	require.True(t, ok)
	assert.Equal(t, "Circle", circle.Name.Value())
	require.Len(t, circle.Members, 1)
}

func TestParseServiceEndpoint(t *testing.T) {
	src := `
package foo;

type Req { }
type Resp { }

service Api {
    getThing "/things/{id}" (Req) -> Resp;
}
`
	file, err := parser.Parse("api.reproto", []byte(src))
	require.NoError(t, err)
	svc := file.Decls[2].Value()
	assert.Equal(t, ast.DeclService, svc.Kind)
	ep, ok := svc.Members[0].(ast.Endpoint)
	require.True(t, ok)
	assert.Equal(t, "getThing", ep.Name.Value())
	assert.Equal(t, "/things/{id}", ep.URL.Value())
	require.NotNil(t, ep.Request)
	require.NotNil(t, ep.Response)
}

func TestParseArrayAndMapTypes(t *testing.T) {
	src := `
package foo;

type Bag {
    items: [string];
    counts: {string: signed/32};
}
`
	file, err := parser.Parse("bag.reproto", []byte(src))
	require.NoError(t, err)
	decl := file.Decls[0].Value()

	items := decl.Members[0].(ast.Field)
	assert.Equal(t, ast.TypeArray, items.Type.Value().Kind)
	assert.Equal(t, ast.TypeString, items.Type.Value().Inner.Kind)

	counts := decl.Members[1].(ast.Field)
	assert.Equal(t, ast.TypeMap, counts.Type.Value().Kind)
	assert.Equal(t, ast.TypeString, counts.Type.Value().Key.Kind)
	assert.Equal(t, ast.TypeInteger, counts.Type.Value().Value.Kind)
}

func TestParseCodeBlockMember(t *testing.T) {
	src := "package foo;\n\ntype Thing {\n    rust {{\n        #[derive(Debug)]\n    }}\n}\n"
	file, err := parser.Parse("thing.reproto", []byte(src))
	require.NoError(t, err)
	decl := file.Decls[0].Value()
	code, ok := decl.Members[0].(ast.Code)
	require.True(t, ok)
	assert.Equal(t, "rust", code.Context)
	assert.Equal(t, []string{"#[derive(Debug)]"}, code.Lines)
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	_, err := parser.Parse("bad.reproto", []byte("package foo;\n\nbogus"))
	require.Error(t, err)
}
