package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
)

func pkg() core.Package {
	return core.Package{ID: core.NewPackageID("foo")}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "signed/32", ir.Type{Kind: ir.KindInteger, Signed: true}.String())
	assert.Equal(t, "unsigned/64", ir.Type{Kind: ir.KindInteger, Signed: false, Size: 64}.String())
	assert.Equal(t, "string", ir.Type{Kind: ir.KindString}.String())

	inner := ir.Type{Kind: ir.KindString}
	assert.Equal(t, "[string]", ir.Type{Kind: ir.KindArray, Inner: &inner}.String())

	key := ir.Type{Kind: ir.KindString}
	val := ir.Type{Kind: ir.KindInteger}
	assert.Equal(t, "{string: unsigned/32}", ir.Type{Kind: ir.KindMap, Key: &key, Value: &val}.String())
}

func TestFieldAsOverride(t *testing.T) {
	f := ir.Field{Ident: "userId"}
	assert.Equal(t, "userId", f.FieldAs())

	f.As = &ir.Value{Kind: ir.ValueString, Str: "user_id"}
	assert.Equal(t, "user_id", f.FieldAs())
}

func TestInterfaceAllFields(t *testing.T) {
	shared := ir.Field{Ident: "id"}
	own := ir.Field{Ident: "radius"}
	st := &ir.SubTypeBody{Name_: "Circle", Fields: []ir.Field{own}}
	iface := &ir.InterfaceBody{Name_: "Shape", Fields: []ir.Field{shared}, SubTypes: []*ir.SubTypeBody{st}}

	all := iface.AllFields(st)
	require.Len(t, all, 2)
	want := []ir.Field{shared, own}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("AllFields mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisteredFieldsAndFieldByIdent(t *testing.T) {
	typeBody := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x"}, {Ident: "y"}}}
	reg := ir.Registered{QualifiedName: core.NewName(pkg(), "Point"), Decl: typeBody}

	fields := reg.Fields()
	require.Len(t, fields, 2)

	f, ok := reg.FieldByIdent("y")
	require.True(t, ok)
	assert.Equal(t, "y", f.Ident)

	_, ok = reg.FieldByIdent("z")
	assert.False(t, ok)
}

func TestRegisteredAssignableFrom(t *testing.T) {
	shared := ir.Field{Ident: "id"}
	st := &ir.SubTypeBody{Name_: "Circle", Fields: nil}
	iface := &ir.InterfaceBody{Name_: "Shape", Fields: []ir.Field{shared}, SubTypes: []*ir.SubTypeBody{st}}

	ifaceReg := ir.Registered{QualifiedName: core.NewName(pkg(), "Shape"), Decl: iface}
	subReg := ir.Registered{QualifiedName: core.NewName(pkg(), "Shape", "Circle"), Decl: st, SubTypeOf: iface}

	assert.True(t, ifaceReg.AssignableFrom(subReg))
	assert.True(t, ifaceReg.AssignableFrom(ifaceReg))

	other := ir.Registered{QualifiedName: core.NewName(pkg(), "Other"), Decl: &ir.TypeBody{Name_: "Other"}}
	assert.False(t, ifaceReg.AssignableFrom(other))
}

func TestRegisteredDisplay(t *testing.T) {
	reg := ir.Registered{QualifiedName: core.NewName(pkg(), "Point"), Decl: &ir.TypeBody{Name_: "Point"}}
	assert.Contains(t, reg.Display(), "Point")
}

func TestIntoRegisteredFlattensInterface(t *testing.T) {
	st1 := &ir.SubTypeBody{Name_: "Circle"}
	st2 := &ir.SubTypeBody{Name_: "Square"}
	iface := &ir.InterfaceBody{Name_: "Shape", SubTypes: []*ir.SubTypeBody{st1, st2}}

	flat := ir.IntoRegistered(iface)
	require.Len(t, flat, 3)
	assert.Same(t, iface, flat[0])
	assert.Same(t, st1, flat[1])
	assert.Same(t, st2, flat[2])
}

func TestIntoRegisteredLeafHasNoNesting(t *testing.T) {
	typeBody := &ir.TypeBody{Name_: "Point"}
	flat := ir.IntoRegistered(typeBody)
	require.Len(t, flat, 1)
	assert.Same(t, typeBody, flat[0])
}
