package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/merge"
)

func intType() ir.Type { return ir.Type{Kind: ir.KindInteger, Signed: true, Size: 32} }
func strType() ir.Type { return ir.Type{Kind: ir.KindString} }

func TestMergeTypeDisjointFields(t *testing.T) {
	a := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x", Type: intType()}}}
	b := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "y", Type: intType()}}}

	merged, err := merge.Decl(a, b)
	require.NoError(t, err)
	body := merged.(*ir.TypeBody)
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "x", body.Fields[0].Ident)
	assert.Equal(t, "y", body.Fields[1].Ident)
}

func TestMergeTypeSameFieldIsIdempotent(t *testing.T) {
	a := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x", Type: intType()}}}
	b := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x", Type: intType()}}}

	merged, err := merge.Decl(a, b)
	require.NoError(t, err)
	assert.Len(t, merged.(*ir.TypeBody).Fields, 1)
}

func TestMergeConflictingFieldTypesIsMergeError(t *testing.T) {
	a := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x", Type: intType()}}}
	b := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x", Type: strType()}}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
	diag, ok := err.(*core.Diagnostic)
	require.True(t, ok)
	assert.True(t, core.MergeError.Is(diag.Unwrap()))
}

func TestMergeConflictingFieldOptionalityIsMergeError(t *testing.T) {
	a := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x", Type: intType(), Optional: false}}}
	b := &ir.TypeBody{Name_: "Point", Fields: []ir.Field{{Ident: "x", Type: intType(), Optional: true}}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}

func TestMergeKindMismatch(t *testing.T) {
	a := &ir.TypeBody{Name_: "Point"}
	b := &ir.EnumBody{Name_: "Point"}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
	diag, ok := err.(*core.Diagnostic)
	require.True(t, ok)
	assert.True(t, core.MergeError.Is(diag.Unwrap()))
}

func TestMergeTuple(t *testing.T) {
	a := &ir.TupleBody{Name_: "Pair", Fields: []ir.Field{{Ident: "0", Type: intType()}}}
	b := &ir.TupleBody{Name_: "Pair", Fields: []ir.Field{{Ident: "1", Type: strType()}}}

	merged, err := merge.Decl(a, b)
	require.NoError(t, err)
	assert.Len(t, merged.(*ir.TupleBody).Fields, 2)
}

func TestMergeInterfaceNewSubType(t *testing.T) {
	circle := &ir.SubTypeBody{Name_: "Circle", Fields: []ir.Field{{Ident: "radius", Type: intType()}}}
	square := &ir.SubTypeBody{Name_: "Square", Fields: []ir.Field{{Ident: "side", Type: intType()}}}
	a := &ir.InterfaceBody{Name_: "Shape", SubTypes: []*ir.SubTypeBody{circle}}
	b := &ir.InterfaceBody{Name_: "Shape", SubTypes: []*ir.SubTypeBody{square}}

	merged, err := merge.Decl(a, b)
	require.NoError(t, err)
	body := merged.(*ir.InterfaceBody)
	require.Len(t, body.SubTypes, 2)
	assert.Equal(t, "Circle", body.SubTypes[0].Name_)
	assert.Equal(t, "Square", body.SubTypes[1].Name_)
}

func TestMergeInterfaceSameSubTypeMergesFields(t *testing.T) {
	circleA := &ir.SubTypeBody{Name_: "Circle", Fields: []ir.Field{{Ident: "radius", Type: intType()}}}
	circleB := &ir.SubTypeBody{Name_: "Circle", Fields: []ir.Field{{Ident: "color", Type: strType()}}}
	a := &ir.InterfaceBody{Name_: "Shape", SubTypes: []*ir.SubTypeBody{circleA}}
	b := &ir.InterfaceBody{Name_: "Shape", SubTypes: []*ir.SubTypeBody{circleB}}

	merged, err := merge.Decl(a, b)
	require.NoError(t, err)
	body := merged.(*ir.InterfaceBody)
	require.Len(t, body.SubTypes, 1)
	assert.Len(t, body.SubTypes[0].Fields, 2)
}

func TestMergeInterfaceSubTypeFieldConflict(t *testing.T) {
	circleA := &ir.SubTypeBody{Name_: "Circle", Fields: []ir.Field{{Ident: "radius", Type: intType()}}}
	circleB := &ir.SubTypeBody{Name_: "Circle", Fields: []ir.Field{{Ident: "radius", Type: strType()}}}
	a := &ir.InterfaceBody{Name_: "Shape", SubTypes: []*ir.SubTypeBody{circleA}}
	b := &ir.InterfaceBody{Name_: "Shape", SubTypes: []*ir.SubTypeBody{circleB}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}

func TestMergeEnumExactVariantsSucceeds(t *testing.T) {
	variants := []ir.Variant{
		{Name: core.NewLoc("Red", core.NoPos), Ordinal: 0},
		{Name: core.NewLoc("Green", core.NoPos), Ordinal: 1},
	}
	a := &ir.EnumBody{Name_: "Color", Variants: variants}
	b := &ir.EnumBody{Name_: "Color", Variants: variants}

	merged, err := merge.Decl(a, b)
	require.NoError(t, err)
	assert.Equal(t, variants, merged.(*ir.EnumBody).Variants)
}

func TestMergeEnumVariantListLengthMismatch(t *testing.T) {
	a := &ir.EnumBody{Name_: "Color", Variants: []ir.Variant{
		{Name: core.NewLoc("Red", core.NoPos), Ordinal: 0},
	}}
	b := &ir.EnumBody{Name_: "Color", Variants: []ir.Variant{
		{Name: core.NewLoc("Red", core.NoPos), Ordinal: 0},
		{Name: core.NewLoc("Green", core.NoPos), Ordinal: 1},
	}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}

func TestMergeEnumOrdinalMismatch(t *testing.T) {
	a := &ir.EnumBody{Name_: "Color", Variants: []ir.Variant{
		{Name: core.NewLoc("Red", core.NoPos), Ordinal: 0},
	}}
	b := &ir.EnumBody{Name_: "Color", Variants: []ir.Variant{
		{Name: core.NewLoc("Red", core.NoPos), Ordinal: 5},
	}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}

func TestMergeServiceSameEndpointsSucceeds(t *testing.T) {
	reqTy := intType()
	eps := []ir.Endpoint{{Ident: "getThing", URL: "/things/{id}", Request: &reqTy}}
	a := &ir.ServiceBody{Name_: "Api", Endpoints: eps}
	b := &ir.ServiceBody{Name_: "Api", Endpoints: eps}

	merged, err := merge.Decl(a, b)
	require.NoError(t, err)
	assert.Equal(t, eps, merged.(*ir.ServiceBody).Endpoints)
}

func TestMergeServiceConflictingURL(t *testing.T) {
	a := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/things/{id}"},
	}}
	b := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/stuff/{id}"},
	}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}

func TestMergeServiceConflictingRequestType(t *testing.T) {
	intTy := intType()
	strTy := strType()
	a := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/things/{id}", Request: &intTy},
	}}
	b := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/things/{id}", Request: &strTy},
	}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}

func TestMergeServiceConflictingResponseType(t *testing.T) {
	intTy := intType()
	strTy := strType()
	a := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/things/{id}", Response: &intTy},
	}}
	b := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/things/{id}", Response: &strTy},
	}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}

func TestMergeServiceEndpointCountMismatch(t *testing.T) {
	a := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/things/{id}"},
	}}
	b := &ir.ServiceBody{Name_: "Api", Endpoints: []ir.Endpoint{
		{Ident: "getThing", URL: "/things/{id}"},
		{Ident: "deleteThing", URL: "/things/{id}"},
	}}

	_, err := merge.Decl(a, b)
	require.Error(t, err)
}
