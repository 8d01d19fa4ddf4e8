// Package merge implements the pairwise structural merge of spec.md §4.2:
// combining declarations of the same Name contributed by different files
// of one package. Merge is commutative and associative for conforming
// inputs. A conflict is reported as a positioned MergeError naming both
// sites; merging stops at the first conflict found.
package merge

import (
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
)

// Decl merges b into a, returning the combined declaration. a and b must
// be the same concrete Go type (both *ir.TypeBody, both *ir.EnumBody,
// etc.) and are assumed to already share a Name — callers merge by Name
// key before calling this.
func Decl(a, b ir.Decl) (ir.Decl, error) {
	switch av := a.(type) {
	case *ir.TypeBody:
		bv, ok := b.(*ir.TypeBody)
		if !ok {
			return nil, kindMismatch(a, b)
		}
		fields, err := mergeFields(av.Fields, bv.Fields)
		if err != nil {
			return nil, err
		}
		return &ir.TypeBody{Name_: av.Name_, Fields: fields, CodeBlocks: mergeCodeBlocks(av.CodeBlocks, bv.CodeBlocks), Pos_: av.Pos_}, nil

	case *ir.TupleBody:
		bv, ok := b.(*ir.TupleBody)
		if !ok {
			return nil, kindMismatch(a, b)
		}
		fields, err := mergeFields(av.Fields, bv.Fields)
		if err != nil {
			return nil, err
		}
		return &ir.TupleBody{Name_: av.Name_, Fields: fields, CodeBlocks: mergeCodeBlocks(av.CodeBlocks, bv.CodeBlocks), Pos_: av.Pos_}, nil

	case *ir.InterfaceBody:
		bv, ok := b.(*ir.InterfaceBody)
		if !ok {
			return nil, kindMismatch(a, b)
		}
		fields, err := mergeFields(av.Fields, bv.Fields)
		if err != nil {
			return nil, err
		}
		subTypes, err := mergeSubTypes(av.SubTypes, bv.SubTypes)
		if err != nil {
			return nil, err
		}
		return &ir.InterfaceBody{Name_: av.Name_, Fields: fields, SubTypes: subTypes, CodeBlocks: mergeCodeBlocks(av.CodeBlocks, bv.CodeBlocks), Pos_: av.Pos_}, nil

	case *ir.EnumBody:
		bv, ok := b.(*ir.EnumBody)
		if !ok {
			return nil, kindMismatch(a, b)
		}
		if err := sameVariants(av.Variants, bv.Variants, av.Pos_, bv.Pos_); err != nil {
			return nil, err
		}
		return &ir.EnumBody{Name_: av.Name_, Variants: av.Variants, CodeBlocks: mergeCodeBlocks(av.CodeBlocks, bv.CodeBlocks), Pos_: av.Pos_}, nil

	case *ir.ServiceBody:
		bv, ok := b.(*ir.ServiceBody)
		if !ok {
			return nil, kindMismatch(a, b)
		}
		if err := sameEndpoints(av.Endpoints, bv.Endpoints, av.Pos_, bv.Pos_); err != nil {
			return nil, err
		}
		return &ir.ServiceBody{Name_: av.Name_, Endpoints: av.Endpoints, CodeBlocks: mergeCodeBlocks(av.CodeBlocks, bv.CodeBlocks), Pos_: av.Pos_}, nil

	default:
		return nil, core.MergeError.New("unsupported declaration kind for merge")
	}
}

func kindMismatch(a, b ir.Decl) error {
	return core.At(core.MergeError.New("cannot merge declarations of different kinds"), a.Pos(), b.Pos())
}

// mergeFields concatenates two field lists, requiring fields shared by
// name to be structurally identical.
func mergeFields(a, b []ir.Field) ([]ir.Field, error) {
	byName := map[string]ir.Field{}
	out := make([]ir.Field, 0, len(a)+len(b))
	for _, f := range a {
		byName[f.Ident] = f
		out = append(out, f)
	}
	for _, f := range b {
		if existing, ok := byName[f.Ident]; ok {
			if !sameField(existing, f) {
				return nil, core.At(core.MergeError.New("conflicting definitions of field %q", f.Ident), existing.Pos, f.Pos)
			}
			continue
		}
		byName[f.Ident] = f
		out = append(out, f)
	}
	return out, nil
}

func sameField(a, b ir.Field) bool {
	return a.Optional == b.Optional && sameType(a.Type, b.Type)
}

func sameType(a, b ir.Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.KindInteger:
		return a.Signed == b.Signed && a.Size == b.Size
	case ir.KindArray:
		return sameType(*a.Inner, *b.Inner)
	case ir.KindMap:
		return sameType(*a.Key, *b.Key) && sameType(*a.Value, *b.Value)
	case ir.KindName:
		return a.Name.Equal(b.Name)
	default:
		return true
	}
}

// mergeSubTypes requires interfaces to merge sub-type maps keyed by name,
// recursively merging any sub-type both sides define.
func mergeSubTypes(a, b []*ir.SubTypeBody) ([]*ir.SubTypeBody, error) {
	byName := map[string]*ir.SubTypeBody{}
	var order []string
	for _, st := range a {
		byName[st.Name_] = st
		order = append(order, st.Name_)
	}
	for _, st := range b {
		existing, ok := byName[st.Name_]
		if !ok {
			byName[st.Name_] = st
			order = append(order, st.Name_)
			continue
		}
		fields, err := mergeFields(existing.Fields, st.Fields)
		if err != nil {
			return nil, err
		}
		byName[st.Name_] = &ir.SubTypeBody{Name_: st.Name_, Fields: fields, CodeBlocks: mergeCodeBlocks(existing.CodeBlocks, st.CodeBlocks), Pos_: existing.Pos_}
	}
	out := make([]*ir.SubTypeBody, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

func sameVariants(a, b []ir.Variant, aPos, bPos core.Pos) error {
	if len(a) != len(b) {
		return core.At(core.MergeError.New("conflicting enum variant lists"), aPos, bPos)
	}
	for i := range a {
		if a[i].Name.Value() != b[i].Name.Value() || a[i].Ordinal != b[i].Ordinal {
			return core.At(core.MergeError.New("conflicting enum variant %q", a[i].Name.Value()), a[i].Name.Pos(), b[i].Name.Pos())
		}
	}
	return nil
}

func sameEndpoints(a, b []ir.Endpoint, aPos, bPos core.Pos) error {
	if len(a) != len(b) {
		return core.At(core.MergeError.New("conflicting service endpoint lists"), aPos, bPos)
	}
	byName := map[string]ir.Endpoint{}
	for _, e := range a {
		byName[e.Ident] = e
	}
	for _, e := range b {
		existing, ok := byName[e.Ident]
		if !ok || !sameEndpoint(existing, e) {
			return core.At(core.MergeError.New("conflicting endpoint %q", e.Ident), e.Pos, bPos)
		}
	}
	return nil
}

// sameEndpoint requires structural equality of an endpoint's URL and its
// request/response types, per spec.md §4.2's "tuples and services require
// structural equality" — two files naming the same endpoint with
// conflicting wire shapes must fail, not merge silently.
func sameEndpoint(a, b ir.Endpoint) bool {
	if a.URL != b.URL {
		return false
	}
	if !sameOptionalType(a.Request, b.Request) {
		return false
	}
	if !sameOptionalType(a.Response, b.Response) {
		return false
	}
	return sameOptions(a.Options, b.Options)
}

func sameOptionalType(a, b *ir.Type) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return sameType(*a, *b)
}

func sameOptions(a, b map[string][]ir.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !sameValue(av[i], bv[i]) {
				return false
			}
		}
	}
	return true
}

func sameValue(a, b ir.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.ValueString:
		return a.Str == b.Str
	case ir.ValueNumber:
		return a.Num == b.Num
	case ir.ValueBoolean:
		return a.Bool == b.Bool
	case ir.ValueIdent:
		return a.Ident.Equal(b.Ident)
	default:
		return true
	}
}

// mergeCodeBlocks unions two code-block maps, concatenating the lines of
// any language both sides define.
func mergeCodeBlocks(a, b map[string][]string) map[string][]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := map[string][]string{}
	for lang, lines := range a {
		out[lang] = append(out[lang], lines...)
	}
	for lang, lines := range b {
		out[lang] = append(out[lang], lines...)
	}
	return out
}
