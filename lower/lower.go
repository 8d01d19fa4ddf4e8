// Package lower turns a parsed ast.File into ir.Decls for a single
// package, per spec.md §4.1's "into model" pass: threading positions,
// resolving `use` aliases to already-loaded packages, flattening grouped
// members into typed lists, and rejecting the two lowering-time
// conflicts named in spec.md §9 (an enum's `field_as` only ever affects
// wire form, and `any` is forbidden as a map key).
package lower

import (
	"github.com/gitter-badger/reproto/ast"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
)

// Aliases maps an import alias (the name after `as`, or the last dotted
// segment of the `use` path when no alias was given) to the fully
// resolved package it refers to. The caller (env.Import) builds this
// after resolving every `use` in the file to a concrete version, and
// before lowering is invoked, so named-type references can be fully
// qualified here rather than deferred.
type Aliases map[string]core.Package

// File lowers every declaration in file into ir.Decl values owned by pkg.
// Errors from all declarations come back as one flat BatchError.
func File(file *ast.File, pkg core.Package, aliases Aliases) ([]ir.Decl, error) {
	var batch core.Batch
	var out []ir.Decl
	for _, declLoc := range file.Decls {
		decl, err := lowerDecl(declLoc, pkg, aliases)
		if err != nil {
			if nested, ok := err.(*core.BatchError); ok {
				for _, e := range nested.Errs {
					batch.Add(e)
				}
				continue
			}
			batch.Add(err)
			continue
		}
		out = append(out, decl)
	}
	if batch.HasErrors() {
		return nil, batch.Err()
	}
	return out, nil
}

func lowerDecl(declLoc core.Loc[ast.Decl], pkg core.Package, aliases Aliases) (ir.Decl, error) {
	decl := declLoc.Value()
	switch decl.Kind {
	case ast.DeclType:
		fields, err := lowerFields(decl.Members, pkg, aliases)
		if err != nil {
			return nil, err
		}
		return &ir.TypeBody{Name_: decl.Name.Value(), Fields: fields, CodeBlocks: lowerCodeBlocks(decl.Members), Pos_: declLoc.Pos()}, nil
	case ast.DeclTuple:
		fields, err := lowerFields(decl.Members, pkg, aliases)
		if err != nil {
			return nil, err
		}
		return &ir.TupleBody{Name_: decl.Name.Value(), Fields: fields, CodeBlocks: lowerCodeBlocks(decl.Members), Pos_: declLoc.Pos()}, nil
	case ast.DeclInterface:
		return lowerInterface(decl, declLoc.Pos(), pkg, aliases)
	case ast.DeclEnum:
		return lowerEnum(decl, declLoc.Pos(), pkg, aliases)
	case ast.DeclService:
		return lowerService(decl, declLoc.Pos(), pkg, aliases)
	default:
		return nil, core.At(core.ModelError.New("unknown declaration kind"), declLoc.Pos())
	}
}

// lowerCodeBlocks collects every `lang {{ ... }}` verbatim block out of a
// decl/sub-type's member list, keyed by target language. Multiple blocks
// naming the same language are concatenated in source order.
func lowerCodeBlocks(members []ast.Member) map[string][]string {
	var out map[string][]string
	for _, m := range members {
		code, ok := m.(ast.Code)
		if !ok {
			continue
		}
		if out == nil {
			out = map[string][]string{}
		}
		out[code.Context] = append(out[code.Context], code.Lines...)
	}
	return out
}

func lowerFields(members []ast.Member, pkg core.Package, aliases Aliases) ([]ir.Field, error) {
	var batch core.Batch
	var fields []ir.Field
	seen := map[string]core.Pos{}
	for _, m := range members {
		f, ok := m.(ast.Field)
		if !ok {
			continue // code blocks are collected by lowerCodeBlocks; options and match blocks are not lowered
		}
		field, err := lowerField(f, pkg, aliases)
		if err != nil {
			batch.Add(err)
			continue
		}
		if prev, dup := seen[field.Ident]; dup {
			batch.Add(core.At(core.ModelError.New("duplicate field %q", field.Ident), field.Pos, prev))
			continue
		}
		seen[field.Ident] = field.Pos
		fields = append(fields, field)
	}
	if batch.HasErrors() {
		return nil, batch.Err()
	}
	return fields, nil
}

func lowerField(f ast.Field, pkg core.Package, aliases Aliases) (ir.Field, error) {
	ty, err := lowerType(f.Type, pkg, aliases)
	if err != nil {
		return ir.Field{}, err
	}
	if ty.Kind == ir.KindMap && ty.Key.Kind == ir.KindAny {
		return ir.Field{}, core.At(core.ModelError.New("'any' is not allowed as a map key"), f.Type.Pos())
	}
	field := ir.Field{Ident: f.Name.Value(), Optional: f.Optional, Type: ty, Pos: f.Name.Pos()}
	if f.As != nil {
		v := lowerValue(f.As.Value())
		field.As = &v
	}
	return field, nil
}

func lowerType(tyLoc core.Loc[ast.Type], pkg core.Package, aliases Aliases) (ir.Type, error) {
	t := tyLoc.Value()
	switch t.Kind {
	case ast.TypeInteger:
		size := uint(32)
		if t.Size != nil {
			size = *t.Size
		}
		return ir.Type{Kind: ir.KindInteger, Signed: t.Signed, Size: size}, nil
	case ast.TypeFloat:
		return ir.Type{Kind: ir.KindFloat}, nil
	case ast.TypeDouble:
		return ir.Type{Kind: ir.KindDouble}, nil
	case ast.TypeBoolean:
		return ir.Type{Kind: ir.KindBoolean}, nil
	case ast.TypeString:
		return ir.Type{Kind: ir.KindString}, nil
	case ast.TypeBytes:
		return ir.Type{Kind: ir.KindBytes}, nil
	case ast.TypeAny:
		return ir.Type{Kind: ir.KindAny}, nil
	case ast.TypeArray:
		inner, err := lowerType(core.NewLoc(*t.Inner, tyLoc.Pos()), pkg, aliases)
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Type{Kind: ir.KindArray, Inner: &inner}, nil
	case ast.TypeMap:
		key, err := lowerType(core.NewLoc(*t.Key, tyLoc.Pos()), pkg, aliases)
		if err != nil {
			return ir.Type{}, err
		}
		value, err := lowerType(core.NewLoc(*t.Value, tyLoc.Pos()), pkg, aliases)
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Type{Kind: ir.KindMap, Key: &key, Value: &value}, nil
	case ast.TypeName:
		namePkg := pkg
		prefix := ""
		if t.Prefix != nil {
			prefix = *t.Prefix
			resolved, ok := aliases[prefix]
			if !ok {
				return ir.Type{}, core.At(core.NameError.New("no 'use' import matches prefix %q", prefix), tyLoc.Pos())
			}
			namePkg = resolved
		}
		name := core.NewName(namePkg, t.Parts...).WithPrefix(prefix)
		return ir.Type{Kind: ir.KindName, Name: name}, nil
	default:
		return ir.Type{}, core.At(core.ModelError.New("unknown type kind"), tyLoc.Pos())
	}
}

func lowerValue(v ast.Value) ir.Value {
	switch v.Kind {
	case ast.ValueString:
		return ir.Value{Kind: ir.ValueString, Str: v.Str}
	case ast.ValueNumber:
		return ir.Value{Kind: ir.ValueNumber, Num: v.Num}
	case ast.ValueBoolean:
		return ir.Value{Kind: ir.ValueBoolean, Bool: v.Bool}
	case ast.ValueIdent:
		if len(v.Ident) == 0 {
			return ir.Value{Kind: ir.ValueIdent}
		}
		return ir.Value{Kind: ir.ValueIdent, Ident: core.NewName(core.Package{}, v.Ident...)}
	default:
		return ir.Value{}
	}
}

func lowerInterface(decl ast.Decl, pos core.Pos, pkg core.Package, aliases Aliases) (ir.Decl, error) {
	var batch core.Batch
	var sharedMembers []ast.Member
	var subTypeMembers []ast.SubType
	for _, m := range decl.Members {
		if st, ok := m.(ast.SubType); ok {
			subTypeMembers = append(subTypeMembers, st)
			continue
		}
		sharedMembers = append(sharedMembers, m)
	}
	shared, err := lowerFields(sharedMembers, pkg, aliases)
	if err != nil {
		batch.Add(err)
	}

	seenSub := map[string]core.Pos{}
	var subTypes []*ir.SubTypeBody
	for _, st := range subTypeMembers {
		name := st.Name.Value()
		if prev, dup := seenSub[name]; dup {
			batch.Add(core.At(core.ModelError.New("duplicate sub-type %q", name), st.Name.Pos(), prev))
			continue
		}
		seenSub[name] = st.Name.Pos()
		fields, err := lowerFields(st.Members, pkg, aliases)
		if err != nil {
			batch.Add(err)
			continue
		}
		subTypes = append(subTypes, &ir.SubTypeBody{Name_: name, Fields: fields, CodeBlocks: lowerCodeBlocks(st.Members), Pos_: st.Name.Pos()})
	}

	if batch.HasErrors() {
		return nil, batch.Err()
	}
	return &ir.InterfaceBody{Name_: decl.Name.Value(), Fields: shared, SubTypes: subTypes, CodeBlocks: lowerCodeBlocks(sharedMembers), Pos_: pos}, nil
}

func lowerEnum(decl ast.Decl, pos core.Pos, pkg core.Package, aliases Aliases) (ir.Decl, error) {
	var batch core.Batch
	seen := map[string]core.Pos{}
	var variants []ir.Variant
	ordinal := 0
	for _, vLoc := range decl.Variants {
		v := vLoc.Value()
		name := v.Name.Value()
		if prev, dup := seen[name]; dup {
			batch.Add(core.At(core.ModelError.New("duplicate enum variant %q", name), v.Name.Pos(), prev))
			continue
		}
		seen[name] = v.Name.Pos()
		o := ordinal
		if v.Ordinal != nil {
			ov := v.Ordinal.Value()
			if ov.Kind == ast.ValueNumber {
				o = int(ov.Num)
			}
		}
		var args []ir.Value
		for _, a := range v.Args {
			args = append(args, lowerValue(a.Value()))
		}
		variants = append(variants, ir.Variant{Name: v.Name, Ordinal: o, Args: args})
		ordinal = o + 1
	}
	// `serialized_as`/`field_as`-style options on the enum body (e.g.
	// `serialized_as "name";`) are wire-representation-only per spec.md
	// §9(a); they never affect variant identity or lookup, so they are
	// parsed but intentionally not folded into the Variant's Name/Ordinal.
	if batch.HasErrors() {
		return nil, batch.Err()
	}
	return &ir.EnumBody{Name_: decl.Name.Value(), Variants: variants, CodeBlocks: lowerCodeBlocks(decl.Members), Pos_: pos}, nil
}

func lowerService(decl ast.Decl, pos core.Pos, pkg core.Package, aliases Aliases) (ir.Decl, error) {
	var batch core.Batch
	var endpoints []ir.Endpoint
	seen := map[string]core.Pos{}
	for _, m := range decl.Members {
		ep, ok := m.(ast.Endpoint)
		if !ok {
			continue // code blocks are collected separately below
		}
		name := ep.Name.Value()
		if prev, dup := seen[name]; dup {
			batch.Add(core.At(core.ModelError.New("duplicate endpoint %q", name), ep.Name.Pos(), prev))
			continue
		}
		seen[name] = ep.Name.Pos()

		endpoint := ir.Endpoint{Ident: name, URL: ep.URL.Value(), Pos: ep.Name.Pos()}
		if ep.Request != nil {
			ty, err := lowerType(*ep.Request, pkg, aliases)
			if err != nil {
				batch.Add(err)
				continue
			}
			endpoint.Request = &ty
		}
		if ep.Response != nil {
			ty, err := lowerType(*ep.Response, pkg, aliases)
			if err != nil {
				batch.Add(err)
				continue
			}
			endpoint.Response = &ty
		}
		if len(ep.Options) > 0 {
			endpoint.Options = map[string][]ir.Value{}
			for _, opt := range ep.Options {
				var values []ir.Value
				for _, v := range opt.Values {
					values = append(values, lowerValue(v.Value()))
				}
				endpoint.Options[opt.Name] = values
			}
		}
		endpoints = append(endpoints, endpoint)
	}
	if batch.HasErrors() {
		return nil, batch.Err()
	}
	return &ir.ServiceBody{Name_: decl.Name.Value(), Endpoints: endpoints, CodeBlocks: lowerCodeBlocks(decl.Members), Pos_: pos}, nil
}
