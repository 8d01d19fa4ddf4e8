// Package rust emits Rust struct/enum definitions, grounded directly on
// original_source/backend/rust/src/rust_backend.rs's into_rust_type type
// mapping (String/i32-i64/u32-u64/f32/f64/bool/Vec/HashMap/serde_json::Value)
// and its "::"-joined scope / "_"-joined local-name conventions.
package rust

import (
	"fmt"
	"strings"

	"github.com/gitter-badger/reproto/backend"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/process"
)

const (
	typeSep  = "_"
	scopeSep = "::"
)

// Backend emits one Rust module file per package, containing one
// struct/enum per declaration, matching the original's single-file-
// per-compile-unit layout.
type Backend struct{}

func (Backend) Name() string { return "rust" }

type namer struct{}

func (namer) Primitive(ty ir.Type) (string, error) {
	switch ty.Kind {
	case ir.KindString:
		return "String", nil
	case ir.KindInteger:
		size := backend.SizeOrDefault(ty.Size)
		if ty.Signed {
			if size <= 32 {
				return "i32", nil
			}
			return "i64", nil
		}
		if size <= 32 {
			return "u32", nil
		}
		return "u64", nil
	case ir.KindFloat:
		return "f32", nil
	case ir.KindDouble:
		return "f64", nil
	case ir.KindBoolean:
		return "bool", nil
	case ir.KindBytes:
		return "Vec<u8>", nil
	case ir.KindAny:
		return "serde_json::Value", nil
	default:
		return "", core.EmitError.New("unsupported primitive type for rust backend")
	}
}

func (namer) Array(elem string) string      { return "Vec<" + elem + ">" }
func (namer) Map(key, value string) string  { return "std::collections::HashMap<" + key + ", " + value + ">" }
func (namer) Named(pkg core.Package, parts []string) string {
	return strings.Join(parts, scopeSep)
}

func (b Backend) ProcessType(ctx *process.Context, reg ir.Registered, body *ir.TypeBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("pub struct %s {", localName(reg)))
	if err := writeFields(ctx, spec, body.Fields); err != nil {
		return nil, err
	}
	spec.WriteLine("}")
	writeCodeBlocks(spec, body.CodeBlocks)
	return spec, nil
}

func (b Backend) ProcessTuple(ctx *process.Context, reg ir.Registered, body *ir.TupleBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	var fieldTypes []string
	for _, f := range body.Fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return nil, err
		}
		fieldTypes = append(fieldTypes, ty)
	}
	spec.WriteLine(fmt.Sprintf("pub struct %s(%s);", localName(reg), strings.Join(fieldTypes, ", ")))
	writeCodeBlocks(spec, body.CodeBlocks)
	return spec, nil
}

func (b Backend) ProcessInterface(ctx *process.Context, reg ir.Registered, body *ir.InterfaceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("pub enum %s {", localName(reg)))
	for _, st := range body.SubTypes {
		fields := body.AllFields(st)
		var fieldTypes []string
		for _, f := range fields {
			ty, err := ctx.TargetType(f.Type, namer{})
			if err != nil {
				return nil, err
			}
			fieldTypes = append(fieldTypes, fmt.Sprintf("%s: %s", ctx.Casing(f.Ident), ty))
		}
		spec.WriteLine(fmt.Sprintf("    %s { %s },", st.LocalName(), strings.Join(fieldTypes, ", ")))
	}
	spec.WriteLine("}")
	writeCodeBlocks(spec, body.CodeBlocks)
	for _, st := range body.SubTypes {
		writeCodeBlocks(spec, st.CodeBlocks)
	}
	return spec, nil
}

func (b Backend) ProcessEnum(ctx *process.Context, reg ir.Registered, body *ir.EnumBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("pub enum %s {", localName(reg)))
	for _, v := range body.Variants {
		spec.WriteLine(fmt.Sprintf("    %s = %d,", v.Name.Value(), v.Ordinal))
	}
	spec.WriteLine("}")
	writeCodeBlocks(spec, body.CodeBlocks)
	return spec, nil
}

func (b Backend) ProcessService(ctx *process.Context, reg ir.Registered, body *ir.ServiceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("pub trait %s {", localName(reg)))
	for _, ep := range body.Endpoints {
		req := "()"
		if ep.Request != nil {
			ty, err := ctx.TargetType(*ep.Request, namer{})
			if err != nil {
				return nil, err
			}
			req = ty
		}
		resp := "()"
		if ep.Response != nil {
			ty, err := ctx.TargetType(*ep.Response, namer{})
			if err != nil {
				return nil, err
			}
			resp = ty
		}
		spec.WriteLine(fmt.Sprintf("    fn %s(&self, request: %s) -> %s; // %s", ep.Ident, req, resp, ep.URL))
	}
	spec.WriteLine("}")
	writeCodeBlocks(spec, body.CodeBlocks)
	return spec, nil
}

func (b Backend) IndexFiles(pkg core.Package, specs []*process.FileSpec) []*process.FileSpec {
	return nil // a single flat module file per package; no nested index needed
}

func newSpec(reg ir.Registered) *process.FileSpec {
	return &process.FileSpec{Path: strings.Join(reg.QualifiedName.Package.ID.Parts, "/") + ".rs"}
}

func localName(reg ir.Registered) string {
	return strings.Join(reg.QualifiedName.Parts, typeSep)
}

// writeCodeBlocks inlines the "rust"-tagged verbatim block verbatim, per
// spec.md §3; blocks tagged for any other target language are not this
// backend's concern and are dropped.
func writeCodeBlocks(spec *process.FileSpec, blocks map[string][]string) {
	for _, line := range blocks["rust"] {
		spec.WriteLine(line)
	}
}

func writeFields(ctx *process.Context, spec *process.FileSpec, fields []ir.Field) error {
	for _, f := range fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return err
		}
		if f.Optional {
			ty = "Option<" + ty + ">"
		}
		spec.WriteLine(fmt.Sprintf("    pub %s: %s,", ctx.Casing(f.Ident), ty))
	}
	return nil
}
