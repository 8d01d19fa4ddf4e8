// Package doc emits Markdown reference documentation, one page per
// declaration, via the same FileSpec abstraction every other backend
// uses. Markdown is built directly with fmt/strings rather than a
// rendering library: see DESIGN.md for why no Markdown dependency from
// the retrieved pack was available to ground this on.
package doc

import (
	"fmt"
	"strings"

	"github.com/gitter-badger/reproto/backend"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/process"
)

// Backend emits one .md file per declaration plus a package index.
type Backend struct{}

func (Backend) Name() string { return "doc" }

type namer struct{}

func (namer) Primitive(ty ir.Type) (string, error) {
	switch ty.Kind {
	case ir.KindString:
		return "string", nil
	case ir.KindInteger:
		sign := "unsigned"
		if ty.Signed {
			sign = "signed"
		}
		size := backend.SizeOrDefault(ty.Size)
		return fmt.Sprintf("%s/%d", sign, size), nil
	case ir.KindFloat:
		return "float", nil
	case ir.KindDouble:
		return "double", nil
	case ir.KindBoolean:
		return "boolean", nil
	case ir.KindBytes:
		return "bytes", nil
	case ir.KindAny:
		return "any", nil
	default:
		return "", core.EmitError.New("unsupported primitive type for doc backend")
	}
}

func (namer) Array(elem string) string     { return "[" + elem + "]" }
func (namer) Map(key, value string) string { return "{" + key + ": " + value + "}" }
func (namer) Named(pkg core.Package, parts []string) string {
	return strings.Join(parts, ".")
}

func heading(reg ir.Registered) string {
	return strings.Join(reg.QualifiedName.Parts, ".")
}

// body.CodeBlocks is deliberately never read here: verbatim code blocks
// are a target-language concern (spec.md §3), not documentation.
func (b Backend) ProcessType(ctx *process.Context, reg ir.Registered, body *ir.TypeBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("# %s", heading(reg)))
	spec.WriteLine("")
	spec.WriteLine("Type.")
	spec.WriteLine("")
	if err := writeFieldTable(ctx, spec, body.Fields); err != nil {
		return nil, err
	}
	return spec, nil
}

func (b Backend) ProcessTuple(ctx *process.Context, reg ir.Registered, body *ir.TupleBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("# %s", heading(reg)))
	spec.WriteLine("")
	spec.WriteLine("Tuple (positional fields).")
	spec.WriteLine("")
	if err := writeFieldTable(ctx, spec, body.Fields); err != nil {
		return nil, err
	}
	return spec, nil
}

func (b Backend) ProcessInterface(ctx *process.Context, reg ir.Registered, body *ir.InterfaceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("# %s", heading(reg)))
	spec.WriteLine("")
	spec.WriteLine("Interface with the following sub-types:")
	spec.WriteLine("")
	for _, st := range body.SubTypes {
		spec.WriteLine(fmt.Sprintf("- `%s`", st.LocalName()))
	}
	spec.WriteLine("")
	if len(body.Fields) > 0 {
		spec.WriteLine("## Shared fields")
		spec.WriteLine("")
		if err := writeFieldTable(ctx, spec, body.Fields); err != nil {
			return nil, err
		}
	}
	for _, st := range body.SubTypes {
		spec.WriteLine(fmt.Sprintf("## %s", st.LocalName()))
		spec.WriteLine("")
		if err := writeFieldTable(ctx, spec, body.AllFields(st)); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

func (b Backend) ProcessEnum(ctx *process.Context, reg ir.Registered, body *ir.EnumBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("# %s", heading(reg)))
	spec.WriteLine("")
	spec.WriteLine("| Variant | Ordinal |")
	spec.WriteLine("| --- | --- |")
	for _, v := range body.Variants {
		spec.WriteLine(fmt.Sprintf("| %s | %d |", v.Name.Value(), v.Ordinal))
	}
	return spec, nil
}

func (b Backend) ProcessService(ctx *process.Context, reg ir.Registered, body *ir.ServiceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	spec.WriteLine(fmt.Sprintf("# %s", heading(reg)))
	spec.WriteLine("")
	for _, ep := range body.Endpoints {
		req := "-"
		if ep.Request != nil {
			ty, err := ctx.TargetType(*ep.Request, namer{})
			if err != nil {
				return nil, err
			}
			req = ty
		}
		resp := "-"
		if ep.Response != nil {
			ty, err := ctx.TargetType(*ep.Response, namer{})
			if err != nil {
				return nil, err
			}
			resp = ty
		}
		spec.WriteLine(fmt.Sprintf("## %s", ep.Ident))
		spec.WriteLine("")
		spec.WriteLine(fmt.Sprintf("`%s`", ep.URL))
		spec.WriteLine("")
		spec.WriteLine(fmt.Sprintf("- request: %s", req))
		spec.WriteLine(fmt.Sprintf("- response: %s", resp))
		spec.WriteLine("")
	}
	return spec, nil
}

func (b Backend) IndexFiles(pkg core.Package, specs []*process.FileSpec) []*process.FileSpec {
	spec := &process.FileSpec{Path: backend.PackagePath(pkg) + "/README.md", Package: pkg}
	spec.WriteLine(fmt.Sprintf("# %s", strings.Join(pkg.ID.Parts, ".")))
	spec.WriteLine("")
	for _, s := range specs {
		name := strings.TrimSuffix(strings.TrimPrefix(s.Path, backend.PackagePath(pkg)+"/"), ".md")
		spec.WriteLine(fmt.Sprintf("- [%s](%s.md)", name, name))
	}
	return []*process.FileSpec{spec}
}

func newSpec(reg ir.Registered) *process.FileSpec {
	path := backend.PackagePath(reg.QualifiedName.Package) + "/" + strings.Join(reg.QualifiedName.Parts, "_") + ".md"
	return &process.FileSpec{Path: path}
}

func writeFieldTable(ctx *process.Context, spec *process.FileSpec, fields []ir.Field) error {
	spec.WriteLine("| Field | Type | Optional |")
	spec.WriteLine("| --- | --- | --- |")
	for _, f := range fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return err
		}
		spec.WriteLine(fmt.Sprintf("| %s | %s | %t |", ctx.Casing(f.Ident), ty, f.Optional))
	}
	spec.WriteLine("")
	return nil
}
