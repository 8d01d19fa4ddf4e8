// Package python emits Python class definitions, grounded on
// original_source/backend/python/src/python_field.rs: the original
// Python backend carries no static type-mapping function at all (its
// PythonField wraps a modifier/ident pair only), so generated classes
// here likewise carry no type annotations — field types are recorded
// as a trailing doc comment rather than enforced at the language level.
package python

import (
	"fmt"
	"strings"

	"github.com/gitter-badger/reproto/backend"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/process"
)

// Backend emits one .py module per declaration, plus an empty
// __init__.py per package.
type Backend struct{}

func (Backend) Name() string { return "python" }

type namer struct{}

// Primitive renders a type only for the doc-comment annotation; Python
// itself never sees these strings.
func (namer) Primitive(ty ir.Type) (string, error) {
	switch ty.Kind {
	case ir.KindString:
		return "str", nil
	case ir.KindInteger:
		return "int", nil
	case ir.KindFloat, ir.KindDouble:
		return "float", nil
	case ir.KindBoolean:
		return "bool", nil
	case ir.KindBytes:
		return "bytes", nil
	case ir.KindAny:
		return "object", nil
	default:
		return "", core.EmitError.New("unsupported primitive type for python backend")
	}
}

func (namer) Array(elem string) string     { return "list[" + elem + "]" }
func (namer) Map(key, value string) string { return "dict[" + key + ", " + value + "]" }
func (namer) Named(pkg core.Package, parts []string) string {
	return strings.Join(parts, ".")
}

func className(reg ir.Registered) string {
	return upperCamel(strings.Join(reg.QualifiedName.Parts, "_"))
}

func upperCamel(ident string) string {
	parts := strings.FieldsFunc(ident, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func (b Backend) ProcessType(ctx *process.Context, reg ir.Registered, body *ir.TypeBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("class %s:", name))
	if err := writeInit(ctx, spec, body.Fields); err != nil {
		return nil, err
	}
	return spec, nil
}

func (b Backend) ProcessTuple(ctx *process.Context, reg ir.Registered, body *ir.TupleBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("class %s(tuple):", name))
	spec.WriteLine("    pass")
	return spec, nil
}

func (b Backend) ProcessInterface(ctx *process.Context, reg ir.Registered, body *ir.InterfaceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("class %s:", name))
	spec.WriteLine("    pass")
	spec.WriteLine("")
	for _, st := range body.SubTypes {
		spec.WriteLine(fmt.Sprintf("class %s(%s):", upperCamel(st.LocalName()), name))
		if err := writeInit(ctx, spec, body.AllFields(st)); err != nil {
			return nil, err
		}
		spec.WriteLine("")
	}
	return spec, nil
}

func (b Backend) ProcessEnum(ctx *process.Context, reg ir.Registered, body *ir.EnumBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine("import enum")
	spec.WriteLine("")
	spec.WriteLine(fmt.Sprintf("class %s(enum.IntEnum):", name))
	for _, v := range body.Variants {
		spec.WriteLine(fmt.Sprintf("    %s = %d", v.Name.Value(), v.Ordinal))
	}
	return spec, nil
}

func (b Backend) ProcessService(ctx *process.Context, reg ir.Registered, body *ir.ServiceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("class %s:", name))
	for _, ep := range body.Endpoints {
		spec.WriteLine(fmt.Sprintf("    def %s(self, request):  # %s", ep.Ident, ep.URL))
		spec.WriteLine("        raise NotImplementedError")
	}
	return spec, nil
}

func (b Backend) IndexFiles(pkg core.Package, specs []*process.FileSpec) []*process.FileSpec {
	path := backend.PackagePath(pkg) + "/__init__.py"
	return []*process.FileSpec{{Path: path, Package: pkg}}
}

func newSpec(reg ir.Registered) *process.FileSpec {
	path := backend.PackagePath(reg.QualifiedName.Package) + "/" + className(reg) + ".py"
	return &process.FileSpec{Path: path}
}

func writeInit(ctx *process.Context, spec *process.FileSpec, fields []ir.Field) error {
	var args []string
	for _, f := range fields {
		args = append(args, ctx.Casing(f.Ident))
	}
	spec.WriteLine(fmt.Sprintf("    def __init__(self, %s):", strings.Join(args, ", ")))
	if len(fields) == 0 {
		spec.WriteLine("        pass")
		return nil
	}
	for _, f := range fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return err
		}
		name := ctx.Casing(f.Ident)
		spec.WriteLine(fmt.Sprintf("        self.%s = %s  # type: %s", name, name, ty))
	}
	return nil
}
