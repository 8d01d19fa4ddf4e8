// Package java emits Java class/interface/enum source, grounded on
// original_source/src/backend/java/processor.rs's convert_type
// (String/Integer/Long/Float/Double/List/Map/Object) and its
// upper-camel-case class naming convention.
package java

import (
	"fmt"
	"strings"

	"github.com/gitter-badger/reproto/backend"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/process"
)

// Backend emits one .java file per declaration, matching the
// original's one-public-class-per-file Java convention.
type Backend struct{}

func (Backend) Name() string { return "java" }

type namer struct{}

func (namer) Primitive(ty ir.Type) (string, error) {
	switch ty.Kind {
	case ir.KindString:
		return "String", nil
	case ir.KindInteger:
		if backend.SizeOrDefault(ty.Size) <= 32 {
			return "Integer", nil
		}
		return "Long", nil
	case ir.KindFloat:
		return "Float", nil
	case ir.KindDouble:
		return "Double", nil
	case ir.KindBoolean:
		return "Boolean", nil
	case ir.KindBytes:
		return "byte[]", nil
	case ir.KindAny:
		return "Object", nil
	default:
		return "", core.EmitError.New("unsupported primitive type for java backend")
	}
}

func (namer) Array(elem string) string     { return "List<" + elem + ">" }
func (namer) Map(key, value string) string { return "Map<" + key + ", " + value + ">" }
func (namer) Named(pkg core.Package, parts []string) string {
	return strings.Join(parts, ".")
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

func className(reg ir.Registered) string {
	return upperCamel(strings.Join(reg.QualifiedName.Parts, "."))
}

func (b Backend) ProcessType(ctx *process.Context, reg ir.Registered, body *ir.TypeBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	className := className(reg)
	spec.WriteLine(fmt.Sprintf("public class %s {", className))
	for _, f := range body.Fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return nil, err
		}
		if f.Optional {
			ty = "Optional<" + ty + ">"
		}
		spec.WriteLine(fmt.Sprintf("    private final %s %s;", ty, ctx.Casing(f.Ident)))
	}
	spec.WriteLine("")
	if err := writeConstructor(ctx, spec, className, body.Fields); err != nil {
		return nil, err
	}
	spec.WriteLine("}")
	return spec, nil
}

func (b Backend) ProcessTuple(ctx *process.Context, reg ir.Registered, body *ir.TupleBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	className := className(reg)
	spec.WriteLine(fmt.Sprintf("public class %s {", className))
	for _, f := range body.Fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return nil, err
		}
		spec.WriteLine(fmt.Sprintf("    private final %s %s; // positional", ty, ctx.Casing(f.Ident)))
	}
	spec.WriteLine("}")
	return spec, nil
}

func (b Backend) ProcessInterface(ctx *process.Context, reg ir.Registered, body *ir.InterfaceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	className := className(reg)
	spec.WriteLine(fmt.Sprintf("public interface %s {", className))
	spec.WriteLine("    String TYPE_FIELD = \"kind\";")
	for _, f := range body.Fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return nil, err
		}
		spec.WriteLine(fmt.Sprintf("    %s %s();", ty, getterName(f.Ident)))
	}
	spec.WriteLine("}")
	for _, st := range body.SubTypes {
		spec.WriteLine("")
		spec.WriteLine(fmt.Sprintf("// sub-type %s implements %s", upperCamel(st.LocalName()), className))
		spec.WriteLine(fmt.Sprintf("public class %s implements %s {", upperCamel(st.LocalName()), className))
		for _, f := range body.AllFields(st) {
			ty, err := ctx.TargetType(f.Type, namer{})
			if err != nil {
				return nil, err
			}
			spec.WriteLine(fmt.Sprintf("    private final %s %s;", ty, ctx.Casing(f.Ident)))
		}
		spec.WriteLine("}")
	}
	return spec, nil
}

func getterName(ident string) string {
	return "get" + upperCamel(ident)
}

func (b Backend) ProcessEnum(ctx *process.Context, reg ir.Registered, body *ir.EnumBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	className := className(reg)
	spec.WriteLine(fmt.Sprintf("public enum %s {", className))
	names := make([]string, len(body.Variants))
	for i, v := range body.Variants {
		names[i] = fmt.Sprintf("    %s(%d)", v.Name.Value(), v.Ordinal)
	}
	spec.WriteLine(strings.Join(names, ",\n") + ";")
	spec.WriteLine("}")
	return spec, nil
}

func (b Backend) ProcessService(ctx *process.Context, reg ir.Registered, body *ir.ServiceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	className := className(reg)
	spec.WriteLine(fmt.Sprintf("public interface %s {", className))
	for _, ep := range body.Endpoints {
		req := "void"
		if ep.Request != nil {
			ty, err := ctx.TargetType(*ep.Request, namer{})
			if err != nil {
				return nil, err
			}
			req = ty
		}
		resp := "void"
		if ep.Response != nil {
			ty, err := ctx.TargetType(*ep.Response, namer{})
			if err != nil {
				return nil, err
			}
			resp = ty
		}
		spec.WriteLine(fmt.Sprintf("    %s %s(%s request); // %s", resp, ep.Ident, req, ep.URL))
	}
	spec.WriteLine("}")
	return spec, nil
}

func (b Backend) IndexFiles(pkg core.Package, specs []*process.FileSpec) []*process.FileSpec {
	return nil // Java resolves packages by directory layout alone; no index file needed
}

func newSpec(reg ir.Registered) *process.FileSpec {
	path := backend.PackagePath(reg.QualifiedName.Package) + "/" + className(reg) + ".java"
	return &process.FileSpec{Path: path}
}

func writeConstructor(ctx *process.Context, spec *process.FileSpec, className string, fields []ir.Field) error {
	var args []string
	for _, f := range fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return err
		}
		if f.Optional {
			ty = "Optional<" + ty + ">"
		}
		args = append(args, fmt.Sprintf("final %s %s", ty, ctx.Casing(f.Ident)))
	}
	spec.WriteLine(fmt.Sprintf("    public %s(%s) {", className, strings.Join(args, ", ")))
	for _, f := range fields {
		name := ctx.Casing(f.Ident)
		spec.WriteLine(fmt.Sprintf("        this.%s = %s;", name, name))
	}
	spec.WriteLine("    }")
	return nil
}
