// Package js emits JavaScript class definitions, grounded on
// original_source/backend/js/src/js_compiler.rs: the JsCompiler
// dispatch mirrors the same process_type/process_tuple/process_enum/
// process_interface shape as every other backend, but since JS carries
// no static type system the emitted classes record field types only
// as a trailing comment, same as the Python backend's approach.
package js

import (
	"fmt"
	"strings"

	"github.com/gitter-badger/reproto/backend"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/process"
)

// Backend emits one .js module per declaration, plus an index.js per
// package that re-exports them.
type Backend struct{}

func (Backend) Name() string { return "js" }

type namer struct{}

func (namer) Primitive(ty ir.Type) (string, error) {
	switch ty.Kind {
	case ir.KindString:
		return "string", nil
	case ir.KindInteger, ir.KindFloat, ir.KindDouble:
		return "number", nil
	case ir.KindBoolean:
		return "boolean", nil
	case ir.KindBytes:
		return "Uint8Array", nil
	case ir.KindAny:
		return "*", nil
	default:
		return "", core.EmitError.New("unsupported primitive type for js backend")
	}
}

func (namer) Array(elem string) string     { return "Array<" + elem + ">" }
func (namer) Map(key, value string) string { return "Map<" + key + ", " + value + ">" }
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
	spec.WriteLine(fmt.Sprintf("class %s {", name))
	if err := writeConstructor(ctx, spec, body.Fields); err != nil {
		return nil, err
	}
	spec.WriteLine("}")
	spec.WriteLine("")
	spec.WriteLine(fmt.Sprintf("module.exports.%s = %s;", name, name))
	return spec, nil
}

func (b Backend) ProcessTuple(ctx *process.Context, reg ir.Registered, body *ir.TupleBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("class %s extends Array {}", name))
	spec.WriteLine(fmt.Sprintf("module.exports.%s = %s;", name, name))
	return spec, nil
}

func (b Backend) ProcessInterface(ctx *process.Context, reg ir.Registered, body *ir.InterfaceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("class %s {}", name))
	spec.WriteLine(fmt.Sprintf("module.exports.%s = %s;", name, name))
	spec.WriteLine("")
	for _, st := range body.SubTypes {
		subName := upperCamel(st.LocalName())
		spec.WriteLine(fmt.Sprintf("class %s extends %s {", subName, name))
		if err := writeConstructor(ctx, spec, body.AllFields(st)); err != nil {
			return nil, err
		}
		spec.WriteLine("}")
		spec.WriteLine(fmt.Sprintf("module.exports.%s = %s;", subName, subName))
		spec.WriteLine("")
	}
	return spec, nil
}

func (b Backend) ProcessEnum(ctx *process.Context, reg ir.Registered, body *ir.EnumBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("const %s = Object.freeze({", name))
	for _, v := range body.Variants {
		spec.WriteLine(fmt.Sprintf("    %s: %d,", v.Name.Value(), v.Ordinal))
	}
	spec.WriteLine("});")
	spec.WriteLine(fmt.Sprintf("module.exports.%s = %s;", name, name))
	return spec, nil
}

func (b Backend) ProcessService(ctx *process.Context, reg ir.Registered, body *ir.ServiceBody) (*process.FileSpec, error) {
	spec := newSpec(reg)
	name := className(reg)
	spec.WriteLine(fmt.Sprintf("class %s {", name))
	for _, ep := range body.Endpoints {
		spec.WriteLine(fmt.Sprintf("    %s(request) { throw new Error('not implemented'); } // %s", ep.Ident, ep.URL))
	}
	spec.WriteLine("}")
	spec.WriteLine(fmt.Sprintf("module.exports.%s = %s;", name, name))
	return spec, nil
}

func (b Backend) IndexFiles(pkg core.Package, specs []*process.FileSpec) []*process.FileSpec {
	spec := &process.FileSpec{Path: backend.PackagePath(pkg) + "/index.js", Package: pkg}
	for _, s := range specs {
		base := strings.TrimSuffix(strings.TrimPrefix(s.Path, backend.PackagePath(pkg)+"/"), ".js")
		spec.WriteLine(fmt.Sprintf("module.exports.%s = require('./%s');", base, base))
	}
	return []*process.FileSpec{spec}
}

func newSpec(reg ir.Registered) *process.FileSpec {
	path := backend.PackagePath(reg.QualifiedName.Package) + "/" + className(reg) + ".js"
	return &process.FileSpec{Path: path}
}

func writeConstructor(ctx *process.Context, spec *process.FileSpec, fields []ir.Field) error {
	var args []string
	for _, f := range fields {
		args = append(args, ctx.Casing(f.Ident))
	}
	spec.WriteLine(fmt.Sprintf("    constructor(%s) {", strings.Join(args, ", ")))
	for _, f := range fields {
		ty, err := ctx.TargetType(f.Type, namer{})
		if err != nil {
			return err
		}
		name := ctx.Casing(f.Ident)
		spec.WriteLine(fmt.Sprintf("        this.%s = %s; // %s", name, name, ty))
	}
	spec.WriteLine("    }")
	return nil
}
