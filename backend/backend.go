// Package backend holds the five general-purpose emitters of spec.md
// §4.6's backend dispatch: doc, java, python, js, rust. Each Backend
// implements process.Backend, and each package's unexported namer type
// implements process.PrimitiveNamer, grounded on the original's
// per-backend into_rust_type/into_java_type-style pure type mapping
// functions (original_source/backend/rust/src/rust_backend.rs,
// original_source/src/backend/java/processor.rs).
package backend

import (
	"strings"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/process"
)

// SizeOrDefault returns the field's declared bit width, or 32 when unset
// — every backend below treats 0 as "default 32-bit", matching the
// original's `size.map(|s| s <= 32).unwrap_or(true)` fallback.
func SizeOrDefault(size uint) uint {
	if size == 0 {
		return 32
	}
	return size
}

// PackagePath renders a resolved package's dotted id as a slash path,
// the common "directory per package component" convention every
// hierarchical backend below uses for its output layout.
func PackagePath(pkg core.Package) string {
	return strings.Join(pkg.ID.Parts, "/")
}

// FieldLine renders one field declaration line with ctx's type mapping
// and the given template. None of the backends in this module call it;
// each renders its own field lines.
func FieldLine(ctx *process.Context, namer process.PrimitiveNamer, f ir.Field, tmpl func(name, ty string) string) (string, error) {
	ty, err := ctx.TargetType(f.Type, namer)
	if err != nil {
		return "", err
	}
	return tmpl(ctx.Casing(f.Ident), ty), nil
}
