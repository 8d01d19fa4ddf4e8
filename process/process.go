// Package process implements the package processor of spec.md §4.6: it
// walks an Environment's declarations for a package, dispatches each to
// a pluggable Backend by kind, runs the ordered listener chain over each
// emitted artifact, and finally asks the backend for any hierarchical
// index files. Listener polymorphism is a capability set rather than
// inheritance (spec.md §9): a listener only implements the hook
// interfaces it participates in, and the processor tag-dispatches via a
// type assertion rather than a virtual base class.
package process

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/env"
	"github.com/gitter-badger/reproto/ir"
)

// FileSpec accumulates one output file's content, per spec.md §4.6.
type FileSpec struct {
	Path    string // relative to the backend's output root
	Lines   []string
	Package core.Package
}

// WriteLine appends a line of generated content.
func (f *FileSpec) WriteLine(line string) {
	f.Lines = append(f.Lines, line)
}

// Content joins the accumulated lines with newlines, with a trailing one.
func (f *FileSpec) Content() string {
	if len(f.Lines) == 0 {
		return ""
	}
	return strings.Join(f.Lines, "\n") + "\n"
}

// CaseConverter rewrites an identifier's case, e.g. lower-snake to
// camelCase, as configured by a manifest preset.
type CaseConverter func(string) string

// Identity is the no-op CaseConverter, the default absent a manifest
// override.
func Identity(s string) string { return s }

// Context carries the per-run state a backend's type mapping and
// emission logic needs: the environment for resolving named types, and
// the configured identifier case converter.
type Context struct {
	Env    *env.Environment
	Casing CaseConverter
}

// TargetType resolves ty to the backend's string type representation,
// applying the case converter to any named type's path components. This
// is the pure `into_target_type(ctx, ty)` function of spec.md §4.6;
// backends supply the primitive-type vocabulary via PrimitiveNamer.
func (c *Context) TargetType(ty ir.Type, namer PrimitiveNamer) (string, error) {
	switch ty.Kind {
	case ir.KindArray:
		inner, err := c.TargetType(*ty.Inner, namer)
		if err != nil {
			return "", err
		}
		return namer.Array(inner), nil
	case ir.KindMap:
		key, err := c.TargetType(*ty.Key, namer)
		if err != nil {
			return "", err
		}
		value, err := c.TargetType(*ty.Value, namer)
		if err != nil {
			return "", err
		}
		return namer.Map(key, value), nil
	case ir.KindName:
		reg, err := c.Env.Lookup(ty.Name)
		if err != nil {
			return "", core.At(core.EmitError.New("unresolved type %s", ty.Name.String()))
		}
		parts := make([]string, len(reg.QualifiedName.Parts))
		for i, p := range reg.QualifiedName.Parts {
			parts[i] = c.Casing(p)
		}
		return namer.Named(reg.QualifiedName.Package, parts), nil
	default:
		return namer.Primitive(ty)
	}
}

// PrimitiveNamer supplies a backend's vocabulary for primitive, array,
// map, and named types; TargetType calls into it once array/map/name
// recursion and environment resolution are handled generically.
type PrimitiveNamer interface {
	Primitive(ty ir.Type) (string, error)
	Array(elem string) string
	Map(key, value string) string
	Named(pkg core.Package, parts []string) string
}

// Backend is the pluggable per-language (or per-format) emitter, per
// spec.md §4.6's five process_* dispatch points.
type Backend interface {
	Name() string
	ProcessType(ctx *Context, reg ir.Registered, body *ir.TypeBody) (*FileSpec, error)
	ProcessTuple(ctx *Context, reg ir.Registered, body *ir.TupleBody) (*FileSpec, error)
	ProcessInterface(ctx *Context, reg ir.Registered, body *ir.InterfaceBody) (*FileSpec, error)
	ProcessEnum(ctx *Context, reg ir.Registered, body *ir.EnumBody) (*FileSpec, error)
	ProcessService(ctx *Context, reg ir.Registered, body *ir.ServiceBody) (*FileSpec, error)
	// IndexFiles builds any hierarchical index/module files a directory
	// node needs once every declaration's FileSpec is known. Returns nil
	// for flat-output backends.
	IndexFiles(pkg core.Package, specs []*FileSpec) []*FileSpec
}

// Listener is the capability-tag marker interface every listener
// implements; the hook interfaces below are what the processor actually
// type-asserts against.
type Listener interface {
	ListenerName() string
}

// TypeListener augments a type's FileSpec after the backend emits it.
type TypeListener interface {
	Listener
	OnType(spec *FileSpec, reg ir.Registered, body *ir.TypeBody) error
}

// TupleListener augments a tuple's FileSpec.
type TupleListener interface {
	Listener
	OnTuple(spec *FileSpec, reg ir.Registered, body *ir.TupleBody) error
}

// InterfaceListener augments an interface's FileSpec.
type InterfaceListener interface {
	Listener
	OnInterface(spec *FileSpec, reg ir.Registered, body *ir.InterfaceBody) error
}

// EnumListener augments an enum's FileSpec.
type EnumListener interface {
	Listener
	OnEnum(spec *FileSpec, reg ir.Registered, body *ir.EnumBody) error
}

// ServiceListener augments a service's FileSpec.
type ServiceListener interface {
	Listener
	OnService(spec *FileSpec, reg ir.Registered, body *ir.ServiceBody) error
}

// Processor drives one backend over one package's declarations.
type Processor struct {
	Backend   Backend
	Listeners []Listener
	Casing    CaseConverter
}

// Run processes every declaration IterForEachLoc yields for pkg,
// returning the accumulated FileSpecs plus a batch error describing
// every emission failure (not just the first), per spec.md §4.6. runCtx
// is checked cooperatively between declarations, so a caller can abort a
// large package's emission mid-run, per spec.md §5; it carries no
// deadline into the backend itself, since ProcessX is pure in-memory
// dispatch with no blocking I/O of its own. Specs that share a path (a
// backend that puts a whole package in one file) are concatenated into
// one spec, in iteration order.
func (p *Processor) Run(runCtx context.Context, e *env.Environment, pkg core.Package) ([]*FileSpec, error) {
	casing := p.Casing
	if casing == nil {
		casing = Identity
	}
	ctx := &Context{Env: e, Casing: casing}

	var batch core.Batch
	var specs []*FileSpec
	byPath := map[string]*FileSpec{}
	for _, reg := range e.IterForEachLoc(pkg.ID) {
		if err := runCtx.Err(); err != nil {
			return specs, err
		}
		spec, err := p.dispatch(ctx, reg)
		if err != nil {
			batch.Add(err)
			continue
		}
		if spec == nil {
			continue // sub-types are emitted as part of their owning interface
		}
		spec.Package = pkg
		if prev, ok := byPath[spec.Path]; ok {
			prev.Lines = append(prev.Lines, spec.Lines...)
			continue
		}
		byPath[spec.Path] = spec
		specs = append(specs, spec)
	}

	if index := p.Backend.IndexFiles(pkg, specs); index != nil {
		specs = append(specs, index...)
	}

	if batch.HasErrors() {
		return specs, batch.Err()
	}
	return specs, nil
}

func (p *Processor) dispatch(ctx *Context, reg ir.Registered) (*FileSpec, error) {
	switch body := reg.Decl.(type) {
	case *ir.TypeBody:
		spec, err := p.Backend.ProcessType(ctx, reg, body)
		if err != nil {
			return nil, err
		}
		return spec, p.applyListeners(reg, spec, func(l Listener) error {
			if tl, ok := l.(TypeListener); ok {
				return tl.OnType(spec, reg, body)
			}
			return nil
		})
	case *ir.TupleBody:
		spec, err := p.Backend.ProcessTuple(ctx, reg, body)
		if err != nil {
			return nil, err
		}
		return spec, p.applyListeners(reg, spec, func(l Listener) error {
			if tl, ok := l.(TupleListener); ok {
				return tl.OnTuple(spec, reg, body)
			}
			return nil
		})
	case *ir.InterfaceBody:
		spec, err := p.Backend.ProcessInterface(ctx, reg, body)
		if err != nil {
			return nil, err
		}
		return spec, p.applyListeners(reg, spec, func(l Listener) error {
			if il, ok := l.(InterfaceListener); ok {
				return il.OnInterface(spec, reg, body)
			}
			return nil
		})
	case *ir.EnumBody:
		spec, err := p.Backend.ProcessEnum(ctx, reg, body)
		if err != nil {
			return nil, err
		}
		return spec, p.applyListeners(reg, spec, func(l Listener) error {
			if el, ok := l.(EnumListener); ok {
				return el.OnEnum(spec, reg, body)
			}
			return nil
		})
	case *ir.ServiceBody:
		spec, err := p.Backend.ProcessService(ctx, reg, body)
		if err != nil {
			return nil, err
		}
		return spec, p.applyListeners(reg, spec, func(l Listener) error {
			if sl, ok := l.(ServiceListener); ok {
				return sl.OnService(spec, reg, body)
			}
			return nil
		})
	case *ir.SubTypeBody:
		return nil, nil
	default:
		return nil, core.At(core.EmitError.New("unsupported declaration kind for %s", reg.QualifiedName.String()), reg.Decl.Pos())
	}
}

// applyListeners calls hook for every configured listener in order. A
// listener only ever augments a previously emitted FileSpec (spec.md §9:
// "none may reject"); a hook returning an error aborts emission for this
// one declaration, collected by the caller into the run's batch.
func (p *Processor) applyListeners(reg ir.Registered, spec *FileSpec, hook func(Listener) error) error {
	var batch core.Batch
	for _, l := range p.Listeners {
		if err := hook(l); err != nil {
			batch.Add(core.At(core.EmitError.Wrap(err, "listener %s on %s", l.ListenerName(), reg.QualifiedName.String()), reg.Decl.Pos()))
		}
	}
	return batch.Err()
}

// WriteAll writes every FileSpec to disk under root, writing to a
// sibling temp path then renaming so a partial write never leaves a
// corrupt file in place, per spec.md §5's resource-scoping rule.
func WriteAll(root string, specs []*FileSpec) error {
	var batch core.Batch
	for _, spec := range specs {
		if err := writeOne(root, spec); err != nil {
			batch.Add(err)
		}
	}
	return batch.Err()
}

func writeOne(root string, spec *FileSpec) error {
	path := filepath.Join(root, spec.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.IoError.Wrap(err, "creating output directory for %s", spec.Path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(spec.Content()), 0o644); err != nil {
		return core.IoError.Wrap(err, "writing %s", spec.Path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return core.IoError.Wrap(err, "finalizing %s", spec.Path)
	}
	return nil
}
