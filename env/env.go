// Package env implements the semantic environment of spec.md §4.4: an
// append-only registry of fully qualified declarations built by
// recursively importing `use`d packages, merging same-named
// declarations contributed by different sources, and resolving name
// lookups against the merged result.
package env

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/gitter-badger/reproto/ast"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/ir"
	"github.com/gitter-badger/reproto/lower"
	"github.com/gitter-badger/reproto/manifest"
	"github.com/gitter-badger/reproto/merge"
	"github.com/gitter-badger/reproto/parser"
	"github.com/gitter-badger/reproto/repository"
	"github.com/gitter-badger/reproto/resolve"
)

// Environment is the set of loaded packages and their registered
// declarations, built incrementally via Import.
type Environment struct {
	log      *logrus.Entry
	resolver resolve.Resolver
	repo     *repository.Repository

	loaded   map[string]core.Package // pkg.ID.String() -> resolved package
	loading  map[string]bool         // pkg.ID.String() -> currently being imported (cycle guard)
	registry map[string]ir.Registered
}

// New builds an empty Environment backed by resolver for finding sources
// and repo for fetching/publishing package content.
func New(resolver resolve.Resolver, repo *repository.Repository, log *logrus.Entry) *Environment {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Environment{
		log:      log,
		resolver: resolver,
		repo:     repo,
		loaded:   map[string]core.Package{},
		loading:  map[string]bool{},
		registry: map[string]ir.Registered{},
	}
}

// Import loads pkg (at a version satisfying rangeText, or any version if
// rangeText is empty), recursively importing its own `use` dependencies
// first, lowering and registering every declaration it defines. Imports
// are memoized by package id: a package already loaded is returned
// without re-parsing. A `use` cycle aborts the whole batch with
// CycleError, per spec.md §4.4. ctx is checked cooperatively before the
// resolver call, so a caller can abort a deep `use` chain without
// waiting for every remaining import to finish, per spec.md §5.
func (e *Environment) Import(ctx context.Context, id core.PackageID, rangeText string) (core.Package, error) {
	if err := ctx.Err(); err != nil {
		return core.Package{}, err
	}
	key := id.String()
	if resolved, ok := e.loaded[key]; ok {
		return resolved, nil
	}
	if e.loading[key] {
		return core.Package{}, core.CycleError.New(key)
	}
	e.loading[key] = true
	defer delete(e.loading, key)

	rng, err := core.ParseVersionRange(rangeText)
	if err != nil {
		return core.Package{}, err
	}

	sources, err := e.resolver.Resolve(ctx, id)
	if err != nil {
		return core.Package{}, err
	}
	candidates := make([]*core.Version, len(sources))
	for i := range sources {
		candidates[i] = &sources[i].Version
	}
	best := core.BestMatch(rng, candidates)
	if best == nil {
		return core.Package{}, core.RepoErrNotFound.New(id.String() + " matching " + rng.String())
	}
	var chosen *resolve.Source
	for i := range sources {
		if sources[i].Version.Compare(best) == 0 {
			chosen = &sources[i]
			break
		}
	}

	pkg := core.Package{ID: id, Version: best}
	e.log.WithFields(logrus.Fields{"package": id.String(), "version": best.String(), "source": chosen.Name}).Info("importing package")

	file, err := parser.Parse(chosen.Name, chosen.Content)
	if err != nil {
		return core.Package{}, err
	}

	aliases, err := e.importUses(ctx, file)
	if err != nil {
		return core.Package{}, err
	}

	decls, err := lower.File(file, pkg, aliases)
	if err != nil {
		return core.Package{}, err
	}

	var batch core.Batch
	for _, decl := range decls {
		batch.Add(e.register(pkg, nil, decl))
	}
	if batch.HasErrors() {
		return core.Package{}, batch.Err()
	}

	e.loaded[key] = pkg
	return pkg, nil
}

func (e *Environment) importUses(ctx context.Context, file *ast.File) (lower.Aliases, error) {
	aliases := lower.Aliases{}
	var batch core.Batch
	for _, useLoc := range file.Uses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		use := useLoc.Value()
		usePkgID := core.NewPackageID(use.Package.Parts...)
		resolved, err := e.Import(ctx, usePkgID, use.Package.Version)
		if err != nil {
			if core.CycleError.Is(err) {
				return nil, err
			}
			batch.Add(err)
			continue
		}
		alias := usePkgID.Parts[len(usePkgID.Parts)-1]
		if use.Alias != nil {
			alias = *use.Alias
		}
		aliases[alias] = resolved
	}
	if batch.HasErrors() {
		return nil, batch.Err()
	}
	return aliases, nil
}

// register recursively registers decl (and any nested declarations, e.g.
// an interface's sub-types) under pkg, qualifying names relative to
// parent when decl is nested.
func (e *Environment) register(pkg core.Package, parent *core.Name, decl ir.Decl) error {
	var name core.Name
	if parent == nil {
		name = core.NewName(pkg, decl.LocalName())
	} else {
		name = parent.Extend(decl.LocalName())
	}
	if err := e.registerOne(name, decl, nil); err != nil {
		return err
	}
	if iface, ok := decl.(*ir.InterfaceBody); ok {
		for _, st := range iface.SubTypes {
			stName := name.Extend(st.LocalName())
			if err := e.registerOne(stName, st, iface); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Environment) registerOne(name core.Name, decl ir.Decl, subTypeOf *ir.InterfaceBody) error {
	key := name.Key()
	existing, ok := e.registry[key]
	if !ok {
		e.registry[key] = ir.Registered{QualifiedName: name, Decl: decl, SubTypeOf: subTypeOf}
		return nil
	}
	merged, err := merge.Decl(existing.Decl, decl)
	if err != nil {
		return err
	}
	e.registry[key] = ir.Registered{QualifiedName: name, Decl: merged, SubTypeOf: existing.SubTypeOf}
	return nil
}

// Lookup resolves a fully qualified name against the registry.
func (e *Environment) Lookup(name core.Name) (ir.Registered, error) {
	reg, ok := e.registry[name.Key()]
	if !ok {
		return ir.Registered{}, core.At(core.NameError.New(name.String()))
	}
	return reg, nil
}

// IterForEachLoc returns every declaration registered under pkg, in
// deterministic lexicographic-by-Name order, per spec.md §4.4/§5.
func (e *Environment) IterForEachLoc(pkg core.PackageID) []ir.Registered {
	var keys []string
	byKey := map[string]ir.Registered{}
	for key, reg := range e.registry {
		if !reg.QualifiedName.Package.ID.Equal(pkg) {
			continue
		}
		keys = append(keys, key)
		byKey[key] = reg
	}
	sort.Strings(keys)
	out := make([]ir.Registered, len(keys))
	for i, k := range keys {
		out[i] = byKey[k]
	}
	return out
}

// Build loads every package a manifest names, in declaration order,
// returning the populated Environment. This is the pipeline shared by
// `check` and `verify` (original_source/src/ops/verify.rs,
// cli/src/ops/check.rs both drive parse→resolve→merge→env identically
// and differ only in their terminal step); an external driver can call
// Build once and then either run semvercheck.Compare or just report
// success, without duplicating the import logic.
func Build(ctx context.Context, resolver resolve.Resolver, repo *repository.Repository, log *logrus.Entry, m *manifest.Manifest) (*Environment, error) {
	e := New(resolver, repo, log)
	var batch core.Batch
	for _, req := range m.Packages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := core.NewPackageID(splitDotted(req.Package)...)
		if _, err := e.Import(ctx, id, req.Version); err != nil {
			batch.Add(err)
		}
	}
	if batch.HasErrors() {
		return nil, batch.Err()
	}
	return e, nil
}

func splitDotted(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// Packages returns every package id successfully imported so far.
func (e *Environment) Packages() []core.Package {
	out := make([]core.Package, 0, len(e.loaded))
	for _, pkg := range e.loaded {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
