// Package semvercheck implements spec.md §4.5: comparing two
// environments of the same package at versions v_old < v_new and
// classifying each Name's difference as Compatible, Minor, or Breaking.
package semvercheck

import (
	"sort"

	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/env"
	"github.com/gitter-badger/reproto/ir"
)

// Classification is the severity bucket a single Name's change falls
// into.
type Classification int

const (
	Compatible Classification = iota
	Minor
	Breaking
)

func (c Classification) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case Minor:
		return "minor"
	case Breaking:
		return "breaking"
	default:
		return "unknown"
	}
}

// Change is one Name's classified difference between the old and new
// environments.
type Change struct {
	Name   core.Name
	Class  Classification
	Reason string
}

// Report is the full set of changes between two versions of a package.
type Report struct {
	Changes []Change
}

// HasBreaking reports whether any change in the report is Breaking.
func (r Report) HasBreaking() bool {
	for _, c := range r.Changes {
		if c.Class == Breaking {
			return true
		}
	}
	return false
}

// Compare classifies the difference between oldEnv and newEnv's
// registrations of pkg, per spec.md §4.5. Declarations present on only
// one side are reported as added/removed (Compatible for additions,
// Breaking for removals, matching the rule that removing a wire-visible
// declaration is always breaking).
func Compare(oldEnv, newEnv *env.Environment, pkg core.PackageID) Report {
	oldDecls := indexByKey(oldEnv.IterForEachLoc(pkg))
	newDecls := indexByKey(newEnv.IterForEachLoc(pkg))

	var keys []string
	seen := map[string]bool{}
	for k := range oldDecls {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range newDecls {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var report Report
	for _, key := range keys {
		oldReg, hasOld := oldDecls[key]
		newReg, hasNew := newDecls[key]
		switch {
		case hasOld && !hasNew:
			report.Changes = append(report.Changes, Change{Name: oldReg.QualifiedName, Class: Breaking, Reason: "declaration removed"})
		case !hasOld && hasNew:
			report.Changes = append(report.Changes, Change{Name: newReg.QualifiedName, Class: Compatible, Reason: "declaration added"})
		default:
			report.Changes = append(report.Changes, compareDecl(oldReg, newReg)...)
		}
	}
	return report
}

func indexByKey(regs []ir.Registered) map[string]ir.Registered {
	out := make(map[string]ir.Registered, len(regs))
	for _, r := range regs {
		out[r.QualifiedName.String()] = r
	}
	return out
}

func compareDecl(oldReg, newReg ir.Registered) []Change {
	name := newReg.QualifiedName
	switch oldDecl := oldReg.Decl.(type) {
	case *ir.TypeBody:
		newDecl, ok := newReg.Decl.(*ir.TypeBody)
		if !ok {
			return []Change{{Name: name, Class: Breaking, Reason: "declaration kind changed"}}
		}
		return compareFields(name, oldDecl.Fields, newDecl.Fields)
	case *ir.TupleBody:
		newDecl, ok := newReg.Decl.(*ir.TupleBody)
		if !ok {
			return []Change{{Name: name, Class: Breaking, Reason: "declaration kind changed"}}
		}
		return compareFields(name, oldDecl.Fields, newDecl.Fields)
	case *ir.SubTypeBody:
		newDecl, ok := newReg.Decl.(*ir.SubTypeBody)
		if !ok {
			return []Change{{Name: name, Class: Breaking, Reason: "declaration kind changed"}}
		}
		return compareFields(name, oldDecl.Fields, newDecl.Fields)
	case *ir.InterfaceBody:
		newDecl, ok := newReg.Decl.(*ir.InterfaceBody)
		if !ok {
			return []Change{{Name: name, Class: Breaking, Reason: "declaration kind changed"}}
		}
		changes := compareFields(name, oldDecl.Fields, newDecl.Fields)
		changes = append(changes, compareSubTypes(name, oldDecl.SubTypes, newDecl.SubTypes)...)
		return changes
	case *ir.EnumBody:
		newDecl, ok := newReg.Decl.(*ir.EnumBody)
		if !ok {
			return []Change{{Name: name, Class: Breaking, Reason: "declaration kind changed"}}
		}
		return compareVariants(name, oldDecl.Variants, newDecl.Variants)
	case *ir.ServiceBody:
		newDecl, ok := newReg.Decl.(*ir.ServiceBody)
		if !ok {
			return []Change{{Name: name, Class: Breaking, Reason: "declaration kind changed"}}
		}
		return compareEndpoints(name, oldDecl.Endpoints, newDecl.Endpoints)
	default:
		return nil
	}
}

func compareFields(name core.Name, oldFields, newFields []ir.Field) []Change {
	oldByIdent := map[string]ir.Field{}
	for _, f := range oldFields {
		oldByIdent[f.Ident] = f
	}
	newByIdent := map[string]ir.Field{}
	for _, f := range newFields {
		newByIdent[f.Ident] = f
	}

	var changes []Change
	var unmatchedOld, unmatchedNew []string
	for ident, oldF := range oldByIdent {
		newF, ok := newByIdent[ident]
		if !ok {
			unmatchedOld = append(unmatchedOld, ident)
			continue
		}
		if !sameType(oldF.Type, newF.Type) {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "field " + ident + " changed type"})
			continue
		}
		if oldF.Optional && !newF.Optional {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "field " + ident + " became required"})
			continue
		}
		if !oldF.Optional && newF.Optional {
			changes = append(changes, Change{Name: name, Class: Compatible, Reason: "field " + ident + " became optional"})
			continue
		}
		if oldF.FieldAs() != newF.FieldAs() {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "field " + ident + " wire alias changed"})
		}
	}
	for ident := range newByIdent {
		if _, ok := oldByIdent[ident]; !ok {
			unmatchedNew = append(unmatchedNew, ident)
		}
	}

	// Before treating an unmatched field as removed/added, try to pair it
	// by wire alias: a field renamed in source but keeping the same
	// FieldAs() is the spec's documented Minor case, not a breaking
	// removal plus an unrelated addition.
	pairedNew := map[string]bool{}
	var stillUnmatchedOld []string
	for _, oldIdent := range unmatchedOld {
		oldF := oldByIdent[oldIdent]
		paired := ""
		for _, newIdent := range unmatchedNew {
			if pairedNew[newIdent] {
				continue
			}
			newF := newByIdent[newIdent]
			if oldF.FieldAs() == newF.FieldAs() && sameType(oldF.Type, newF.Type) && oldF.Optional == newF.Optional {
				paired = newIdent
				break
			}
		}
		if paired == "" {
			stillUnmatchedOld = append(stillUnmatchedOld, oldIdent)
			continue
		}
		pairedNew[paired] = true
		changes = append(changes, Change{Name: name, Class: Minor, Reason: "field " + oldIdent + " renamed to " + paired + " (wire alias unchanged)"})
	}

	for _, ident := range stillUnmatchedOld {
		changes = append(changes, Change{Name: name, Class: Breaking, Reason: "field " + ident + " removed"})
	}
	for _, ident := range unmatchedNew {
		if pairedNew[ident] {
			continue
		}
		newF := newByIdent[ident]
		if newF.Optional {
			changes = append(changes, Change{Name: name, Class: Compatible, Reason: "optional field " + ident + " added"})
		} else {
			changes = append(changes, Change{Name: name, Class: Minor, Reason: "required field " + ident + " added"})
		}
	}
	return changes
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

func compareSubTypes(name core.Name, oldSub, newSub []*ir.SubTypeBody) []Change {
	oldByName := map[string]*ir.SubTypeBody{}
	for _, s := range oldSub {
		oldByName[s.Name_] = s
	}
	newByName := map[string]*ir.SubTypeBody{}
	for _, s := range newSub {
		newByName[s.Name_] = s
	}
	var changes []Change
	for n := range oldByName {
		if _, ok := newByName[n]; !ok {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "sub-type " + n + " removed"})
		}
	}
	for n := range newByName {
		if _, ok := oldByName[n]; !ok {
			changes = append(changes, Change{Name: name, Class: Compatible, Reason: "sub-type " + n + " added"})
		}
	}
	return changes
}

func compareVariants(name core.Name, oldVariants, newVariants []ir.Variant) []Change {
	oldByName := map[string]ir.Variant{}
	for _, v := range oldVariants {
		oldByName[v.Name.Value()] = v
	}
	newByName := map[string]ir.Variant{}
	for _, v := range newVariants {
		newByName[v.Name.Value()] = v
	}
	var changes []Change
	for n, oldV := range oldByName {
		newV, ok := newByName[n]
		if !ok {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "enum variant " + n + " removed"})
			continue
		}
		if oldV.Ordinal != newV.Ordinal {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "enum variant " + n + " changed ordinal"})
		}
	}
	for n := range newByName {
		if _, ok := oldByName[n]; !ok {
			changes = append(changes, Change{Name: name, Class: Compatible, Reason: "enum variant " + n + " added"})
		}
	}
	return changes
}

func compareEndpoints(name core.Name, oldEndpoints, newEndpoints []ir.Endpoint) []Change {
	oldByIdent := map[string]ir.Endpoint{}
	for _, e := range oldEndpoints {
		oldByIdent[e.Ident] = e
	}
	newByIdent := map[string]ir.Endpoint{}
	for _, e := range newEndpoints {
		newByIdent[e.Ident] = e
	}
	var changes []Change
	for ident, oldE := range oldByIdent {
		newE, ok := newByIdent[ident]
		if !ok {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "endpoint " + ident + " removed"})
			continue
		}
		if oldE.URL != newE.URL {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "endpoint " + ident + " URL changed"})
		}
		if !sameOptionalType(oldE.Response, newE.Response) {
			changes = append(changes, Change{Name: name, Class: Breaking, Reason: "endpoint " + ident + " response type changed"})
		}
	}
	for ident := range newByIdent {
		if _, ok := oldByIdent[ident]; !ok {
			changes = append(changes, Change{Name: name, Class: Compatible, Reason: "endpoint " + ident + " added"})
		}
	}
	return changes
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
