package core

import "strings"

// PackageID is a dotted identifier, e.g. "foo.bar.baz".
type PackageID struct {
	Parts []string
}

// NewPackageID builds a PackageID from its dotted parts.
func NewPackageID(parts ...string) PackageID {
	cp := make([]string, len(parts))
	copy(cp, parts)
	return PackageID{Parts: cp}
}

func (p PackageID) String() string {
	return strings.Join(p.Parts, ".")
}

// Equal reports whether two package identifiers name the same package.
func (p PackageID) Equal(other PackageID) bool {
	if len(p.Parts) != len(other.Parts) {
		return false
	}
	for i := range p.Parts {
		if p.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

// Package is a versioned package: an identifier plus an optional semantic
// version. Two Packages are the same package iff their identifiers match;
// their versions establish ordering for resolution.
type Package struct {
	ID      PackageID
	Version *Version
}

func (p Package) String() string {
	if p.Version == nil {
		return p.ID.String()
	}
	return p.ID.String() + "@" + p.Version.String()
}

// SamePackage reports whether p and other identify the same package,
// ignoring version.
func (p Package) SamePackage(other Package) bool {
	return p.ID.Equal(other.ID)
}

// Name is a fully-qualified reference to a declaration: an optional
// imported-alias prefix, a versioned package, and a non-empty list of
// type identifiers naming a declaration and its nested sub-declarations.
// Names are immutable after construction. Equality ignores the prefix.
type Name struct {
	Prefix  string // empty if unqualified
	Package Package
	Parts   []string // non-empty: ["Foo"], or ["Shape", "Circle"] for a sub-type
}

// NewName constructs a Name. parts must be non-empty.
func NewName(pkg Package, parts ...string) Name {
	if len(parts) == 0 {
		panic("core.NewName: a Name requires at least one type identifier")
	}
	cp := make([]string, len(parts))
	copy(cp, parts)
	return Name{Package: pkg, Parts: cp}
}

// WithPrefix returns a copy of n qualified by the given imported alias.
func (n Name) WithPrefix(prefix string) Name {
	n.Prefix = prefix
	return n
}

// Join joins the type-identifier parts with sep, e.g. "Shape::Circle".
func (n Name) Join(sep string) string {
	return strings.Join(n.Parts, sep)
}

// LocalName is the last type identifier, e.g. "Circle" in "a.Shape.Circle".
func (n Name) LocalName() string {
	return n.Parts[len(n.Parts)-1]
}

// Extend returns a new Name nested one level deeper, e.g. Shape -> Shape.Circle.
func (n Name) Extend(part string) Name {
	parts := make([]string, len(n.Parts)+1)
	copy(parts, n.Parts)
	parts[len(n.Parts)] = part
	return Name{Prefix: n.Prefix, Package: n.Package, Parts: parts}
}

// Equal compares two Names, ignoring prefix.
func (n Name) Equal(other Name) bool {
	if !n.Package.ID.Equal(other.Package.ID) {
		return false
	}
	if len(n.Parts) != len(other.Parts) {
		return false
	}
	for i := range n.Parts {
		if n.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

// Key returns a string uniquely identifying the Name within an
// Environment, suitable as an ordered-map key (sorted lexicographically by
// this string gives the deterministic iteration order spec.md §4.4/§5
// requires).
func (n Name) Key() string {
	var b strings.Builder
	b.WriteString(n.Package.ID.String())
	if n.Package.Version != nil {
		b.WriteByte('@')
		b.WriteString(n.Package.Version.String())
	}
	b.WriteByte('#')
	b.WriteString(strings.Join(n.Parts, "."))
	return b.String()
}

func (n Name) String() string {
	base := n.Package.ID.String() + "." + strings.Join(n.Parts, ".")
	if n.Prefix != "" {
		return n.Prefix + "::" + base
	}
	return base
}
