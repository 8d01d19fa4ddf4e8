// Package ast holds the concrete syntax tree produced by the parser,
// before lowering into the IR (package ir). Grouped members (fields,
// options, code blocks, match arms, sub-types) are not yet flattened into
// typed lists here — that is lowering's job, per spec.md §4.1.
package ast

import "github.com/gitter-badger/reproto/core"

// File is a single parsed .reproto source file.
type File struct {
	Package core.Loc[Package]
	Uses    []core.Loc[Use]
	Decls   []core.Loc[Decl]
}

// Package is the dotted package declaration at the top of a file.
type Package struct {
	Parts []string
}

// Use is a `use` import, with an optional alias.
type Use struct {
	Package PackageID
	Alias   *string
}

// PackageID is a dotted package path plus an optional version range
// constraint, as written in a `use` statement (e.g. "foo.bar@>=1.0.0").
type PackageID struct {
	Parts   []string
	Version string // empty if unconstrained
}

// DeclKind distinguishes the five declaration shapes of spec.md §3.
type DeclKind int

const (
	DeclType DeclKind = iota
	DeclTuple
	DeclInterface
	DeclEnum
	DeclService
)

func (k DeclKind) String() string {
	switch k {
	case DeclType:
		return "type"
	case DeclTuple:
		return "tuple"
	case DeclInterface:
		return "interface"
	case DeclEnum:
		return "enum"
	case DeclService:
		return "service"
	default:
		return "unknown"
	}
}

// Decl is a single top-level or nested declaration, still holding its
// members ungrouped.
type Decl struct {
	Kind    DeclKind
	Name    core.Loc[string]
	Comment []string

	// Enum-only: the head of variants preceding the member list.
	Variants []core.Loc[Variant]

	Members []Member
}

// Member is the sum of things that can appear inside a decl's braces:
// a field, an option, a code block, a match declaration, or (interfaces
// only) a nested sub-type.
type Member interface {
	member()
}

// Field is `ident '?'? ':' type ('as' value)? ';'`.
type Field struct {
	Name     core.Loc[string]
	Optional bool
	Type     core.Loc[Type]
	As       *core.Loc[Value]
	Comment  []string
}

func (Field) member() {}

// Option is a `key value,...;` directive inside a declaration body.
type Option struct {
	Name   string
	Values []core.Loc[Value]
}

func (Option) member() {}

// Code is a `lang {{ ... }}` verbatim block.
type Code struct {
	Context string
	Lines   []string
}

func (Code) member() {}

// Match is a set of condition/value arms.
type Match struct {
	Members []core.Loc[MatchMember]
}

func (Match) member() {}

// MatchMember pairs a match condition with the value it selects.
type MatchMember struct {
	Condition core.Loc[Value]
	Value     core.Loc[Value]
}

// SubType is an interface's nested tagged-union variant.
type SubType struct {
	Name    core.Loc[string]
	Comment []string
	Members []Member
}

func (SubType) member() {}

// Endpoint is a service body member: `ident(Request) -> Response;` plus
// options and comment, per spec.md §3's simplified service-body shape.
type Endpoint struct {
	Name     core.Loc[string]
	URL      core.Loc[string]
	Request  *core.Loc[Type]
	Response *core.Loc[Type]
	Options  []Option
	Comment  []string
}

func (Endpoint) member() {}

// Variant is one `Name [= ordinal] [(args)];` line in an enum's head.
type Variant struct {
	Name    core.Loc[string]
	Ordinal *core.Loc[Value]
	Args    []core.Loc[Value]
	Comment []string
}

// Type is the AST-level representation of a type expression.
type Type struct {
	Kind TypeKind

	// TypeInteger
	Size    *uint // nil means "default"
	Signed  bool

	// TypeArray
	Inner *Type

	// TypeMap
	Key   *Type
	Value *Type

	// TypeName
	Prefix *string
	Parts  []string
}

// TypeKind enumerates the type sum of spec.md §3.
type TypeKind int

const (
	TypeInteger TypeKind = iota
	TypeFloat
	TypeDouble
	TypeBoolean
	TypeString
	TypeBytes
	TypeAny
	TypeArray
	TypeMap
	TypeName
)

// Value is a literal value as written in the source (used by `as`
// overrides, enum ordinals/arguments, and match conditions).
type Value struct {
	Kind  ValueKind
	Str   string
	Num   float64
	Bool  bool
	Ident []string // for a bare identifier/type-name reference
}

// ValueKind enumerates the literal forms the grammar allows for `as`
// clauses, enum ordinals, and match conditions.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBoolean
	ValueIdent
)
