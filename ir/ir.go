// Package ir holds the lowered intermediate representation: the data
// model the rest of the compiler (merge, env, process, backends)
// operates on, analogous to the original's `RpDecl`/`RpRegistered`
// hierarchy but expressed as plain Go interfaces and structs.
package ir

import "github.com/gitter-badger/reproto/core"

// Type is the IR type sum of spec.md §3: primitives, array, map, and
// named references resolved against the environment.
type Type struct {
	Kind Kind

	// Integer
	Signed bool
	Size   uint // bit width; 0 means "default" (32 for signed/unsigned)

	// Array
	Inner *Type

	// Map
	Key   *Type
	Value *Type

	// Name
	Name core.Name
}

// Kind enumerates the type sum.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindDouble
	KindBoolean
	KindString
	KindBytes
	KindAny
	KindArray
	KindMap
	KindName
)

func (t Type) String() string {
	switch t.Kind {
	case KindInteger:
		sign := "unsigned"
		if t.Signed {
			sign = "signed"
		}
		size := t.Size
		if size == 0 {
			size = 32
		}
		return sign + "/" + itoa(size)
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindAny:
		return "any"
	case KindArray:
		return "[" + t.Inner.String() + "]"
	case KindMap:
		return "{" + t.Key.String() + ": " + t.Value.String() + "}"
	case KindName:
		return t.Name.String()
	default:
		return "?"
	}
}

func itoa(n uint) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Value is a decoded literal, used by field `as` overrides, enum
// ordinals/arguments, and match conditions.
type Value struct {
	Kind  ValueKind
	Str   string
	Num   float64
	Bool  bool
	Ident core.Name
}

// ValueKind enumerates literal forms.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBoolean
	ValueIdent
)

// Field is a named, typed member of a type/tuple/interface/sub-type body.
type Field struct {
	Ident    string
	Optional bool
	Type     Type
	As       *Value // wire-level override; spec.md §9(a) scopes this to I/O only
	Comment  []string
	Pos      core.Pos
}

// FieldAs returns the wire identifier for the field: the `as` override
// if present, else the field's own identifier. Per the Open Question
// decision in DESIGN.md, this only ever affects serialized form, never
// name resolution or FieldByIdent lookups.
func (f Field) FieldAs() string {
	if f.As != nil && f.As.Kind == ValueString {
		return f.As.Str
	}
	return f.Ident
}

// Variant is one member of an enum.
type Variant struct {
	Name    core.Loc[string]
	Ordinal int
	Args    []Value
	Comment []string
}

// Endpoint is one operation of a service.
type Endpoint struct {
	Ident    string
	URL      string
	Request  *Type
	Response *Type
	Options  map[string][]Value
	Comment  []string
	Pos      core.Pos
}

// Decl is the sum of declaration shapes a package can register, mirroring
// the original's RpDecl: every variant can report its own nested
// declarations (interface sub-types), its local name, comment, position,
// and kind. The full Name and a human string form live on Registered.
type Decl interface {
	LocalName() string
	Comment() []string
	Pos() core.Pos
	Decls() []Decl
	Kind() DeclKind
}

// DeclKind distinguishes the five declaration shapes plus an interface's
// sub-type.
type DeclKind int

const (
	KindType DeclKind = iota
	KindTuple
	KindInterfaceDecl
	KindEnumDecl
	KindServiceDecl
	KindSubType
)

// TypeBody is a plain record: an ordered list of fields.
type TypeBody struct {
	Name_    string
	Fields   []Field
	// CodeBlocks holds `lang {{ ... }}` verbatim blocks keyed by target
	// language, per spec.md §3; a backend inlines the block matching its
	// own language and every other backend ignores it.
	CodeBlocks map[string][]string
	Comment_   []string
	Pos_       core.Pos
}

func (d *TypeBody) LocalName() string   { return d.Name_ }
func (d *TypeBody) Comment() []string   { return d.Comment_ }
func (d *TypeBody) Pos() core.Pos       { return d.Pos_ }
func (d *TypeBody) Decls() []Decl       { return nil }
func (d *TypeBody) Kind() DeclKind      { return KindType }

// TupleBody is structurally identical to TypeBody but encodes as a
// positional array on the wire rather than an object; kept as a distinct
// Go type so backends can dispatch on it without a runtime flag.
type TupleBody struct {
	Name_      string
	Fields     []Field
	CodeBlocks map[string][]string
	Comment_   []string
	Pos_       core.Pos
}

func (d *TupleBody) LocalName() string { return d.Name_ }
func (d *TupleBody) Comment() []string { return d.Comment_ }
func (d *TupleBody) Pos() core.Pos     { return d.Pos_ }
func (d *TupleBody) Decls() []Decl     { return nil }
func (d *TupleBody) Kind() DeclKind    { return KindTuple }

// InterfaceBody is a tagged union: a set of fields shared by every
// sub-type, plus an ordered list of named sub-types each adding their own
// fields.
type InterfaceBody struct {
	Name_      string
	Fields     []Field
	SubTypes   []*SubTypeBody
	CodeBlocks map[string][]string
	Comment_   []string
	Pos_       core.Pos
}

func (d *InterfaceBody) LocalName() string { return d.Name_ }
func (d *InterfaceBody) Comment() []string { return d.Comment_ }
func (d *InterfaceBody) Pos() core.Pos     { return d.Pos_ }
func (d *InterfaceBody) Kind() DeclKind    { return KindInterfaceDecl }
func (d *InterfaceBody) Decls() []Decl {
	out := make([]Decl, len(d.SubTypes))
	for i, st := range d.SubTypes {
		out[i] = st
	}
	return out
}

// SubTypeBody is one variant of an interface's tagged union.
type SubTypeBody struct {
	Name_      string
	Fields     []Field
	CodeBlocks map[string][]string
	Comment_   []string
	Pos_       core.Pos
}

func (d *SubTypeBody) LocalName() string { return d.Name_ }
func (d *SubTypeBody) Comment() []string { return d.Comment_ }
func (d *SubTypeBody) Pos() core.Pos     { return d.Pos_ }
func (d *SubTypeBody) Decls() []Decl     { return nil }
func (d *SubTypeBody) Kind() DeclKind    { return KindSubType }

// AllFields returns an interface's shared fields followed by the given
// sub-type's own, for contexts that need the fully assembled field set.
func (d *InterfaceBody) AllFields(st *SubTypeBody) []Field {
	out := make([]Field, 0, len(d.Fields)+len(st.Fields))
	out = append(out, d.Fields...)
	out = append(out, st.Fields...)
	return out
}

// EnumBody is a closed set of named variants, each with a constant
// ordinal and optional constructor arguments.
type EnumBody struct {
	Name_      string
	Variants   []Variant
	CodeBlocks map[string][]string
	Comment_   []string
	Pos_       core.Pos
}

func (d *EnumBody) LocalName() string { return d.Name_ }
func (d *EnumBody) Comment() []string { return d.Comment_ }
func (d *EnumBody) Pos() core.Pos     { return d.Pos_ }
func (d *EnumBody) Decls() []Decl     { return nil }
func (d *EnumBody) Kind() DeclKind    { return KindEnumDecl }

// ServiceBody groups a set of named endpoints.
type ServiceBody struct {
	Name_      string
	Endpoints  []Endpoint
	CodeBlocks map[string][]string
	Comment_   []string
	Pos_       core.Pos
}

func (d *ServiceBody) LocalName() string { return d.Name_ }
func (d *ServiceBody) Comment() []string { return d.Comment_ }
func (d *ServiceBody) Pos() core.Pos     { return d.Pos_ }
func (d *ServiceBody) Decls() []Decl     { return nil }
func (d *ServiceBody) Kind() DeclKind    { return KindServiceDecl }

// IntoRegistered recursively flattens decl into every unit env.register
// needs to register on its own: decl itself, plus each of Decls()'s
// nested declarations in turn. Ported from the original's RpDecl::decls()
// walk (core/src/rp_decl.rs). env.register does not call it; it registers
// an interface's sub-types itself, one level deep.
func IntoRegistered(decl Decl) []Decl {
	out := []Decl{decl}
	for _, nested := range decl.Decls() {
		out = append(out, IntoRegistered(nested)...)
	}
	return out
}

// Registered is a Decl bound to its fully qualified Name once loaded into
// an Environment, mirroring the original's RpRegistered. It provides the
// uniform field-access surface every backend consumes regardless of
// whether the underlying decl is a type, tuple, interface sub-type, or
// enum.
type Registered struct {
	QualifiedName core.Name
	Decl          Decl

	// SubTypeOf is non-nil when Decl is a *SubTypeBody, pointing back to
	// the owning interface so AssignableFrom can check shared fields.
	SubTypeOf *InterfaceBody
}

// Name returns the declaration's fully qualified name.
func (r Registered) Name() core.Name { return r.QualifiedName }

// Fields returns the flattened field list for any Decl kind that has
// fields (type, tuple, interface sub-type); other kinds return nil.
func (r Registered) Fields() []Field {
	switch d := r.Decl.(type) {
	case *TypeBody:
		return d.Fields
	case *TupleBody:
		return d.Fields
	case *SubTypeBody:
		if r.SubTypeOf != nil {
			return r.SubTypeOf.AllFields(d)
		}
		return d.Fields
	}
	return nil
}

// FieldByIdent looks up a field by its source identifier.
func (r Registered) FieldByIdent(ident string) (Field, bool) {
	for _, f := range r.Fields() {
		if f.Ident == ident {
			return f, true
		}
	}
	return Field{}, false
}

// AssignableFrom reports whether a value of `other`'s declared shape may
// be used where `r` is expected: identical registrations, or `other` is
// one of `r`'s interface sub-types.
func (r Registered) AssignableFrom(other Registered) bool {
	if r.QualifiedName.Equal(other.QualifiedName) {
		return true
	}
	iface, ok := r.Decl.(*InterfaceBody)
	if !ok {
		return false
	}
	sub, ok := other.Decl.(*SubTypeBody)
	if !ok {
		return false
	}
	for _, st := range iface.SubTypes {
		if st == sub {
			return true
		}
	}
	return false
}

// Display renders a short human-readable description of the registration
// (kind plus qualified name), used in diagnostics.
func (r Registered) Display() string {
	var kind string
	switch r.Decl.(type) {
	case *TypeBody:
		kind = "type"
	case *TupleBody:
		kind = "tuple"
	case *InterfaceBody:
		kind = "interface"
	case *SubTypeBody:
		kind = "sub-type"
	case *EnumBody:
		kind = "enum"
	case *ServiceBody:
		kind = "service"
	default:
		kind = "decl"
	}
	return kind + " " + r.QualifiedName.String()
}
