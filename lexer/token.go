// Package lexer tokenizes reproto source text. A hand-written scanner is
// used rather than a generated one — no PEG/lexer-generator library
// appears anywhere in the retrieved teacher pack, so this keeps the
// dependency surface grounded in what is actually available (see
// DESIGN.md).
package lexer

import "github.com/gitter-badger/reproto/core"

// Kind enumerates lexical token classes.
type Kind int

const (
	EOF Kind = iota
	Ident     // lowercase-leading identifier
	TypeIdent // uppercase-leading identifier
	Number
	String
	CodeBlock // verbatim {{ ... }} content, already indent-stripped

	KwPackage
	KwUse
	KwAs
	KwType
	KwTuple
	KwInterface
	KwEnum
	KwService

	LBrace
	RBrace
	LBracket
	RBracket
	LParen
	RParen
	Colon
	Semi
	Comma
	Question
	Dot
	DoubleColon
	Arrow
	At
	Ampersand
	Equals
	Slash
)

// Token is a single lexical token with its source position.
type Token struct {
	Kind  Kind
	Text  string // raw text (idents, numbers as written); decoded string value for String
	Lines []string // for CodeBlock: the indent-stripped verbatim lines
	Pos   core.Pos
}

var keywords = map[string]Kind{
	"package":   KwPackage,
	"use":       KwUse,
	"as":        KwAs,
	"type":      KwType,
	"tuple":     KwTuple,
	"interface": KwInterface,
	"enum":      KwEnum,
	"service":   KwService,
}
