// Package parser implements a hand-written recursive-descent parser over
// the lexer's token stream, producing a concrete syntax tree (package
// ast). Grounded on the grammar's shape in
// original_source/src/parser/parser.rs, re-expressed as the idiomatic Go
// recursive-descent rendition (no parser-combinator library appears
// anywhere in the retrieved pack).
package parser

import (
	"github.com/gitter-badger/reproto/ast"
	"github.com/gitter-badger/reproto/core"
	"github.com/gitter-badger/reproto/lexer"
)

// Parser consumes a token stream and builds an ast.File.
type Parser struct {
	lex    *lexer.Lexer
	source string
	cur    lexer.Token
}

// Parse parses the named source's content into a File.
func Parse(source string, content []byte) (*ast.File, error) {
	p := &Parser{lex: lexer.New(source, content), source: source}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) expect(kind lexer.Kind, what string) (lexer.Token, error) {
	if p.cur.Kind != kind {
		return lexer.Token{}, core.At(core.ParseError.New("expected %s", what), p.cur.Pos)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

func (p *Parser) at(kind lexer.Kind) bool {
	return p.cur.Kind == kind
}

func (p *Parser) parseFile() (*ast.File, error) {
	pkgStart := p.cur.Pos
	if _, err := p.expect(lexer.KwPackage, "'package'"); err != nil {
		return nil, err
	}
	parts, err := p.parseDottedIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	pkg := core.NewLoc(ast.Package{Parts: parts}, core.Pos{Source: p.source, Start: pkgStart.Start, End: p.cur.Pos.Start})

	var uses []core.Loc[ast.Use]
	for p.at(lexer.KwUse) {
		use, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		uses = append(uses, use)
	}

	var decls []core.Loc[ast.Decl]
	for !p.at(lexer.EOF) {
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	return &ast.File{Package: pkg, Uses: uses, Decls: decls}, nil
}

func (p *Parser) parseDottedIdent() ([]string, error) {
	tok, err := p.expect(lexer.Ident, "identifier")
	if err != nil {
		return nil, err
	}
	parts := []string{tok.Text}
	for p.at(lexer.Dot) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		tok, err := p.expect(lexer.Ident, "identifier")
		if err != nil {
			return nil, err
		}
		parts = append(parts, tok.Text)
	}
	return parts, nil
}

func (p *Parser) parseUse() (core.Loc[ast.Use], error) {
	start := p.cur.Pos
	if err := p.advance(); err != nil { // consume 'use'
		return core.Loc[ast.Use]{}, err
	}
	parts, err := p.parseDottedIdent()
	if err != nil {
		return core.Loc[ast.Use]{}, err
	}
	version := ""
	if p.at(lexer.At) {
		if err := p.advance(); err != nil {
			return core.Loc[ast.Use]{}, err
		}
		tok, err := p.expect(lexer.String, "version range string")
		if err != nil {
			return core.Loc[ast.Use]{}, err
		}
		version = tok.Text
	}
	var alias *string
	if p.at(lexer.KwAs) {
		if err := p.advance(); err != nil {
			return core.Loc[ast.Use]{}, err
		}
		tok, err := p.expect(lexer.Ident, "alias identifier")
		if err != nil {
			return core.Loc[ast.Use]{}, err
		}
		alias = &tok.Text
	}
	end := p.cur.Pos
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return core.Loc[ast.Use]{}, err
	}
	use := ast.Use{Package: ast.PackageID{Parts: parts, Version: version}, Alias: alias}
	return core.NewLoc(use, core.Pos{Source: p.source, Start: start.Start, End: end.End}), nil
}

func (p *Parser) parseDecl() (core.Loc[ast.Decl], error) {
	start := p.cur.Pos
	var kind ast.DeclKind
	switch p.cur.Kind {
	case lexer.KwType:
		kind = ast.DeclType
	case lexer.KwTuple:
		kind = ast.DeclTuple
	case lexer.KwInterface:
		kind = ast.DeclInterface
	case lexer.KwEnum:
		kind = ast.DeclEnum
	case lexer.KwService:
		kind = ast.DeclService
	default:
		return core.Loc[ast.Decl]{}, core.At(core.ParseError.New("expected a declaration ('type', 'tuple', 'interface', 'enum', or 'service')"), p.cur.Pos)
	}
	if err := p.advance(); err != nil {
		return core.Loc[ast.Decl]{}, err
	}

	nameTok, err := p.expect(lexer.TypeIdent, "type name")
	if err != nil {
		return core.Loc[ast.Decl]{}, err
	}
	name := core.NewLoc(nameTok.Text, nameTok.Pos)

	decl := ast.Decl{Kind: kind, Name: name}

	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return core.Loc[ast.Decl]{}, err
	}

	if kind == ast.DeclEnum {
		variants, err := p.parseEnumVariants()
		if err != nil {
			return core.Loc[ast.Decl]{}, err
		}
		decl.Variants = variants
	}

	for !p.at(lexer.RBrace) {
		if p.at(lexer.EOF) {
			return core.Loc[ast.Decl]{}, core.At(core.ParseError.New("unterminated declaration body"), start)
		}
		member, err := p.parseMember(kind)
		if err != nil {
			return core.Loc[ast.Decl]{}, err
		}
		decl.Members = append(decl.Members, member)
	}
	end := p.cur.Pos
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return core.Loc[ast.Decl]{}, err
	}

	return core.NewLoc(decl, core.Pos{Source: p.source, Start: start.Start, End: end.End}), nil
}

// parseEnumVariants parses the head of `Name [= value] [(args)];` lines
// that precede an enum body's generic members, per spec.md §4.1.
func (p *Parser) parseEnumVariants() ([]core.Loc[ast.Variant], error) {
	var variants []core.Loc[ast.Variant]
	for p.at(lexer.TypeIdent) {
		start := p.cur.Pos
		nameTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		v := ast.Variant{Name: core.NewLoc(nameTok.Text, nameTok.Pos)}

		if p.at(lexer.Equals) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			v.Ordinal = &val
		}
		if p.at(lexer.LParen) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			for !p.at(lexer.RParen) {
				val, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				v.Args = append(v.Args, val)
				if p.at(lexer.Comma) {
					if err := p.advance(); err != nil {
						return nil, err
					}
				}
			}
			if _, err := p.expect(lexer.RParen, "')'"); err != nil {
				return nil, err
			}
		}
		end := p.cur.Pos
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		variants = append(variants, core.NewLoc(v, core.Pos{Source: p.source, Start: start.Start, End: end.End}))
	}
	return variants, nil
}

func (p *Parser) parseMember(kind ast.DeclKind) (ast.Member, error) {
	switch p.cur.Kind {
	case lexer.TypeIdent:
		if kind != ast.DeclInterface {
			return nil, core.At(core.ParseError.New("a nested type is only allowed inside an interface"), p.cur.Pos)
		}
		return p.parseSubType()
	case lexer.Ident:
		if p.cur.Text == "match" {
			return p.parseMatch()
		}
		return p.parseFieldOrOption(kind)
	default:
		return nil, core.At(core.ParseError.New("unexpected token in declaration body"), p.cur.Pos)
	}
}

func (p *Parser) parseSubType() (ast.Member, error) {
	nameTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	st := ast.SubType{Name: core.NewLoc(nameTok.Text, nameTok.Pos)}
	for !p.at(lexer.RBrace) {
		if p.at(lexer.EOF) {
			return nil, core.At(core.ParseError.New("unterminated sub-type body"), nameTok.Pos)
		}
		m, err := p.parseMember(ast.DeclType)
		if err != nil {
			return nil, err
		}
		st.Members = append(st.Members, m)
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) parseMatch() (ast.Member, error) {
	if err := p.advance(); err != nil { // consume 'match'
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	var members []core.Loc[ast.MatchMember]
	for !p.at(lexer.RBrace) {
		start := p.cur.Pos
		cond, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Arrow, "'->'"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		end := p.cur.Pos
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		members = append(members, core.NewLoc(ast.MatchMember{Condition: cond, Value: val}, core.Pos{Source: p.source, Start: start.Start, End: end.End}))
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return ast.Match{Members: members}, nil
}

// parseFieldOrOption disambiguates `ident {{ ... }}` (code),
// `ident : type ...` (field), `ident "url" ( ... ) -> ...` (service
// endpoint; every non-code member of a service body), and
// `ident value,...;` (option) sharing an Ident lookahead.
func (p *Parser) parseFieldOrOption(kind ast.DeclKind) (ast.Member, error) {
	nameTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.at(lexer.CodeBlock) {
		code := ast.Code{Context: nameTok.Text, Lines: p.cur.Lines}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return code, nil
	}

	if kind == ast.DeclService {
		return p.parseEndpoint(nameTok)
	}

	optional := false
	if p.at(lexer.Question) {
		optional = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.at(lexer.Colon) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		var as *core.Loc[ast.Value]
		if p.at(lexer.KwAs) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			as = &val
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return ast.Field{Name: core.NewLoc(nameTok.Text, nameTok.Pos), Optional: optional, Type: ty, As: as}, nil
	}

	// Option: `ident value (',' value)* ';'`.
	opt := ast.Option{Name: nameTok.Text}
	for !p.at(lexer.Semi) {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		opt.Values = append(opt.Values, val)
		if p.at(lexer.Comma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return opt, nil
}

func (p *Parser) parseEndpoint(nameTok lexer.Token) (ast.Member, error) {
	urlTok, err := p.expect(lexer.String, "URL template string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var request *core.Loc[ast.Type]
	if !p.at(lexer.RParen) {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		request = &ty
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	var response *core.Loc[ast.Type]
	if p.at(lexer.Arrow) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		response = &ty
	}
	endpoint := ast.Endpoint{
		Name:     core.NewLoc(nameTok.Text, nameTok.Pos),
		URL:      core.NewLoc(urlTok.Text, urlTok.Pos),
		Request:  request,
		Response: response,
	}
	if p.at(lexer.LBrace) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for !p.at(lexer.RBrace) {
			opt, err := p.parseOptionLine()
			if err != nil {
				return nil, err
			}
			endpoint.Options = append(endpoint.Options, opt)
		}
		if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
			return nil, err
		}
		return endpoint, nil
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return endpoint, nil
}

func (p *Parser) parseOptionLine() (ast.Option, error) {
	nameTok, err := p.expect(lexer.Ident, "option name")
	if err != nil {
		return ast.Option{}, err
	}
	opt := ast.Option{Name: nameTok.Text}
	for !p.at(lexer.Semi) {
		val, err := p.parseValue()
		if err != nil {
			return ast.Option{}, err
		}
		opt.Values = append(opt.Values, val)
		if p.at(lexer.Comma) {
			if err := p.advance(); err != nil {
				return ast.Option{}, err
			}
		}
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return ast.Option{}, err
	}
	return opt, nil
}

func (p *Parser) parseValue() (core.Loc[ast.Value], error) {
	start := p.cur.Pos
	switch p.cur.Kind {
	case lexer.String:
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return core.Loc[ast.Value]{}, err
		}
		return core.NewLoc(ast.Value{Kind: ast.ValueString, Str: text}, start), nil
	case lexer.Number:
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return core.Loc[ast.Value]{}, err
		}
		num, err := parseFloat(text)
		if err != nil {
			return core.Loc[ast.Value]{}, core.At(core.ParseError.New("invalid number %q: %s", text, err), start)
		}
		return core.NewLoc(ast.Value{Kind: ast.ValueNumber, Num: num}, start), nil
	case lexer.Ident:
		if p.cur.Text == "true" || p.cur.Text == "false" {
			b := p.cur.Text == "true"
			if err := p.advance(); err != nil {
				return core.Loc[ast.Value]{}, err
			}
			return core.NewLoc(ast.Value{Kind: ast.ValueBoolean, Bool: b}, start), nil
		}
		ident, err := p.parseDottedIdent()
		if err != nil {
			return core.Loc[ast.Value]{}, err
		}
		return core.NewLoc(ast.Value{Kind: ast.ValueIdent, Ident: ident}, start), nil
	case lexer.TypeIdent:
		tok := p.cur
		if err := p.advance(); err != nil {
			return core.Loc[ast.Value]{}, err
		}
		return core.NewLoc(ast.Value{Kind: ast.ValueIdent, Ident: []string{tok.Text}}, start), nil
	default:
		return core.Loc[ast.Value]{}, core.At(core.ParseError.New("expected a value"), p.cur.Pos)
	}
}

func (p *Parser) parseType() (core.Loc[ast.Type], error) {
	start := p.cur.Pos
	switch p.cur.Kind {
	case lexer.LBracket:
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		inner, err := p.parseType()
		if err != nil {
			return core.Loc[ast.Type]{}, err
		}
		end := p.cur.Pos
		if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		innerVal := inner.Value()
		return core.NewLoc(ast.Type{Kind: ast.TypeArray, Inner: &innerVal}, core.Pos{Source: p.source, Start: start.Start, End: end.End}), nil
	case lexer.LBrace:
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		key, err := p.parseType()
		if err != nil {
			return core.Loc[ast.Type]{}, err
		}
		if _, err := p.expect(lexer.Colon, "':'"); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		value, err := p.parseType()
		if err != nil {
			return core.Loc[ast.Type]{}, err
		}
		end := p.cur.Pos
		if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		keyVal, valVal := key.Value(), value.Value()
		return core.NewLoc(ast.Type{Kind: ast.TypeMap, Key: &keyVal, Value: &valVal}, core.Pos{Source: p.source, Start: start.Start, End: end.End}), nil
	case lexer.Ident:
		return p.parsePrimitiveOrNamedType(start)
	case lexer.TypeIdent:
		return p.parseNamedType(start, "")
	default:
		return core.Loc[ast.Type]{}, core.At(core.ParseError.New("expected a type"), p.cur.Pos)
	}
}

func (p *Parser) parsePrimitiveOrNamedType(start core.Pos) (core.Loc[ast.Type], error) {
	text := p.cur.Text
	switch text {
	case "signed", "unsigned":
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		var size *uint
		if p.at(lexer.Slash) {
			if err := p.advance(); err != nil {
				return core.Loc[ast.Type]{}, err
			}
			numTok, err := p.expect(lexer.Number, "bit width")
			if err != nil {
				return core.Loc[ast.Type]{}, err
			}
			n, err := parseFloat(numTok.Text)
			if err != nil {
				return core.Loc[ast.Type]{}, core.At(core.ParseError.New("invalid bit width"), numTok.Pos)
			}
			u := uint(n)
			size = &u
		}
		end := p.prevEnd(start)
		return core.NewLoc(ast.Type{Kind: ast.TypeInteger, Signed: text == "signed", Size: size}, core.Pos{Source: p.source, Start: start.Start, End: end}), nil
	case "float":
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		return core.NewLoc(ast.Type{Kind: ast.TypeFloat}, start), nil
	case "double":
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		return core.NewLoc(ast.Type{Kind: ast.TypeDouble}, start), nil
	case "boolean":
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		return core.NewLoc(ast.Type{Kind: ast.TypeBoolean}, start), nil
	case "string":
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		return core.NewLoc(ast.Type{Kind: ast.TypeString}, start), nil
	case "bytes":
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		return core.NewLoc(ast.Type{Kind: ast.TypeBytes}, start), nil
	case "any":
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		return core.NewLoc(ast.Type{Kind: ast.TypeAny}, start), nil
	default:
		// ident '::' TypeIdent ( '.' TypeIdent )* -- an aliased named type.
		prefix := text
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		if _, err := p.expect(lexer.DoubleColon, "'::'"); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		return p.parseNamedType(start, prefix)
	}
}

func (p *Parser) prevEnd(start core.Pos) int {
	return p.cur.Pos.Start
}

func (p *Parser) parseNamedType(start core.Pos, prefix string) (core.Loc[ast.Type], error) {
	tok, err := p.expect(lexer.TypeIdent, "type name")
	if err != nil {
		return core.Loc[ast.Type]{}, err
	}
	parts := []string{tok.Text}
	for p.at(lexer.Dot) {
		if err := p.advance(); err != nil {
			return core.Loc[ast.Type]{}, err
		}
		next, err := p.expect(lexer.TypeIdent, "nested type name")
		if err != nil {
			return core.Loc[ast.Type]{}, err
		}
		parts = append(parts, next.Text)
	}
	end := p.cur.Pos
	var pfx *string
	if prefix != "" {
		pfx = &prefix
	}
	return core.NewLoc(ast.Type{Kind: ast.TypeName, Prefix: pfx, Parts: parts}, core.Pos{Source: p.source, Start: start.Start, End: end.Start}), nil
}

func parseFloat(s string) (float64, error) {
	var f float64
	var neg bool
	i := 0
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	var intPart, fracPart float64
	fracDiv := 1.0
	seenDot := false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			if seenDot {
				fracDiv *= 10
				fracPart = fracPart*10 + float64(c-'0')
			} else {
				intPart = intPart*10 + float64(c-'0')
			}
		case c == '.':
			seenDot = true
		case c == 'e' || c == 'E':
			return parseFloatExp(s, neg, intPart+fracPart/fracDiv, i+1)
		default:
			return 0, core.ParseError.New("invalid numeric literal %q", s)
		}
	}
	f = intPart + fracPart/fracDiv
	if neg {
		f = -f
	}
	return f, nil
}

func parseFloatExp(s string, neg bool, mantissa float64, expStart int) (float64, error) {
	expNeg := false
	i := expStart
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		expNeg = s[i] == '-'
		i++
	}
	exp := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, core.ParseError.New("invalid numeric literal %q", s)
		}
		exp = exp*10 + int(c-'0')
	}
	mult := 1.0
	for j := 0; j < exp; j++ {
		mult *= 10
	}
	result := mantissa
	if expNeg {
		result /= mult
	} else {
		result *= mult
	}
	if neg {
		result = -result
	}
	return result, nil
}
