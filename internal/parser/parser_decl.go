package parser

import (
	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/token"
)

func (p *Parser) parseItem() ast.Item {
	start := p.cur.Span
	pub := false
	if p.cur.Kind == token.PUB {
		pub = true
		p.advance()
	}

	var attrs []ast.Attr
	for p.cur.Kind == token.HASH {
		attrs = append(attrs, p.parseAttr())
	}

	switch p.cur.Kind {
	case token.CONST:
		return p.parseConst(start, pub)
	case token.STRUCT:
		return p.parseStruct(start, pub)
	case token.EVENT:
		return p.parseEvent(start, pub)
	case token.FN:
		return p.parseFn(start, pub, attrs)
	default:
		p.errorf(errors.PAR001, "expected item ('const', 'struct', 'event', or 'fn'), found '"+p.cur.Text+"'")
		return nil
	}
}

func (p *Parser) parseAttr() ast.Attr {
	p.expect(token.HASH, errors.PAR001, "'#'")
	p.expect(token.LBRACKET, errors.PAR001, "'[' after '#'")
	name := p.cur.Text
	p.expect(token.IDENT, errors.PAR001, "attribute name")
	var args []string
	if p.cur.Kind == token.LPAREN {
		p.advance()
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			args = append(args, p.cur.Text)
			p.advance()
			if p.cur.Kind == token.COMMA {
				p.advance()
			}
		}
		p.expect(token.RPAREN, errors.PAR001, "')' after attribute args")
	}
	p.expect(token.RBRACKET, errors.PAR001, "']' after attribute")
	return ast.Attr{Name: name, Args: args}
}

func (p *Parser) parseConst(start token.Span, pub bool) *ast.ConstDecl {
	p.advance() // 'const'
	name := p.cur.Text
	p.expect(token.IDENT, errors.PAR001, "const name")
	p.expect(token.COLON, errors.PAR001, "':' after const name")
	typ := p.parseType()
	p.expect(token.ASSIGN, errors.PAR001, "'=' in const declaration")
	value := p.parseExpr()
	p.expect(token.SEMI, errors.PAR001, "';' after const declaration")
	return &ast.ConstDecl{DeclSpan: spanTo(start, p), Pub: pub, Name: name, Type: typ, Value: value}
}

func (p *Parser) parseFieldList() []ast.StructField {
	p.expect(token.LBRACE, errors.PAR002, "'{' to open field list")
	var fields []ast.StructField
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		name := p.cur.Text
		p.expect(token.IDENT, errors.PAR001, "field name")
		p.expect(token.COLON, errors.PAR001, "':' after field name")
		typ := p.parseType()
		fields = append(fields, ast.StructField{Name: name, Type: typ})
		if p.cur.Kind == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RBRACE, errors.PAR002, "'}' to close field list")
	return fields
}

func (p *Parser) parseStruct(start token.Span, pub bool) *ast.StructDecl {
	p.advance() // 'struct'
	name := p.cur.Text
	p.expect(token.IDENT, errors.PAR001, "struct name")
	fields := p.parseFieldList()
	return &ast.StructDecl{DeclSpan: spanTo(start, p), Pub: pub, Name: name, Fields: fields}
}

func (p *Parser) parseEvent(start token.Span, pub bool) *ast.EventDecl {
	p.advance() // 'event'
	name := p.cur.Text
	p.expect(token.IDENT, errors.PAR001, "event name")
	fields := p.parseFieldList()
	return &ast.EventDecl{DeclSpan: spanTo(start, p), Pub: pub, Name: name, Fields: fields}
}

func (p *Parser) parseFn(start token.Span, pub bool, attrs []ast.Attr) *ast.FnDef {
	p.advance() // 'fn'
	name := p.cur.Text
	p.expect(token.IDENT, errors.PAR001, "function name")

	// Size-generic parameter lists use [N, M] rather than <N, M>: '>'
	// is an excluded operator (spec.md §4.1) and so cannot close an
	// angle-bracket list; square brackets are otherwise unused in a
	// function header, so `fn f[N](...)` is unambiguous.
	var sizeParams []string
	if p.cur.Kind == token.LBRACKET {
		p.advance()
		for p.cur.Kind != token.RBRACKET && p.cur.Kind != token.EOF {
			if p.cur.Kind == token.IDENT {
				sizeParams = append(sizeParams, p.cur.Text)
				p.advance()
			}
			if p.cur.Kind == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACKET, errors.PAR001, "']' to close size-parameter list")
	}

	p.expect(token.LPAREN, errors.PAR001, "'(' after function name")
	var params []ast.Param
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		pname := p.cur.Text
		p.expect(token.IDENT, errors.PAR001, "parameter name")
		p.expect(token.COLON, errors.PAR001, "':' after parameter name")
		ptype := p.parseType()
		params = append(params, ast.Param{Name: pname, Type: ptype})
		if p.cur.Kind == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN, errors.PAR001, "')' after parameter list")
	p.expect(token.ARROW, errors.PAR001, "'->' before return type")
	ret := p.parseType()
	body := p.parseBlock()

	return &ast.FnDef{
		DeclSpan: spanTo(start, p), Pub: pub, Attrs: attrs, Name: name,
		SizeParams: sizeParams, Params: params, Ret: ret, Body: body,
	}
}

func spanTo(start token.Span, p *Parser) token.Span {
	return token.Span{Start: start.Start, End: p.cur.Span.Start}
}
