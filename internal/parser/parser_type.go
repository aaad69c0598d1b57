package parser

import (
	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/token"
)

func (p *Parser) parseType() ast.Type {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.IDENT:
		switch p.cur.Text {
		case "Field":
			p.advance()
			return &ast.FieldType{TSpan: start}
		case "XField":
			p.advance()
			return &ast.XFieldType{TSpan: start}
		case "Bool":
			p.advance()
			return &ast.BoolType{TSpan: start}
		case "U32":
			p.advance()
			return &ast.U32Type{TSpan: start}
		case "Digest":
			p.advance()
			return &ast.DigestType{TSpan: start}
		default:
			path := p.parseDottedPath()
			return &ast.StructType{TSpan: spanTo(start, p), Path: path}
		}
	case token.LBRACKET:
		p.advance()
		elem := p.parseType()
		p.expect(token.SEMI, errors.PAR009, "';' in array type")
		size := p.parseSizeExpr()
		p.expect(token.RBRACKET, errors.PAR009, "']' to close array type")
		return &ast.ArrayType{TSpan: spanTo(start, p), Elem: elem, Size: size}
	case token.LPAREN:
		p.advance()
		var elems []ast.Type
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			elems = append(elems, p.parseType())
			if p.cur.Kind == token.COMMA {
				p.advance()
			}
		}
		p.expect(token.RPAREN, errors.PAR009, "')' to close tuple type")
		return &ast.TupleType{TSpan: spanTo(start, p), Elems: elems}
	default:
		p.errorf(errors.PAR009, "expected a type, found '"+p.cur.Text+"'")
		p.advance()
		return &ast.FieldType{TSpan: start}
	}
}

// parseSizeExpr parses a compile-time size expression: literals, const
// idents, size parameters, with + and * (left-associative, + binds
// looser than *), per spec.md §3.
func (p *Parser) parseSizeExpr() ast.SizeExpr {
	return p.parseSizeSum()
}

func (p *Parser) parseSizeSum() ast.SizeExpr {
	left := p.parseSizeProduct()
	for p.cur.Kind == token.PLUS {
		start := left.Span()
		p.advance()
		right := p.parseSizeProduct()
		left = &ast.SizeBinOp{ESpan: spanTo(start, p), Op: "+", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseSizeProduct() ast.SizeExpr {
	left := p.parseSizeAtom()
	for p.cur.Kind == token.STAR {
		start := left.Span()
		p.advance()
		right := p.parseSizeAtom()
		left = &ast.SizeBinOp{ESpan: spanTo(start, p), Op: "*", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseSizeAtom() ast.SizeExpr {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.INT:
		v := p.parseUint()
		return &ast.SizeLit{ESpan: spanTo(start, p), Value: v}
	case token.IDENT:
		name := p.cur.Text
		p.advance()
		return &ast.SizeIdent{ESpan: spanTo(start, p), Name: name}
	case token.LPAREN:
		p.advance()
		e := p.parseSizeExpr()
		p.expect(token.RPAREN, errors.PAR009, "')' in size expression")
		return e
	default:
		p.errorf(errors.GEN001, "expected a size expression")
		p.advance()
		return &ast.SizeLit{ESpan: start, Value: 0}
	}
}
