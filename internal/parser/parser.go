// Package parser implements Trident's recursive-descent parser.
//
// Grounded on the teacher's per-grammar-area file split
// (parser.go/parser_decl.go/parser_expr.go/parser_type.go/parser_error.go,
// from internal/parser in the AILANG teacher repo) and its nesting-depth
// guard and forbidden-construct rejection style.
package parser

import (
	"strconv"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/lexer"
	"github.com/tridentlang/trident/internal/token"
)

// MaxNestingDepth is the nesting-depth guard from spec.md §4.2: blocks
// nested deeper than this are rejected with PAR003.
const MaxNestingDepth = 256

// forbiddenIdents names surface-syntax constructs Trident does not
// support; encountering one where a statement or item is expected is a
// PAR004 error naming the construct (spec.md §4.2).
var forbiddenIdents = map[string]string{
	"trait":   "traits are not supported",
	"impl":    "impls are not supported",
	"macro":   "macros are not supported",
	"while":   "while loops are not supported; use a bounded for loop",
	"loop":    "unbounded loop is not supported; use a bounded for loop",
	"closure": "closures are not supported",
}

// Parser parses one token stream into a *ast.File.
type Parser struct {
	lex       *lexer.Lexer
	file      string
	cur       token.Token
	peeked    *token.Token
	errs      errors.List
	depth     int
}

// New creates a Parser over src attributed to file.
func New(src, file string) *Parser {
	p := &Parser{lex: lexer.New(src, file), file: file}
	p.advance()
	return p
}

func (p *Parser) advance() {
	if p.peeked != nil {
		p.cur = *p.peeked
		p.peeked = nil
		return
	}
	tok, err := p.lex.NextToken()
	if err != nil {
		if r, ok := errors.AsReport(err); ok {
			p.errs = append(p.errs, r)
		}
		// Resynchronize by scanning for the next token past the bad byte.
		p.advance()
		return
	}
	p.cur = tok
}

func (p *Parser) peek() token.Token {
	if p.peeked == nil {
		tok, err := p.lex.NextToken()
		if err != nil {
			if r, ok := errors.AsReport(err); ok {
				p.errs = append(p.errs, r)
			}
			tok = token.New(token.ILLEGAL, "", p.cur.Span.End, p.cur.Span.End)
		}
		p.peeked = &tok
	}
	return *p.peeked
}

func (p *Parser) errorf(code, msg string) {
	p.errs = append(p.errs, errors.New(code, errors.PhaseParser, msg, p.cur.Span))
}

func (p *Parser) expect(kind token.Kind, code, what string) token.Token {
	if p.cur.Kind != kind {
		p.errorf(code, "expected "+what+", found '"+p.cur.Text+"'")
		return p.cur
	}
	tok := p.cur
	p.advance()
	return tok
}

func (p *Parser) checkForbidden() bool {
	if p.cur.Kind == token.IDENT {
		if msg, bad := forbiddenIdents[p.cur.Text]; bad {
			p.errorf(errors.PAR004, "forbidden construct '"+p.cur.Text+"': "+msg)
			p.advance()
			return true
		}
	}
	return false
}

// ParseFile parses a complete source file.
func (p *Parser) ParseFile() (*ast.File, errors.List) {
	f := &ast.File{}
	start := p.cur.Span

	switch p.cur.Kind {
	case token.PROGRAM:
		f.Kind = ast.KindProgram
		p.advance()
		f.Name = p.parseDottedPath()
	case token.MODULE:
		f.Kind = ast.KindModule
		p.advance()
		f.Name = p.parseDottedPath()
	default:
		p.errorf(errors.PAR001, "expected 'program' or 'module' at file start")
	}

	for p.cur.Kind == token.USE {
		f.Uses = append(f.Uses, p.parseUse())
	}

	for p.cur.Kind != token.EOF {
		if p.checkForbidden() {
			continue
		}
		item := p.parseItem()
		if item != nil {
			f.Items = append(f.Items, item)
		} else {
			// avoid infinite loop on unrecoverable token
			p.advance()
		}
	}

	f.FileSpan = token.Span{Start: start.Start, End: p.cur.Span.End}
	return f, p.errs
}

func (p *Parser) parseDottedPath() string {
	parts := []string{}
	if p.cur.Kind == token.IDENT {
		parts = append(parts, p.cur.Text)
		p.advance()
	} else {
		p.errorf(errors.PAR001, "expected identifier in path")
	}
	for p.cur.Kind == token.DOT {
		p.advance()
		if p.cur.Kind == token.STAR {
			p.errorf(errors.PAR007, "wildcard import '*' is not allowed; import specific names")
			p.advance()
			continue
		}
		if p.cur.Kind != token.IDENT {
			p.errorf(errors.PAR001, "expected identifier after '.'")
			break
		}
		parts = append(parts, p.cur.Text)
		p.advance()
	}
	joined := ""
	for i, part := range parts {
		if i > 0 {
			joined += "."
		}
		joined += part
	}
	return joined
}

func (p *Parser) parseUse() *ast.Use {
	start := p.cur.Span
	p.advance() // 'use'
	path := p.parseDottedPathParts()
	p.expect(token.SEMI, errors.PAR001, "';' after use statement")
	return &ast.Use{UseSpan: token.Span{Start: start.Start, End: p.cur.Span.Start}, Path: path}
}

func (p *Parser) parseDottedPathParts() []string {
	var parts []string
	if p.cur.Kind == token.IDENT {
		parts = append(parts, p.cur.Text)
		p.advance()
	} else {
		p.errorf(errors.PAR001, "expected identifier in path")
		return parts
	}
	for p.cur.Kind == token.DOT {
		p.advance()
		if p.cur.Kind == token.STAR {
			p.errorf(errors.PAR007, "wildcard import '*' is not allowed; import specific names")
			p.advance()
			continue
		}
		if p.cur.Kind != token.IDENT {
			p.errorf(errors.PAR001, "expected identifier after '.'")
			break
		}
		parts = append(parts, p.cur.Text)
		p.advance()
	}
	return parts
}

func (p *Parser) parseUint() uint64 {
	if p.cur.Kind != token.INT {
		p.errorf(errors.PAR001, "expected integer literal")
		return 0
	}
	v, err := strconv.ParseUint(p.cur.Text, 10, 64)
	if err != nil {
		p.errorf(errors.PAR001, "malformed integer literal")
	}
	p.advance()
	return v
}
