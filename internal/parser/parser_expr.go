package parser

import (
	"strings"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/token"
)

// parseBlock parses `{ stmt* }`, enforcing the nesting-depth guard
// (MaxNestingDepth, spec.md §4.2, boundary behavior in spec.md §8:
// depth 256 accepted, 257 rejected).
func (p *Parser) parseBlock() *ast.Block {
	start := p.cur.Span
	p.depth++
	if p.depth > MaxNestingDepth {
		p.errorf(errors.PAR003, "nesting depth exceeds the maximum of 256")
	}
	p.expect(token.LBRACE, errors.PAR002, "'{' to open block")
	var stmts []ast.Stmt
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		if p.checkForbidden() {
			continue
		}
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBRACE, errors.PAR002, "'}' to close block")
	p.depth--
	return &ast.Block{BSpan: spanTo(start, p), Stmts: stmts}
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.LET:
		return p.parseLet(start)
	case token.IF:
		return p.parseIf(start)
	case token.FOR:
		return p.parseFor(start)
	case token.MATCH:
		return p.parseMatch(start)
	case token.ASM:
		return p.parseAsm(start)
	case token.REVEAL:
		return p.parseReveal(start)
	case token.SEAL:
		return p.parseSeal(start)
	case token.RETURN:
		return p.parseReturn(start)
	case token.IDENT:
		if p.cur.Text == "assert" || p.cur.Text == "assert_eq" {
			return p.parseAssert(start)
		}
		return p.parseAssignOrExprStmt(start)
	default:
		stmt := p.parseAssignOrExprStmt(start)
		return stmt
	}
}

func (p *Parser) parseLet(start token.Span) ast.Stmt {
	p.advance() // 'let'
	mut := false
	if p.cur.Kind == token.MUT {
		mut = true
		p.advance()
	}
	name := p.cur.Text
	p.expect(token.IDENT, errors.PAR001, "variable name")
	var typ ast.Type
	if p.cur.Kind == token.COLON {
		p.advance()
		typ = p.parseType()
	}
	p.expect(token.ASSIGN, errors.PAR001, "'=' in let statement")
	value := p.parseExpr()
	p.expect(token.SEMI, errors.PAR001, "';' after let statement")
	return &ast.LetStmt{SSpan: spanTo(start, p), Mut: mut, Name: name, Type: typ, Value: value}
}

func (p *Parser) parseIf(start token.Span) ast.Stmt {
	p.advance() // 'if'
	cond := p.parseExpr()
	then := p.parseBlock()
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	if p.cur.Kind == token.ELSE {
		p.advance()
		if p.cur.Kind == token.IF {
			// spec.md §4.2: no `else if`; require nested `else { if ... }`.
			p.errorf(errors.PAR005, "'else if' is not allowed; write 'else { if ... }'")
			// Recover by parsing it as if it were correctly nested, so the
			// rest of the file still parses.
			inner := p.parseIf(p.cur.Span)
			stmt.Else = &ast.Block{BSpan: inner.Span(), Stmts: []ast.Stmt{inner}}
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	stmt.SSpan = spanTo(start, p)
	return stmt
}

func (p *Parser) parseFor(start token.Span) ast.Stmt {
	p.advance() // 'for'
	varName := p.cur.Text
	p.expect(token.IDENT, errors.PAR001, "loop variable")
	p.expect(token.IN, errors.PAR001, "'in' in for loop")
	lo := p.parseExpr()
	p.expect(token.DOTDOT, errors.PAR001, "'..' in for-range")
	hi := p.parseExpr()
	var bound *uint64
	if p.cur.Kind == token.BOUNDED {
		p.advance()
		v := p.parseUint()
		bound = &v
	}
	body := p.parseBlock()
	return &ast.ForStmt{SSpan: spanTo(start, p), Var: varName, Lo: lo, Hi: hi, Bound: bound, Body: body}
}

func (p *Parser) parseMatch(start token.Span) ast.Stmt {
	p.advance() // 'match'
	scrut := p.parseExpr()
	p.expect(token.LBRACE, errors.PAR008, "'{' to open match body")
	var arms []ast.MatchArm
	sawWildcard := false
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		var pattern ast.Expr
		if p.cur.Kind == token.WILDCARD {
			p.advance()
			sawWildcard = true
		} else {
			if sawWildcard {
				p.errorf(errors.PAR008, "match arm after wildcard '_' arm is unreachable")
			}
			pattern = p.parsePrimary()
		}
		p.expect(token.FARROW, errors.PAR008, "'=>' in match arm")
		body := p.parseMatchArmBody()
		arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body})
		if p.cur.Kind == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RBRACE, errors.PAR008, "'}' to close match body")
	return &ast.MatchStmt{SSpan: spanTo(start, p), Scrut: scrut, Arms: arms}
}

func (p *Parser) parseMatchArmBody() *ast.Block {
	if p.cur.Kind == token.LBRACE {
		return p.parseBlock()
	}
	start := p.cur.Span
	e := p.parseExpr()
	return &ast.Block{BSpan: e.Span(), Stmts: []ast.Stmt{&ast.ExprStmt{SSpan: spanTo(start, p), X: e}}}
}

func (p *Parser) parseAsm(start token.Span) ast.Stmt {
	p.advance() // 'asm'
	var targetTag *string
	effect := 0
	if p.cur.Kind == token.LPAREN {
		p.advance()
		if p.cur.Kind == token.IDENT {
			t := p.cur.Text
			targetTag = &t
			p.advance()
			if p.cur.Kind == token.COMMA {
				p.advance()
			}
		}
		if p.cur.Kind == token.INT {
			v := p.parseUint()
			effect = int(v)
		}
		p.expect(token.RPAREN, errors.ASM001, "')' after asm annotation")
	}
	// The lexer must still sit just past '{' here, so the body is read
	// before the parser's lookahead advances into it.
	if p.cur.Kind != token.LBRACE {
		p.errorf(errors.PAR002, "expected '{' to open asm block, found '"+p.cur.Text+"'")
	}
	body := p.lex.ReadAsmBody()
	p.advance() // resynchronize the parser's lookahead past the consumed raw body
	lines := strings.Split(body, "\n")
	return &ast.AsmStmt{SSpan: spanTo(start, p), TargetTag: targetTag, Effect: effect, Lines: lines}
}

func (p *Parser) parseEventFields() (map[string]ast.Expr, []string) {
	p.expect(token.LBRACE, errors.EVT001, "'{' to open event fields")
	fields := map[string]ast.Expr{}
	var order []string
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		name := p.cur.Text
		p.expect(token.IDENT, errors.EVT001, "field name")
		p.expect(token.COLON, errors.EVT001, "':' after field name")
		value := p.parseExpr()
		fields[name] = value
		order = append(order, name)
		if p.cur.Kind == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RBRACE, errors.EVT001, "'}' to close event fields")
	return fields, order
}

func (p *Parser) parseReveal(start token.Span) ast.Stmt {
	p.advance() // 'reveal'
	name := p.cur.Text
	p.expect(token.IDENT, errors.EVT001, "event name")
	fields, order := p.parseEventFields()
	p.expect(token.SEMI, errors.PAR001, "';' after reveal statement")
	return &ast.RevealStmt{SSpan: spanTo(start, p), Event: name, Fields: fields, Order: order}
}

func (p *Parser) parseSeal(start token.Span) ast.Stmt {
	p.advance() // 'seal'
	name := p.cur.Text
	p.expect(token.IDENT, errors.EVT001, "event name")
	fields, order := p.parseEventFields()
	p.expect(token.SEMI, errors.PAR001, "';' after seal statement")
	return &ast.SealStmt{SSpan: spanTo(start, p), Event: name, Fields: fields, Order: order}
}

func (p *Parser) parseReturn(start token.Span) ast.Stmt {
	p.advance() // 'return'
	if p.cur.Kind == token.SEMI {
		p.advance()
		return &ast.ReturnStmt{SSpan: spanTo(start, p)}
	}
	v := p.parseExpr()
	p.expect(token.SEMI, errors.PAR001, "';' after return statement")
	return &ast.ReturnStmt{SSpan: spanTo(start, p), Value: v}
}

func (p *Parser) parseAssert(start token.Span) ast.Stmt {
	kind := ast.AssertCond
	if p.cur.Text == "assert_eq" {
		kind = ast.AssertEq
	}
	p.advance() // 'assert' / 'assert_eq'
	p.expect(token.LPAREN, errors.PAR001, "'(' after assert")
	var args []ast.Expr
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		args = append(args, p.parseExpr())
		if p.cur.Kind == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN, errors.PAR001, "')' after assert arguments")
	p.expect(token.SEMI, errors.PAR001, "';' after assert statement")
	if kind == ast.AssertCond {
		if lit, ok := args[0].(*ast.Lit); ok && lit.Kind == ast.LitBool && !lit.Bool {
			kind = ast.AssertFalse
		}
	}
	return &ast.AssertStmt{SSpan: spanTo(start, p), Kind: kind, Args: args}
}

func (p *Parser) parseAssignOrExprStmt(start token.Span) ast.Stmt {
	e := p.parseExpr()
	if p.cur.Kind == token.ASSIGN {
		p.advance()
		value := p.parseExpr()
		p.expect(token.SEMI, errors.PAR001, "';' after assignment")
		return &ast.AssignStmt{SSpan: spanTo(start, p), Target: e, Value: value}
	}
	p.expect(token.SEMI, errors.PAR001, "';' after expression statement")
	return &ast.ExprStmt{SSpan: spanTo(start, p), X: e}
}

// ---------------------------------------------------------------------
// Expressions. Precedence (loosest to tightest): == , < ; + ; * *. /% & ^

func (p *Parser) parseExpr() ast.Expr {
	return p.parseEquality()
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.cur.Kind == token.EQ {
		start := left.Span()
		p.advance()
		right := p.parseComparison()
		left = &ast.BinOp{ESpan: spanTo(start, p), Op: "==", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.cur.Kind == token.LT {
		start := left.Span()
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinOp{ESpan: spanTo(start, p), Op: "<", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur.Kind == token.PLUS {
		start := left.Span()
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinOp{ESpan: spanTo(start, p), Op: "+", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for {
		var op string
		switch p.cur.Kind {
		case token.STAR:
			op = "*"
		case token.DOTSTAR:
			op = "*."
		case token.DIVMOD:
			op = "/%"
		case token.AMP:
			op = "&"
		case token.CARET:
			op = "^"
		default:
			return left
		}
		start := left.Span()
		p.advance()
		right := p.parseUnary()
		left = &ast.BinOp{ESpan: spanTo(start, p), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix handles `.field`, `[index]`, and call syntax. Call
// syntax is accepted only on a dotted-identifier path (`mod.fn(...)`),
// never on the result of indexing or a prior call: `x.f()` parses as a
// call to the dotted path `x.f`, never as a method call on the value
// `x`, and a `(` after an index or a prior call is rejected (spec.md
// §4.2: "method syntax ... is parsed only as field-access, never
// call-on-value").
func (p *Parser) parsePostfix(base ast.Expr) ast.Expr {
	path, isPath := asPathExpr(base)
	for {
		switch p.cur.Kind {
		case token.DOT:
			start := base.Span()
			p.advance()
			name := p.cur.Text
			p.expect(token.IDENT, errors.PAR001, "field name after '.'")
			base = &ast.Place{ESpan: spanTo(start, p), Base: base, Name: name}
			path, isPath = asPathExpr(base)
		case token.LBRACKET:
			start := base.Span()
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET, errors.PAR001, "']' after index expression")
			base = &ast.Place{ESpan: spanTo(start, p), Base: base, Index: idx}
			path, isPath = "", false
		case token.LPAREN:
			if !isPath {
				p.errorf(errors.PAR006, "calls are only allowed on a plain name or dotted path, not on a computed value")
				return base
			}
			start := base.Span()
			args := p.parseArgs()
			call := &ast.Call{ESpan: spanTo(start, p), Path: path, Args: args}
			return p.parsePostfix(call)
		default:
			return base
		}
	}
}

// asPathExpr reports whether e is a bare identifier or a chain of
// field accesses over bare identifiers, returning its dotted spelling.
func asPathExpr(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.Place:
		if v.Base == nil {
			return v.Name, true
		}
		if v.Index != nil {
			return "", false
		}
		basePath, ok := asPathExpr(v.Base)
		if !ok {
			return "", false
		}
		return basePath + "." + v.Name, true
	default:
		return "", false
	}
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN, errors.PAR001, "'('")
	var args []ast.Expr
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		args = append(args, p.parseExpr())
		if p.cur.Kind == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN, errors.PAR001, "')'")
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.INT:
		v := p.parseUint()
		return &ast.Lit{ESpan: spanTo(start, p), Kind: ast.LitInt, Int: v}
	case token.TRUE:
		p.advance()
		return &ast.Lit{ESpan: spanTo(start, p), Kind: ast.LitBool, Bool: true}
	case token.FALSE:
		p.advance()
		return &ast.Lit{ESpan: spanTo(start, p), Kind: ast.LitBool, Bool: false}
	case token.IDENT:
		name := p.cur.Text
		p.advance()
		// Struct literal: `Name { f: e, ... }` — only for capitalized
		// paths immediately followed by '{', distinguishing it from a
		// bare identifier used as a value or as an `if`/`match`/`for`
		// condition (which may itself be followed by a block).
		if p.cur.Kind == token.LBRACE && startsUpper(name) {
			fields, order := p.parseEventFields()
			return &ast.StructInit{ESpan: spanTo(start, p), Path: name, Fields: fields, Order: order}
		}
		return &ast.Place{ESpan: spanTo(start, p), Name: name}
	case token.LPAREN:
		p.advance()
		if p.cur.Kind == token.RPAREN {
			p.advance()
			return &ast.TupleInit{ESpan: spanTo(start, p)}
		}
		first := p.parseExpr()
		if p.cur.Kind == token.COMMA {
			elems := []ast.Expr{first}
			for p.cur.Kind == token.COMMA {
				p.advance()
				if p.cur.Kind == token.RPAREN {
					break
				}
				elems = append(elems, p.parseExpr())
			}
			p.expect(token.RPAREN, errors.PAR001, "')' to close tuple")
			return &ast.TupleInit{ESpan: spanTo(start, p), Elems: elems}
		}
		p.expect(token.RPAREN, errors.PAR001, "')' to close parenthesized expression")
		return first
	case token.LBRACKET:
		p.advance()
		var elems []ast.Expr
		for p.cur.Kind != token.RBRACKET && p.cur.Kind != token.EOF {
			elems = append(elems, p.parseExpr())
			if p.cur.Kind == token.COMMA {
				p.advance()
			}
		}
		p.expect(token.RBRACKET, errors.PAR001, "']' to close array literal")
		return &ast.ArrayInit{ESpan: spanTo(start, p), Elems: elems}
	case token.LBRACE:
		block := p.parseBlock()
		return &ast.BlockExpr{ESpan: block.Span(), Body: block}
	default:
		p.errorf(errors.PAR001, "expected an expression, found '"+p.cur.Text+"'")
		p.advance()
		return &ast.Lit{ESpan: start, Kind: ast.LitInt, Int: 0}
	}
}

func startsUpper(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}
