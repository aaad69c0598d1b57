package types

import (
	"fmt"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/token"
)

// fnCtx threads per-function state through statement/expression
// checking: the enclosing function's name (for call-graph edges and
// #[pure] diagnostics), its declared return type, and whether it must
// obey the I/O-purity discipline (spec.md §4.4).
type fnCtx struct {
	name    string
	pure    bool
	ret     Type
	halted  bool // true once an unconditional halt/return/assert(false) was seen in the current block
}

func (c *Checker) checkFnBody(m ModuleInput, fn *ast.FnDef) {
	ret, err := ResolveASTType(fn.Ret, c.items, c.cfg)
	if err != nil {
		c.errorAt(errors.TYP001, fn.Span(), fmt.Sprintf("function %s return type: %v", fn.Name, err))
		return
	}
	scope := NewScope(nil)
	for _, p := range fn.Params {
		pt, err := ResolveASTType(p.Type, c.items, c.cfg)
		if err != nil {
			c.errorAt(errors.TYP001, fn.Span(), fmt.Sprintf("function %s parameter %s: %v", fn.Name, p.Name, err))
			continue
		}
		scope.Bind(p.Name, pt, false)
	}
	ctx := &fnCtx{name: fn.Name, pure: fn.HasAttr("pure"), ret: ret}
	c.callEdges[fn.Name] = nil // ensure every fn has a node, even leaves
	c.checkBlock(scope, ctx, fn.Body)
}

func (c *Checker) checkBlock(scope *Scope, ctx *fnCtx, b *ast.Block) {
	inner := NewScope(scope)
	for _, stmt := range b.Stmts {
		if ctx.halted {
			c.errorAt(errors.TYP008, stmt.Span(), "unreachable code after halt/return/assert(false)")
		}
		c.checkStmt(inner, ctx, stmt)
	}
}

func (c *Checker) checkStmt(scope *Scope, ctx *fnCtx, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		vt, err := c.checkExpr(scope, ctx, s.Value)
		if err != nil {
			c.errorAt(errors.TYP001, s.Span(), err.Error())
			return
		}
		if s.Type != nil {
			declared, err := ResolveASTType(s.Type, c.items, c.cfg)
			if err != nil {
				c.errorAt(errors.TYP001, s.Span(), err.Error())
				return
			}
			if !Equal(declared, vt) {
				c.errorAt(errors.TYP001, s.Span(), fmt.Sprintf("let %s: declared %s, value is %s", s.Name, declared, vt))
				return
			}
		}
		scope.Bind(s.Name, vt, s.Mut)

	case *ast.AssignStmt:
		target, ok := s.Target.(*ast.Place)
		if !ok {
			c.errorAt(errors.TYP001, s.Span(), "assignment target must be a place")
			return
		}
		tt, err := c.checkExpr(scope, ctx, target)
		if err != nil {
			c.errorAt(errors.TYP001, s.Span(), err.Error())
			return
		}
		if target.Base == nil && target.Index == nil {
			if _, mut, ok := scope.Lookup(target.Name); ok && !mut {
				c.errorAt(errors.TYP001, s.Span(), fmt.Sprintf("cannot assign to immutable binding %q (missing `mut`)", target.Name))
				return
			}
		}
		vt, err := c.checkExpr(scope, ctx, s.Value)
		if err != nil {
			c.errorAt(errors.TYP001, s.Span(), err.Error())
			return
		}
		if !Equal(tt, vt) {
			c.errorAt(errors.TYP001, s.Span(), fmt.Sprintf("assignment type mismatch: target %s, value %s", tt, vt))
		}

	case *ast.IfStmt:
		ct, err := c.checkExpr(scope, ctx, s.Cond)
		if err != nil {
			c.errorAt(errors.TYP001, s.Span(), err.Error())
		} else if _, ok := ct.(TBool); !ok {
			c.errorAt(errors.TYP001, s.Span(), fmt.Sprintf("if condition must be Bool, got %s", ct))
		}
		thenCtx := &fnCtx{name: ctx.name, pure: ctx.pure, ret: ctx.ret}
		c.checkBlock(scope, thenCtx, s.Then)
		if s.Else != nil {
			elseCtx := &fnCtx{name: ctx.name, pure: ctx.pure, ret: ctx.ret}
			c.checkBlock(scope, elseCtx, s.Else)
			ctx.halted = thenCtx.halted && elseCtx.halted
		}

	case *ast.ForStmt:
		lt, err := c.checkExpr(scope, ctx, s.Lo)
		if err == nil {
			if _, ok := lt.(TU32); !ok {
				c.errorAt(errors.TYP001, s.Span(), "for loop bound must be U32")
			}
		}
		ht, err := c.checkExpr(scope, ctx, s.Hi)
		if err == nil {
			if _, ok := ht.(TU32); !ok {
				c.errorAt(errors.TYP001, s.Span(), "for loop bound must be U32")
			}
		}
		if _, hiConst := s.Hi.(*ast.Lit); !hiConst && s.Bound == nil {
			c.errorAt(errors.TYP010, s.Span(),
				"for loop over a non-constant range must declare `bounded N`")
		}
		inner := NewScope(scope)
		inner.Bind(s.Var, TU32{}, false)
		bodyCtx := &fnCtx{name: ctx.name, pure: ctx.pure, ret: ctx.ret}
		c.checkBlock(inner, bodyCtx, s.Body)

	case *ast.MatchStmt:
		c.checkMatch(scope, ctx, s)

	case *ast.AssertStmt:
		switch s.Kind {
		case ast.AssertCond:
			if len(s.Args) != 1 {
				c.errorAt(errors.BLT001, s.Span(), "assert expects exactly one argument")
				return
			}
			at, err := c.checkExpr(scope, ctx, s.Args[0])
			if err == nil {
				if _, ok := at.(TBool); !ok {
					c.errorAt(errors.BLT002, s.Span(), "assert argument must be Bool")
				}
			}
		case ast.AssertEq:
			if len(s.Args) != 2 {
				c.errorAt(errors.BLT001, s.Span(), "assert_eq expects exactly two arguments")
				return
			}
			at, errA := c.checkExpr(scope, ctx, s.Args[0])
			bt, errB := c.checkExpr(scope, ctx, s.Args[1])
			if errA == nil && errB == nil && !Equal(at, bt) {
				c.errorAt(errors.BLT002, s.Span(), fmt.Sprintf("assert_eq type mismatch: %s vs %s", at, bt))
			}
		case ast.AssertFalse:
			ctx.halted = true
		}

	case *ast.AsmStmt:
		c.recordIO(ctx.name)
		if ctx.pure {
			c.errorAt(errors.ASM002, s.Span(), fmt.Sprintf("asm block not allowed in #[pure] function %s", ctx.name))
		}

	case *ast.RevealStmt:
		c.checkEventPayload(scope, ctx, errors.EVT001, s.Event, s.Fields, s.Order, s.Span())
		c.recordIO(ctx.name)
		if ctx.pure {
			c.errorAt(errors.ANN001, s.Span(), fmt.Sprintf("#[pure] function %s may not reveal", ctx.name))
		}

	case *ast.SealStmt:
		c.checkEventPayload(scope, ctx, errors.EVT001, s.Event, s.Fields, s.Order, s.Span())
		c.recordIO(ctx.name)
		if int(2) > int(c.cfg.TierCeiling()) {
			c.errorAt(errors.TGT002, s.Span(), fmt.Sprintf("seal requires a Tier-2 (sponge) target, target ceiling is %d", c.cfg.TierCeiling()))
		}
		if ctx.pure {
			c.errorAt(errors.ANN001, s.Span(), fmt.Sprintf("#[pure] function %s may not seal", ctx.name))
		}

	case *ast.ReturnStmt:
		if s.Value != nil {
			vt, err := c.checkExpr(scope, ctx, s.Value)
			if err == nil && !Equal(vt, ctx.ret) {
				c.errorAt(errors.TYP001, s.Span(), fmt.Sprintf("return type mismatch: function returns %s, got %s", ctx.ret, vt))
			}
		}
		ctx.halted = true

	case *ast.ExprStmt:
		if _, err := c.checkExpr(scope, ctx, s.X); err != nil {
			c.errorAt(errors.TYP001, s.Span(), err.Error())
		}
	}
}

func (c *Checker) checkEventPayload(scope *Scope, ctx *fnCtx, undefCode, name string, fields map[string]ast.Expr, order []string, span token.Span) {
	ev, ok := c.items.Event(name)
	if !ok {
		c.errorAt(undefCode, span, fmt.Sprintf("undefined event %q", name))
		return
	}
	declared := map[string]Type{}
	for _, f := range ev.Fields {
		declared[f.Name] = f.Type
	}
	for _, fname := range order {
		fexpr := fields[fname]
		want, ok := declared[fname]
		if !ok {
			c.errorAt(errors.EVT004, fexpr.Span(), fmt.Sprintf("event %s has no field %q", name, fname))
			continue
		}
		got, err := c.checkExpr(scope, ctx, fexpr)
		if err != nil {
			c.errorAt(errors.EVT004, fexpr.Span(), err.Error())
			continue
		}
		if !Equal(got, want) {
			c.errorAt(errors.EVT004, fexpr.Span(), fmt.Sprintf("event %s field %s: expected %s, got %s", name, fname, want, got))
		}
	}
}

