package types

import (
	"fmt"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
)

// checkExpr type checks an expression, recording call-graph edges
// (spec.md §4.4: "a function's call graph must be acyclic") and
// direct I/O usage (consumed by the #[pure] fixed-point pass in
// purity.go) as a side effect.
func (c *Checker) checkExpr(scope *Scope, ctx *fnCtx, e ast.Expr) (Type, error) {
	switch x := e.(type) {
	case *ast.Lit:
		if x.Kind == ast.LitBool {
			return TBool{}, nil
		}
		return TField{}, nil

	case *ast.Place:
		return c.checkPlace(scope, ctx, x)

	case *ast.BinOp:
		lt, err := c.checkExpr(scope, ctx, x.Left)
		if err != nil {
			return nil, err
		}
		rt, err := c.checkExpr(scope, ctx, x.Right)
		if err != nil {
			return nil, err
		}
		_, leftIsX := lt.(TXField)
		sig, ok := OperatorSig(x.Op, leftIsX)
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", x.Op)
		}
		if !Equal(lt, sig.Params[0]) || !Equal(rt, sig.Params[1]) {
			return nil, fmt.Errorf("operator %q expects (%s, %s), got (%s, %s)", x.Op, sig.Params[0], sig.Params[1], lt, rt)
		}
		if int(sig.Tier) > int(c.cfg.TierCeiling()) {
			c.errorAt(errors.TGT002, x.Span(), fmt.Sprintf("operator %q requires tier %d, target ceiling is %d", x.Op, sig.Tier, c.cfg.TierCeiling()))
		}
		return sig.Result, nil

	case *ast.Call:
		return c.checkCall(scope, ctx, x)

	case *ast.StructInit:
		st, ok := c.items.Struct(x.Path)
		if !ok {
			return nil, fmt.Errorf("unknown struct %q", x.Path)
		}
		declared := map[string]Type{}
		for _, f := range st.Fields {
			declared[f.Name] = f.Type
		}
		for _, fname := range x.Order {
			want, ok := declared[fname]
			if !ok {
				return nil, fmt.Errorf("struct %s has no field %q", x.Path, fname)
			}
			got, err := c.checkExpr(scope, ctx, x.Fields[fname])
			if err != nil {
				return nil, err
			}
			if !Equal(got, want) {
				return nil, fmt.Errorf("struct %s field %s: expected %s, got %s", x.Path, fname, want, got)
			}
		}
		return st, nil

	case *ast.ArrayInit:
		if len(x.Elems) == 0 {
			return nil, fmt.Errorf("array literal cannot be empty (size is part of its type)")
		}
		elemT, err := c.checkExpr(scope, ctx, x.Elems[0])
		if err != nil {
			return nil, err
		}
		for _, el := range x.Elems[1:] {
			t, err := c.checkExpr(scope, ctx, el)
			if err != nil {
				return nil, err
			}
			if !Equal(t, elemT) {
				return nil, fmt.Errorf("array literal has mixed element types: %s and %s", elemT, t)
			}
		}
		return TArray{Elem: elemT, Size: uint64(len(x.Elems))}, nil

	case *ast.TupleInit:
		elems := make([]Type, len(x.Elems))
		for i, el := range x.Elems {
			t, err := c.checkExpr(scope, ctx, el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return TTuple{Elems: elems}, nil

	case *ast.BlockExpr:
		inner := NewScope(scope)
		c.checkBlock(inner, ctx, x.Body)
		return TTuple{}, nil
	}
	return nil, fmt.Errorf("unhandled expression %T", e)
}

func (c *Checker) checkPlace(scope *Scope, ctx *fnCtx, p *ast.Place) (Type, error) {
	if p.Base == nil && p.Index == nil {
		if t, _, ok := scope.Lookup(p.Name); ok {
			return t, nil
		}
		if t, ok := c.items.ConstType(p.Name); ok {
			return t, nil
		}
		return nil, fmt.Errorf("undefined identifier %q", p.Name)
	}
	baseT, err := c.checkExpr(scope, ctx, p.Base)
	if err != nil {
		return nil, err
	}
	if p.Index != nil {
		arr, ok := baseT.(TArray)
		if !ok {
			return nil, fmt.Errorf("cannot index non-array type %s", baseT)
		}
		it, err := c.checkExpr(scope, ctx, p.Index)
		if err != nil {
			return nil, err
		}
		if _, ok := it.(TU32); !ok {
			return nil, fmt.Errorf("array index must be U32, got %s", it)
		}
		return arr.Elem, nil
	}
	st, ok := baseT.(TStruct)
	if !ok {
		return nil, fmt.Errorf("field access %q on non-struct type %s", p.Name, baseT)
	}
	for _, f := range st.Fields {
		if f.Name == p.Name {
			return f.Type, nil
		}
	}
	return nil, fmt.Errorf("struct %s has no field %q", st.Path, p.Name)
}

func (c *Checker) checkCall(scope *Scope, ctx *fnCtx, call *ast.Call) (Type, error) {
	if b, ok := Builtin(call.Path); ok {
		return c.checkBuiltinCall(scope, ctx, call, b)
	}
	fn, ok := c.items.Fn(call.Path)
	if !ok {
		return nil, fmt.Errorf("undefined function %q", call.Path)
	}
	c.callEdges[ctx.name] = append(c.callEdges[ctx.name], call.Path)

	if len(call.Args) != len(fn.Params) {
		return nil, fmt.Errorf("function %s expects %d arguments, got %d", call.Path, len(fn.Params), len(call.Args))
	}
	for i, arg := range call.Args {
		at, err := c.checkExpr(scope, ctx, arg)
		if err != nil {
			return nil, err
		}
		pt, err := ResolveASTType(fn.Params[i].Type, c.items, c.cfg)
		if err != nil {
			return nil, err
		}
		if !Equal(pt, at) {
			return nil, fmt.Errorf("function %s argument %d: expected %s, got %s", call.Path, i, pt, at)
		}
	}
	ret, err := ResolveASTType(fn.Ret, c.items, c.cfg)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Checker) checkBuiltinCall(scope *Scope, ctx *fnCtx, call *ast.Call, b BuiltinSig) (Type, error) {
	if b.IsIO {
		c.recordIO(ctx.name)
		if ctx.pure {
			c.errorAt(errors.ANN001, call.Span(), fmt.Sprintf("#[pure] function %s may not call I/O builtin %q", ctx.name, call.Path))
		}
	}
	if int(b.Tier) > int(c.cfg.TierCeiling()) {
		c.errorAt(errors.TGT002, call.Span(), fmt.Sprintf("builtin %q requires tier %d, target ceiling is %d", call.Path, b.Tier, c.cfg.TierCeiling()))
	}
	if call.Path == "ext_mul" || call.Path == "ext_invert" {
		if !c.cfg.HasExtensionField() {
			return nil, fmt.Errorf("builtin %q requires xfield_width > 0, target has none", call.Path)
		}
	}
	if call.Path == "hash" || call.Path == "divine5" || call.Path == "pub_read5" {
		if c.cfg.DigestWidth() != 5 {
			return nil, fmt.Errorf("builtin %q is fixed to the Tip5 digest convention (digest_width = 5), target %s has digest_width = %d",
				call.Path, c.cfg.Name, c.cfg.DigestWidth())
		}
	}
	want := b.ParamWidth(c.cfg)
	if want != nil {
		if len(call.Args) != len(want) {
			return nil, fmt.Errorf("builtin %s expects %d arguments, got %d", call.Path, len(want), len(call.Args))
		}
		for i, arg := range call.Args {
			at, err := c.checkExpr(scope, ctx, arg)
			if err != nil {
				return nil, err
			}
			if call.Path == "as_u32" {
				switch at.(type) {
				case TField, TU32:
				default:
					return nil, fmt.Errorf("as_u32 expects Field or U32, got %s", at)
				}
				continue
			}
			if !Equal(at, want[i]) {
				return nil, fmt.Errorf("builtin %s argument %d: expected %s, got %s", call.Path, i, want[i], at)
			}
		}
	} else {
		if len(call.Args) != 0 {
			return nil, fmt.Errorf("builtin %s expects no arguments, got %d", call.Path, len(call.Args))
		}
	}
	return b.Result(c.cfg), nil
}
