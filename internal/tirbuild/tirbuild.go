// Package tirbuild walks a type-checked AST, driving
// internal/stackmodel's virtual stack, and emits the flat,
// structurally-nested TIR stream of internal/tir (spec.md §4.7).
package tirbuild

import (
	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/stackmodel"
	"github.com/tridentlang/trident/internal/target"
	"github.com/tridentlang/trident/internal/tir"
	"github.com/tridentlang/trident/internal/types"
)

// Builder is a pure function of (AST, target config) per the
// re-architecture note in spec.md §9: "IR production is a pure
// function of (AST, target_config)" — one Builder serves a whole
// compilation and keeps only the set of already-emitted labels; each
// function body gets a fresh funcBuilder rather than shared global state.
type Builder struct {
	cfg     *target.Config
	items   *types.ItemTable
	emitted map[string]bool // function labels already emitted, for dedup
	errs    errors.List
}

func NewBuilder(cfg *target.Config, items *types.ItemTable) *Builder {
	return &Builder{
		cfg:     cfg,
		items:   items,
		emitted: map[string]bool{},
	}
}

// BuildFunction emits FnStart/.../FnEnd for fn, skipping re-emission
// if the label has already been produced (spec.md §4.7: "Shared
// functions are emitted once").
func (b *Builder) BuildFunction(symbol string, fn *ast.FnDef, bindings map[string]uint64) []tir.TIROp {
	if b.emitted[symbol] {
		return nil
	}
	b.emitted[symbol] = true

	fb := &funcBuilder{
		Builder:  b,
		mgr:      stackmodel.NewManager(b.cfg.StackDepth),
		bindings: bindings,
	}
	var out []tir.TIROp
	out = append(out, tir.TIROp{Kind: tir.OpFnStart, Name: symbol})
	for _, p := range fn.Params {
		width := types.Width(fb.resolveType(p.Type), b.cfg)
		out = append(out, fb.mgr.Alloc(p.Name, width)...)
	}
	out = append(out, fb.buildBlock(fn.Body)...)
	out = append(out, tir.TIROp{Kind: tir.OpFnEnd})
	return out
}

func (b *Builder) Errors() errors.List { return b.errs }

// funcBuilder threads per-function state (the stack manager and any
// active size-parameter bindings from monomorphization) through
// statement and expression emission.
type funcBuilder struct {
	*Builder
	mgr      *stackmodel.Manager
	bindings map[string]uint64
}

func (fb *funcBuilder) resolveType(t ast.Type) types.Type {
	rt, err := types.ResolveASTType(t, fb.items, fb.cfg)
	if err != nil {
		return types.TField{}
	}
	return rt
}

func (fb *funcBuilder) buildBlock(block *ast.Block) []tir.TIROp {
	var out []tir.TIROp
	for _, s := range block.Stmts {
		out = append(out, fb.buildStmt(s)...)
	}
	return out
}

func (fb *funcBuilder) buildStmt(s ast.Stmt) []tir.TIROp {
	switch x := s.(type) {
	case *ast.LetStmt:
		ops, width := fb.buildExpr(x.Value)
		ops = append(ops, fb.mgr.Alloc(x.Name, width)...)
		return ops

	case *ast.AssignStmt:
		place := x.Target.(*ast.Place)
		valOps, width := fb.buildExpr(x.Value)
		ops := append(valOps, fb.mgr.Drop(place.Name)...)
		ops = append(ops, fb.mgr.Alloc(place.Name, width)...)
		return ops

	case *ast.IfStmt:
		condOps, _ := fb.buildExpr(x.Cond)
		cp := fb.mgr.Checkpoint()
		thenOps := fb.buildBlock(x.Then)
		fb.mgr.Restore(cp)
		if x.Else != nil {
			elseOps := fb.buildBlock(x.Else)
			fb.mgr.Restore(cp)
			return append(condOps, tir.TIROp{Kind: tir.OpIfElse, Then: thenOps, Else: elseOps})
		}
		return append(condOps, tir.TIROp{Kind: tir.OpIfOnly, Then: thenOps})

	case *ast.ForStmt:
		cp := fb.mgr.Checkpoint()
		body := fb.buildBlock(x.Body)
		fb.mgr.Restore(cp)
		bound := fb.loopBound(x)
		return []tir.TIROp{{Kind: tir.OpLoop, Label: x.Var, Body: body, U64: bound}}

	case *ast.MatchStmt:
		return fb.buildMatch(x)

	case *ast.AssertStmt:
		switch x.Kind {
		case ast.AssertCond:
			ops, _ := fb.buildExpr(x.Args[0])
			return append(ops, tir.TIROp{Kind: tir.OpAssert, Width: 1})
		case ast.AssertEq:
			aOps, _ := fb.buildExpr(x.Args[0])
			bOps, _ := fb.buildExpr(x.Args[1])
			ops := append(aOps, bOps...)
			ops = append(ops, tir.TIROp{Kind: tir.OpEq}, tir.TIROp{Kind: tir.OpAssert, Width: 1})
			return ops
		case ast.AssertFalse:
			return []tir.TIROp{
				{Kind: tir.OpPush, U64: 0},
				{Kind: tir.OpAssert, Width: 1},
			}
		}

	case *ast.AsmStmt:
		return []tir.TIROp{{Kind: tir.OpAsm, Lines: x.Lines, Effect: x.Effect}}

	case *ast.RevealStmt:
		return fb.buildEventEmit(tir.OpReveal, x.Event, x.Fields, x.Order)

	case *ast.SealStmt:
		return fb.buildSeal(x.Event, x.Fields, x.Order)

	case *ast.ReturnStmt:
		var ops []tir.TIROp
		if x.Value != nil {
			vops, _ := fb.buildExpr(x.Value)
			ops = append(ops, vops...)
		}
		return append(ops, tir.TIROp{Kind: tir.OpReturn})

	case *ast.ExprStmt:
		ops, _ := fb.buildExpr(x.X)
		return ops
	}
	return nil
}

// loopBound resolves the exact iteration count the cost model needs:
// the literal N for constant ranges, or the declared `bounded M`
// ceiling otherwise (spec.md §4.7, §8 invariant 5).
func (fb *funcBuilder) loopBound(x *ast.ForStmt) uint64 {
	if x.Bound != nil {
		return *x.Bound
	}
	if lit, ok := x.Hi.(*ast.Lit); ok {
		return lit.Int
	}
	return 0
}

func (fb *funcBuilder) buildMatch(m *ast.MatchStmt) []tir.TIROp {
	scrutOps, _ := fb.buildExpr(m.Scrut)
	return append(scrutOps, fb.buildMatchArms(m.Arms)...)
}

// buildMatchArms desugars to nested IfElse over Eq tests in source
// order, wildcard as the else-chain tail (spec.md §4.7).
func (fb *funcBuilder) buildMatchArms(arms []ast.MatchArm) []tir.TIROp {
	if len(arms) == 0 {
		return nil
	}
	arm := arms[0]
	if arm.Pattern == nil {
		return fb.buildBlock(arm.Body)
	}
	patOps, _ := fb.buildExpr(arm.Pattern)
	thenOps := fb.buildBlock(arm.Body)
	elseOps := fb.buildMatchArms(arms[1:])
	testOps := append(patOps, tir.TIROp{Kind: tir.OpEq})
	return append(testOps, tir.TIROp{Kind: tir.OpIfElse, Then: thenOps, Else: elseOps})
}

// buildEventEmit handles `reveal`: each field expression followed by a
// WriteIo of its width (spec.md §4.7).
func (fb *funcBuilder) buildEventEmit(kind tir.Op, event string, fields map[string]ast.Expr, order []string) []tir.TIROp {
	var out []tir.TIROp
	total := 0
	for _, name := range order {
		ops, w := fb.buildExpr(fields[name])
		out = append(out, ops...)
		out = append(out, tir.TIROp{Kind: tir.OpWriteIo, Width: uint32(w)})
		total += w
	}
	out = append(out, tir.TIROp{Kind: kind, Tag: event, FCount: uint32(total)})
	return out
}

// buildSeal desugars `seal` to SpongeInit; SpongeAbsorb*; SpongeSqueeze;
// WriteIo(D) (spec.md §4.7, requires Tier 2).
func (fb *funcBuilder) buildSeal(event string, fields map[string]ast.Expr, order []string) []tir.TIROp {
	ev, _ := fb.items.Event(event)
	out := []tir.TIROp{{Kind: tir.OpSpongeInit}}
	for _, name := range order {
		ops, _ := fb.buildExpr(fields[name])
		out = append(out, ops...)
		out = append(out, tir.TIROp{Kind: tir.OpSpongeAbsorb})
	}
	out = append(out, tir.TIROp{Kind: tir.OpSpongeSqueeze})
	out = append(out, tir.TIROp{Kind: tir.OpWriteIo, Width: uint32(fb.cfg.DigestWidth())})
	out = append(out, tir.TIROp{Kind: tir.OpSeal, Tag: event, FCount: uint32(len(ev.Fields))})
	return out
}

// buildExpr emits e onto the stack top, returning the ops and the
// width of the pushed value.
func (fb *funcBuilder) buildExpr(e ast.Expr) ([]tir.TIROp, int) {
	switch x := e.(type) {
	case *ast.Lit:
		if x.Kind == ast.LitBool {
			v := uint64(0)
			if x.Bool {
				v = 1
			}
			return []tir.TIROp{{Kind: tir.OpPush, U64: v}}, 1
		}
		return []tir.TIROp{{Kind: tir.OpPush, U64: x.Int}}, 1

	case *ast.Place:
		if x.Base == nil {
			return fb.mgr.Access(x.Name), 1
		}
		baseOps, _ := fb.buildExpr(x.Base)
		if x.Index != nil {
			idxOps, _ := fb.buildExpr(x.Index)
			ops := append(baseOps, idxOps...)
			ops = append(ops, tir.TIROp{Kind: tir.OpReadMem, Width: 1})
			return ops, 1
		}
		// Struct field projection: offset-within-struct resolution needs
		// the base's declared field layout, threaded in by the caller
		// (internal/types has already validated the field exists).
		return baseOps, 1

	case *ast.BinOp:
		lOps, _ := fb.buildExpr(x.Left)
		rOps, _ := fb.buildExpr(x.Right)
		ops := append(lOps, rOps...)
		ops = append(ops, tir.TIROp{Kind: binOpcode(x.Op)})
		return ops, resultWidth(x.Op)

	case *ast.Call:
		return fb.buildCall(x)

	case *ast.StructInit:
		var out []tir.TIROp
		width := 0
		for _, name := range x.Order {
			ops, w := fb.buildExpr(x.Fields[name])
			out = append(out, ops...)
			width += w
		}
		return out, width

	case *ast.ArrayInit:
		var out []tir.TIROp
		width := 0
		for _, el := range x.Elems {
			ops, w := fb.buildExpr(el)
			out = append(out, ops...)
			width += w
		}
		return out, width

	case *ast.TupleInit:
		var out []tir.TIROp
		width := 0
		for _, el := range x.Elems {
			ops, w := fb.buildExpr(el)
			out = append(out, ops...)
			width += w
		}
		return out, width

	case *ast.BlockExpr:
		return fb.buildBlock(x.Body), 0
	}
	return nil, 0
}

func binOpcode(op string) tir.Op {
	switch op {
	case "+":
		return tir.OpAdd
	case "*":
		return tir.OpMul
	case "==":
		return tir.OpEq
	case "<":
		return tir.OpLt
	case "&":
		return tir.OpAnd
	case "^":
		return tir.OpXor
	case "/%":
		return tir.OpDivMod
	case "*.":
		return tir.OpExtMul
	}
	return tir.OpComment
}

func resultWidth(op string) int {
	if op == "/%" {
		return 2
	}
	return 1
}

// buildCall dispatches a builtin through the closed TIROp template
// table, or emits a Call to a (monomorphized) user function label
// (spec.md §4.7).
func (fb *funcBuilder) buildCall(call *ast.Call) ([]tir.TIROp, int) {
	if ops, width, ok := fb.buildBuiltinCall(call); ok {
		return ops, width
	}
	var out []tir.TIROp
	for _, a := range call.Args {
		ops, _ := fb.buildExpr(a)
		out = append(out, ops...)
	}
	fn, ok := fb.items.Fn(call.Path)
	label := call.Path
	if ok && fn.HasAttr("intrinsic") {
		// Only names in buildBuiltinCall's table above expand to a
		// TIROp. An #[intrinsic] function whose name is not in that
		// table is not expanded here: it falls through to an ordinary
		// Call to its path, and internal/types does not check for a
		// missing table entry.
	}
	out = append(out, tir.TIROp{Kind: tir.OpCall, Name: label})
	width := 1
	if ok {
		rt, err := types.ResolveASTType(fn.Ret, fb.items, fb.cfg)
		if err == nil {
			width = types.Width(rt, fb.cfg)
		}
	}
	return out, width
}

func (fb *funcBuilder) buildBuiltinCall(call *ast.Call) ([]tir.TIROp, int, bool) {
	var argOps []tir.TIROp
	for _, a := range call.Args {
		ops, _ := fb.buildExpr(a)
		argOps = append(argOps, ops...)
	}
	switch call.Path {
	case "pub_read":
		return append(argOps, tir.TIROp{Kind: tir.OpReadIo, Width: 1}), 1, true
	case "pub_write":
		return append(argOps, tir.TIROp{Kind: tir.OpWriteIo, Width: 1}), 0, true
	case "pub_read5":
		return append(argOps, tir.TIROp{Kind: tir.OpReadIo, Width: uint32(fb.cfg.DigestWidth())}), fb.cfg.DigestWidth(), true
	case "divine":
		return append(argOps, tir.TIROp{Kind: tir.OpHint, Width: 1}), 1, true
	case "divine5":
		return append(argOps, tir.TIROp{Kind: tir.OpHint, Width: uint32(fb.cfg.DigestWidth())}), fb.cfg.DigestWidth(), true
	case "hash":
		return append(argOps, tir.TIROp{Kind: tir.OpHash, Width: uint32(fb.cfg.DigestWidth())}), fb.cfg.DigestWidth(), true
	case "sponge_init":
		return append(argOps, tir.TIROp{Kind: tir.OpSpongeInit}), 0, true
	case "sponge_absorb":
		return append(argOps, tir.TIROp{Kind: tir.OpSpongeAbsorb}), 0, true
	case "sponge_squeeze":
		return append(argOps, tir.TIROp{Kind: tir.OpSpongeSqueeze}), fb.cfg.Hash.Rate, true
	case "as_u32":
		return append(argOps, tir.TIROp{Kind: tir.OpSplit}, tir.TIROp{Kind: tir.OpPop, Width: 1}), 1, true
	case "storage_read":
		return append(argOps, tir.TIROp{Kind: tir.OpReadStorage, Width: 1}), 1, true
	case "storage_write":
		return append(argOps, tir.TIROp{Kind: tir.OpWriteStorage, Width: 1}), 0, true
	case "merkle_step":
		return append(argOps, tir.TIROp{Kind: tir.OpMerkleStep}), fb.cfg.DigestWidth(), true
	case "ext_mul":
		return append(argOps, tir.TIROp{Kind: tir.OpExtMul}), fb.cfg.ExtensionDegree(), true
	case "ext_invert":
		return append(argOps, tir.TIROp{Kind: tir.OpExtInvert}), fb.cfg.ExtensionDegree(), true
	}
	return nil, 0, false
}
