package tirbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/target"
	"github.com/tridentlang/trident/internal/tir"
	"github.com/tridentlang/trident/internal/types"
)

func testConfig() *target.Config {
	return &target.Config{
		Name:       "test-vm",
		FamilyRaw:  string(target.FamilyStack),
		Hash:       target.HashConfig{Rate: 10, DigestWidth: 5},
		StackDepth: 16,
	}
}

func litInt(n uint64) *ast.Lit { return &ast.Lit{Kind: ast.LitInt, Int: n} }

func TestBuildFunctionEmitsFnStartAndFnEndAroundBody(t *testing.T) {
	fn := &ast.FnDef{
		Name: "id",
		Body: &ast.Block{},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("id", fn, nil)

	require.Len(t, ops, 2)
	assert.Equal(t, tir.OpFnStart, ops[0].Kind)
	assert.Equal(t, "id", ops[0].Name)
	assert.Equal(t, tir.OpFnEnd, ops[1].Kind)
}

func TestBuildFunctionSkipsReemissionOfAnAlreadyBuiltSymbol(t *testing.T) {
	fn := &ast.FnDef{Name: "id", Body: &ast.Block{}}
	b := NewBuilder(testConfig(), types.NewItemTable())

	first := b.BuildFunction("id", fn, nil)
	second := b.BuildFunction("id", fn, nil)

	assert.NotEmpty(t, first)
	assert.Nil(t, second)
}

func TestLetStmtAllocatesTheBoundNameOnTheStack(t *testing.T) {
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.LetStmt{Name: "x", Value: litInt(1)},
			&ast.ExprStmt{X: &ast.Place{Name: "x"}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	// FnStart, Push(1), then accessing "x" right after binding it is a
	// top-of-stack access and needs no Dup/Swap, then FnEnd.
	require.Len(t, ops, 3)
	assert.Equal(t, tir.OpPush, ops[1].Kind)
}

func TestAssertEqEmitsBothOperandsThenEqThenAssert(t *testing.T) {
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.AssertStmt{Kind: ast.AssertEq, Args: []ast.Expr{litInt(1), litInt(1)}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	var kinds []tir.Op
	for _, op := range ops {
		kinds = append(kinds, op.Kind)
	}
	assert.Equal(t, []tir.Op{tir.OpFnStart, tir.OpPush, tir.OpPush, tir.OpEq, tir.OpAssert, tir.OpFnEnd}, kinds)
}

func TestIfStmtWithoutElseEmitsIfOnly(t *testing.T) {
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.IfStmt{Cond: litInt(1), Then: &ast.Block{}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	require.Len(t, ops, 4)
	assert.Equal(t, tir.OpIfOnly, ops[2].Kind)
}

func TestIfStmtWithElseEmitsIfElse(t *testing.T) {
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.IfStmt{Cond: litInt(1), Then: &ast.Block{}, Else: &ast.Block{}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	require.Len(t, ops, 4)
	assert.Equal(t, tir.OpIfElse, ops[2].Kind)
}

func TestForStmtWithExplicitBoundUsesItOverTheLiteralRange(t *testing.T) {
	bound := uint64(7)
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ForStmt{Var: "i", Lo: litInt(0), Hi: litInt(3), Bound: &bound, Body: &ast.Block{}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	require.Len(t, ops, 3)
	assert.Equal(t, tir.OpLoop, ops[1].Kind)
	assert.Equal(t, uint64(7), ops[1].U64)
}

func TestBuiltinHashCallProducesHashOpWidthDigestWidth(t *testing.T) {
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.Call{Path: "hash", Args: nil}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	require.Len(t, ops, 3)
	assert.Equal(t, tir.OpHash, ops[1].Kind)
	assert.Equal(t, uint32(5), ops[1].Width)
}

func TestUserFunctionCallEmitsCallOpWithPathAsLabel(t *testing.T) {
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.Call{Path: "helper", Args: nil}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	require.Len(t, ops, 3)
	assert.Equal(t, tir.OpCall, ops[1].Kind)
	assert.Equal(t, "helper", ops[1].Name)
}

func TestRevealEmitsWriteIoPerFieldThenATaggedRevealOp(t *testing.T) {
	fn := &ast.FnDef{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.RevealStmt{Event: "Transfer", Fields: map[string]ast.Expr{"amount": litInt(5)}, Order: []string{"amount"}},
		}},
	}
	b := NewBuilder(testConfig(), types.NewItemTable())
	ops := b.BuildFunction("f", fn, nil)

	require.Len(t, ops, 4)
	assert.Equal(t, tir.OpPush, ops[1].Kind)
	assert.Equal(t, tir.OpWriteIo, ops[2].Kind)
	assert.Equal(t, tir.OpReveal, ops[3].Kind)
	assert.Equal(t, "Transfer", ops[3].Tag)
}
