package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/types"
)

func fieldArray(n string) *ast.ArrayType {
	return &ast.ArrayType{Elem: &ast.FieldType{}, Size: &ast.SizeIdent{Name: n}}
}

func TestSymbolOfNonGenericFnIsBareName(t *testing.T) {
	fn := &ast.FnDef{Name: "add"}
	assert.Equal(t, "add", Symbol(fn, nil))
}

func TestSymbolOfGenericFnEncodesBindings(t *testing.T) {
	fn := &ast.FnDef{Name: "sum", SizeParams: []string{"N"}}
	sym := Symbol(fn, map[string]uint64{"N": 5})
	assert.Equal(t, "__sum__5", sym)
}

func TestInstantiateDedupsIdenticalBindings(t *testing.T) {
	fn := &ast.FnDef{Name: "sum", SizeParams: []string{"N"}}
	m := New(types.NewItemTable())

	a, errs := m.Instantiate(fn, map[string]uint64{"N": 5})
	require.Empty(t, errs)
	b, errs := m.Instantiate(fn, map[string]uint64{"N": 5})
	require.Empty(t, errs)

	assert.Same(t, a, b)
	assert.Len(t, m.Instances(), 1)
}

func TestInstantiateProducesDistinctSymbolsPerBinding(t *testing.T) {
	fn := &ast.FnDef{Name: "sum", SizeParams: []string{"N"}}
	m := New(types.NewItemTable())

	_, errs := m.Instantiate(fn, map[string]uint64{"N": 5})
	require.Empty(t, errs)
	_, errs = m.Instantiate(fn, map[string]uint64{"N": 8})
	require.Empty(t, errs)

	assert.Len(t, m.Instances(), 2)
}

func TestInstantiateRejectsUnboundSizeParam(t *testing.T) {
	fn := &ast.FnDef{Name: "sum", SizeParams: []string{"N"}}
	m := New(types.NewItemTable())

	_, errs := m.Instantiate(fn, map[string]uint64{})
	require.NotEmpty(t, errs)
	assert.Equal(t, "GEN001", errs[0].Code)
}

func TestInstantiateRejectsZeroSizeParam(t *testing.T) {
	fn := &ast.FnDef{Name: "sum", SizeParams: []string{"N"}}
	m := New(types.NewItemTable())

	_, errs := m.Instantiate(fn, map[string]uint64{"N": 0})
	require.NotEmpty(t, errs)
	assert.Equal(t, "GEN003", errs[0].Code)
}

func TestInferBindingsFromArrayArgumentLength(t *testing.T) {
	fn := &ast.FnDef{
		Name:       "sum",
		SizeParams: []string{"N"},
		Params:     []ast.Param{{Name: "xs", Type: fieldArray("N")}},
	}
	argTypes := []types.Type{types.TArray{Elem: types.TField{}, Size: 7}}

	bindings, errs := InferBindings(fn, argTypes)
	require.Empty(t, errs)
	assert.Equal(t, uint64(7), bindings["N"])
}

func TestInferBindingsReportsUnconstrainedSizeParam(t *testing.T) {
	fn := &ast.FnDef{
		Name:       "sum",
		SizeParams: []string{"N"},
		Params:     []ast.Param{{Name: "x", Type: &ast.FieldType{}}},
	}

	_, errs := InferBindings(fn, []types.Type{types.TField{}})
	require.NotEmpty(t, errs)
	assert.Equal(t, "GEN002", errs[0].Code)
}

func TestInstancesAreSortedBySymbol(t *testing.T) {
	fnB := &ast.FnDef{Name: "b"}
	fnA := &ast.FnDef{Name: "a"}
	m := New(types.NewItemTable())
	_, _ = m.Instantiate(fnB, nil)
	_, _ = m.Instantiate(fnA, nil)

	insts := m.Instances()
	require.Len(t, insts, 2)
	assert.Equal(t, "a", insts[0].Symbol)
	assert.Equal(t, "b", insts[1].Symbol)
}
