// Package mono monomorphizes size-generic functions: for each call
// site of a function declaring size parameters, it infers concrete
// integer values for those parameters from the argument array
// lengths, substitutes them through every SizeExpr in the function's
// signature and body, and emits a fresh, fully-concrete function
// symbol (spec.md §4.5).
//
// Grounded on no direct teacher analog (the teacher's generics are
// type-class dictionaries, resolved by internal/types' constraint
// solver, not integer monomorphization); the naming-and-freezing
// pattern (stable deterministic identifiers for generated artifacts)
// is modeled on the teacher's internal/iface/builtin_freeze.go.
package mono

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/types"
)

// Instance is one monomorphized copy of a size-generic function.
type Instance struct {
	Symbol   string // "__name__N_M_..."
	Fn       *ast.FnDef
	Bindings map[string]uint64 // size-param name -> concrete value
}

// Monomorphizer tracks which (fn, bindings) pairs have already been
// instantiated, guaranteeing idempotence (spec.md §8 invariant 8: "a
// second monomorphization pass produces no new instances").
type Monomorphizer struct {
	items     *types.ItemTable
	instances map[string]*Instance // symbol -> instance
	seen      map[string]bool      // dedup key -> already scheduled
}

func New(items *types.ItemTable) *Monomorphizer {
	return &Monomorphizer{
		items:     items,
		instances: map[string]*Instance{},
		seen:      map[string]bool{},
	}
}

// Symbol builds the deterministic `__name__N_M_…` identifier for a
// function instantiated with the given size-parameter bindings, in
// the function's declared SizeParams order (spec.md §4.5).
func Symbol(fn *ast.FnDef, bindings map[string]uint64) string {
	if len(fn.SizeParams) == 0 {
		return fn.Name
	}
	var parts []string
	for _, p := range fn.SizeParams {
		parts = append(parts, fmt.Sprintf("%d", bindings[p]))
	}
	return "__" + fn.Name + "__" + strings.Join(parts, "_")
}

func dedupKey(fnName string, bindings map[string]uint64) string {
	var keys []string
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := fnName
	for _, k := range keys {
		s += fmt.Sprintf("|%s=%d", k, bindings[k])
	}
	return s
}

// Instantiate schedules fn for emission under the given size-parameter
// bindings, returning its (possibly already-registered) Instance. A
// non-generic function (no SizeParams) always maps to itself.
func (m *Monomorphizer) Instantiate(fn *ast.FnDef, bindings map[string]uint64) (*Instance, errors.List) {
	if len(fn.SizeParams) == 0 {
		sym := fn.Name
		if _, ok := m.instances[sym]; !ok {
			m.instances[sym] = &Instance{Symbol: sym, Fn: fn, Bindings: nil}
		}
		return m.instances[sym], nil
	}

	for _, p := range fn.SizeParams {
		if _, ok := bindings[p]; !ok {
			return nil, errors.List{errors.New(errors.GEN001, errors.PhaseGeneric,
				fmt.Sprintf("could not infer size parameter %q of function %s from call-site arguments", p, fn.Name),
				fn.Span())}
		}
		if bindings[p] == 0 {
			return nil, errors.List{errors.New(errors.GEN003, errors.PhaseGeneric,
				fmt.Sprintf("size parameter %q of function %s resolved to zero", p, fn.Name), fn.Span())}
		}
	}

	key := dedupKey(fn.Name, bindings)
	sym := Symbol(fn, bindings)
	if m.seen[key] {
		return m.instances[sym], nil
	}
	m.seen[key] = true
	m.instances[sym] = &Instance{Symbol: sym, Fn: fn, Bindings: copyBindings(bindings)}
	return m.instances[sym], nil
}

func copyBindings(b map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// InferBindings computes size-parameter bindings for a call to fn from
// the checked types of its concrete arguments, matching each
// SizeIdent-shaped array dimension in a parameter's declared type
// against the corresponding argument's concrete array length
// (spec.md §4.5: "collect size arguments... or inferred from argument
// array lengths").
func InferBindings(fn *ast.FnDef, argTypes []types.Type) (map[string]uint64, errors.List) {
	bindings := map[string]uint64{}
	var errs errors.List
	for i, param := range fn.Params {
		if i >= len(argTypes) {
			break
		}
		inferFromType(param.Type, argTypes[i], bindings)
	}
	for _, p := range fn.SizeParams {
		if _, ok := bindings[p]; !ok {
			errs = append(errs, errors.New(errors.GEN002, errors.PhaseGeneric,
				fmt.Sprintf("size parameter %q of function %s is not constrained by any array-typed argument", p, fn.Name),
				fn.Span()))
		}
	}
	return bindings, errs
}

func inferFromType(declared ast.Type, actual types.Type, bindings map[string]uint64) {
	at, ok := declared.(*ast.ArrayType)
	if !ok {
		return
	}
	aa, ok := actual.(types.TArray)
	if !ok {
		return
	}
	if ident, ok := at.Size.(*ast.SizeIdent); ok {
		if _, exists := bindings[ident.Name]; !exists {
			bindings[ident.Name] = aa.Size
		}
	}
	inferFromType(at.Elem, aa.Elem, bindings)
}

// Instances returns every scheduled instance, sorted by symbol for
// deterministic emission order (spec.md §8: "IR determinism").
func (m *Monomorphizer) Instances() []*Instance {
	var out []*Instance
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// SubstituteSize evaluates a SizeExpr against bindings plus const
// items, producing the concrete integer the TIR builder uses for
// array widths inside a monomorphized body.
func SubstituteSize(e ast.SizeExpr, items *types.ItemTable, bindings map[string]uint64) (uint64, bool) {
	return types.EvalConstSize(e, items, bindings)
}
