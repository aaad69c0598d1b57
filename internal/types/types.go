// Package types implements Trident's multi-pass type checker: item
// collection, width computation, operator/builtin signature checking,
// tier-ceiling enforcement, #[pure] I/O discipline, call-graph cycle
// detection, match exhaustiveness, and dead-code rejection (spec.md
// §4.4).
//
// Grounded on the teacher's internal/types/typechecker.go for the
// pass-oriented CheckProgram/checkDecl skeleton and the TypeEnv
// extend-on-bind pattern, adapted from Hindley-Milner inference to
// Trident's closed, fully-annotated type discipline (no inference,
// no generalization — every binding carries an explicit type or is
// rejected).
package types

import (
	"fmt"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/target"
)

// Type is a resolved, concrete Trident type (spec.md §3). Unlike
// ast.Type, a types.Type carries no source span; it is the checker's
// internal currency, compared by structural equality.
type Type interface {
	String() string
	typeTag()
}

type TField struct{}

func (TField) String() string { return "Field" }
func (TField) typeTag()       {}

type TXField struct{}

func (TXField) String() string { return "XField" }
func (TXField) typeTag()       {}

type TBool struct{}

func (TBool) String() string { return "Bool" }
func (TBool) typeTag()       {}

type TU32 struct{}

func (TU32) String() string { return "U32" }
func (TU32) typeTag()       {}

type TDigest struct{}

func (TDigest) String() string { return "Digest" }
func (TDigest) typeTag()       {}

// TArray is a fixed-length array; Size is always concrete by the time
// the type checker resolves it from an ast.ArrayType (const-evaluated
// in the width pass — full symbolic sizes survive to internal/mono for
// function-level size generics).
type TArray struct {
	Elem Type
	Size uint64
}

func (t TArray) String() string { return fmt.Sprintf("[%s; %d]", t.Elem, t.Size) }
func (TArray) typeTag()         {}

type TTuple struct{ Elems []Type }

func (t TTuple) String() string {
	s := "("
	for i, e := range t.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}
func (TTuple) typeTag() {}

type TStruct struct {
	Path   string
	Fields []StructField // resolved, ordered
}

type StructField struct {
	Name string
	Type Type
}

func (t TStruct) String() string { return t.Path }
func (TStruct) typeTag()         {}

// Equal reports structural equality between two types. Trident has no
// implicit conversions (spec.md §4.4), so this is the sole notion of
// type compatibility used for assignment, argument, and return checks.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case TField:
		_, ok := b.(TField)
		return ok
	case TXField:
		_, ok := b.(TXField)
		return ok
	case TBool:
		_, ok := b.(TBool)
		return ok
	case TU32:
		_, ok := b.(TU32)
		return ok
	case TDigest:
		_, ok := b.(TDigest)
		return ok
	case TArray:
		y, ok := b.(TArray)
		if !ok || !Equal(x.Elem, y.Elem) {
			return false
		}
		// Size 0 marks an as-yet-unresolved size-generic dimension
		// (spec.md §4.5); treated as a wildcard until internal/mono
		// substitutes a concrete integer.
		return x.Size == 0 || y.Size == 0 || x.Size == y.Size
	case TTuple:
		y, ok := b.(TTuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case TStruct:
		y, ok := b.(TStruct)
		return ok && x.Path == y.Path
	}
	return false
}

// Width returns the number of field elements a value of type t occupies
// on the virtual stack (spec.md §3: "Each type has a compile-time width
// in field elements"). D and E come from the active target config.
func Width(t Type, cfg *target.Config) int {
	switch x := t.(type) {
	case TField, TBool, TU32:
		return 1
	case TXField:
		return cfg.ExtensionDegree()
	case TDigest:
		return cfg.DigestWidth()
	case TArray:
		return int(x.Size) * Width(x.Elem, cfg)
	case TTuple:
		sum := 0
		for _, e := range x.Elems {
			sum += Width(e, cfg)
		}
		return sum
	case TStruct:
		sum := 0
		for _, f := range x.Fields {
			sum += Width(f.Type, cfg)
		}
		return sum
	}
	return 0
}

// ResolveASTType converts a parsed ast.Type into a checker Type,
// resolving ArrayType sizes that are already concrete literals and
// looking up StructType paths in the item table. Symbolic (size
// parameter) array sizes resolve to TArray with Size left at the
// caller-supplied default of 0 and must be finalized by the
// monomorphizer before IR emission (spec.md §3 SizeExpr invariant).
//
// cfg gates the two target-parameterized types: XField is rejected
// outright on a target with xfield_width 0 (spec.md §3, §8 scenario
// 6), since there no width exists for it to occupy.
func ResolveASTType(t ast.Type, items *ItemTable, cfg *target.Config) (Type, error) {
	switch x := t.(type) {
	case *ast.FieldType:
		return TField{}, nil
	case *ast.XFieldType:
		if cfg.ExtensionDegree() == 0 {
			return nil, fmt.Errorf("type XField is not available on target %s (xfield_width = 0)", cfg.Name)
		}
		return TXField{}, nil
	case *ast.BoolType:
		return TBool{}, nil
	case *ast.U32Type:
		return TU32{}, nil
	case *ast.DigestType:
		return TDigest{}, nil
	case *ast.ArrayType:
		elem, err := ResolveASTType(x.Elem, items, cfg)
		if err != nil {
			return nil, err
		}
		size, ok := EvalConstSize(x.Size, items, nil)
		if !ok {
			// Leave unresolved; internal/mono substitutes concrete
			// sizes per call-site instance before this type is used
			// for width computation again.
			return TArray{Elem: elem, Size: 0}, nil
		}
		return TArray{Elem: elem, Size: size}, nil
	case *ast.TupleType:
		elems := make([]Type, len(x.Elems))
		for i, e := range x.Elems {
			r, err := ResolveASTType(e, items, cfg)
			if err != nil {
				return nil, err
			}
			elems[i] = r
		}
		return TTuple{Elems: elems}, nil
	case *ast.StructType:
		s, ok := items.Struct(x.Path)
		if !ok {
			return nil, fmt.Errorf("unknown struct type %q", x.Path)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unhandled ast.Type %T", t)
}

// EvalConstSize evaluates a SizeExpr to a concrete uint64 using global
// const values and, when provided, a size-parameter binding map
// (nil at the type-checking stage; populated by internal/mono).
func EvalConstSize(e ast.SizeExpr, items *ItemTable, bindings map[string]uint64) (uint64, bool) {
	switch x := e.(type) {
	case *ast.SizeLit:
		return x.Value, true
	case *ast.SizeIdent:
		if bindings != nil {
			if v, ok := bindings[x.Name]; ok {
				return v, true
			}
		}
		if v, ok := items.ConstUint(x.Name); ok {
			return v, true
		}
		return 0, false
	case *ast.SizeBinOp:
		l, lok := EvalConstSize(x.Left, items, bindings)
		r, rok := EvalConstSize(x.Right, items, bindings)
		if !lok || !rok {
			return 0, false
		}
		switch x.Op {
		case "+":
			return l + r, true
		case "*":
			return l * r, true
		}
	}
	return 0, false
}
