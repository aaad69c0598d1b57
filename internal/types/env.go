package types

import (
	"github.com/tridentlang/trident/internal/ast"
)

// ItemTable is the read-only, cross-module name-resolution table built
// before body checking (spec.md §9: "a separate name-resolution table
// is built before type checking; it is read-only thereafter").
type ItemTable struct {
	consts  map[string]constEntry
	structs map[string]TStruct
	events  map[string]EventInfo
	fns     map[string]*ast.FnDef
	fnOwner map[string]string // fn name -> owning module identity
	pub     map[string]bool   // item name -> declared pub
}

type constEntry struct {
	typ Type
	lit ast.Expr
}

// EventInfo is the resolved `Event -> (tag, field widths)` table the
// TIR builder consumes to desugar reveal/seal (spec.md §9).
type EventInfo struct {
	Name   string
	Fields []StructField
}

func NewItemTable() *ItemTable {
	return &ItemTable{
		consts:  map[string]constEntry{},
		structs: map[string]TStruct{},
		events:  map[string]EventInfo{},
		fns:     map[string]*ast.FnDef{},
		fnOwner: map[string]string{},
		pub:     map[string]bool{},
	}
}

func (t *ItemTable) Struct(name string) (TStruct, bool) {
	s, ok := t.structs[name]
	return s, ok
}

func (t *ItemTable) Event(name string) (EventInfo, bool) {
	e, ok := t.events[name]
	return e, ok
}

func (t *ItemTable) Fn(name string) (*ast.FnDef, bool) {
	f, ok := t.fns[name]
	return f, ok
}

func (t *ItemTable) FnOwner(name string) string { return t.fnOwner[name] }

func (t *ItemTable) IsPub(name string) bool { return t.pub[name] }

func (t *ItemTable) ConstUint(name string) (uint64, bool) {
	c, ok := t.consts[name]
	if !ok {
		return 0, false
	}
	lit, ok := c.lit.(*ast.Lit)
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}
	return lit.Int, true
}

func (t *ItemTable) ConstType(name string) (Type, bool) {
	c, ok := t.consts[name]
	return c.typ, ok
}

// Scope is a lexically nested variable environment within a single
// function body, extended on every `let` (spec.md's TypeEnv analog,
// simplified: Trident has no generalization, so Scope is a plain
// name -> Type map with a parent link).
type Scope struct {
	parent *Scope
	vars   map[string]varInfo
}

type varInfo struct {
	typ Type
	mut bool
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: map[string]varInfo{}}
}

func (s *Scope) Bind(name string, typ Type, mut bool) {
	s.vars[name] = varInfo{typ: typ, mut: mut}
}

func (s *Scope) Lookup(name string) (Type, bool, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v.typ, v.mut, true
		}
	}
	return nil, false, false
}
