package types

import (
	"fmt"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/target"
	"github.com/tridentlang/trident/internal/token"
)

// Checker runs the five-pass algorithm of spec.md §4.4 over every
// module in topological order: collect items, resolve type
// annotations, resolve constants, check intrinsics, check bodies.
type Checker struct {
	cfg   *target.Config
	items *ItemTable
	errs  errors.List

	// callEdges[caller] = callees, built while checking bodies, consumed
	// by DetectCycles (spec.md §4.4 call-graph acyclicity).
	callEdges map[string][]string
	pureFns   map[string]bool
	ioDirect  map[string]bool

	pendingStructs map[string]*ast.StructDecl
	pendingEvents  map[string]*ast.EventDecl
}

// ModuleInput pairs a parsed file with its canonical identity, the
// shape internal/module.Module already has; kept separate here so
// internal/types does not import internal/module (avoiding an import
// cycle, since module identities are resolved before type checking).
type ModuleInput struct {
	Identity string
	File     *ast.File
}

// Program is the checker's output: the resolved item table plus the
// ordered, flattened list of function definitions ready for TIR
// emission (non-generic ones) or monomorphization (generic ones).
type Program struct {
	Items *ItemTable
	Fns   []*ast.FnDef
}

// Check runs all five passes over modules in the given topological
// order (spec.md §5: "Module processing order is the unique
// topological order of the DAG").
func Check(modules []ModuleInput, cfg *target.Config) (*Program, errors.List) {
	c := &Checker{
		cfg:       cfg,
		items:     NewItemTable(),
		callEdges: map[string][]string{},
		pureFns:   map[string]bool{},

		pendingStructs: map[string]*ast.StructDecl{},
		pendingEvents:  map[string]*ast.EventDecl{},
	}

	// Pass 1: collect items by name, rejecting duplicates.
	for _, m := range modules {
		c.collectItems(m)
	}
	if c.errs.HasErrors() {
		return nil, c.errs
	}

	// Pass 2: resolve struct/event field types (computes widths lazily
	// via Width(), called by pass 5 and by internal/tirbuild).
	c.resolveStructsAndEvents()
	if c.errs.HasErrors() {
		return nil, c.errs
	}

	// Pass 3: resolve const expressions.
	c.resolveConsts()
	if c.errs.HasErrors() {
		return nil, c.errs
	}

	// Pass 4: check intrinsic attributes are confined to std/ext modules.
	for _, m := range modules {
		c.checkIntrinsics(m)
	}

	// Pass 5: check function bodies.
	var fns []*ast.FnDef
	for _, m := range modules {
		for _, item := range m.File.Items {
			if fn, ok := item.(*ast.FnDef); ok {
				fns = append(fns, fn)
				c.checkFnBody(m, fn)
			}
		}
	}
	if c.errs.HasErrors() {
		return nil, c.errs
	}

	c.checkPurityTransitive()
	if c.errs.HasErrors() {
		return nil, c.errs
	}

	if cycle := DetectCycles(c.callEdges); cycle != nil {
		c.errs = append(c.errs, errors.New(errors.TYP007, errors.PhaseType,
			"recursive call cycle detected: "+formatCycle(cycle), errors.ZeroSpan()))
		return nil, c.errs
	}

	return &Program{Items: c.items, Fns: fns}, c.errs
}

func formatCycle(cycle []string) string {
	s := ""
	for i, n := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return s
}

func (c *Checker) collectItems(m ModuleInput) {
	for _, item := range m.File.Items {
		switch x := item.(type) {
		case *ast.ConstDecl:
			if _, exists := c.items.consts[x.Name]; exists {
				c.dup(x.Name, x.Span())
				continue
			}
			typ, err := ResolveASTType(x.Type, c.items, c.cfg)
			if err != nil {
				c.errorAt(errors.TYP001, x.Span(), err.Error())
				continue
			}
			c.items.consts[x.Name] = constEntry{typ: typ, lit: x.Value}
			c.items.pub[x.Name] = x.Pub
		case *ast.StructDecl:
			if _, exists := c.items.structs[x.Name]; exists {
				c.dup(x.Name, x.Span())
				continue
			}
			// placeholder; fields resolved in pass 2 once all structs exist
			c.items.structs[x.Name] = TStruct{Path: x.Name}
			c.pendingStructs[x.Name] = x
			c.items.pub[x.Name] = x.Pub
		case *ast.EventDecl:
			if _, exists := c.items.events[x.Name]; exists {
				c.dup(x.Name, x.Span())
				continue
			}
			c.items.events[x.Name] = EventInfo{Name: x.Name}
			c.pendingEvents[x.Name] = x
			c.items.pub[x.Name] = x.Pub
		case *ast.FnDef:
			if _, exists := c.items.fns[x.Name]; exists {
				c.dup(x.Name, x.Span())
				continue
			}
			c.items.fns[x.Name] = x
			c.items.fnOwner[x.Name] = m.Identity
			c.items.pub[x.Name] = x.Pub
			c.pureFns[x.Name] = x.HasAttr("pure")
		}
	}
}

func (c *Checker) dup(name string, span token.Span) {
	c.errorAt(errors.TYP009, span, fmt.Sprintf("duplicate item declaration %q", name))
}

func (c *Checker) errorAt(code string, span token.Span, msg string) {
	c.errs = append(c.errs, errors.New(code, errors.PhaseType, msg, span))
}

func (c *Checker) resolveStructsAndEvents() {
	for name, orig := range c.pendingStructs {
		fields := make([]StructField, 0, len(orig.Fields))
		for _, f := range orig.Fields {
			typ, err := ResolveASTType(f.Type, c.items, c.cfg)
			if err != nil {
				c.errs = append(c.errs, errors.New(errors.TYP001, errors.PhaseType,
					fmt.Sprintf("struct %s field %s: %v", name, f.Name, err), orig.Span()))
				continue
			}
			fields = append(fields, StructField{Name: f.Name, Type: typ})
		}
		c.items.structs[name] = TStruct{Path: name, Fields: fields}
	}
	for name, orig := range c.pendingEvents {
		fields := make([]StructField, 0, len(orig.Fields))
		for _, f := range orig.Fields {
			typ, err := ResolveASTType(f.Type, c.items, c.cfg)
			if err != nil {
				c.errs = append(c.errs, errors.New(errors.EVT004, errors.PhaseEvent,
					fmt.Sprintf("event %s field %s: %v", name, f.Name, err), orig.Span()))
				continue
			}
			if _, isField := typ.(TField); !isField {
				c.errs = append(c.errs, errors.New(errors.EVT003, errors.PhaseEvent,
					fmt.Sprintf("event %s field %s must be Field, got %s", name, f.Name, typ), orig.Span()))
				continue
			}
			fields = append(fields, StructField{Name: f.Name, Type: typ})
		}
		if len(fields) > c.cfg.Hash.Rate*8 {
			c.errs = append(c.errs, errors.New(errors.EVT002, errors.PhaseEvent,
				fmt.Sprintf("event %s declares too many fields (%d)", name, len(fields)), orig.Span()))
		}
		c.items.events[name] = EventInfo{Name: name, Fields: fields}
	}
}

func (c *Checker) resolveConsts() {
	for name, entry := range c.items.consts {
		if err := c.checkConstExpr(entry.lit, entry.typ); err != nil {
			c.errs = append(c.errs, errors.New(errors.TYP001, errors.PhaseType,
				fmt.Sprintf("const %s: %v", name, err), entry.lit.Span()))
		}
	}
}

func (c *Checker) checkConstExpr(e ast.Expr, want Type) error {
	ctx := &fnCtx{name: "<const>", pure: true, ret: want}
	got, err := c.checkExpr(NewScope(nil), ctx, e)
	if err != nil {
		return err
	}
	if !Equal(got, want) {
		return fmt.Errorf("expected %s, got %s", want, got)
	}
	return nil
}

func (c *Checker) checkIntrinsics(m ModuleInput) {
	isStdOrExt := len(m.Identity) >= 4 && (m.Identity[:4] == "std." || containsExt(m.Identity))
	for _, item := range m.File.Items {
		fn, ok := item.(*ast.FnDef)
		if !ok {
			continue
		}
		if fn.HasAttr("intrinsic") && !isStdOrExt {
			c.errs = append(c.errs, errors.New(errors.ANN002, errors.PhaseAnnot,
				fmt.Sprintf("#[intrinsic] is only allowed in std/ext modules, found in %s.%s", m.Identity, fn.Name), fn.Span()))
		}
	}
}

func containsExt(identity string) bool {
	for i := 0; i+4 <= len(identity); i++ {
		if identity[i:i+4] == ".ext" {
			return true
		}
	}
	return false
}
