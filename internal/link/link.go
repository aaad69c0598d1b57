// Package link concatenates the emitted function bodies of a compiled
// program into one output stream, resolves Call labels against the
// set of emitted functions, and wraps the stream with an Entry marker
// and a trailing Halt (spec.md §4.11). No attestation ops are emitted.
//
// Grounded on the teacher's internal/link/linker.go (resolve references
// against a registry, report unresolved ones) and internal/link/topo.go
// (the same DFS topo-sort internal/module reuses for its own DAG).
package link

import (
	"fmt"
	"sort"

	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/tir"
)

// Unit is one function's emitted body, keyed by its (possibly
// monomorphized) symbol.
type Unit struct {
	Symbol string
	Ops    []tir.TIROp
}

// Linker concatenates units into a single flat TIR stream in a
// deterministic order and checks every Call target resolves.
type Linker struct {
	units map[string]*Unit
	order []string
}

func New() *Linker { return &Linker{units: map[string]*Unit{}} }

// Add registers a function body. Re-adding the same symbol is a no-op
// (spec.md §4.7: "shared functions are emitted once").
func (l *Linker) Add(u Unit) {
	if _, ok := l.units[u.Symbol]; ok {
		return
	}
	l.units[u.Symbol] = &u
	l.order = append(l.order, u.Symbol)
}

// Link concatenates the entry unit followed by every other unit sorted
// by symbol, and verifies every Call resolves to a registered
// symbol (spec.md §4.11).
func (l *Linker) Link(entrySymbol string) ([]tir.TIROp, errors.List) {
	var errs errors.List
	var out []tir.TIROp

	if entry, ok := l.units[entrySymbol]; ok {
		out = append(out, entry.Ops...)
	} else {
		errs = append(errs, errors.New(errors.LNK001, errors.PhaseLink,
			fmt.Sprintf("entry function %q was never emitted", entrySymbol), errors.ZeroSpan()))
	}

	rest := make([]string, 0, len(l.order))
	for _, sym := range l.order {
		if sym != entrySymbol {
			rest = append(rest, sym)
		}
	}
	sort.Strings(rest) // deterministic link order beyond the entry unit
	for _, sym := range rest {
		out = append(out, l.units[sym].Ops...)
	}

	for _, missing := range l.unresolvedCalls(out) {
		errs = append(errs, errors.New(errors.LNK002, errors.PhaseLink,
			fmt.Sprintf("call to undefined function %q", missing), errors.ZeroSpan()))
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return out, errs
}

func (l *Linker) unresolvedCalls(ops []tir.TIROp) []string {
	seen := map[string]bool{}
	var missing []string
	var walk func([]tir.TIROp)
	walk = func(os []tir.TIROp) {
		for _, op := range os {
			if op.Kind == tir.OpCall {
				if _, ok := l.units[op.Name]; !ok && !seen[op.Name] {
					seen[op.Name] = true
					missing = append(missing, op.Name)
				}
			}
			walk(op.Then)
			walk(op.Else)
			walk(op.Body)
		}
	}
	walk(ops)
	sort.Strings(missing)
	return missing
}

// Assemble wraps the linked body with the Entry marker and a trailing
// Halt, the program prelude/epilogue of spec.md §4.11.
func Assemble(entrySymbol string, body []tir.TIROp) []tir.TIROp {
	out := make([]tir.TIROp, 0, len(body)+2)
	out = append(out, tir.TIROp{Kind: tir.OpEntry, Name: entrySymbol})
	out = append(out, body...)
	out = append(out, tir.TIROp{Kind: tir.OpHalt})
	return out
}
