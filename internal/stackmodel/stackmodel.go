// Package stackmodel implements the virtual operand stack the TIR
// Builder drives for stack-family targets: named values tracked by
// depth, width, and LRU timestamp, with automatic spill/reload to RAM
// when live width exceeds the target's native stack depth (spec.md
// §4.6 Stack Manager).
package stackmodel

import (
	"github.com/tridentlang/trident/internal/tir"
)

type slot struct {
	name     string
	depth    int
	width    int
	ts       int
	spilled  bool
	ramSlot  int
}

// Manager is the Stack Manager of spec.md §4.6: a mapping from
// variable name to (depth, width, last_use_ts) plus the current
// virtual stack height.
type Manager struct {
	depth      int // target native stack depth, S
	live       map[string]*slot
	order      []string // names, index 0 = top of stack
	clock      int
	nextRAM    int
	spillCount int
}

func NewManager(nativeDepth int) *Manager {
	return &Manager{depth: nativeDepth, live: map[string]*slot{}}
}

// Height returns the current virtual stack height (sum of live,
// unspilled widths).
func (m *Manager) Height() int {
	h := 0
	for _, n := range m.order {
		if s := m.live[n]; !s.spilled {
			h += s.width
		}
	}
	return h
}

// Alloc places a freshly computed value at depth 0 (top), shifting
// every other live value's depth by width (spec.md §4.6 alloc). It
// returns any WriteMem ops needed to spill a now-over-budget value to
// RAM.
func (m *Manager) Alloc(name string, width int) []tir.TIROp {
	for _, n := range m.order {
		m.live[n].depth += width
	}
	m.clock++
	s := &slot{name: name, depth: 0, width: width, ts: m.clock}
	m.live[name] = s
	m.order = append([]string{name}, m.order...)
	return m.maybeSpill()
}

// Access brings name to the top of the stack, emitting Swap/Dup and
// ReadMem as needed, and touches its LRU timestamp (spec.md §4.6
// access). Access is never destructive: the value stays addressable
// afterward, and the TIR builder issues an explicit Drop to remove it.
func (m *Manager) Access(name string) []tir.TIROp {
	var ops []tir.TIROp
	s, ok := m.live[name]
	if !ok {
		return ops
	}
	if s.spilled {
		ops = append(ops, tir.TIROp{Kind: tir.OpReadMem, Width: uint32(s.width)})
		s.spilled = false
		for _, n := range m.order {
			if n != name {
				m.live[n].depth += s.width
			}
		}
		s.depth = 0
		m.order = append([]string{name}, removeName(m.order, name)...)
		m.clock++
		s.ts = m.clock
		// Reloading name grew live width back past the native depth it was
		// evicted to make room for; spill whatever is now LRU in its place
		// (name itself, just touched, is never the pick).
		ops = append(ops, m.maybeSpill()...)
		return ops
	} else if s.depth != 0 {
		ops = append(ops, tir.TIROp{Kind: tir.OpDup, Width: uint32(s.depth)})
		// Dup leaves a copy at top; depths of values between old top and
		// s unaffected except the duplicated copy is now tracked at 0.
		s.depth = 0
		m.order = append([]string{name}, removeName(m.order, name)...)
	}
	m.clock++
	s.ts = m.clock
	return ops
}

// Drop removes name from the stack, emitting the Swap-to-top and Pop
// sequence (spec.md §4.6 drop).
func (m *Manager) Drop(name string) []tir.TIROp {
	var ops []tir.TIROp
	s, ok := m.live[name]
	if !ok {
		return ops
	}
	if !s.spilled {
		if s.depth != 0 {
			ops = append(ops, tir.TIROp{Kind: tir.OpSwap, Width: uint32(s.depth)})
		}
		ops = append(ops, tir.TIROp{Kind: tir.OpPop, Width: uint32(s.width)})
		for _, n := range m.order {
			if n != name && m.live[n].depth > s.depth {
				m.live[n].depth -= s.width
			}
		}
	}
	delete(m.live, name)
	m.order = removeName(m.order, name)
	return ops
}

// maybeSpill evicts the least-recently-used live value to RAM whenever
// live width exceeds the native stack depth (spec.md §4.6: "if
// accumulated live-width > S, spill the least-recently-used value via
// WriteMem"), returning the WriteMem op for each value spilled.
func (m *Manager) maybeSpill() []tir.TIROp {
	var ops []tir.TIROp
	for m.Height() > m.depth {
		var lru string
		lruTS := -1
		for _, n := range m.order {
			s := m.live[n]
			if s.spilled {
				continue
			}
			if lruTS == -1 || s.ts < lruTS {
				lruTS = s.ts
				lru = n
			}
		}
		if lru == "" {
			break
		}
		s := m.live[lru]
		s.spilled = true
		s.ramSlot = m.nextRAM
		m.nextRAM += s.width
		m.spillCount++
		ops = append(ops, tir.TIROp{Kind: tir.OpWriteMem, Width: uint32(s.width)})
	}
	return ops
}

func removeName(order []string, name string) []string {
	out := make([]string, 0, len(order))
	for _, n := range order {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// Checkpoint snapshots the manager's full slot state — not just its
// height — for restoring after an if/else arm or loop body (spec.md
// §4.6 checkpoint/restore, and the height-balance invariant of
// spec.md §8 properties 2 and 3).
type Checkpoint struct {
	height int
	order  []string
	live   map[string]slot
}

func (m *Manager) Checkpoint() Checkpoint {
	order := append([]string{}, m.order...)
	live := make(map[string]slot, len(m.live))
	for name, s := range m.live {
		live[name] = *s
	}
	return Checkpoint{height: m.Height(), order: order, live: live}
}

// Restore rewinds the manager to cp, dropping any bindings allocated
// since (e.g. a then-arm's let-bound locals so the else arm, and every
// statement after the if, sees the same slot depths regardless of
// which arm ran). It reports whether the height it rewound to matches
// cp's, the structural invariant every IfElse arm and Loop body must
// uphold (spec.md §3: "every IfElse arm restores the same height;
// every Loop body restores entry height").
func (m *Manager) Restore(cp Checkpoint) bool {
	m.order = append([]string{}, cp.order...)
	m.live = make(map[string]*slot, len(cp.live))
	for name, s := range cp.live {
		sv := s
		m.live[name] = &sv
	}
	return m.Height() == cp.height
}

// SpillCount reports how many values were spilled to RAM over the
// manager's lifetime, used by internal/cost for ram-table attribution.
func (m *Manager) SpillCount() int { return m.spillCount }
