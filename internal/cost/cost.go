// Package cost implements the per-target CostModel of spec.md §4.10:
// a multi-table padded-height profile for stack VMs, a plain cycle
// count for cycle-based VMs, and cycles-plus-memory-accesses for
// register VMs.
//
// Grounded on the retrieval pack's op-code-weight-table convention
// (a named table of per-opcode costs kept separate from the executing
// core), adapted from a runtime execution-trace accounting structure
// to a static, pre-execution cost estimate over TIR/LIR.
package cost

import (
	"github.com/tridentlang/trident/internal/lir"
	"github.com/tridentlang/trident/internal/tir"
)

// Table names a stack-VM profile column (spec.md §4.10).
type Table int

const (
	TableProcessor Table = iota
	TableHash
	TableU32
	TableOpStack
	TableRAM
	TableJumpStack
	numTables
)

func (t Table) String() string {
	return [...]string{"processor", "hash", "u32", "op_stack", "ram", "jump_stack"}[t]
}

// Profile is the multi-table cost accounting for one program or
// sub-tree, plus the program-attestation contribution.
type Profile struct {
	Fields      [numTables]uint64
	Attestation uint64 // program byte length * rate constant
}

func (p Profile) Add(o Profile) Profile {
	var out Profile
	for i := range p.Fields {
		out.Fields[i] = p.Fields[i] + o.Fields[i]
	}
	out.Attestation = p.Attestation + o.Attestation
	return out
}

func (p Profile) Scale(n uint64) Profile {
	var out Profile
	for i := range p.Fields {
		out.Fields[i] = p.Fields[i] * n
	}
	out.Attestation = p.Attestation * n
	return out
}

func maxProfile(a, b Profile) Profile {
	var out Profile
	for i := range a.Fields {
		if a.Fields[i] > b.Fields[i] {
			out.Fields[i] = a.Fields[i]
		} else {
			out.Fields[i] = b.Fields[i]
		}
	}
	if a.Attestation > b.Attestation {
		out.Attestation = a.Attestation
	} else {
		out.Attestation = b.Attestation
	}
	return out
}

// PaddedHeight returns next_power_of_two(max(fields)) (spec.md §4.10).
func PaddedHeight(p Profile) uint64 {
	var max uint64
	for _, f := range p.Fields {
		if f > max {
			max = f
		}
	}
	return nextPow2(max)
}

func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// DominantTable returns the table with the maximum value in p.
func DominantTable(p Profile) Table {
	dom := TableProcessor
	for t := Table(1); t < numTables; t++ {
		if p.Fields[t] > p.Fields[dom] {
			dom = t
		}
	}
	return dom
}

// Model is the per-target cost model contract (spec.md §4.10
// `trait CostModel`).
type Model interface {
	Name() string
}

// StackModel implements the multi-table profile for stack VMs
// (Triton-like targets).
type StackModel struct {
	AttestationRate uint64
	RowCost         map[tir.Op][numTables]uint64
	CallOverhead    Profile
}

func NewStackModel(attestationRate uint64) *StackModel {
	return &StackModel{AttestationRate: attestationRate, RowCost: defaultRowCost()}
}

func (m *StackModel) Name() string { return "stack-multi-table" }

// Estimate walks ops accumulating the aggregation policy of spec.md
// §4.10: IfElse takes the max of both arms (the untaken arm still
// contributes trace rows); Loop scales the body by its bound; Call
// adds only the fixed CallOverhead. The callee's own profile is not
// added at the call site: a callee body present in ops is counted once,
// where its ops appear.
func (m *StackModel) Estimate(ops []tir.TIROp, programBytes uint64) Profile {
	p := m.estimate(ops)
	p.Attestation += programBytes * m.AttestationRate
	return p
}

func (m *StackModel) estimate(ops []tir.TIROp) Profile {
	var total Profile
	for _, op := range ops {
		total = total.Add(m.estimateOne(op))
	}
	return total
}

func (m *StackModel) estimateOne(op tir.TIROp) Profile {
	switch op.Kind {
	case tir.OpIfElse:
		thenP := m.estimate(op.Then)
		elseP := m.estimate(op.Else)
		return maxProfile(thenP, elseP)
	case tir.OpIfOnly:
		return maxProfile(m.estimate(op.Then), Profile{})
	case tir.OpLoop:
		return m.estimate(op.Body).Scale(op.U64)
	case tir.OpCall:
		return m.CallOverhead
	default:
		row, ok := m.RowCost[op.Kind]
		if !ok {
			return Profile{}
		}
		p := Profile{Fields: row}
		if isU32Op(op.Kind) {
			// bitwise/U32 ops contribute worst-case widths (spec.md
			// §4.10): scale the u32 table entry by the declared width.
			w := op.Width
			if w == 0 {
				w = 1
			}
			p.Fields[TableU32] *= uint64(w)
		}
		return p
	}
}

func isU32Op(op tir.Op) bool {
	switch op {
	case tir.OpAnd, tir.OpOr, tir.OpXor, tir.OpShl, tir.OpShr, tir.OpPopCount, tir.OpSplit, tir.OpDivMod, tir.OpLog2:
		return true
	}
	return false
}

func defaultRowCost() map[tir.Op][numTables]uint64 {
	row := func(processor uint64) [numTables]uint64 {
		var f [numTables]uint64
		f[TableProcessor] = processor
		return f
	}
	m := map[tir.Op][numTables]uint64{
		tir.OpPush: row(1), tir.OpPop: row(1), tir.OpDup: row(1), tir.OpSwap: row(1),
		tir.OpAdd: row(1), tir.OpSub: row(1), tir.OpMul: row(1),
		tir.OpNeg: row(1), tir.OpInvert: row(1), tir.OpEq: row(1), tir.OpLt: row(1),
		tir.OpAssert: row(1), tir.OpReturn: row(1), tir.OpHalt: row(1),
		tir.OpReadIo: row(1), tir.OpWriteIo: row(1), tir.OpReadMem: row(1), tir.OpWriteMem: row(1),
		tir.OpReadStorage: row(2), tir.OpWriteStorage: row(2),
	}
	hashRow := row(0)
	hashRow[TableHash] = 1
	m[tir.OpHash] = hashRow
	m[tir.OpSpongeAbsorb] = hashRow
	m[tir.OpSpongeSqueeze] = hashRow
	m[tir.OpSpongeInit] = hashRow
	m[tir.OpMerkleStep] = hashRow
	u32Row := row(1)
	u32Row[TableU32] = 1
	for _, op := range []tir.Op{tir.OpAnd, tir.OpOr, tir.OpXor, tir.OpShl, tir.OpShr, tir.OpPopCount, tir.OpSplit, tir.OpDivMod, tir.OpLog2} {
		m[op] = u32Row
	}
	return m
}

// CycleModel implements the plain cycle-count contract for cycle-based
// VMs (spec.md §4.10).
type CycleModel struct {
	Weight map[tir.Op]uint64
}

func NewCycleModel() *CycleModel {
	return &CycleModel{Weight: defaultCycleWeights()}
}

func (m *CycleModel) Name() string { return "cycle-count" }

func (m *CycleModel) Estimate(ops []tir.TIROp) uint64 {
	var total uint64
	for _, op := range ops {
		switch op.Kind {
		case tir.OpIfElse:
			t, e := m.Estimate(op.Then), m.Estimate(op.Else)
			if e > t {
				t = e
			}
			total += t
		case tir.OpIfOnly:
			total += m.Estimate(op.Then)
		case tir.OpLoop:
			total += m.Estimate(op.Body) * op.U64
		default:
			total += m.Weight[op.Kind]
		}
	}
	return total
}

func defaultCycleWeights() map[tir.Op]uint64 {
	w := map[tir.Op]uint64{}
	for op := tir.OpCall; op <= tir.OpProofBlock; op++ {
		w[op] = 1
	}
	w[tir.OpHash] = 8
	w[tir.OpMerkleStep] = 8
	w[tir.OpExtMul] = 2
	w[tir.OpProofBlock] = 64
	return w
}

// RegisterModel implements cycles-plus-memory-access accounting for
// register VMs (spec.md §4.10).
type RegisterModel struct {
	Cycle  *CycleModel
	MemOps map[tir.Op]bool
}

func NewRegisterModel() *RegisterModel {
	return &RegisterModel{
		Cycle: NewCycleModel(),
		MemOps: map[tir.Op]bool{
			tir.OpReadMem: true, tir.OpWriteMem: true,
			tir.OpReadStorage: true, tir.OpWriteStorage: true,
		},
	}
}

func (m *RegisterModel) Name() string { return "register-cycles-mem" }

// EstimateLIR totals cycles (via the matching TIR opcode of each LOp)
// plus a memory-access count for LOps touching RAM/storage.
func (m *RegisterModel) EstimateLIR(ops []lir.LOp) (cycles, memAccesses uint64) {
	for _, op := range ops {
		switch op.Kind {
		case lir.LAlu:
			cycles += m.Cycle.Weight[op.Src]
			if m.MemOps[op.Src] {
				memAccesses++
			}
		case lir.LCall:
			cycles++
		default:
			cycles++
		}
	}
	return cycles, memAccesses
}
