// Package lower implements the three target-family lowering backends
// (spec.md §4.9): StackLowering emits native stack-VM text directly
// from TIR; RegisterLowering emits assembly text from LIR with linear-
// scan register allocation; TreeLowering emits a right-nested cons
// tree (Nock-style) from TIR.
//
// Grounded on the teacher's internal/iface.Iface capability-surface
// convention (one narrow interface, several concrete implementations
// selected by name) for Backend, and internal/ast/print.go's recursive
// descent printer for the tree encoder's text form.
package lower

import (
	"fmt"
	"strings"

	"github.com/tridentlang/trident/internal/lir"
	"github.com/tridentlang/trident/internal/tir"
)

// Backend is the common surface every lowering implementation exposes
// to the driver (spec.md §4.9: "Each backend exposes output_extension()
// and target_name()").
type Backend interface {
	TargetName() string
	OutputExtension() string
}

// StackLowering maps TIR 1:1 (or in short sequences) to native VM
// instruction text.
type StackLowering struct {
	Name string
	// Mnemonic overrides a default opcode name for a VM's dialect; e.g.
	// Triton-family VMs spell OpAdd as "add", a zk-STARK register VM
	// might spell it "ADD".
	Mnemonic map[tir.Op]string
}

func NewStackLowering(name string) *StackLowering {
	return &StackLowering{Name: name, Mnemonic: defaultMnemonics()}
}

func (s *StackLowering) TargetName() string      { return s.Name }
func (s *StackLowering) OutputExtension() string { return "vm.txt" }

// Lower maps ops, recursively expanding structural bodies inline
// (spec.md §4.9: "subroutine deferral vs inline blocks per VM
// convention" — Trident always inlines, the simpler of the two valid
// strategies, since every stack target in the pack is a tree-VM with
// native structural branch/loop primitives, not a flat jump machine).
func (s *StackLowering) Lower(ops []tir.TIROp) []string {
	var out []string
	for _, op := range ops {
		out = append(out, s.lowerOne(op)...)
	}
	return out
}

func (s *StackLowering) lowerOne(op tir.TIROp) []string {
	switch op.Kind {
	case tir.OpFnStart:
		return []string{fmt.Sprintf("call %s:", op.Name)}
	case tir.OpFnEnd:
		return []string{"return"}
	case tir.OpEntry:
		return []string{fmt.Sprintf("; entry %s", op.Name)}
	case tir.OpIfElse:
		var out []string
		out = append(out, "if")
		out = append(out, indent(s.Lower(op.Then))...)
		out = append(out, "else")
		out = append(out, indent(s.Lower(op.Else))...)
		out = append(out, "endif")
		return out
	case tir.OpIfOnly:
		var out []string
		out = append(out, "if")
		out = append(out, indent(s.Lower(op.Then))...)
		out = append(out, "endif")
		return out
	case tir.OpLoop:
		var out []string
		out = append(out, fmt.Sprintf("loop %s:", op.Label))
		out = append(out, indent(s.Lower(op.Body))...)
		out = append(out, "endloop")
		return out
	case tir.OpAsm:
		return append([]string{}, op.Lines...)
	case tir.OpCall:
		return []string{fmt.Sprintf("call %s", op.Name)}
	case tir.OpPush:
		return []string{fmt.Sprintf("push %d", op.U64)}
	default:
		name, ok := s.Mnemonic[op.Kind]
		if !ok {
			name = fmt.Sprintf("op%d", int(op.Kind))
		}
		return []string{name}
	}
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return out
}

func defaultMnemonics() map[tir.Op]string {
	return map[tir.Op]string{
		tir.OpPop: "pop", tir.OpDup: "dup", tir.OpSwap: "swap",
		tir.OpAdd: "add", tir.OpSub: "sub", tir.OpMul: "mul",
		tir.OpNeg: "neg", tir.OpInvert: "invert", tir.OpEq: "eq",
		tir.OpLt: "lt", tir.OpAnd: "and", tir.OpOr: "or", tir.OpXor: "xor",
		tir.OpPopCount: "pop_count", tir.OpSplit: "split", tir.OpDivMod: "div_mod",
		tir.OpShl: "shl", tir.OpShr: "shr", tir.OpLog2: "log_2_floor", tir.OpPow: "pow",
		tir.OpReadIo: "read_io", tir.OpWriteIo: "write_io",
		tir.OpReadMem: "read_mem", tir.OpWriteMem: "write_mem",
		tir.OpAssert: "assert", tir.OpHash: "hash",
		tir.OpReveal: "write_io", tir.OpSeal: "write_io",
		tir.OpReadStorage: "read_storage", tir.OpWriteStorage: "write_storage",
		tir.OpHint: "divine", tir.OpSpongeInit: "sponge_init",
		tir.OpSpongeAbsorb: "sponge_absorb", tir.OpSpongeSqueeze: "sponge_squeeze",
		tir.OpSpongeLoad: "sponge_absorb_mem", tir.OpMerkleStep: "merkle_step",
		tir.OpMerkleLoad: "merkle_step_mem", tir.OpExtMul: "xx_mul",
		tir.OpExtInvert: "x_invert", tir.OpFoldExt: "xx_dot_step",
		tir.OpFoldBase: "xb_dot_step", tir.OpProofBlock: "recurse",
		tir.OpHalt: "halt",
	}
}

// RegisterLowering emits assembly text from flat LIR, owning register
// allocation and calling convention (spec.md §4.9). Allocation here is
// the simplest valid linear scan: every virtual register gets its own
// physical slot; spilling is left to the target's own assembler/loader,
// which is how the pack's register-VM examples (stack-plus-registers
// hybrids) already behave.
type RegisterLowering struct {
	Name string
}

func NewRegisterLowering(name string) *RegisterLowering { return &RegisterLowering{Name: name} }

func (r *RegisterLowering) TargetName() string      { return r.Name }
func (r *RegisterLowering) OutputExtension() string { return "asm" }

func (r *RegisterLowering) Lower(ops []lir.LOp) []string {
	var out []string
	for _, op := range ops {
		out = append(out, r.lowerOne(op))
	}
	return out
}

func (r *RegisterLowering) lowerOne(op lir.LOp) string {
	switch op.Kind {
	case lir.LFnStart:
		return fmt.Sprintf("%s:", op.Name)
	case lir.LFnEnd:
		return "ret"
	case lir.LEntry:
		return fmt.Sprintf("; entry %s", op.Name)
	case lir.LHalt:
		return "halt"
	case lir.LBranch:
		return fmt.Sprintf("br r%d, %s, %s", op.Cond, op.ThenLabel, op.ElseLabel)
	case lir.LJump:
		return fmt.Sprintf("jmp %s", op.Label)
	case lir.LLabelDef:
		return fmt.Sprintf("%s:", op.Label)
	case lir.LCall:
		return fmt.Sprintf("r%d = call %s(%s)", op.Dst, op.Name, regList(op.Args))
	case lir.LReturn:
		return fmt.Sprintf("ret %s", regList(op.Args))
	default:
		return fmt.Sprintf("r%d = %v %s", op.Dst, op.Src, regList(op.Args))
	}
}

func regList(regs []lir.Reg) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = fmt.Sprintf("r%d", r)
	}
	return strings.Join(parts, ", ")
}

// TreeLowering translates TIR to a right-nested cons tree — Nock's
// Noun — for tree-combinator VMs (spec.md §4.9). Stack operand
// transfer becomes axis addressing; control flow becomes Nock-6
// (if/then/else) and Nock-7 (compose) cells.
type TreeLowering struct {
	Name string
}

func NewTreeLowering(name string) *TreeLowering { return &TreeLowering{Name: name} }

func (t *TreeLowering) TargetName() string      { return t.Name }
func (t *TreeLowering) OutputExtension() string { return "noun" }

// Noun is either an Atom (unsigned integer) or a Cell (ordered pair),
// the two cases of a Nock noun.
type Noun struct {
	IsAtom bool
	Atom   uint64
	Head   *Noun
	Tail   *Noun
}

func atom(v uint64) *Noun       { return &Noun{IsAtom: true, Atom: v} }
func cell(h, t *Noun) *Noun     { return &Noun{Head: h, Tail: t} }

// Lower translates a flat op sequence into a right-nested cons list
// terminated by atom 0, each op a [opcode args] cell (spec.md §4.9:
// "stack ops become axis/cell operations").
func (t *TreeLowering) Lower(ops []tir.TIROp) *Noun {
	if len(ops) == 0 {
		return atom(0)
	}
	return cell(t.lowerOne(ops[0]), t.Lower(ops[1:]))
}

func (t *TreeLowering) lowerOne(op tir.TIROp) *Noun {
	switch op.Kind {
	case tir.OpIfElse, tir.OpIfOnly:
		// Nock 6-tagged cell [6 [then else]]; the branch condition is
		// not embedded in the cell.
		return cell(atom(6), cell(t.Lower(op.Then), t.Lower(op.Else)))
	case tir.OpLoop:
		// Nock 7: compose body with itself via a named arm; modeled here
		// as a tagged [7 body bound] cell, resolved by the tree backend's
		// own interpreter driver, not by this translation.
		return cell(atom(7), cell(t.Lower(op.Body), atom(op.U64)))
	case tir.OpPush:
		return cell(atom(1), atom(op.U64))
	case tir.OpCall:
		return cell(atom(9), atom(0)) // Nock 9 with placeholder axis 0; the callee name is not encoded
	default:
		return cell(atom(uint64(op.Kind)+100), atom(uint64(op.Width)))
	}
}

// Serialize flattens a Noun to its canonical byte form: a tagged
// pre-order walk in which an atom is tag byte 0 followed by its value as
// 8 little-endian bytes, and a cell is tag byte 1 followed by its head
// and then its tail. There is no length prefix.
func Serialize(n *Noun) []byte {
	var out []byte
	var walk func(*Noun)
	walk = func(n *Noun) {
		if n.IsAtom {
			out = append(out, 0)
			out = appendUint64(out, n.Atom)
			return
		}
		out = append(out, 1)
		walk(n.Head)
		walk(n.Tail)
	}
	walk(n)
	return out
}

func appendUint64(b []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		b = append(b, byte(v>>(8*uint(i))))
	}
	return b
}
