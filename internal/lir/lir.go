// Package lir flattens structural TIR into a register-target LIR: a
// flat stream of virtual-register instructions with explicit labels
// and branches, replacing nested IfElse/Loop bodies (spec.md §4.8).
//
// Grounded on the teacher's internal/link/linker.go flatten-and-resolve
// style (walk a tree, emit a flat resolved form), the same pattern
// internal/lir's sibling internal/module/module.go topo-sorts modules
// with.
package lir

import (
	"fmt"

	"github.com/tridentlang/trident/internal/tir"
)

// Reg is a virtual register identifier, assigned densely per function
// in the order stack slots are first produced.
type Reg int

// LOp is a single flat LIR instruction.
type LOp struct {
	Kind LKind

	// Branch/Jump/LabelDef
	Label     string
	ThenLabel string
	ElseLabel string
	Cond      Reg

	// ALU/Call/immediate payloads, mirroring the source TIROp.
	Src    tir.Op
	Dst    Reg
	Args   []Reg
	U64    uint64
	Name   string
	Width  uint32
	Tag    string
	FCount uint32
	Lines  []string
	Effect int
}

type LKind int

const (
	LBranch LKind = iota
	LJump
	LLabelDef
	LCall
	LReturn
	LHalt
	LFnStart
	LFnEnd
	LEntry
	LAlu // every non-structural, non-call TIROp: Add, Eq, Push, ReadIo, etc.
)

// Converter flattens one function's TIR body at a time, allocating
// fresh virtual registers for every value TIR would have kept on the
// operand stack.
type Converter struct {
	next    int
	valReg  []Reg // simulated value stack: which register holds each live value
	loopNum int
}

func NewConverter() *Converter { return &Converter{} }

func (c *Converter) fresh() Reg {
	r := Reg(c.next)
	c.next++
	return r
}

func (c *Converter) push(r Reg) { c.valReg = append(c.valReg, r) }

func (c *Converter) pop() Reg {
	if len(c.valReg) == 0 {
		return c.fresh()
	}
	r := c.valReg[len(c.valReg)-1]
	c.valReg = c.valReg[:len(c.valReg)-1]
	return r
}

// Convert flattens a TIR function body (already bracketed by
// FnStart/FnEnd) into flat LOps.
func (c *Converter) Convert(ops []tir.TIROp) []LOp {
	var out []LOp
	for _, op := range ops {
		out = append(out, c.convertOne(op)...)
	}
	return out
}

func (c *Converter) convertOne(op tir.TIROp) []LOp {
	switch op.Kind {
	case tir.OpFnStart:
		return []LOp{{Kind: LFnStart, Name: op.Name}}
	case tir.OpFnEnd:
		return []LOp{{Kind: LFnEnd}}
	case tir.OpEntry:
		return []LOp{{Kind: LEntry, Name: op.Name}}
	case tir.OpHalt:
		return []LOp{{Kind: LHalt}}
	case tir.OpCall:
		nArgs := 1
		args := make([]Reg, nArgs)
		for i := range args {
			args[i] = c.pop()
		}
		dst := c.fresh()
		c.push(dst)
		return []LOp{{Kind: LCall, Name: op.Name, Args: args, Dst: dst}}
	case tir.OpReturn:
		r := c.pop()
		return []LOp{{Kind: LReturn, Args: []Reg{r}}}

	case tir.OpIfElse, tir.OpIfOnly:
		cond := c.pop()
		thenLbl := c.label("then")
		elseLbl := c.label("else")
		endLbl := c.label("end")
		var out []LOp
		out = append(out, LOp{Kind: LBranch, Cond: cond, ThenLabel: thenLbl, ElseLabel: elseLbl})
		out = append(out, LOp{Kind: LLabelDef, Label: thenLbl})
		out = append(out, c.Convert(op.Then)...)
		out = append(out, LOp{Kind: LJump, Label: endLbl})
		out = append(out, LOp{Kind: LLabelDef, Label: elseLbl})
		out = append(out, c.Convert(op.Else)...)
		out = append(out, LOp{Kind: LLabelDef, Label: endLbl})
		return out

	case tir.OpLoop:
		head := c.label("loop_head")
		var out []LOp
		counter := c.fresh()
		out = append(out, LOp{Kind: LAlu, Src: tir.OpPush, Dst: counter, U64: 0})
		out = append(out, LOp{Kind: LLabelDef, Label: head})
		out = append(out, c.Convert(op.Body)...)
		out = append(out, LOp{
			Kind: LBranch, Cond: counter,
			ThenLabel: head, ElseLabel: c.label("loop_exit"),
			U64: op.U64, // iteration bound; internal/cost's EstimateLIR does not read it
		})
		return out

	case tir.OpAsm:
		return []LOp{{Kind: LAlu, Src: tir.OpAsm, Lines: op.Lines, Effect: op.Effect}}

	default:
		return []LOp{c.aluOp(op)}
	}
}

// aluOp converts a single non-structural TIROp to an LOp, popping its
// operand registers and pushing a destination register when the op
// produces a value (spec.md §4.8: "stack slots become fresh virtual
// registers").
func (c *Converter) aluOp(op tir.TIROp) LOp {
	arity := operandCount(op.Kind)
	args := make([]Reg, arity)
	for i := arity - 1; i >= 0; i-- {
		args[i] = c.pop()
	}
	l := LOp{Kind: LAlu, Src: op.Kind, Args: args, U64: op.U64, Width: op.Width, Tag: op.Tag, FCount: op.FCount}
	if producesValue(op.Kind) {
		l.Dst = c.fresh()
		c.push(l.Dst)
	}
	return l
}

func (c *Converter) label(prefix string) string {
	c.loopNum++
	return fmt.Sprintf("%s_%d", prefix, c.loopNum)
}

// operandCount is the number of stack values op consumes. Push/ReadIo/
// Hint/divine-family ops consume none; binary ALU ops consume two;
// unary ops consume one; Assert consumes one (Bool) but is modeled as
// zero-result.
func operandCount(op tir.Op) int {
	switch op {
	case tir.OpPush, tir.OpReadIo, tir.OpHint, tir.OpSpongeInit, tir.OpSpongeSqueeze,
		tir.OpReadMem, tir.OpComment:
		return 0
	case tir.OpPop, tir.OpNeg, tir.OpInvert, tir.OpPopCount, tir.OpSplit, tir.OpLog2,
		tir.OpAssert, tir.OpWriteIo, tir.OpHash, tir.OpSpongeAbsorb, tir.OpReadStorage,
		tir.OpExtInvert, tir.OpWriteMem:
		return 1
	case tir.OpDivMod, tir.OpWriteStorage, tir.OpMerkleStep:
		return 2
	default:
		return 2
	}
}

// producesValue reports whether op leaves a result on the value stack.
func producesValue(op tir.Op) bool {
	switch op {
	case tir.OpAssert, tir.OpWriteIo, tir.OpWriteStorage, tir.OpWriteMem,
		tir.OpSpongeAbsorb, tir.OpSpongeInit, tir.OpReveal, tir.OpSeal:
		return false
	default:
		return true
	}
}
