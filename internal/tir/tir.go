// Package tir defines the 54-operation target-independent
// intermediate representation every Trident program is lowered to
// before a target-specific backend takes over (spec.md §3 TIROp, §4.7
// TIR Builder).
package tir

import "github.com/tridentlang/trident/internal/target"

// Tier stratifies TIROps by the minimum target capability they
// require (spec.md §3: "IR tier — a stratification {0,1,2,3}").
type Tier = target.Tier

// Op identifies one of the 54 TIROp variants.
type Op int

const (
	// Tier 0: structure (11 ops).
	OpCall Op = iota
	OpReturn
	OpHalt
	OpIfElse
	OpIfOnly
	OpLoop
	OpFnStart
	OpFnEnd
	OpEntry
	OpComment
	OpAsm

	// Tier 1: universal (31 ops).
	OpPush
	OpPop
	OpDup
	OpSwap
	OpAdd
	OpSub
	OpMul
	OpNeg
	OpInvert
	OpEq
	OpLt
	OpAnd
	OpOr
	OpXor
	OpPopCount
	OpSplit
	OpDivMod
	OpShl
	OpShr
	OpLog2
	OpPow
	OpReadIo
	OpWriteIo
	OpReadMem
	OpWriteMem
	OpAssert
	OpHash
	OpReveal
	OpSeal
	OpReadStorage
	OpWriteStorage

	// Tier 2: provable (7 ops).
	OpHint
	OpSpongeInit
	OpSpongeAbsorb
	OpSpongeSqueeze
	OpSpongeLoad
	OpMerkleStep
	OpMerkleLoad

	// Tier 3: recursion (5 ops).
	OpExtMul
	OpExtInvert
	OpFoldExt
	OpFoldBase
	OpProofBlock
)

// TierOf returns the IR tier of op (spec.md §3 four tier groups).
func TierOf(op Op) Tier {
	switch {
	case op <= OpAsm:
		return target.Tier0
	case op <= OpWriteStorage:
		return target.Tier1
	case op <= OpMerkleLoad:
		return target.Tier2
	default:
		return target.Tier3
	}
}

// TIROp is one instruction in the flat, structurally-nested TIR
// stream. Exactly one of the typed payload fields is meaningful per
// Kind; structural ops (IfElse, IfOnly, Loop, ProofBlock) own their
// bodies exclusively (spec.md §3: "a flat ordered sequence of ops owns
// its inner Vec<TIROp> bodies").
type TIROp struct {
	Kind Op

	// Tier 0 payloads.
	Name      string // Call/FnStart/Entry target or label
	Then, Else []TIROp
	Body      []TIROp // Loop/ProofBlock body
	Label     string  // Loop label
	Text      string  // Comment text / Asm lines joined
	Lines     []string
	Effect    int // Asm stack-height contract

	// Tier 1 payloads.
	U64   uint64 // Push immediate
	Width uint32 // Pop/Dup/Swap/ReadIo/WriteIo/.../Hash width
	Tag   string // Reveal/Seal event tag
	FCount uint32

	// Tier 3 payload.
	ProgramHash string
}

// Program is an emitted, flattened sequence of top-level TIROps: a
// concatenation of FnStart/.../FnEnd bodies plus the Entry marker
// (spec.md §4.11, consumed by internal/link).
type Program struct {
	Ops []TIROp
}

// MaxTier returns the highest tier used by any op in ops, recursing
// into structural bodies (spec.md §3: "Program tier = max tier of any
// op used").
func MaxTier(ops []TIROp) Tier {
	max := target.Tier0
	var walk func([]TIROp)
	walk = func(os []TIROp) {
		for _, op := range os {
			if t := TierOf(op.Kind); t > max {
				max = t
			}
			walk(op.Then)
			walk(op.Else)
			walk(op.Body)
		}
	}
	walk(ops)
	return max
}
