// Package errors provides Trident's structured, phase-categorized
// diagnostic type. Every compiler phase reports failures as a *Report
// rather than a bare error string (spec.md §7).
package errors

// Phase names used in Report.Phase.
const (
	PhaseLexer    = "lexer"
	PhaseParser   = "parser"
	PhaseModule   = "module"
	PhaseTarget   = "target"
	PhaseType     = "type"
	PhaseBuiltin  = "builtin"
	PhaseAnnot    = "annotation"
	PhaseEvent    = "event"
	PhaseAsm      = "asm"
	PhaseGeneric  = "size_generic"
	PhaseControl  = "control_flow"
	PhaseLink     = "link"
	PhaseManifest = "manifest"
	PhaseInternal = "internal"
)

// Error code taxonomy, grouped by phase (spec.md §7).
const (
	// Lexer (LEX###)
	LEX001 = "LEX001" // unexpected character
	LEX002 = "LEX002" // excluded operator
	LEX003 = "LEX003" // integer literal overflow
	LEX004 = "LEX004" // non-ASCII byte
	LEX005 = "LEX005" // unterminated asm block

	// Parser (PAR###)
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter
	PAR003 = "PAR003" // nesting depth exceeded
	PAR004 = "PAR004" // forbidden construct (closures/traits/impls/macros/while/loop)
	PAR005 = "PAR005" // else-if not allowed
	PAR006 = "PAR006" // method-call syntax not allowed
	PAR007 = "PAR007" // wildcard import not allowed
	PAR008 = "PAR008" // match arm after wildcard

	// Module (MOD###)
	MOD001 = "MOD001" // module not found
	MOD002 = "MOD002" // import cycle
	MOD003 = "MOD003" // self-import
	MOD004 = "MOD004" // duplicate item across module
	MOD005 = "MOD005" // wrong item kind (e.g. fn main in library module)
	MOD006 = "MOD006" // multiple program roots

	// Target (TGT###)
	TGT001 = "TGT001" // unknown target
	TGT002 = "TGT002" // tier ceiling exceeded
	TGT003 = "TGT003" // unsupported builtin on target
	TGT004 = "TGT004" // cross-target ext import
	TGT005 = "TGT005" // malformed target config

	// Type (TYP###)
	TYP001 = "TYP001" // type mismatch
	TYP002 = "TYP002" // undefined identifier
	TYP003 = "TYP003" // arity mismatch
	TYP004 = "TYP004" // visibility violation
	TYP005 = "TYP005" // implicit conversion rejected
	TYP006 = "TYP006" // non-exhaustive match
	TYP007 = "TYP007" // recursive call cycle
	TYP008 = "TYP008" // dead code after halt/return/assert(false)
	TYP009 = "TYP009" // duplicate item declaration
	TYP010 = "TYP010" // non-constant loop bound missing `bounded N`

	// Builtin (BLT###)
	BLT001 = "BLT001" // wrong argument count
	BLT002 = "BLT002" // wrong argument type

	// Annotation (ANN###)
	ANN001 = "ANN001" // #[pure] function uses I/O
	ANN002 = "ANN002" // #[intrinsic] outside std/ext
	ANN003 = "ANN003" // unknown attribute

	// Event (EVT###)
	EVT001 = "EVT001" // undefined event
	EVT002 = "EVT002" // too many fields
	EVT003 = "EVT003" // non-Field event field
	EVT004 = "EVT004" // field type mismatch

	// Asm (ASM###)
	ASM001 = "ASM001" // effect mismatch
	ASM002 = "ASM002" // asm inside #[pure] function

	// Size generic (GEN###)
	GEN001 = "GEN001" // size inference failure
	GEN002 = "GEN002" // non-concrete size
	GEN003 = "GEN003" // zero size

	// Control flow / structural (CTL###)
	CTL001 = "CTL001" // unbalanced if/else stack height
	CTL002 = "CTL002" // unbalanced loop stack height

	// Link (LNK###)
	LNK001 = "LNK001" // unresolved call target
	LNK002 = "LNK002" // duplicate function label
	LNK003 = "LNK003" // missing entry/program root

	// Manifest (MAN###)
	MAN001 = "MAN001" // malformed trident.toml
	MAN002 = "MAN002" // missing required manifest field
	MAN003 = "MAN003" // invalid dependency declaration

	// Internal (INT###)
	INT001 = "INT001" // internal compiler error (bug)
)
