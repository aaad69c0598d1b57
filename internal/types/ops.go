package types

import "github.com/tridentlang/trident/internal/target"

// Sig is a fixed operator or builtin signature (spec.md §4.4: "Operator
// typing is mechanical: each operator carries a fixed signature").
// Arity that depends on target constants is not expressed here; it
// lives in BuiltinSig's ParamWidth/Result functions.
type Sig struct {
	Params []Type
	Result Type
	Tier   target.Tier
}

// opSigs is the closed table of infix operator signatures (spec.md
// §4.4). `as_u32` and other named conversions live in builtinSigs
// since they use call syntax, not operator syntax.
var opSigs = map[string]Sig{
	"+":  {Params: []Type{TField{}, TField{}}, Result: TField{}, Tier: target.Tier1},
	"*":  {Params: []Type{TField{}, TField{}}, Result: TField{}, Tier: target.Tier1},
	"==": {Params: []Type{TField{}, TField{}}, Result: TBool{}, Tier: target.Tier1},
	"<":  {Params: []Type{TU32{}, TU32{}}, Result: TBool{}, Tier: target.Tier1},
	"&":  {Params: []Type{TU32{}, TU32{}}, Result: TU32{}, Tier: target.Tier1},
	"^":  {Params: []Type{TU32{}, TU32{}}, Result: TU32{}, Tier: target.Tier1},
	"/%": {Params: []Type{TU32{}, TU32{}}, Result: TTuple{Elems: []Type{TU32{}, TU32{}}}, Tier: target.Tier1},
	"*.": {Params: []Type{TXField{}, TField{}}, Result: TXField{}, Tier: target.Tier3},
}

// OperatorSig looks up the fixed signature for an infix operator,
// instantiating Field-typed operators (`+`, `*`, `==`) at XField when
// both operands check as XField, since those three operators are
// overloaded across the base/extension field per spec.md's Tier-3
// extension arithmetic (ExtMul/FoldExt/FoldBase).
func OperatorSig(op string, leftIsXField bool) (Sig, bool) {
	sig, ok := opSigs[op]
	if !ok {
		return Sig{}, false
	}
	if leftIsXField && (op == "+" || op == "*" || op == "==") {
		sig.Params = []Type{TXField{}, TXField{}}
		if op != "==" {
			sig.Result = TXField{}
		}
		sig.Tier = target.Tier3
	}
	return sig, true
}

// BuiltinSig describes a closed-list builtin's signature, possibly
// parameterized by target constants R (hash rate) or D (digest width).
type BuiltinSig struct {
	Name       string
	ParamWidth func(cfg *target.Config) []Type // resolved parameter types
	Result     func(cfg *target.Config) Type
	Tier       target.Tier
	IsIO       bool // counts toward #[pure] discipline (spec.md §4.4)
}

func rep(t Type, n int) []Type {
	out := make([]Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

// builtinSigs is the closed builtin table (spec.md §4.4, §9 hash/
// digest convention). Names fixed to D=5 (Tip5 convention per the
// resolved open question in SPEC_FULL.md §4) are bare `hash` and the
// names suffixed `5`; the
// target-generic escape hatch lives in std.crypto.hash, not here.
var builtinSigs = map[string]BuiltinSig{
	"pub_read": {
		Name:       "pub_read",
		ParamWidth: func(*target.Config) []Type { return nil },
		Result:     func(*target.Config) Type { return TField{} },
		Tier:       target.Tier1, IsIO: true,
	},
	"pub_write": {
		Name:       "pub_write",
		ParamWidth: func(*target.Config) []Type { return []Type{TField{}} },
		Result:     func(*target.Config) Type { return TTuple{} },
		Tier:       target.Tier1, IsIO: true,
	},
	"pub_read5": {
		Name:       "pub_read5",
		ParamWidth: func(*target.Config) []Type { return nil },
		Result:     func(*target.Config) Type { return TDigest{} },
		Tier:       target.Tier1, IsIO: true,
	},
	"divine": {
		Name:       "divine",
		ParamWidth: func(*target.Config) []Type { return nil },
		Result:     func(*target.Config) Type { return TField{} },
		Tier:       target.Tier2, IsIO: true,
	},
	"divine5": {
		Name:       "divine5",
		ParamWidth: func(*target.Config) []Type { return nil },
		Result:     func(*target.Config) Type { return TDigest{} },
		Tier:       target.Tier2, IsIO: true,
	},
	"hash": {
		Name: "hash",
		ParamWidth: func(cfg *target.Config) []Type {
			return rep(TField{}, cfg.Hash.Rate)
		},
		Result: func(*target.Config) Type { return TDigest{} },
		Tier:   target.Tier1, IsIO: false,
	},
	"sponge_absorb": {
		Name: "sponge_absorb",
		ParamWidth: func(cfg *target.Config) []Type {
			return rep(TField{}, cfg.Hash.Rate)
		},
		Result: func(*target.Config) Type { return TTuple{} },
		Tier:   target.Tier2, IsIO: true,
	},
	"sponge_squeeze": {
		Name:       "sponge_squeeze",
		ParamWidth: func(*target.Config) []Type { return nil },
		Result:     func(cfg *target.Config) Type { return TArray{Elem: TField{}, Size: uint64(cfg.Hash.Rate)} },
		Tier:       target.Tier2, IsIO: true,
	},
	"sponge_init": {
		Name:       "sponge_init",
		ParamWidth: func(*target.Config) []Type { return nil },
		Result:     func(*target.Config) Type { return TTuple{} },
		Tier:       target.Tier2, IsIO: true,
	},
	"as_u32": {
		Name:       "as_u32",
		ParamWidth: func(*target.Config) []Type { return []Type{TField{}} },
		Result:     func(*target.Config) Type { return TU32{} },
		Tier:       target.Tier1, IsIO: false,
	},
	"storage_read": {
		Name:       "storage_read",
		ParamWidth: func(*target.Config) []Type { return []Type{TU32{}} },
		Result:     func(*target.Config) Type { return TField{} },
		Tier:       target.Tier1, IsIO: true,
	},
	"storage_write": {
		Name:       "storage_write",
		ParamWidth: func(*target.Config) []Type { return []Type{TU32{}, TField{}} },
		Result:     func(*target.Config) Type { return TTuple{} },
		Tier:       target.Tier1, IsIO: true,
	},
	"merkle_step": {
		Name:       "merkle_step",
		ParamWidth: func(*target.Config) []Type { return []Type{TDigest{}, TU32{}} },
		Result:     func(*target.Config) Type { return TDigest{} },
		Tier:       target.Tier2, IsIO: false,
	},
	"ext_mul": {
		Name:       "ext_mul",
		ParamWidth: func(*target.Config) []Type { return []Type{TXField{}, TXField{}} },
		Result:     func(*target.Config) Type { return TXField{} },
		Tier:       target.Tier3, IsIO: false,
	},
	"ext_invert": {
		Name:       "ext_invert",
		ParamWidth: func(*target.Config) []Type { return []Type{TXField{}} },
		Result:     func(*target.Config) Type { return TXField{} },
		Tier:       target.Tier3, IsIO: false,
	},
}

func Builtin(name string) (BuiltinSig, bool) {
	b, ok := builtinSigs[name]
	return b, ok
}

// IsIOBuiltin reports whether name is a builtin the #[pure] discipline forbids
// (spec.md §4.4: "pub_read/pub_write/divine, sponge_*, reveal, seal,
// storage read/write"). reveal/seal are statement forms, checked
// separately in purity.go.
func IsIOBuiltin(name string) bool {
	b, ok := builtinSigs[name]
	return ok && b.IsIO
}
