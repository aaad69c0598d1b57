// Package ast defines the Trident abstract syntax tree produced by
// internal/parser and consumed by internal/types and internal/tirbuild.
//
// Every node carries a token.Span for diagnostics (spec.md §3). The
// tree is built once by the parser and is immutable thereafter.
package ast

import "github.com/tridentlang/trident/internal/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Span() token.Span
}

// FileKind distinguishes a program root from a library module.
type FileKind int

const (
	KindProgram FileKind = iota
	KindModule
)

// File is a single parsed source file.
type File struct {
	FileSpan token.Span
	Kind     FileKind
	Name     string // module path, e.g. "std.crypto.hash"
	Uses     []*Use
	Items    []Item
}

func (f *File) Span() token.Span { return f.FileSpan }

// Use is a single `use a.b.c` statement.
type Use struct {
	UseSpan token.Span
	Path    []string // ["a","b","c"]
}

func (u *Use) Span() token.Span { return u.UseSpan }

// Item is the interface for top-level declarations.
type Item interface {
	Node
	itemNode()
}

// ConstDecl is `const NAME: T = expr;`.
type ConstDecl struct {
	DeclSpan token.Span
	Pub      bool
	Name     string
	Type     Type
	Value    Expr
}

func (c *ConstDecl) Span() token.Span { return c.DeclSpan }
func (c *ConstDecl) itemNode()        {}

// StructField is a single named, typed field of a StructDecl.
type StructField struct {
	Name string
	Type Type
}

// StructDecl is `struct Name { field: T, ... }`.
type StructDecl struct {
	DeclSpan token.Span
	Pub      bool
	Name     string
	Fields   []StructField
}

func (s *StructDecl) Span() token.Span { return s.DeclSpan }
func (s *StructDecl) itemNode()        {}

// EventDecl is `event Name { field: T, ... }` — the payload shape for
// `reveal`/`seal` statements (spec.md §4.7).
type EventDecl struct {
	DeclSpan token.Span
	Pub      bool
	Name     string
	Fields   []StructField
}

func (e *EventDecl) Span() token.Span { return e.DeclSpan }
func (e *EventDecl) itemNode()        {}

// Attr is a `#[name(args...)]` attribute attached to a FnDef.
type Attr struct {
	Name string
	Args []string
}

// Param is a single function parameter.
type Param struct {
	Name string
	Type Type
}

// FnDef is a function declaration. SizeParams names its compile-time
// size-generic parameters (spec.md §4.5, e.g. `fn f[N](...)`).
type FnDef struct {
	DeclSpan   token.Span
	Pub        bool
	Attrs      []Attr
	Name       string
	SizeParams []string
	Params     []Param
	Ret        Type
	Body       *Block
}

func (f *FnDef) Span() token.Span { return f.DeclSpan }
func (f *FnDef) itemNode()        {}

// HasAttr reports whether f carries the named attribute.
func (f *FnDef) HasAttr(name string) bool {
	for _, a := range f.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------
// Types

// Type is the interface for type-annotation nodes.
type Type interface {
	Node
	typeNode()
}

type FieldType struct{ TSpan token.Span }

func (t *FieldType) Span() token.Span { return t.TSpan }
func (t *FieldType) typeNode()        {}

type XFieldType struct{ TSpan token.Span }

func (t *XFieldType) Span() token.Span { return t.TSpan }
func (t *XFieldType) typeNode()        {}

type BoolType struct{ TSpan token.Span }

func (t *BoolType) Span() token.Span { return t.TSpan }
func (t *BoolType) typeNode()        {}

type U32Type struct{ TSpan token.Span }

func (t *U32Type) Span() token.Span { return t.TSpan }
func (t *U32Type) typeNode()        {}

type DigestType struct{ TSpan token.Span }

func (t *DigestType) Span() token.Span { return t.TSpan }
func (t *DigestType) typeNode()        {}

type ArrayType struct {
	TSpan token.Span
	Elem  Type
	Size  SizeExpr
}

func (t *ArrayType) Span() token.Span { return t.TSpan }
func (t *ArrayType) typeNode()        {}

type TupleType struct {
	TSpan token.Span
	Elems []Type
}

func (t *TupleType) Span() token.Span { return t.TSpan }
func (t *TupleType) typeNode()        {}

type StructType struct {
	TSpan token.Span
	Path  string
}

func (t *StructType) Span() token.Span { return t.TSpan }
func (t *StructType) typeNode()        {}

// ---------------------------------------------------------------------
// SizeExpr: compile-time const expressions over int literals, const
// idents, size parameters, +, * (spec.md §3).

type SizeExpr interface {
	Node
	sizeExprNode()
}

type SizeLit struct {
	ESpan token.Span
	Value uint64
}

func (s *SizeLit) Span() token.Span { return s.ESpan }
func (s *SizeLit) sizeExprNode()    {}

type SizeIdent struct {
	ESpan token.Span
	Name  string
}

func (s *SizeIdent) Span() token.Span { return s.ESpan }
func (s *SizeIdent) sizeExprNode()    {}

type SizeBinOp struct {
	ESpan token.Span
	Op    string // "+" or "*"
	Left  SizeExpr
	Right SizeExpr
}

func (s *SizeBinOp) Span() token.Span { return s.ESpan }
func (s *SizeBinOp) sizeExprNode()    {}

// ---------------------------------------------------------------------
// Statements

type Stmt interface {
	Node
	stmtNode()
}

type Block struct {
	BSpan token.Span
	Stmts []Stmt
}

func (b *Block) Span() token.Span { return b.BSpan }

type LetStmt struct {
	SSpan  token.Span
	Mut    bool
	Name   string
	Type   Type // may be nil if inferred
	Value  Expr
}

func (s *LetStmt) Span() token.Span { return s.SSpan }
func (s *LetStmt) stmtNode()        {}

type AssignStmt struct {
	SSpan  token.Span
	Target Expr // a Place
	Value  Expr
}

func (s *AssignStmt) Span() token.Span { return s.SSpan }
func (s *AssignStmt) stmtNode()        {}

type IfStmt struct {
	SSpan token.Span
	Cond  Expr
	Then  *Block
	Else  *Block // nil for a bare `if`; for `else { if ... }` Else contains one IfStmt
}

func (s *IfStmt) Span() token.Span { return s.SSpan }
func (s *IfStmt) stmtNode()        {}

// ForStmt is `for i in lo..hi { body }`, optionally runtime-bounded
// via `bounded M` (spec.md §4.7). Bound is nil when the range is a
// compile-time constant (the checker computes N automatically).
type ForStmt struct {
	SSpan token.Span
	Var   string
	Lo    Expr
	Hi    Expr
	Bound *uint64
	Body  *Block
}

func (s *ForStmt) Span() token.Span { return s.SSpan }
func (s *ForStmt) stmtNode()        {}

// MatchArm is one `pattern => body` arm. Pattern == nil denotes `_`.
type MatchArm struct {
	Pattern Expr // literal or identifier pattern; nil for wildcard
	Body    *Block
}

type MatchStmt struct {
	SSpan  token.Span
	Scrut  Expr
	Arms   []MatchArm
}

func (s *MatchStmt) Span() token.Span { return s.SSpan }
func (s *MatchStmt) stmtNode()        {}

// AssertKind distinguishes the three assert forms named in spec.md §3.
type AssertKind int

const (
	AssertCond AssertKind = iota // assert(c)
	AssertEq                     // assert_eq(a, b)
	AssertFalse                  // assert(false) sentinel, used for dead-code detection
)

type AssertStmt struct {
	SSpan token.Span
	Kind  AssertKind
	Args  []Expr
}

func (s *AssertStmt) Span() token.Span { return s.SSpan }
func (s *AssertStmt) stmtNode()        {}

// AsmStmt is a raw `asm (target?, effect?) { ... }` block. Effect is
// read as an unsigned integer literal; a signed `+N`/`-N` effect is not
// accepted. Lines is the verbatim captured body, split by newline.
type AsmStmt struct {
	SSpan     token.Span
	TargetTag *string
	Effect    int
	Lines     []string
}

func (s *AsmStmt) Span() token.Span { return s.SSpan }
func (s *AsmStmt) stmtNode()        {}

// RevealStmt is `reveal EventName { f1: e1, ... }`.
type RevealStmt struct {
	SSpan  token.Span
	Event  string
	Fields map[string]Expr
	Order  []string // field names in source order
}

func (s *RevealStmt) Span() token.Span { return s.SSpan }
func (s *RevealStmt) stmtNode()        {}

// SealStmt is `seal EventName { f1: e1, ... }` (requires Tier 2).
type SealStmt struct {
	SSpan  token.Span
	Event  string
	Fields map[string]Expr
	Order  []string
}

func (s *SealStmt) Span() token.Span { return s.SSpan }
func (s *SealStmt) stmtNode()        {}

type ReturnStmt struct {
	SSpan token.Span
	Value Expr // nil for bare `return`
}

func (s *ReturnStmt) Span() token.Span { return s.SSpan }
func (s *ReturnStmt) stmtNode()        {}

type ExprStmt struct {
	SSpan token.Span
	X     Expr
}

func (s *ExprStmt) Span() token.Span { return s.SSpan }
func (s *ExprStmt) stmtNode()        {}

// ---------------------------------------------------------------------
// Expressions

type Expr interface {
	Node
	exprNode()
}

type LitKind int

const (
	LitInt LitKind = iota
	LitBool
)

type Lit struct {
	ESpan token.Span
	Kind  LitKind
	Int   uint64
	Bool  bool
}

func (e *Lit) Span() token.Span { return e.ESpan }
func (e *Lit) exprNode()        {}

// Place is a variable reference or a field/index projection of one
// (field access only: `x.f`, never method-call syntax, spec.md §4.2).
type Place struct {
	ESpan  token.Span
	Base   Expr // nil for a bare identifier
	Name   string
	Index  Expr // non-nil for `x[i]`; mutually exclusive with Name-as-field
}

func (e *Place) Span() token.Span { return e.ESpan }
func (e *Place) exprNode()        {}

type BinOp struct {
	ESpan token.Span
	Op    string // "+", "*", "==", "<", "&", "^", "/%", "*."
	Left  Expr
	Right Expr
}

func (e *BinOp) Span() token.Span { return e.ESpan }
func (e *BinOp) exprNode()        {}

// Call is a builtin or user function call: `path(args)`. internal/parser
// never fills SizeArgs; size arguments are inferred by internal/mono.
type Call struct {
	ESpan    token.Span
	Path     string
	SizeArgs []SizeExpr
	Args     []Expr
}

func (e *Call) Span() token.Span { return e.ESpan }
func (e *Call) exprNode()        {}

type StructInit struct {
	ESpan  token.Span
	Path   string
	Fields map[string]Expr
	Order  []string
}

func (e *StructInit) Span() token.Span { return e.ESpan }
func (e *StructInit) exprNode()        {}

type ArrayInit struct {
	ESpan token.Span
	Elems []Expr
}

func (e *ArrayInit) Span() token.Span { return e.ESpan }
func (e *ArrayInit) exprNode()        {}

type TupleInit struct {
	ESpan token.Span
	Elems []Expr
}

func (e *TupleInit) Span() token.Span { return e.ESpan }
func (e *TupleInit) exprNode()        {}

// BlockExpr wraps a *Block used in expression position (e.g. the value
// of a `let`), mirroring the teacher's expression-oriented AST shape.
type BlockExpr struct {
	ESpan token.Span
	Body  *Block
}

func (e *BlockExpr) Span() token.Span { return e.ESpan }
func (e *BlockExpr) exprNode()        {}
