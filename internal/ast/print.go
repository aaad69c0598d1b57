package ast

import (
	"fmt"
	"strings"
)

// Print renders f back to Trident source text. It is the right-hand
// side of the parse round-trip law from spec.md §8:
// parse(Print(parse(src))) == parse(src) (AST-equal modulo spans).
func Print(f *File) string {
	var b strings.Builder
	switch f.Kind {
	case KindProgram:
		fmt.Fprintf(&b, "program %s\n", f.Name)
	case KindModule:
		fmt.Fprintf(&b, "module %s\n", f.Name)
	}
	for _, u := range f.Uses {
		fmt.Fprintf(&b, "use %s;\n", strings.Join(u.Path, "."))
	}
	for _, it := range f.Items {
		printItem(&b, it)
	}
	return b.String()
}

func printItem(b *strings.Builder, it Item) {
	switch v := it.(type) {
	case *ConstDecl:
		fmt.Fprintf(b, "%sconst %s: %s = %s;\n", pubPrefix(v.Pub), v.Name, PrintType(v.Type), PrintExpr(v.Value))
	case *StructDecl:
		fmt.Fprintf(b, "%sstruct %s { %s }\n", pubPrefix(v.Pub), v.Name, printFields(v.Fields))
	case *EventDecl:
		fmt.Fprintf(b, "%sevent %s { %s }\n", pubPrefix(v.Pub), v.Name, printFields(v.Fields))
	case *FnDef:
		printFn(b, v)
	}
}

func pubPrefix(pub bool) string {
	if pub {
		return "pub "
	}
	return ""
}

func printFields(fields []StructField) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, PrintType(f.Type))
	}
	return strings.Join(parts, ", ")
}

func printFn(b *strings.Builder, f *FnDef) {
	b.WriteString(pubPrefix(f.Pub))
	for _, a := range f.Attrs {
		if len(a.Args) > 0 {
			fmt.Fprintf(b, "#[%s(%s)]\n", a.Name, strings.Join(a.Args, ", "))
		} else {
			fmt.Fprintf(b, "#[%s]\n", a.Name)
		}
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, PrintType(p.Type))
	}
	sizeParams := ""
	if len(f.SizeParams) > 0 {
		sizeParams = "[" + strings.Join(f.SizeParams, ", ") + "]"
	}
	fmt.Fprintf(b, "fn %s%s(%s) -> %s %s\n", f.Name, sizeParams,
		strings.Join(params, ", "), PrintType(f.Ret), PrintBlock(f.Body))
}

// PrintType renders a Type node.
func PrintType(t Type) string {
	switch v := t.(type) {
	case *FieldType:
		return "Field"
	case *XFieldType:
		return "XField"
	case *BoolType:
		return "Bool"
	case *U32Type:
		return "U32"
	case *DigestType:
		return "Digest"
	case *ArrayType:
		return fmt.Sprintf("[%s; %s]", PrintType(v.Elem), PrintSizeExpr(v.Size))
	case *TupleType:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = PrintType(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *StructType:
		return v.Path
	default:
		return "<?type>"
	}
}

// PrintSizeExpr renders a SizeExpr node.
func PrintSizeExpr(s SizeExpr) string {
	switch v := s.(type) {
	case *SizeLit:
		return fmt.Sprintf("%d", v.Value)
	case *SizeIdent:
		return v.Name
	case *SizeBinOp:
		return fmt.Sprintf("%s %s %s", PrintSizeExpr(v.Left), v.Op, PrintSizeExpr(v.Right))
	default:
		return "<?size>"
	}
}

// PrintBlock renders a *Block.
func PrintBlock(bl *Block) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, s := range bl.Stmts {
		b.WriteString("  " + PrintStmt(s) + "\n")
	}
	b.WriteString("}")
	return b.String()
}

// PrintStmt renders a single Stmt.
func PrintStmt(s Stmt) string {
	switch v := s.(type) {
	case *LetStmt:
		mut := ""
		if v.Mut {
			mut = "mut "
		}
		typ := ""
		if v.Type != nil {
			typ = ": " + PrintType(v.Type)
		}
		return fmt.Sprintf("let %s%s%s = %s;", mut, v.Name, typ, PrintExpr(v.Value))
	case *AssignStmt:
		return fmt.Sprintf("%s = %s;", PrintExpr(v.Target), PrintExpr(v.Value))
	case *IfStmt:
		out := fmt.Sprintf("if %s %s", PrintExpr(v.Cond), PrintBlock(v.Then))
		if v.Else != nil {
			out += " else " + PrintBlock(v.Else)
		}
		return out
	case *ForStmt:
		bound := ""
		if v.Bound != nil {
			bound = fmt.Sprintf(" bounded %d", *v.Bound)
		}
		return fmt.Sprintf("for %s in %s..%s%s %s", v.Var, PrintExpr(v.Lo), PrintExpr(v.Hi), bound, PrintBlock(v.Body))
	case *MatchStmt:
		var b strings.Builder
		fmt.Fprintf(&b, "match %s {\n", PrintExpr(v.Scrut))
		for _, arm := range v.Arms {
			pat := "_"
			if arm.Pattern != nil {
				pat = PrintExpr(arm.Pattern)
			}
			fmt.Fprintf(&b, "  %s => %s,\n", pat, PrintBlock(arm.Body))
		}
		b.WriteString("}")
		return b.String()
	case *AssertStmt:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = PrintExpr(a)
		}
		name := "assert"
		if v.Kind == AssertEq {
			name = "assert_eq"
		}
		return fmt.Sprintf("%s(%s);", name, strings.Join(args, ", "))
	case *AsmStmt:
		annot := ""
		if v.TargetTag != nil && v.Effect != 0 {
			annot = fmt.Sprintf("(%s, %d)", *v.TargetTag, v.Effect)
		} else if v.TargetTag != nil {
			annot = "(" + *v.TargetTag + ")"
		} else if v.Effect != 0 {
			annot = fmt.Sprintf("(%d)", v.Effect)
		}
		return "asm" + annot + " {" + strings.Join(v.Lines, "\n") + "}"
	case *RevealStmt:
		return fmt.Sprintf("reveal %s { %s };", v.Event, printArgFields(v.Fields, v.Order))
	case *SealStmt:
		return fmt.Sprintf("seal %s { %s };", v.Event, printArgFields(v.Fields, v.Order))
	case *ReturnStmt:
		if v.Value == nil {
			return "return;"
		}
		return fmt.Sprintf("return %s;", PrintExpr(v.Value))
	case *ExprStmt:
		return PrintExpr(v.X) + ";"
	default:
		return "<?stmt>"
	}
}

func printArgFields(fields map[string]Expr, order []string) string {
	parts := make([]string, len(order))
	for i, name := range order {
		parts[i] = fmt.Sprintf("%s: %s", name, PrintExpr(fields[name]))
	}
	return strings.Join(parts, ", ")
}

// PrintExpr renders a single Expr.
func PrintExpr(e Expr) string {
	switch v := e.(type) {
	case *Lit:
		if v.Kind == LitBool {
			return fmt.Sprintf("%v", v.Bool)
		}
		return fmt.Sprintf("%d", v.Int)
	case *Place:
		if v.Base != nil {
			if v.Index != nil {
				return fmt.Sprintf("%s[%s]", PrintExpr(v.Base), PrintExpr(v.Index))
			}
			return fmt.Sprintf("%s.%s", PrintExpr(v.Base), v.Name)
		}
		return v.Name
	case *BinOp:
		return fmt.Sprintf("(%s %s %s)", PrintExpr(v.Left), v.Op, PrintExpr(v.Right))
	case *Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = PrintExpr(a)
		}
		sizeArgs := ""
		if len(v.SizeArgs) > 0 {
			parts := make([]string, len(v.SizeArgs))
			for i, s := range v.SizeArgs {
				parts[i] = PrintSizeExpr(s)
			}
			sizeArgs = "<" + strings.Join(parts, ", ") + ">"
		}
		return fmt.Sprintf("%s%s(%s)", v.Path, sizeArgs, strings.Join(args, ", "))
	case *StructInit:
		return fmt.Sprintf("%s { %s }", v.Path, printArgFields(v.Fields, v.Order))
	case *ArrayInit:
		parts := make([]string, len(v.Elems))
		for i, el := range v.Elems {
			parts[i] = PrintExpr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *TupleInit:
		parts := make([]string, len(v.Elems))
		for i, el := range v.Elems {
			parts[i] = PrintExpr(el)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *BlockExpr:
		return PrintBlock(v.Body)
	default:
		return "<?expr>"
	}
}
