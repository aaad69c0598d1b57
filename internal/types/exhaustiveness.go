package types

import (
	"fmt"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
)

// checkMatch checks scrutinee/pattern typing and exhaustiveness
// (spec.md §4.4: "match is exhaustive: either all concrete values
// covered (required for Bool) or a `_` wildcard present"). The
// wildcard-must-be-last rule is enforced earlier, at parse time
// (PAR008), since it is purely syntactic.
func (c *Checker) checkMatch(scope *Scope, ctx *fnCtx, m *ast.MatchStmt) {
	scrutT, err := c.checkExpr(scope, ctx, m.Scrut)
	if err != nil {
		c.errorAt(errors.TYP001, m.Span(), err.Error())
		return
	}

	hasWildcard := false
	coveredBool := map[bool]bool{}
	for _, arm := range m.Arms {
		if arm.Pattern == nil {
			hasWildcard = true
		} else {
			pt, err := c.checkExpr(scope, ctx, arm.Pattern)
			if err != nil {
				c.errorAt(errors.TYP001, arm.Body.Span(), err.Error())
			} else if !Equal(pt, scrutT) {
				c.errorAt(errors.TYP001, arm.Body.Span(),
					fmt.Sprintf("match pattern type %s does not match scrutinee type %s", pt, scrutT))
			}
			if lit, ok := arm.Pattern.(*ast.Lit); ok && lit.Kind == ast.LitBool {
				coveredBool[lit.Bool] = true
			}
		}
		armCtx := &fnCtx{name: ctx.name, pure: ctx.pure, ret: ctx.ret}
		c.checkBlock(scope, armCtx, arm.Body)
	}

	if hasWildcard {
		return
	}
	if _, isBool := scrutT.(TBool); isBool {
		if coveredBool[true] && coveredBool[false] {
			return
		}
		c.errorAt(errors.TYP006, m.Span(), "match over Bool is missing an arm (need both true and false, or a `_`)")
		return
	}
	c.errorAt(errors.TYP006, m.Span(), fmt.Sprintf("non-exhaustive match over %s: add a `_` wildcard arm", scrutT))
}
