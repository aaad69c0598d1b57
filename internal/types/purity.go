package types

import (
	"fmt"
	"sort"

	"github.com/tridentlang/trident/internal/errors"
)

// recordIO marks fn as directly performing I/O (an IO builtin call,
// reveal, seal, or asm block), the seed set for the transitive
// #[pure] reachability check (spec.md §4.4: "#[pure] functions may
// not directly nor transitively use any I/O op").
func (c *Checker) recordIO(fn string) {
	if c.ioDirect == nil {
		c.ioDirect = map[string]bool{}
	}
	c.ioDirect[fn] = true
}

// checkPurityTransitive propagates ioDirect across callEdges and
// reports every #[pure] function that can reach I/O through any call
// chain, even indirectly through a non-pure helper.
func (c *Checker) checkPurityTransitive() {
	reachesIO := map[string]bool{}
	for fn := range c.ioDirect {
		reachesIO[fn] = true
	}
	changed := true
	for changed {
		changed = false
		for caller, callees := range c.callEdges {
			if reachesIO[caller] {
				continue
			}
			for _, callee := range callees {
				if reachesIO[callee] {
					reachesIO[caller] = true
					changed = true
					break
				}
			}
		}
	}

	var names []string
	for name := range c.pureFns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if c.pureFns[name] && reachesIO[name] && !c.ioDirect[name] {
			c.errs = append(c.errs, errors.New(errors.ANN001, errors.PhaseAnnot,
				fmt.Sprintf("#[pure] function %s transitively performs I/O through a callee", name), errors.ZeroSpan()))
		}
	}
}
