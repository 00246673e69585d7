package cover

import (
	"slices"

	"github.com/crillab/gophersat/solver"
)

// SolveSAT searches for an exact cover with a pseudo-Boolean SAT solver,
// stating for every element of the ground set that exactly one covering
// subset is included.
// Unlike BruteForce, the returned cover is not necessarily the first one
// in index order.
func (ins *Instance) SolveSAT() ([]int, bool) {
	n := len(ins.Subsets)
	if n == 0 {
		return nil, false
	}

	constrs := make([]solver.PBConstr, 0, 2*n)
	for _, e := range ins.Elements() {
		// Variables are 1-based subset indices.
		lits := make([]int, 0, n)
		for i, s := range ins.Subsets {
			if slices.Contains(s, e) {
				lits = append(lits, i+1)
			}
		}
		weights := make([]int, len(lits))
		for i := range weights {
			weights[i] = 1
		}
		constrs = append(constrs, solver.Eq(lits, weights, 1)...)
	}

	s := solver.New(solver.ParsePBConstrs(constrs))
	if s.Solve() != solver.Sat {
		return nil, false
	}

	model := s.Model()
	assignment := make([]int, n)
	for i, subset := range ins.Subsets {
		// Empty subsets never appear in a constraint, so the solver may
		// assign their variables either way. Force them out.
		if len(subset) == 0 || i >= len(model) {
			continue
		}
		if model[i] {
			assignment[i] = 1
		}
	}
	return assignment, true
}
