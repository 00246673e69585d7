// Package cover represents exact cover instances and encodes them as
// Ising Hamiltonians.
//
// An exact cover selects subsets such that every element of the ground set
// is covered by exactly one selected subset.
package cover

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/pkg/errors"

	"qground"
)

// An Instance is an ordered collection of integer subsets.
// Inclusion vectors assign 0 or 1 to each subset, in order.
type Instance struct {
	Subsets [][]int
}

// Load reads an instance from a JSON file holding a flat list of lists of
// integers.
func Load(path string) (*Instance, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	var subsets [][]int
	if err := json.Unmarshal(b, &subsets); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("%s", path))
	}
	return &Instance{Subsets: subsets}, nil
}

func (ins *Instance) Save(path string) error {
	b, err := json.Marshal(ins.Subsets)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Elements returns the ground set, the sorted union of all subsets.
func (ins *Instance) Elements() []int {
	elems := make([]int, 0)
	for _, s := range ins.Subsets {
		elems = append(elems, s...)
	}
	slices.Sort(elems)
	return slices.Compact(elems)
}

// Check reports whether assignment is an exact cover: every element of the
// ground set is covered by exactly one included subset.
// An empty instance covers nothing and is never satisfied.
func (ins *Instance) Check(assignment []int) bool {
	if len(assignment) != len(ins.Subsets) {
		return false
	}
	if len(ins.Subsets) == 0 {
		return false
	}
	for _, e := range ins.Elements() {
		if ins.covered(assignment, e) != 1 {
			return false
		}
	}
	return true
}

// Penalty returns the Ising energy of assignment: the sum over elements of
// the squared deviation from being covered exactly once.
// It is zero exactly when assignment is an exact cover.
func (ins *Instance) Penalty(assignment []int) int {
	p := 0
	for _, e := range ins.Elements() {
		d := ins.covered(assignment, e) - 1
		p += d * d
	}
	return p
}

func (ins *Instance) covered(assignment []int, e int) int {
	cnt := 0
	for i, s := range ins.Subsets {
		if assignment[i] == 1 && slices.Contains(s, e) {
			cnt++
		}
	}
	return cnt
}

// BruteForce enumerates all 2^L inclusion vectors in increasing index
// order and returns the first exact cover, or false if none exists.
func (ins *Instance) BruteForce() ([]int, bool) {
	n := len(ins.Subsets)
	if n == 0 {
		return nil, false
	}

	assignment := make([]int, n)
	for i := 0; i < 1<<n; i++ {
		decode(assignment, i)
		if ins.Check(assignment) {
			return assignment, true
		}
	}
	return nil, false
}

// MinPenalty exhaustively searches for the inclusion vector with the
// lowest Ising energy, the first one in index order in case of ties.
func (ins *Instance) MinPenalty() ([]int, int) {
	n := len(ins.Subsets)
	best := make([]int, n)
	assignment := make([]int, n)
	bestP := ins.Penalty(best)
	for i := 1; i < 1<<n; i++ {
		decode(assignment, i)
		if p := ins.Penalty(assignment); p < bestP {
			bestP = p
			copy(best, assignment)
		}
	}
	return best, bestP
}

// Count returns the number of exact covers.
func (ins *Instance) Count() int {
	n := len(ins.Subsets)
	if n == 0 {
		return 0
	}
	assignment := make([]int, n)
	cnt := 0
	for i := 0; i < 1<<n; i++ {
		decode(assignment, i)
		if ins.Check(assignment) {
			cnt++
		}
	}
	return cnt
}

// Decode converts a basis state index to an inclusion vector, the first
// subset being the most significant bit.
func (ins *Instance) Decode(state int) []int {
	assignment := make([]int, len(ins.Subsets))
	decode(assignment, state)
	return assignment
}

func decode(assignment []int, i int) {
	n := len(assignment)
	for k := 0; k < n; k++ {
		assignment[k] = i >> (n - 1 - k) & 1
	}
}

// Ising encodes the instance as a qubit Hamiltonian with one qubit per
// subset.
// Each element e contributes the penalty (1 - Σ_{i: e ∈ Sᵢ} xᵢ)² with
// xᵢ = (1-Zᵢ)/2, expanded into identity, Z and ZZ terms.
// The ground energy is zero exactly when the instance is satisfiable, and
// a zero energy basis state decodes to an exact cover.
func (ins *Instance) Ising() qground.Hamiltonian {
	n := len(ins.Subsets)

	var offset float64
	fields := make([]float64, n)
	couplings := make(map[[2]int]float64)
	for _, e := range ins.Elements() {
		cov := make([]int, 0, n)
		for i, s := range ins.Subsets {
			if slices.Contains(s, e) {
				cov = append(cov, i)
			}
		}
		k := float64(len(cov))

		offset += 1 - k/2 + k*(k-1)/4
		for _, i := range cov {
			fields[i] += 0.5 - (k-1)/2
		}
		for a := 0; a < len(cov); a++ {
			for b := a + 1; b < len(cov); b++ {
				couplings[[2]int{cov[a], cov[b]}] += 0.5
			}
		}
	}

	h := qground.Hamiltonian{Qubits: n}
	if offset != 0 {
		h.Terms = append(h.Terms, qground.Term{Coeff: complex(float32(offset), 0), Word: word(n)})
	}
	for i, c := range fields {
		if c != 0 {
			h.Terms = append(h.Terms, qground.Term{Coeff: complex(float32(c), 0), Word: word(n, i)})
		}
	}
	pairs := make([][2]int, 0, len(couplings))
	for p := range couplings {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	for _, p := range pairs {
		if c := couplings[p]; c != 0 {
			h.Terms = append(h.Terms, qground.Term{Coeff: complex(float32(c), 0), Word: word(n, p[0], p[1])})
		}
	}
	return h
}

// word returns the Pauli word with Z at the given qubits and I elsewhere.
func word(n int, zs ...int) string {
	w := make([]byte, n)
	for i := range w {
		w[i] = 'I'
	}
	for _, i := range zs {
		w[i] = 'Z'
	}
	return string(w)
}
