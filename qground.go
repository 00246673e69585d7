// Package qground builds qubit Hamiltonians from weighted Pauli words and
// finds their ground states with classical eigensolvers.
package qground

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/cmplx"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/pkg/errors"

	"qground/mat"
)

var (
	identity = mat.COOIdentity(2)
	paulis   = map[byte]*mat.COO{
		'I': identity,
		'X': mat.M(mat.PauliX),
		'Y': mat.M(mat.PauliY),
		'Z': mat.M(mat.PauliZ),
	}
)

// A Term is a Pauli word with a weight.
// The word has one letter in {I, X, Y, Z} per qubit, the first letter being
// the most significant qubit.
type Term struct {
	Coeff complex64
	Word  string
}

type termJSON struct {
	Coeff float64 `json:"coeff"`
	Word  string  `json:"word"`
}

// MarshalJSON serializes the term at the external driver boundary, where
// coefficients are real.
func (t Term) MarshalJSON() ([]byte, error) {
	if imag(t.Coeff) != 0 {
		return nil, errors.Errorf("complex coefficient %v", t.Coeff)
	}
	return json.Marshal(termJSON{Coeff: float64(real(t.Coeff)), Word: t.Word})
}

func (t *Term) UnmarshalJSON(b []byte) error {
	var tj termJSON
	if err := json.Unmarshal(b, &tj); err != nil {
		return errors.Wrap(err, "")
	}
	t.Coeff = complex(float32(tj.Coeff), 0)
	t.Word = tj.Word
	return nil
}

// A Hamiltonian is a weighted sum of Pauli words over a fixed number of
// qubits.
type Hamiltonian struct {
	Qubits int    `json:"qubits"`
	Terms  []Term `json:"terms"`
}

func (h Hamiltonian) Validate() error {
	if h.Qubits <= 0 {
		return errors.Errorf("%d qubits", h.Qubits)
	}
	for i, t := range h.Terms {
		if len(t.Word) != h.Qubits {
			return errors.Errorf("term %d %q has %d letters, expected %d", i, t.Word, len(t.Word), h.Qubits)
		}
		for k := 0; k < len(t.Word); k++ {
			switch t.Word[k] {
			case 'I', 'X', 'Y', 'Z':
			default:
				return errors.Errorf("term %d %q", i, t.Word)
			}
		}
	}
	return nil
}

// Matrix builds the 2^n by 2^n matrix of h into m, term by term through
// Kronecker products.
// buf is a reusable buffer holding one term at a time.
func (h Hamiltonian) Matrix(m mat.Matrix, buf *mat.COO) error {
	if err := h.Validate(); err != nil {
		return errors.Wrap(err, "")
	}

	dim := 1 << h.Qubits
	m.Zeros(dim, dim)
	for _, t := range h.Terms {
		buf.Scalar(1)
		for k := 0; k < len(t.Word); k++ {
			buf.Kron(paulis[t.Word[k]])
		}
		m.Add(t.Coeff, buf)
	}
	return nil
}

// Explicit writes the matrix of h to dir in coordinate format, one basis
// state at a time, without materializing any operator.
func (h Hamiltonian) Explicit(dir string) error {
	if err := h.Validate(); err != nil {
		return errors.Wrap(err, "")
	}

	dim := 1 << h.Qubits
	shapePath := filepath.Join(dir, mat.FnameShape)
	if err := os.WriteFile(shapePath, []byte(fmt.Sprintf("%d,%d", dim, dim)), 0644); err != nil {
		return errors.Wrap(err, "")
	}

	cooPath := filepath.Join(dir, mat.FnameCOO)
	f, err := os.Create(cooPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	// flipped is a reusable buffer for the state after bit flips.
	flipped := make([]byte, h.Qubits)
	// rowVals accumulates the row entries of all terms.
	rowVals := make(map[int]complex64, len(h.Terms))
	cols := make([]int, 0, len(h.Terms))
	// prev is the previously written record for compression.
	prev := vRowCol{v: complex64(cmplx.NaN()), row: -1, col: -1}
Loop:
	for i, state := range bits(h.Qubits) {
		clear(rowVals)
		for _, t := range h.Terms {
			col, amp := wordEntry(t.Word, state, flipped)
			rowVals[col] += t.Coeff * amp
		}

		cols = cols[:0]
		for col, v := range rowVals {
			if v != 0 {
				cols = append(cols, col)
			}
		}
		slices.Sort(cols)

		for _, col := range cols {
			cur := vRowCol{v: rowVals[col], row: i, col: col}
			var vStr string
			if cur.v != prev.v {
				vStr = mat.FormatNumpy(cur.v)
			}
			var rowStr string
			if cur.row != prev.row {
				rowStr = strconv.Itoa(cur.row)
			}
			colStr := strconv.Itoa(cur.col)

			if err1 := w.Write([]string{vStr, rowStr, colStr}); err1 != nil && err == nil {
				err = errors.Wrap(err1, "")
				break Loop
			}
			prev = cur
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// wordEntry returns the single nonzero entry of word in the row of state:
// the column index after X and Y flips, and the amplitude from Z signs and
// Y phases.
func wordEntry(word string, state, flipped []byte) (int, complex64) {
	copy(flipped, state)
	var amp complex64 = 1
	for k := 0; k < len(word); k++ {
		switch word[k] {
		case 'Z':
			if state[k] == 1 {
				amp = -amp
			}
		case 'X':
			flipped[k] ^= 1
		case 'Y':
			if state[k] == 0 {
				amp *= -1i
			} else {
				amp *= 1i
			}
			flipped[k] ^= 1
		}
	}
	return bitIndex(flipped), amp
}

type vRowCol struct {
	v   complex64
	row int
	col int
}

// bits iterates over all n-qubit basis states in increasing index order.
// The yielded state is a reused buffer with the most significant qubit
// first.
func bits(n int) func(yield func(int, []byte) bool) {
	state := make([]byte, n)
	return func(yield func(int, []byte) bool) {
		numStates := 1 << n
		for i := range numStates {
			indexBits(state, i)
			if !yield(i, state) {
				return
			}
		}
	}
}

func indexBits(state []byte, i int) {
	n := len(state)
	for k := 0; k < n; k++ {
		state[k] = byte(i >> (n - 1 - k) & 1)
	}
}

func bitIndex(state []byte) int {
	idx := 0
	for k, b := range state {
		if b == 1 {
			idx += 1 << (len(state) - 1 - k)
		}
	}
	return idx
}

// Probabilities converts the amplitudes of a state vector to basis state
// probabilities.
func Probabilities(vec []complex128) []float64 {
	ps := make([]float64, len(vec))
	var total float64
	for i, v := range vec {
		ps[i] = real(v)*real(v) + imag(v)*imag(v)
		total += ps[i]
	}
	if total == 0 {
		return ps
	}
	for i := range ps {
		ps[i] /= total
	}
	return ps
}

// Dominant returns the basis state with the largest probability.
func Dominant(ps []float64) int {
	best := 0
	for i, p := range ps {
		if p > ps[best] {
			best = i
		}
	}
	return best
}
