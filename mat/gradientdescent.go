package mat

import (
	"log"
	"math"
	"math/cmplx"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"qground/mat/util"
)

const (
	gdBatchSize = 256
	gdTol       = 1e-3
	gdMaxEpochs = 100000
)

// GradientDescent searches for the lowest eigenpair of a Hermitian m by
// stochastic gradient descent on the Rayleigh quotient v†·m·v / v†·v.
// The gradient of the quotient at a unit vector is the residual m·v − λ·v
// with λ the quotient itself, so λ is pinned to the quotient and recomputed
// every epoch rather than descended as a free variable: a free λ makes the
// residual vanish on every eigenpair and descent settles on arbitrary
// excited states, whereas under the quotient the excited states are saddle
// points and the ground component always grows.
// The step size comes from the Gerschgorin disc bounds of the spectrum,
// which makes every step a contraction of the excited components.
func GradientDescent(m *COO) (ValVec, error) {
	if m.rows != m.cols {
		return ValVec{}, errors.Errorf("%d %d", m.rows, m.cols)
	}
	if len(m.Data) == 0 {
		return ValVec{}, errors.Errorf("empty matrix")
	}

	n := m.cols
	vRe := make([]float64, n)
	vIm := make([]float64, n)
	for i := range vRe {
		vRe[i] = rand.Float64()
		vIm[i] = rand.Float64()
	}
	vReGrad := make([]float64, n)
	vImGrad := make([]float64, n)

	byRow := make(map[int][]entry)
	for _, v := range m.Data {
		byRow[v.row] = append(byRow[v.row], v)
	}
	batch := newSampler(n, min(gdBatchSize, n))

	lower, upper := gerschgorin(m)
	lr := 1 / (upper - lower + 1)

	normalize := func() error {
		var norm float64
		for i := range vRe {
			norm += vRe[i]*vRe[i] + vIm[i]*vIm[i]
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return errors.Errorf("zero vector")
		}
		for i := range vRe {
			vRe[i] /= norm
			vIm[i] /= norm
		}
		return nil
	}

	// rayleigh returns Re(v†·m·v) / v†·v.
	rayleigh := func() float64 {
		var num, den float64
		for i := range vRe {
			den += vRe[i]*vRe[i] + vIm[i]*vIm[i]
		}
		for _, e := range m.Data {
			aRe, aIm := float64(real(e.v)), float64(imag(e.v))
			pRe := aRe*vRe[e.col] - aIm*vIm[e.col]
			pIm := aRe*vIm[e.col] + aIm*vRe[e.col]
			num += vRe[e.row]*pRe + vIm[e.row]*pIm
		}
		return num / den
	}

	var lambda float64
	// residuals returns the batch loss Σ_i |Re r_i| + |Im r_i|,
	// where r = m·v − λ·v is also the quotient gradient, stored in
	// vReGrad/vImGrad as a side effect.
	residuals := func() float64 {
		clear(vReGrad)
		clear(vImGrad)

		var loss float64
		for _, i := range batch.next() {
			var rRe, rIm float64
			for _, e := range byRow[i] {
				j := e.col
				aRe, aIm := float64(real(e.v)), float64(imag(e.v))
				rRe += aRe*vRe[j] - aIm*vIm[j]
				rIm += aRe*vIm[j] + aIm*vRe[j]
			}
			rRe -= lambda * vRe[i]
			rIm -= lambda * vIm[i]

			loss += math.Abs(rRe) + math.Abs(rIm)
			vReGrad[i] = rRe
			vImGrad[i] = rIm
		}
		return loss
	}

	throttler := util.NewSkipThrottler(60 * time.Second)
	epochIters := m.rows/len(batch.batch) + 1
	converged := false
	for epoch := 0; epoch < gdMaxEpochs; epoch++ {
		if err := normalize(); err != nil {
			return ValVec{}, errors.Wrap(err, "")
		}
		lambda = rayleigh()

		var epochLoss float64
		for i := 0; i < epochIters; i++ {
			loss := residuals()
			for j := range vReGrad {
				vRe[j] -= lr * vReGrad[j]
				vIm[j] -= lr * vImGrad[j]
			}
			epochLoss += loss / float64(len(batch.batch))
		}

		epochLoss /= float64(epochIters)
		converged = epochLoss < gdTol
		if throttler.Ok() || converged {
			log.Printf("%d %f %f", epoch, epochLoss, lambda)
		}
		if converged {
			break
		}
	}
	if !converged {
		return ValVec{}, errors.Errorf("no convergence after %d epochs", gdMaxEpochs)
	}

	if err := normalize(); err != nil {
		return ValVec{}, errors.Wrap(err, "")
	}
	lambda = rayleigh()

	vec := make([]complex128, 0, n)
	for i, re := range vRe {
		vec = append(vec, complex(re, vIm[i]))
	}
	// Make the first nonzero entry real.
	var c complex128 = 1
	for _, v := range vec {
		if cmplx.Abs(v) > 1e-6 {
			c = v / complex(cmplx.Abs(v), 0)
			break
		}
	}
	for i := range vec {
		vec[i] /= c
	}

	return ValVec{Val: complex(lambda, 0), Vec: vec}, nil
}

// sampler yields batches of row indices, reshuffling after each full pass.
type sampler struct {
	indices []int
	ptr     int

	batch []int
}

func newSampler(n, batchSize int) *sampler {
	s := &sampler{
		indices: make([]int, n),
		batch:   make([]int, batchSize),
	}
	for i := 0; i < n; i++ {
		s.indices[i] = i
	}
	s.shuffle()
	s.ptr = -1
	return s
}

func (s *sampler) next() []int {
	for b := range s.batch {
		s.ptr++
		if s.ptr >= len(s.indices) {
			s.shuffle()
			s.ptr = 0
		}
		s.batch[b] = s.indices[s.ptr]
	}
	return s.batch
}

func (s *sampler) shuffle() {
	rand.Shuffle(len(s.indices), func(i, j int) {
		s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
	})
}

// gerschgorin returns lower and upper bounds for the eigenvalues of m.
// Theorem A3, Bounds for the eigenvalues of a matrix, Kenneth R. Garren.
func gerschgorin(m *COO) (float64, float64) {
	lower, upper := math.MaxFloat64, -math.MaxFloat64
	curRow := m.Data[0].row
	var center complex64
	var radius float64
	rows := 0
	flush := func() {
		rows++
		if l := float64(real(center)) - radius; l < lower {
			lower = l
		}
		if u := float64(real(center)) + radius; u > upper {
			upper = u
		}
	}
	for _, v := range m.Data {
		if v.row != curRow {
			flush()
			curRow, center, radius = v.row, 0, 0
		}
		if v.row == v.col {
			center = v.v
		} else {
			radius += cmplx.Abs(complex128(v.v))
		}
	}
	flush()
	// Rows without entries have a disc of radius zero at the origin.
	if rows < m.rows {
		lower, upper = math.Min(lower, 0), math.Max(upper, 0)
	}
	return lower, upper
}
