package mat

import (
	"cmp"
	"slices"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
)

// Arnoldi computes the k lowest eigenpairs of m iteratively.
// It avoids the full diagonalization done by Eigen, at the cost of
// converting m to a dense tensor.
func Arnoldi(m *COO, k int) ([]ValVec, error) {
	if m.rows != m.cols {
		return nil, errors.Errorf("%d %d", m.rows, m.cols)
	}

	t := tensor.Zeros(m.rows, m.cols)
	for _, e := range m.Data {
		t.SetAt([]int{e.row, e.col}, e.v)
	}

	eigvals, eigvecs := tensor.Zeros(1), tensor.Zeros(1)
	var bufs [7]*tensor.Dense
	for i := range bufs {
		bufs[i] = tensor.Zeros(1)
	}
	if err := tensor.Arnoldi(eigvals, eigvecs, t, k, bufs); err != nil {
		return nil, errors.Wrap(err, "")
	}

	vecs := eigvecs.Reshape(m.rows, k)
	vvs := make([]ValVec, 0, k)
	for j := 0; j < k; j++ {
		vv := ValVec{Val: complex128(eigvals.At(j))}
		for i := 0; i < m.rows; i++ {
			vv.Vec = append(vv.Vec, complex128(vecs.At(i, j)))
		}
		vvs = append(vvs, vv)
	}
	slices.SortFunc(vvs, func(a, b ValVec) int { return cmp.Compare(real(a.Val), real(b.Val)) })

	return vvs, nil
}
