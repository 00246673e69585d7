package mat

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"testing"
)

func TestSlice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m *COO
		y [2]int
		x [2]int
		s *COO
	}{
		{
			m: M([][]complex64{
				{0, 1, 2, 3, 4},
				{5, 6, 7, 8, 9},
				{10, 11, 12, 13, 14},
				{15, 16, 17, 18, 19},
				{20, 21, 22, 23, 24},
				{25, 26, 27, 28, 29},
			}),
			y: [2]int{-5, -2},
			x: [2]int{1, 3},
			s: M([][]complex64{
				{6, 7},
				{11, 12},
				{16, 17},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.m), func(t *testing.T) {
			t.Parallel()
			s := test.m.Slice(test.y, test.x)
			if !s.Equal(test.s) {
				t.Fatalf("%s, expected %s", s, test.s)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a          *COO
		c          complex64
		b          *COO
		z          *COO
		numNonZero int
	}{
		{
			a: M([][]complex64{
				{1, 0},
				{0, 2i},
			}),
			c: 1i,
			b: M([][]complex64{
				{1i, 0},
				{2, -5},
			}),
			z: M([][]complex64{
				{0, 0},
				{2i, -3i},
			}),
			numNonZero: 2,
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Add(test.c, test.b)
			if !test.a.Equal(test.z) {
				t.Fatalf("%s, expected %s", test.a, test.z)
			}
			if test.a.NumNonZero() != test.numNonZero {
				t.Fatalf("%d, expected %d", test.a.NumNonZero(), test.numNonZero)
			}
		})
	}
}

func TestMul(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *COO
		b *COO
		c *COO
	}{
		{
			a: M([][]complex64{
				{0, 0},
				{-1, 2},
			}),
			b: M([][]complex64{
				{0, 1},
				{0, 2},
			}),
			c: M([][]complex64{
				{0, 0},
				{0, 4},
			}),
		},
		// Multiply scalar using broadcast.
		{
			a: M([][]complex64{
				{0, 3},
				{-1, 2},
			}),
			b: M([][]complex64{{-2}}),
			c: M([][]complex64{
				{0, -6},
				{2, -4},
			}),
		},
		// Multiply vector using broadcast.
		{
			a: M([][]complex64{
				{0, 3},
				{-1, 2},
			}),
			b: M([][]complex64{{3}, {-2}}),
			c: M([][]complex64{
				{0, 9},
				{2, -4},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Mul(test.b)
			if !test.a.Equal(test.c) {
				t.Fatalf("%s, expected %s", test.a, test.c)
			}
		})
	}
}

func TestKron(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *COO
		b *COO
		c *COO
	}{
		{
			a: M([][]complex64{
				{1, -4, 7},
				{-2, 0, 3},
			}),
			b: M([][]complex64{
				{8, -9, -6, 5},
				{1, -3, 0, 7},
				{2, 8, -8, -3},
				{1, 2, -5, -1},
			}),
			c: M([][]complex64{
				{8, -9, -6, 5, -32, 36, 24, -20, 56, -63, -42, 35},
				{1, -3, 0, 7, -4, 12, 0, -28, 7, -21, 0, 49},
				{2, 8, -8, -3, -8, -32, 32, 12, 14, 56, -56, -21},
				{1, 2, -5, -1, -4, -8, 20, 4, 7, 14, -35, -7},
				{-16, 18, 12, -10, 0, 0, 0, 0, 24, -27, -18, 15},
				{-2, 6, 0, -14, 0, 0, 0, 0, 3, -9, 0, 21},
				{-4, -16, 16, 6, 0, 0, 0, 0, 6, 24, -24, -9},
				{-2, -4, 10, 2, 0, 0, 0, 0, 3, 6, -15, -3},
			}),
		},
		// Scalar kronecker.
		{
			a: M([][]complex64{{1}}),
			b: M([][]complex64{
				{1, 2},
				{3, 4},
			}),
			c: M([][]complex64{
				{1, 2},
				{3, 4},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Kron(test.b)
			if !test.a.Equal(test.c) {
				t.Fatalf("%s, expected %s", test.a, test.c)
			}
		})
	}
}

func TestAt(t *testing.T) {
	t.Parallel()
	m := M([][]complex64{
		{0, 1, 0},
		{2i, 0, -3},
	})
	tests := []struct {
		i, j int
		v    complex64
	}{
		{i: 0, j: 0, v: 0},
		{i: 0, j: 1, v: 1},
		{i: 1, j: 0, v: 2i},
		{i: 1, j: 2, v: -3},
		{i: 1, j: 1, v: 0},
	}
	for _, test := range tests {
		if v := m.At(test.i, test.j); v != test.v {
			t.Fatalf("%d %d %v, expected %v", test.i, test.j, v, test.v)
		}
	}
}

func TestWriteReadCOO(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	m := M([][]complex64{
		{1, 0, -2.5},
		{0, 3i, 0},
		{0, 1 - 1i, 0},
	})
	if err := m.WriteCOO(dir); err != nil {
		t.Fatalf("%+v", err)
	}
	read, err := ReadCOO(dir)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !read.Equal(m) {
		t.Fatalf("\n%s, expected \n\n%s", read, m)
	}
}

func TestEigen(t *testing.T) {
	t.Parallel()
	m := M(PauliX)
	vvs := m.Eigen()

	vals := []float64{-1, 1}
	if len(vvs) != len(vals) {
		t.Fatalf("%d", len(vvs))
	}
	for i, vv := range vvs {
		if math.Abs(real(vv.Val)-vals[i]) > 1e-6 {
			t.Fatalf("%d %v %f", i, vv.Val, vals[i])
		}
		// Both eigenvectors of PauliX spread evenly over the basis.
		for _, v := range vv.Vec {
			prob := real(v)*real(v) + imag(v)*imag(v)
			if math.Abs(prob-0.5) > 1e-6 {
				t.Fatalf("%d %v %f", i, v, prob)
			}
		}
	}
}

// Matrices with complex entries are rejected instead of panicking.
func TestEigsNotReal(t *testing.T) {
	t.Parallel()
	if _, err := Eigs(M(PauliY)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEigsDir(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	m := COOZeros(2, 2)
	m.Add(1, M(PauliZ))
	if err := m.WriteCOO(dir); err != nil {
		t.Fatalf("%+v", err)
	}

	vvs, err := EigsDir(dir)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	direct, err := Eigs(m)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(vvs) != len(direct) {
		t.Fatalf("%d %d", len(vvs), len(direct))
	}
	for i, vv := range vvs {
		if math.Abs(real(vv.Val)-real(direct[i].Val)) > 1e-6 {
			t.Fatalf("%d %v %v", i, vv.Val, direct[i].Val)
		}
	}
}

func TestArnoldi(t *testing.T) {
	t.Parallel()
	m := M([][]complex64{
		{2, -1, 0, 0},
		{-1, 2, -1, 0},
		{0, -1, 2, -1},
		{0, 0, -1, 2},
	})
	exact := m.Eigen()

	vvs, err := Arnoldi(m, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if math.Abs(real(vvs[0].Val)-real(exact[0].Val)) > 1e-3 {
		t.Fatalf("%v, expected %v", vvs[0].Val, exact[0].Val)
	}
	for i, v := range vvs[0].Vec {
		prob := real(v)*real(v) + imag(v)*imag(v)
		e := exact[0].Vec[i]
		eProb := real(e)*real(e) + imag(e)*imag(e)
		if math.Abs(prob-eProb) > 1e-3 {
			t.Fatalf("%d %f %f", i, prob, eProb)
		}
	}
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	m.Run()
}
