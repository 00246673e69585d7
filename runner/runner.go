// Package runner executes declarative run configurations, pairing a
// problem with an algorithm and a matrix backend.
package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"qground"
	"qground/chem"
	"qground/cover"
	"qground/mat"
)

// Problem types.
const (
	ProblemExactCover  = "exact_cover"
	ProblemHamiltonian = "hamiltonian"
)

// Algorithms.
const (
	AlgoExactEigensolver = "exact_eigensolver"
	AlgoArnoldi          = "arnoldi"
	AlgoGradientDescent  = "gradient_descent"
	AlgoBruteForce       = "brute_force"
	AlgoSAT              = "sat"
)

// Matrix backends.
const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
)

type Config struct {
	Problem   ProblemConfig   `json:"problem"`
	Algorithm AlgorithmConfig `json:"algorithm"`
	Backend   BackendConfig   `json:"backend"`
}

type ProblemConfig struct {
	Type string `json:"type"`
	// Input is the path of the problem file. For hamiltonian problems it
	// may be empty, in which case the embedded hydrogen system is used.
	Input string `json:"input"`
}

type AlgorithmConfig struct {
	Name string `json:"name"`
}

type BackendConfig struct {
	// Name is the matrix backend, memory by default.
	Name string `json:"name"`
	// Path is the database file of the disk backend. A temporary file is
	// used when empty.
	Path string `json:"path"`
}

// A Result reports the outcome of a run.
type Result struct {
	// Energy is the lowest eigenvalue found, or the lowest Ising penalty
	// for search algorithms.
	Energy float64 `json:"energy"`
	// Total is Energy shifted by the nuclear repulsion, for molecular
	// problems.
	Total float64 `json:"total_energy,omitempty"`
	// Energies are the smallest eigenvalues, when the algorithm computes
	// more than one.
	Energies []float64 `json:"energies,omitempty"`
	// Solution is the inclusion vector, for exact cover problems.
	Solution []int `json:"solution,omitempty"`
	// Satisfiable reports whether Solution is an exact cover.
	Satisfiable bool `json:"satisfiable"`
}

// Load reads a configuration from a JSON file.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("%s", path))
	}
	return cfg, nil
}

// Run executes the configuration.
func Run(cfg Config) (Result, error) {
	switch cfg.Problem.Type {
	case ProblemExactCover:
		ins, err := cover.Load(cfg.Problem.Input)
		if err != nil {
			return Result{}, errors.Wrap(err, "")
		}
		return runCover(cfg, ins)
	case ProblemHamiltonian:
		var sys chem.System
		switch cfg.Problem.Input {
		case "":
			sys = chem.H2()
		default:
			var err error
			sys, err = chem.Load(cfg.Problem.Input)
			if err != nil {
				return Result{}, errors.Wrap(err, "")
			}
		}
		return runHamiltonian(cfg, sys)
	default:
		return Result{}, errors.Errorf("unknown problem %q", cfg.Problem.Type)
	}
}

func runCover(cfg Config, ins *cover.Instance) (Result, error) {
	switch cfg.Algorithm.Name {
	case AlgoBruteForce, AlgoSAT, AlgoExactEigensolver, AlgoArnoldi, AlgoGradientDescent:
	default:
		return Result{}, errors.Errorf("unknown algorithm %q", cfg.Algorithm.Name)
	}
	if len(ins.Subsets) == 0 {
		// An empty collection covers nothing.
		return Result{}, nil
	}

	switch cfg.Algorithm.Name {
	case AlgoBruteForce:
		if a, ok := ins.BruteForce(); ok {
			return Result{Energy: 0, Solution: a, Satisfiable: true}, nil
		}
		_, p := ins.MinPenalty()
		return Result{Energy: float64(p)}, nil
	case AlgoSAT:
		if a, ok := ins.SolveSAT(); ok {
			return Result{Energy: float64(ins.Penalty(a)), Solution: a, Satisfiable: true}, nil
		}
		_, p := ins.MinPenalty()
		return Result{Energy: float64(p)}, nil
	case AlgoExactEigensolver, AlgoArnoldi, AlgoGradientDescent:
		vvs, err := eigenpairs(cfg, ins.Ising())
		if err != nil {
			return Result{}, errors.Wrap(err, "")
		}

		ground := vvs[0]
		a := ins.Decode(qground.Dominant(qground.Probabilities(ground.Vec)))
		res := Result{
			Energy:      real(ground.Val),
			Solution:    a,
			Satisfiable: ins.Check(a),
		}
		for _, vv := range vvs[:min(len(vvs), 3)] {
			res.Energies = append(res.Energies, real(vv.Val))
		}
		return res, nil
	default:
		return Result{}, errors.Errorf("unknown algorithm %q", cfg.Algorithm.Name)
	}
}

func runHamiltonian(cfg Config, sys chem.System) (Result, error) {
	switch cfg.Algorithm.Name {
	case AlgoExactEigensolver, AlgoArnoldi, AlgoGradientDescent:
	default:
		return Result{}, errors.Errorf("algorithm %q does not apply to hamiltonians", cfg.Algorithm.Name)
	}

	vvs, err := eigenpairs(cfg, sys.Hamiltonian)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}

	res := Result{Energy: real(vvs[0].Val)}
	res.Total = res.Energy + sys.NuclearRepulsion
	for _, vv := range vvs[:min(len(vvs), 3)] {
		res.Energies = append(res.Energies, real(vv.Val))
	}
	return res, nil
}

// eigenpairs builds the Hamiltonian matrix on the configured backend and
// solves it with the configured algorithm.
func eigenpairs(cfg Config, h qground.Hamiltonian) ([]mat.ValVec, error) {
	var m mat.Matrix
	switch cfg.Backend.Name {
	case "", BackendMemory:
		m = mat.M([][]complex64{{0}})
	case BackendDisk:
		path := cfg.Backend.Path
		if path == "" {
			dir, err := os.MkdirTemp("", "")
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			defer os.RemoveAll(dir)
			path = filepath.Join(dir, "hamiltonian.db")
		}
		dm, err := mat.NewDisk(path)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		defer dm.Close()
		m = dm
	default:
		return nil, errors.Errorf("unknown backend %q", cfg.Backend.Name)
	}

	buf := mat.M([][]complex64{{0}})
	if err := h.Matrix(m, buf); err != nil {
		return nil, errors.Wrap(err, "")
	}
	coo := m.COO()

	switch cfg.Algorithm.Name {
	case AlgoExactEigensolver:
		vvs, err := mat.Eigs(coo)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return vvs, nil
	case AlgoArnoldi:
		vvs, err := mat.Arnoldi(coo, 1)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return vvs, nil
	case AlgoGradientDescent:
		vv, err := mat.GradientDescent(coo)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return []mat.ValVec{vv}, nil
	default:
		return nil, errors.Errorf("unknown algorithm %q", cfg.Algorithm.Name)
	}
}
