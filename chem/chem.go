// Package chem loads molecular qubit Hamiltonians produced by external
// chemistry drivers.
//
// The driver itself, including integral computation and fermion to qubit
// mapping, is outside this module. What crosses the boundary is a JSON
// document with the qubit Hamiltonian terms and the nuclear repulsion
// energy.
package chem

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"qground"
	"qground/mat"
)

// A System is a molecule reduced to its qubit Hamiltonian.
type System struct {
	Name             string              `json:"name"`
	NuclearRepulsion float64             `json:"nuclear_repulsion"`
	Hamiltonian      qground.Hamiltonian `json:"hamiltonian"`
}

// h2JSON is the hydrogen molecule at bond length 0.735 Å in the STO-3G
// basis, tapered to two qubits.
//
//go:embed h2.json
var h2JSON []byte

// H2 returns the hydrogen molecule system.
func H2() System {
	s, err := parse(h2JSON)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return s
}

// Load reads a system from a JSON file.
func Load(path string) (System, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return System{}, errors.Wrap(err, "")
	}
	s, err := parse(b)
	if err != nil {
		return System{}, errors.Wrap(err, fmt.Sprintf("%s", path))
	}
	return s, nil
}

func parse(b []byte) (System, error) {
	var s System
	if err := json.Unmarshal(b, &s); err != nil {
		return System{}, errors.Wrap(err, "")
	}
	if err := s.Hamiltonian.Validate(); err != nil {
		return System{}, errors.Wrap(err, "")
	}
	return s, nil
}

func (s System) Save(path string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// GroundEnergy computes the electronic ground state energy by exact
// diagonalization.
func (s System) GroundEnergy() (float64, error) {
	m := mat.M([][]complex64{{0}})
	buf := mat.M([][]complex64{{0}})
	if err := s.Hamiltonian.Matrix(m, buf); err != nil {
		return 0, errors.Wrap(err, "")
	}
	vvs, err := mat.Eigs(m)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return real(vvs[0].Val), nil
}

// TotalEnergy is the electronic ground state energy plus the nuclear
// repulsion energy.
func (s System) TotalEnergy() (float64, error) {
	e, err := s.GroundEnergy()
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return e + s.NuclearRepulsion, nil
}
