package chem

import (
	"flag"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"qground"
)

func TestH2GroundEnergy(t *testing.T) {
	t.Parallel()
	s := H2()
	if s.Name != "H2" {
		t.Fatalf("%s", s.Name)
	}

	e, err := s.GroundEnergy()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// Reference from exact diagonalization of the tapered Hamiltonian.
	if math.Abs(e-(-1.8572750302023804)) > 1e-5 {
		t.Fatalf("%.16f", e)
	}

	total, err := s.TotalEnergy()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if math.Abs(total-(-1.1373060357534008)) > 1e-5 {
		t.Fatalf("%.16f", total)
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	s := H2()
	path := filepath.Join(dir, "h2.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("%+v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if loaded.Name != s.Name || loaded.NuclearRepulsion != s.NuclearRepulsion {
		t.Fatalf("%#v", loaded)
	}
	if loaded.Hamiltonian.Qubits != s.Hamiltonian.Qubits {
		t.Fatalf("%d", loaded.Hamiltonian.Qubits)
	}
	for i, term := range loaded.Hamiltonian.Terms {
		if term != s.Hamiltonian.Terms[i] {
			t.Fatalf("%d %#v, expected %#v", i, term, s.Hamiltonian.Terms[i])
		}
	}
}

// Words with an odd number of Y letters give complex matrix entries, which
// GroundEnergy reports as an error instead of panicking.
func TestGroundEnergyNotReal(t *testing.T) {
	t.Parallel()
	s := System{
		Name: "odd",
		Hamiltonian: qground.Hamiltonian{
			Qubits: 2,
			Terms:  []qground.Term{{Coeff: 1, Word: "YI"}, {Coeff: 1, Word: "ZZ"}},
		},
	}
	if _, err := s.GroundEnergy(); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := s.TotalEnergy(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "bad.json")
	// A term whose word does not match the qubit count.
	b := []byte(`{"name": "bad", "nuclear_repulsion": 0, "hamiltonian": {"qubits": 2, "terms": [{"coeff": 1, "word": "X"}]}}`)
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	m.Run()
}
