// Command run executes a run configuration and persists its artifacts in a
// run directory.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"qground/runner"
)

const (
	fnameEigen  = "eig.csv"
	fnameResult = "result.json"
	fnameDone   = "done.txt"
)

var (
	configPath = flag.String("c", "config.json", "run configuration")
	runDir     = flag.String("d", filepath.Join("runs", "qground"), "run directory")
)

func solve(dir string, cfg runner.Config) (runner.Result, error) {
	donePath := filepath.Join(dir, fnameDone)
	if _, err := os.Stat(donePath); err == nil {
		return readResult(dir)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return runner.Result{}, errors.Wrap(err, "")
	}

	res, err := runner.Run(cfg)
	if err != nil {
		return runner.Result{}, errors.Wrap(err, "")
	}

	if len(res.Energies) > 0 {
		if err := writeEig(dir, res.Energies); err != nil {
			return runner.Result{}, errors.Wrap(err, "")
		}
	}
	if err := writeResult(dir, res); err != nil {
		return runner.Result{}, errors.Wrap(err, "")
	}

	if err := os.WriteFile(donePath, nil, 0644); err != nil {
		return runner.Result{}, errors.Wrap(err, "")
	}
	return res, nil
}

func readResult(dir string) (runner.Result, error) {
	b, err := os.ReadFile(filepath.Join(dir, fnameResult))
	if err != nil {
		return runner.Result{}, errors.Wrap(err, "")
	}
	var res runner.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return runner.Result{}, errors.Wrap(err, "")
	}
	return res, nil
}

func writeResult(dir string, res runner.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(filepath.Join(dir, fnameResult), b, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func writeEig(dir string, energies []float64) error {
	f, err := os.Create(filepath.Join(dir, fnameEigen))
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	row := make([]string, len(energies))
	for j, e := range energies {
		row[j] = strconv.FormatFloat(e, 'f', -1, 64)
	}
	if err1 := w.Write(row); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
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

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	cfg, err := runner.Load(*configPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	res, err := solve(*runDir, cfg)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("%#v", cfg))
	}

	switch cfg.Problem.Type {
	case runner.ProblemExactCover:
		fmt.Printf("problem=%s algorithm=%s energy=%f satisfiable=%t solution=%v\n",
			cfg.Problem.Type, cfg.Algorithm.Name, res.Energy, res.Satisfiable, res.Solution)
	default:
		fmt.Printf("problem=%s algorithm=%s energy=%f total=%f\n",
			cfg.Problem.Type, cfg.Algorithm.Name, res.Energy, res.Total)
	}
	return nil
}
