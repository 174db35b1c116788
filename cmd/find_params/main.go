// Package find_params searches the step size and step decay of a single-threaded HogWild run.
package main

import (
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/wildbench"
	"github.com/hscells/wildbench/cmd"
	"github.com/hscells/wildbench/config"
	"github.com/hscells/wildbench/grid"
	"github.com/hscells/wildbench/runner"
	"path/filepath"
	"time"
)

var (
	name    = "find_params"
	version = "17.Oct.2026"
)

type param struct {
	begin float64
	end   float64
	step  float64
}

var (
	stepSize  = param{0.01, 0.04, 0.01}
	stepDecay = param{0.1, 1, 0.2}
)

type args struct {
	cmd.ModeArgs
	cmd.MachineArgs
	Config      string  `help:"path to a TOML sweep file (only the datasets are used)" arg:"-c"`
	Epochs      int     `help:"maximum number of epochs" default:"30"`
	Repeats     int     `help:"number of repeats per trial" default:"3"`
	TargetScore float64 `help:"accuracy at which training stops" default:"0.9424"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return cmd.Description(name, version, "Search the step size and step decay for each dataset.")
}

func main() {
	var args args
	arg.MustParse(&args)

	log := cmd.Logger(args.Verbose)

	m, err := config.LoadMachine(args.Machine)
	if err != nil {
		cmd.Fatal(log, err)
	}
	settings, err := config.LoadSearchSettings(args.Config, m)
	if err != nil {
		cmd.Fatal(log, err)
	}

	sizes, err := grid.Range(stepSize.begin, stepSize.end, stepSize.step)
	if err != nil {
		cmd.Fatal(log, err)
	}
	decays, err := grid.Range(stepDecay.begin, stepDecay.end, stepDecay.step)
	if err != nil {
		cmd.Fatal(log, err)
	}

	base := grid.Trial{
		Algorithm:      grid.HogWild,
		TestRepeats:    args.Repeats,
		Threads:        1,
		ClusterSize:    1,
		Epochs:         args.Epochs,
		UpdateDelay:    1,
		TargetAccuracy: args.TargetScore,
		BlockSize:      1,
		Permutation:    grid.PermutationNone,
	}

	sweep := wildbench.Sweep{
		Settings:  settings,
		Machine:   m,
		Runner:    runner.New(args.Mode(m), log),
		OutputDir: wildbench.OutputDir(m.ResultsDir, "best_svm", time.Now()),
		Build: func(string) ([]grid.Trial, error) {
			return grid.SearchGrid(base, sizes, decays), nil
		},
		// The test set doubles as the validation set while searching.
		Files: func(dataset string) []string {
			train := filepath.Join(m.DataDir, dataset)
			return []string{train, train + ".t", train + ".t"}
		},
		Log: log,
	}

	rs, err := sweep.Run()
	fmt.Print(wildbench.Summary(rs))
	if err != nil {
		cmd.Fatal(log, err)
	}
}
