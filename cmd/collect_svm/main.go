// Package collect_svm runs the training binary over the parameter grid of every configured dataset.
package main

import (
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/wildbench"
	"github.com/hscells/wildbench/cmd"
	"github.com/hscells/wildbench/config"
	"github.com/hscells/wildbench/permutation"
	"github.com/hscells/wildbench/runner"
	"time"
)

var (
	name    = "collect_svm"
	version = "17.Oct.2026"
)

type args struct {
	cmd.ModeArgs
	cmd.MachineArgs
	Config        string `help:"path to a TOML sweep file" arg:"-c"`
	Input         string `help:"replay an existing input file instead of building the grid" arg:"-i"`
	Headway       string `help:"headway server to send progress to"`
	HeadwaySecret string `help:"secret the headway server authenticates with" arg:"env:HEADWAY_SECRET"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return cmd.Description(name, version, "Run the SVM training binary over a parameter grid, one dataset at a time.")
}

func main() {
	var args args
	arg.MustParse(&args)

	log := cmd.Logger(args.Verbose)

	m, err := config.LoadMachine(args.Machine)
	if err != nil {
		cmd.Fatal(log, err)
	}
	settings, err := config.LoadSettings(args.Config, m)
	if err != nil {
		cmd.Fatal(log, err)
	}

	mode := args.Mode(m)
	sweep := wildbench.Sweep{
		Settings:      settings,
		Machine:       m,
		Runner:        runner.New(mode, log),
		Permutations:  permutation.NewCache(m.PermutationsDir),
		OutputDir:     wildbench.OutputDir(m.ResultsDir, "svm", time.Now()),
		HeadwayServer: args.Headway,
		HeadwaySecret: args.HeadwaySecret,
		Log:           log,
	}
	if len(args.Input) > 0 {
		sweep.Build = wildbench.Replay(args.Input)
	}

	rs, err := sweep.Run()
	fmt.Print(wildbench.Summary(rs))
	if err != nil {
		cmd.Fatal(log, err)
	}
	if failed := wildbench.Failures(rs); len(failed) > 0 {
		log.Warnf("training failed for %v", failed)
	}
}
