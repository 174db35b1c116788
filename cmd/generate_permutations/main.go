// Package generate_permutations pre-generates the data permutations used by clustered runs.
package main

import (
	"github.com/alexflint/go-arg"
	"github.com/hscells/wildbench/cmd"
	"github.com/hscells/wildbench/config"
	"github.com/hscells/wildbench/permutation"
	"github.com/hscells/wildbench/runner"
)

var (
	name    = "generate_permutations"
	version = "17.Oct.2026"
)

type args struct {
	cmd.ModeArgs
	cmd.MachineArgs
	Config   string `help:"path to a TOML sweep file" arg:"-c"`
	Progress bool   `help:"show a progress bar" arg:"-p"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return cmd.Description(name, version, "Generate the permutations of every dataset for every clustered configuration.")
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

	g := permutation.Generator{
		Settings: settings,
		Cache:    permutation.NewCache(m.PermutationsDir),
		Runner:   runner.New(args.Mode(m), log),
		Binary:   m.AnalysisBinary,
		DataPath: func(dataset string) string {
			train, _, _ := m.Dataset(dataset)
			return train
		},
		Log:      log,
		Progress: args.Progress,
	}
	report, err := g.Generate()
	if err != nil {
		cmd.Fatal(log, err)
	}
	log.WithField("cached", report.Cached).
		WithField("failed", len(report.Failures)).
		Infof("generated %d permutations", report.Generated)
}
