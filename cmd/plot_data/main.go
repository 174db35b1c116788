// Package plot_data renders the charts of benchmark result files and prints a summary of each.
package main

import (
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/wildbench/cmd"
	"github.com/hscells/wildbench/output"
	"github.com/hscells/wildbench/plot"
	"github.com/hscells/wildbench/results"
	"path/filepath"
	"strings"
)

var (
	name    = "plot_data"
	version = "17.Oct.2026"
)

type args struct {
	Results   string   `help:"directory containing <dataset>.csv result files" arg:"required,positional"`
	Datasets  []string `help:"datasets to plot (default: every result file in the directory)" arg:"-d,separate"`
	Summary   string   `help:"summary format (json/csv)" arg:"-s" default:"csv"`
	NoMetrics bool     `help:"only plot the iterations chart"`
	Verbose   bool     `arg:"-v"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return cmd.Description(name, version, "Plot the iterations and accuracy of benchmark results.")
}

func main() {
	var args args
	arg.MustParse(&args)

	log := cmd.Logger(args.Verbose)

	formatter, ok := output.Formatters[args.Summary]
	if !ok {
		log.Fatalf("unknown summary format %s", args.Summary)
	}

	datasets := args.Datasets
	if len(datasets) == 0 {
		files, err := filepath.Glob(filepath.Join(args.Results, "*.csv"))
		if err != nil {
			cmd.Fatal(log, err)
		}
		for _, f := range files {
			datasets = append(datasets, strings.TrimSuffix(filepath.Base(f), ".csv"))
		}
	}

	loader, err := results.NewLoader(2*len(datasets)+1, log)
	if err != nil {
		cmd.Fatal(log, err)
	}
	p := plot.Plotter{Loader: loader}

	for _, d := range datasets {
		path := filepath.Join(args.Results, d+".csv")
		var rows []results.Row
		if args.NoMetrics {
			rows, err = p.Data(d, path)
		} else {
			rows, err = p.All(d, path)
		}
		if err != nil {
			log.WithField("dataset", d).Errorln(err)
			continue
		}

		s, err := formatter(d, results.Summarise(rows))
		if err != nil {
			cmd.Fatal(log, err)
		}
		fmt.Println(s)
	}
}
