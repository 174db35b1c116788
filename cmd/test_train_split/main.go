// Package test_train_split randomly splits the lines of a dataset into two files.
package main

import (
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/wildbench/cmd"
	"github.com/hscells/wildbench/split"
	"math/rand"
	"os"
	"time"
)

var (
	name    = "test_train_split"
	version = "17.Oct.2026"
)

type args struct {
	Fraction float64 `help:"fraction of lines written to the first output" arg:"required,positional"`
	Input    string  `help:"dataset to split" arg:"required,positional"`
	Output1  string  `help:"first output file" arg:"required,positional"`
	Output2  string  `help:"second output file" arg:"required,positional"`
	Seed     int64   `help:"random seed (default: current time)"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return cmd.Description(name, version, "Shuffle the lines of a file and split them into two files by a fraction.")
}

func main() {
	var args args
	p, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		panic(err)
	}
	switch err := p.Parse(os.Args[1:]); err {
	case nil:
	case arg.ErrHelp:
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	case arg.ErrVersion:
		fmt.Println(version)
		os.Exit(0)
	default:
		p.WriteUsage(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := cmd.Logger(false)

	seed := args.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	n1, n2, err := split.File(args.Fraction, args.Input, args.Output1, args.Output2, rand.New(rand.NewSource(seed)))
	if err != nil {
		cmd.Fatal(log, err)
	}
	log.Infof("wrote %d lines to %s and %d lines to %s", n1, args.Output1, n2, args.Output2)
}
