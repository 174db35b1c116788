// Package wildbench orchestrates benchmark sweeps of parallel SGD training. A sweep writes the parameter grid of each
// dataset to an input file, runs the external training binary over it and collects the result files.
package wildbench

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/hscells/headway"
	"github.com/hscells/wildbench/config"
	"github.com/hscells/wildbench/grid"
	"github.com/hscells/wildbench/runner"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout formats the suffix of a result directory (month, day, hour, minute, second).
const TimestampLayout = "0102-150405"

// ManifestName is the file describing a sweep, written next to its results.
const ManifestName = "manifest.json"

// OutputDir names a result directory, e.g. results/svm_0319-145026.
func OutputDir(base, prefix string, t time.Time) string {
	return filepath.Join(base, fmt.Sprintf("%s_%s", prefix, t.Format(TimestampLayout)))
}

// Sweep contains everything needed to run the training binary over a grid of datasets.
type Sweep struct {
	Settings     grid.Settings
	Machine      config.Machine
	Runner       runner.Runner
	Permutations grid.PermutationSource
	OutputDir    string

	// Build produces the trials of a dataset. By default the grid of the settings is used.
	Build func(dataset string) ([]grid.Trial, error)
	// Files lists the train, test and validation files of a dataset. By default these come from the machine.
	Files func(dataset string) []string

	// HeadwayServer receives progress notifications when set, authenticated with HeadwaySecret.
	HeadwayServer string
	HeadwaySecret string
	Log           logrus.FieldLogger
}

// Manifest records how a sweep was run.
type Manifest struct {
	ID       string         `json:"id"`
	Started  time.Time      `json:"started"`
	Settings grid.Settings  `json:"settings"`
	Machine  config.Machine `json:"machine"`
	Trials   map[string]int `json:"trials"`
}

// Replay builds every dataset's trials from the same input file.
func Replay(path string) func(string) ([]grid.Trial, error) {
	return func(string) ([]grid.Trial, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return grid.ReadInput(f)
	}
}

func (s Sweep) trials(dataset string) ([]grid.Trial, error) {
	if s.Build != nil {
		return s.Build(dataset)
	}
	return grid.Build(s.Settings, dataset, s.Permutations), nil
}

func (s Sweep) files(dataset string) []string {
	if s.Files != nil {
		return s.Files(dataset)
	}
	train, test, validate := s.Machine.Dataset(dataset)
	return []string{train, test, validate}
}

func (s Sweep) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// InputPath is the input file of a dataset.
func (s Sweep) InputPath(dataset string) string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("input_%s.txt", dataset))
}

// OutputPath is the result file of a dataset.
func (s Sweep) OutputPath(dataset string) string {
	return filepath.Join(s.OutputDir, dataset+".csv")
}

// LogPath is the file the binary's console output is copied to.
func (s Sweep) LogPath(dataset string) string {
	return filepath.Join(s.OutputDir, dataset+".log")
}

func (s Sweep) writeManifest(trials map[string]int) error {
	m := Manifest{
		ID:       uuid.New().String(),
		Started:  time.Now(),
		Settings: s.Settings,
		Machine:  s.Machine,
		Trials:   trials,
	}
	b, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(s.OutputDir, ManifestName), b, 0644)
}

func (s Sweep) writeInput(path string, trials []grid.Trial) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := grid.WriteInput(f, trials); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Execute runs the sweep, one dataset after another. Each dataset blocks until the training binary exits. Results are
// sent through c, which is closed once the sweep is done.
func (s Sweep) Execute(c chan Result) {
	defer close(c)
	log := s.log()
	dry := s.Runner.DryRun

	// Build every grid up front so a bad configuration fails before anything runs.
	datasets := s.Settings.Datasets
	grids := make(map[string][]grid.Trial, len(datasets))
	counts := make(map[string]int, len(datasets))
	for _, d := range datasets {
		trials, err := s.trials(d)
		if err != nil {
			c <- Result{Dataset: d, Type: Error, Error: errors.Wrapf(err, "could not build trials for %s", d)}
			return
		}
		grids[d] = trials
		counts[d] = len(trials)
	}

	if !dry {
		if err := os.MkdirAll(s.OutputDir, 0777); err != nil {
			c <- Result{Type: Error, Error: errors.Wrap(err, "could not create output directory")}
			return
		}
		if err := s.writeManifest(counts); err != nil {
			c <- Result{Type: Error, Error: errors.Wrap(err, "could not write manifest")}
			return
		}
	}

	var hw *headway.Client
	if len(s.HeadwayServer) > 0 {
		hw = headway.NewClient(s.HeadwayServer, s.HeadwaySecret)
	}
	name := fmt.Sprintf("wildbench sweep [#%d]", time.Now().Unix())
	notify := func(i int, msg string) {
		if hw == nil {
			return
		}
		if err := hw.Send(float64(i), float64(len(datasets)), name, msg); err != nil {
			log.Warnln(err)
		}
	}

	out := s.Runner.Stdout
	if out == nil {
		out = os.Stdout
	}

	for i, d := range datasets {
		trials := grids[d]
		l := log.WithFields(logrus.Fields{"dataset": d, "trials": len(trials)})
		if len(trials) == 0 {
			l.Warnln("no trials, skipping dataset")
			continue
		}

		input, output := s.InputPath(d), s.OutputPath(d)
		if dry {
			for _, t := range trials {
				fmt.Fprintln(out, t.Line())
			}
		} else if err := s.writeInput(input, trials); err != nil {
			c <- Result{Dataset: d, Type: Error, Error: errors.Wrapf(err, "could not write %s", input)}
			return
		}
		c <- Result{Dataset: d, Trials: trials, Input: input, Output: output, Type: Trials}

		cmd := runner.Train(s.Machine.SVMBinary, s.files(d), output, input)
		if !dry {
			cmd.Tee = s.LogPath(d)
		}
		fmt.Fprintf(out, "Results at %s\n", output)
		err := s.Runner.Run(cmd)
		if exit, ok := err.(*runner.ExitError); ok {
			l.WithField("code", exit.Code).Errorln("training failed, continuing with the next dataset")
			notify(i+1, fmt.Sprintf("[sweep] %s failed: %d", d, exit.Code))
			c <- Result{Dataset: d, Input: input, Output: output, Type: Failed, Error: err}
			continue
		}
		if err != nil {
			c <- Result{Dataset: d, Type: Error, Error: err}
			return
		}
		fmt.Fprintln(out)
		if dry {
			continue
		}
		l.Infoln("dataset completed")
		notify(i+1, fmt.Sprintf("[sweep] %s", d))
		c <- Result{Dataset: d, Trials: trials, Input: input, Output: output, Type: Dispatched}
	}
	notify(len(datasets), "[sweep] done!")
	c <- Result{Type: Done}
}

// Run executes a sweep and collects its results. The first error stops the sweep and is returned; failed datasets
// are reported in the results.
func (s Sweep) Run() ([]Result, error) {
	c := make(chan Result)
	go s.Execute(c)
	var collected []Result
	var err error
	for r := range c {
		if r.Type == Error && err == nil {
			err = r.Error
		}
		collected = append(collected, r)
	}
	return collected, err
}

// Failures lists the datasets whose training failed.
func Failures(rs []Result) []string {
	var failed []string
	for _, r := range rs {
		if r.Type == Failed {
			failed = append(failed, r.Dataset)
		}
	}
	return failed
}

// Summary describes the dispatched and failed datasets for the console.
func Summary(rs []Result) string {
	var b strings.Builder
	for _, r := range rs {
		switch r.Type {
		case Dispatched:
			fmt.Fprintf(&b, "%s: %d trials -> %s\n", r.Dataset, len(r.Trials), r.Output)
		case Failed:
			fmt.Fprintf(&b, "%s: %v\n", r.Dataset, r.Error)
		}
	}
	return b.String()
}
