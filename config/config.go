// Package config loads the two configuration files of a benchmark: the machine properties (where the binaries and
// data live, and how many physical cores there are) and the sweep settings (which grid to run).
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/hscells/wildbench/grid"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"path/filepath"
	"runtime"
	"strings"
)

// Machine describes the benchmark host.
type Machine struct {
	SVMBinary       string
	AnalysisBinary  string
	DataDir         string
	ResultsDir      string
	PermutationsDir string
	PhysicalCores   int
	Profiler        []string
}

// DefaultMachine lays the benchmark out relative to the working directory.
func DefaultMachine() Machine {
	return Machine{
		SVMBinary:       filepath.Join("bin", "svm"),
		AnalysisBinary:  filepath.Join("bin", "analysis"),
		DataDir:         "data",
		ResultsDir:      "results",
		PermutationsDir: "permutations",
		PhysicalCores:   runtime.NumCPU(),
	}
}

// LoadMachine reads a properties file over the defaults. Recognised keys are bin.svm, bin.analysis, dir.data,
// dir.results, dir.permutations, cpu.physical and profiler.
func LoadMachine(path string) (Machine, error) {
	m := DefaultMachine()
	if len(path) == 0 {
		return m, nil
	}
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return m, errors.Wrapf(err, "could not load machine properties %s", path)
	}
	return machineFromProperties(p, m), nil
}

// ParseMachine reads properties from a string over the defaults.
func ParseMachine(s string) (Machine, error) {
	p, err := properties.LoadString(s)
	if err != nil {
		return Machine{}, err
	}
	return machineFromProperties(p, DefaultMachine()), nil
}

func machineFromProperties(p *properties.Properties, m Machine) Machine {
	m.SVMBinary = p.GetString("bin.svm", m.SVMBinary)
	m.AnalysisBinary = p.GetString("bin.analysis", m.AnalysisBinary)
	m.DataDir = p.GetString("dir.data", m.DataDir)
	m.ResultsDir = p.GetString("dir.results", m.ResultsDir)
	m.PermutationsDir = p.GetString("dir.permutations", m.PermutationsDir)
	m.PhysicalCores = p.GetInt("cpu.physical", m.PhysicalCores)
	if profiler := p.GetString("profiler", ""); len(profiler) > 0 {
		m.Profiler = strings.Fields(profiler)
	}
	return m
}

// Dataset returns the train, test and validation paths of a dataset.
func (m Machine) Dataset(name string) (train, test, validate string) {
	train = filepath.Join(m.DataDir, name)
	return train, train + ".t", train + ".v"
}

// LoadSettings decodes a TOML sweep file over the default settings. Keys that are absent keep their defaults, and
// dataset tables are merged with the built-in ones.
func LoadSettings(path string, m Machine) (grid.Settings, error) {
	s := grid.DefaultSettings(m.PhysicalCores)
	if len(path) == 0 {
		return s, s.Validate()
	}
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return s, errors.Wrapf(err, "could not decode sweep %s", path)
	}
	mergeDatasets(md, s.DatasetTable)
	return s, checkSettings(md, s)
}

// LoadSearchSettings decodes a TOML sweep file for a step parameter search. Datasets need no tuned constants.
func LoadSearchSettings(path string, m Machine) (grid.Settings, error) {
	s := grid.DefaultSettings(m.PhysicalCores)
	if len(path) == 0 {
		return s, s.ValidateGrid()
	}
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return s, errors.Wrapf(err, "could not decode sweep %s", path)
	}
	mergeDatasets(md, s.DatasetTable)
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return s, errors.Errorf("unknown sweep keys: %v", undecoded)
	}
	return s, s.ValidateGrid()
}

// ParseSettings decodes TOML sweep settings from a string.
func ParseSettings(data string, m Machine) (grid.Settings, error) {
	s := grid.DefaultSettings(m.PhysicalCores)
	md, err := toml.Decode(data, &s)
	if err != nil {
		return s, err
	}
	mergeDatasets(md, s.DatasetTable)
	return s, checkSettings(md, s)
}

// mergeDatasets restores the built-in constants of a dataset table that a sweep file only partially overrides. The
// decoder replaces a whole table entry, so any key the file leaves out falls back to the built-in value.
func mergeDatasets(md toml.MetaData, datasets grid.Datasets) {
	for name, ds := range datasets {
		builtin, ok := grid.DefaultDatasets[name]
		if !ok || !md.IsDefined("dataset", name) {
			continue
		}
		if !md.IsDefined("dataset", name, "name") {
			ds.Name = builtin.Name
		}
		if !md.IsDefined("dataset", name, "max_step_size") {
			ds.MaxStepSize = builtin.MaxStepSize
		}
		if !md.IsDefined("dataset", name, "target_accuracy") {
			ds.TargetAccuracy = builtin.TargetAccuracy
		}
		if !md.IsDefined("dataset", name, "step_decay") {
			ds.StepDecay = builtin.StepDecay
		}
		datasets[name] = ds
	}
}

func checkSettings(md toml.MetaData, s grid.Settings) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("unknown sweep keys: %v", undecoded)
	}
	return s.Validate()
}
