// Package grid builds the parameter grids that are fed to the training binary. A grid is a list of trials, each of
// which becomes one line of the binary's input file.
package grid

import "sort"

// DefaultKey is the key used for fallback values in the per-dataset tables.
const DefaultKey = "default"

// Dataset holds the tuned constants for a single dataset.
type Dataset struct {
	Name           string  `toml:"name"`
	MaxStepSize    float64 `toml:"max_step_size"`
	TargetAccuracy float64 `toml:"target_accuracy"`
	StepDecay      float64 `toml:"step_decay"`
}

// Datasets maps a dataset name to its constants.
type Datasets map[string]Dataset

var (
	// DefaultDatasets are the datasets the benchmark has been tuned against.
	DefaultDatasets = Datasets{
		"a8a":     {Name: "a8a", MaxStepSize: 5e-01, TargetAccuracy: 0.845374, StepDecay: 0.8},
		"covtype": {Name: "covtype", MaxStepSize: 5e-03, TargetAccuracy: 0.76291, StepDecay: 0.85},
		"webspam": {Name: "webspam", MaxStepSize: 2e-01, TargetAccuracy: 0.92700, StepDecay: 0.8},
		"music":   {Name: "music", MaxStepSize: 5e-08, StepDecay: 0.8},
		"rcv1":    {Name: "rcv1", MaxStepSize: 5e-01, TargetAccuracy: 0.97713, StepDecay: 0.8},
		"epsilon": {Name: "epsilon", MaxStepSize: 1e-01, TargetAccuracy: 0.89740, StepDecay: 0.85},
		"news20":  {Name: "news20", MaxStepSize: 5e-01, TargetAccuracy: 0.96425, StepDecay: 0.8},
	}

	// DefaultIterations is the maximum number of epochs per dataset.
	DefaultIterations = map[string]int{
		DefaultKey: 150,
		"epsilon":  75,
	}
)

const (
	defaultStepDecay = 0.5
	// The binary stops as soon as the target is reached, so an unknown target means "never stop early".
	defaultTargetAccuracy = 1.0
)

// Get returns the constants for a dataset. Unknown datasets receive the fallback step decay and target accuracy.
func (d Datasets) Get(name string) Dataset {
	ds, ok := d[name]
	if !ok {
		ds = Dataset{Name: name}
	}
	if len(ds.Name) == 0 {
		ds.Name = name
	}
	if ds.StepDecay == 0 {
		ds.StepDecay = defaultStepDecay
	}
	if ds.TargetAccuracy == 0 {
		ds.TargetAccuracy = defaultTargetAccuracy
	}
	return ds
}

// Names lists the dataset names in lexical order.
func (d Datasets) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Epochs returns the number of epochs for a dataset, falling back to the default entry of the iterations table.
func Epochs(dataset string, iterations map[string]int) int {
	if e, ok := iterations[dataset]; ok {
		return e
	}
	return iterations[DefaultKey]
}
