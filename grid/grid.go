package grid

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/xtgo/set"
	"gonum.org/v1/gonum/floats"
	"math"
	"sort"
)

// Algorithms understood by the training binary.
const (
	HogWild   = "HogWild"
	HogWildPP = "HogWild++"
	MyWild    = "MyWild"
)

// Permutation modes. A trial either trains on the data as-is, or on a pre-generated per-cluster permutation.
const (
	PermutationNone    = "none"
	PermutationCluster = "cluster"
)

// Trial is a single line of the training binary's input file.
type Trial struct {
	Algorithm      string
	TestRepeats    int
	Threads        int
	ClusterSize    int
	Epochs         int
	UpdateDelay    int
	TargetAccuracy float64
	StepSize       float64
	StepDecay      float64
	BlockSize      int
	Permutation    string
}

func (t Trial) String() string {
	return fmt.Sprintf("%s threads=%d cluster_size=%d update_delay=%d step_size=%v step_decay=%v permutation=%s",
		t.Algorithm, t.Threads, t.ClusterSize, t.UpdateDelay, t.StepSize, t.StepDecay, t.Permutation)
}

// PermutationSource resolves the path of a cached permutation for a dataset split into clusters over threads. When
// no permutation has been generated, PermutationNone is returned.
type PermutationSource interface {
	Lookup(dataset string, clusters, threads int) string
}

// Settings is the configuration of a sweep.
type Settings struct {
	Datasets           []string       `toml:"datasets"`
	Algorithms         []string       `toml:"algorithms"`
	Threads            []int          `toml:"threads"`
	ClusterSizes       []int          `toml:"cluster_sizes"`
	PhysicalCores      int            `toml:"physical_cores"`
	TestRepeats        int            `toml:"test_repeats"`
	StepDecayTrialsLen int            `toml:"step_decay_trials"`
	BlockSize          int            `toml:"block_size"`
	Permutations       []string       `toml:"permutations"`
	Iterations         map[string]int `toml:"iterations"`
	DatasetTable       Datasets       `toml:"dataset"`
}

// DefaultSettings returns the settings the benchmark ships with.
func DefaultSettings(cores int) Settings {
	iterations := make(map[string]int, len(DefaultIterations))
	for k, v := range DefaultIterations {
		iterations[k] = v
	}
	datasets := make(Datasets, len(DefaultDatasets))
	for k, v := range DefaultDatasets {
		datasets[k] = v
	}
	return Settings{
		Datasets:           []string{"rcv1"},
		Algorithms:         []string{HogWild, HogWildPP, MyWild},
		Threads:            []int{2},
		ClusterSizes:       []int{1},
		PhysicalCores:      cores,
		TestRepeats:        10,
		StepDecayTrialsLen: 1,
		BlockSize:          512,
		Permutations:       []string{PermutationNone},
		Iterations:         iterations,
		DatasetTable:       datasets,
	}
}

// Validate checks that the settings can produce a grid, and that every dataset has a table entry with a step size.
func (s Settings) Validate() error {
	if err := s.ValidateGrid(); err != nil {
		return err
	}
	for _, d := range s.Datasets {
		ds, ok := s.DatasetTable[d]
		if !ok {
			return errors.Errorf("dataset %q has no entry in the dataset table", d)
		}
		if ds.MaxStepSize <= 0 {
			return errors.Errorf("dataset %q needs a positive max_step_size, got %v", d, ds.MaxStepSize)
		}
	}
	return nil
}

// ValidateGrid checks the settings without requiring tuned dataset constants. A step parameter search is run on
// datasets that have none yet.
func (s Settings) ValidateGrid() error {
	if len(s.Datasets) == 0 {
		return errors.New("no datasets configured")
	}
	if s.PhysicalCores <= 0 {
		return errors.Errorf("physical cores must be positive, got %d", s.PhysicalCores)
	}
	if s.StepDecayTrialsLen <= 0 {
		return errors.Errorf("step decay trials must be positive, got %d", s.StepDecayTrialsLen)
	}
	if _, ok := s.Iterations[DefaultKey]; !ok {
		return errors.New("iterations table has no default entry")
	}
	for _, a := range s.Algorithms {
		switch a {
		case HogWild, HogWildPP, MyWild:
		default:
			return errors.Errorf("unknown algorithm %q", a)
		}
	}
	for _, n := range s.Threads {
		if n <= 0 {
			return errors.Errorf("thread count must be positive, got %d", n)
		}
	}
	for _, c := range s.ClusterSizes {
		if c <= 0 {
			return errors.Errorf("cluster size must be positive, got %d", c)
		}
	}
	for _, p := range s.Permutations {
		if p != PermutationNone && p != PermutationCluster {
			return errors.Errorf("unknown permutation mode %q", p)
		}
	}
	return nil
}

// GeneratesPermutations reports whether the settings use anything other than the raw data order.
func (s Settings) GeneratesPermutations() bool {
	for _, p := range s.Permutations {
		if p != PermutationNone {
			return true
		}
	}
	return false
}

// StepDecayTrials returns the step decays to try for a dataset at a thread count. A single thread only ever uses
// the dataset's decay; otherwise the decay is raised to increasing fractional powers.
func StepDecayTrials(decay float64, threads, length int) []float64 {
	if threads == 1 {
		return []float64{decay}
	}
	trials := make([]float64, 0, length)
	for i := 0; i < length*2; i += 2 {
		trials = append(trials, math.Pow(decay, float64(i+1)/float64(length)))
	}
	return trials
}

// UpdateDelays returns the update delays for a number of model replicas. Fewer replicas synchronise less often.
func UpdateDelays(nweights int) []int {
	switch {
	case nweights <= 4:
		return []int{64}
	case nweights <= 10:
		return []int{16}
	default:
		return []int{4}
	}
}

// PhysicalThreads caps a thread count at the number of physical cores.
func PhysicalThreads(threads, cores int) int {
	if threads < cores {
		return threads
	}
	return cores
}

// ClusterSizes returns the cluster sizes to try for an algorithm. HogWild has a single shared model, so it only uses
// a cluster size of one. The other algorithms use the configured sizes that evenly divide the physical threads.
func ClusterSizes(algorithm string, phyThreads int, configured []int) []int {
	if algorithm == HogWild {
		return []int{1}
	}
	var sizes []int
	for _, c := range configured {
		if c > 0 && phyThreads%c == 0 {
			sizes = append(sizes, c)
		}
	}
	return uniq(sizes)
}

func uniq(x []int) []int {
	if len(x) == 0 {
		return x
	}
	data := sort.IntSlice(append([]int(nil), x...))
	sort.Sort(data)
	n := set.Uniq(data)
	return data[:n]
}

// Range returns begin, begin+step, ... up to but excluding end.
func Range(begin, end, step float64) ([]float64, error) {
	if step == 0 || (end-begin)/step < 0 {
		return nil, errors.Errorf("invalid range [%v, %v) with step %v", begin, end, step)
	}
	n := int(math.Ceil((end - begin) / step))
	switch n {
	case 0:
		return nil, nil
	case 1:
		return []float64{begin}, nil
	}
	r := make([]float64, n)
	floats.Span(r, begin, begin+step*float64(n-1))
	return r, nil
}

// Build enumerates the trials for a dataset.
func Build(s Settings, dataset string, perms PermutationSource) []Trial {
	ds := s.DatasetTable.Get(dataset)
	epochs := Epochs(dataset, s.Iterations)

	var trials []Trial
	for _, algorithm := range s.Algorithms {
		for _, threads := range s.Threads {
			phy := PhysicalThreads(threads, s.PhysicalCores)
			for _, clusterSize := range ClusterSizes(algorithm, phy, s.ClusterSizes) {
				clusters := phy / clusterSize
				for _, delay := range UpdateDelays(clusters) {
					for _, decay := range StepDecayTrials(ds.StepDecay, threads, s.StepDecayTrialsLen) {
						for _, permutation := range permutations(s.Permutations, perms, dataset, clusters, phy) {
							trials = append(trials, Trial{
								Algorithm:      algorithm,
								TestRepeats:    s.TestRepeats,
								Threads:        threads,
								ClusterSize:    clusterSize,
								Epochs:         epochs,
								UpdateDelay:    delay,
								TargetAccuracy: ds.TargetAccuracy,
								StepSize:       ds.MaxStepSize,
								StepDecay:      decay,
								BlockSize:      s.BlockSize,
								Permutation:    permutation,
							})
						}
					}
				}
			}
		}
	}
	return trials
}

// permutations resolves the permutation paths for each configured mode. A missing cluster permutation falls back to
// the raw order, and is dropped when the raw order is already part of the sweep.
func permutations(modes []string, perms PermutationSource, dataset string, clusters, threads int) []string {
	if len(modes) == 0 {
		return []string{PermutationNone}
	}
	seen := make(map[string]bool)
	var paths []string
	for _, mode := range modes {
		p := PermutationNone
		if mode == PermutationCluster && perms != nil {
			p = perms.Lookup(dataset, clusters, threads)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// SearchGrid is the cross product of step sizes and step decays for a fixed configuration. It is used to tune the
// step parameters for a dataset.
func SearchGrid(base Trial, stepSizes, stepDecays []float64) []Trial {
	trials := make([]Trial, 0, len(stepSizes)*len(stepDecays))
	for _, size := range stepSizes {
		for _, decay := range stepDecays {
			t := base
			t.StepSize = size
			t.StepDecay = decay
			trials = append(trials, t)
		}
	}
	return trials
}
