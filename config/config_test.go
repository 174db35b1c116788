package config

import (
	"github.com/hscells/wildbench/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMachine(t *testing.T) {
	m, err := ParseMachine(`
bin.svm = /opt/psgd/svm
dir.data = /scratch/data
cpu.physical = 32
profiler = valgrind --tool=callgrind
`)
	require.NoError(t, err)
	assert.Equal(t, "/opt/psgd/svm", m.SVMBinary)
	assert.Equal(t, filepath.Join("bin", "analysis"), m.AnalysisBinary)
	assert.Equal(t, 32, m.PhysicalCores)
	assert.Equal(t, []string{"valgrind", "--tool=callgrind"}, m.Profiler)

	train, test, validate := m.Dataset("rcv1")
	assert.Equal(t, "/scratch/data/rcv1", train)
	assert.Equal(t, "/scratch/data/rcv1.t", test)
	assert.Equal(t, "/scratch/data/rcv1.v", validate)
}

func TestLoadMachineEmptyPath(t *testing.T) {
	m, err := LoadMachine("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMachine(), m)
}

func TestLoadMachineMissingFile(t *testing.T) {
	_, err := LoadMachine(filepath.Join(os.TempDir(), "wildbench-does-not-exist.properties"))
	assert.Error(t, err)
}

func TestParseSettings(t *testing.T) {
	m := DefaultMachine()
	m.PhysicalCores = 16
	s, err := ParseSettings(`
datasets = ["rcv1", "epsilon", "news21"]
algorithms = ["HogWild++", "MyWild"]
threads = [4, 8, 16, 32]
cluster_sizes = [1, 2, 4]
step_decay_trials = 2
permutations = ["none", "cluster"]

[iterations]
news21 = 20

[dataset.news21]
max_step_size = 0.25
target_accuracy = 0.9
`, m)
	require.NoError(t, err)

	assert.Equal(t, 16, s.PhysicalCores)
	assert.Equal(t, []int{4, 8, 16, 32}, s.Threads)
	assert.Equal(t, 20, grid.Epochs("news21", s.Iterations))
	assert.Equal(t, 75, grid.Epochs("epsilon", s.Iterations))
	assert.Equal(t, 150, grid.Epochs("rcv1", s.Iterations))
	assert.True(t, s.GeneratesPermutations())

	news := s.DatasetTable.Get("news21")
	assert.Equal(t, 0.25, news.MaxStepSize)
	assert.Equal(t, 0.5, news.StepDecay)
	assert.Equal(t, 0.97713, s.DatasetTable.Get("rcv1").TargetAccuracy)
}

func TestParseSettingsRejectsUnknownKeys(t *testing.T) {
	_, err := ParseSettings(`thread = [4]`, DefaultMachine())
	assert.Error(t, err)
}

func TestParseSettingsRejectsInvalidGrid(t *testing.T) {
	_, err := ParseSettings(`algorithms = ["SlowWild"]`, DefaultMachine())
	assert.Error(t, err)
}

func TestParseSettingsPartialDatasetOverride(t *testing.T) {
	s, err := ParseSettings(`
[dataset.rcv1]
max_step_size = 0.3
`, DefaultMachine())
	require.NoError(t, err)

	rcv1 := s.DatasetTable.Get("rcv1")
	assert.Equal(t, 0.3, rcv1.MaxStepSize)
	assert.Equal(t, 0.97713, rcv1.TargetAccuracy)
	assert.Equal(t, 0.8, rcv1.StepDecay)
	assert.Equal(t, "rcv1", rcv1.Name)
	assert.Equal(t, 0.85, s.DatasetTable.Get("covtype").StepDecay)
}

func TestParseSettingsRejectsUntunedDataset(t *testing.T) {
	_, err := ParseSettings(`datasets = ["rcv"]`, DefaultMachine())
	assert.Error(t, err)
}

func TestLoadSearchSettingsAllowsUntunedDataset(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "search.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("datasets = [\"kdd\"]\n"), 0644))

	s, err := LoadSearchSettings(path, DefaultMachine())
	require.NoError(t, err)
	assert.Equal(t, []string{"kdd"}, s.Datasets)

	_, err = LoadSettings(path, DefaultMachine())
	assert.Error(t, err)
}

func TestLoadSettingsFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "sweep.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("datasets = [\"a8a\"]\ntest_repeats = 3\n"), 0644))

	s, err := LoadSettings(path, DefaultMachine())
	require.NoError(t, err)
	assert.Equal(t, []string{"a8a"}, s.Datasets)
	assert.Equal(t, 3, s.TestRepeats)
	assert.Equal(t, 512, s.BlockSize)
}
