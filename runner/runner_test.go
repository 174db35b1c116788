package runner_test

import (
	"bytes"
	"github.com/hscells/wildbench/runner"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

func newRunner(mode runner.Mode) (runner.Runner, *bytes.Buffer) {
	var b bytes.Buffer
	log, _ := test.NewNullLogger()
	r := runner.New(mode, log)
	r.Stdout = &b
	r.Stderr = &b
	return r, &b
}

func TestTrainCommandLine(t *testing.T) {
	r, _ := newRunner(runner.Mode{})
	c := runner.Train("bin/svm", []string{"data/rcv1", "data/rcv1.t", "data/rcv1.v"}, "out/rcv1.csv", "out/input_rcv1.txt")
	assert.Equal(t, "bin/svm data/rcv1 data/rcv1.t data/rcv1.v out/rcv1.csv out/input_rcv1.txt", r.CommandLine(c))

	r, _ = newRunner(runner.Mode{Verbose: true, Profile: true})
	assert.Equal(t, "perf record -g -- bin/svm data/rcv1 data/rcv1.t data/rcv1.v out/rcv1.csv out/input_rcv1.txt -v", r.CommandLine(c))

	r, _ = newRunner(runner.Mode{Profile: true, Profiler: []string{"valgrind", "--tool=callgrind"}})
	assert.True(t, strings.HasPrefix(r.CommandLine(c), "valgrind --tool=callgrind bin/svm "))
}

func TestAnalysisCommandLine(t *testing.T) {
	r, _ := newRunner(runner.Mode{})
	c := runner.Analysis("bin/analysis", 2, 4, "data/rcv1", "permutations/rcv1/2_8.txt")
	assert.Equal(t, "bin/analysis 2 4 data/rcv1 permutations/rcv1/2_8.txt", r.CommandLine(c))
}

func TestDryRunDoesNotExecute(t *testing.T) {
	dir, err := ioutil.TempDir("", "runner")
	require.NoError(t, err)
	marker := filepath.Join(dir, "marker")

	r, out := newRunner(runner.Mode{DryRun: true})
	err = r.Run(runner.Command{Binary: "touch", Args: []string{marker}})
	require.NoError(t, err)

	assert.NoFileExists(t, marker)
	assert.Contains(t, out.String(), "touch "+marker)
	assert.Contains(t, out.String(), runner.DryRunMessage)
}

func TestRunSuccessTee(t *testing.T) {
	dir, err := ioutil.TempDir("", "runner")
	require.NoError(t, err)
	tee := filepath.Join(dir, "rcv1.log")

	r, out := newRunner(runner.Mode{})
	err = r.Run(runner.Command{Binary: "sh", Args: []string{"-c", "echo Loading completed!"}, Tee: tee})
	require.NoError(t, err)

	b, err := ioutil.ReadFile(tee)
	require.NoError(t, err)
	assert.Equal(t, "Loading completed!\n", string(b))
	assert.Contains(t, out.String(), "Loading completed!")
}

func TestRunNonZeroExit(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := runner.New(runner.Mode{}, log)
	r.Stdout = ioutil.Discard

	err := r.Run(runner.Command{Binary: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)

	exit, ok := err.(*runner.ExitError)
	require.True(t, ok)
	assert.Equal(t, 3, exit.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRunMissingBinary(t *testing.T) {
	r, _ := newRunner(runner.Mode{})
	err := r.Run(runner.Command{Binary: "./definitely-not-a-binary"})
	require.Error(t, err)
	_, ok := err.(*runner.ExitError)
	assert.False(t, ok)
}
