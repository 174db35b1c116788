package wildbench_test

import (
	"bytes"
	"encoding/json"
	"github.com/hscells/wildbench"
	"github.com/hscells/wildbench/config"
	"github.com/hscells/wildbench/grid"
	"github.com/hscells/wildbench/runner"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSVM mimics the training binary: it fails on a8a and otherwise writes one converged row per input line.
const fakeSVM = `#!/bin/sh
echo "Loading completed!"
case "$1" in
  *a8a) exit 2 ;;
esac
grep -v '^exit$' "$5" | while read algorithm repeats threads cluster rest; do
  echo "$algorithm,$threads,$cluster,1,1.5,0.98,0.977,0.976,12,0.125,0.5,0.8,64,0.97713,512"
done > "$4"
`

func newSweep(t *testing.T, mode runner.Mode, datasets ...string) (wildbench.Sweep, *bytes.Buffer, string) {
	dir, err := ioutil.TempDir("", "sweep")
	require.NoError(t, err)

	svm := filepath.Join(dir, "svm")
	require.NoError(t, ioutil.WriteFile(svm, []byte(fakeSVM), 0755))

	m := config.DefaultMachine()
	m.SVMBinary = svm
	m.DataDir = filepath.Join(dir, "data")
	m.PhysicalCores = 4

	s := grid.DefaultSettings(m.PhysicalCores)
	s.Datasets = datasets

	var out bytes.Buffer
	log, _ := test.NewNullLogger()
	r := runner.New(mode, log)
	r.Stdout = &out
	r.Stderr = &out

	return wildbench.Sweep{
		Settings:  s,
		Machine:   m,
		Runner:    r,
		OutputDir: wildbench.OutputDir(filepath.Join(dir, "results"), "svm", time.Now()),
		Log:       log,
	}, &out, dir
}

func types(rs []wildbench.Result) []wildbench.ResultType {
	ts := make([]wildbench.ResultType, len(rs))
	for i, r := range rs {
		ts[i] = r.Type
	}
	return ts
}

func TestOutputDir(t *testing.T) {
	ts := time.Date(2023, time.March, 19, 14, 50, 26, 0, time.UTC)
	assert.Equal(t, filepath.Join("results", "svm_0319-145026"), wildbench.OutputDir("results", "svm", ts))
}

func TestSweepExecute(t *testing.T) {
	sweep, out, dir := newSweep(t, runner.Mode{}, "rcv1")
	defer os.RemoveAll(dir)

	rs, err := sweep.Run()
	require.NoError(t, err)
	assert.Equal(t, []wildbench.ResultType{wildbench.Trials, wildbench.Dispatched, wildbench.Done}, types(rs))

	input, err := ioutil.ReadFile(sweep.InputPath("rcv1"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(input)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "HogWild 10 2 1 150 64 0.97713 0.5 0.8 512 none", lines[0])
	assert.Equal(t, grid.Exit, lines[3])

	csv, err := ioutil.ReadFile(sweep.OutputPath("rcv1"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(csv), "\n"))
	assert.Contains(t, string(csv), "HogWild++,2,1,1,")

	logged, err := ioutil.ReadFile(sweep.LogPath("rcv1"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Loading completed!")
	assert.Contains(t, out.String(), "Results at "+sweep.OutputPath("rcv1"))

	b, err := ioutil.ReadFile(filepath.Join(sweep.OutputDir, wildbench.ManifestName))
	require.NoError(t, err)
	var manifest wildbench.Manifest
	require.NoError(t, json.Unmarshal(b, &manifest))
	assert.NotEmpty(t, manifest.ID)
	assert.Equal(t, 3, manifest.Trials["rcv1"])
}

func TestSweepContinuesAfterFailure(t *testing.T) {
	sweep, _, dir := newSweep(t, runner.Mode{}, "a8a", "rcv1")
	defer os.RemoveAll(dir)

	rs, err := sweep.Run()
	require.NoError(t, err)
	assert.Equal(t, []wildbench.ResultType{
		wildbench.Trials, wildbench.Failed,
		wildbench.Trials, wildbench.Dispatched,
		wildbench.Done,
	}, types(rs))
	assert.Equal(t, []string{"a8a"}, wildbench.Failures(rs))

	exit, ok := rs[1].Error.(*runner.ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exit.Code)
	assert.Contains(t, wildbench.Summary(rs), "rcv1: 3 trials -> ")
}

func TestSweepDryRun(t *testing.T) {
	sweep, out, dir := newSweep(t, runner.Mode{DryRun: true, Verbose: true}, "rcv1")
	defer os.RemoveAll(dir)

	rs, err := sweep.Run()
	require.NoError(t, err)
	assert.Equal(t, []wildbench.ResultType{wildbench.Trials, wildbench.Done}, types(rs))
	assert.Empty(t, wildbench.Summary(rs))

	assert.NoDirExists(t, sweep.OutputDir)
	assert.Contains(t, out.String(), "MyWild 10 2 1 150 64 0.97713 0.5 0.8 512 none")
	assert.Contains(t, out.String(), runner.DryRunMessage)
	assert.Contains(t, out.String(), " -v\n")
}

func TestSweepReplay(t *testing.T) {
	sweep, _, dir := newSweep(t, runner.Mode{}, "rcv1")
	defer os.RemoveAll(dir)

	replay := filepath.Join(dir, "replay.txt")
	require.NoError(t, ioutil.WriteFile(replay, []byte("HogWild 3 1 1 30 1 0.9424 0.01 0.1 1 none\nexit\n"), 0644))
	sweep.Build = wildbench.Replay(replay)

	rs, err := sweep.Run()
	require.NoError(t, err)
	require.Len(t, rs[0].Trials, 1)
	assert.Equal(t, 0.9424, rs[0].Trials[0].TargetAccuracy)
}

func TestSweepBuildError(t *testing.T) {
	sweep, _, dir := newSweep(t, runner.Mode{}, "rcv1")
	defer os.RemoveAll(dir)
	sweep.Build = wildbench.Replay(filepath.Join(dir, "missing.txt"))

	rs, err := sweep.Run()
	require.Error(t, err)
	assert.Equal(t, []wildbench.ResultType{wildbench.Error}, types(rs))
	assert.NoDirExists(t, sweep.OutputDir)
}

func TestSweepHeadway(t *testing.T) {
	sweep, _, dir := newSweep(t, runner.Mode{}, "a8a", "rcv1")
	defer os.RemoveAll(dir)

	var (
		mu       sync.Mutex
		comments []string
		secrets  []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		q := r.URL.Query()
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "2.000000", q.Get("total"))
		assert.Contains(t, q.Get("name"), "wildbench sweep")
		comments = append(comments, q.Get("comment"))
		secrets = append(secrets, q.Get("Secret"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sweep.HeadwayServer = server.URL
	sweep.HeadwaySecret = "s3cret"

	_, err := sweep.Run()
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"[sweep] a8a failed: 2", "[sweep] rcv1", "[sweep] done!"}, comments)
	assert.Equal(t, []string{"s3cret", "s3cret", "s3cret"}, secrets)
}

func TestSweepHeadwayUnavailable(t *testing.T) {
	sweep, _, dir := newSweep(t, runner.Mode{}, "rcv1")
	defer os.RemoveAll(dir)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	sweep.HeadwayServer = server.URL

	rs, err := sweep.Run()
	require.NoError(t, err)
	assert.Equal(t, []wildbench.ResultType{wildbench.Trials, wildbench.Dispatched, wildbench.Done}, types(rs))
}
