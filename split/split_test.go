package split_test

import (
	"fmt"
	"github.com/hscells/wildbench/split"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestReadLinesTerminatesLastLine(t *testing.T) {
	lines, err := split.ReadLines(strings.NewReader("+1 1:0.5\n-1 2:0.25"))
	require.NoError(t, err)
	assert.Equal(t, []string{"+1 1:0.5\n", "-1 2:0.25\n"}, lines)

	lines, err = split.ReadLines(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLinesFraction(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, tc := range []struct {
		n        int
		fraction float64
		want     int
	}{
		{n: 100, fraction: 0.8, want: 80},
		{n: 101, fraction: 0.3, want: 30},
		{n: 7, fraction: 0.5, want: 3},
		{n: 10, fraction: 0, want: 0},
		{n: 10, fraction: 1, want: 10},
		{n: 0, fraction: 0.5, want: 0},
	} {
		lines := make([]string, tc.n)
		for i := range lines {
			lines[i] = fmt.Sprintf("%d\n", i)
		}
		a, b, err := split.Lines(lines, tc.fraction, rng)
		require.NoError(t, err)
		assert.Len(t, a, tc.want, "n=%d fraction=%v", tc.n, tc.fraction)
		assert.Len(t, b, tc.n-tc.want, "n=%d fraction=%v", tc.n, tc.fraction)
	}

	_, _, err := split.Lines(nil, 1.5, rng)
	assert.Equal(t, split.ErrFraction, err)
	_, _, err = split.Lines(nil, -0.1, rng)
	assert.Equal(t, split.ErrFraction, err)
}

func TestFileDisjointAndComplete(t *testing.T) {
	dir, err := ioutil.TempDir("", "split")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	var input []string
	for i := 0; i < 250; i++ {
		input = append(input, fmt.Sprintf("%d 1:%d", i%2*2-1, i))
	}
	in := filepath.Join(dir, "rcv1")
	require.NoError(t, ioutil.WriteFile(in, []byte(strings.Join(input, "\n")), 0644))

	train, validate := filepath.Join(dir, "rcv1.train"), filepath.Join(dir, "rcv1.v")
	n1, n2, err := split.File(0.9, in, train, validate, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, 225, n1)
	assert.Equal(t, 25, n2)

	read := func(path string) []string {
		b, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	}
	a, b := read(train), read(validate)
	assert.Len(t, a, 225)
	assert.Len(t, b, 25)

	seen := make(map[string]bool)
	for _, line := range a {
		seen[line] = true
	}
	for _, line := range b {
		assert.False(t, seen[line], "%q is in both files", line)
	}

	all := append(append([]string(nil), a...), b...)
	sort.Strings(all)
	sort.Strings(input)
	assert.Equal(t, input, all)
}

func TestFileMissingInput(t *testing.T) {
	_, _, err := split.File(0.5, "testdata/missing", "a", "b", rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
