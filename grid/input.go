package grid

import (
	"bufio"
	"github.com/pkg/errors"
	"io"
	"strconv"
	"strings"
)

// Exit is the sentinel line that tells the training binary there are no more trials.
const Exit = "exit"

const inputFields = 11

// Line formats a trial the way the training binary parses it.
func (t Trial) Line() string {
	permutation := t.Permutation
	if len(permutation) == 0 {
		permutation = PermutationNone
	}
	return strings.Join([]string{
		t.Algorithm,
		strconv.Itoa(t.TestRepeats),
		strconv.Itoa(t.Threads),
		strconv.Itoa(t.ClusterSize),
		strconv.Itoa(t.Epochs),
		strconv.Itoa(t.UpdateDelay),
		formatFloat(t.TargetAccuracy),
		formatFloat(t.StepSize),
		formatFloat(t.StepDecay),
		strconv.Itoa(t.BlockSize),
		permutation,
	}, " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteInput writes the trials as an input file, terminated by the exit sentinel.
func WriteInput(w io.Writer, trials []Trial) error {
	bw := bufio.NewWriter(w)
	for _, t := range trials {
		if _, err := bw.WriteString(t.Line() + "\n"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString(Exit + "\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// ParseTrial parses a single input line.
func ParseTrial(line string) (Trial, error) {
	f := strings.Fields(line)
	if len(f) != inputFields {
		return Trial{}, errors.Errorf("expected %d fields, got %d", inputFields, len(f))
	}

	var (
		t    = Trial{Algorithm: f[0], Permutation: f[10]}
		ints = []struct {
			dst *int
			src string
		}{
			{&t.TestRepeats, f[1]},
			{&t.Threads, f[2]},
			{&t.ClusterSize, f[3]},
			{&t.Epochs, f[4]},
			{&t.UpdateDelay, f[5]},
			{&t.BlockSize, f[9]},
		}
		fs = []struct {
			dst *float64
			src string
		}{
			{&t.TargetAccuracy, f[6]},
			{&t.StepSize, f[7]},
			{&t.StepDecay, f[8]},
		}
	)
	for _, i := range ints {
		v, err := strconv.Atoi(i.src)
		if err != nil {
			return Trial{}, errors.Wrapf(err, "field %q", i.src)
		}
		*i.dst = v
	}
	for _, x := range fs {
		v, err := strconv.ParseFloat(x.src, 64)
		if err != nil {
			return Trial{}, errors.Wrapf(err, "field %q", x.src)
		}
		*x.dst = v
	}
	return t, nil
}

// ReadInput reads the trials of an input file. Blank lines are skipped and reading stops at the exit sentinel.
func ReadInput(r io.Reader) ([]Trial, error) {
	var trials []Trial
	s := bufio.NewScanner(r)
	n := 0
	for s.Scan() {
		n++
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 {
			continue
		}
		if line == Exit {
			return trials, nil
		}
		t, err := ParseTrial(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
		trials = append(trials, t)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return trials, nil
}
