// Package split randomly partitions the lines of a dataset into two files, e.g. a training and a validation set.
package split

import (
	"bufio"
	"github.com/pkg/errors"
	"io"
	"math/rand"
	"os"
)

// ErrFraction is returned for fractions outside [0, 1].
var ErrFraction = errors.New("fraction must be between 0 and 1")

// ReadLines reads every line of r. Each returned line ends with a newline, including the last one.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if line[len(line)-1] != '\n' {
				line += "\n"
			}
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Lines shuffles lines in place and splits them so that the first part holds int(len(lines)*fraction) lines.
func Lines(lines []string, fraction float64, rng *rand.Rand) ([]string, []string, error) {
	if fraction < 0 || fraction > 1 {
		return nil, nil, ErrFraction
	}
	rng.Shuffle(len(lines), func(i, j int) {
		lines[i], lines[j] = lines[j], lines[i]
	})
	index := int(float64(len(lines)) * fraction)
	return lines[:index], lines[index:], nil
}

// File splits the input file into two output files.
func File(fraction float64, input, output1, output2 string, rng *rand.Rand) (int, int, error) {
	if fraction < 0 || fraction > 1 {
		return 0, 0, ErrFraction
	}
	f, err := os.Open(input)
	if err != nil {
		return 0, 0, err
	}
	lines, err := ReadLines(f)
	f.Close()
	if err != nil {
		return 0, 0, errors.Wrapf(err, "could not read %s", input)
	}

	a, b, err := Lines(lines, fraction, rng)
	if err != nil {
		return 0, 0, err
	}
	if err := save(a, output1); err != nil {
		return 0, 0, err
	}
	if err := save(b, output2); err != nil {
		return 0, 0, err
	}
	return len(a), len(b), nil
}

func save(lines []string, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			f.Close()
			return errors.Wrapf(err, "could not write %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "could not write %s", path)
	}
	return f.Close()
}
