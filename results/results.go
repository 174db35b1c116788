// Package results reads the CSV files written by the training binary.
package results

import (
	"encoding/csv"
	"github.com/pkg/errors"
	"io"
	"strconv"
)

// Result files have no header. Older binaries did not write the block size column.
const (
	resultColumns       = 15
	legacyResultColumns = 14
	metricColumns       = 5
)

// Row is a single completed trial.
type Row struct {
	Algorithm        string
	Threads          int
	ClusterSize      int
	Converged        bool
	Time             float64
	TrainAccuracy    float64
	ValidateAccuracy float64
	TestAccuracy     float64
	Epochs           float64
	EpochTime        float64
	StepSize         float64
	StepDecay        float64
	UpdateDelay      int
	TargetAccuracy   float64
	BlockSize        int
}

// Metric is the validation accuracy of a trial after an epoch.
type Metric struct {
	Algorithm   string
	Threads     int
	ClusterSize int
	Epoch       int
	Accuracy    float64
}

type fieldParser struct {
	record []string
	err    error
}

func (p *fieldParser) int(i int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.record[i])
	if err != nil {
		p.err = errors.Wrapf(err, "column %d", i+1)
	}
	return v
}

func (p *fieldParser) float(i int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.record[i], 64)
	if err != nil {
		p.err = errors.Wrapf(err, "column %d", i+1)
	}
	return v
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ReadRows parses a result file.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := newReader(r)
	var rows []Row
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if len(record) != resultColumns && len(record) != legacyResultColumns {
			return nil, errors.Errorf("line %d: expected %d columns, got %d", line, resultColumns, len(record))
		}
		p := &fieldParser{record: record}
		row := Row{
			Algorithm:        record[0],
			Threads:          p.int(1),
			ClusterSize:      p.int(2),
			Converged:        p.int(3) == 1,
			Time:             p.float(4),
			TrainAccuracy:    p.float(5),
			ValidateAccuracy: p.float(6),
			TestAccuracy:     p.float(7),
			Epochs:           p.float(8),
			EpochTime:        p.float(9),
			StepSize:         p.float(10),
			StepDecay:        p.float(11),
			UpdateDelay:      p.int(12),
			TargetAccuracy:   p.float(13),
		}
		if len(record) == resultColumns {
			row.BlockSize = p.int(14)
		}
		if p.err != nil {
			return nil, errors.Wrapf(p.err, "line %d", line)
		}
		rows = append(rows, row)
	}
}

// ReadMetrics parses a per-epoch metric file.
func ReadMetrics(r io.Reader) ([]Metric, error) {
	cr := newReader(r)
	var metrics []Metric
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return metrics, nil
		}
		if err != nil {
			return nil, err
		}
		if len(record) != metricColumns {
			return nil, errors.Errorf("line %d: expected %d columns, got %d", line, metricColumns, len(record))
		}
		p := &fieldParser{record: record}
		m := Metric{
			Algorithm:   record[0],
			Threads:     p.int(1),
			ClusterSize: p.int(2),
			Epoch:       p.int(3),
			Accuracy:    p.float(4),
		}
		if p.err != nil {
			return nil, errors.Wrapf(p.err, "line %d", line)
		}
		metrics = append(metrics, m)
	}
}

// Converged drops the rows of trials that did not reach the target accuracy. The number of dropped rows is returned
// so callers can warn about them.
func Converged(rows []Row) ([]Row, int) {
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Converged {
			kept = append(kept, r)
		}
	}
	return kept, len(rows) - len(kept)
}
