package results

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"os"
)

// MetricSuffix is appended to a result file name to find its per-epoch metrics.
const MetricSuffix = ".metric"

// Loader reads result files, keeping recently parsed files in memory so charts and summaries of the same file only
// parse it once.
type Loader struct {
	cache *lru.Cache
	Log   logrus.FieldLogger
}

// NewLoader creates a loader that keeps up to size parsed files.
func NewLoader(size int, log logrus.FieldLogger) (*Loader, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{cache: c, Log: log}, nil
}

type rowsKey string
type metricsKey string

// Rows reads every row of a result file.
func (l *Loader) Rows(path string) ([]Row, error) {
	if v, ok := l.cache.Get(rowsKey(path)); ok {
		return v.([]Row), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	l.cache.Add(rowsKey(path), rows)
	return rows, nil
}

// Converged reads the rows of a result file that reached the target accuracy, warning when some did not.
func (l *Loader) Converged(path string) ([]Row, error) {
	rows, err := l.Rows(path)
	if err != nil {
		return nil, err
	}
	kept, dropped := Converged(rows)
	if dropped > 0 {
		l.Log.WithField("dropped", dropped).Warnf("%s has unconverged results!!", path)
	}
	return kept, nil
}

// Metrics reads a per-epoch metric file.
func (l *Loader) Metrics(path string) ([]Metric, error) {
	if v, ok := l.cache.Get(metricsKey(path)); ok {
		return v.([]Metric), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	metrics, err := ReadMetrics(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	l.cache.Add(metricsKey(path), metrics)
	return metrics, nil
}
