// Package output provides different formats of output for benchmark summaries.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"github.com/hscells/wildbench/results"
	"strconv"
)

// SummaryFormatter formats the summaries of a dataset.
type SummaryFormatter func(dataset string, summaries []results.Summary) (string, error)

// Formatters maps format names to formatters.
var Formatters = map[string]SummaryFormatter{
	"json": JsonSummaryFormatter,
	"csv":  CsvSummaryFormatter,
}

type jsonEstimate struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

func newJsonEstimate(e results.Estimate) jsonEstimate {
	return jsonEstimate{N: e.N, Mean: e.Mean, StdDev: e.StdDev, Lower: e.Lower(), Upper: e.Upper()}
}

type jsonSummary struct {
	Algorithm    string       `json:"algorithm"`
	Threads      int          `json:"threads"`
	ClusterSize  int          `json:"cluster_size"`
	Epochs       jsonEstimate `json:"epochs"`
	Time         jsonEstimate `json:"time"`
	TestAccuracy jsonEstimate `json:"test_accuracy"`
}

// JsonSummaryFormatter outputs summaries in a JSON format, keyed by dataset.
func JsonSummaryFormatter(dataset string, summaries []results.Summary) (string, error) {
	s := make([]jsonSummary, len(summaries))
	for i, summary := range summaries {
		s[i] = jsonSummary{
			Algorithm:    summary.Algorithm,
			Threads:      summary.Threads,
			ClusterSize:  summary.ClusterSize,
			Epochs:       newJsonEstimate(summary.Epochs),
			Time:         newJsonEstimate(summary.Time),
			TestAccuracy: newJsonEstimate(summary.TestAccuracy),
		}
	}
	v, err := json.MarshalIndent(map[string][]jsonSummary{dataset: s}, "", "    ")
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CsvSummaryFormatter outputs summaries in CSV format with a header row.
func CsvSummaryFormatter(dataset string, summaries []results.Summary) (string, error) {
	b := bytes.NewBufferString("")
	w := csv.NewWriter(b)
	err := w.Write([]string{"dataset", "algorithm", "threads", "cluster_size", "n",
		"epochs", "epochs_ci", "time", "time_ci", "test_acc", "test_acc_ci"})
	if err != nil {
		return "", err
	}
	for _, s := range summaries {
		err := w.Write([]string{
			dataset,
			s.Algorithm,
			strconv.Itoa(s.Threads),
			strconv.Itoa(s.ClusterSize),
			strconv.Itoa(s.Epochs.N),
			formatFloat(s.Epochs.Mean),
			formatFloat(s.Epochs.CI),
			formatFloat(s.Time.Mean),
			formatFloat(s.Time.CI),
			formatFloat(s.TestAccuracy.Mean),
			formatFloat(s.TestAccuracy.CI),
		})
		if err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}
