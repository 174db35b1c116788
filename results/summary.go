package results

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
	"sort"
)

// Confidence is the level of the intervals reported in summaries.
const Confidence = 0.95

// Estimate is the mean of a sample with a confidence interval half-width.
type Estimate struct {
	N      int
	Mean   float64
	StdDev float64
	CI     float64
}

// Lower is the lower bound of the interval.
func (e Estimate) Lower() float64 { return e.Mean - e.CI }

// Upper is the upper bound of the interval.
func (e Estimate) Upper() float64 { return e.Mean + e.CI }

// NewEstimate computes the mean and the Student's t confidence interval of x.
func NewEstimate(x []float64) Estimate {
	e := Estimate{N: len(x)}
	switch len(x) {
	case 0:
		return e
	case 1:
		e.Mean = x[0]
		return e
	}
	e.Mean, e.StdDev = stat.MeanStdDev(x, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(x) - 1)}
	e.CI = t.Quantile(1-(1-Confidence)/2) * e.StdDev / math.Sqrt(float64(len(x)))
	return e
}

// Group identifies the configuration a trial ran with.
type Group struct {
	Algorithm   string
	Threads     int
	ClusterSize int
}

func (g Group) less(o Group) bool {
	if g.Algorithm != o.Algorithm {
		return g.Algorithm < o.Algorithm
	}
	if g.Threads != o.Threads {
		return g.Threads < o.Threads
	}
	return g.ClusterSize < o.ClusterSize
}

// Summary aggregates the trials of one configuration.
type Summary struct {
	Group
	Epochs       Estimate
	Time         Estimate
	TestAccuracy Estimate
}

// Summarise groups rows by configuration, ordered by algorithm, threads and cluster size.
func Summarise(rows []Row) []Summary {
	type sample struct {
		epochs, time, acc []float64
	}
	samples := make(map[Group]*sample)
	var groups []Group
	for _, r := range rows {
		g := Group{Algorithm: r.Algorithm, Threads: r.Threads, ClusterSize: r.ClusterSize}
		s, ok := samples[g]
		if !ok {
			s = new(sample)
			samples[g] = s
			groups = append(groups, g)
		}
		s.epochs = append(s.epochs, r.Epochs)
		s.time = append(s.time, r.Time)
		s.acc = append(s.acc, r.TestAccuracy)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].less(groups[j]) })

	summaries := make([]Summary, len(groups))
	for i, g := range groups {
		s := samples[g]
		summaries[i] = Summary{
			Group:        g,
			Epochs:       NewEstimate(s.epochs),
			Time:         NewEstimate(s.time),
			TestAccuracy: NewEstimate(s.acc),
		}
	}
	return summaries
}

// Curve is the accuracy of a configuration at each epoch.
type Curve struct {
	Group
	Epochs   []int
	Accuracy []Estimate
}

// Curves groups metrics by configuration and averages the accuracy of repeated trials at each epoch.
func Curves(metrics []Metric) []Curve {
	byGroup := make(map[Group]map[int][]float64)
	var groups []Group
	for _, m := range metrics {
		g := Group{Algorithm: m.Algorithm, Threads: m.Threads, ClusterSize: m.ClusterSize}
		epochs, ok := byGroup[g]
		if !ok {
			epochs = make(map[int][]float64)
			byGroup[g] = epochs
			groups = append(groups, g)
		}
		epochs[m.Epoch] = append(epochs[m.Epoch], m.Accuracy)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].less(groups[j]) })

	curves := make([]Curve, len(groups))
	for i, g := range groups {
		epochs := byGroup[g]
		c := Curve{Group: g, Epochs: make([]int, 0, len(epochs))}
		for e := range epochs {
			c.Epochs = append(c.Epochs, e)
		}
		sort.Ints(c.Epochs)
		c.Accuracy = make([]Estimate, len(c.Epochs))
		for j, e := range c.Epochs {
			c.Accuracy[j] = NewEstimate(epochs[e])
		}
		curves[i] = c
	}
	return curves
}
