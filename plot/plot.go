// Package plot renders the charts of a benchmark run: the number of epochs needed to converge as the thread count
// grows, and the validation accuracy after each epoch.
package plot

import (
	"fmt"
	"github.com/hscells/wildbench/results"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"os"
	"path/filepath"
	"sort"
)

const (
	// DPI of saved charts.
	DPI = 300
	// Width and Height of saved charts.
	Width  = 6.4 * vg.Inch
	Height = 4.8 * vg.Inch
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

// errorPoints is a series with a confidence interval around each point.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func newErrorPoints(x []float64, y []results.Estimate) errorPoints {
	pts := errorPoints{
		XYs:     make(plotter.XYs, len(x)),
		YErrors: make(plotter.YErrors, len(x)),
	}
	for i := range x {
		pts.XYs[i].X = x[i]
		pts.XYs[i].Y = y[i].Mean
		pts.YErrors[i].Low = y[i].CI
		pts.YErrors[i].High = y[i].CI
	}
	return pts
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func addSeries(p *plot.Plot, i int, label string, pts errorPoints) error {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.Color = plotutil.Color(i)
	l.Width = vg.Points(1.5)

	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(i)

	p.Add(l, bars)
	p.Legend.Add(label, l)
	return nil
}

// Iterations charts the mean number of epochs against the thread count, one line per algorithm.
func Iterations(dataset string, rows []results.Row) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	byAlgorithm := make(map[string]map[int][]float64)
	for _, r := range rows {
		threads, ok := byAlgorithm[r.Algorithm]
		if !ok {
			threads = make(map[int][]float64)
			byAlgorithm[r.Algorithm] = threads
		}
		threads[r.Threads] = append(threads[r.Threads], r.Epochs)
	}
	algorithms := make([]string, 0, len(byAlgorithm))
	for a := range byAlgorithm {
		algorithms = append(algorithms, a)
	}
	sort.Strings(algorithms)

	p := newPlot(fmt.Sprintf("%s Iterations", dataset), "threads", "epochs")
	for i, a := range algorithms {
		threads := make([]int, 0, len(byAlgorithm[a]))
		for n := range byAlgorithm[a] {
			threads = append(threads, n)
		}
		sort.Ints(threads)

		x := make([]float64, len(threads))
		y := make([]results.Estimate, len(threads))
		for j, n := range threads {
			x[j] = float64(n)
			y[j] = results.NewEstimate(byAlgorithm[a][n])
		}
		if err := addSeries(p, i, a, newErrorPoints(x, y)); err != nil {
			return nil, errors.Wrapf(err, "could not plot %s", a)
		}
	}
	return p, nil
}

// Label names a configuration the way the accuracy chart's legend shows it.
func Label(g results.Group) string {
	return fmt.Sprintf("(%s, %d, %d)", g.Algorithm, g.Threads, g.ClusterSize)
}

// Accuracy charts the accuracy after each epoch, one line per configuration.
func Accuracy(dataset string, curves []results.Curve) (*plot.Plot, error) {
	if len(curves) == 0 {
		return nil, ErrNoData
	}
	p := newPlot(fmt.Sprintf("%s Accuracy by epoch", dataset), "epoch", "accuracy")
	for i, c := range curves {
		x := make([]float64, len(c.Epochs))
		for j, e := range c.Epochs {
			x[j] = float64(e)
		}
		if err := addSeries(p, i, Label(c.Group), newErrorPoints(x, c.Accuracy)); err != nil {
			return nil, errors.Wrapf(err, "could not plot %s", Label(c.Group))
		}
	}
	return p, nil
}

// Save writes a chart as a PNG.
func Save(p *plot.Plot, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "could not write %s", path)
	}
	return f.Close()
}

// Plotter renders the charts of result files.
type Plotter struct {
	Loader *results.Loader
}

// IterationsPath is where the iterations chart of a dataset is saved.
func IterationsPath(dataset, resultsPath string) string {
	return filepath.Join(filepath.Dir(resultsPath), dataset+"_iterations.png")
}

// AccuracyPath is where the accuracy chart of a dataset is saved. The metric file sits next to the result file, so
// the chart does too.
func AccuracyPath(dataset, resultsPath string) string {
	return filepath.Join(filepath.Dir(resultsPath), dataset+"_accuracy.png")
}

// Data renders the iterations chart of the converged trials in a result file, and returns those trials.
func (pl Plotter) Data(dataset, resultsPath string) ([]results.Row, error) {
	rows, err := pl.Loader.Converged(resultsPath)
	if err != nil {
		return nil, err
	}
	p, err := Iterations(dataset, rows)
	if err != nil {
		return nil, errors.Wrap(err, resultsPath)
	}
	return rows, Save(p, IterationsPath(dataset, resultsPath))
}

// Metrics renders the accuracy chart of a metric file.
func (pl Plotter) Metrics(dataset, metricsPath string) error {
	metrics, err := pl.Loader.Metrics(metricsPath)
	if err != nil {
		return err
	}
	p, err := Accuracy(dataset, results.Curves(metrics))
	if err != nil {
		return errors.Wrap(err, metricsPath)
	}
	return Save(p, AccuracyPath(dataset, metricsPath))
}

// All renders both charts of a result file, and returns its converged trials.
func (pl Plotter) All(dataset, resultsPath string) ([]results.Row, error) {
	rows, err := pl.Data(dataset, resultsPath)
	if err != nil {
		return nil, err
	}
	return rows, pl.Metrics(dataset, resultsPath+results.MetricSuffix)
}
