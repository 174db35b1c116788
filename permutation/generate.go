package permutation

import (
	"fmt"
	"github.com/hscells/wildbench/grid"
	"github.com/hscells/wildbench/runner"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"
	"os"
	"path/filepath"
)

// Job is a single permutation to generate.
type Job struct {
	Dataset  string
	Clusters int
	Parts    int
	Threads  int
}

// Report summarises a generation run.
type Report struct {
	Generated int
	Cached    int
	Failures  []error
}

// Generator calls the analysis binary for every permutation a sweep needs.
type Generator struct {
	Settings grid.Settings
	Cache    *Cache
	Runner   runner.Runner
	// Binary is the path to the analysis binary.
	Binary string
	// DataPath resolves the path of a dataset's training file.
	DataPath func(dataset string) string
	Log      logrus.FieldLogger
	// Progress displays a progress bar over the jobs.
	Progress bool
}

// Jobs lists the distinct permutations required by the settings. Configurations with a single part per cluster have
// nothing to permute and are skipped.
func Jobs(s grid.Settings) []Job {
	var jobs []Job
	seen := make(map[Job]bool)
	for _, algorithm := range s.Algorithms {
		for _, dataset := range s.Datasets {
			for _, threads := range s.Threads {
				phy := grid.PhysicalThreads(threads, s.PhysicalCores)
				for _, clusterSize := range grid.ClusterSizes(algorithm, phy, s.ClusterSizes) {
					clusters := phy / clusterSize
					parts := phy / clusters
					if parts == 1 {
						continue
					}
					j := Job{Dataset: dataset, Clusters: clusters, Parts: parts, Threads: phy}
					if seen[j] {
						continue
					}
					seen[j] = true
					jobs = append(jobs, j)
				}
			}
		}
	}
	return jobs
}

// Generate produces every missing permutation. A failing analysis run is recorded in the report and generation
// continues with the next permutation.
func (g Generator) Generate() (Report, error) {
	var report Report
	log := g.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	if !g.Settings.GeneratesPermutations() {
		log.Infoln("only one permutation mode is configured, nothing to generate")
		return report, nil
	}

	jobs := Jobs(g.Settings)
	var bar *pb.ProgressBar
	if g.Progress && !g.Runner.DryRun {
		bar = pb.New(len(jobs))
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
	}

	out := g.Runner.Stdout
	if out == nil {
		out = os.Stdout
	}

	for _, j := range jobs {
		if bar != nil {
			bar.Increment()
		}
		if g.Cache.Has(j.Dataset, j.Clusters, j.Threads) {
			fmt.Fprintf(out, "Permutation for dataset %s in %d clusters and %d parts is already generated, remove %s file to rerun\n",
				j.Dataset, j.Clusters, j.Parts, g.Cache.Path(j.Dataset, j.Clusters, j.Threads))
			report.Cached++
			continue
		}
		err := g.generate(j)
		if err != nil {
			if _, ok := err.(*runner.ExitError); !ok {
				return report, err
			}
			log.WithFields(logrus.Fields{
				"dataset":  j.Dataset,
				"clusters": j.Clusters,
				"threads":  j.Threads,
			}).Errorln(err)
			report.Failures = append(report.Failures, err)
			continue
		}
		if !g.Runner.DryRun {
			report.Generated++
		}
	}
	return report, nil
}

func (g Generator) generate(j Job) error {
	dst := g.Cache.Path(j.Dataset, j.Clusters, j.Threads)
	tmp := dst + ".partial"
	if !g.Runner.DryRun {
		if err := os.MkdirAll(filepath.Dir(dst), 0777); err != nil {
			return errors.Wrap(err, "could not create permutation directory")
		}
	}

	if g.Runner.DryRun {
		return g.Runner.Run(runner.Analysis(g.Binary, j.Clusters, j.Parts, g.DataPath(j.Dataset), dst))
	}

	c := runner.Analysis(g.Binary, j.Clusters, j.Parts, g.DataPath(j.Dataset), tmp)
	if err := g.Runner.Run(c); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := g.Cache.Import(j.Dataset, j.Clusters, j.Threads, tmp); err != nil {
		return errors.Wrapf(err, "could not cache permutation %s", dst)
	}
	return nil
}
