package wildbench

import "github.com/hscells/wildbench/grid"

// ResultType is the type of result being sent through a sweep channel.
type ResultType uint8

const (
	// Trials indicates the input file of a dataset has been written.
	Trials ResultType = iota
	// Dispatched indicates the training binary completed a dataset. Dry runs never dispatch.
	Dispatched
	// Failed indicates the training binary exited with a non-zero code. The sweep continues with the next dataset.
	Failed
	// Error indicates the sweep could not continue.
	Error
	// Done indicates the sweep has completed.
	Done
)

func (t ResultType) String() string {
	switch t {
	case Trials:
		return "trials"
	case Dispatched:
		return "dispatched"
	case Failed:
		return "failed"
	case Error:
		return "error"
	case Done:
		return "done"
	}
	return "unknown"
}

// Result is the output of a sweep.
type Result struct {
	Dataset string
	Trials  []grid.Trial
	// Input is the path of the input file given to the training binary.
	Input string
	// Output is the path of the result file written by the training binary.
	Output string
	Type   ResultType
	Error  error
}
