// Package runner dispatches the external training and analysis binaries. Invocations are strictly sequential: each
// call blocks until the process exits.
package runner

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DryRunMessage is printed instead of executing a command in dry-run mode.
const DryRunMessage = "*** This is a dry run. No results will be produced. ***"

// VerboseFlag is appended to the arguments of a binary when running verbosely.
const VerboseFlag = "-v"

// DefaultProfiler wraps an invocation when profiling is requested.
var DefaultProfiler = []string{"perf", "record", "-g", "--"}

// ExitError is returned when a process exits with a non-zero code.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process failed: %d (%s)", e.Code, e.Command)
}

// Mode controls how commands are dispatched.
type Mode struct {
	// DryRun prints commands instead of executing them.
	DryRun bool
	// Verbose forwards the verbose flag to the binaries.
	Verbose bool
	// Profile wraps invocations with the profiler.
	Profile  bool
	Profiler []string
}

// Runner executes commands.
type Runner struct {
	Mode
	// Stdout receives printed command lines and the stdout of executed processes.
	Stdout io.Writer
	Stderr io.Writer
	Log    logrus.FieldLogger
}

// Command is a single invocation of a binary.
type Command struct {
	Binary string
	Args   []string
	// Tee is a file the process output is copied to, in addition to the runner's stdout.
	Tee   string
	Stdin io.Reader
}

// New creates a runner that writes to the process's stdout and stderr.
func New(mode Mode, log logrus.FieldLogger) Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return Runner{
		Mode:   mode,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    log,
	}
}

// Train builds the command for the training binary. The binary reads the trials from input and appends a row per
// completed trial to output.
func Train(binary string, datasets []string, output, input string) Command {
	args := append(append([]string(nil), datasets...), output, input)
	return Command{Binary: binary, Args: args}
}

// Analysis builds the command for the permutation analysis binary.
func Analysis(binary string, clusters, parts int, dataset, output string) Command {
	return Command{
		Binary: binary,
		Args:   []string{strconv.Itoa(clusters), strconv.Itoa(parts), dataset, output},
	}
}

// Argv returns the full argument vector for a command under the runner's mode.
func (r Runner) Argv(c Command) []string {
	var argv []string
	if r.Profile {
		profiler := r.Profiler
		if len(profiler) == 0 {
			profiler = DefaultProfiler
		}
		argv = append(argv, profiler...)
	}
	argv = append(argv, c.Binary)
	argv = append(argv, c.Args...)
	if r.Verbose {
		argv = append(argv, VerboseFlag)
	}
	return argv
}

// CommandLine is the printable form of a command.
func (r Runner) CommandLine(c Command) string {
	return strings.Join(r.Argv(c), " ")
}

// Run prints the command and, unless this is a dry run, executes it and waits for it to exit. A non-zero exit code
// is returned as an *ExitError.
func (r Runner) Run(c Command) error {
	line := r.CommandLine(c)
	fmt.Fprintln(r.stdout(), line)
	if r.DryRun {
		fmt.Fprintln(r.stdout(), DryRunMessage)
		return nil
	}

	argv := r.Argv(c)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = c.Stdin

	stdout, stderr := r.stdout(), r.stderr()
	if len(c.Tee) > 0 {
		f, err := os.OpenFile(c.Tee, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return errors.Wrapf(err, "could not open %s", c.Tee)
		}
		defer f.Close()
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger().WithField("binary", c.Binary).Debug("starting process")
	err := cmd.Run()
	if exit, ok := err.(*exec.ExitError); ok {
		e := &ExitError{Command: line, Code: exit.ExitCode()}
		r.logger().WithField("code", e.Code).Errorln(e)
		return e
	}
	if err != nil {
		return errors.Wrapf(err, "could not run %s", c.Binary)
	}
	return nil
}

func (r Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func (r Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}
