package cmd

import (
	"fmt"
	"github.com/go-errors/errors"
	"github.com/hscells/wildbench/config"
	"github.com/hscells/wildbench/runner"
	"github.com/sirupsen/logrus"
	"os"
)

// Author is shown in the description of every utility.
const Author = "wildbench authors"

// ModeArgs are the dispatch flags shared by the utilities that run the binaries.
type ModeArgs struct {
	DryRun  bool `help:"print the commands without running them" arg:"-n"`
	Execute bool `help:"run the commands (the default, overrides -n)" arg:"-y"`
	Verbose bool `help:"forward the verbose flag to the binaries" arg:"-v"`
	Profile bool `help:"run the binaries under the profiler" arg:"-d"`
}

// MachineArgs locate the machine configuration.
type MachineArgs struct {
	Machine string `help:"path to a machine properties file" arg:"-m,--machine"`
}

// Description formats the description of a utility.
func Description(name, version, about string) string {
	return fmt.Sprintf(`%s
@ %s
# %s
%s`, name, Author, version, about)
}

// Mode converts the flags into a runner mode.
func (a ModeArgs) Mode(m config.Machine) runner.Mode {
	return runner.Mode{
		DryRun:   a.DryRun && !a.Execute,
		Verbose:  a.Verbose,
		Profile:  a.Profile,
		Profiler: m.Profiler,
	}
}

// Logger creates the console logger of a utility.
func Logger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// Fatal prints an error with its stack and exits.
func Fatal(log logrus.FieldLogger, err error) {
	log.Errorln(errors.Wrap(err, 1).ErrorStack())
	os.Exit(1)
}
